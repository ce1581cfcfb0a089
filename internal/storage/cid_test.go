package storage

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/internal/apperr"
)

func TestComputeCID(t *testing.T) {
	a, err := ComputeCID([]byte("hello world"))
	require.NoError(t, err)
	b, err := ComputeCID([]byte("hello world"))
	require.NoError(t, err)
	c, err := ComputeCID([]byte("hello world!"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "bafk"), a)
	assert.True(t, ValidCID(a))
}

func TestValidCID(t *testing.T) {
	assert.True(t, ValidCID(testCID))
	assert.False(t, ValidCID(""))
	assert.False(t, ValidCID("QmAbc123"))
}

func TestGatewayURL(t *testing.T) {
	assert.Equal(t, "https://ipfs.example/ipfs/bafy1", gatewayURL("https://ipfs.example///", "bafy1"))
}

func TestClassifyMinIOError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"entity too large", minio.ErrorResponse{StatusCode: http.StatusRequestEntityTooLarge, Code: "EntityTooLarge"}, apperr.ErrStorageRejected},
		{"access denied", minio.ErrorResponse{StatusCode: http.StatusForbidden, Code: "AccessDenied"}, apperr.ErrStorageUnavailable},
		{"server", minio.ErrorResponse{StatusCode: http.StatusServiceUnavailable}, apperr.ErrStorageUnavailable},
		{"transport", errors.New("dial tcp: i/o timeout"), apperr.ErrStorageUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyMinIOError(tt.err), tt.want)
		})
	}
}
