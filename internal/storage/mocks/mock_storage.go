package mocks

import (
	"context"
	"io"

	"docverify/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, r io.Reader, opt storage.PutOptions) (string, error) {
	args := m.Called(ctx, r, opt)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) ResolveURL(contentID string) string {
	args := m.Called(contentID)
	return args.String(0)
}
