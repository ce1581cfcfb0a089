package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"Pending", StatusPending, false},
		{" verified ", StatusVerified, false},
		{"REJECTED", StatusRejected, false},
		{"", "", true},
		{"Approved", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusVerified.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
}

func TestSubmissionAttempt_Transition(t *testing.T) {
	now := time.Now()

	t.Run("happy path", func(t *testing.T) {
		a := &SubmissionAttempt{Phase: PhaseIdle}
		require.NoError(t, a.Transition(PhaseStoringContent, now))
		a.ContentID = "QmAbc123"
		require.NoError(t, a.Transition(PhaseRecordingOnLedger, now))
		require.NoError(t, a.Transition(PhaseComplete, now))
		assert.True(t, a.Phase.IsTerminal())
	})

	t.Run("record requires content id", func(t *testing.T) {
		a := &SubmissionAttempt{Phase: PhaseStoringContent}
		assert.Error(t, a.Transition(PhaseRecordingOnLedger, now))
		assert.Equal(t, PhaseStoringContent, a.Phase)
	})

	t.Run("partial failure only from recording", func(t *testing.T) {
		a := &SubmissionAttempt{Phase: PhaseStoringContent}
		assert.Error(t, a.Fail(PhasePartialFailure, errors.New("x"), now))
	})

	t.Run("retry clears reason", func(t *testing.T) {
		a := &SubmissionAttempt{Phase: PhaseRecordingOnLedger, ContentID: "Qm1"}
		require.NoError(t, a.Fail(PhasePartialFailure, errors.New("user denied"), now))
		assert.Equal(t, "user denied", a.FailureReason)
		require.NoError(t, a.Transition(PhaseRecordingOnLedger, now))
		assert.Empty(t, a.FailureReason)
		assert.Equal(t, "Qm1", a.ContentID)
	})

	t.Run("no way out of complete", func(t *testing.T) {
		a := &SubmissionAttempt{Phase: PhaseComplete, ContentID: "Qm1"}
		assert.Error(t, a.Transition(PhaseRecordingOnLedger, now))
	})
}
