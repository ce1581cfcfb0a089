package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docverify/internal/apperr"
	ledgerMocks "docverify/internal/ledger/mocks"
	"docverify/internal/logging"
	"docverify/internal/model"
)

func newReviewFixture(sess *fakeSession) (*ledgerMocks.MockLedger, ReviewService) {
	l, _, _, r := newReconcileFixture()
	return l, NewReviewService(l, sess, r, nil, logging.Discard())
}

func verifierSession() *fakeSession {
	s := connectedAs(bob)
	s.verifier = true
	return s
}

func TestParseQueueFilter(t *testing.T) {
	f, err := ParseQueueFilter("")
	require.NoError(t, err)
	assert.Equal(t, QueuePending, f)
	f, err = ParseQueueFilter(" Decided ")
	require.NoError(t, err)
	assert.Equal(t, QueueDecided, f)
	_, err = ParseQueueFilter("all")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestReviewService_Decide(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		session    *fakeSession
		input      DecisionInput
		setupMocks func(l *ledgerMocks.MockLedger)
		wantErrIs  error
	}{
		{
			name:    "verify pending document",
			session: verifierSession(),
			input:   DecisionInput{Subject: alice, Index: 0, Decision: model.StatusVerified},
			setupMocks: func(l *ledgerMocks.MockLedger) {
				l.On("FetchDocumentCount", mock.Anything, alice).Return(uint64(1), nil)
				l.On("FetchDocument", mock.Anything, alice, uint64(0)).Return(record(0, "Qm1", model.StatusPending), nil)
				l.On("SubmitVerification", mock.Anything, bob, alice, uint64(0), model.StatusVerified, "").
					Return(&model.Receipt{TransactionHash: "0xv"}, nil)
			},
		},
		{
			name:       "pending is not a decision",
			session:    verifierSession(),
			input:      DecisionInput{Subject: alice, Decision: model.StatusPending},
			setupMocks: func(l *ledgerMocks.MockLedger) {},
			wantErrIs:  apperr.ErrValidation,
		},
		{
			name:       "rejection needs notes",
			session:    verifierSession(),
			input:      DecisionInput{Subject: alice, Decision: model.StatusRejected, Notes: "  "},
			setupMocks: func(l *ledgerMocks.MockLedger) {},
			wantErrIs:  apperr.ErrValidation,
		},
		{
			name:       "not a verifier",
			session:    connectedAs(bob),
			input:      DecisionInput{Subject: alice, Decision: model.StatusVerified},
			setupMocks: func(l *ledgerMocks.MockLedger) {},
			wantErrIs:  ErrNotVerifier,
		},
		{
			name:       "no wallet",
			session:    &fakeSession{},
			input:      DecisionInput{Subject: alice, Decision: model.StatusVerified},
			setupMocks: func(l *ledgerMocks.MockLedger) {},
			wantErrIs:  apperr.ErrWalletUnavailable,
		},
		{
			name:    "already decided on the ledger",
			session: verifierSession(),
			input:   DecisionInput{Subject: alice, Index: 0, Decision: model.StatusRejected, Notes: "blurry"},
			setupMocks: func(l *ledgerMocks.MockLedger) {
				l.On("FetchDocumentCount", mock.Anything, alice).Return(uint64(1), nil)
				l.On("FetchDocument", mock.Anything, alice, uint64(0)).Return(record(0, "Qm1", model.StatusVerified), nil)
			},
			wantErrIs: ErrTerminalStatus,
		},
		{
			name:    "ledger write fails",
			session: verifierSession(),
			input:   DecisionInput{Subject: alice, Index: 0, Decision: model.StatusRejected, Notes: "expired"},
			setupMocks: func(l *ledgerMocks.MockLedger) {
				l.On("FetchDocumentCount", mock.Anything, alice).Return(uint64(1), nil)
				l.On("FetchDocument", mock.Anything, alice, uint64(0)).Return(record(0, "Qm1", model.StatusPending), nil)
				l.On("SubmitVerification", mock.Anything, bob, alice, uint64(0), model.StatusRejected, "expired").
					Return(nil, apperr.Wrap(apperr.ErrLedgerWriteFailed, errors.New("execution reverted: Not a verifier")))
			},
			wantErrIs: apperr.ErrLedgerWriteFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, svc := newReviewFixture(tt.session)
			tt.setupMocks(l)

			rcpt, err := svc.Decide(ctx, tt.input)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				assert.Nil(t, rcpt)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "0xv", rcpt.TransactionHash)
			l.AssertExpectations(t)
		})
	}
}

func TestReviewService_DecideTwiceDespiteLaggingRead(t *testing.T) {
	ctx := context.Background()
	l, svc := newReviewFixture(verifierSession())
	l.On("FetchDocumentCount", mock.Anything, alice).Return(uint64(1), nil)
	// The ledger keeps reporting Pending after the decision is mined.
	l.On("FetchDocument", mock.Anything, alice, uint64(0)).Return(record(0, "Qm1", model.StatusPending), nil)
	l.On("SubmitVerification", mock.Anything, bob, alice, uint64(0), model.StatusVerified, "ok").
		Return(&model.Receipt{TransactionHash: "0xv"}, nil).Once()

	_, err := svc.Decide(ctx, DecisionInput{Subject: alice, Index: 0, Decision: model.StatusVerified, Notes: "ok"})
	require.NoError(t, err)

	_, err = svc.Decide(ctx, DecisionInput{Subject: alice, Index: 0, Decision: model.StatusRejected, Notes: "changed my mind"})
	assert.ErrorIs(t, err, ErrTerminalStatus)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	l.On("ListSubmitters", mock.Anything).Return([]common.Address{alice}, nil)
	queue, err := svc.Queue(ctx, QueuePending)
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestReviewService_Queue(t *testing.T) {
	ctx := context.Background()
	l, svc := newReviewFixture(verifierSession())
	l.On("ListSubmitters", mock.Anything).Return([]common.Address{alice, bob}, nil)

	a0 := record(0, "QmA0", model.StatusPending)
	a0.SubmittedAt = 30
	a1 := record(1, "QmA1", model.StatusVerified)
	a1.SubmittedAt = 10
	b0 := &model.DocumentRecord{Owner: bob, Index: 0, ContentID: "QmB0", Status: model.StatusPending, SubmittedAt: 20}
	b1 := &model.DocumentRecord{Owner: bob, Index: 1, ContentID: "QmB1", Status: model.StatusRejected, SubmittedAt: 40}

	l.On("FetchDocumentCount", mock.Anything, alice).Return(uint64(2), nil)
	l.On("FetchDocument", mock.Anything, alice, uint64(0)).Return(a0, nil)
	l.On("FetchDocument", mock.Anything, alice, uint64(1)).Return(a1, nil)
	l.On("FetchDocumentCount", mock.Anything, bob).Return(uint64(2), nil)
	l.On("FetchDocument", mock.Anything, bob, uint64(0)).Return(b0, nil)
	l.On("FetchDocument", mock.Anything, bob, uint64(1)).Return(b1, nil)

	pending, err := svc.Queue(ctx, QueuePending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "QmB0", pending[0].ContentID)
	assert.Equal(t, "QmA0", pending[1].ContentID)

	decided, err := svc.Queue(ctx, QueueDecided)
	require.NoError(t, err)
	require.Len(t, decided, 2)
	assert.Equal(t, "QmB1", decided[0].ContentID)
	assert.Equal(t, "QmA1", decided[1].ContentID)
}

func TestReviewService_Queue_ReadFailure(t *testing.T) {
	l, svc := newReviewFixture(verifierSession())
	l.On("ListSubmitters", mock.Anything).Return(nil, apperr.Wrap(apperr.ErrLedgerReadFailed, errors.New("filter logs: timeout")))

	_, err := svc.Queue(context.Background(), QueuePending)
	assert.ErrorIs(t, err, apperr.ErrLedgerReadFailed)
}
