package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docverify/internal/apperr"
	ledgerMocks "docverify/internal/ledger/mocks"
	"docverify/internal/logging"
	"docverify/internal/model"
	"docverify/internal/repository/memory"
	storeMocks "docverify/internal/storage/mocks"
)

func record(index uint64, cid string, status model.Status) *model.DocumentRecord {
	return &model.DocumentRecord{Owner: alice, Index: index, ContentID: cid, DocumentType: "passport", Status: status}
}

func newReconcileFixture() (*ledgerMocks.MockLedger, *storeMocks.MockStorage, *memory.AttemptMemory, *Reconciler) {
	l := new(ledgerMocks.MockLedger)
	s := new(storeMocks.MockStorage)
	s.On("ResolveURL", mock.Anything).Return("https://gateway.example/ipfs/x").Maybe()
	repo := memory.NewAttemptMemory()
	r := NewReconciler(l, s, repo, ReconcileOptions{
		SettleDelay:      time.Millisecond,
		ReloadAttempts:   3,
		FetchConcurrency: 2,
	}, nil, logging.Discard())
	return l, s, repo, r
}

func TestReconciler_LoadFor_IndexOrder(t *testing.T) {
	l, _, _, r := newReconcileFixture()
	l.On("FetchDocumentCount", mock.Anything, alice).Return(uint64(3), nil)
	l.On("FetchDocument", mock.Anything, alice, uint64(0)).Return(record(0, "Qm0", model.StatusVerified), nil)
	l.On("FetchDocument", mock.Anything, alice, uint64(1)).Return(record(1, "Qm1", model.StatusPending), nil)
	l.On("FetchDocument", mock.Anything, alice, uint64(2)).Return(record(2, "Qm2", model.StatusRejected), nil)

	docs, err := r.LoadFor(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	for i, d := range docs {
		assert.Equal(t, uint64(i), d.Index)
		assert.NotEmpty(t, d.URL)
	}
	assert.Equal(t, []string{"Qm0", "Qm1", "Qm2"}, []string{docs[0].ContentID, docs[1].ContentID, docs[2].ContentID})

	cached, _, ok := r.Cached(alice)
	assert.True(t, ok)
	assert.Equal(t, docs, cached)
}

func TestReconciler_LoadFor_EmptyAccount(t *testing.T) {
	l, _, _, r := newReconcileFixture()
	l.On("FetchDocumentCount", mock.Anything, bob).Return(uint64(0), nil)

	docs, err := r.LoadFor(context.Background(), bob)
	require.NoError(t, err)
	assert.Empty(t, docs)
	l.AssertNotCalled(t, "FetchDocument", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciler_LoadFor_OneFailedReadFailsAll(t *testing.T) {
	l, _, _, r := newReconcileFixture()
	ctx := context.Background()

	l.On("FetchDocumentCount", mock.Anything, alice).Return(uint64(1), nil).Once()
	l.On("FetchDocument", mock.Anything, alice, uint64(0)).Return(record(0, "Qm0", model.StatusPending), nil)
	previous, err := r.LoadFor(ctx, alice)
	require.NoError(t, err)

	l.On("FetchDocumentCount", mock.Anything, alice).Return(uint64(3), nil).Once()
	l.On("FetchDocument", mock.Anything, alice, uint64(1)).
		Return(nil, apperr.Wrap(apperr.ErrLedgerReadFailed, errors.New(`unrecognised document status "Escalated"`)))
	l.On("FetchDocument", mock.Anything, alice, uint64(2)).Return(record(2, "Qm2", model.StatusPending), nil).Maybe()

	docs, err := r.LoadFor(ctx, alice)
	assert.ErrorIs(t, err, apperr.ErrLedgerReadFailed)
	assert.Nil(t, docs)

	cached, _, ok := r.Cached(alice)
	require.True(t, ok)
	assert.Equal(t, previous, cached)
}

func TestReconciler_LoadFor_CountFails(t *testing.T) {
	l, _, _, r := newReconcileFixture()
	l.On("FetchDocumentCount", mock.Anything, alice).Return(uint64(0), errors.New("connection refused"))

	_, err := r.LoadFor(context.Background(), alice)
	assert.ErrorIs(t, err, apperr.ErrLedgerReadFailed)
	_, _, ok := r.Cached(alice)
	assert.False(t, ok)
}

func TestReconciler_LoadFor_CountOverLimit(t *testing.T) {
	l, _, _, r := newReconcileFixture()
	l.On("FetchDocumentCount", mock.Anything, alice).Return(uint64(1)<<62, nil)

	docs, err := r.LoadFor(context.Background(), alice)
	assert.ErrorIs(t, err, apperr.ErrLedgerReadFailed)
	assert.Nil(t, docs)
	l.AssertNotCalled(t, "FetchDocument", mock.Anything, mock.Anything, mock.Anything)
	_, _, ok := r.Cached(alice)
	assert.False(t, ok)
}

func TestReconciler_Recorded(t *testing.T) {
	l, _, _, r := newReconcileFixture()
	ctx := context.Background()
	l.On("FetchDocumentCount", mock.Anything, alice).Return(uint64(1), nil)
	l.On("FetchDocument", mock.Anything, alice, uint64(0)).Return(record(0, "QmHere", model.StatusPending), nil)
	l.On("FetchDocumentCount", mock.Anything, bob).Return(uint64(0), errors.New("connection refused"))

	found, err := r.Recorded(ctx, alice, "QmHere")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = r.Recorded(ctx, alice, "QmElsewhere")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = r.Recorded(ctx, bob, "QmHere")
	assert.ErrorIs(t, err, apperr.ErrLedgerReadFailed)
}

func TestReconciler_View(t *testing.T) {
	l, _, repo, r := newReconcileFixture()
	ctx := context.Background()
	l.On("FetchDocumentCount", mock.Anything, alice).Return(uint64(1), nil)
	l.On("FetchDocument", mock.Anything, alice, uint64(0)).Return(record(0, "QmSeen", model.StatusPending), nil)

	now := time.Now().UTC()
	for _, a := range []model.SubmissionAttempt{
		{ID: "seen", Account: alice, Phase: model.PhaseComplete, ContentID: "QmSeen", CreatedAt: now},
		{ID: "lagging", Account: alice, Phase: model.PhaseComplete, ContentID: "QmLag", CreatedAt: now.Add(time.Second)},
		{ID: "partial", Account: alice, Phase: model.PhasePartialFailure, ContentID: "QmPart", CreatedAt: now.Add(2 * time.Second)},
		{ID: "failed", Account: alice, Phase: model.PhaseFailed, CreatedAt: now.Add(3 * time.Second)},
		{ID: "other", Account: bob, Phase: model.PhasePartialFailure, ContentID: "QmBob", CreatedAt: now},
	} {
		require.NoError(t, repo.Save(ctx, &a))
	}

	view, err := r.View(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, view.Documents, 1)
	ids := make([]string, 0, len(view.Pending))
	for _, p := range view.Pending {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"lagging", "partial"}, ids)
	assert.False(t, view.LoadedAt.IsZero())
}

func TestReconciler_RefreshAfterSubmit(t *testing.T) {
	t.Run("becomes visible after a stale read", func(t *testing.T) {
		l, _, _, r := newReconcileFixture()
		l.On("FetchDocumentCount", mock.Anything, alice).Return(uint64(0), nil).Once()
		l.On("FetchDocumentCount", mock.Anything, alice).Return(uint64(1), nil)
		l.On("FetchDocument", mock.Anything, alice, uint64(0)).Return(record(0, "QmAbc123", model.StatusPending), nil)

		err := r.RefreshAfterSubmit(context.Background(), alice, "QmAbc123")
		require.NoError(t, err)
		l.AssertNumberOfCalls(t, "FetchDocumentCount", 2)

		cached, _, _ := r.Cached(alice)
		require.Len(t, cached, 1)
		assert.Equal(t, model.StatusPending, cached[0].Status)
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		l, _, _, r := newReconcileFixture()
		l.On("FetchDocumentCount", mock.Anything, alice).Return(uint64(0), nil)

		err := r.RefreshAfterSubmit(context.Background(), alice, "QmAbc123")
		assert.ErrorIs(t, err, ErrNotYetVisible)
		l.AssertNumberOfCalls(t, "FetchDocumentCount", 3)
	})

	t.Run("cancelled while settling", func(t *testing.T) {
		_, _, _, r := newReconcileFixture()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := r.RefreshAfterSubmit(ctx, alice, "QmAbc123")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestReconciler_Document(t *testing.T) {
	l, _, _, r := newReconcileFixture()
	ctx := context.Background()
	l.On("FetchDocumentCount", mock.Anything, alice).Return(uint64(1), nil)
	l.On("FetchDocument", mock.Anything, alice, uint64(0)).Return(record(0, "Qm0", model.StatusPending), nil)

	doc, err := r.Document(ctx, alice, 0)
	require.NoError(t, err)
	assert.Equal(t, "Qm0", doc.ContentID)
	assert.NotEmpty(t, doc.URL)

	_, err = r.Document(ctx, alice, 5)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
