package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"docverify/internal/apperr"
	"docverify/internal/ledger"
	"docverify/internal/metrics"
	"docverify/internal/model"
	"docverify/internal/repository"
	"docverify/internal/storage"
)

// maxDocumentsPerAccount bounds the list a single load will allocate and fetch.
const maxDocumentsPerAccount = 10_000

// ReconcileOptions tunes reloads.
type ReconcileOptions struct {
	// SettleDelay is waited before the first reload after a submission, and between retries.
	SettleDelay time.Duration
	// ReloadAttempts bounds the reloads RefreshAfterSubmit makes.
	ReloadAttempts int
	// FetchConcurrency bounds parallel getDocument calls in one load.
	FetchConcurrency int
}

// DocumentView is an account's documents as the ledger reports them, plus local submissions
// the ledger does not show yet.
type DocumentView struct {
	Account   common.Address            `json:"account" swaggertype:"string"`
	Documents []model.DocumentRecord    `json:"documents"`
	Pending   []model.SubmissionAttempt `json:"pending"`
	LoadedAt  time.Time                 `json:"loaded_at"`
}

type cachedView struct {
	docs     []model.DocumentRecord
	loadedAt time.Time
}

// Reconciler rebuilds document lists from the ledger. It never edits a record locally; the
// only way a status changes in a view is a fresh load.
type Reconciler struct {
	ledger  ledger.Reader
	store   storage.Storage
	repo    repository.AttemptRepository
	opts    ReconcileOptions
	metrics *metrics.Workflow
	log     *slog.Logger

	mu    sync.RWMutex
	cache map[common.Address]cachedView
}

func NewReconciler(lr ledger.Reader, store storage.Storage, repo repository.AttemptRepository, opts ReconcileOptions, m *metrics.Workflow, log *slog.Logger) *Reconciler {
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = 4
	}
	if opts.ReloadAttempts <= 0 {
		opts.ReloadAttempts = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{
		ledger:  lr,
		store:   store,
		repo:    repo,
		opts:    opts,
		metrics: m,
		log:     log.With("component", "reconciler"),
		cache:   make(map[common.Address]cachedView),
	}
}

// LoadFor reads every document of account in index order. Any failed read fails the whole
// load and leaves the cached list untouched.
func (r *Reconciler) LoadFor(ctx context.Context, account common.Address) ([]model.DocumentRecord, error) {
	count, err := r.ledger.FetchDocumentCount(ctx, account)
	if err != nil {
		r.metrics.Reload(metrics.OutcomeFailed)
		return nil, apperr.Wrap(apperr.ErrLedgerReadFailed, err)
	}
	if count > maxDocumentsPerAccount {
		r.metrics.Reload(metrics.OutcomeFailed)
		r.log.WarnContext(ctx, "document count over limit", "account", account.Hex(), "count", count, "limit", maxDocumentsPerAccount)
		return nil, apperr.Wrapf(apperr.ErrLedgerReadFailed, "account %s reports %d documents, limit is %d", account.Hex(), count, maxDocumentsPerAccount)
	}

	docs := make([]model.DocumentRecord, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.FetchConcurrency)
	for i := uint64(0); i < count; i++ {
		g.Go(func() error {
			rec, err := r.ledger.FetchDocument(gctx, account, i)
			if err != nil {
				return err
			}
			rec.URL = r.store.ResolveURL(rec.ContentID)
			docs[i] = *rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.metrics.Reload(metrics.OutcomeFailed)
		r.log.WarnContext(ctx, "document load failed", "account", account.Hex(), "count", count, "error", err)
		return nil, apperr.Wrap(apperr.ErrLedgerReadFailed, err)
	}

	r.mu.Lock()
	r.cache[account] = cachedView{docs: docs, loadedAt: time.Now().UTC()}
	r.mu.Unlock()
	r.metrics.Reload(metrics.OutcomeSuccess)
	return docs, nil
}

// Cached returns the last successful load for account.
func (r *Reconciler) Cached(account common.Address) ([]model.DocumentRecord, time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.cache[account]
	return v.docs, v.loadedAt, ok
}

// View loads account's documents and merges in local submissions not yet on the ledger.
func (r *Reconciler) View(ctx context.Context, account common.Address) (*DocumentView, error) {
	docs, err := r.LoadFor(ctx, account)
	if err != nil {
		return nil, err
	}
	_, loadedAt, _ := r.Cached(account)
	view := &DocumentView{
		Account:   account,
		Documents: docs,
		Pending:   make([]model.SubmissionAttempt, 0),
		LoadedAt:  loadedAt,
	}
	if r.repo == nil {
		return view, nil
	}
	res, err := r.repo.ListByAccount(ctx, account, repository.PageQuery{})
	if err != nil {
		r.log.WarnContext(ctx, "list local submissions", "account", account.Hex(), "error", err)
		return view, nil
	}
	onLedger := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		onLedger[d.ContentID] = struct{}{}
	}
	for _, a := range res.Items {
		switch a.Phase {
		case model.PhaseRecordingOnLedger, model.PhasePartialFailure:
		case model.PhaseComplete:
			if _, seen := onLedger[a.ContentID]; seen {
				continue
			}
		default:
			continue
		}
		view.Pending = append(view.Pending, a)
	}
	return view, nil
}

// RefreshAfterSubmit waits for the ledger to settle, then reloads until contentID shows up
// or the attempts run out.
func (r *Reconciler) RefreshAfterSubmit(ctx context.Context, account common.Address, contentID string) error {
	delay := r.opts.SettleDelay
	if delay <= 0 {
		delay = time.Millisecond
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	backoff := retry.WithMaxRetries(uint64(r.opts.ReloadAttempts-1), retry.NewConstant(delay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		found, err := r.Recorded(ctx, account, contentID)
		if err != nil {
			return retry.RetryableError(err)
		}
		if !found {
			return retry.RetryableError(ErrNotYetVisible)
		}
		return nil
	})
}

// Recorded does one fresh load and reports whether account's list holds contentID.
func (r *Reconciler) Recorded(ctx context.Context, account common.Address, contentID string) (bool, error) {
	docs, err := r.LoadFor(ctx, account)
	if err != nil {
		return false, err
	}
	for _, d := range docs {
		if d.ContentID == contentID {
			return true, nil
		}
	}
	return false, nil
}

// Document reads a single record. An index past the account's count is ErrNotFound.
func (r *Reconciler) Document(ctx context.Context, account common.Address, index uint64) (*model.DocumentRecord, error) {
	count, err := r.ledger.FetchDocumentCount(ctx, account)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrLedgerReadFailed, err)
	}
	if index >= count {
		return nil, apperr.Wrapf(apperr.ErrNotFound, "account %s has %d documents", account.Hex(), count)
	}
	rec, err := r.ledger.FetchDocument(ctx, account, index)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrLedgerReadFailed, err)
	}
	rec.URL = r.store.ResolveURL(rec.ContentID)
	return rec, nil
}
