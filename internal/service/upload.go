package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"docverify/internal/apperr"
	"docverify/internal/ledger"
	"docverify/internal/metrics"
	"docverify/internal/model"
	"docverify/internal/repository"
	"docverify/internal/storage"
)

// UploadInput is one document handed to Submit.
type UploadInput struct {
	File         []byte
	FileName     string
	MimeType     string
	DocumentType string
}

// AttemptListResult is the service-level DTO for paginated attempts.
type AttemptListResult struct {
	Items []model.SubmissionAttempt `json:"data"`
	Total int                       `json:"total"`
}

// Refresher reloads an account's view once a submission is mined, and tells Retry whether an
// earlier send already landed.
type Refresher interface {
	RefreshAfterSubmit(ctx context.Context, account common.Address, contentID string) error
	Recorded(ctx context.Context, account common.Address, contentID string) (bool, error)
}

// UploadService drives a document from bytes to a ledger record.
type UploadService interface {
	// Submit stores the file, then records its content id on the ledger for the connected account.
	// On failure the returned attempt (when non-nil) says how far it got: Failed means nothing
	// was stored, PartialFailure means the content id is kept and Retry may finish the job.
	Submit(ctx context.Context, in UploadInput) (*model.SubmissionAttempt, error)

	// Retry re-runs only the ledger step of a PartialFailure attempt, with the same content id.
	// An attempt left in StoringContent or RecordingOnLedger that no request is driving is
	// settled first: with a content id it is retried, without one it ends Failed.
	Retry(ctx context.Context, id string) (*model.SubmissionAttempt, error)

	// Get returns a single attempt by its ID.
	Get(ctx context.Context, id string) (*model.SubmissionAttempt, error)

	// List returns an account's attempts, newest first.
	List(ctx context.Context, account common.Address, limit, offset int) (*AttemptListResult, error)

	// Discard forgets an attempt no request is driving, whatever its phase.
	Discard(ctx context.Context, id string) error
}

type uploadService struct {
	store     storage.Storage
	ledger    ledger.Writer
	session   Session
	repo      repository.AttemptRepository
	refresher Refresher
	metrics   *metrics.Workflow
	log       *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
	bg       sync.WaitGroup
}

// NewUploadService constructs the upload orchestrator. refresher and m may be nil.
func NewUploadService(store storage.Storage, lw ledger.Writer, sess Session, repo repository.AttemptRepository, refresher Refresher, m *metrics.Workflow, log *slog.Logger) UploadService {
	if log == nil {
		log = slog.Default()
	}
	return &uploadService{
		store:     store,
		ledger:    lw,
		session:   sess,
		repo:      repo,
		refresher: refresher,
		metrics:   m,
		log:       log.With("component", "upload"),
		tracer:    otel.Tracer("docverify/internal/service"),
		now:       func() time.Time { return time.Now().UTC() },
		inflight:  make(map[string]struct{}),
	}
}

func (s *uploadService) Submit(ctx context.Context, in UploadInput) (*model.SubmissionAttempt, error) {
	if len(in.File) == 0 {
		return nil, apperr.Validation("file is required")
	}
	docType := strings.TrimSpace(in.DocumentType)
	if docType == "" {
		return nil, apperr.Validation("document type is required")
	}

	ctx, span := s.tracer.Start(ctx, "upload.submit")
	defer span.End()

	account, err := requireAccount(ctx, s.session)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}

	now := s.now()
	a := &model.SubmissionAttempt{
		ID:           uuid.NewString(),
		Account:      account,
		FileName:     in.FileName,
		MimeType:     in.MimeType,
		Size:         int64(len(in.File)),
		DocumentType: docType,
		Phase:        model.PhaseIdle,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	span.SetAttributes(attribute.String("attempt.id", a.ID), attribute.String("attempt.account", account.Hex()))
	if err := s.repo.Save(ctx, a); err != nil {
		endSpan(span, err)
		return nil, fmt.Errorf("journal attempt: %w", err)
	}
	s.claim(a.ID)
	defer s.release(a.ID)

	if err := s.move(ctx, a, model.PhaseStoringContent, nil); err != nil {
		endSpan(span, err)
		return a, err
	}
	cid, err := s.store.Put(ctx, bytes.NewReader(in.File), storage.PutOptions{
		Size:        a.Size,
		FileName:    a.FileName,
		ContentType: a.MimeType,
		Metadata: map[string]string{
			"document_type": a.DocumentType,
			"account":       account.Hex(),
		},
	})
	if err != nil {
		s.metrics.StoragePut(storageOutcome(err))
		if mErr := s.move(ctx, a, model.PhaseFailed, err); mErr != nil {
			s.log.ErrorContext(ctx, "abort attempt", "attempt", a.ID, "error", mErr)
		}
		err = apperr.Wrap(apperr.ErrUploadFailed, err)
		endSpan(span, err)
		return a, err
	}
	s.metrics.StoragePut(metrics.OutcomeSuccess)
	a.ContentID = cid
	s.log.InfoContext(ctx, "content stored", "attempt", a.ID, "content_id", cid)

	if err := s.move(ctx, a, model.PhaseRecordingOnLedger, nil); err != nil {
		endSpan(span, err)
		return a, err
	}
	err = s.record(ctx, a, account)
	endSpan(span, err)
	return a, err
}

func (s *uploadService) Retry(ctx context.Context, id string) (*model.SubmissionAttempt, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	ctx, span := s.tracer.Start(ctx, "upload.retry", trace.WithAttributes(attribute.String("attempt.id", id)))
	defer span.End()

	if !s.tryClaim(id) {
		endSpan(span, ErrAttemptBusy)
		return nil, apperr.Wrap(apperr.ErrInvalidState, ErrAttemptBusy)
	}
	defer s.release(id)

	a, err := s.Get(ctx, id)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}
	if err := s.settleInterrupted(ctx, a); err != nil {
		endSpan(span, err)
		return a, err
	}
	if a.Phase != model.PhasePartialFailure {
		err := apperr.Wrapf(apperr.ErrInvalidState, "attempt %s is %s, only PartialFailure can be retried", id, a.Phase)
		endSpan(span, err)
		return a, err
	}

	// The account is re-read on every retry; the wallet may have switched since the first try.
	account, err := requireAccount(ctx, s.session)
	if err != nil {
		endSpan(span, err)
		return a, err
	}
	// A send that timed out or lost its receipt may still have been mined for the previous sender.
	landed, err := s.alreadyRecorded(ctx, a, a.Account)
	if err != nil {
		endSpan(span, err)
		return a, err
	}
	if !landed && account != a.Account {
		s.log.InfoContext(ctx, "retrying with a different account", "attempt", id, "previous", a.Account.Hex(), "account", account.Hex())
		a.Account = account
	}

	if err := s.move(ctx, a, model.PhaseRecordingOnLedger, nil); err != nil {
		endSpan(span, err)
		return a, err
	}
	if landed {
		err = s.completeRecorded(ctx, a)
		endSpan(span, err)
		return a, err
	}
	err = s.record(ctx, a, account)
	endSpan(span, err)
	return a, err
}

// settleInterrupted moves an attempt stuck mid-phase to where Retry or Discard can take it.
// The caller holds the claim, so nothing in this process is driving it.
func (s *uploadService) settleInterrupted(ctx context.Context, a *model.SubmissionAttempt) error {
	var to model.Phase
	switch a.Phase {
	case model.PhaseRecordingOnLedger:
		to = model.PhasePartialFailure
	case model.PhaseStoringContent:
		to = model.PhaseFailed
	default:
		return nil
	}
	s.log.WarnContext(ctx, "settling interrupted attempt", "attempt", a.ID, "phase", a.Phase, "to", to)
	return s.move(ctx, a, to, ErrInterrupted)
}

// alreadyRecorded asks the ledger whether sender already lists the attempt's content id.
func (s *uploadService) alreadyRecorded(ctx context.Context, a *model.SubmissionAttempt, sender common.Address) (bool, error) {
	if s.refresher == nil {
		return false, nil
	}
	return s.refresher.Recorded(ctx, sender, a.ContentID)
}

// completeRecorded finishes an attempt whose content id the ledger already lists.
func (s *uploadService) completeRecorded(ctx context.Context, a *model.SubmissionAttempt) error {
	if err := s.move(ctx, a, model.PhaseComplete, nil); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "submission already on the ledger", "attempt", a.ID, "content_id", a.ContentID, "account", a.Account.Hex())
	s.refreshLater(ctx, a.Account, a.ContentID)
	return nil
}

// record runs the ledger step and lands the attempt in Complete or PartialFailure.
func (s *uploadService) record(ctx context.Context, a *model.SubmissionAttempt, account common.Address) error {
	a.LedgerAttempts++
	rcpt, err := s.ledger.SubmitDocument(ctx, account, a.ContentID, a.DocumentType)
	if err != nil {
		s.metrics.LedgerWrite("uploadDocument", writeOutcome(err))
		if mErr := s.move(ctx, a, model.PhasePartialFailure, err); mErr != nil {
			s.log.ErrorContext(ctx, "mark partial failure", "attempt", a.ID, "error", mErr)
		}
		s.log.WarnContext(ctx, "ledger step failed, content id retained",
			"attempt", a.ID,
			"content_id", a.ContentID,
			"ledger_attempts", a.LedgerAttempts,
			"error", err,
		)
		return err
	}
	s.metrics.LedgerWrite("uploadDocument", metrics.OutcomeSuccess)
	a.TransactionHash = rcpt.TransactionHash
	if err := s.move(ctx, a, model.PhaseComplete, nil); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "submission complete",
		"attempt", a.ID,
		"content_id", a.ContentID,
		"tx", a.TransactionHash,
		"document_type", a.DocumentType,
	)
	s.refreshLater(ctx, account, a.ContentID)
	return nil
}

// move validates and journals a phase change. A journal failure is logged, not returned:
// the ledger, not the journal, is the source of truth.
func (s *uploadService) move(ctx context.Context, a *model.SubmissionAttempt, to model.Phase, cause error) error {
	from, entered := a.Phase, a.UpdatedAt
	now := s.now()
	var err error
	if cause != nil {
		err = a.Fail(to, cause, now)
	} else {
		err = a.Transition(to, now)
	}
	if err != nil {
		return apperr.Wrap(apperr.ErrInvalidState, err)
	}
	if to == model.PhaseRecordingOnLedger || to.IsTerminal() {
		a.File = nil
	}
	s.metrics.Transition(from, to)
	s.metrics.ObservePhase(from, now.Sub(entered))
	if err := s.repo.Save(ctx, a); err != nil {
		s.log.ErrorContext(ctx, "journal attempt", "attempt", a.ID, "phase", to, "error", err)
	}
	return nil
}

func (s *uploadService) refreshLater(ctx context.Context, account common.Address, contentID string) {
	if s.refresher == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		if err := s.refresher.RefreshAfterSubmit(ctx, account, contentID); err != nil {
			s.log.WarnContext(ctx, "view refresh after submit", "account", account.Hex(), "content_id", contentID, "error", err)
		}
	}()
}

// wait blocks until background refreshes finish.
func (s *uploadService) wait() {
	s.bg.Wait()
}

func (s *uploadService) Get(ctx context.Context, id string) (*model.SubmissionAttempt, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAttemptNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, err)
		}
		return nil, err
	}
	return a, nil
}

func (s *uploadService) List(ctx context.Context, account common.Address, limit, offset int) (*AttemptListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.ListByAccount(ctx, account, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &AttemptListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *uploadService) Discard(ctx context.Context, id string) error {
	if !s.tryClaim(id) {
		return apperr.Wrap(apperr.ErrInvalidState, ErrAttemptBusy)
	}
	defer s.release(id)
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *uploadService) claim(id string) {
	s.mu.Lock()
	s.inflight[id] = struct{}{}
	s.mu.Unlock()
}

func (s *uploadService) tryClaim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *uploadService) release(id string) {
	s.mu.Lock()
	delete(s.inflight, id)
	s.mu.Unlock()
}

func storageOutcome(err error) string {
	if errors.Is(err, apperr.ErrStorageRejected) {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeFailed
}

func writeOutcome(err error) string {
	if errors.Is(err, apperr.ErrLedgerWriteRejected) {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeFailed
}

func endSpan(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
