package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"docverify/internal/apperr"
	"docverify/internal/ledger"
	"docverify/internal/metrics"
	"docverify/internal/model"
)

// DecisionInput is a verifier's outcome for one document.
type DecisionInput struct {
	Subject  common.Address
	Index    uint64
	Decision model.Status
	Notes    string
}

// QueueFilter selects which records Queue returns.
type QueueFilter string

const (
	QueuePending QueueFilter = "pending"
	QueueDecided QueueFilter = "decided"
)

// ParseQueueFilter defaults to pending.
func ParseQueueFilter(s string) (QueueFilter, error) {
	switch QueueFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", QueuePending:
		return QueuePending, nil
	case QueueDecided:
		return QueueDecided, nil
	}
	return "", apperr.Validation(fmt.Sprintf("unknown queue filter %q", s))
}

// ReviewService is the institution side of the workflow.
type ReviewService interface {
	// Decide records Verified or Rejected for a Pending document.
	Decide(ctx context.Context, in DecisionInput) (*model.Receipt, error)
	// Queue lists documents across every submitter, either awaiting review or already decided.
	Queue(ctx context.Context, filter QueueFilter) ([]model.DocumentRecord, error)
}

type docKey struct {
	owner common.Address
	index uint64
}

type reviewService struct {
	ledger     ledger.Ledger
	session    Session
	reconciler *Reconciler
	metrics    *metrics.Workflow
	log        *slog.Logger

	mu sync.Mutex
	// decided holds decisions this process has seen mined, so a lagging read never offers a
	// document for review twice.
	decided map[docKey]model.Status
}

func NewReviewService(l ledger.Ledger, sess Session, rec *Reconciler, m *metrics.Workflow, log *slog.Logger) ReviewService {
	if log == nil {
		log = slog.Default()
	}
	return &reviewService{
		ledger:     l,
		session:    sess,
		reconciler: rec,
		metrics:    m,
		log:        log.With("component", "review"),
		decided:    make(map[docKey]model.Status),
	}
}

func (s *reviewService) Decide(ctx context.Context, in DecisionInput) (*model.Receipt, error) {
	if !in.Decision.IsDecision() {
		return nil, apperr.Validation("decision must be Verified or Rejected")
	}
	notes := strings.TrimSpace(in.Notes)
	if in.Decision == model.StatusRejected && notes == "" {
		return nil, apperr.Validation("a rejection requires notes")
	}

	account, err := requireAccount(ctx, s.session)
	if err != nil {
		return nil, err
	}
	if !s.session.IsVerifier() {
		return nil, ErrNotVerifier
	}

	key := docKey{owner: in.Subject, index: in.Index}
	if s.wasDecided(key) {
		return nil, apperr.Wrap(apperr.ErrInvalidState, ErrTerminalStatus)
	}
	current, err := s.reconciler.Document(ctx, in.Subject, in.Index)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, apperr.Wrap(apperr.ErrInvalidState, fmt.Errorf("%w: %s", ErrTerminalStatus, current.Status))
	}

	rcpt, err := s.ledger.SubmitVerification(ctx, account, in.Subject, in.Index, in.Decision, notes)
	if err != nil {
		s.metrics.LedgerWrite("verifyDocument", writeOutcome(err))
		return nil, err
	}
	s.metrics.LedgerWrite("verifyDocument", metrics.OutcomeSuccess)

	s.mu.Lock()
	s.decided[key] = in.Decision
	s.mu.Unlock()
	s.log.InfoContext(ctx, "decision recorded",
		"subject", in.Subject.Hex(),
		"index", in.Index,
		"decision", in.Decision,
		"verifier", account.Hex(),
		"tx", rcpt.TransactionHash,
	)

	if _, err := s.reconciler.LoadFor(ctx, in.Subject); err != nil {
		s.log.WarnContext(ctx, "refresh after decision", "subject", in.Subject.Hex(), "error", err)
	}
	return rcpt, nil
}

func (s *reviewService) wasDecided(k docKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.decided[k]
	return ok
}

func (s *reviewService) Queue(ctx context.Context, filter QueueFilter) ([]model.DocumentRecord, error) {
	submitters, err := s.ledger.ListSubmitters(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.DocumentRecord, 0)
	for _, sub := range submitters {
		docs, err := s.reconciler.LoadFor(ctx, sub)
		if err != nil {
			return nil, err
		}
		for _, d := range docs {
			switch filter {
			case QueueDecided:
				if d.Status.IsTerminal() {
					out = append(out, d)
				}
			default:
				if d.Status == model.StatusPending && !s.wasDecided(docKey{owner: d.Owner, index: d.Index}) {
					out = append(out, d)
				}
			}
		}
	}
	// Oldest first for review; newest first for history.
	sort.SliceStable(out, func(i, j int) bool {
		if filter == QueueDecided {
			return out[i].SubmittedAt > out[j].SubmittedAt
		}
		return out[i].SubmittedAt < out[j].SubmittedAt
	})
	return out, nil
}
