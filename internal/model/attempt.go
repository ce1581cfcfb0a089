package model

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Phase is the step a SubmissionAttempt has reached.
type Phase string

const (
	PhaseIdle              Phase = "Idle"
	PhaseStoringContent    Phase = "StoringContent"
	PhaseRecordingOnLedger Phase = "RecordingOnLedger"
	PhaseComplete          Phase = "Complete"
	PhasePartialFailure    Phase = "PartialFailure"
	// PhaseFailed is the aborted state reached when storing fails; nothing exists to resume.
	PhaseFailed Phase = "Failed"
)

var transitions = map[Phase][]Phase{
	PhaseIdle:              {PhaseStoringContent, PhaseFailed},
	PhaseStoringContent:    {PhaseRecordingOnLedger, PhaseFailed},
	PhaseRecordingOnLedger: {PhaseComplete, PhasePartialFailure},
	PhasePartialFailure:    {PhaseRecordingOnLedger},
}

// CanTransition reports whether from -> to is a legal step.
func CanTransition(from, to Phase) bool {
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the attempt can no longer move.
func (p Phase) IsTerminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}

// SubmissionAttempt tracks one in-flight upload. It is the only carrier of retry state:
// once ContentID is set it is reused by every retry and never regenerated.
type SubmissionAttempt struct {
	ID              string         `json:"id"`
	Account         common.Address `json:"account" swaggertype:"string"`
	FileName        string         `json:"file_name"`
	MimeType        string         `json:"mime_type"`
	Size            int64          `json:"size"`
	DocumentType    string         `json:"document_type"`
	Phase           Phase          `json:"phase"`
	ContentID       string         `json:"content_id,omitempty"`
	TransactionHash string         `json:"transaction_hash,omitempty"`
	FailureReason   string         `json:"failure_reason,omitempty"`
	LedgerAttempts  int            `json:"ledger_attempts"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	// File is only held in memory for the storing step.
	File []byte `json:"-"`
}

// Transition moves the attempt to the next phase.
func (a *SubmissionAttempt) Transition(to Phase, now time.Time) error {
	if !CanTransition(a.Phase, to) {
		return fmt.Errorf("illegal transition %s -> %s", a.Phase, to)
	}
	if to == PhaseRecordingOnLedger && a.ContentID == "" {
		return fmt.Errorf("cannot record without a content id")
	}
	a.Phase = to
	a.UpdatedAt = now
	if to != PhasePartialFailure && to != PhaseFailed {
		a.FailureReason = ""
	}
	return nil
}

// Fail moves the attempt to a failure phase and records the reason verbatim.
func (a *SubmissionAttempt) Fail(to Phase, reason error, now time.Time) error {
	if err := a.Transition(to, now); err != nil {
		return err
	}
	if reason != nil {
		a.FailureReason = reason.Error()
	}
	return nil
}

// Result is the payload emitted once an attempt completes.
func (a *SubmissionAttempt) Result() UploadResult {
	return UploadResult{
		ContentID:       a.ContentID,
		TransactionHash: a.TransactionHash,
		DocumentType:    a.DocumentType,
		FileName:        a.FileName,
	}
}

// UploadResult is emitted on Complete.
type UploadResult struct {
	ContentID       string `json:"content_id"`
	TransactionHash string `json:"transaction_hash"`
	DocumentType    string `json:"document_type"`
	FileName        string `json:"file_name,omitempty"`
}
