// Package repository contains the persistence abstractions for the submission journal.
// Implementations live in subpackages (memory, postgres) inside this directory.
package repository

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"docverify/internal/model"
)

// ErrAttemptNotFound is returned when no attempt has the requested id.
var ErrAttemptNotFound = errors.New("submission attempt not found")

// AttemptRepository journals SubmissionAttempts. Strictly persistence, no workflow rules:
// phase legality is enforced by the model before Save is called.
type AttemptRepository interface {
	// Save inserts the attempt or overwrites the stored copy with the same ID.
	// The in-memory file payload is never persisted.
	Save(ctx context.Context, a *model.SubmissionAttempt) error

	// FindByID returns ErrAttemptNotFound when the id is unknown.
	FindByID(ctx context.Context, id string) (*model.SubmissionAttempt, error)

	// ListByAccount returns the account's attempts, newest first.
	ListByAccount(ctx context.Context, account common.Address, pq PageQuery) (*PageResult[model.SubmissionAttempt], error)

	// Delete removes an attempt. It returns nil if the row did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
