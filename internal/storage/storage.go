package storage

import (
	"context"
	"io"
	"strings"
)

// Package storage wraps the content-addressed storage network.
// Put stores bytes and returns the content identifier; ResolveURL turns an identifier into a
// public retrieval URL without touching the network. Implementations never retry: the caller
// owns retry policy.

// PutOptions define optional parameters for storing content.
// Size should be the exact number of bytes if known, or -1.
type PutOptions struct {
	Size        int64
	FileName    string
	ContentType string
	Metadata    map[string]string
}

// Storage is the storage client used by the upload orchestrator.
type Storage interface {
	// Put stores the content read from r and returns its content identifier.
	// Failures wrap apperr.ErrStorageUnavailable or apperr.ErrStorageRejected.
	Put(ctx context.Context, r io.Reader, opt PutOptions) (string, error)
	// ResolveURL returns the gateway URL for a content identifier.
	ResolveURL(contentID string) string
}

// gatewayURL composes <gateway>/ipfs/<cid>.
func gatewayURL(gateway, contentID string) string {
	return strings.TrimRight(gateway, "/") + "/ipfs/" + contentID
}
