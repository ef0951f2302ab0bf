// Package posting provides the document posting engine.
//
// Posting records a document's movements into accumulation registers;
// unposting removes them. Reposting an already-posted document deletes
// the movements of the previous posting iteration and records fresh
// ones in the same transaction, so derived balances never observe a
// half-applied edit.
package posting

import (
	"context"

	"tradebook/internal/core/id"
)

// Postable is implemented by documents that can be posted to registers.
// entity.Document provides defaults for everything except
// GetDocumentType and GenerateMovements.
type Postable interface {
	// GetID returns document ID
	GetID() id.ID

	// GetDocumentType returns type name (e.g., "Sale", "Payment")
	GetDocumentType() string

	// GetPostedVersion returns current posting iteration
	GetPostedVersion() int

	// IsPosted returns true if document is currently posted
	IsPosted() bool

	// CanPost validates document before posting
	CanPost(ctx context.Context) error

	// GenerateMovements produces register movements for the next posting
	// iteration (recorder version = GetPostedVersion() + 1)
	GenerateMovements(ctx context.Context) (*MovementSet, error)

	// MarkPosted sets posted flag and increments posting version
	MarkPosted()

	// MarkUnposted clears posted flag
	MarkUnposted()
}
