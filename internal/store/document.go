package store

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

var ErrNotFound = errors.New("document not found")

// Envelope is a stored document: a JSON body plus the metadata the store owns.
type Envelope struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Body      []byte
}

// DocumentStore keeps JSON documents in named collections. Ids are assigned per collection,
// increase monotonically and are never reused, even after deletes.
type DocumentStore interface {
	Insert(ctx context.Context, collection string, body []byte) (Envelope, error)
	List(ctx context.Context, collection string) ([]Envelope, error)
	Get(ctx context.Context, collection string, id int64) (Envelope, error)
	// Modify replaces the body of one document with the result of fn, atomically with
	// respect to other Modify calls on the same store.
	Modify(ctx context.Context, collection string, id int64, fn func(current Envelope) ([]byte, error)) (Envelope, error)
	Remove(ctx context.Context, collection string, id int64) (bool, error)
}
