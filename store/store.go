package store

import (
	"context"

	"github.com/cockroachdb/errors"
)

var ErrKeyNotFound = errors.New("not found")

type KVPair struct {
	Key   string
	Value string
}

// OpType describes the mutation a compensating action replays.
type OpType int

const (
	// OpTypePut restores a key to a previous value.
	OpTypePut OpType = iota
	// OpTypeDelete removes a key that did not exist before the transaction.
	OpTypeDelete
)

// Store is a key-value mapping with nested, undo-logged transactions.
// Every operation is total: absent keys are valid input and transaction
// control with no open transaction is a no-op.
type Store interface {
	// Get returns ErrKeyNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string)
	Unset(ctx context.Context, key string)
	// CountValue reports how many keys currently hold value.
	CountValue(ctx context.Context, value string) int
	// FindKeysByValue returns the keys holding value in iteration order.
	FindKeysByValue(ctx context.Context, value string) []string

	Begin(ctx context.Context)
	// Rollback undoes the innermost open transaction.
	Rollback(ctx context.Context)
	// Commit closes every open transaction at once.
	Commit(ctx context.Context)
	// Depth is the number of open transactions.
	Depth() int
}
