package store

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/emirpasic/gods/maps"
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/maps/treemap"
)

// entries is the primary mapping. linkedhashmap keeps insertion order,
// treemap keeps ascending key order.
type entries interface {
	maps.Map
	Each(f func(key interface{}, value interface{}))
}

// TxnStore is an in-memory Store. Mutations made while a transaction is open
// are recorded as compensating actions on the innermost frame so Rollback can
// replay them in reverse.
type TxnStore struct {
	mtx    sync.RWMutex
	data   entries
	frames txnStack
	log    *slog.Logger
}

var _ Store = (*TxnStore)(nil)

// TxnStoreOption configures the TxnStore.
type TxnStoreOption func(*TxnStore)

// WithTxnStoreLogger sets a custom logger.
func WithTxnStoreLogger(l *slog.Logger) TxnStoreOption {
	return func(s *TxnStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSortedKeys iterates keys in ascending order instead of insertion order.
func WithSortedKeys() TxnStoreOption {
	return func(s *TxnStore) {
		s.data = treemap.NewWithStringComparator()
	}
}

func NewTxnStore(opts ...TxnStoreOption) *TxnStore {
	s := &TxnStore{
		data: linkedhashmap.New(),
		log: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		})),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *TxnStore) Get(_ context.Context, key string) (string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	v, ok := s.lookup(key)
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (s *TxnStore) Set(_ context.Context, key string, value string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.put(key, value, true)
}

func (s *TxnStore) Unset(_ context.Context, key string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.remove(key, true)
}

func (s *TxnStore) CountValue(_ context.Context, value string) int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	n := 0
	s.each(func(_, v string) {
		if v == value {
			n++
		}
	})
	return n
}

func (s *TxnStore) FindKeysByValue(_ context.Context, value string) []string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	keys := []string{}
	s.each(func(k, v string) {
		if v == value {
			keys = append(keys, k)
		}
	})
	return keys
}

// Scan returns every pair in iteration order.
func (s *TxnStore) Scan(_ context.Context) []KVPair {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	result := make([]KVPair, 0, s.data.Size())
	s.each(func(k, v string) {
		result = append(result, KVPair{Key: k, Value: v})
	})
	return result
}

func (s *TxnStore) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.data.Size()
}

func (s *TxnStore) Depth() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.frames.depth()
}

func (s *TxnStore) Begin(ctx context.Context) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.frames.push()
	s.log.DebugContext(ctx, "Begin",
		slog.Int("depth", s.frames.depth()),
	)
}

// Rollback pops the innermost frame and replays it newest first. The write
// lock is held for the whole replay so no other call observes a partial undo.
func (s *TxnStore) Rollback(ctx context.Context) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	frame, ok := s.frames.pop()
	if !ok {
		return
	}

	for i := len(frame) - 1; i >= 0; i-- {
		e := frame[i]
		switch e.op {
		case OpTypePut:
			s.put(e.key, e.value, false)
		case OpTypeDelete:
			s.remove(e.key, false)
		}
	}

	s.log.DebugContext(ctx, "Rollback",
		slog.Int("replayed", len(frame)),
		slog.Int("depth", s.frames.depth()),
	)
}

// Commit drops the undo history of every open transaction. Contents stay as
// they are.
func (s *TxnStore) Commit(ctx context.Context) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	committed := s.frames.depth()
	s.frames = nil
	if committed > 0 {
		s.log.DebugContext(ctx, "Commit",
			slog.Int("committed", committed),
		)
	}
}

// put writes key. When record is set and a transaction is open, the
// compensating action is logged first. Replays pass record=false.
func (s *TxnStore) put(key, value string, record bool) {
	if record {
		prev, ok := s.lookup(key)
		if ok {
			s.frames.record(restoreSet(key, prev))
		} else {
			s.frames.record(restoreUnset(key))
		}
	}
	s.data.Put(key, value)
}

func (s *TxnStore) remove(key string, record bool) {
	prev, ok := s.lookup(key)
	if !ok {
		return
	}
	if record {
		s.frames.record(restoreSet(key, prev))
	}
	s.data.Remove(key)
}

func (s *TxnStore) lookup(key string) (string, bool) {
	v, ok := s.data.Get(key)
	if !ok {
		return "", false
	}
	vv, ok := v.(string)
	return vv, ok
}

func (s *TxnStore) each(f func(key, value string)) {
	s.data.Each(func(key interface{}, value interface{}) {
		k, ok := key.(string)
		if !ok {
			return
		}
		v, ok := value.(string)
		if !ok {
			return
		}
		f(k, v)
	})
}
