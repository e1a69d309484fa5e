package store

// undoEntry is a compensating action for exactly one mutation.
// OpTypeDelete means "remove key", OpTypePut means "restore key to value".
type undoEntry struct {
	op    OpType
	key   string
	value string
}

func restoreUnset(key string) undoEntry {
	return undoEntry{op: OpTypeDelete, key: key}
}

func restoreSet(key, value string) undoEntry {
	return undoEntry{op: OpTypePut, key: key, value: value}
}

// undoLog holds the compensating actions of one transaction in the order
// the mutations were applied.
type undoLog []undoEntry

// txnStack is the set of open transactions, innermost last.
type txnStack []undoLog

func (s txnStack) depth() int {
	return len(s)
}

// push opens a new, empty frame.
func (s *txnStack) push() {
	*s = append(*s, undoLog{})
}

// pop removes and returns the innermost frame.
func (s *txnStack) pop() (undoLog, bool) {
	n := len(*s)
	if n == 0 {
		return nil, false
	}
	top := (*s)[n-1]
	(*s)[n-1] = nil
	*s = (*s)[:n-1]
	return top, true
}

// record appends e to the innermost frame. It does nothing when no
// transaction is open.
func (s txnStack) record(e undoEntry) {
	if n := len(s); n > 0 {
		s[n-1] = append(s[n-1], e)
	}
}
