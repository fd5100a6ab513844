// Package keylock provides mutual exclusion scoped to a string key.
package keylock

import (
	"hash/fnv"
	"sync"
)

const defaultShards = 256

type entry struct {
	mu   sync.Mutex
	refs int
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// Locker hands out one mutex per key. Keys in different shards never touch the same
// bookkeeping lock, and idle entries are released so the map does not grow without bound.
type Locker struct {
	shards []shard
}

// New returns a Locker with n shards (256 when n <= 0).
func New(n int) *Locker {
	if n <= 0 {
		n = defaultShards
	}
	l := &Locker{shards: make([]shard, n)}
	for i := range l.shards {
		l.shards[i].entries = make(map[string]*entry)
	}
	return l
}

// Lock blocks until the key is held and returns the matching unlock func.
func (l *Locker) Lock(key string) (unlock func()) {
	s := l.shardFor(key)

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	e.refs++
	s.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			s.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(s.entries, key)
			}
			s.mu.Unlock()
		})
	}
}

// Len reports how many keys are currently held or awaited.
func (l *Locker) Len() int {
	n := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

func (l *Locker) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &l.shards[h.Sum32()%uint32(len(l.shards))]
}
