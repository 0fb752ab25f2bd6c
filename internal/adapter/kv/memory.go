package kv

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used in tests and single-node setups
// where Redis is not available. Change notifications are delivered to
// subscribers in the same process only.
type MemoryStore struct {
	mu      sync.RWMutex
	values  map[string]memoryValue
	subs    map[string]map[int]chan []byte
	nextSub int
	closed  bool
}

type memoryValue struct {
	data     []byte
	expireAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]memoryValue),
		subs:   make(map[string]map[int]chan []byte),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	v, ok := s.values[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if !v.expireAt.IsZero() && time.Now().After(v.expireAt) {
		return nil, ErrNotFound
	}

	data := make([]byte, len(v.data))
	copy(data, v.data)
	return data, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	data := make([]byte, len(value))
	copy(data, value)

	v := memoryValue{data: data}
	if ttl > 0 {
		v.expireAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = v
	for _, ch := range s.subs[key] {
		// Non-blocking: a slow subscriber drops the notification rather
		// than stalling the writer, matching the lossy storage-event model.
		select {
		case ch <- data:
		default:
		}
	}

	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, key string) (<-chan []byte, func(), error) {
	ch := make(chan []byte, 8)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]chan []byte)
	}
	s.subs[key][id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs[key], id)
			close(ch)
			s.mu.Unlock()
		})
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, cancel, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
