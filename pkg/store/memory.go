package store

import (
	"sort"
	"sync"
)

// memoryStore guarda todo en mapas; se pierde al cerrar.
type memoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
	seqs    map[string]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		buckets: map[string]map[string][]byte{},
		seqs:    map[string]int64{},
	}
}

func (s *memoryStore) Put(namespace string, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.buckets[namespace]
	if b == nil {
		b = map[string][]byte{}
		s.buckets[namespace] = b
	}
	b[string(key)] = append([]byte(nil), value...)
	return nil
}

func (s *memoryStore) Get(namespace string, key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buckets[namespace]
	if !ok {
		return nil, bucketNotFound(namespace)
	}
	v, ok := b[string(key)]
	if !ok {
		return nil, notFound(key)
	}
	return append([]byte(nil), v...), nil
}

func (s *memoryStore) Delete(namespace string, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets[namespace], string(key))
	return nil
}

// ListKeys devuelve las claves ordenadas por bytes, igual que bbolt.
func (s *memoryStore) ListKeys(namespace string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buckets[namespace]
	if !ok {
		return nil, bucketNotFound(namespace)
	}
	names := make([]string, 0, len(b))
	for k := range b {
		names = append(names, k)
	}
	sort.Strings(names)
	keys := make([][]byte, len(names))
	for i, k := range names {
		keys[i] = []byte(k)
	}
	return keys, nil
}

func (s *memoryStore) NextID(namespace string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqs[namespace]++
	return s.seqs[namespace], nil
}

func (s *memoryStore) Close() error {
	return nil
}
