package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"visionaid/internal/utils"
)

// MemoryStore is an in-process TreeStore with the same value semantics as
// the realtime database: values round-trip through JSON, absent paths read
// as null, and transactions serialize. It backs dev mode and the test suite.
type MemoryStore struct {
	mu   sync.Mutex
	root map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{root: make(map[string]any)}
}

func (s *MemoryStore) Get(ctx context.Context, path string, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return unmarshalValue(s.lookup(path), dest)
}

func (s *MemoryStore) Set(ctx context.Context, path string, value any) error {
	normalized, err := normalize(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(path, normalized)
}

func (s *MemoryStore) Update(ctx context.Context, path string, fields map[string]any) error {
	normalized, err := normalize(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.lookup(path).(map[string]any)
	if !ok {
		target = make(map[string]any)
	}
	for key, value := range normalized.(map[string]any) {
		target[key] = value
	}

	return s.write(path, target)
}

func (s *MemoryStore) Push(ctx context.Context, path string, value any) (string, error) {
	normalized, err := normalize(value)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := utils.NanoIDSize(20)
	if err := s.write(join(path, key), normalized); err != nil {
		return "", err
	}

	return key, nil
}

func (s *MemoryStore) Remove(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	segs := segments(path)
	if len(segs) == 0 {
		s.root = make(map[string]any)
		return nil
	}

	parent, ok := s.lookup(join(segs[:len(segs)-1]...)).(map[string]any)
	if !ok {
		return nil
	}
	delete(parent, segs[len(segs)-1])

	return nil
}

func (s *MemoryStore) Transaction(ctx context.Context, path string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := fn(memoryNode{value: s.lookup(path)})
	if err != nil {
		return err
	}

	normalized, err := normalize(updated)
	if err != nil {
		return err
	}

	return s.write(path, normalized)
}

type memoryNode struct {
	value any
}

func (n memoryNode) Unmarshal(dest any) error {
	return unmarshalValue(n.value, dest)
}

// lookup walks the tree without copying. Callers hold the mutex.
func (s *MemoryStore) lookup(path string) any {
	var current any = s.root
	for _, segment := range segments(path) {
		node, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = node[segment]
	}
	return current
}

func (s *MemoryStore) write(path string, value any) error {
	segs := segments(path)
	if len(segs) == 0 {
		node, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("root value must be an object")
		}
		s.root = node
		return nil
	}

	current := s.root
	for _, segment := range segs[:len(segs)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}

	leaf := segs[len(segs)-1]
	if value == nil {
		delete(current, leaf)
		return nil
	}
	current[leaf] = value

	return nil
}

func segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// normalize forces value through JSON so the tree only holds what the real
// database would: objects, arrays, strings, numbers, bools.
func normalize(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}

	return out, nil
}

func unmarshalValue(value any, dest any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode stored value: %w", err)
	}

	return json.Unmarshal(raw, dest)
}
