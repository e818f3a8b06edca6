package mockapi

import "sync"

// table is an insertion-ordered in-memory collection with server-assigned ids.
type table[T any] struct {
	mu    sync.RWMutex
	items map[int64]T
	order []int64
	next  int64
}

func newTable[T any]() *table[T] {
	return &table[T]{items: make(map[int64]T)}
}

// list returns all items in insertion order.
func (t *table[T]) list() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.items[id])
	}
	return out
}

// create assigns the next id and stores build(id).
func (t *table[T]) create(build func(id int64) T) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	item := build(t.next)
	t.items[t.next] = item
	t.order = append(t.order, t.next)
	return item
}

// replace overwrites id in place. It reports false when id is unknown.
func (t *table[T]) replace(id int64, item T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		return false
	}
	t.items[id] = item
	return true
}

// remove deletes id. It reports false when id is unknown.
func (t *table[T]) remove(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		return false
	}
	delete(t.items, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}
