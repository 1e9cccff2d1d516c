package kv

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	set       map[string]struct{}
	hash      map[string]string
	list      []string
	expiresAt time.Time // zero means no expiry
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is a process-local [Store] for tests and examples. Expiry is lazy:
// keys are dropped when touched after their deadline. Not suitable for
// sharing state across processes, which is the whole point of the real store.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// live returns the entry for key, dropping it first if expired.
// Callers must hold mu.
func (m *Memory) live(key string) *memoryEntry {
	entry, ok := m.entries[key]
	if !ok {
		return nil
	}
	if entry.expired(m.now()) {
		delete(m.entries, key)
		return nil
	}
	return entry
}

// Get implements [Store].
func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.live(key)
	if entry == nil {
		return "", ErrNotFound
	}
	return entry.value, nil
}

// SetWithTTL implements [Store].
func (m *Memory) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := &memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = entry
	return nil
}

// Incr implements [Store]. A missing or expired key starts from zero.
func (m *Memory) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.live(key)
	if entry == nil {
		entry = &memoryEntry{}
		m.entries[key] = entry
	}

	count, err := strconv.ParseInt(entry.value, 10, 64)
	if err != nil && entry.value != "" {
		return 0, fmt.Errorf("%w: value at %q is not an integer", ErrUnavailable, key)
	}
	count++
	entry.value = strconv.FormatInt(count, 10)
	return count, nil
}

// Expire implements [Store]. Expiring a missing key is a no-op.
func (m *Memory) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry := m.live(key); entry != nil {
		entry.expiresAt = m.now().Add(ttl)
	}
	return nil
}

// SAdd implements [Store].
func (m *Memory) SAdd(ctx context.Context, key, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.live(key)
	if entry == nil {
		entry = &memoryEntry{set: make(map[string]struct{})}
		m.entries[key] = entry
	}
	if entry.set == nil {
		entry.set = make(map[string]struct{})
	}
	entry.set[member] = struct{}{}
	return nil
}

// SIsMember implements [Store].
func (m *Memory) SIsMember(ctx context.Context, key, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.live(key)
	if entry == nil || entry.set == nil {
		return false, nil
	}
	_, ok := entry.set[member]
	return ok, nil
}

// Del implements [Store].
func (m *Memory) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

// HSet implements [Store]. Fields merge into an existing hash.
func (m *Memory) HSet(ctx context.Context, key string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.live(key)
	if entry == nil {
		entry = &memoryEntry{hash: make(map[string]string)}
		m.entries[key] = entry
	}
	if entry.hash == nil {
		entry.hash = make(map[string]string)
	}
	for k, v := range fields {
		entry.hash[k] = v
	}
	return nil
}

// HGetAll implements [Store]. Missing keys yield an empty map.
func (m *Memory) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string)
	entry := m.live(key)
	if entry == nil {
		return out, nil
	}
	for k, v := range entry.hash {
		out[k] = v
	}
	return out, nil
}

// LPush implements [Store].
func (m *Memory) LPush(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.live(key)
	if entry == nil {
		entry = &memoryEntry{}
		m.entries[key] = entry
	}
	entry.list = append([]string{value}, entry.list...)
	return nil
}

// LTrim implements [Store]. Indexes follow Redis LTRIM semantics for the
// non-negative ranges the engine uses (0..n keeps the newest n+1 entries).
func (m *Memory) LTrim(ctx context.Context, key string, start, stop int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.live(key)
	if entry == nil {
		return nil
	}
	n := int64(len(entry.list))
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		entry.list = nil
		return nil
	}
	entry.list = entry.list[start : stop+1]
	return nil
}

// Ping implements [Store]. Always healthy.
func (m *Memory) Ping(ctx context.Context) error { return nil }

// Close implements [Store].
func (m *Memory) Close() error { return nil }

// List returns a copy of the list stored at key, newest first.
// Test helper; not part of [Store].
func (m *Memory) List(key string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.live(key)
	if entry == nil {
		return nil
	}
	out := make([]string, len(entry.list))
	copy(out, entry.list)
	return out
}
