// api/cache/memory.go
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryBackend keeps entries in a process-local map. Counters and entries
// are not shared across instances, so it is only correct for a
// single-instance deployment.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	done    chan struct{}
	stop    sync.Once
}

func NewMemoryBackend() *MemoryBackend {
	b := &MemoryBackend{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
	}
	go b.sweep()
	return b
}

// sweep drops expired entries so an idle key does not pin memory until the
// next Get touches it.
func (b *MemoryBackend) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-b.done:
			return
		case now := <-ticker.C:
			b.mu.Lock()
			for key, entry := range b.entries {
				if now.After(entry.expiresAt) {
					delete(b.entries, key)
				}
			}
			b.mu.Unlock()
		}
	}
}

// Stop terminates the sweep goroutine.
func (b *MemoryBackend) Stop() {
	b.stop.Do(func() { close(b.done) })
}

func (b *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.RLock()
	entry, ok := b.entries[key]
	b.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if time.Now().After(entry.expiresAt) {
		b.mu.Lock()
		delete(b.entries, key)
		b.mu.Unlock()
		return "", false, nil
	}
	return entry.value, true, nil
}

func (b *MemoryBackend) SetEx(_ context.Context, key string, ttl time.Duration, value string) error {
	b.mu.Lock()
	b.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Keys(_ context.Context, pattern string) ([]string, error) {
	now := time.Now()
	b.mu.RLock()
	defer b.mu.RUnlock()
	var keys []string
	for key, entry := range b.entries {
		if now.After(entry.expiresAt) {
			continue
		}
		if matchGlob(pattern, key) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// matchGlob applies redis KEYS-style '*' globbing: a star matches any run
// of characters, including '/'. Invalidation patterns use no other
// metacharacters.
func matchGlob(pattern, key string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == key
	}
	if !strings.HasPrefix(key, parts[0]) {
		return false
	}
	key = key[len(parts[0]):]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(key, part)
		if idx < 0 {
			return false
		}
		key = key[idx+len(part):]
	}
	return strings.HasSuffix(key, parts[len(parts)-1])
}

func (b *MemoryBackend) Del(_ context.Context, keys ...string) error {
	b.mu.Lock()
	for _, key := range keys {
		delete(b.entries, key)
	}
	b.mu.Unlock()
	return nil
}
