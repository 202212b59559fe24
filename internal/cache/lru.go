package cache

import (
	"container/list"
	"sync"
	"time"
)

type lruEntry struct {
	key       string
	value     string
	expiresAt time.Time
}

// LRU is a bounded in-memory map with least-recently-used eviction and
// lazy expiry. Reads move an entry to the front; when capacity is
// exceeded the entry at the back is evicted. Expired entries are removed
// when read.
type LRU struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
	now      func() time.Time
}

// NewLRU creates an LRU holding at most capacity entries. A capacity
// below 1 is treated as 1.
func NewLRU(capacity int) *LRU {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

// Get returns the value stored under key if it has not expired.
func (l *LRU) Get(key string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	el, ok := l.items[key]
	if !ok {
		return "", false
	}
	entry := el.Value.(*lruEntry)
	if l.now().After(entry.expiresAt) {
		l.order.Remove(el)
		delete(l.items, key)
		return "", false
	}
	l.order.MoveToFront(el)
	return entry.value, true
}

// Set stores value under key for ttl, evicting the least recently used
// entry when full.
func (l *LRU) Set(key, value string, ttl time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expiresAt := l.now().Add(ttl)
	if el, ok := l.items[key]; ok {
		entry := el.Value.(*lruEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		l.order.MoveToFront(el)
		return
	}

	l.items[key] = l.order.PushFront(&lruEntry{key: key, value: value, expiresAt: expiresAt})
	for l.order.Len() > l.capacity {
		oldest := l.order.Back()
		l.order.Remove(oldest)
		delete(l.items, oldest.Value.(*lruEntry).key)
	}
}

// Len returns the number of stored entries, expired ones included.
func (l *LRU) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.order.Len()
}
