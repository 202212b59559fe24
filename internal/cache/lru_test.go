package cache

import (
	"testing"
	"time"
)

func TestLRU(t *testing.T) {
	t.Parallel()

	t.Run("evicts least recently used", func(t *testing.T) {
		t.Parallel()

		l := NewLRU(2)
		l.Set("a", "1", time.Hour)
		l.Set("b", "2", time.Hour)
		if _, ok := l.Get("a"); !ok {
			t.Fatal("expected a to be present")
		}
		l.Set("c", "3", time.Hour)

		if _, ok := l.Get("b"); ok {
			t.Error("expected b to be evicted")
		}
		if v, ok := l.Get("a"); !ok || v != "1" {
			t.Errorf("Get(a) = %q, %v", v, ok)
		}
		if v, ok := l.Get("c"); !ok || v != "3" {
			t.Errorf("Get(c) = %q, %v", v, ok)
		}
		if l.Len() != 2 {
			t.Errorf("Len() = %d, want 2", l.Len())
		}
	})

	t.Run("overwrite refreshes value", func(t *testing.T) {
		t.Parallel()

		l := NewLRU(2)
		l.Set("a", "1", time.Hour)
		l.Set("a", "2", time.Hour)
		if v, _ := l.Get("a"); v != "2" {
			t.Errorf("Get(a) = %q, want 2", v)
		}
		if l.Len() != 1 {
			t.Errorf("Len() = %d, want 1", l.Len())
		}
	})

	t.Run("expired entries are misses", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		l := NewLRU(4)
		l.now = func() time.Time { return now }
		l.Set("a", "1", time.Minute)

		now = now.Add(30 * time.Second)
		if _, ok := l.Get("a"); !ok {
			t.Fatal("expected a before expiry")
		}
		now = now.Add(time.Minute)
		if _, ok := l.Get("a"); ok {
			t.Error("expected a to be expired")
		}
		if l.Len() != 0 {
			t.Errorf("Len() = %d, want 0 after lazy removal", l.Len())
		}
	})

	t.Run("zero capacity holds one entry", func(t *testing.T) {
		t.Parallel()

		l := NewLRU(0)
		l.Set("a", "1", time.Hour)
		l.Set("b", "2", time.Hour)
		if l.Len() != 1 {
			t.Errorf("Len() = %d, want 1", l.Len())
		}
	})
}
