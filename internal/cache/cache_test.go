package cache

import "testing"

// TestCache_SetGet は格納した値がそのまま取り出せることを検証する。
func TestCache_SetGet(t *testing.T) {
	c, err := New[string, int](8)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	c.Set("a", 1)

	got, ok := c.Get("a")
	if !ok {
		t.Fatal("expected cache hit for key a")
	}
	if got != 1 {
		t.Errorf("Get = %d, want 1", got)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected cache miss for unknown key")
	}
}

// TestCache_Remove は削除したエントリがミスになることを検証する。
func TestCache_Remove(t *testing.T) {
	c, err := New[string, string](8)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	c.Set("k", "v")
	c.Remove("k")

	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after Remove")
	}
}

// TestCache_Eviction は容量超過時に古いエントリが追い出されることを検証する。
func TestCache_Eviction(t *testing.T) {
	c, err := New[int, int](2)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	c.Set(1, 1)
	c.Set(2, 2)
	c.Set(3, 3)

	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if _, ok := c.Get(1); ok {
		t.Error("expected oldest entry to be evicted")
	}
}

// TestNew_InvalidSize はサイズ0以下がエラーになることを検証する。
func TestNew_InvalidSize(t *testing.T) {
	if _, err := New[string, int](0); err == nil {
		t.Fatal("expected error for size 0, got nil")
	}
}

// mockRecorder はRecorderのモック実装。
type mockRecorder struct {
	hits   []string
	misses []string
}

func (m *mockRecorder) RecordCacheHit(cache string)  { m.hits = append(m.hits, cache) }
func (m *mockRecorder) RecordCacheMiss(cache string) { m.misses = append(m.misses, cache) }

// TestNewObserved_RecordsHitAndMiss はヒット/ミスがレコーダーに記録されることを検証する。
func TestNewObserved_RecordsHitAndMiss(t *testing.T) {
	rec := &mockRecorder{}
	c, err := NewObserved[string, int](4, "identity", rec)
	if err != nil {
		t.Fatalf("NewObserved failed: %v", err)
	}

	c.Set("a", 1)
	c.Get("a")
	c.Get("missing")

	if len(rec.hits) != 1 || rec.hits[0] != "identity" {
		t.Errorf("hits = %v, want [identity]", rec.hits)
	}
	if len(rec.misses) != 1 || rec.misses[0] != "identity" {
		t.Errorf("misses = %v, want [identity]", rec.misses)
	}
}
