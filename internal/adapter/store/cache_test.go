package store

import (
	"path/filepath"
	"reflect"
	"testing"

	"frameset/internal/port"
)

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := NewBoltCache(path, "mock", 3)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	key := port.CacheKey{Path: "/videos/a.mp4", ModTime: 1700000000, Stride: 4}

	_, ok, err := c.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected miss before Put")
	}

	vectors := [][]float32{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	if err := c.Put(key, vectors); err != nil {
		t.Fatal(err)
	}

	got, ok, err := c.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if !reflect.DeepEqual(got, vectors) {
		t.Errorf("round trip mismatch:\n got  %v\n want %v", got, vectors)
	}
}

func TestCacheKeyDiscriminates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := NewBoltCache(path, "mock", 2)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	key := port.CacheKey{Path: "/videos/a.mp4", ModTime: 100, Stride: 4}
	if err := c.Put(key, [][]float32{{1, 2}}); err != nil {
		t.Fatal(err)
	}

	// Touching the file or changing the sampling rate must miss.
	for _, miss := range []port.CacheKey{
		{Path: "/videos/a.mp4", ModTime: 101, Stride: 4},
		{Path: "/videos/a.mp4", ModTime: 100, Stride: 2},
		{Path: "/videos/b.mp4", ModTime: 100, Stride: 4},
	} {
		if _, ok, _ := c.Get(miss); ok {
			t.Errorf("expected miss for %v", miss)
		}
	}
}

func TestCacheEmptySequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := NewBoltCache(path, "mock", 2)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	key := port.CacheKey{Path: "/videos/empty.mp4", ModTime: 1, Stride: 1}
	if err := c.Put(key, nil); err != nil {
		t.Fatal(err)
	}

	got, ok, err := c.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected hit for cached empty sequence")
	}
	if len(got) != 0 {
		t.Errorf("expected empty sequence, got %v", got)
	}
}

func TestCacheInvalidatedOnModelChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := NewBoltCache(path, "model-a", 2)
	if err != nil {
		t.Fatal(err)
	}
	key := port.CacheKey{Path: "/videos/a.mp4", ModTime: 1, Stride: 1}
	if err := c.Put(key, [][]float32{{1, 2}}); err != nil {
		t.Fatal(err)
	}
	c.Close()

	// Reopening with the same model keeps entries.
	c, err = NewBoltCache(path, "model-a", 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(key); !ok {
		t.Error("expected entries to survive reopen with same model")
	}
	c.Close()

	// A different model clears the cache.
	c, err = NewBoltCache(path, "model-b", 2)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, ok, _ := c.Get(key); ok {
		t.Error("expected cache cleared after model change")
	}
}
