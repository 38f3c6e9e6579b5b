package cache

import (
	"path/filepath"
	"testing"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	c, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestStoreThenLookupHits(t *testing.T) {
	c := openTestCache(t)
	c.Store("(1) hello\n", "(1) 你好\n", "en-zh")

	got, ok := c.Lookup("(1) hello\n", "en-zh")
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got != "(1) 你好\n" {
		t.Fatalf("got %q", got)
	}
}

func TestLookupMissesOnDifferentLangPair(t *testing.T) {
	c := openTestCache(t)
	c.Store("(1) hello\n", "(1) 你好\n", "en-zh")

	if _, ok := c.Lookup("(1) hello\n", "en-ja"); ok {
		t.Fatal("expected a miss for a different language pair")
	}
}

func TestStoreIsIdempotentUnderRepeatedSave(t *testing.T) {
	c := openTestCache(t)
	c.Store("(1) hi\n", "(1) 嗨\n", "en-zh")
	c.Store("(1) hi\n", "(1) 嗨\n", "en-zh")

	got, ok := c.Lookup("(1) hi\n", "en-zh")
	if !ok || got != "(1) 嗨\n" {
		t.Fatalf("got %q, %v", got, ok)
	}
}

func TestPromptDistanceHelper(t *testing.T) {
	if promptDistance("abc", "abc") != 0 {
		t.Fatal("identical prompts should have distance 0")
	}
	if promptDistance("abc", "abd") != 1 {
		t.Fatal("single substitution should have distance 1")
	}
}
