package store

import (
	"path/filepath"
	"sort"
	"testing"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	if _, found := s.Get([]byte("missing")); found {
		t.Fatalf("expected missing key to be absent")
	}

	if err := s.Set([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set([]byte("b"), []byte("2")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, found := s.Get([]byte("a"))
	if !found || string(data) != "1" {
		t.Fatalf("Get(a) = %q, %v; want 1, true", data, found)
	}

	if err := s.Set([]byte("a"), []byte("3")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	data, found = s.Get([]byte("a"))
	if !found || string(data) != "3" {
		t.Fatalf("Get(a) after overwrite = %q, %v; want 3, true", data, found)
	}

	var seen []string
	if err := s.Iterate(func(key []byte, data []byte) bool {
		seen = append(seen, string(key)+"="+string(data))
		return true
	}); err != nil {
		t.Fatalf("Iterate: %v", err)
	}
	sort.Strings(seen)
	want := []string{"a=3", "b=2"}
	if len(seen) != len(want) || seen[0] != want[0] || seen[1] != want[1] {
		t.Fatalf("Iterate visited %v, want %v", seen, want)
	}

	if err := s.Delete([]byte("a")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found := s.Get([]byte("a")); found {
		t.Fatalf("expected key a to be gone after Delete")
	}

	count := 0
	if err := s.Iterate(func(key []byte, data []byte) bool {
		count++
		return true
	}); err != nil {
		t.Fatalf("Iterate after delete: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 remaining key, got %d", count)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestPogrebStoreContract(t *testing.T) {
	dir := t.TempDir()
	s, err := NewPogrebStore(filepath.Join(dir, "authcache.pogreb"))
	if err != nil {
		t.Fatalf("NewPogrebStore: %v", err)
	}
	defer s.Close()

	exerciseStore(t, s)
}

func TestPogrebStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "authcache.pogreb")

	s1, err := NewPogrebStore(path)
	if err != nil {
		t.Fatalf("NewPogrebStore: %v", err)
	}
	if err := s1.Set([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := NewPogrebStore(path)
	if err != nil {
		t.Fatalf("re-open NewPogrebStore: %v", err)
	}
	defer s2.Close()

	data, found := s2.Get([]byte("k"))
	if !found || string(data) != "v" {
		t.Fatalf("Get after reopen = %q, %v; want v, true", data, found)
	}
}
