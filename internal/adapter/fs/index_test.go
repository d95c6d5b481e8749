package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"frameset/internal/domain"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func names(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func TestListFiltersToVideos(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.mp4")
	touch(t, dir, "a.mkv")
	touch(t, dir, "notes.txt")
	touch(t, dir, "cover.jpg")
	touch(t, dir, "clip.MOV") // extension match is case-insensitive
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "nested"), "deep.mp4") // non-recursive: ignored

	ix := NewIndex(nil, nil)
	paths, err := ix.List(dir)
	if err != nil {
		t.Fatal(err)
	}

	got := names(paths)
	want := []string{"a.mkv", "b.mp4", "clip.MOV"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}

func TestListEmptyDir(t *testing.T) {
	ix := NewIndex(nil, nil)
	paths, err := ix.List(t.TempDir())
	if err != nil {
		t.Fatalf("empty directory must not be an error: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("expected no paths, got %v", paths)
	}
}

func TestListMissingDir(t *testing.T) {
	ix := NewIndex(nil, nil)
	_, err := ix.List("/nonexistent/corpus/dir")
	var srcErr *domain.SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("expected SourceError, got %v", err)
	}
}

func TestListPatterns(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "train_01.mp4")
	touch(t, dir, "train_02.mp4")
	touch(t, dir, "val_01.mp4")
	touch(t, dir, "train_03.mp4.part")

	ix := NewIndex([]string{"train_*"}, []string{"*.part"})
	paths, err := ix.List(dir)
	if err != nil {
		t.Fatal(err)
	}

	got := names(paths)
	want := []string{"train_01.mp4", "train_02.mp4"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
