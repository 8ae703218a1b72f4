package slideshow

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/javanhut/Canviz/internal/config"
)

func touchImages(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestNewSorting(t *testing.T) {
	dir := touchImages(t, "b.png", "a.jpg", "c.webp")
	join := func(names ...string) []string {
		out := make([]string, len(names))
		for i, n := range names {
			out[i] = filepath.Join(dir, n)
		}
		return out
	}

	asc, err := New(dir, Options{Sorting: config.SortAscending})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if diff := cmp.Diff(join("a.jpg", "b.png", "c.webp"), asc.images); diff != "" {
		t.Fatalf("ascending mismatch (-want +got):\n%s", diff)
	}

	desc, err := New(dir, Options{Sorting: config.SortDescending})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if diff := cmp.Diff(join("c.webp", "b.png", "a.jpg"), desc.images); diff != "" {
		t.Fatalf("descending mismatch (-want +got):\n%s", diff)
	}

	rnd, err := New(dir, Options{Sorting: config.SortRandom, Rand: rand.New(rand.NewPCG(1, 2))})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if rnd.Len() != 3 {
		t.Fatalf("random Len() = %d, want 3", rnd.Len())
	}
}

func TestNextPreviousWrap(t *testing.T) {
	p := FromList([]string{"a", "b", "c"}, time.Minute)
	if p.Current() != "a" {
		t.Fatalf("Current() = %q, want a", p.Current())
	}
	if got := p.Previous(); got != "c" {
		t.Fatalf("Previous() = %q, want c", got)
	}
	if got := p.Next(); got != "a" {
		t.Fatalf("Next() = %q, want a", got)
	}
	p.Next()
	p.Next()
	if got := p.Next(); got != "a" {
		t.Fatalf("Next() after wrap = %q, want a", got)
	}

	empty := FromList(nil, time.Minute)
	if empty.Next() != "" || empty.Previous() != "" || empty.Current() != "" {
		t.Fatal("empty playlist should yield empty paths")
	}
}

func TestDueAndPause(t *testing.T) {
	start := time.Unix(1000, 0)
	p := FromList([]string{"a", "b"}, 10*time.Second)
	p.Shown(start)

	if p.Due(start.Add(9 * time.Second)) {
		t.Fatal("Due() before interval")
	}
	if !p.Due(start.Add(10 * time.Second)) {
		t.Fatal("Due() at interval should be true")
	}

	p.Pause()
	if p.Due(start.Add(time.Hour)) {
		t.Fatal("paused playlist must not be due")
	}
	p.Resume(start.Add(time.Hour))
	if p.Due(start.Add(time.Hour + 5*time.Second)) {
		t.Fatal("Resume() should restart the timer")
	}
}

func TestActive(t *testing.T) {
	if FromList([]string{"a"}, time.Minute).Active() {
		t.Fatal("single image playlist must not be active")
	}
	if FromList([]string{"a", "b"}, 0).Active() {
		t.Fatal("zero interval must not be active")
	}
	if !FromList([]string{"a", "b"}, time.Minute).Active() {
		t.Fatal("two images with interval should be active")
	}
}
