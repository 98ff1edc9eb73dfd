package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.Record(ctx, Run{
		SourcePath:   "/media/clip.mp4",
		OutputPath:   "/media/clip.srt",
		SegmentCount: 2,
		Language:     "en",
		Elapsed:      3 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	if first <= 0 {
		t.Fatalf("id = %d", first)
	}

	second, err := store.Record(ctx, Run{SourcePath: "/media/other.mkv", OutputPath: "/media/other.srt", SegmentCount: 7})
	if err != nil {
		t.Fatal(err)
	}

	runs, err := store.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != second {
		t.Fatalf("newest first expected, got id %d", runs[0].ID)
	}
	if runs[1].Language != "en" || runs[1].Elapsed != 3*time.Second {
		t.Fatalf("run fields lost: %+v", runs[1])
	}
	if runs[1].CreatedAt.IsZero() {
		t.Fatal("created_at not populated")
	}
}

func TestListLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := store.Record(ctx, Run{SourcePath: "a", OutputPath: "b"}); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := store.List(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("limit ignored, got %d runs", len(runs))
	}
}

func TestCloseNil(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
}
