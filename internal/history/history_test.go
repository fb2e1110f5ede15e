package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"voicebuddy/internal/history"
)

func openLog(t *testing.T) *history.Log {
	t.Helper()
	l, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := l.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return l
}

func TestLog_EmptyStats(t *testing.T) {
	t.Parallel()

	l := openLog(t)
	s, err := l.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if s.Count != 0 || s.Best != 0 || s.Average != 0 {
		t.Errorf("empty log stats = %+v, want zeroes", s)
	}
}

func TestLog_InsertAndStats(t *testing.T) {
	t.Parallel()

	l := openLog(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)

	for i, score := range []int{60, 80, 100} {
		id, err := l.Insert(ctx, history.Entry{
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			Phrase:     "Peter Piper picked a peck of pickled peppers.",
			Transcript: "peter piper picked a peck",
			Score:      score,
			Duration:   3 * time.Second,
		})
		if err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		if id <= 0 {
			t.Errorf("Insert() id = %d, want > 0", id)
		}
	}

	s, err := l.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
	if s.Best != 100 {
		t.Errorf("Best = %d, want 100", s.Best)
	}
	if s.Average != 80.0 {
		t.Errorf("Average = %f, want 80.0", s.Average)
	}
}

func TestLog_RecentNewestFirst(t *testing.T) {
	t.Parallel()

	l := openLog(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)

	for i := range 5 {
		_, err := l.Insert(ctx, history.Entry{
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Phrase:    "How now brown cow.",
			Score:     i * 10,
		})
		if err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	entries, err := l.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Recent(3) returned %d entries", len(entries))
	}
	for i, wantScore := range []int{40, 30, 20} {
		if entries[i].Score != wantScore {
			t.Errorf("entries[%d].Score = %d, want %d", i, entries[i].Score, wantScore)
		}
	}
	if !entries[0].StartedAt.Equal(base.Add(4 * time.Hour)) {
		t.Errorf("entries[0].StartedAt = %v", entries[0].StartedAt)
	}
}

func TestLog_RecentZeroWindow(t *testing.T) {
	t.Parallel()

	l := openLog(t)
	entries, err := l.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent(0) error = %v", err)
	}
	if entries != nil {
		t.Errorf("Recent(0) = %v, want nil", entries)
	}
}
