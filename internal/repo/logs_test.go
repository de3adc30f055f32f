package repo_test

import (
	"context"
	"testing"

	"zeku/internal/models"
	"zeku/internal/testutil"
)

func TestLogAppendAndReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ls := testutil.NewTestStore(t).LogStore()

	id, err := ls.Insert(ctx, &models.LogItem{Title: "run"})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	for _, line := range []string{"[info] a", "[download]  10.0% of 1MiB", "[info] b"} {
		if err := ls.Append(ctx, id, line, false); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	got, err := ls.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Content != "[info] a\n[info] b" {
		t.Errorf("Content = %q", got.Content)
	}

	if err := ls.Append(ctx, id, "[info] fresh", true); err != nil {
		t.Fatalf("Append(reset) error = %v", err)
	}
	got, _ = ls.Get(ctx, id)
	if got.Content != "[info] fresh" {
		t.Errorf("Content after reset = %q", got.Content)
	}
}
