package macro

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestCache_Expand(t *testing.T) {
	var c Cache

	ctx := context.Background()
	src := `load_path_str("a", "b")`

	first, err := c.Expand(ctx, src, WithFamily(FamilyUnix))
	if err != nil {
		t.Fatal(err)
	}

	second, err := c.Expand(ctx, src, WithFamily(FamilyUnix))
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Error("expected the cached result to be reused")
	}

	win, err := c.Expand(ctx, src, WithFamily(FamilyWindows))
	if err != nil {
		t.Fatal(err)
	}

	if win == first || win.Output != `include_str("a\\b")` {
		t.Errorf("family must be part of the cache key, got %s", win.Output)
	}

	c.Clear()

	third, err := c.Expand(ctx, src, WithFamily(FamilyUnix))
	if err != nil {
		t.Fatal(err)
	}

	if third == first {
		t.Error("expected a fresh result after Clear")
	}

	if third.Output != first.Output {
		t.Errorf("got %s, want %s", third.Output, first.Output)
	}
}

func TestCache_Expand_Errors(t *testing.T) {
	var c Cache

	for range 2 {
		_, err := c.Expand(context.Background(), `load_path(1)`, WithFile("x.in"))

		var diags Diagnostics
		if !errors.As(err, &diags) || diags[0].File != "x.in" {
			t.Fatalf("expected cached diagnostics, got %v", err)
		}
	}
}

func TestCache_Expand_Concurrent(t *testing.T) {
	var (
		c  Cache
		wg sync.WaitGroup
	)

	results := make([]*Result, 16)

	for i := range results {
		wg.Add(1)

		go func() {
			defer wg.Done()

			res, err := c.Expand(context.Background(), `load_path("x")`)
			if err != nil {
				t.Error(err)

				return
			}

			results[i] = res
		}()
	}

	wg.Wait()

	for i, res := range results {
		if res != results[0] {
			t.Errorf("result %d differs from result 0", i)
		}
	}
}
