package sequence

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/narekgrig/shopfront-backend/pkg/db/models"
)

type memCounters struct {
	mu   sync.Mutex
	rows map[string]int64
}

func newMemCounters() *memCounters {
	return &memCounters{rows: map[string]int64{}}
}

func (m *memCounters) ForUpdate(ctx context.Context, name string) (*models.Counter, error) {
	count, ok := m.rows[name]
	if !ok {
		return nil, nil
	}
	return &models.Counter{Name: name, Count: count}, nil
}

func (m *memCounters) Insert(ctx context.Context, counter *models.Counter) error {
	m.rows[counter.Name] = counter.Count
	return nil
}

func (m *memCounters) Save(ctx context.Context, counter *models.Counter) error {
	m.rows[counter.Name] = counter.Count
	return nil
}

func TestNextCreatesCounterLazily(t *testing.T) {
	t.Parallel()

	counters := newMemCounters()
	id, err := Next(context.Background(), counters, "orders")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "0000001" {
		t.Fatalf("expected first id 0000001, got %s", id)
	}
}

func TestNextIncrementsExisting(t *testing.T) {
	t.Parallel()

	counters := newMemCounters()
	counters.rows["orders"] = 41

	id, err := Next(context.Background(), counters, "orders")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "0000042" {
		t.Fatalf("expected 0000042, got %s", id)
	}
	if counters.rows["orders"] != 42 {
		t.Fatalf("counter not advanced: %d", counters.rows["orders"])
	}
}

func TestNextRequiresName(t *testing.T) {
	t.Parallel()

	if _, err := Next(context.Background(), newMemCounters(), ""); err == nil {
		t.Fatal("expected error for empty sequence name")
	}
}

func TestNextIsGaplessUnderConcurrentAllocation(t *testing.T) {
	t.Parallel()

	const n = 50
	counters := newMemCounters()

	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			// Serialize the read-increment as the row lock would.
			counters.mu.Lock()
			defer counters.mu.Unlock()
			id, err := Next(context.Background(), counters, "orders")
			if err != nil {
				t.Errorf("allocate: %v", err)
				return
			}
			ids[slot] = id
		}(i)
	}
	wg.Wait()

	sort.Strings(ids)
	for i, id := range ids {
		if want := FormatID(int64(i + 1)); id != want {
			t.Fatalf("expected %s at position %d, got %s", want, i, id)
		}
	}
}

func TestFormatIDPadding(t *testing.T) {
	t.Parallel()

	cases := map[int64]string{
		1:        "0000001",
		123:      "0000123",
		9999999:  "9999999",
		12345678: "12345678",
	}
	for in, want := range cases {
		if got := FormatID(in); got != want {
			t.Fatalf("FormatID(%d) = %s, want %s", in, got, want)
		}
	}
}
