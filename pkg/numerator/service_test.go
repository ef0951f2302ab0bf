package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

// Mock objects

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences UPSERT: it bumps an in-memory
// counter by the increment argument (1 for strict, RangeSize for cached)
// and returns the new value, like RETURNING current_val would.
type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64
	queryCount   int
	lastKey      string
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queryCount++
	if len(args) > 0 {
		if key, ok := args[0].(string); ok {
			m.lastKey = key
		}
	}

	var increment int64 = 1
	if len(args) == 2 {
		if val, ok := args[1].(int64); ok {
			increment = val
		}
	}

	m.currentValue += increment
	return &mockRow{val: m.currentValue}
}

var testPeriod = time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

func TestGetNextNumber_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("SL")

	num, err := svc.GetNextNumber(ctx, cfg, nil, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "SL-2026-00001" {
		t.Errorf("expected SL-2026-00001, got %s", num)
	}

	num, err = svc.GetNextNumber(ctx, cfg, nil, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "SL-2026-00002" {
		t.Errorf("expected SL-2026-00002, got %s", num)
	}

	// Strict hits the database on every call.
	if q.queryCount != 2 {
		t.Errorf("expected 2 DB calls, got %d", q.queryCount)
	}
	if q.lastKey != "SL_2026" {
		t.Errorf("expected sequence key SL_2026, got %s", q.lastKey)
	}
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("SM")

	opts := &Options{
		Strategy:  StrategyCached,
		RangeSize: 10,
	}

	// First call reserves the range 1..10 in one DB round trip.
	num, err := svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "SM-2026-00001" {
		t.Errorf("expected SM-2026-00001, got %s", num)
	}
	if q.currentValue != 10 {
		t.Errorf("expected DB value 10 after reservation, got %d", q.currentValue)
	}

	// Next 9 numbers come from memory.
	for i := 2; i <= 10; i++ {
		num, err = svc.GetNextNumber(ctx, cfg, opts, testPeriod)
		if err != nil {
			t.Fatalf("unexpected error at %d: %v", i, err)
		}
	}
	if num != "SM-2026-00010" {
		t.Errorf("expected SM-2026-00010, got %s", num)
	}
	if q.queryCount != 1 {
		t.Errorf("expected 1 DB call for the whole range, got %d", q.queryCount)
	}

	// Range exhausted: the 11th number triggers a second reservation.
	num, err = svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "SM-2026-00011" {
		t.Errorf("expected SM-2026-00011, got %s", num)
	}
	if q.queryCount != 2 {
		t.Errorf("expected 2 DB calls after refill, got %d", q.queryCount)
	}
}

func TestSetNextNumber_InvalidatesCache(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("PM")

	opts := &Options{Strategy: StrategyCached, RangeSize: 5}

	if _, err := svc.GetNextNumber(ctx, cfg, opts, testPeriod); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.SetNextNumber(ctx, cfg, testPeriod, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	key := svc.buildKey(cfg, testPeriod)
	svc.cacheMu.Lock()
	_, exists := svc.ranges[key]
	svc.cacheMu.Unlock()
	if exists {
		t.Error("expected cached range to be dropped after SetNextNumber")
	}
}

func TestBuildKey(t *testing.T) {
	svc := New(&mockQuerier{})

	tests := []struct {
		resetPeriod string
		want        string
	}{
		{"year", "SL_2026"},
		{"month", "SL_2026_04"},
		{"never", "SL"},
	}

	for _, tt := range tests {
		cfg := Config{Prefix: "SL", ResetPeriod: tt.resetPeriod}
		if got := svc.buildKey(cfg, testPeriod); got != tt.want {
			t.Errorf("reset %q: expected key %s, got %s", tt.resetPeriod, tt.want, got)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	svc := New(&mockQuerier{})

	got := svc.formatNumber(DefaultConfig("SL"), testPeriod, 42)
	if got != "SL-2026-00042" {
		t.Errorf("expected SL-2026-00042, got %s", got)
	}

	got = svc.formatNumber(Config{Prefix: "RM", PadWidth: 3}, testPeriod, 7)
	if got != "RM-007" {
		t.Errorf("expected RM-007, got %s", got)
	}
}

func TestParseNumber(t *testing.T) {
	if got := ParseNumber("SL-2026-00042"); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := ParseNumber("RM-007"); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	if got := ParseNumber("garbage"); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
}

func TestGetNextNumber_ConcurrentCached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("SL")
	opts := &Options{Strategy: StrategyCached, RangeSize: 100}

	var wg sync.WaitGroup
	seen := sync.Map{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := svc.GetNextNumber(ctx, cfg, opts, testPeriod)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if _, dup := seen.LoadOrStore(num, true); dup {
				t.Errorf("duplicate number issued: %s", num)
			}
		}()
	}
	wg.Wait()
}
