package census

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
)

const sampleTable = `  PID %CPU %MEM COMMAND
    1  5.0  1.0 a
    2  2.0  9.0 b
    3  7.0  3.0 c
`

func staticEnumerator(out string, err error) Enumerator {
	return EnumeratorFunc(func(ctx context.Context) ([]byte, error) {
		return []byte(out), err
	})
}

func pids(records []ProcessRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.PID
	}
	return out
}

func TestSnapshotOrdering(t *testing.T) {
	tests := []struct {
		name   string
		key    SortKey
		filter string
		want   []int
	}{
		{"cpu descending", SortCPU, "", []int{3, 1, 2}},
		{"mem descending", SortMem, "", []int{2, 3, 1}},
		{"pid ascending", SortPID, "", []int{1, 2, 3}},
		{"name ascending", SortName, "", []int{1, 2, 3}},
		{"name with filter", SortName, "b", []int{2}},
		{"filter without match", SortCPU, "zzz", []int{}},
	}

	c := New(staticEnumerator(sampleTable, nil), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pids(c.Snapshot(context.Background(), tt.key, tt.filter))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Snapshot(%v, %q) = %v; want %v", tt.key, tt.filter, got, tt.want)
			}
		})
	}
}

func TestSnapshotSkipsMalformedLines(t *testing.T) {
	raw := `PID %CPU %MEM COMMAND
10 1.0 1.0 first
11 1.0 2.0
x 1.0 1.0 badpid
12 abc 1.0 badcpu
13 1.0 1.0 second

14 1.0 1.0 third
`
	c := New(staticEnumerator(raw, nil), nil)
	got := pids(c.Snapshot(context.Background(), SortCPU, ""))
	want := []int{10, 13, 14}
	if !slices.Equal(got, want) {
		t.Errorf("Expected valid rows in input order %v, got %v", want, got)
	}
}

func TestSnapshotStableTies(t *testing.T) {
	raw := `PID %CPU %MEM COMMAND
9 1.0 0.5 same
4 1.0 0.5 same
7 1.0 0.5 same
`
	c := New(staticEnumerator(raw, nil), nil)
	for _, key := range SortKeys[1:] {
		got := pids(c.Snapshot(context.Background(), key, ""))
		if !slices.Equal(got, []int{9, 4, 7}) {
			t.Errorf("Ties under %v reordered: %v", key, got)
		}
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	c := New(staticEnumerator(sampleTable, nil), nil)
	ctx := context.Background()
	a := c.Snapshot(ctx, SortMem, "")
	b := c.Snapshot(ctx, SortMem, "")
	if !slices.Equal(a, b) {
		t.Errorf("Snapshots differ: %v vs %v", a, b)
	}
}

func TestSnapshotEnumerationUnavailable(t *testing.T) {
	tests := []struct {
		name string
		enum Enumerator
	}{
		{"error", staticEnumerator("", errors.New("ps not found"))},
		{"empty output", staticEnumerator("", nil)},
		{"whitespace output", staticEnumerator("  \n\n", nil)},
		{"header only", staticEnumerator("PID %CPU %MEM COMMAND\n", nil)},
		{"nil enumerator", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.enum, nil).Snapshot(context.Background(), SortCPU, "")
			if got == nil {
				t.Fatal("Expected non-nil empty snapshot")
			}
			if len(got) != 0 {
				t.Errorf("Expected empty snapshot, got %v", got)
			}
		})
	}
}

func TestParseTableNameWithSpaces(t *testing.T) {
	got := ParseTable([]byte("PID %CPU %MEM COMMAND\n42 0.1 0.2 Web Content\n"))
	if len(got) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(got))
	}
	want := ProcessRecord{PID: 42, Name: "Web Content", CPUPercent: 0.1, MemPercent: 0.2}
	if got[0] != want {
		t.Errorf("ParseTable() = %+v; want %+v", got[0], want)
	}
}

func TestFilterIsCaseSensitive(t *testing.T) {
	records := []ProcessRecord{{PID: 1, Name: "Firefox"}, {PID: 2, Name: "firefox"}}
	got := pids(Filter(records, "fire"))
	if !slices.Equal(got, []int{2}) {
		t.Errorf("Filter(fire) = %v; want [2]", got)
	}
}

func TestSnapshotControls(t *testing.T) {
	ctrl := NewControls()
	ctrl.SetSort(SortName)
	ctrl.AppendFilter("c")

	c := New(staticEnumerator(sampleTable, nil), nil)
	got := pids(c.SnapshotControls(context.Background(), ctrl))
	if !slices.Equal(got, []int{3}) {
		t.Errorf("SnapshotControls() = %v; want [3]", got)
	}
}

func TestPsEnumeratorUsesExecutor(t *testing.T) {
	fake := &fakeExecutor{out: []byte(sampleTable)}
	c := New(NewPsEnumerator(fake), nil)

	got := pids(c.Snapshot(context.Background(), SortPID, ""))
	if !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("Snapshot() = %v; want [1 2 3]", got)
	}
	if fake.name != "ps" {
		t.Errorf("Expected ps to be invoked, got %q", fake.name)
	}
	if !slices.Equal(fake.args, psArgs) {
		t.Errorf("Expected args %v, got %v", psArgs, fake.args)
	}
}

type fakeExecutor struct {
	out  []byte
	err  error
	name string
	args []string
}

func (f *fakeExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.name = name
	f.args = args
	return f.out, f.err
}

func TestControlsDefaults(t *testing.T) {
	c := NewControls()
	key, filter := c.Snapshot()
	if key != SortCPU {
		t.Errorf("Expected default sort cpu, got %v", key)
	}
	if filter != "" {
		t.Errorf("Expected empty filter, got %q", filter)
	}
}

func TestControlsFilterEditing(t *testing.T) {
	c := NewControls()
	c.AppendFilter("ba")
	c.AppendFilter("sh")
	if got := c.Filter(); got != "bash" {
		t.Fatalf("Filter() = %q; want bash", got)
	}
	c.Backspace()
	if got := c.Filter(); got != "bas" {
		t.Errorf("Filter() after backspace = %q; want bas", got)
	}

	c.SetFilter("é")
	c.Backspace()
	c.Backspace()
	if got := c.Filter(); got != "" {
		t.Errorf("Expected empty filter, got %q", got)
	}
}

func TestControlsConcurrentAccess(t *testing.T) {
	c := NewControls()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			c.AppendFilter("x")
			c.SetSort(SortKeys[i%len(SortKeys)])
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			key, filter := c.Snapshot()
			if key < SortPID || key > SortName {
				t.Errorf("Torn sort key %d", key)
			}
			for _, r := range filter {
				if r != 'x' {
					t.Errorf("Torn filter %q", filter)
				}
			}
		}
	}()
	wg.Wait()

	if got := len(c.Filter()); got != 1000 {
		t.Errorf("Expected 1000 appended runes, got %d", got)
	}
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in      string
		want    SortKey
		wantErr bool
	}{
		{"pid", SortPID, false},
		{"CPU", SortCPU, false},
		{"", SortCPU, false},
		{"memory", SortMem, false},
		{" name ", SortName, false},
		{"rss", SortCPU, true},
	}

	for _, tt := range tests {
		got, err := ParseSortKey(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSortKey(%q) error = %v; wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseSortKey(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}

	for _, k := range SortKeys {
		if back, err := ParseSortKey(k.String()); err != nil || back != k {
			t.Errorf("round trip of %v gave %v, %v", k, back, err)
		}
	}
}
