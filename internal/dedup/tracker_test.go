package dedup

import (
	"fmt"
	"sync"
	"testing"
)

func TestMarkSeen_Idempotent(t *testing.T) {
	tr := New(10, 5)

	tr.MarkSeen("sig-A")
	tr.MarkSeen("sig-A")

	if !tr.Seen("sig-A") {
		t.Error("expected sig-A to be tracked")
	}
	if tr.Len() != 1 {
		t.Errorf("expected 1 tracked id, got %d", tr.Len())
	}
}

func TestMarkSeen_IgnoresEmpty(t *testing.T) {
	tr := New(10, 5)
	tr.MarkSeen("")

	if tr.Len() != 0 {
		t.Errorf("empty id must not be tracked, got %d", tr.Len())
	}
}

func TestSeen_Unknown(t *testing.T) {
	tr := New(10, 5)
	if tr.Seen("never") {
		t.Error("unknown id must not be seen")
	}
}

func TestCheckAndMark(t *testing.T) {
	tr := New(10, 5)

	if tr.CheckAndMark("sig-A") {
		t.Error("first CheckAndMark must report not yet tracked")
	}
	if !tr.CheckAndMark("sig-A") {
		t.Error("second CheckAndMark must report already tracked")
	}
	if tr.Len() != 1 {
		t.Errorf("expected 1 tracked id, got %d", tr.Len())
	}
}

func TestTrim_KeepsMostRecentlyInserted(t *testing.T) {
	tr := New(10, 4)

	for i := 0; i < 11; i++ {
		tr.MarkSeen(fmt.Sprintf("id-%02d", i))
	}

	// Insertion past the cap trims to exactly trimSize in one bulk
	// operation.
	if tr.Len() != 4 {
		t.Fatalf("expected 4 tracked ids after trim, got %d", tr.Len())
	}

	// The survivors are exactly the most recently inserted four.
	for i := 7; i <= 10; i++ {
		if !tr.Seen(fmt.Sprintf("id-%02d", i)) {
			t.Errorf("expected id-%02d to survive the trim", i)
		}
	}
	for i := 0; i <= 6; i++ {
		if tr.Seen(fmt.Sprintf("id-%02d", i)) {
			t.Errorf("expected id-%02d to be evicted", i)
		}
	}
}

func TestTrim_EvictedIDsCanReenter(t *testing.T) {
	tr := New(4, 2)

	for i := 0; i < 5; i++ {
		tr.MarkSeen(fmt.Sprintf("id-%d", i))
	}

	// id-0 was evicted; marking it again tracks it anew. Re-alerting
	// evicted identifiers is the accepted bounded-memory trade-off.
	if tr.Seen("id-0") {
		t.Fatal("id-0 should have been evicted")
	}
	tr.MarkSeen("id-0")
	if !tr.Seen("id-0") {
		t.Error("evicted id must be trackable again")
	}
}

func TestDefaults(t *testing.T) {
	tr := New(0, 0)
	if tr.maxTracked != DefaultMaxTracked || tr.trimSize != DefaultTrimSize {
		t.Errorf("expected defaults %d/%d, got %d/%d",
			DefaultMaxTracked, DefaultTrimSize, tr.maxTracked, tr.trimSize)
	}

	tr = New(5, 50)
	if tr.trimSize != 5 {
		t.Errorf("trimSize must be clamped to maxTracked, got %d", tr.trimSize)
	}
}

func TestConcurrentMarkSeen(t *testing.T) {
	tr := New(1000, 500)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.MarkSeen("sig-A")
		}()
	}
	wg.Wait()

	if tr.Len() != 1 {
		t.Fatalf("expected exactly one entry for sig-A, got %d", tr.Len())
	}
}

func TestConcurrentMixedPaths(t *testing.T) {
	tr := New(200, 100)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("id-%d", i%50)
				if g%2 == 0 {
					tr.CheckAndMark(id)
				} else {
					tr.MarkSeen(id)
					tr.Seen(id)
				}
			}
		}(g)
	}
	wg.Wait()

	if tr.Len() != 50 {
		t.Fatalf("expected 50 distinct ids, got %d", tr.Len())
	}
}

func TestWithClock(t *testing.T) {
	now := int64(1000)
	tr := New(10, 5, WithClock(func() int64 { return now }))

	tr.MarkSeen("sig-A")
	if ts := tr.firstSeen["sig-A"]; ts != 1000 {
		t.Errorf("expected injected timestamp 1000, got %d", ts)
	}
}
