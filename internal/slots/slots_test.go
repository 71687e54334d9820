package slots

import (
	"errors"
	"testing"
)

// =============================================================================
// Arena Tests
// =============================================================================

func TestArena_InsertGetRemove(t *testing.T) {
	var a Arena[uint32, string]
	h1, err := a.Insert("one")
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	h2, _ := a.Insert("two")
	if h1 == 0 || h2 == 0 || h1 == h2 {
		t.Fatalf("handles = %#x, %#x", h1, h2)
	}
	if v, ok := a.Get(h2); !ok || v != "two" {
		t.Errorf("Get(h2) = %q, %v", v, ok)
	}
	if v, ok := a.Remove(h1); !ok || v != "one" {
		t.Errorf("Remove(h1) = %q, %v", v, ok)
	}
	if _, ok := a.Get(h1); ok {
		t.Error("Get(h1) found a removed value")
	}
	if a.Len() != 1 {
		t.Errorf("Len() = %d, want 1", a.Len())
	}
}

func TestArena_StaleHandleRejected(t *testing.T) {
	var a Arena[uint32, int]
	old, _ := a.Insert(1)
	a.Remove(old)
	reused, _ := a.Insert(2)
	if uint32(reused)&MaxSlots != uint32(old)&MaxSlots {
		t.Fatalf("slot not reused: %#x vs %#x", reused, old)
	}
	if reused == old {
		t.Fatal("reused slot kept its generation")
	}
	if _, ok := a.Get(old); ok {
		t.Error("stale handle reached the new value")
	}
	if p := a.Ptr(reused); p == nil || *p != 2 {
		t.Errorf("Ptr(reused) = %v", p)
	}
	if _, ok := a.Remove(old); ok {
		t.Error("Remove(stale) succeeded")
	}
}

func TestArena_InvalidHandles(t *testing.T) {
	var a Arena[uint32, int]
	a.Insert(7)
	for _, h := range []uint32{0, 2, 0xFFFF, 1 << IndexBits} {
		if _, ok := a.Get(h); ok {
			t.Errorf("Get(%#x) succeeded", h)
		}
	}
}

func TestArena_TopBitClear(t *testing.T) {
	var a Arena[uint32, int]
	h, _ := a.Insert(0)
	for i := 0; i < 1<<15+3; i++ {
		a.Remove(h)
		h, _ = a.Insert(i)
		if h&(1<<31) != 0 {
			t.Fatalf("handle %#x has the top bit set", h)
		}
	}
	if v, ok := a.Get(h); !ok || v != 1<<15+2 {
		t.Errorf("Get() = %d, %v", v, ok)
	}
}

func TestArena_Full(t *testing.T) {
	var a Arena[uint32, struct{}]
	for i := 0; i < MaxSlots; i++ {
		if _, err := a.Insert(struct{}{}); err != nil {
			t.Fatalf("Insert() #%d error = %v", i, err)
		}
	}
	if _, err := a.Insert(struct{}{}); !errors.Is(err, ErrFull) {
		t.Errorf("Insert() error = %v, want ErrFull", err)
	}
}

func TestArena_All(t *testing.T) {
	var a Arena[uint64, int]
	h1, _ := a.Insert(10)
	h2, _ := a.Insert(20)
	h3, _ := a.Insert(30)
	a.Remove(h2)

	var got []int
	for h, v := range a.All() {
		if h != h1 && h != h3 {
			t.Errorf("unexpected handle %#x", h)
		}
		got = append(got, v)
	}
	if len(got) != 2 || got[0] != 10 || got[1] != 30 {
		t.Errorf("All() = %v, want [10 30]", got)
	}
}
