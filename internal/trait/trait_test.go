package trait

import "testing"

func TestSet_FiresObserversOnChange(t *testing.T) {
	tr := New(1)

	var got [][2]int
	tr.Observe(func(old, new int) { got = append(got, [2]int{old, new}) })

	tr.Set(2)
	tr.Set(2) // no-op
	tr.Set(3)

	if len(got) != 2 {
		t.Fatalf("observer fired %d times, want 2", len(got))
	}
	if got[0] != [2]int{1, 2} || got[1] != [2]int{2, 3} {
		t.Errorf("observations = %v", got)
	}
}

func TestBind_Propagation(t *testing.T) {
	a := New(5)
	b := New(0)

	l := Bind(a, b)
	if b.Get() != 5 {
		t.Errorf("bind should push source value, got %d", b.Get())
	}

	a.Set(7)
	if b.Get() != 7 {
		t.Errorf("a -> b propagation failed, b = %d", b.Get())
	}

	b.Set(9)
	if a.Get() != 9 {
		t.Errorf("b -> a propagation failed, a = %d", a.Get())
	}

	l.Release()
	a.Set(1)
	if b.Get() != 9 {
		t.Errorf("released link still propagates, b = %d", b.Get())
	}
	b.Set(3)
	if a.Get() != 1 {
		t.Errorf("released link still propagates, a = %d", a.Get())
	}
}

func TestBind_NoEcho(t *testing.T) {
	a := New(0)
	b := New(0)
	Bind(a, b)

	// a fan of observers must each fire exactly once per change
	fires := 0
	a.Observe(func(_, _ int) { fires++ })

	b.Set(4)
	if fires != 1 {
		t.Errorf("a observer fired %d times, want 1", fires)
	}
}

func TestBind_ManyLinks(t *testing.T) {
	a := New(0.0)
	b := New(0.0)
	c := New(0.0)
	Bind(a, b)
	Bind(a, c)

	b.Set(2.5)
	if a.Get() != 2.5 || c.Get() != 2.5 {
		t.Errorf("chained propagation failed: a=%v c=%v", a.Get(), c.Get())
	}
}

func TestPairWith(t *testing.T) {
	a := New("left")
	b := New("right")

	unlink, err := a.PairWith(b)
	if err != nil {
		t.Fatalf("PairWith: %v", err)
	}
	if b.Get() != "left" {
		t.Errorf("pairing should push value, got %q", b.Get())
	}

	unlink()
	a.Set("solo")
	if b.Get() != "left" {
		t.Errorf("unlinked trait moved, got %q", b.Get())
	}

	if _, err := a.PairWith(New(1)); err == nil {
		t.Error("expected error pairing mismatched trait types")
	}
}

func TestEncodeDecode(t *testing.T) {
	f := New(0.0)
	if err := f.Decode("2.5"); err != nil || f.Get() != 2.5 {
		t.Errorf("float decode: %v, value %v", err, f.Get())
	}
	if f.Encode() != "2.5" {
		t.Errorf("float encode = %q", f.Encode())
	}

	i := New(0)
	if err := i.Decode("42"); err != nil || i.Get() != 42 {
		t.Errorf("int decode: %v, value %v", err, i.Get())
	}
	if err := i.Decode("nope"); err == nil {
		t.Error("expected int decode error")
	}

	b := New(false)
	if err := b.Decode("true"); err != nil || !b.Get() {
		t.Errorf("bool decode: %v, value %v", err, b.Get())
	}

	s := New("")
	if err := s.Decode("viridis"); err != nil || s.Get() != "viridis" {
		t.Errorf("string decode: %v, value %q", err, s.Get())
	}
}
