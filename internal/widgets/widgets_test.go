package widgets

import (
	"testing"
	"time"
)

func TestIntSlider_Clamps(t *testing.T) {
	tests := []struct {
		set  int
		want int
	}{
		{5, 5},
		{-1, 0},
		{100, 9},
	}
	for _, tt := range tests {
		s := NewIntSlider(0, 0, 9)
		s.SetValue(tt.set)
		if got := s.Value.Get(); got != tt.want {
			t.Errorf("SetValue(%d) = %d, want %d", tt.set, got, tt.want)
		}
	}
}

func TestFloatSlider_Clamps(t *testing.T) {
	s := NewFloatSlider(1.0, 0.0, 20.0, 0.1)
	s.SetValue(25)
	if s.Value.Get() != 20 {
		t.Errorf("value = %v, want 20", s.Value.Get())
	}
	s.SetValue(-5)
	if s.Value.Get() != 0 {
		t.Errorf("value = %v, want 0", s.Value.Get())
	}
}

func TestDropdown(t *testing.T) {
	d, err := NewDropdown("viridis", []string{"viridis", "cividis"})
	if err != nil {
		t.Fatalf("NewDropdown: %v", err)
	}
	if err := d.SetValue("cividis"); err != nil {
		t.Errorf("SetValue(cividis): %v", err)
	}
	if err := d.SetValue("nope"); err == nil {
		t.Error("expected error for invalid option")
	}
	if d.Value.Get() != "cividis" {
		t.Errorf("value = %q after rejected set", d.Value.Get())
	}

	if _, err := NewDropdown("nope", []string{"a"}); err == nil {
		t.Error("expected error for invalid initial value")
	}
}

func TestButton(t *testing.T) {
	b := NewButton()
	clicks := 0
	b.OnClick(func() { clicks++ })
	b.Click()
	b.Click()
	if clicks != 2 {
		t.Errorf("clicks = %d, want 2", clicks)
	}
}

func TestPlay_Advance(t *testing.T) {
	p := NewPlay(0, 0, 2, 100*time.Millisecond)
	now := time.Unix(0, 0)

	if p.Advance(now) {
		t.Error("stopped play should not advance")
	}

	p.Start()
	if p.Advance(now) {
		t.Error("first tick only arms the clock")
	}
	if p.Advance(now.Add(50 * time.Millisecond)) {
		t.Error("advanced before interval elapsed")
	}
	if !p.Advance(now.Add(150 * time.Millisecond)) {
		t.Error("expected a step after interval elapsed")
	}
	if p.Value.Get() != 1 {
		t.Errorf("value = %d, want 1", p.Value.Get())
	}

	// wraps at max
	p.Value.Set(2)
	if !p.Advance(now.Add(300 * time.Millisecond)) {
		t.Fatal("expected a step")
	}
	if p.Value.Get() != 0 {
		t.Errorf("value = %d, want wrap to 0", p.Value.Get())
	}
}

func TestSpeedInterval(t *testing.T) {
	slow := SpeedInterval(SpeedMin)
	mid := SpeedInterval(25)
	fast := SpeedInterval(SpeedMax)

	if !(fast < mid && mid < slow) {
		t.Errorf("intervals not monotonic: %v %v %v", slow, mid, fast)
	}
	if slow != 510*time.Millisecond {
		t.Errorf("slow interval = %v, want 510ms", slow)
	}
	if fast != 10*time.Millisecond {
		t.Errorf("fast interval = %v, want 10ms", fast)
	}
}
