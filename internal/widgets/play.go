package widgets

import (
	"math"
	"time"

	"github.com/fastscape-lem/topoviz/internal/trait"
)

const (
	SpeedMin     = 0
	SpeedMax     = 50
	DefaultSpeed = 30
)

// Play drives an integer value over [Min, Max] from a tick clock, wrapping
// at the end. The playback interval comes from a speed setting.
type Play struct {
	Value    *trait.Trait[int]
	Min, Max int
	Interval time.Duration

	playing bool
	last    time.Time
}

func NewPlay(value, min, max int, interval time.Duration) *Play {
	return &Play{Value: trait.New(clampInt(value, min, max)), Min: min, Max: max, Interval: interval}
}

func (p *Play) Playing() bool { return p.playing }

func (p *Play) Start() {
	p.playing = true
	p.last = time.Time{}
}

func (p *Play) Stop() { p.playing = false }

func (p *Play) Toggle() {
	if p.playing {
		p.Stop()
	} else {
		p.Start()
	}
}

// Advance moves the value forward when playing and at least one interval has
// elapsed since the last step. It reports whether a step was taken.
func (p *Play) Advance(now time.Time) bool {
	if !p.playing {
		return false
	}
	if p.last.IsZero() {
		p.last = now
		return false
	}
	if now.Sub(p.last) < p.Interval {
		return false
	}
	p.last = now
	next := p.Value.Get() + 1
	if next > p.Max {
		next = p.Min
	}
	p.Value.Set(next)
	return true
}

// SpeedInterval maps a 0..50 speed setting to a playback interval, slow at
// 0 and fast at 50 along a cosine curve.
func SpeedInterval(speed int) time.Duration {
	ms := int((520 + 500*math.Cos(float64(speed)*math.Pi/50)) / 2)
	return time.Duration(ms) * time.Millisecond
}
