// Package tween animates float values over time.
//
// A Timeline is an ordinary value owned by whoever creates it. It has no
// clock of its own: the owner advances it from its frame loop and kills its
// tweens when the owner is torn down.
package tween

import (
	"fmt"
	"time"
)

// Ease maps linear progress in [0,1] to eased progress.
type Ease func(p float64) float64

var (
	Linear Ease = func(p float64) float64 { return p }

	Power2In Ease = func(p float64) float64 { return p * p }

	Power2Out Ease = func(p float64) float64 { return 1 - (1-p)*(1-p) }

	Power2InOut Ease = func(p float64) float64 {
		if p < 0.5 {
			return 2 * p * p
		}
		return 1 - 2*(1-p)*(1-p)
	}
)

var eases = map[string]Ease{
	"linear":       Linear,
	"none":         Linear,
	"power2.in":    Power2In,
	"power2.out":   Power2Out,
	"power2.inOut": Power2InOut,
}

// ParseEase resolves an ease by name, e.g. "power2.inOut".
func ParseEase(name string) (Ease, error) {
	if name == "" {
		return Linear, nil
	}
	e, ok := eases[name]
	if !ok {
		return nil, fmt.Errorf("unknown ease %q", name)
	}
	return e, nil
}

// Setter receives the current value of a tween.
type Setter func(v float64)

// Tween interpolates one value from From to To.
type Tween struct {
	From, To float64
	Duration time.Duration
	Ease     Ease

	set     Setter
	start   time.Duration
	started bool
	done    bool
}

// Done reports whether the tween reached its end value or was killed.
func (tw *Tween) Done() bool { return tw.done }

func (tw *Tween) advance(now time.Duration) {
	if tw.done {
		return
	}
	if !tw.started {
		tw.start = now
		tw.started = true
	}

	p := 1.0
	if tw.Duration > 0 {
		p = float64(now-tw.start) / float64(tw.Duration)
	}
	if p >= 1 {
		p = 1
		tw.done = true
	}
	if p < 0 {
		p = 0
	}
	tw.set(tw.From + (tw.To-tw.From)*tw.Ease(p))
}

// Timeline is a set of tweens advanced together. The zero value is ready to
// use. It is not safe for concurrent use.
type Timeline struct {
	tweens []*Tween
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

// FromTo sets the target to from immediately and schedules a tween to to,
// starting on the next Advance.
func (tl *Timeline) FromTo(set Setter, from, to float64, d time.Duration, ease Ease) *Tween {
	if ease == nil {
		ease = Linear
	}
	tw := &Tween{From: from, To: to, Duration: d, Ease: ease, set: set}
	set(from)
	tl.tweens = append(tl.tweens, tw)
	return tw
}

// Advance moves every live tween to time now and drops finished ones. now is
// any monotonic timestamp, such as a frame time.
func (tl *Timeline) Advance(now time.Duration) {
	live := tl.tweens[:0]
	for _, tw := range tl.tweens {
		tw.advance(now)
		if !tw.done {
			live = append(live, tw)
		}
	}
	clear(tl.tweens[len(live):])
	tl.tweens = live
}

// Active is the number of unfinished tweens.
func (tl *Timeline) Active() int {
	return len(tl.tweens)
}

// Kill stops all tweens where they are; their setters are not called again.
// The timeline stays usable for new tweens.
func (tl *Timeline) Kill() {
	for _, tw := range tl.tweens {
		tw.done = true
	}
	tl.tweens = nil
}
