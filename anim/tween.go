package anim

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween eases a scalar from From to To over Duration and hands every value to
// Apply. With Yoyo set it then plays back to From; Forever repeats the cycle
// until cancelled.
type Tween struct {
	From, To float64
	Duration time.Duration
	Easing   ease.TweenFunc
	Apply    func(v float64)
	Yoyo     bool
	Forever  bool

	tw      *gween.Tween
	reverse bool
}

func (t *Tween) leg() *gween.Tween {
	easing := t.Easing
	if easing == nil {
		easing = ease.Linear
	}
	from, to := t.From, t.To
	if t.reverse {
		from, to = to, from
	}
	return gween.New(float32(from), float32(to), float32(t.Duration.Seconds()), easing)
}

// Step implements Task.
func (t *Tween) Step(dt time.Duration) bool {
	if t.Duration <= 0 {
		t.apply(t.To)
		return true
	}
	if t.tw == nil {
		t.tw = t.leg()
	}
	v, finished := t.tw.Update(float32(dt.Seconds()))
	t.apply(float64(v))
	if !finished {
		return false
	}

	switch {
	case t.Yoyo && !t.reverse:
		t.reverse = true
	case t.Forever:
		t.reverse = false
	default:
		return true
	}
	t.tw = t.leg()
	return false
}

func (t *Tween) apply(v float64) {
	if t.Apply != nil {
		t.Apply(v)
	}
}

// Progress returns a tween driving fn with eased progress from 0 to 1.
func Progress(d time.Duration, easing ease.TweenFunc, fn func(p float64)) *Tween {
	return &Tween{From: 0, To: 1, Duration: d, Easing: easing, Apply: fn}
}
