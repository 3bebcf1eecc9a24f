package render

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/nimsforest/clusterview/anim"
	"github.com/nimsforest/clusterview/camera"
	"github.com/nimsforest/clusterview/geom"
	"github.com/nimsforest/clusterview/layout"
	"github.com/nimsforest/clusterview/scene"
	"github.com/nimsforest/clusterview/topology"
)

const frame = time.Second / 60

func newLoop(t *testing.T) (*Loop, *scene.Scene, *geom.Camera, *anim.Animator) {
	t.Helper()
	snap, err := topology.Load(context.Background(), topology.DemoSource(3))
	if err != nil {
		t.Fatal(err)
	}
	s := scene.Build(layout.Compute(snap))
	cam := geom.NewCamera(geom.V(16, 30, 40), geom.V(16, 0, 0))
	a := anim.New()
	l := NewLoop(s, cam, camera.NewOrbit(cam.Target), a)
	l.Raster().Labels = false
	return l, s, cam, a
}

func TestStepAdvancesFrameWork(t *testing.T) {
	l, s, _, a := newLoop(t)

	var ticks int
	a.Start(anim.TaskFunc(func(time.Duration) bool {
		ticks++
		return false
	}))
	for i := 0; i < 3; i++ {
		if err := l.Step(frame); err != nil {
			t.Fatal(err)
		}
	}
	if ticks != 3 {
		t.Fatalf("animator ticks = %d, want 3", ticks)
	}
	if s.Particles.Angle <= 0 {
		t.Fatalf("particle field did not rotate")
	}
	if l.Frames() != 3 || l.Elapsed() != 3*frame {
		t.Fatalf("frames = %d, elapsed = %v", l.Frames(), l.Elapsed())
	}
}

func TestStopEndsFrames(t *testing.T) {
	l, _, _, a := newLoop(t)
	var ticks int
	a.Start(anim.TaskFunc(func(time.Duration) bool {
		ticks++
		return false
	}))

	l.Stop()
	l.Stop()
	if err := l.Step(frame); err != ErrStopped {
		t.Fatalf("Step after Stop = %v, want ErrStopped", err)
	}
	if ticks != 0 {
		t.Fatalf("animation stepped after teardown")
	}

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	l.Draw(img)
	for _, p := range img.Pix {
		if p != 0 {
			t.Fatalf("frame drawn after teardown")
		}
	}
	if l.Labels(8, 8) != nil {
		t.Fatalf("labels produced after teardown")
	}
}

func TestRasterDrawsMachineAndEmissive(t *testing.T) {
	l, s, cam, _ := newLoop(t)
	const w, h = 320, 240
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	s.Particles.Object.Visible = false
	m := s.Machine("node-b")
	x, y, ok := cam.Project(m.Position.Add(geom.V(0, m.Size.Y/2, 0)), w, h)
	if !ok {
		t.Fatal("machine behind camera")
	}

	l.Draw(img)
	plain := img.RGBAAt(int(x), int(y))
	if plain == Background {
		t.Fatalf("machine not drawn at (%v, %v)", x, y)
	}
	if plain.B <= plain.R {
		t.Fatalf("machine pixel %v is not machine-colored", plain)
	}

	m.Material.Emissive = scene.ColorRunning
	m.Material.EmissiveIntensity = 1
	l.Draw(img)
	lit := img.RGBAAt(int(x), int(y))
	if lit.G <= plain.G {
		t.Fatalf("emissive term not applied: %v vs %v", lit, plain)
	}
}

func TestLabelsProjected(t *testing.T) {
	l, _, _, _ := newLoop(t)
	labels := l.Labels(640, 480)
	if len(labels) == 0 {
		t.Fatal("no labels projected")
	}
	var found bool
	for _, lb := range labels {
		if lb.Text == "node-b" {
			found = true
			if lb.Scale != 1 {
				t.Fatalf("label scale = %v", lb.Scale)
			}
		}
	}
	if !found {
		t.Fatalf("node-b label missing")
	}
}

func TestRunHeadlessBudget(t *testing.T) {
	l, _, _, _ := newLoop(t)
	var frames int
	err := RunHeadless(context.Background(), l, HeadlessConfig{
		Hz:     1000,
		Ticks:  3,
		Width:  32,
		Height: 24,
		OnFrame: func(*image.RGBA) error {
			frames++
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if frames != 3 || l.Frames() != 3 {
		t.Fatalf("frames = %d, steps = %d", frames, l.Frames())
	}
}

func TestRunHeadlessStopsWithLoop(t *testing.T) {
	l, _, _, _ := newLoop(t)
	l.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := RunHeadless(ctx, l, HeadlessConfig{Hz: 1000}); err != nil {
		t.Fatalf("RunHeadless = %v, want nil", err)
	}
}

func TestDrawLabelScale(t *testing.T) {
	inked := func(scale float64) int {
		img := image.NewRGBA(image.Rect(0, 0, 200, 80))
		drawLabel(img, Label{Text: "api-7f", X: 100, Y: 50, Scale: scale, Color: scene.ColorLabel})
		n := 0
		for i := 3; i < len(img.Pix); i += 4 {
			if img.Pix[i] != 0 {
				n++
			}
		}
		return n
	}

	plain, big := inked(1), inked(1.6)
	if plain == 0 {
		t.Fatal("label not drawn")
	}
	if big <= plain {
		t.Fatalf("scaled label covers %d pixels, unscaled %d", big, plain)
	}
	if inked(0) != plain {
		t.Fatal("zero scale should draw at font size")
	}
}
