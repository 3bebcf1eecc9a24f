// Package window shows a render.Interactive in a desktop window using ebiten.
package window

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/nimsforest/clusterview/render"
)

// Config configures the desktop window.
type Config struct {
	Title  string
	Width  int
	Height int
	TPS    int
}

const (
	labelSize   = 12.0
	buttonLabel = "Reset camera"

	rotateSpeed = 0.005 // radians per pixel
	panSpeed    = 0.05  // world units per pixel
	zoomStep    = 0.9   // radius factor per wheel notch
)

var (
	buttonFill   = color.RGBA{R: 0x1e, G: 0x29, B: 0x3b, A: 0xe0}
	buttonStroke = color.RGBA{R: 0x60, G: 0xa5, B: 0xfa, A: 0xff}
)

// Window shows a render.Interactive in a desktop window. It is also the Container
// the view is mounted into.
type Window struct {
	cfg  Config
	e    render.Interactive
	font *text.GoTextFaceSource

	w, h    int
	img     *image.RGBA
	frame   *ebiten.Image
	pointer bool

	pressX, pressY int
	lastX, lastY   int
	dragged        bool
}

// New prepares a window. Nothing is shown until Run.
func New(cfg Config) (*Window, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid window size: %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.TPS <= 0 {
		cfg.TPS = 60
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	return &Window{cfg: cfg, font: src, w: cfg.Width, h: cfg.Height}, nil
}

// Size implements Container.
func (g *Window) Size() (int, int) { return g.w, g.h }

// SetPointer implements Container.
func (g *Window) SetPointer(p bool) {
	g.pointer = p
	g.applyCursor(p)
}

func (g *Window) applyCursor(p bool) {
	if p {
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
	} else {
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
}

// Run shows the window and drives e until the window closes or e stops.
func (g *Window) Run(e render.Interactive) error {
	g.e = e
	ebiten.SetWindowTitle(g.cfg.Title)
	ebiten.SetWindowSize(g.cfg.Width, g.cfg.Height)
	ebiten.SetTPS(g.cfg.TPS)
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (g *Window) button() image.Rectangle {
	return image.Rect(g.w-140, 12, g.w-12, 44)
}

// Update implements ebiten.Game. It maps input to the engine, then steps it.
func (g *Window) Update() error {
	x, y := ebiten.CursorPosition()
	overButton := image.Pt(x, y).In(g.button())

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.pressX, g.pressY = x, y
		g.dragged = false
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && (x != g.lastX || y != g.lastY) {
		if absInt(x-g.pressX)+absInt(y-g.pressY) > 3 {
			g.dragged = true
		}
		if g.dragged {
			g.e.Rotate(-float64(x-g.lastX)*rotateSpeed, -float64(y-g.lastY)*rotateSpeed)
		}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) && !g.dragged {
		if overButton {
			g.e.ResetCamera()
		} else {
			g.e.Click(float64(x), float64(y))
		}
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		g.e.Pan(-float64(x-g.lastX)*panSpeed, float64(y-g.lastY)*panSpeed)
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.e.Zoom(math.Pow(zoomStep, wy))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		g.e.ResetCamera()
	}

	if x != g.lastX || y != g.lastY {
		g.e.Move(float64(x), float64(y))
		if overButton {
			g.applyCursor(true)
		} else {
			g.applyCursor(g.pointer)
		}
	}
	g.lastX, g.lastY = x, y

	if err := g.e.Step(time.Second / time.Duration(g.cfg.TPS)); err != nil {
		if errors.Is(err, render.ErrStopped) {
			return ebiten.Termination
		}
		return err
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Window) Draw(screen *ebiten.Image) {
	if g.img == nil || g.img.Bounds().Dx() != g.w || g.img.Bounds().Dy() != g.h {
		g.img = image.NewRGBA(image.Rect(0, 0, g.w, g.h))
		if g.frame != nil {
			g.frame.Deallocate()
		}
		g.frame = ebiten.NewImage(g.w, g.h)
	}
	g.e.Draw(g.img)
	g.frame.WritePixels(g.img.Pix)
	screen.DrawImage(g.frame, nil)

	for _, l := range g.e.Labels(g.w, g.h) {
		face := &text.GoTextFace{Source: g.font, Size: labelSize * l.Scale}
		tw, th := text.Measure(l.Text, face, 0)
		op := &text.DrawOptions{}
		op.GeoM.Translate(l.X-tw/2, l.Y-th)
		op.ColorScale.ScaleWithColor(l.Color)
		text.Draw(screen, l.Text, face, op)
	}
	g.drawButton(screen)
}

func (g *Window) drawButton(screen *ebiten.Image) {
	b := g.button()
	x, y := float32(b.Min.X), float32(b.Min.Y)
	w, h := float32(b.Dx()), float32(b.Dy())
	vector.DrawFilledRect(screen, x, y, w, h, buttonFill, false)
	vector.StrokeRect(screen, x, y, w, h, 1, buttonStroke, false)

	face := &text.GoTextFace{Source: g.font, Size: 14}
	tw, th := text.Measure(buttonLabel, face, 0)
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(b.Min.X)+(float64(b.Dx())-tw)/2, float64(b.Min.Y)+(float64(b.Dy())-th)/2)
	op.ColorScale.ScaleWithColor(color.White)
	text.Draw(screen, buttonLabel, face, op)
}

// Layout implements ebiten.Game. The window size is fixed.
func (g *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w, g.h
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
