// Package headless is an in-memory rendering backend for the particle
// background. It draws nothing; it records what a real backend would have
// been asked to do, which is what the CLI preview and the tests need.
package headless

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Zachkp/portfolio/internal/background"
)

// Canvas stands in for a drawing element.
type Canvas struct {
	ID int
}

// Backend implements background.Backend. Set the Fail* fields to make the
// matching constructor fail.
type Backend struct {
	PixelRatio float64

	FailRenderer error
	FailGeometry error
	FailMaterial error

	Renderers  []*Renderer
	Geometries []*Geometry
	Materials  []*Material
}

func NewBackend() *Backend {
	return &Backend{PixelRatio: 1}
}

func (b *Backend) DevicePixelRatio() float64 { return b.PixelRatio }

func (b *Backend) NewRenderer(opts background.RendererOptions) (background.Renderer, error) {
	if b.FailRenderer != nil {
		return nil, b.FailRenderer
	}
	r := &Renderer{Options: opts, canvas: &Canvas{ID: len(b.Renderers) + 1}}
	b.Renderers = append(b.Renderers, r)
	return r, nil
}

func (b *Backend) NewGeometry(positions, colors []float32) (background.Geometry, error) {
	if b.FailGeometry != nil {
		return nil, b.FailGeometry
	}
	g := &Geometry{Positions: positions, Colors: colors}
	b.Geometries = append(b.Geometries, g)
	return g, nil
}

func (b *Backend) NewMaterial(params background.MaterialParams) (background.Material, error) {
	if b.FailMaterial != nil {
		return nil, b.FailMaterial
	}
	m := &Material{Params: params, Opacity: params.Opacity}
	b.Materials = append(b.Materials, m)
	return m, nil
}

// Live counts resources that have not been disposed.
func (b *Backend) Live() int {
	n := 0
	for _, r := range b.Renderers {
		if r.Disposed == 0 {
			n++
		}
	}
	for _, g := range b.Geometries {
		if g.Disposed == 0 {
			n++
		}
	}
	for _, m := range b.Materials {
		if m.Disposed == 0 {
			n++
		}
	}
	return n
}

// Renderer records sizes and frames. Render projects every particle so
// Visible reflects what a real renderer would draw.
type Renderer struct {
	Options   background.RendererOptions
	Width     int
	Height    int
	Ratio     float64
	SizeCalls int
	Frames    int
	Visible   int
	Disposed  int
	canvas    *Canvas
}

func (r *Renderer) Canvas() background.Canvas { return r.canvas }

func (r *Renderer) SetSize(width, height int) {
	r.Width, r.Height = width, height
	r.SizeCalls++
}

func (r *Renderer) SetPixelRatio(ratio float64) { r.Ratio = ratio }

func (r *Renderer) Render(scene *background.Scene, camera *background.Camera) {
	r.Frames++
	r.Visible = 0
	if scene == nil || scene.Points == nil || scene.Points.Field == nil {
		return
	}

	proj := background.NewProjector(scene, camera, r.Width, r.Height)
	pos := scene.Points.Field.Positions
	for i := 0; i+2 < len(pos); i += 3 {
		if _, _, _, ok := proj.Project(mgl32.Vec3{pos[i], pos[i+1], pos[i+2]}, 1); ok {
			r.Visible++
		}
	}
}

func (r *Renderer) Dispose() { r.Disposed++ }

type Geometry struct {
	Positions []float32
	Colors    []float32
	Updates   int
	Disposed  int
}

func (g *Geometry) Update(positions []float32) {
	g.Positions = positions
	g.Updates++
}

func (g *Geometry) Dispose() { g.Disposed++ }

type Material struct {
	Params   background.MaterialParams
	Opacity  float32
	Disposed int
}

func (m *Material) SetOpacity(opacity float32) { m.Opacity = opacity }

func (m *Material) Dispose() { m.Disposed++ }

var ErrNotChild = errors.New("canvas is not a child of this surface")

// Surface is a host element of a fixed size.
type Surface struct {
	Width, Height int
	Children      []background.Canvas

	attached bool
}

// NewSurface returns a surface already attached to the display.
func NewSurface(width, height int) *Surface {
	return &Surface{Width: width, Height: height, attached: true}
}

func (s *Surface) Attached() bool { return s.attached }

// Detach disconnects the surface from the display.
func (s *Surface) Detach() { s.attached = false }

func (s *Surface) Size() (int, int) { return s.Width, s.Height }

func (s *Surface) AppendChild(c background.Canvas) error {
	if !s.attached {
		return fmt.Errorf("append canvas: %w", background.ErrSurfaceDetached)
	}
	s.Children = append(s.Children, c)
	return nil
}

func (s *Surface) RemoveChild(c background.Canvas) error {
	for i, child := range s.Children {
		if child == c {
			s.Children = append(s.Children[:i], s.Children[i+1:]...)
			return nil
		}
	}
	return ErrNotChild
}

// Events is a synchronous event hub. Dispatch methods call listeners on the
// caller's goroutine.
type Events struct {
	nextID  int
	resize  map[int]func(int, int)
	pointer map[int]func(float64, float64)
}

func NewEvents() *Events {
	return &Events{
		resize:  make(map[int]func(int, int)),
		pointer: make(map[int]func(float64, float64)),
	}
}

func (e *Events) OnResize(fn func(width, height int)) func() {
	e.nextID++
	id := e.nextID
	e.resize[id] = fn
	return func() { delete(e.resize, id) }
}

func (e *Events) OnPointerMove(fn func(clientX, clientY float64)) func() {
	e.nextID++
	id := e.nextID
	e.pointer[id] = fn
	return func() { delete(e.pointer, id) }
}

// Resize dispatches a resize event.
func (e *Events) Resize(width, height int) {
	for _, fn := range e.resize {
		fn(width, height)
	}
}

// PointerMove dispatches a pointer event.
func (e *Events) PointerMove(x, y float64) {
	for _, fn := range e.pointer {
		fn(x, y)
	}
}

// Listeners is the number of registered listeners of any kind.
func (e *Events) Listeners() int {
	return len(e.resize) + len(e.pointer)
}
