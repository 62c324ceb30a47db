//go:build js && wasm

package main

import (
	"errors"
	"fmt"
	"syscall/js"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Zachkp/portfolio/internal/background"
)

// canvasBackend draws points with the 2D canvas API.
type canvasBackend struct {
	doc js.Value
	win js.Value
}

func (b *canvasBackend) DevicePixelRatio() float64 {
	r := b.win.Get("devicePixelRatio")
	if !r.Truthy() {
		return 1
	}
	return r.Float()
}

func (b *canvasBackend) NewRenderer(opts background.RendererOptions) (background.Renderer, error) {
	canvas := b.doc.Call("createElement", "canvas")
	ctx := canvas.Call("getContext", "2d", map[string]any{"alpha": opts.Alpha})
	if ctx.IsNull() || ctx.IsUndefined() {
		return nil, errors.New("2d context unavailable")
	}
	ctx.Set("imageSmoothingEnabled", opts.Antialias)

	style := canvas.Get("style")
	style.Set("position", "fixed")
	style.Set("inset", "0")
	style.Set("pointerEvents", "none")

	return &canvasRenderer{opts: opts, canvas: canvas, ctx: ctx, ratio: 1}, nil
}

func (b *canvasBackend) NewGeometry(positions, colors []float32) (background.Geometry, error) {
	return &geometry{}, nil
}

func (b *canvasBackend) NewMaterial(params background.MaterialParams) (background.Material, error) {
	return &material{params: params, opacity: params.Opacity}, nil
}

type canvasRenderer struct {
	opts   background.RendererOptions
	canvas js.Value
	ctx    js.Value

	width, height int
	ratio         float64
}

func (r *canvasRenderer) Canvas() background.Canvas { return r.canvas }

func (r *canvasRenderer) SetPixelRatio(ratio float64) {
	r.ratio = ratio
	if r.width > 0 {
		r.SetSize(r.width, r.height)
	}
}

func (r *canvasRenderer) SetSize(width, height int) {
	r.width, r.height = width, height
	r.canvas.Set("width", int(float64(width)*r.ratio))
	r.canvas.Set("height", int(float64(height)*r.ratio))
	style := r.canvas.Get("style")
	style.Set("width", fmt.Sprintf("%dpx", width))
	style.Set("height", fmt.Sprintf("%dpx", height))
	r.ctx.Call("setTransform", r.ratio, 0, 0, r.ratio, 0, 0)
}

func (r *canvasRenderer) clear() {
	if r.opts.Alpha {
		r.ctx.Call("clearRect", 0, 0, r.width, r.height)
		return
	}
	r.ctx.Set("fillStyle", r.opts.ClearColor.Hex())
	r.ctx.Call("fillRect", 0, 0, r.width, r.height)
}

func (r *canvasRenderer) Render(scene *background.Scene, camera *background.Camera) {
	r.clear()
	if scene == nil || scene.Points == nil || scene.Points.Field == nil {
		return
	}
	mat, ok := scene.Points.Material.(*material)
	if !ok {
		return
	}

	r.ctx.Call("save")
	defer r.ctx.Call("restore")

	r.ctx.Set("globalAlpha", mat.opacity)
	if mat.params.Additive {
		r.ctx.Set("globalCompositeOperation", "lighter")
	}

	proj := background.NewProjector(scene, camera, r.width, r.height)
	field := scene.Points.Field
	fill := mat.params.Color.Hex()
	r.ctx.Set("fillStyle", fill)
	for i := 0; i+2 < len(field.Positions); i += 3 {
		p := mgl32.Vec3{field.Positions[i], field.Positions[i+1], field.Positions[i+2]}
		x, y, px, ok := proj.Project(p, mat.params.Size)
		if !ok {
			continue
		}
		if mat.params.VertexColors && field.Colors != nil {
			c := background.Color{R: field.Colors[i], G: field.Colors[i+1], B: field.Colors[i+2]}
			if hex := c.Hex(); hex != fill {
				fill = hex
				r.ctx.Set("fillStyle", fill)
			}
		}
		px = max(px, 1)
		r.ctx.Call("fillRect", x-px/2, y-px/2, px, px)
	}
}

func (r *canvasRenderer) Dispose() {
	r.canvas.Set("width", 0)
	r.canvas.Set("height", 0)
}

// geometry has nothing to upload; the renderer reads the field directly.
type geometry struct{}

func (*geometry) Update([]float32) {}
func (*geometry) Dispose()         {}

type material struct {
	params  background.MaterialParams
	opacity float32
}

func (m *material) SetOpacity(opacity float32) { m.opacity = opacity }
func (m *material) Dispose()                   {}
