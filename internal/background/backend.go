package background

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Canvas is the drawing surface a Renderer paints into. Its concrete type
// belongs to the backend.
type Canvas any

// Surface is the host element the canvas is attached to.
type Surface interface {
	// Attached reports whether the surface is connected to a display.
	Attached() bool
	Size() (width, height int)
	AppendChild(c Canvas) error
	RemoveChild(c Canvas) error
}

// Events delivers viewport and pointer events. Each registration returns a
// function that removes the listener.
type Events interface {
	OnResize(fn func(width, height int)) (remove func())
	OnPointerMove(fn func(clientX, clientY float64)) (remove func())
}

// RendererOptions are fixed when a renderer is created.
type RendererOptions struct {
	Antialias  bool
	Alpha      bool
	ClearColor Color
}

// MaterialParams describes how points are drawn.
type MaterialParams struct {
	Size         float32
	Color        Color
	VertexColors bool
	Opacity      float32
	Transparent  bool
	Additive     bool
}

// Backend creates rendering resources. Every resource it returns is released
// through its Dispose method.
type Backend interface {
	NewRenderer(opts RendererOptions) (Renderer, error)
	NewGeometry(positions, colors []float32) (Geometry, error)
	NewMaterial(params MaterialParams) (Material, error)
	// DevicePixelRatio is the display's physical/logical pixel ratio.
	DevicePixelRatio() float64
}

type Renderer interface {
	Canvas() Canvas
	SetSize(width, height int)
	SetPixelRatio(ratio float64)
	Render(scene *Scene, camera *Camera)
	Dispose()
}

// Geometry is a point buffer. Update marks positions as changed; the slice is
// the same one the geometry was created with.
type Geometry interface {
	Update(positions []float32)
	Dispose()
}

type Material interface {
	SetOpacity(opacity float32)
	Dispose()
}

// Points is the particle field's node in the scene graph.
type Points struct {
	Field    *ParticleField
	Geometry Geometry
	Material Material
	Rotation mgl32.Vec3
}

// Model is the rotation matrix applied to the field, in XYZ Euler order.
func (p *Points) Model() mgl32.Mat4 {
	return mgl32.HomogRotate3DX(p.Rotation.X()).
		Mul4(mgl32.HomogRotate3DY(p.Rotation.Y())).
		Mul4(mgl32.HomogRotate3DZ(p.Rotation.Z()))
}

// Scene is the scene graph root. The field is its only child.
type Scene struct {
	Points *Points
}

// Projector maps field coordinates to pixels for one frame.
type Projector struct {
	mvp    mgl32.Mat4
	width  float32
	height float32
	scale  float32
}

// NewProjector precomputes the model-view-projection transform for a
// viewport of width x height pixels.
func NewProjector(scene *Scene, camera *Camera, width, height int) Projector {
	model := mgl32.Ident4()
	if scene != nil && scene.Points != nil {
		model = scene.Points.Model()
	}
	return Projector{
		mvp:    camera.Projection().Mul4(camera.View()).Mul4(model),
		width:  float32(width),
		height: float32(height),
		scale:  float32(height) / 2,
	}
}

// Project returns the pixel position of p and the on-screen size of a point of
// world size size, attenuated by depth. ok is false when p is outside the
// view frustum.
func (pr Projector) Project(p mgl32.Vec3, size float32) (x, y, px float32, ok bool) {
	clip := pr.mvp.Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / w)
	if ndc.X() < -1 || ndc.X() > 1 || ndc.Y() < -1 || ndc.Y() > 1 || ndc.Z() < -1 || ndc.Z() > 1 {
		return 0, 0, 0, false
	}
	x = (ndc.X() + 1) / 2 * pr.width
	y = (1 - ndc.Y()) / 2 * pr.height
	return x, y, size * pr.scale / w, true
}
