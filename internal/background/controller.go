// Package background runs the animated particle field drawn behind the
// portfolio pages.
//
// A Controller owns one render context and one particle field between Mount
// and Unmount. All of its methods, frame callbacks and event handlers must run
// on a single goroutine, the one the Scheduler and Events deliver on.
package background

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"github.com/Zachkp/portfolio/internal/tween"
)

// State is the controller lifecycle state.
type State int

const (
	Unmounted State = iota
	Mounting
	Running
)

func (s State) String() string {
	switch s {
	case Unmounted:
		return "unmounted"
	case Mounting:
		return "mounting"
	case Running:
		return "running"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

const (
	cameraSmoothing = 0.05
	pointerReach    = 0.5
	maxPixelRatio   = 2.0
)

// RenderContext is the scene, camera and renderer of one mount.
type RenderContext struct {
	Scene    *Scene
	Camera   *Camera
	Renderer Renderer
}

// viewport and pointer are written by event handlers and read by the frame
// step. They hold plain values only.
type viewport struct {
	width, height int
}

type pointer struct {
	x, y float32
}

// Deps are the collaborators a Controller is built with.
type Deps struct {
	Backend   Backend
	Scheduler Scheduler
	Events    Events
	// Timeline drives the fade-in. The controller owns it: tweens are killed
	// on every Unmount. Nil creates a private one.
	Timeline *tween.Timeline
	Logger   zerolog.Logger
}

type Controller struct {
	backend  Backend
	sched    Scheduler
	events   Events
	timeline *tween.Timeline
	log      zerolog.Logger

	state   State
	cfg     Config
	surface Surface

	rc       *RenderContext
	field    *ParticleField
	geometry Geometry
	material Material
	attached bool

	loop      *Loop
	listeners []func()

	viewport viewport
	applied  viewport
	pointer  pointer

	frames uint64
}

func NewController(deps Deps) *Controller {
	tl := deps.Timeline
	if tl == nil {
		tl = tween.NewTimeline()
	}
	return &Controller{
		backend:  deps.Backend,
		sched:    deps.Scheduler,
		events:   deps.Events,
		timeline: tl,
		log:      deps.Logger,
	}
}

func (c *Controller) State() State { return c.state }

// Config is the configuration of the current or last mount.
func (c *Controller) Config() Config { return c.cfg }

// RenderContext is nil unless the controller is mounted.
func (c *Controller) RenderContext() *RenderContext { return c.rc }

// Field is nil unless the controller is mounted.
func (c *Controller) Field() *ParticleField { return c.field }

// Frames counts frames rendered since the last Mount.
func (c *Controller) Frames() uint64 { return c.frames }

// Mount builds the render context and particle field, attaches the canvas to
// surface and starts the frame loop. On failure everything created so far is
// released, the controller is back in Unmounted and a *SetupError is
// returned.
func (c *Controller) Mount(surface Surface, cfg Config) (err error) {
	if c.state != Unmounted {
		return &SetupError{Stage: "mount", Err: ErrAlreadyMounted}
	}
	if err := cfg.Validate(); err != nil {
		return &SetupError{Stage: "config", Err: err}
	}

	c.state = Mounting
	c.cfg = cfg
	c.surface = surface
	c.frames = 0

	stage := "surface"
	defer func() {
		if r := recover(); r != nil {
			err = &SetupError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			c.log.Warn().Err(err).Msg("particle background disabled")
			c.teardown()
		}
	}()

	if surface == nil || !surface.Attached() {
		return &SetupError{Stage: stage, Err: ErrSurfaceDetached}
	}
	width, height := surface.Size()
	c.viewport = viewport{width, height}

	stage = "renderer"
	renderer, err := c.backend.NewRenderer(RendererOptions{
		Antialias:  cfg.Antialias,
		Alpha:      cfg.Alpha,
		ClearColor: cfg.ClearColor,
	})
	if err != nil {
		return &SetupError{Stage: stage, Err: err}
	}
	c.rc = &RenderContext{Renderer: renderer}
	renderer.SetPixelRatio(min(c.backend.DevicePixelRatio(), maxPixelRatio))

	camera := NewCamera(cfg.FOV, aspect(c.viewport), cameraNear, cameraFar)
	camera.Position = mgl32.Vec3{0, 0, cfg.CameraZ}
	c.rc.Camera = camera
	c.applyViewport()

	stage = "geometry"
	c.field = NewParticleField(cfg, newRand(cfg.Seed))
	c.geometry, err = c.backend.NewGeometry(c.field.Positions, c.field.Colors)
	if err != nil {
		return &SetupError{Stage: stage, Err: err}
	}

	stage = "material"
	c.material, err = c.backend.NewMaterial(MaterialParams{
		Size:         cfg.Size,
		Color:        cfg.Color,
		VertexColors: c.field.Colors != nil,
		Opacity:      cfg.Opacity,
		Transparent:  true,
		Additive:     cfg.Additive,
	})
	if err != nil {
		return &SetupError{Stage: stage, Err: err}
	}
	c.rc.Scene = &Scene{Points: &Points{Field: c.field, Geometry: c.geometry, Material: c.material}}

	stage = "attach"
	if err := surface.AppendChild(renderer.Canvas()); err != nil {
		return &SetupError{Stage: stage, Err: err}
	}
	c.attached = true
	// the surface can be detached while we were building
	if !surface.Attached() {
		return &SetupError{Stage: stage, Err: ErrSurfaceDetached}
	}

	if c.events != nil {
		c.listeners = append(c.listeners, c.events.OnResize(c.OnResize))
		if cfg.PointerReactive {
			c.listeners = append(c.listeners, c.events.OnPointerMove(c.OnPointerMove))
		}
	}

	ease, _ := tween.ParseEase(cfg.FadeEase)
	material := c.material
	c.timeline.FromTo(func(v float64) { material.SetOpacity(float32(v)) }, 0, float64(cfg.Opacity), cfg.FadeIn, ease)

	c.state = Running
	c.loop = StartLoop(c.sched, c.OnFrame)

	c.log.Debug().
		Int("count", cfg.Count).
		Str("motion", string(cfg.Motion)).
		Int("width", width).
		Int("height", height).
		Msg("particle background mounted")
	return nil
}

// OnFrame advances the field by one frame and renders it. It does nothing
// unless the controller is Running.
func (c *Controller) OnFrame(ts time.Duration) {
	if c.state != Running {
		return
	}

	c.applyViewport()

	c.field.Step(float64(ts) / float64(time.Millisecond))
	c.geometry.Update(c.field.Positions)

	points := c.rc.Scene.Points
	spin := c.cfg.Spin
	points.Rotation = points.Rotation.Add(mgl32.Vec3{spin.X, spin.Y, spin.Z})

	if c.cfg.PointerReactive {
		target := mgl32.Vec2{c.pointer.x * pointerReach, c.pointer.y * pointerReach}
		c.rc.Camera.EaseToward(target, cameraSmoothing)
		c.rc.Camera.LookAt(mgl32.Vec3{})
	}

	c.timeline.Advance(ts)
	c.rc.Renderer.Render(c.rc.Scene, c.rc.Camera)
	c.frames++
}

// OnResize records the new viewport size and, when mounted, applies it to
// the camera and renderer. Repeating the same size changes nothing.
func (c *Controller) OnResize(width, height int) {
	c.viewport = viewport{width, height}
	if c.state == Running {
		c.applyViewport()
	}
}

// OnPointerMove records the pointer position normalized to [-1,1] with y up.
func (c *Controller) OnPointerMove(clientX, clientY float64) {
	v := c.viewport
	if v.width <= 0 || v.height <= 0 {
		return
	}
	c.pointer = pointer{
		x: float32(clientX/float64(v.width)*2 - 1),
		y: float32(-(clientY/float64(v.height))*2 + 1),
	}
}

func (c *Controller) applyViewport() {
	v := c.viewport
	if v == c.applied || v.width <= 0 || v.height <= 0 || c.rc == nil || c.rc.Camera == nil {
		return
	}
	c.rc.Camera.SetAspect(aspect(v))
	c.rc.Renderer.SetSize(v.width, v.height)
	c.applied = v
}

// Reconfigure applies cfg to a running controller. Spin and opacity change in
// place; any other difference rebuilds the field from scratch.
func (c *Controller) Reconfigure(cfg Config) error {
	if c.state != Running {
		return ErrNotRunning
	}
	// a rejected config leaves the current field running
	if err := cfg.Validate(); err != nil {
		return &SetupError{Stage: "config", Err: err}
	}
	if !needsRebuild(c.cfg, cfg) {
		if cfg.Opacity != c.cfg.Opacity {
			c.timeline.Kill()
			c.material.SetOpacity(cfg.Opacity)
		}
		c.cfg = cfg
		return nil
	}

	surface := c.surface
	c.Unmount()
	return c.Mount(surface, cfg)
}

// Unmount stops the frame loop, removes listeners, detaches the canvas and
// releases GPU resources, in that order. It is safe to call at any time and
// more than once.
func (c *Controller) Unmount() {
	if c.state == Unmounted && c.rc == nil && c.loop == nil {
		return
	}
	c.teardown()
	c.log.Debug().Uint64("frames", c.frames).Msg("particle background unmounted")
}

func (c *Controller) teardown() {
	if c.loop != nil {
		c.loop.Stop()
		c.loop = nil
	}
	for _, remove := range c.listeners {
		c.release("listener", remove)
	}
	c.listeners = nil
	c.timeline.Kill()

	if c.attached && c.surface != nil && c.rc != nil && c.rc.Renderer != nil {
		canvas := c.rc.Renderer.Canvas()
		c.release("canvas", func() {
			if err := c.surface.RemoveChild(canvas); err != nil {
				c.log.Warn().Err(err).Msg("failed to detach particle canvas")
			}
		})
	}
	c.attached = false

	if c.geometry != nil {
		c.release("geometry", c.geometry.Dispose)
		c.geometry = nil
	}
	if c.material != nil {
		c.release("material", c.material.Dispose)
		c.material = nil
	}
	if c.rc != nil && c.rc.Renderer != nil {
		c.release("renderer", c.rc.Renderer.Dispose)
	}

	c.rc = nil
	c.field = nil
	c.surface = nil
	c.applied = viewport{}
	c.pointer = pointer{}
	c.state = Unmounted
}

// release runs one cleanup step; a panicking backend must not stop the rest.
func (c *Controller) release(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Str("resource", what).Msg("failed to release particle resource")
		}
	}()
	fn()
}

func aspect(v viewport) float32 {
	if v.width <= 0 || v.height <= 0 {
		return 1
	}
	return float32(v.width) / float32(v.height)
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
