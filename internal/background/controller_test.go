package background_test

import (
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/Zachkp/portfolio/internal/background"
	"github.com/Zachkp/portfolio/internal/background/headless"
	"github.com/Zachkp/portfolio/internal/tween"
)

const frame = 16 * time.Millisecond

var _ = Describe("Controller", func() {
	var (
		backend  *headless.Backend
		sched    *background.ManualScheduler
		events   *headless.Events
		surface  *headless.Surface
		timeline *tween.Timeline
		ctrl     *background.Controller
		cfg      background.Config
	)

	BeforeEach(func() {
		backend = headless.NewBackend()
		sched = background.NewManualScheduler()
		events = headless.NewEvents()
		surface = headless.NewSurface(1280, 720)
		timeline = tween.NewTimeline()
		ctrl = background.NewController(background.Deps{
			Backend:   backend,
			Scheduler: sched,
			Events:    events,
			Timeline:  timeline,
			Logger:    zerolog.Nop(),
		})
		cfg = background.Floating()
		cfg.Seed = 42
	})

	renderer := func() *headless.Renderer { return backend.Renderers[len(backend.Renderers)-1] }
	material := func() *headless.Material { return backend.Materials[len(backend.Materials)-1] }

	Describe("Mount", func() {
		It("starts unmounted", func() {
			Expect(ctrl.State()).To(Equal(background.Unmounted))
			Expect(ctrl.RenderContext()).To(BeNil())
		})

		It("builds the render context and attaches the canvas", func() {
			Expect(ctrl.Mount(surface, cfg)).To(Succeed())

			Expect(ctrl.State()).To(Equal(background.Running))
			Expect(surface.Children).To(ConsistOf(renderer().Canvas()))
			Expect(ctrl.Field().Positions).To(HaveLen(cfg.Count * 3))
			Expect(ctrl.Field().Velocities).To(HaveLen(cfg.Count * 3))

			rc := ctrl.RenderContext()
			Expect(rc.Camera.FOV).To(BeNumerically("==", 60))
			Expect(rc.Camera.Aspect).To(BeNumerically("~", 1280.0/720.0, 1e-6))
			Expect(rc.Camera.Position).To(Equal(mgl32.Vec3{0, 0, 10}))
			Expect(renderer().Width).To(Equal(1280))
			Expect(renderer().Height).To(Equal(720))
			Expect(renderer().Options.Alpha).To(BeTrue())
			Expect(sched.Pending()).To(Equal(1))
			Expect(events.Listeners()).To(Equal(1), "floating is not pointer reactive")
		})

		It("caps the pixel ratio at 2", func() {
			backend.PixelRatio = 3
			Expect(ctrl.Mount(surface, cfg)).To(Succeed())
			Expect(renderer().Ratio).To(Equal(2.0))
		})

		It("rejects a second mount", func() {
			Expect(ctrl.Mount(surface, cfg)).To(Succeed())

			err := ctrl.Mount(surface, cfg)
			Expect(err).To(MatchError(background.ErrAlreadyMounted))
			Expect(ctrl.State()).To(Equal(background.Running))
		})

		It("rejects an invalid config without touching the backend", func() {
			cfg.Count = 0

			var setupErr *background.SetupError
			Expect(errors.As(ctrl.Mount(surface, cfg), &setupErr)).To(BeTrue())
			Expect(setupErr.Stage).To(Equal("config"))
			Expect(backend.Renderers).To(BeEmpty())
		})

		It("fails closed when the surface is detached", func() {
			surface.Detach()

			err := ctrl.Mount(surface, cfg)
			Expect(err).To(MatchError(background.ErrSurfaceDetached))
			Expect(ctrl.State()).To(Equal(background.Unmounted))
			Expect(backend.Live()).To(BeZero())
			Expect(sched.Pending()).To(BeZero())
		})

		It("fails closed when the surface is nil", func() {
			Expect(ctrl.Mount(nil, cfg)).To(MatchError(background.ErrSurfaceDetached))
			Expect(ctrl.State()).To(Equal(background.Unmounted))
		})

		DescribeTable("releases everything created before a backend failure",
			func(breakBackend func(*headless.Backend), stage string) {
				breakBackend(backend)

				var setupErr *background.SetupError
				Expect(errors.As(ctrl.Mount(surface, cfg), &setupErr)).To(BeTrue())
				Expect(setupErr.Stage).To(Equal(stage))

				Expect(ctrl.State()).To(Equal(background.Unmounted))
				Expect(backend.Live()).To(BeZero())
				Expect(surface.Children).To(BeEmpty())
				Expect(events.Listeners()).To(BeZero())
				Expect(sched.Pending()).To(BeZero())
			},
			Entry("renderer", func(b *headless.Backend) { b.FailRenderer = errors.New("webgl unavailable") }, "renderer"),
			Entry("geometry", func(b *headless.Backend) { b.FailGeometry = errors.New("out of memory") }, "geometry"),
			Entry("material", func(b *headless.Backend) { b.FailMaterial = errors.New("shader compile") }, "material"),
		)

		It("can mount again after a failed mount", func() {
			surface.Detach()
			Expect(ctrl.Mount(surface, cfg)).NotTo(Succeed())

			Expect(ctrl.Mount(headless.NewSurface(640, 480), cfg)).To(Succeed())
			Expect(ctrl.State()).To(Equal(background.Running))
		})
	})

	Describe("frame loop", func() {
		BeforeEach(func() {
			Expect(ctrl.Mount(surface, cfg)).To(Succeed())
		})

		It("renders once per refresh and reschedules itself", func() {
			for i := 1; i <= 3; i++ {
				Expect(sched.Tick(time.Duration(i) * frame)).To(Equal(1))
			}
			Expect(renderer().Frames).To(Equal(3))
			Expect(ctrl.Frames()).To(BeEquivalentTo(3))
			Expect(backend.Geometries[0].Updates).To(Equal(3))
			Expect(sched.Pending()).To(Equal(1))
		})

		It("spins the field a little every frame", func() {
			sched.Tick(frame)
			sched.Tick(2 * frame)

			rot := ctrl.RenderContext().Scene.Points.Rotation
			Expect(rot.Y()).To(BeNumerically("~", 0.001, 1e-7))
			Expect(rot.X()).To(BeZero())
		})

		It("fades the material in over the configured duration", func() {
			Expect(material().Opacity).To(BeZero())

			sched.Tick(time.Second)
			sched.Tick(2 * time.Second)
			Expect(material().Opacity).To(BeNumerically("~", 0.3, 1e-6))

			sched.Tick(3 * time.Second)
			Expect(material().Opacity).To(BeNumerically("~", 0.6, 1e-6))
			Expect(timeline.Active()).To(BeZero())
		})

		It("keeps the field bounded", func() {
			for i := 1; i <= 2000; i++ {
				sched.Tick(time.Duration(i) * frame)
			}
			Expect(ctrl.Field().Extent()).To(BeNumerically("<=", background.Bound))
		})

		It("ignores direct frames once unmounted", func() {
			field := ctrl.Field()
			before := append([]float32(nil), field.Positions...)
			ctrl.Unmount()

			ctrl.OnFrame(frame)
			Expect(field.Positions).To(Equal(before))
		})
	})

	Describe("OnResize", func() {
		BeforeEach(func() {
			Expect(ctrl.Mount(surface, cfg)).To(Succeed())
		})

		It("tracks the viewport aspect ratio", func() {
			events.Resize(800, 800)

			Expect(ctrl.RenderContext().Camera.Aspect).To(BeNumerically("==", 1))
			Expect(renderer().Width).To(Equal(800))
			Expect(renderer().Height).To(Equal(800))
		})

		It("is idempotent", func() {
			ctrl.OnResize(1024, 512)
			aspect := ctrl.RenderContext().Camera.Aspect
			calls := renderer().SizeCalls

			ctrl.OnResize(1024, 512)
			Expect(ctrl.RenderContext().Camera.Aspect).To(Equal(aspect))
			Expect(renderer().SizeCalls).To(Equal(calls))
			Expect(renderer().Width).To(Equal(1024))
		})

		It("ignores an empty viewport", func() {
			ctrl.OnResize(0, 0)
			Expect(ctrl.RenderContext().Camera.Aspect).To(BeNumerically("~", 1280.0/720.0, 1e-6))
		})

		It("stops listening after unmount", func() {
			ctrl.Unmount()
			Expect(events.Listeners()).To(BeZero())
			events.Resize(10, 10)
			Expect(renderer().Width).To(Equal(1280))
		})
	})

	Describe("pointer-reactive variant", func() {
		BeforeEach(func() {
			cfg = background.Hero()
			cfg.Seed = 7
			Expect(ctrl.Mount(surface, cfg)).To(Succeed())
		})

		It("uses the wave motion with vertex colors", func() {
			Expect(ctrl.Field().Velocities).To(BeNil())
			Expect(ctrl.Field().Colors).To(HaveLen(cfg.Count * 3))
			Expect(material().Params.VertexColors).To(BeTrue())
			Expect(events.Listeners()).To(Equal(2))
		})

		It("eases the camera toward the pointer and looks at the origin", func() {
			events.PointerMove(1280, 0)

			sched.Tick(frame)
			cam := ctrl.RenderContext().Camera
			Expect(cam.Position.X()).To(BeNumerically("~", 0.025, 1e-6))
			Expect(cam.Position.Y()).To(BeNumerically("~", 0.025, 1e-6))

			for i := 2; i < 400; i++ {
				sched.Tick(time.Duration(i) * frame)
			}
			Expect(cam.Position.X()).To(BeNumerically("~", 0.5, 1e-3))
			Expect(cam.Position.Y()).To(BeNumerically("~", 0.5, 1e-3))
			Expect(cam.Target).To(Equal(mgl32.Vec3{}))
		})

		It("draws most of the field", func() {
			sched.Tick(frame)
			Expect(renderer().Visible).To(BeNumerically(">", cfg.Count/2))
		})
	})

	Describe("Unmount", func() {
		It("is safe before mount", func() {
			Expect(func() { ctrl.Unmount() }).NotTo(Panic())
			Expect(ctrl.State()).To(Equal(background.Unmounted))
			Expect(sched.Pending()).To(BeZero())
		})

		It("releases everything and is safe to repeat", func() {
			Expect(ctrl.Mount(surface, cfg)).To(Succeed())
			sched.Tick(frame)

			ctrl.Unmount()
			ctrl.Unmount()

			Expect(ctrl.State()).To(Equal(background.Unmounted))
			Expect(sched.Pending()).To(BeZero())
			Expect(surface.Children).To(BeEmpty())
			Expect(events.Listeners()).To(BeZero())
			Expect(backend.Live()).To(BeZero())
			Expect(renderer().Disposed).To(Equal(1), "no double free")
			Expect(backend.Geometries[0].Disposed).To(Equal(1))
			Expect(material().Disposed).To(Equal(1))
			Expect(timeline.Active()).To(BeZero())
		})

		It("cancels the pending frame when triggered by an event", func() {
			Expect(ctrl.Mount(surface, cfg)).To(Succeed())
			events.OnResize(func(int, int) { ctrl.Unmount() })

			sched.Tick(frame)
			events.Resize(100, 100)

			Expect(sched.Tick(2 * frame)).To(BeZero())
			Expect(ctrl.State()).To(Equal(background.Unmounted))
		})
	})

	Describe("Reconfigure", func() {
		BeforeEach(func() {
			Expect(ctrl.Mount(surface, cfg)).To(Succeed())
		})

		It("rebuilds the field when the count changes", func() {
			next := cfg
			next.Count = 50

			Expect(ctrl.Reconfigure(next)).To(Succeed())

			Expect(ctrl.State()).To(Equal(background.Running))
			Expect(ctrl.Field().Positions).To(HaveLen(150))
			Expect(backend.Renderers).To(HaveLen(2))
			Expect(backend.Renderers[0].Disposed).To(Equal(1))
			Expect(backend.Live()).To(Equal(3))
			Expect(surface.Children).To(ConsistOf(backend.Renderers[1].Canvas()))
			Expect(sched.Pending()).To(Equal(1))
		})

		DescribeTable("rebuilds on construction-time changes",
			func(change func(*background.Config)) {
				next := cfg
				change(&next)
				Expect(ctrl.Reconfigure(next)).To(Succeed())
				Expect(backend.Renderers).To(HaveLen(2))
			},
			Entry("size", func(c *background.Config) { c.Size = 0.1 }),
			Entry("color", func(c *background.Config) { c.Color = background.MustHex("#00BFFF") }),
			Entry("antialias", func(c *background.Config) { c.Antialias = false }),
		)

		It("updates spin in place", func() {
			next := cfg
			next.Spin = background.Spin{Z: 0.01}

			Expect(ctrl.Reconfigure(next)).To(Succeed())
			sched.Tick(frame)

			Expect(backend.Renderers).To(HaveLen(1))
			Expect(ctrl.RenderContext().Scene.Points.Rotation.Z()).To(BeNumerically("~", 0.01, 1e-7))
		})

		It("updates opacity in place", func() {
			next := cfg
			next.Opacity = 0.2

			Expect(ctrl.Reconfigure(next)).To(Succeed())
			sched.Tick(frame)

			Expect(backend.Materials).To(HaveLen(1))
			Expect(material().Opacity).To(BeNumerically("~", 0.2, 1e-7))
		})

		It("keeps the current field running when the new config is invalid", func() {
			next := cfg
			next.Count = 0

			err := ctrl.Reconfigure(next)

			var setupErr *background.SetupError
			Expect(errors.As(err, &setupErr)).To(BeTrue())
			Expect(setupErr.Stage).To(Equal("config"))
			Expect(ctrl.State()).To(Equal(background.Running))
			Expect(ctrl.Config().Count).To(Equal(cfg.Count))
			Expect(backend.Renderers).To(HaveLen(1))
			Expect(backend.Live()).To(Equal(3))
			Expect(sched.Pending()).To(Equal(1))
		})

		It("requires a running controller", func() {
			ctrl.Unmount()
			Expect(ctrl.Reconfigure(cfg)).To(MatchError(background.ErrNotRunning))
		})
	})
})
