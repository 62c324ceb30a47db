package background_test

import (
	"math/rand/v2"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Zachkp/portfolio/internal/background"
)

var _ = Describe("ParticleField", func() {
	rng := func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

	It("allocates one xyz triple per particle", func() {
		cfg := background.Floating()
		f := background.NewParticleField(cfg, rng())

		Expect(f.Count).To(Equal(300))
		Expect(f.Positions).To(HaveLen(900))
		Expect(f.Velocities).To(HaveLen(900))
		Expect(f.Colors).To(BeNil())
		Expect(f.Extent()).To(BeNumerically("<=", cfg.Spread/2))
		for _, v := range f.Velocities {
			Expect(v).To(BeNumerically("<=", cfg.Speed/2))
			Expect(v).To(BeNumerically(">=", -cfg.Speed/2))
		}
	})

	It("is reproducible for a seed", func() {
		a := background.NewParticleField(background.Hero(), rng())
		b := background.NewParticleField(background.Hero(), rng())
		Expect(a.Positions).To(Equal(b.Positions))
		Expect(a.Colors).To(Equal(b.Colors))
	})

	It("picks vertex colors from the palette", func() {
		cfg := background.Hero()
		f := background.NewParticleField(cfg, rng())
		for i := 0; i < len(f.Colors); i += 3 {
			c := background.Color{R: f.Colors[i], G: f.Colors[i+1], B: f.Colors[i+2]}
			Expect(cfg.Palette).To(ContainElement(c))
		}
	})

	Describe("drift step", func() {
		It("moves each coordinate by its velocity", func() {
			f := &background.ParticleField{
				Count:      1,
				Positions:  []float32{1, -2, 3},
				Velocities: []float32{0.01, 0.02, -0.03},
			}
			f.Step(0)
			Expect(f.Positions[0]).To(BeNumerically("~", 1.01, 1e-6))
			Expect(f.Positions[1]).To(BeNumerically("~", -1.98, 1e-6))
			Expect(f.Positions[2]).To(BeNumerically("~", 2.97, 1e-6))
		})

		It("reflects and damps a coordinate driven past the bound", func() {
			f := &background.ParticleField{
				Count:      1,
				Positions:  []float32{7.95, 0, -7.95},
				Velocities: []float32{0.05, 0, -0.05},
			}
			f.Step(0)

			Expect(f.Positions[0]).To(BeNumerically("~", -7.6, 1e-5))
			Expect(f.Velocities[0]).To(BeNumerically("~", -0.045, 1e-6))
			Expect(f.Positions[2]).To(BeNumerically("~", 7.6, 1e-5))
			Expect(f.Velocities[2]).To(BeNumerically("~", 0.045, 1e-6))
			Expect(f.Positions[1]).To(BeZero())
		})

		It("reflects a resting coordinate at 8.0 to -7.6", func() {
			f := &background.ParticleField{
				Count:      1,
				Positions:  []float32{8, 0, 0},
				Velocities: []float32{0, 0, 0},
			}
			f.Step(0)
			Expect(f.Positions[0]).To(BeNumerically("~", -7.6, 1e-5))
		})

		It("leaves a coordinate exactly on the bound alone", func() {
			f := &background.ParticleField{
				Count:      1,
				Positions:  []float32{7.5, 0, 0},
				Velocities: []float32{0, 0, 0},
			}
			f.Step(0)
			Expect(f.Positions[0]).To(Equal(float32(7.5)))
		})
	})

	Describe("wave step", func() {
		It("offsets x and y by the frame time and index", func() {
			f := &background.ParticleField{
				Count:     2,
				Positions: make([]float32, 6),
			}
			f.Step(0)

			// sin(i) and cos(i) scaled by 0.001, for i = 0 and 3
			Expect(f.Positions[0]).To(BeNumerically("~", 0, 1e-7))
			Expect(f.Positions[1]).To(BeNumerically("~", 0.001, 1e-7))
			Expect(f.Positions[2]).To(BeZero())
			Expect(f.Positions[3]).To(BeNumerically("~", 0.000141120, 1e-7))
			Expect(f.Positions[4]).To(BeNumerically("~", -0.000989992, 1e-7))
		})

		It("depends on the timestamp", func() {
			a := &background.ParticleField{Count: 1, Positions: make([]float32, 3)}
			b := &background.ParticleField{Count: 1, Positions: make([]float32, 3)}
			a.Step(0)
			b.Step(float64(time.Second / time.Millisecond))
			Expect(a.Positions[0]).NotTo(Equal(b.Positions[0]))
		})
	})
})

var _ = Describe("Loop", func() {
	var sched *background.ManualScheduler

	BeforeEach(func() {
		sched = background.NewManualScheduler()
	})

	It("runs once per tick until stopped", func() {
		var seen []time.Duration
		loop := background.StartLoop(sched, func(ts time.Duration) { seen = append(seen, ts) })

		sched.Tick(1 * time.Millisecond)
		sched.Tick(2 * time.Millisecond)
		Expect(loop.Running()).To(BeTrue())

		loop.Stop()
		loop.Stop()
		Expect(sched.Tick(3 * time.Millisecond)).To(BeZero())
		Expect(seen).To(Equal([]time.Duration{time.Millisecond, 2 * time.Millisecond}))
		Expect(loop.Running()).To(BeFalse())
		Expect(sched.Pending()).To(BeZero())
	})

	It("can be stopped from inside its own frame", func() {
		var loop *background.Loop
		calls := 0
		loop = background.StartLoop(sched, func(time.Duration) {
			calls++
			loop.Stop()
		})

		sched.Tick(time.Millisecond)
		Expect(sched.Pending()).To(BeZero())
		Expect(sched.Tick(2 * time.Millisecond)).To(BeZero())
		Expect(calls).To(Equal(1))
	})

	It("runs frames requested during a tick on the next tick", func() {
		calls := 0
		background.StartLoop(sched, func(time.Duration) { calls++ })
		Expect(sched.Tick(0)).To(Equal(1))
		Expect(calls).To(Equal(1))
		Expect(sched.Pending()).To(Equal(1))
	})
})
