package background_test

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Zachkp/portfolio/internal/background"
)

var _ = Describe("Config", func() {
	It("ships valid presets", func() {
		for _, name := range []string{"floating", "hero"} {
			cfg, err := background.Preset(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Validate()).To(Succeed(), name)
		}
		_, err := background.Preset("galaxy")
		Expect(err).To(HaveOccurred())
	})

	It("reports every invalid field", func() {
		cfg := background.Floating()
		cfg.Count = -1
		cfg.Size = 0
		cfg.FOV = 180
		cfg.Motion = "spiral"
		cfg.FadeEase = "bounce"

		err := cfg.Validate()
		Expect(err).To(HaveOccurred())
		for _, part := range []string{"count", "size", "fov", "spiral", "bounce"} {
			Expect(err.Error()).To(ContainSubstring(part))
		}
	})

	Describe("LoadPresets", func() {
		It("overlays entries on their base preset", func() {
			presets, err := background.LoadPresets(strings.NewReader(`
experience:
  count: 200
  color: "#00BFFF"
landing:
  base: hero
  fade_in: 500ms
  spin:
    y: 0.001
`))
			Expect(err).NotTo(HaveOccurred())
			Expect(presets).To(HaveLen(2))

			exp := presets["experience"]
			Expect(exp.Count).To(Equal(200))
			Expect(exp.Color).To(Equal(background.MustHex("#00BFFF")))
			Expect(exp.Motion).To(Equal(background.MotionDrift))
			Expect(exp.Size).To(BeNumerically("~", 0.05, 1e-7))

			landing := presets["landing"]
			Expect(landing.Count).To(Equal(1500))
			Expect(landing.PointerReactive).To(BeTrue())
			Expect(landing.FadeIn).To(Equal(500 * time.Millisecond))
			Expect(landing.Spin.Y).To(BeNumerically("~", 0.001, 1e-9))
		})

		It("rejects unknown bases and invalid values", func() {
			_, err := background.LoadPresets(strings.NewReader("a:\n  base: nebula\n"))
			Expect(err).To(MatchError(ContainSubstring("nebula")))

			_, err = background.LoadPresets(strings.NewReader("a:\n  count: 0\n"))
			Expect(err).To(MatchError(ContainSubstring("count")))

			_, err = background.LoadPresets(strings.NewReader("a:\n  color: purple\n"))
			Expect(err).To(HaveOccurred())
		})

		It("accepts an empty document", func() {
			presets, err := background.LoadPresets(strings.NewReader(""))
			Expect(err).NotTo(HaveOccurred())
			Expect(presets).To(BeEmpty())
		})
	})
})

var _ = Describe("Color", func() {
	DescribeTable("ParseHex",
		func(in string, want background.Color) {
			got, err := background.ParseHex(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.R).To(BeNumerically("~", want.R, 1e-6))
			Expect(got.G).To(BeNumerically("~", want.G, 1e-6))
			Expect(got.B).To(BeNumerically("~", want.B, 1e-6))
		},
		Entry("six digits", "#8A2BE2", background.Color{R: 138.0 / 255, G: 43.0 / 255, B: 226.0 / 255}),
		Entry("no hash", "00BFFF", background.Color{R: 0, G: 191.0 / 255, B: 1}),
		Entry("three digits", "#fff", background.Color{R: 1, G: 1, B: 1}),
	)

	It("rejects malformed values", func() {
		for _, in := range []string{"", "#12345", "#zzzzzz", "purple"} {
			_, err := background.ParseHex(in)
			Expect(err).To(HaveOccurred(), in)
		}
	})

	It("round trips through Hex", func() {
		Expect(background.MustHex("#FF4500").Hex()).To(Equal("#ff4500"))
	})
})

var _ = Describe("Camera", func() {
	It("tracks the aspect ratio in its projection", func() {
		cam := background.NewCamera(75, 1, 0.1, 1000)
		before := cam.Projection()

		cam.SetAspect(2)
		Expect(cam.Aspect).To(BeNumerically("==", 2))
		Expect(cam.Projection()).NotTo(Equal(before))
		Expect(cam.Projection().At(0, 0)).To(BeNumerically("~", before.At(0, 0)/2, 1e-6))
	})
})
