package background

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Zachkp/portfolio/internal/tween"
)

// Motion selects how particles move each frame.
type Motion string

const (
	// MotionDrift moves every particle by a fixed per-particle velocity.
	MotionDrift Motion = "drift"
	// MotionWave offsets particles by a sine/cosine of the frame time.
	MotionWave Motion = "wave"
)

// Spin is the rotation in radians added to the field every frame.
type Spin struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

// Config describes one particle background.
type Config struct {
	Count int     `yaml:"count"`
	Size  float32 `yaml:"size"`
	Color Color   `yaml:"color"`
	// Palette, when set, gives each particle a random color from the list
	// instead of Color.
	Palette []Color `yaml:"palette"`

	Antialias  bool  `yaml:"antialias"`
	Alpha      bool  `yaml:"alpha"`
	ClearColor Color `yaml:"clear_color"`

	Motion          Motion  `yaml:"motion"`
	PointerReactive bool    `yaml:"pointer_reactive"`
	Spread          float32 `yaml:"spread"`
	Speed           float32 `yaml:"speed"`
	Spin            Spin    `yaml:"spin"`

	FOV     float32 `yaml:"fov"`
	CameraZ float32 `yaml:"camera_z"`

	Opacity  float32       `yaml:"opacity"`
	Additive bool          `yaml:"additive"`
	FadeIn   time.Duration `yaml:"fade_in"`
	FadeEase string        `yaml:"fade_ease"`

	// Seed fixes the initial layout. Zero picks a random seed.
	Seed uint64 `yaml:"seed"`
}

// Floating is the drifting background used behind content sections.
func Floating() Config {
	return Config{
		Count:      300,
		Size:       0.05,
		Color:      MustHex("#8A2BE2"),
		Antialias:  true,
		Alpha:      true,
		ClearColor: MustHex("#000000"),
		Motion:     MotionDrift,
		Spread:     15,
		Speed:      0.01,
		Spin:       Spin{Y: 0.0005},
		FOV:        60,
		CameraZ:    10,
		Opacity:    0.6,
		Additive:   true,
		FadeIn:     2 * time.Second,
		FadeEase:   "power2.inOut",
	}
}

// Hero is the pointer-reactive multicolor field behind the landing section.
func Hero() Config {
	return Config{
		Count: 1500,
		Size:  0.05,
		Palette: []Color{
			MustHex("#8A2BE2"),
			MustHex("#00BFFF"),
			MustHex("#FF4500"),
		},
		Antialias:       true,
		Alpha:           true,
		ClearColor:      MustHex("#000000"),
		Motion:          MotionWave,
		PointerReactive: true,
		Spread:          10,
		Spin:            Spin{X: 0.0003, Y: 0.0005},
		FOV:             75,
		CameraZ:         5,
		Opacity:         0.7,
		FadeIn:          2 * time.Second,
		FadeEase:        "power2.out",
	}
}

// Preset returns a built-in configuration by name.
func Preset(name string) (Config, error) {
	switch name {
	case "floating":
		return Floating(), nil
	case "hero":
		return Hero(), nil
	}
	return Config{}, fmt.Errorf("unknown preset %q", name)
}

// LoadPresets reads named configurations from YAML. Each entry starts from
// the built-in preset named by its "base" key (floating by default) and
// overrides the fields it sets:
//
//	experience:
//	  base: floating
//	  count: 200
func LoadPresets(r io.Reader) (map[string]Config, error) {
	var doc map[string]yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]Config{}, nil
		}
		return nil, fmt.Errorf("decode presets: %w", err)
	}

	out := make(map[string]Config, len(doc))
	for name, node := range doc {
		var head struct {
			Base string `yaml:"base"`
		}
		if err := node.Decode(&head); err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		if head.Base == "" {
			head.Base = "floating"
		}

		cfg, err := Preset(head.Base)
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		if err := node.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		out[name] = cfg
	}
	return out, nil
}

// Validate checks the configuration can be mounted.
func (c Config) Validate() error {
	var errs []error
	if c.Count <= 0 {
		errs = append(errs, fmt.Errorf("count must be positive, got %d", c.Count))
	}
	if c.Size <= 0 {
		errs = append(errs, fmt.Errorf("size must be positive, got %g", c.Size))
	}
	if c.Spread <= 0 {
		errs = append(errs, fmt.Errorf("spread must be positive, got %g", c.Spread))
	}
	if c.FOV <= 0 || c.FOV >= 180 {
		errs = append(errs, fmt.Errorf("fov must be in (0, 180), got %g", c.FOV))
	}
	if c.Opacity < 0 || c.Opacity > 1 {
		errs = append(errs, fmt.Errorf("opacity must be in [0, 1], got %g", c.Opacity))
	}
	switch c.Motion {
	case MotionDrift, MotionWave:
	default:
		errs = append(errs, fmt.Errorf("unknown motion %q", c.Motion))
	}
	if _, err := tween.ParseEase(c.FadeEase); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// needsRebuild reports whether moving from a to b changes anything fixed at
// construction: the buffer length, material, renderer options or layout.
// Only Spin and Opacity can change on a running field.
func needsRebuild(a, b Config) bool {
	return !slices.Equal(a.Palette, b.Palette) || !sameConstruction(a, b)
}

func sameConstruction(a, b Config) bool {
	return a.Count == b.Count &&
		a.Size == b.Size &&
		a.Color == b.Color &&
		a.Antialias == b.Antialias &&
		a.Alpha == b.Alpha &&
		a.ClearColor == b.ClearColor &&
		a.Motion == b.Motion &&
		a.PointerReactive == b.PointerReactive &&
		a.Spread == b.Spread &&
		a.Speed == b.Speed &&
		a.FOV == b.FOV &&
		a.CameraZ == b.CameraZ &&
		a.Additive == b.Additive &&
		a.FadeIn == b.FadeIn &&
		a.FadeEase == b.FadeEase &&
		a.Seed == b.Seed
}
