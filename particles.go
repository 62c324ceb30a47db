package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/Zachkp/portfolio/internal/background"
	"github.com/Zachkp/portfolio/internal/background/headless"
	"github.com/Zachkp/portfolio/internal/tween"
)

// frameInterval is one refresh at 60Hz.
const frameInterval = 16 * time.Millisecond

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

type previewCmd struct {
	variant string
	presets string
	frames  int
	graph   bool
	width   int
	height  int
	seed    uint64

	out io.Writer
}

func particlesCmd() *cli.Command {
	cmd := &previewCmd{out: os.Stdout}
	return &cli.Command{
		Name:  "particles",
		Usage: "Particle background tools",
		Commands: []*cli.Command{
			{
				Name:      "preview",
				Usage:     "Run the background controller headless and report the result",
				UsageText: "portfolio particles preview [--variant floating|hero] [--frames N] [--seed S]",
				Description: `Mounts the particle background on an in-memory surface, runs N frames at
60Hz and prints the frame count, visible particles, field extent and material
opacity. Presets from --presets override the built-in variants by name.`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "variant",
						Aliases:     []string{"v"},
						Usage:       "preset name (floating, hero or one from --presets)",
						Value:       "hero",
						Destination: &cmd.variant,
					},
					&cli.StringFlag{
						Name:        "presets",
						Usage:       "YAML file with additional presets",
						Destination: &cmd.presets,
					},
					&cli.IntFlag{
						Name:        "frames",
						Aliases:     []string{"n"},
						Usage:       "number of frames to run",
						Value:       120,
						Destination: &cmd.frames,
					},
					&cli.BoolFlag{
						Name:        "graph",
						Usage:       "plot material opacity per frame",
						Destination: &cmd.graph,
					},
					&cli.IntFlag{
						Name:        "width",
						Value:       1280,
						Destination: &cmd.width,
					},
					&cli.IntFlag{
						Name:        "height",
						Value:       720,
						Destination: &cmd.height,
					},
					&cli.Uint64Flag{
						Name:        "seed",
						Usage:       "random seed, 0 for a random field",
						Value:       1,
						Destination: &cmd.seed,
					},
				},
				Action: cmd.run,
			},
		},
	}
}

func (cmd *previewCmd) config() (background.Config, error) {
	if cmd.presets != "" {
		f, err := os.Open(cmd.presets)
		if err != nil {
			return background.Config{}, fmt.Errorf("open presets: %w", err)
		}
		defer f.Close()

		presets, err := background.LoadPresets(f)
		if err != nil {
			return background.Config{}, err
		}
		if cfg, ok := presets[cmd.variant]; ok {
			return cfg, nil
		}
	}
	return background.Preset(cmd.variant)
}

func (cmd *previewCmd) run(ctx context.Context, c *cli.Command) error {
	return cmd.preview(ctx, c.IsSet("seed"))
}

// preview keeps a preset's own seed unless one was given on the command line.
func (cmd *previewCmd) preview(ctx context.Context, seedSet bool) error {
	if cmd.frames < 0 {
		return fmt.Errorf("frames must not be negative, got %d", cmd.frames)
	}
	cfg, err := cmd.config()
	if err != nil {
		return err
	}
	if seedSet || cfg.Seed == 0 {
		cfg.Seed = cmd.seed
	}

	backend := headless.NewBackend()
	sched := background.NewManualScheduler()
	events := headless.NewEvents()
	surface := headless.NewSurface(cmd.width, cmd.height)

	ctrl := background.NewController(background.Deps{
		Backend:   backend,
		Scheduler: sched,
		Events:    events,
		Timeline:  tween.NewTimeline(),
		Logger:    log.With().Str("component", "background").Logger(),
	})
	if err := ctrl.Mount(surface, cfg); err != nil {
		return err
	}
	defer ctrl.Unmount()

	material := backend.Materials[len(backend.Materials)-1]
	opacity := make([]float64, 0, cmd.frames)
	for i := 1; i <= cmd.frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		sched.Tick(time.Duration(i) * frameInterval)
		opacity = append(opacity, float64(material.Opacity))
	}

	renderer := backend.Renderers[len(backend.Renderers)-1]
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%s, %d particles)", cmd.variant, cfg.Motion, cfg.Count)) + "\n")
	b.WriteString(row("frames", fmt.Sprintf("%d", ctrl.Frames())))
	b.WriteString(row("visible", fmt.Sprintf("%d/%d", renderer.Visible, cfg.Count)))
	b.WriteString(row("extent", fmt.Sprintf("%.3f", ctrl.Field().Extent())))
	b.WriteString(row("opacity", fmt.Sprintf("%.3f/%.3f", material.Opacity, cfg.Opacity)))
	if cmd.graph && len(opacity) > 1 {
		b.WriteString("\n" + asciigraph.Plot(opacity,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("material opacity per frame"),
		) + "\n")
	}
	_, err = io.WriteString(cmd.out, b.String())
	return err
}
