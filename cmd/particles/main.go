//go:build js && wasm

// Command particles mounts the animated particle background in a browser.
// Build with GOOS=js GOARCH=wasm and load it next to wasm_exec.js. The host
// element is #particles; its data-preset attribute picks the variant.
package main

import (
	"os"
	"syscall/js"

	"github.com/rs/zerolog"

	"github.com/Zachkp/portfolio/internal/background"
	"github.com/Zachkp/portfolio/internal/tween"
)

const hostID = "particles"

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
		With().Timestamp().Str("component", "background").Logger()

	doc := js.Global().Get("document")
	host := doc.Call("getElementById", hostID)
	if host.IsNull() || host.IsUndefined() {
		logger.Error().Str("id", hostID).Msg("host element not found")
		return
	}

	name := host.Get("dataset").Get("preset")
	preset := "hero"
	if name.Truthy() {
		preset = name.String()
	}
	cfg, err := background.Preset(preset)
	if err != nil {
		logger.Error().Err(err).Msg("unknown preset")
		return
	}

	win := js.Global().Get("window")
	ctrl := background.NewController(background.Deps{
		Backend:   &canvasBackend{doc: doc, win: win},
		Scheduler: newFrameScheduler(win),
		Events:    &windowEvents{win: win},
		Timeline:  tween.NewTimeline(),
		Logger:    logger,
	})

	// a failed mount leaves the page without a background and nothing else
	if err := ctrl.Mount(&element{v: host, win: win}, cfg); err != nil {
		logger.Error().Err(err).Msg("particle background disabled")
		return
	}

	done := make(chan struct{})
	var unmount js.Func
	unmount = js.FuncOf(func(js.Value, []js.Value) any {
		ctrl.Unmount()
		js.Global().Delete("unmountParticles")
		unmount.Release()
		close(done)
		return nil
	})
	js.Global().Set("unmountParticles", unmount)

	<-done
}
