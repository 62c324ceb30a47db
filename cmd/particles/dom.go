//go:build js && wasm

package main

import (
	"errors"
	"syscall/js"
	"time"

	"github.com/Zachkp/portfolio/internal/background"
)

// element is the host node of the canvas. The background fills the window, so
// its size is the viewport size.
type element struct {
	v   js.Value
	win js.Value
}

func (e *element) Attached() bool {
	return e.v.Get("isConnected").Bool()
}

func (e *element) Size() (int, int) {
	return e.win.Get("innerWidth").Int(), e.win.Get("innerHeight").Int()
}

func (e *element) AppendChild(c background.Canvas) error {
	v, ok := c.(js.Value)
	if !ok {
		return errors.New("canvas is not a DOM node")
	}
	if !e.Attached() {
		return background.ErrSurfaceDetached
	}
	e.v.Call("appendChild", v)
	return nil
}

func (e *element) RemoveChild(c background.Canvas) error {
	v, ok := c.(js.Value)
	if !ok {
		return errors.New("canvas is not a DOM node")
	}
	if !v.Get("parentNode").Equal(e.v) {
		return errors.New("canvas is not a child of the host element")
	}
	e.v.Call("removeChild", v)
	return nil
}

// windowEvents registers listeners on window.
type windowEvents struct {
	win js.Value
}

func (w *windowEvents) listen(event string, fn js.Func) func() {
	w.win.Call("addEventListener", event, fn)
	return func() {
		w.win.Call("removeEventListener", event, fn)
		fn.Release()
	}
}

func (w *windowEvents) OnResize(fn func(width, height int)) func() {
	return w.listen("resize", js.FuncOf(func(js.Value, []js.Value) any {
		fn(w.win.Get("innerWidth").Int(), w.win.Get("innerHeight").Int())
		return nil
	}))
}

func (w *windowEvents) OnPointerMove(fn func(clientX, clientY float64)) func() {
	return w.listen("mousemove", js.FuncOf(func(_ js.Value, args []js.Value) any {
		ev := args[0]
		fn(ev.Get("clientX").Float(), ev.Get("clientY").Float())
		return nil
	}))
}

// frameScheduler runs callbacks on window.requestAnimationFrame.
type frameScheduler struct {
	win     js.Value
	pending map[background.FrameID]js.Func
}

func newFrameScheduler(win js.Value) *frameScheduler {
	return &frameScheduler{win: win, pending: make(map[background.FrameID]js.Func)}
}

func (s *frameScheduler) RequestFrame(fn background.FrameFunc) background.FrameID {
	var id background.FrameID
	var cb js.Func
	cb = js.FuncOf(func(_ js.Value, args []js.Value) any {
		delete(s.pending, id)
		cb.Release()
		ms := args[0].Float()
		fn(time.Duration(ms * float64(time.Millisecond)))
		return nil
	})
	id = background.FrameID(s.win.Call("requestAnimationFrame", cb).Int())
	s.pending[id] = cb
	return id
}

func (s *frameScheduler) CancelFrame(id background.FrameID) {
	cb, ok := s.pending[id]
	if !ok {
		return
	}
	s.win.Call("cancelAnimationFrame", int(id))
	delete(s.pending, id)
	cb.Release()
}
