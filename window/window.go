// SPDX-License-Identifier: GPL-2.0-or-later

// Package window creates the hidden window and driver context the probe tool
// and manual integration runs work against. The resource layer itself never
// creates a context, it only consumes the token returned here.
package window

import (
	"glres/glctx"
	"glres/glh"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	window  *sdl.Window
	context sdl.GLContext
	ctx     *glctx.Context
)

// SetMode creates a hidden window with a core profile context, makes it
// current on the calling thread and returns the context token. All further
// driver work has to stay on this thread.
func SetMode(width, height int32) (*glctx.Context, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "init sdl")
	}
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 6)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)

	w, err := sdl.CreateWindow("glres",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		width, height, sdl.WINDOW_OPENGL|sdl.WINDOW_HIDDEN)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "create window")
	}
	c, err := w.GLCreateContext()
	if err != nil {
		w.Destroy()
		sdl.Quit()
		return nil, errors.Wrap(err, "create driver context")
	}
	if err := gl.Init(); err != nil {
		sdl.GLDeleteContext(c)
		w.Destroy()
		sdl.Quit()
		return nil, errors.Wrap(err, "load driver entry points")
	}
	window = w
	context = c
	ctx = glctx.New(glh.OpenGL())
	if err := ctx.MakeCurrent(); err != nil {
		Shutdown()
		return nil, err
	}
	return ctx, nil
}

func Size() (int, int) {
	w, h := window.GetSize()
	return int(w), int(h)
}

// Shutdown invalidates the context token before the driver context goes
// away, so wrappers that outlive it fail their next operation instead of
// reaching a dead driver.
func Shutdown() {
	if ctx != nil {
		ctx.Invalidate()
		ctx = nil
	}
	if context != nil {
		sdl.GLDeleteContext(context)
		context = nil
	}
	if window != nil {
		window.Destroy()
		window = nil
	}
	sdl.Quit()
}
