// SPDX-License-Identifier: GPL-2.0-or-later

// Package glctx models the driver context as an explicit token. Every
// driver-touching operation starts with Check instead of assuming ambient
// context state; a call on the wrong thread or on a destroyed context fails
// before anything reaches the driver.
package glctx

import (
	"errors"
	"sync"
	"sync/atomic"

	"glres/conlog"
	"glres/glformat"
	"glres/glh"

	"github.com/gopxl/mainthread/v2"
)

var (
	ErrContextAffinity = errors.New("context not current on calling thread")
	ErrContextInvalid  = errors.New("graphics context destroyed")
)

// current is the one context whose driver may be called right now. The
// embedding system makes a context current only on its context-owning thread,
// so a caller passing Check is on that thread.
var current atomic.Pointer[Context]

type Context struct {
	funcs glh.Funcs
	dead  atomic.Bool

	capsOnce sync.Once
	caps     glformat.Caps
}

func New(f glh.Funcs) *Context {
	return &Context{funcs: f}
}

func (c *Context) MakeCurrent() error {
	if c.dead.Load() {
		return ErrContextInvalid
	}
	current.Store(c)
	return nil
}

// Detach makes no context current.
func Detach() {
	current.Store(nil)
}

// Invalidate marks the context destroyed. Wrappers still holding handles from
// it must not reach the driver again, their handles died with the context.
func (c *Context) Invalidate() {
	c.dead.Store(true)
	current.CompareAndSwap(c, nil)
}

func (c *Context) Check() error {
	if c.dead.Load() {
		return ErrContextInvalid
	}
	if current.Load() != c {
		return ErrContextAffinity
	}
	return nil
}

// GL returns the driver. Only valid after a successful Check.
func (c *Context) GL() glh.Funcs {
	return c.funcs
}

// Caps queries the driver abilities once and caches them. Only valid after a
// successful Check.
func (c *Context) Caps() glformat.Caps {
	c.capsOnce.Do(func() {
		c.caps = glformat.CapsFromExtensions(c.funcs.Extensions())
	})
	return c.caps
}

// Release runs a driver deletion for a wrapper. On the context thread it runs
// directly. From anywhere else, the cleanup path of the garbage collector
// included, it is handed to the main thread and dropped if the context dies
// first. It never fails; failure to free is not something a teardown path can
// act on.
func (c *Context) Release(del func(glh.Funcs)) {
	if c.Check() == nil {
		c.releaseNow(del)
		return
	}
	if c.dead.Load() {
		return
	}
	mainthread.CallNonBlock(func() {
		if c.Check() == nil {
			c.releaseNow(del)
		}
	})
}

func (c *Context) releaseNow(del func(glh.Funcs)) {
	del(c.funcs)
	if e := c.funcs.GetError(); e != 0 {
		conlog.Printf("releasing driver resource: error %#x\n", e)
	}
}
