// SPDX-License-Identifier: GPL-2.0-or-later

// Package buffer owns driver-side vertex and index buffer objects filled
// from scene library geometry. Geometry bytes go to the driver verbatim,
// there is no format translation, only a usage hint.
package buffer

import (
	"runtime"
	"sync/atomic"

	"glres/glctx"
	"glres/glh"
	"glres/scene"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/pkg/errors"
)

var ErrSizeMismatch = errors.New("update size differs from allocation")

type Usage uint32

const (
	Static Usage = iota
	Dynamic
)

func (u Usage) glEnum() uint32 {
	if u == Dynamic {
		return gl.DYNAMIC_DRAW
	}
	return gl.STATIC_DRAW
}

func (u Usage) String() string {
	if u == Dynamic {
		return "dynamic"
	}
	return "static"
}

// handle is the part of a Buffer the cleanup path may touch after the Buffer
// itself became unreachable.
type handle struct {
	ctx      *glctx.Context
	buf      uint32
	released atomic.Bool
}

func (h *handle) release() {
	if h.released.Swap(true) {
		return
	}
	h.ctx.Release(func(f glh.Funcs) {
		f.DeleteBuffer(h.buf)
	})
}

type Buffer struct {
	h      *handle
	target uint32
	size   int
	usage  Usage
}

// New allocates a driver buffer and uploads the descriptor's bytes. On any
// failure no driver object stays allocated.
func New(ctx *glctx.Context, d *scene.BufferDescriptor, usage Usage) (*Buffer, error) {
	if err := d.Validate(); err != nil {
		return nil, errors.Wrap(err, "construct buffer")
	}
	if err := ctx.Check(); err != nil {
		return nil, err
	}
	target := uint32(glh.ArrayBuffer)
	if d.Index {
		target = glh.ElementArrayBuffer
	}
	f := ctx.GL()
	buf := f.GenBuffer()
	f.BindBuffer(target, buf)
	f.BufferData(target, d.Data, usage.glEnum())
	if err := glh.CheckAlloc(f); err != nil {
		f.DeleteBuffer(buf)
		return nil, errors.Wrapf(err, "construct %s buffer of %d bytes", usage, len(d.Data))
	}
	b := &Buffer{
		h:      &handle{ctx: ctx, buf: buf},
		target: target,
		size:   len(d.Data),
		usage:  usage,
	}
	runtime.AddCleanup(b, (*handle).release, b.h)
	return b, nil
}

func (b *Buffer) check() error {
	if b.h.released.Load() {
		return glh.ErrUseAfterRelease
	}
	return b.h.ctx.Check()
}

// Bind makes the buffer current for following draw calls.
func (b *Buffer) Bind() error {
	if err := b.check(); err != nil {
		return err
	}
	b.h.ctx.GL().BindBuffer(b.target, b.h.buf)
	return nil
}

// Update re-uploads content. Content no larger than the allocation goes into
// the existing store, larger content reallocates the store. A failed
// reallocation releases the buffer, the old store is undefined at that point.
func (b *Buffer) Update(d *scene.BufferDescriptor) error {
	return b.update(d, false)
}

// UpdateInPlace re-uploads content into the existing store and fails with
// ErrSizeMismatch if the size differs from the allocation.
func (b *Buffer) UpdateInPlace(d *scene.BufferDescriptor) error {
	return b.update(d, true)
}

func (b *Buffer) update(d *scene.BufferDescriptor, strict bool) error {
	if err := b.check(); err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return errors.Wrap(err, "update buffer")
	}
	if d.Index != (b.target == glh.ElementArrayBuffer) {
		return errors.Errorf("update changes buffer target")
	}
	if strict && len(d.Data) != b.size {
		return errors.Wrapf(ErrSizeMismatch, "%d bytes into %d", len(d.Data), b.size)
	}
	f := b.h.ctx.GL()
	f.BindBuffer(b.target, b.h.buf)
	if len(d.Data) <= b.size {
		f.BufferSubData(b.target, 0, d.Data)
		return nil
	}
	f.BufferData(b.target, d.Data, b.usage.glEnum())
	if err := glh.CheckAlloc(f); err != nil {
		// the old store is undefined after a failed reallocation
		b.h.release()
		return errors.Wrapf(err, "grow buffer to %d bytes", len(d.Data))
	}
	b.size = len(d.Data)
	return nil
}

// Release frees the driver buffer. Idempotent, never fails, and safe from the
// collector's cleanup path.
func (b *Buffer) Release() {
	b.h.release()
}

func (b *Buffer) Live() bool {
	return !b.h.released.Load()
}

func (b *Buffer) Size() int {
	return b.size
}

func (b *Buffer) Usage() Usage {
	return b.usage
}
