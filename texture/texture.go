// SPDX-License-Identifier: GPL-2.0-or-later

// Package texture owns driver-side texture objects filled from scene library
// mipmap chains. Construction translates the source format first; if the
// driver can not take the format no driver object is ever allocated.
package texture

import (
	"runtime"
	"sync/atomic"

	"glres/glctx"
	"glres/glformat"
	"glres/glh"
	"glres/scene"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/pkg/errors"
)

var ErrIncompatibleUpdate = errors.New("update incompatible with texture storage")

type Pref uint32

const (
	PrefMipMap Pref = 1 << iota
	PrefLinear
	PrefNearest
	PrefNone Pref = 0
)

type handle struct {
	ctx      *glctx.Context
	tex      uint32
	released atomic.Bool
}

func (h *handle) release() {
	if h.released.Swap(true) {
		return
	}
	h.ctx.Release(func(f glh.Funcs) {
		f.DeleteTexture(h.tex)
	})
}

type Texture struct {
	h      *handle
	width  int32
	height int32
	format scene.Format
	spec   glformat.Spec
	levels int32
	flags  Pref
}

// New allocates immutable storage for the descriptor's full mip chain and
// uploads every level, level 0 first. Texture storage can not be resized
// later, an incompatible source needs a new Texture.
func New(ctx *glctx.Context, d *scene.TextureDescriptor, flags Pref) (*Texture, error) {
	if err := d.Validate(); err != nil {
		return nil, errors.Wrap(err, "construct texture")
	}
	if err := ctx.Check(); err != nil {
		return nil, err
	}
	spec, err := glformat.Translate(d.Format, ctx.Caps())
	if err != nil {
		return nil, err
	}
	if err := glformat.CheckChain(spec, d); err != nil {
		return nil, errors.Wrap(err, "construct texture")
	}
	f := ctx.GL()
	tex := f.GenTexture()
	f.BindTexture(gl.TEXTURE_2D, tex)
	f.TexStorage2D(gl.TEXTURE_2D, int32(len(d.Levels)), spec.Internal, d.Width, d.Height)
	if err := glh.CheckAlloc(f); err != nil {
		f.DeleteTexture(tex)
		return nil, errors.Wrapf(err, "construct %dx%d %v texture", d.Width, d.Height, d.Format)
	}
	t := &Texture{
		h:      &handle{ctx: ctx, tex: tex},
		width:  d.Width,
		height: d.Height,
		format: d.Format,
		spec:   spec,
		levels: int32(len(d.Levels)),
		flags:  flags,
	}
	t.upload(f, d)
	if err := glh.CheckAlloc(f); err != nil {
		f.DeleteTexture(tex)
		return nil, errors.Wrapf(err, "upload %dx%d %v texture", d.Width, d.Height, d.Format)
	}
	runtime.AddCleanup(t, (*handle).release, t.h)
	return t, nil
}

func (t *Texture) upload(f glh.Funcs, d *scene.TextureDescriptor) {
	for i, data := range d.Levels {
		lw, lh := glformat.LevelDims(t.width, t.height, int32(i))
		if t.spec.Compressed {
			f.CompressedTexSubImage2D(gl.TEXTURE_2D, int32(i), 0, 0, lw, lh, t.spec.Internal, data)
		} else {
			f.TexSubImage2D(gl.TEXTURE_2D, int32(i), 0, 0, lw, lh, t.spec.External, t.spec.Type, data)
		}
	}
}

func (t *Texture) check() error {
	if t.h.released.Load() {
		return glh.ErrUseAfterRelease
	}
	return t.h.ctx.Check()
}

// Update re-uploads the mip chain into the existing storage. The descriptor
// must match the original format, size and level count exactly.
func (t *Texture) Update(d *scene.TextureDescriptor) error {
	if err := t.check(); err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return errors.Wrap(err, "update texture")
	}
	if d.Format != t.format || d.Width != t.width || d.Height != t.height ||
		int32(len(d.Levels)) != t.levels {
		return errors.Wrapf(ErrIncompatibleUpdate,
			"%dx%d %v with %d levels into %dx%d %v with %d levels",
			d.Width, d.Height, d.Format, len(d.Levels),
			t.width, t.height, t.format, t.levels)
	}
	if err := glformat.CheckChain(t.spec, d); err != nil {
		return errors.Wrap(err, "update texture")
	}
	f := t.h.ctx.GL()
	f.BindTexture(gl.TEXTURE_2D, t.h.tex)
	t.upload(f, d)
	if err := glh.CheckAlloc(f); err != nil {
		return errors.Wrap(err, "update texture")
	}
	return nil
}

// Bind activates the texture on the given texture unit.
func (t *Texture) Bind(unit uint32) error {
	if err := t.check(); err != nil {
		return err
	}
	f := t.h.ctx.GL()
	f.ActiveTexture(gl.TEXTURE0 + unit)
	f.BindTexture(gl.TEXTURE_2D, t.h.tex)
	return nil
}

// SetFilter applies filter and anisotropy parameters according to the
// texture's preferences.
func (t *Texture) SetFilter(mag, min, anisotropy float32) error {
	if err := t.check(); err != nil {
		return err
	}
	f := t.h.ctx.GL()
	f.BindTexture(gl.TEXTURE_2D, t.h.tex)
	switch {
	case t.Flags(PrefNearest):
		f.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		f.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	case t.Flags(PrefLinear):
		f.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		f.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	case t.Flags(PrefMipMap):
		f.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, mag)
		f.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, min)
		f.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MAX_ANISOTROPY, anisotropy)
	default:
		f.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, mag)
		f.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, mag)
	}
	return nil
}

// Release frees the driver texture. Idempotent, never fails, and safe from
// the collector's cleanup path.
func (t *Texture) Release() {
	t.h.release()
}

func (t *Texture) Live() bool {
	return !t.h.released.Load()
}

func (t *Texture) Flags(f Pref) bool {
	return t.flags&f != 0
}

func (t *Texture) Width() int32 { return t.width }

func (t *Texture) Height() int32 { return t.height }

func (t *Texture) Levels() int32 { return t.levels }

func (t *Texture) Format() scene.Format { return t.format }

// Texels is the approximate driver-side footprint in texels, a mip chain
// adds a third.
func (t *Texture) Texels() int {
	texels := int(t.width) * int(t.height)
	if t.levels > 1 {
		texels += texels / 3
	}
	return texels
}
