// SPDX-License-Identifier: GPL-2.0-or-later

// Package glhtest has a recording in-memory driver for tests.
package glhtest

import (
	"fmt"

	"github.com/go-gl/gl/v4.6-core/gl"
)

type Buffer struct {
	Data  []byte
	Usage uint32
}

type Texture struct {
	Width    int32
	Height   int32
	Levels   int32
	Internal uint32
	Data     map[int32][]byte
	Params   map[uint32]float32
}

// Driver implements glh.Funcs and keeps everything it was told. Calls is a
// readable trace of the driver calls in order, Errors is a fifo of error
// codes GetError will report.
type Driver struct {
	nextID   uint32
	Buffers  map[uint32]*Buffer
	Textures map[uint32]*Texture

	boundBuffer  map[uint32]uint32
	boundTexture uint32
	unit         uint32

	Gens    int
	Deletes int
	Calls   []string
	Errors  []uint32

	Exts     []string
	Integers map[uint32]int32
	Floats   map[uint32]float32
}

func New() *Driver {
	return &Driver{
		Buffers:     make(map[uint32]*Buffer),
		Textures:    make(map[uint32]*Texture),
		boundBuffer: make(map[uint32]uint32),
		unit:        gl.TEXTURE0,
		Integers:    make(map[uint32]int32),
		Floats:      make(map[uint32]float32),
	}
}

// Live returns the number of driver objects currently allocated.
func (d *Driver) Live() int {
	return len(d.Buffers) + len(d.Textures)
}

func (d *Driver) trace(format string, args ...interface{}) {
	d.Calls = append(d.Calls, fmt.Sprintf(format, args...))
}

// FailNext queues a driver error for the next GetError call.
func (d *Driver) FailNext(code uint32) {
	d.Errors = append(d.Errors, code)
}

func (d *Driver) GenBuffer() uint32 {
	d.nextID++
	d.Gens++
	d.Buffers[d.nextID] = &Buffer{}
	d.trace("GenBuffer() = %d", d.nextID)
	return d.nextID
}

func (d *Driver) BindBuffer(target uint32, buf uint32) {
	d.boundBuffer[target] = buf
	d.trace("BindBuffer(%#x, %d)", target, buf)
}

func (d *Driver) BufferData(target uint32, data []byte, usage uint32) {
	d.trace("BufferData(%#x, %d, %#x)", target, len(data), usage)
	b, ok := d.Buffers[d.boundBuffer[target]]
	if !ok {
		return
	}
	b.Data = append([]byte(nil), data...)
	b.Usage = usage
}

func (d *Driver) BufferSubData(target uint32, offset int, data []byte) {
	d.trace("BufferSubData(%#x, %d, %d)", target, offset, len(data))
	b, ok := d.Buffers[d.boundBuffer[target]]
	if !ok {
		return
	}
	copy(b.Data[offset:], data)
}

func (d *Driver) DeleteBuffer(buf uint32) {
	d.Deletes++
	delete(d.Buffers, buf)
	d.trace("DeleteBuffer(%d)", buf)
}

func (d *Driver) GenTexture() uint32 {
	d.nextID++
	d.Gens++
	d.Textures[d.nextID] = &Texture{
		Data:   make(map[int32][]byte),
		Params: make(map[uint32]float32),
	}
	d.trace("GenTexture() = %d", d.nextID)
	return d.nextID
}

func (d *Driver) ActiveTexture(unit uint32) {
	d.unit = unit
	d.trace("ActiveTexture(%#x)", unit)
}

func (d *Driver) BindTexture(target uint32, tex uint32) {
	d.boundTexture = tex
	d.trace("BindTexture(%#x, %d)", target, tex)
}

func (d *Driver) TexStorage2D(target uint32, levels int32, internal uint32, w, h int32) {
	d.trace("TexStorage2D(%d, %#x, %dx%d)", levels, internal, w, h)
	t, ok := d.Textures[d.boundTexture]
	if !ok {
		return
	}
	t.Width = w
	t.Height = h
	t.Levels = levels
	t.Internal = internal
}

func (d *Driver) TexSubImage2D(target uint32, level, x, y, w, h int32, format, typ uint32, data []byte) {
	d.trace("TexSubImage2D(%d, %dx%d, %d)", level, w, h, len(data))
	t, ok := d.Textures[d.boundTexture]
	if !ok {
		return
	}
	t.Data[level] = append([]byte(nil), data...)
}

func (d *Driver) CompressedTexSubImage2D(target uint32, level, x, y, w, h int32, format uint32, data []byte) {
	d.trace("CompressedTexSubImage2D(%d, %dx%d, %d)", level, w, h, len(data))
	t, ok := d.Textures[d.boundTexture]
	if !ok {
		return
	}
	t.Data[level] = append([]byte(nil), data...)
}

func (d *Driver) TexParameterf(target, pname uint32, v float32) {
	d.trace("TexParameterf(%#x, %v)", pname, v)
	if t, ok := d.Textures[d.boundTexture]; ok {
		t.Params[pname] = v
	}
}

func (d *Driver) DeleteTexture(tex uint32) {
	d.Deletes++
	delete(d.Textures, tex)
	d.trace("DeleteTexture(%d)", tex)
}

func (d *Driver) GetError() uint32 {
	if len(d.Errors) == 0 {
		return gl.NO_ERROR
	}
	e := d.Errors[0]
	d.Errors = d.Errors[1:]
	return e
}

func (d *Driver) GetInteger(pname uint32) int32 {
	return d.Integers[pname]
}

func (d *Driver) GetFloat(pname uint32) float32 {
	return d.Floats[pname]
}

func (d *Driver) Extensions() []string {
	return d.Exts
}
