// SPDX-License-Identifier: GPL-2.0-or-later

// Package glh carries the driver entry points the resource layer uses.
package glh

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.6-core/gl"
)

const (
	ArrayBuffer        = gl.ARRAY_BUFFER
	ElementArrayBuffer = gl.ELEMENT_ARRAY_BUFFER
)

var (
	ErrAllocation      = errors.New("driver refused resource allocation")
	ErrUseAfterRelease = errors.New("operation on released resource")
)

// Funcs is the slice of the driver every buffer and texture operation goes
// through. The real implementation forwards to OpenGL, tests substitute a
// recording fake.
type Funcs interface {
	GenBuffer() uint32
	BindBuffer(target uint32, buf uint32)
	BufferData(target uint32, data []byte, usage uint32)
	BufferSubData(target uint32, offset int, data []byte)
	DeleteBuffer(buf uint32)

	GenTexture() uint32
	ActiveTexture(unit uint32)
	BindTexture(target uint32, tex uint32)
	TexStorage2D(target uint32, levels int32, internal uint32, w, h int32)
	TexSubImage2D(target uint32, level, x, y, w, h int32, format, typ uint32, data []byte)
	CompressedTexSubImage2D(target uint32, level, x, y, w, h int32, format uint32, data []byte)
	TexParameterf(target, pname uint32, v float32)
	DeleteTexture(tex uint32)

	GetError() uint32
	GetInteger(pname uint32) int32
	GetFloat(pname uint32) float32
	Extensions() []string
}

// CheckAlloc drains the driver error state after an allocating call.
func CheckAlloc(f Funcs) error {
	switch e := f.GetError(); e {
	case gl.NO_ERROR:
		return nil
	case gl.OUT_OF_MEMORY:
		return ErrAllocation
	default:
		return fmt.Errorf("driver error %#x", e)
	}
}
