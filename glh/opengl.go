// SPDX-License-Identifier: GPL-2.0-or-later

package glh

import (
	"github.com/go-gl/gl/v4.6-core/gl"
)

type openGL struct{}

// OpenGL returns the go-gl backed implementation of Funcs. gl.Init must have
// run on the context thread first, see window.SetMode.
func OpenGL() Funcs {
	return openGL{}
}

func (openGL) GenBuffer() uint32 {
	var b uint32
	gl.GenBuffers(1, &b)
	return b
}

func (openGL) BindBuffer(target uint32, buf uint32) {
	gl.BindBuffer(target, buf)
}

func (openGL) BufferData(target uint32, data []byte, usage uint32) {
	gl.BufferData(target, len(data), gl.Ptr(data), usage)
}

func (openGL) BufferSubData(target uint32, offset int, data []byte) {
	gl.BufferSubData(target, offset, len(data), gl.Ptr(data))
}

func (openGL) DeleteBuffer(buf uint32) {
	gl.DeleteBuffers(1, &buf)
}

func (openGL) GenTexture() uint32 {
	var t uint32
	gl.GenTextures(1, &t)
	return t
}

func (openGL) ActiveTexture(unit uint32) {
	gl.ActiveTexture(unit)
}

func (openGL) BindTexture(target uint32, tex uint32) {
	gl.BindTexture(target, tex)
}

func (openGL) TexStorage2D(target uint32, levels int32, internal uint32, w, h int32) {
	gl.TexStorage2D(target, levels, internal, w, h)
}

func (openGL) TexSubImage2D(target uint32, level, x, y, w, h int32, format, typ uint32, data []byte) {
	gl.TexSubImage2D(target, level, x, y, w, h, format, typ, gl.Ptr(data))
}

func (openGL) CompressedTexSubImage2D(target uint32, level, x, y, w, h int32, format uint32, data []byte) {
	gl.CompressedTexSubImage2D(target, level, x, y, w, h, format, int32(len(data)), gl.Ptr(data))
}

func (openGL) TexParameterf(target, pname uint32, v float32) {
	gl.TexParameterf(target, pname, v)
}

func (openGL) DeleteTexture(tex uint32) {
	gl.DeleteTextures(1, &tex)
}

func (openGL) GetError() uint32 {
	return gl.GetError()
}

func (openGL) GetInteger(pname uint32) int32 {
	var v int32
	gl.GetIntegerv(pname, &v)
	return v
}

func (openGL) GetFloat(pname uint32) float32 {
	var v float32
	gl.GetFloatv(pname, &v)
	return v
}

func (openGL) Extensions() []string {
	n := int32(0)
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	exts := make([]string, 0, n)
	for i := int32(0); i < n; i++ {
		e := gl.GetStringi(gl.EXTENSIONS, uint32(i))
		exts = append(exts, gl.GoStr(e))
	}
	return exts
}
