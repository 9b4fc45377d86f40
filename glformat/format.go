// SPDX-License-Identifier: GPL-2.0-or-later

// Package glformat maps scene library pixel formats to OpenGL formats. It is
// pure; nothing in here touches the driver.
package glformat

import (
	"errors"
	"fmt"
	"strings"

	"glres/scene"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.6-core/gl"
)

var ErrTranslation = errors.New("no driver format for source format")

// Caps lists the driver abilities the translator depends on. Built from the
// extension string of the current context, or by hand in tests.
type Caps struct {
	S3TC bool
	BGRA bool
}

func CapsFromExtensions(exts []string) Caps {
	var c Caps
	// BGRA uploads are core since 1.2, the extension name is only reported
	// by some drivers.
	c.BGRA = true
	for _, e := range exts {
		switch strings.TrimSpace(e) {
		case "GL_EXT_texture_compression_s3tc":
			c.S3TC = true
		}
	}
	return c
}

// Spec is one entry of the format mapping table.
type Spec struct {
	Internal   uint32
	External   uint32 // 0 for compressed formats
	Type       uint32 // 0 for compressed formats
	Compressed bool
	BlockBytes int32 // bytes per 4x4 block, compressed only
	PixelBytes int32 // bytes per pixel, uncompressed only
}

// Translate returns the driver format for a scene format. The mapping is
// deterministic and total over the supported set. A source format the driver
// can not take as is fails, it is never decompressed or reordered here.
func Translate(f scene.Format, caps Caps) (Spec, error) {
	switch f {
	case scene.FormatDXT1:
		if !caps.S3TC {
			return Spec{}, fmt.Errorf("%w: %v needs s3tc", ErrTranslation, f)
		}
		return Spec{Internal: gl.COMPRESSED_RGBA_S3TC_DXT1_EXT, Compressed: true, BlockBytes: 8}, nil
	case scene.FormatDXT3:
		if !caps.S3TC {
			return Spec{}, fmt.Errorf("%w: %v needs s3tc", ErrTranslation, f)
		}
		return Spec{Internal: gl.COMPRESSED_RGBA_S3TC_DXT3_EXT, Compressed: true, BlockBytes: 16}, nil
	case scene.FormatDXT5:
		if !caps.S3TC {
			return Spec{}, fmt.Errorf("%w: %v needs s3tc", ErrTranslation, f)
		}
		return Spec{Internal: gl.COMPRESSED_RGBA_S3TC_DXT5_EXT, Compressed: true, BlockBytes: 16}, nil
	case scene.FormatBGRA8888:
		// the scene library stores 32bit color BGRA ordered, keep that
		// order and let the driver swizzle
		if !caps.BGRA {
			return Spec{}, fmt.Errorf("%w: %v needs bgra uploads", ErrTranslation, f)
		}
		return Spec{Internal: gl.RGBA8, External: gl.BGRA, Type: gl.UNSIGNED_BYTE, PixelBytes: 4}, nil
	case scene.FormatRGBA8888:
		return Spec{Internal: gl.RGBA8, External: gl.RGBA, Type: gl.UNSIGNED_BYTE, PixelBytes: 4}, nil
	case scene.FormatRGB888:
		return Spec{Internal: gl.RGB8, External: gl.RGB, Type: gl.UNSIGNED_BYTE, PixelBytes: 3}, nil
	case scene.FormatLuminance8:
		return Spec{Internal: gl.R8, External: gl.RED, Type: gl.UNSIGNED_BYTE, PixelBytes: 1}, nil
	}
	return Spec{}, fmt.Errorf("%w: %v", ErrTranslation, f)
}

// LevelDims returns the size of one mip level.
func LevelDims(w, h, level int32) (int32, int32) {
	w >>= uint(level)
	h >>= uint(level)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// LevelSize returns the byte length of one mip level. Compressed levels are
// rounded up to whole 4x4 blocks, a 1x1 DXT5 level is still one 16 byte
// block.
func LevelSize(s Spec, w, h int32) int32 {
	if s.Compressed {
		return ((w + 3) / 4) * ((h + 3) / 4) * s.BlockBytes
	}
	return w * h * s.PixelBytes
}

// MaxLevels returns the length of a full mip chain down to 1x1.
func MaxLevels(w, h int32) int32 {
	m := w
	if h > m {
		m = h
	}
	if m < 1 {
		return 0
	}
	return int32(math32.Floor(math32.Log2(float32(m)))) + 1
}

// ChainBytes returns the byte length of the first levels entries of a mip
// chain.
func ChainBytes(s Spec, w, h, levels int32) int64 {
	var n int64
	for l := int32(0); l < levels; l++ {
		lw, lh := LevelDims(w, h, l)
		n += int64(LevelSize(s, lw, lh))
	}
	return n
}

// CheckChain verifies that the descriptor's levels carry exactly the bytes
// the driver will consume. A chain that is shorter or longer than the level
// count claims, or a level of the wrong length, is an error; nothing is
// truncated or padded.
func CheckChain(s Spec, d *scene.TextureDescriptor) error {
	max := MaxLevels(d.Width, d.Height)
	if int32(len(d.Levels)) > max {
		return fmt.Errorf("%d mip levels for %dx%d, chain ends at %d",
			len(d.Levels), d.Width, d.Height, max)
	}
	for i, l := range d.Levels {
		lw, lh := LevelDims(d.Width, d.Height, int32(i))
		want := LevelSize(s, lw, lh)
		if int32(len(l)) != want {
			return fmt.Errorf("mip level %d has %d bytes, %dx%d %v needs %d",
				i, len(l), lw, lh, d.Format, want)
		}
	}
	return nil
}
