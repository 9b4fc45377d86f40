// SPDX-License-Identifier: GPL-2.0-or-later

// Package scene is the boundary to the external scene library. Descriptors
// are read-only views into memory owned by that library. They are only valid
// for the duration of the call they are passed to; nothing in this module may
// retain Data or Levels slices past that call.
package scene

import "fmt"

type Format uint32

const (
	FormatUnknown Format = iota
	// block compressed, 4x4 blocks
	FormatDXT1
	FormatDXT3
	FormatDXT5
	// uncompressed; 32bit data from the scene library is BGRA ordered
	FormatBGRA8888
	FormatRGBA8888
	FormatRGB888
	FormatLuminance8
)

func (f Format) Compressed() bool {
	switch f {
	case FormatDXT1, FormatDXT3, FormatDXT5:
		return true
	}
	return false
}

func (f Format) String() string {
	switch f {
	case FormatDXT1:
		return "DXT1"
	case FormatDXT3:
		return "DXT3"
	case FormatDXT5:
		return "DXT5"
	case FormatBGRA8888:
		return "BGRA8888"
	case FormatRGBA8888:
		return "RGBA8888"
	case FormatRGB888:
		return "RGB888"
	case FormatLuminance8:
		return "Luminance8"
	}
	return fmt.Sprintf("Format(%d)", uint32(f))
}

// BufferDescriptor describes one geometry buffer. Data carries the bytes
// verbatim, there is no format translation for geometry.
type BufferDescriptor struct {
	Data   []byte
	Stride int32
	Index  bool // index data instead of vertex data
}

func (d *BufferDescriptor) Validate() error {
	if len(d.Data) == 0 {
		return fmt.Errorf("buffer descriptor has no data")
	}
	if d.Index {
		return nil
	}
	if d.Stride <= 0 {
		return fmt.Errorf("vertex descriptor stride %d", d.Stride)
	}
	if len(d.Data)%int(d.Stride) != 0 {
		return fmt.Errorf("%d data bytes do not divide into stride %d",
			len(d.Data), d.Stride)
	}
	return nil
}

// TextureDescriptor describes one texture with its full mip chain. Levels is
// ordered from level 0 (largest) down.
type TextureDescriptor struct {
	Width  int32
	Height int32
	Format Format
	Levels [][]byte
}

// Validate checks the structural parts of the descriptor. Byte lengths per
// level depend on the format mapping and are checked by the translator.
func (d *TextureDescriptor) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("texture descriptor size %dx%d", d.Width, d.Height)
	}
	if len(d.Levels) == 0 {
		return fmt.Errorf("texture descriptor has no mip levels")
	}
	for i, l := range d.Levels {
		if len(l) == 0 {
			return fmt.Errorf("mip level %d has no data", i)
		}
	}
	return nil
}
