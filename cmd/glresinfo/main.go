// SPDX-License-Identifier: GPL-2.0-or-later

// glresinfo opens a hidden driver context and reports what the resource
// layer can do on it: capabilities, the format translation table and a
// construct/update/release round trip of one buffer and one texture.
package main

import (
	"flag"
	"fmt"
	"log"

	"glres/binding"
	"glres/buffer"
	"glres/glformat"
	"glres/scene"
	"glres/texture"
	"glres/window"

	"github.com/gopxl/mainthread/v2"
)

var (
	width  = flag.Int("width", 640, "window width")
	height = flag.Int("height", 480, "window height")
)

func main() {
	flag.Parse()
	mainthread.Run(run)
}

func run() {
	ctx, err := window.SetMode(int32(*width), int32(*height))
	if err != nil {
		log.Fatalf("no driver context: %v", err)
	}
	defer window.Shutdown()

	caps := ctx.Caps()
	fmt.Printf("s3tc: %v\nbgra: %v\n", caps.S3TC, caps.BGRA)

	fmt.Println("format translation:")
	formats := []scene.Format{
		scene.FormatDXT1, scene.FormatDXT3, scene.FormatDXT5,
		scene.FormatBGRA8888, scene.FormatRGBA8888,
		scene.FormatRGB888, scene.FormatLuminance8,
	}
	for _, f := range formats {
		s, err := glformat.Translate(f, caps)
		if err != nil {
			fmt.Printf("  %-10v unsupported\n", f)
			continue
		}
		if s.Compressed {
			fmt.Printf("  %-10v internal %#x, %d bytes per block\n", f, s.Internal, s.BlockBytes)
		} else {
			fmt.Printf("  %-10v internal %#x, %d bytes per pixel\n", f, s.Internal, s.PixelBytes)
		}
	}
	fmt.Println("texture modes:")
	for _, m := range binding.FilterModes() {
		fmt.Printf("  %s\n", m)
	}

	reg, err := binding.New(ctx)
	if err != nil {
		log.Fatalf("registry: %v", err)
	}
	reg.HookCvars()

	// one triangle, three vertices of three floats
	geo := &scene.BufferDescriptor{Data: make([]byte, 36), Stride: 12}
	bid, err := reg.NewBuffer(geo, buffer.Static)
	if err != nil {
		log.Fatalf("buffer: %v", err)
	}
	if err := reg.BindBuffer(bid); err != nil {
		log.Fatalf("bind buffer: %v", err)
	}

	tex := checkerboard(64)
	tid, err := reg.NewTexture(tex, texture.PrefMipMap)
	if err != nil {
		log.Fatalf("texture: %v", err)
	}
	if err := reg.BindTextureUnit(tid, 0); err != nil {
		log.Fatalf("bind texture: %v", err)
	}
	for _, l := range tex.Levels {
		for i := range l {
			l[i] = ^l[i]
		}
	}
	if t, ok := reg.Texture(tid); ok {
		if err := t.Update(tex); err != nil {
			log.Fatalf("update texture: %v", err)
		}
	}

	reg.LogUsage()
	reg.ReleaseAll()
	reg.LogUsage()
}

// checkerboard builds a full BGRA mip chain of an n by n checker pattern.
func checkerboard(n int32) *scene.TextureDescriptor {
	d := &scene.TextureDescriptor{Width: n, Height: n, Format: scene.FormatBGRA8888}
	for level := int32(0); n>>uint(level) >= 1; level++ {
		s := n >> uint(level)
		if s < 1 {
			s = 1
		}
		pix := make([]byte, s*s*4)
		for y := int32(0); y < s; y++ {
			for x := int32(0); x < s; x++ {
				v := byte(0)
				if (x+y)%2 == 0 {
					v = 0xff
				}
				o := (y*s + x) * 4
				pix[o], pix[o+1], pix[o+2], pix[o+3] = v, v, v, 0xff
			}
		}
		d.Levels = append(d.Levels, pix)
	}
	return d
}
