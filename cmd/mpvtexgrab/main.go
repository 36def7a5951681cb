// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command mpvtexgrab renders a media file offscreen and saves one frame as
// a PNG image.
package main

import (
	"flag"
	"image"
	"image/png"
	"log"
	"os"
	"time"

	"github.com/gogpu/mpvtex"
	"github.com/gogpu/mpvtex/glctx"
)

// grabHost accepts a single texture and signals every published frame.
type grabHost struct {
	src    mpvtex.FrameSource
	frames chan struct{}
}

func (h *grabHost) RegisterTexture(src mpvtex.FrameSource) (int64, error) {
	h.src = src
	return 1, nil
}

func (h *grabHost) UnregisterTexture(int64) {}

func (h *grabHost) MarkTextureFrameAvailable(int64) {
	select {
	case h.frames <- struct{}{}:
	default:
	}
}

func main() {
	var (
		width   = flag.Int("width", 1280, "frame width")
		height  = flag.Int("height", 720, "frame height")
		output  = flag.String("output", "frame.png", "output file")
		seek    = flag.Float64("seek", 0, "position in seconds")
		skip    = flag.Int("skip", 3, "frames to discard before saving")
		timeout = flag.Duration("timeout", 10*time.Second, "give up after this long")
		libmpv  = flag.String("libmpv", "", "libmpv path")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("usage: mpvtexgrab [flags] <media>")
	}
	glctx.Main(func() {
		grab(flag.Arg(0), *width, *height, *output, *seek, *skip, *timeout, *libmpv)
	})
}

func grab(media string, width, height int, output string, seek float64, skip int, timeout time.Duration, libmpv string) {
	host := &grabHost{frames: make(chan struct{}, 1)}
	var opts []mpvtex.PlayerOption
	if libmpv != "" {
		opts = append(opts, mpvtex.WithLibraryPath(libmpv))
	}
	p, err := mpvtex.NewPlayer(host, width, height, opts...)
	if err != nil {
		log.Fatalf("Failed to create player: %v", err)
	}
	defer p.Close()

	if err := p.Open(media); err != nil {
		log.Fatalf("Failed to open: %v", err)
	}
	if seek > 0 {
		if err := p.SeekAbsolute(seek); err != nil {
			log.Printf("Seek failed: %v", err)
		}
	}
	if err := p.SetVolume(0); err != nil {
		log.Printf("Mute failed: %v", err)
	}

	deadline := time.After(timeout)
	for n := 0; n <= skip; n++ {
		select {
		case <-host.frames:
		case <-deadline:
			log.Fatalf("No frame after %v (%d received)", timeout, n)
		}
	}
	_ = p.Pause()

	f, ok := p.CopyFrame(nil)
	if !ok {
		log.Fatal("No frame published")
	}
	img := &image.RGBA{Pix: f.Pixels, Stride: f.Stride(), Rect: image.Rect(0, 0, f.Width, f.Height)}
	if err := savePNG(output, img); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Frame saved to %s (%dx%d)\n", output, f.Width, f.Height)
}

func savePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
