// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package server

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/image/draw"

	"github.com/gogpu/mpvtex"
)

// frameCopier is implemented by sources that can copy their front buffer
// under their own lock. Fetch alone hands out a slice the render worker
// reuses two frames later.
type frameCopier interface {
	CopyFrame(dst []byte) (mpvtex.Frame, bool)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		http.Error(w, "bad texture id", http.StatusBadRequest)
		return
	}
	width := 0
	if v := r.URL.Query().Get("width"); v != "" {
		width, err = strconv.Atoi(v)
		if err != nil || width < 1 || width > s.cfg.MaxFrameWidth {
			http.Error(w, "bad width", http.StatusBadRequest)
			return
		}
	}

	src, ok := s.host.Source(id)
	if !ok {
		http.Error(w, "unknown texture", http.StatusNotFound)
		return
	}
	img, ok := snapshot(src)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if width > 0 && width != img.Rect.Dx() {
		img = scale(img, width)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		s.log.Error("server: encoding frame failed", "texture_id", id, "err", err)
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// snapshot copies the latest frame of src into a new image.
func snapshot(src mpvtex.FrameSource) (*image.RGBA, bool) {
	if c, ok := src.(frameCopier); ok {
		f, ok := c.CopyFrame(nil)
		if !ok {
			return nil, false
		}
		return frameImage(f), true
	}
	f, ok := src.Fetch()
	if !ok {
		return nil, false
	}
	f.Pixels = append([]byte(nil), f.Pixels...)
	return frameImage(f), true
}

func frameImage(f mpvtex.Frame) *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pixels,
		Stride: f.Stride(),
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// scale resizes img to width, keeping the aspect ratio.
func scale(img *image.RGBA, width int) *image.RGBA {
	b := img.Bounds()
	height := max(1, b.Dy()*width/b.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
