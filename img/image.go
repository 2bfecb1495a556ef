// Package img contains routines for manipulating sets of labelled images.
package img

import (
	"image"
)

// Image stores pixel data as float32 values in range 0-1 with one plane per
// channel, each plane in row major order.
type Image struct {
	Pix      []float32
	Height   int
	Width    int
	Channels int
}

func NewImage(width, height, channels int) *Image {
	return &Image{
		Pix:      make([]float32, width*height*channels),
		Height:   height,
		Width:    width,
		Channels: channels,
	}
}

func NewImageLike(src *Image) *Image {
	return NewImage(src.Width, src.Height, src.Channels)
}

// FromImage converts a decoded image into channels grayscale or RGB planes.
func FromImage(src image.Image, channels int) *Image {
	b := src.Bounds()
	m := NewImage(b.Dx(), b.Dy(), channels)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			r, g, b2, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if channels == 1 {
				m.Set(x, y, 0, 0.299*float32(r)/0xffff+0.587*float32(g)/0xffff+0.114*float32(b2)/0xffff)
			} else {
				m.Set(x, y, 0, float32(r)/0xffff)
				m.Set(x, y, 1, float32(g)/0xffff)
				m.Set(x, y, 2, float32(b2)/0xffff)
			}
		}
	}
	return m
}

// Pixels returns the plane for the given channel, or all planes if ch < 0.
func (m *Image) Pixels(ch int) []float32 {
	if ch >= 0 && ch < m.Channels {
		return m.Pix[ch*m.Width*m.Height : (ch+1)*m.Width*m.Height]
	}
	return m.Pix
}

// At returns the value at x, y in the given channel, 0 if out of bounds.
func (m *Image) At(x, y, ch int) float32 {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return 0
	}
	return m.Pix[ch*m.Width*m.Height+y*m.Width+x]
}

func (m *Image) Set(x, y, ch int, v float32) {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return
	}
	m.Pix[ch*m.Width*m.Height+y*m.Width+x] = v
}
