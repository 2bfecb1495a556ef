package img

import (
	"math/rand"
)

// Transform maps one image to another, drawing any randomness from rng.
type Transform func(src *Image, rng *rand.Rand) *Image

// Compose chains transforms left to right.
func Compose(ts ...Transform) Transform {
	return func(src *Image, rng *rand.Rand) *Image {
		for _, t := range ts {
			src = t(src, rng)
		}
		return src
	}
}

// Apply runs the transform over every image in the set and returns a new set.
func Apply(d *Data, t Transform, rng *rand.Rand) *Data {
	out := d.Slice(0, d.Len())
	for i, m := range out.Images {
		out.Images[i] = t(m, rng)
	}
	if len(out.Images) > 0 {
		first := out.Images[0]
		out.Dims = []int{first.Height, first.Width, first.Channels}
	}
	return out
}

// Resize scales the image so that the shorter side equals size.
func Resize(size int) Transform {
	return func(src *Image, rng *rand.Rand) *Image {
		w, h := src.Width, src.Height
		if w < h {
			h = h * size / w
			w = size
		} else {
			w = w * size / h
			h = size
		}
		return resize(src, w, h)
	}
}

// ResizeTo scales the image to exactly width x height.
func ResizeTo(width, height int) Transform {
	return func(src *Image, rng *rand.Rand) *Image {
		return resize(src, width, height)
	}
}

// CenterCrop cuts a size x size region from the middle of the image.
func CenterCrop(size int) Transform {
	return func(src *Image, rng *rand.Rand) *Image {
		return crop(src, (src.Width-size)/2, (src.Height-size)/2, size)
	}
}

// RandomCrop pads the image with zeros then cuts a random size x size region.
func RandomCrop(size, padding int) Transform {
	return func(src *Image, rng *rand.Rand) *Image {
		if padding > 0 {
			src = pad(src, padding)
		}
		x0, y0 := 0, 0
		if src.Width > size {
			x0 = rng.Intn(src.Width - size + 1)
		}
		if src.Height > size {
			y0 = rng.Intn(src.Height - size + 1)
		}
		return crop(src, x0, y0, size)
	}
}

// RandomHorizontalFlip mirrors the image left to right half of the time.
func RandomHorizontalFlip() Transform {
	return func(src *Image, rng *rand.Rand) *Image {
		if rng.Intn(2) == 0 {
			return src
		}
		dst := NewImageLike(src)
		for ch := 0; ch < src.Channels; ch++ {
			for y := 0; y < src.Height; y++ {
				for x := 0; x < src.Width; x++ {
					dst.Set(x, y, ch, src.At(src.Width-1-x, y, ch))
				}
			}
		}
		return dst
	}
}

// Normalize shifts and scales each channel by the given mean and stddev.
func Normalize(mean, std []float32) Transform {
	return func(src *Image, rng *rand.Rand) *Image {
		dst := NewImageLike(src)
		for ch := 0; ch < src.Channels; ch++ {
			in, out := src.Pixels(ch), dst.Pixels(ch)
			for i, v := range in {
				out[i] = (v - mean[ch]) / std[ch]
			}
		}
		return dst
	}
}

// bilinear interpolation
func resize(src *Image, width, height int) *Image {
	if width == src.Width && height == src.Height {
		return src
	}
	dst := NewImage(width, height, src.Channels)
	xScale := float32(src.Width) / float32(width)
	yScale := float32(src.Height) / float32(height)
	for ch := 0; ch < src.Channels; ch++ {
		for y := 0; y < height; y++ {
			sy := (float32(y)+0.5)*yScale - 0.5
			y0 := int(sy)
			fy := sy - float32(y0)
			if y0 < 0 {
				y0, fy = 0, 0
			}
			for x := 0; x < width; x++ {
				sx := (float32(x)+0.5)*xScale - 0.5
				x0 := int(sx)
				fx := sx - float32(x0)
				if x0 < 0 {
					x0, fx = 0, 0
				}
				v00 := src.At(x0, y0, ch)
				v10 := src.At(min(x0+1, src.Width-1), y0, ch)
				v01 := src.At(x0, min(y0+1, src.Height-1), ch)
				v11 := src.At(min(x0+1, src.Width-1), min(y0+1, src.Height-1), ch)
				top := v00 + (v10-v00)*fx
				bot := v01 + (v11-v01)*fx
				dst.Set(x, y, ch, top+(bot-top)*fy)
			}
		}
	}
	return dst
}

func crop(src *Image, x0, y0, size int) *Image {
	dst := NewImage(size, size, src.Channels)
	for ch := 0; ch < src.Channels; ch++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				dst.Set(x, y, ch, src.At(x0+x, y0+y, ch))
			}
		}
	}
	return dst
}

func pad(src *Image, n int) *Image {
	dst := NewImage(src.Width+2*n, src.Height+2*n, src.Channels)
	for ch := 0; ch < src.Channels; ch++ {
		for y := 0; y < src.Height; y++ {
			for x := 0; x < src.Width; x++ {
				dst.Set(x+n, y+n, ch, src.At(x, y, ch))
			}
		}
	}
	return dst
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
