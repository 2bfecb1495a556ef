package img

import (
	"encoding/gob"

	"github.com/davidhoof/visiontrain/stats"
)

func init() {
	gob.Register(&Data{})
}

// Image data set which implements the data.Data interface
type Data struct {
	Class  []string
	Dims   []int
	Label  []int32
	Mean   []float32
	StdDev []float32
	Images []*Image
}

// Create a new image set
func NewData(classes []string, labels []int32, images []*Image) *Data {
	src := images[0]
	dims := []int{src.Height, src.Width, src.Channels}
	return &Data{Class: classes, Dims: dims, Label: labels, Images: images}
}

// Len function returns number of images
func (d *Data) Len() int { return len(d.Label) }

// Classes returns the class names
func (d *Data) Classes() []string { return d.Class }

// Shape returns height, width, channels
func (d *Data) Shape() []int { return d.Dims }

// Labels returns the classification for every image
func (d *Data) Labels() []int32 { return d.Label }

// Input copies the raw pixel values for the given images into buf
func (d *Data) Input(index []int, buf []float32) {
	nfeat := d.nfeat()
	for i, ix := range index {
		copy(buf[i*nfeat:], d.Images[ix].Pix)
	}
}

// Slice returns images from start to end
func (d *Data) Slice(start, end int) *Data {
	data := *d
	data.Label = append([]int32{}, d.Label[start:end]...)
	data.Images = append([]*Image{}, d.Images[start:end]...)
	return &data
}

func (d *Data) nfeat() int {
	n := 1
	for _, dim := range d.Dims {
		n *= dim
	}
	return n
}

// Calculate per channel mean and stddev from sets of images
func GetStats(imgList ...[]*Image) (mean, std []float32) {
	channels := imgList[0][0].Channels
	stat := make([]*stats.Average, channels)
	for i := range stat {
		stat[i] = new(stats.Average)
	}
	for _, images := range imgList {
		for _, m := range images {
			for ch, s := range stat {
				for _, val := range m.Pixels(ch) {
					s.Add(float64(val))
				}
			}
		}
	}
	mean = make([]float32, channels)
	std = make([]float32, channels)
	for i, s := range stat {
		mean[i] = float32(s.Mean)
		std[i] = float32(s.StdDev)
	}
	return mean, std
}
