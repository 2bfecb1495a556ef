package datasets

import (
	"encoding/binary"
	"os"
	"path"
	"testing"
)

// write a 4 image idx pair with 2x2 images and labels 0..3
func writeIDX(t *testing.T, dir, prefix string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path.Join(dir, prefix+"-images-idx3-ubyte"))
	if err != nil {
		t.Fatal(err)
	}
	binary.Write(f, binary.BigEndian, imageHeader{Magic: imageMagic, Num: 4, Rows: 2, Cols: 2})
	for i := 0; i < 4; i++ {
		f.Write([]byte{byte(i * 10), 0, 255, byte(i)})
	}
	f.Close()
	f, err = os.Create(path.Join(dir, prefix+"-labels-idx1-ubyte"))
	if err != nil {
		t.Fatal(err)
	}
	binary.Write(f, binary.BigEndian, labelHeader{Magic: labelMagic, Num: 4})
	f.Write([]byte{0, 1, 2, 3})
	f.Close()
}

func TestLoadIDX(t *testing.T) {
	root := t.TempDir()
	writeIDX(t, path.Join(root, "mnist"), "train")
	writeIDX(t, path.Join(root, "mnist"), "t10k")

	load := LoadIDX("mnist", []string{"0", "1", "2", "3"})
	d, err := load(root, "train")
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 4 {
		t.Fatal("got", d.Len(), "images")
	}
	if got := d.Shape(); got[0] != 2 || got[1] != 2 || got[2] != 1 {
		t.Error("got shape", got)
	}
	labels := d.Labels()
	for i, label := range labels {
		if label != int32(i) {
			t.Error("label", i, "is", label)
		}
	}
	// third pixel of every image is 255 -> 1.0
	buf := make([]float32, 4)
	d.Input([]int{1}, buf)
	if buf[2] != 1 {
		t.Error("got pixel", buf[2], "expect 1")
	}
	if _, err = load(root, "test"); err != nil {
		t.Error("test split:", err)
	}
}

func TestLoadIDXBadMagic(t *testing.T) {
	root := t.TempDir()
	dir := path.Join(root, "mnist")
	writeIDX(t, dir, "train")
	f, err := os.OpenFile(path.Join(dir, "train-images-idx3-ubyte"), os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	binary.Write(f, binary.BigEndian, imageHeader{Magic: 1234, Num: 4, Rows: 2, Cols: 2})
	f.Close()
	if _, err = LoadIDX("mnist", []string{"0"})(root, "train"); err == nil {
		t.Error("expect error for bad magic number")
	}
}
