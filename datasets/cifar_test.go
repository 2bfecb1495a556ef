package datasets

import (
	"os"
	"path"
	"testing"
)

func writeCifarBatch(t *testing.T, file string, labels []byte, labelBytes int) {
	t.Helper()
	f, err := os.Create(file)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	for _, label := range labels {
		record := make([]byte, labelBytes+cifarSize*3)
		for i := 0; i < labelBytes; i++ {
			record[i] = label
		}
		record[labelBytes] = 255 // first red pixel
		if _, err = f.Write(record); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoadCIFAR10(t *testing.T) {
	root := t.TempDir()
	dir := path.Join(root, "cifar-10-batches-bin")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	meta := "airplane\nautomobile\nbird\ncat\ndeer\ndog\nfrog\nhorse\nship\ntruck\n"
	if err := os.WriteFile(path.Join(dir, "batches.meta.txt"), []byte(meta), 0644); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 5; i++ {
		writeCifarBatch(t, path.Join(dir, "data_batch_"+string(rune('0'+i))+".bin"), []byte{byte(i % 10)}, 1)
	}
	writeCifarBatch(t, path.Join(dir, "test_batch.bin"), []byte{7, 8}, 1)

	d, err := LoadCIFAR10(root, "train")
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 5 {
		t.Fatal("got", d.Len(), "train images")
	}
	if got := d.Shape(); got[0] != 32 || got[1] != 32 || got[2] != 3 {
		t.Error("got shape", got)
	}
	if len(d.Classes()) != 10 {
		t.Error("got", len(d.Classes()), "classes")
	}
	buf := make([]float32, 32*32*3)
	d.Input([]int{0}, buf)
	if buf[0] != 1 {
		t.Error("got red pixel", buf[0], "expect 1")
	}
	d, err = LoadCIFAR10(root, "test")
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 2 || d.Labels()[0] != 7 {
		t.Error("got", d.Len(), "test images, labels", d.Labels())
	}
}

func TestLoadCIFAR100(t *testing.T) {
	root := t.TempDir()
	dir := path.Join(root, "cifar-100-binary")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	names := ""
	for i := 0; i < 100; i++ {
		names += "class\n"
	}
	if err := os.WriteFile(path.Join(dir, "fine_label_names.txt"), []byte(names), 0644); err != nil {
		t.Fatal(err)
	}
	writeCifarBatch(t, path.Join(dir, "train.bin"), []byte{42}, 2)
	writeCifarBatch(t, path.Join(dir, "test.bin"), []byte{3}, 2)

	d, err := LoadCIFAR100(root, "train")
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 1 || d.Labels()[0] != 42 {
		t.Error("got", d.Len(), "images, labels", d.Labels())
	}
}
