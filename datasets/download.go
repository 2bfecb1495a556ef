// Package datasets provides loaders for the supported public image
// classification datasets and registers them with the data registry.
package datasets

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"crypto/md5"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Archive describes one downloadable file making up a dataset.
type Archive struct {
	URL string
	MD5 string
}

var archives = map[string][]Archive{
	"mnist": {
		{URL: "https://ossci-datasets.s3.amazonaws.com/mnist/train-images-idx3-ubyte.gz", MD5: "f68b3c2dcbeaaa9fbdd348bbdeb94873"},
		{URL: "https://ossci-datasets.s3.amazonaws.com/mnist/train-labels-idx1-ubyte.gz", MD5: "d53e105ee54ea40749a09fcbcd1e9432"},
		{URL: "https://ossci-datasets.s3.amazonaws.com/mnist/t10k-images-idx3-ubyte.gz", MD5: "9fb629c4189551a2d022fa330f9573f3"},
		{URL: "https://ossci-datasets.s3.amazonaws.com/mnist/t10k-labels-idx1-ubyte.gz", MD5: "ec29112dd5afa0611ce80d1b7f02629c"},
	},
	"kmnist": {
		{URL: "http://codh.rois.ac.jp/kmnist/dataset/kmnist/train-images-idx3-ubyte.gz", MD5: "bdb82020997e1d708af4cf47b453dcf7"},
		{URL: "http://codh.rois.ac.jp/kmnist/dataset/kmnist/train-labels-idx1-ubyte.gz", MD5: "e144d726b3acfaa3e44228e80efcd344"},
		{URL: "http://codh.rois.ac.jp/kmnist/dataset/kmnist/t10k-images-idx3-ubyte.gz", MD5: "5c965bf0a639b31b8f53240b1b52f4d7"},
		{URL: "http://codh.rois.ac.jp/kmnist/dataset/kmnist/t10k-labels-idx1-ubyte.gz", MD5: "7320c461ea6c1c855c0b718fb2a4b134"},
	},
	"fashionmnist": {
		{URL: "http://fashion-mnist.s3-website.eu-central-1.amazonaws.com/train-images-idx3-ubyte.gz", MD5: "8d4fb7e6c68d591d4c3dfef9ec88bf0d"},
		{URL: "http://fashion-mnist.s3-website.eu-central-1.amazonaws.com/train-labels-idx1-ubyte.gz", MD5: "25c81989df183df01b3e8a0aad5dffbe"},
		{URL: "http://fashion-mnist.s3-website.eu-central-1.amazonaws.com/t10k-images-idx3-ubyte.gz", MD5: "bef4ecab320f06d8554ea6380940ec79"},
		{URL: "http://fashion-mnist.s3-website.eu-central-1.amazonaws.com/t10k-labels-idx1-ubyte.gz", MD5: "bb300cfdad3c16e7a12a480ee83cd310"},
	},
	"cifar10": {
		{URL: "https://www.cs.toronto.edu/~kriz/cifar-10-binary.tar.gz", MD5: "c32a1d4ab5d03f1284b67883e8d87530"},
	},
	"cifar100": {
		{URL: "https://www.cs.toronto.edu/~kriz/cifar-100-binary.tar.gz", MD5: "03b5dce01913d631647c71ecec9e9cb8"},
	},
	"tinyimagenet": {
		{URL: "http://cs231n.stanford.edu/tiny-imagenet-200.zip", MD5: "90528d7ca1a48142e341f4ef8d21d0de"},
	},
	"histaerial": {
		{URL: "http://eidolon.univ-lyon2.fr/~remi1/HistAerialDataset/dataset/HistAerialDataset.zip", MD5: "cff202e58d8905cf108ae0cc9cee9feb"},
	},
	"fractaldb60": {
		{URL: "https://onedrive.live.com/download?cid=A5E3C415BF70F5D8&resid=A5E3C415BF70F5D8%217797&authkey=AM3nK9dCz1LC2jk", MD5: "843ba9a92bdd9dbfa972ad363f8ea8b6"},
	},
}

// Download fetches and unpacks the archives for the named dataset under
// root. Files which already exist are kept. Datasets without registered
// archives (grocerystore is a git clone, imagenet1k needs a licence) must be
// placed under root by hand.
func Download(name, root string) error {
	list, ok := archives[name]
	if !ok {
		log.WithField("dataset", name).Warn("no download source, expecting files under root")
		return nil
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return err
	}
	for _, a := range list {
		file := path.Join(root, path.Base(strings.Split(a.URL, "?")[0]))
		if err := fetch(a.URL, file, a.MD5); err != nil {
			return err
		}
		if err := extract(file, root); err != nil {
			return err
		}
	}
	return nil
}

func fetch(url, file, sum string) error {
	if _, err := os.Stat(file); err == nil {
		ok, err := checksum(file, sum)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	log.WithFields(log.Fields{"url": url, "file": file}).Info("downloading")
	resp, err := http.Get(url)
	if err != nil {
		return errors.Wrapf(err, "fetching %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("fetching %s: %s", url, resp.Status)
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if _, err = io.Copy(f, resp.Body); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", file)
	}
	if err = f.Close(); err != nil {
		return err
	}
	ok, err := checksum(file, sum)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("md5 mismatch for %s", file)
	}
	return nil
}

func checksum(file, sum string) (bool, error) {
	if sum == "" {
		return true, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return false, err
	}
	defer f.Close()
	h := md5.New()
	if _, err = io.Copy(h, f); err != nil {
		return false, err
	}
	return hex.EncodeToString(h.Sum(nil)) == sum, nil
}

// extract unpacks .tar.gz, .zip or single .gz files next to the archive.
func extract(file, dir string) error {
	switch {
	case strings.HasSuffix(file, ".tar.gz") || strings.HasSuffix(file, ".tgz"):
		return untar(file, dir)
	case strings.HasSuffix(file, ".zip"):
		return unzip(file, dir)
	case strings.HasSuffix(file, ".gz"):
		return gunzip(file, strings.TrimSuffix(file, ".gz"))
	}
	return nil
}

func untar(file, dir string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "reading %s", file)
	}
	defer gz.Close()
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "reading %s", file)
		}
		target, err := safePath(dir, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err = os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err = writeFile(target, tr); err != nil {
				return err
			}
		}
	}
}

func unzip(file, dir string) error {
	r, err := zip.OpenReader(file)
	if err != nil {
		return errors.Wrapf(err, "reading %s", file)
	}
	defer r.Close()
	for _, zf := range r.File {
		target, err := safePath(dir, zf.Name)
		if err != nil {
			return err
		}
		if zf.FileInfo().IsDir() {
			if err = os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		src, err := zf.Open()
		if err != nil {
			return err
		}
		err = writeFile(target, src)
		src.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func gunzip(file, target string) error {
	if _, err := os.Stat(target); err == nil {
		return nil
	}
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "reading %s", file)
	}
	defer gz.Close()
	return writeFile(target, gz)
}

func writeFile(target string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	f, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err = io.Copy(f, src); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", target)
	}
	return f.Close()
}

func safePath(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", errors.Errorf("archive entry %q escapes %s", name, dir)
	}
	return target, nil
}
