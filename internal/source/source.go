// Package source decodes the input still. A photograph is the normal
// case; the first page of a PDF can stand in for one.
package source

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Source yields the single still image the pipeline animates.
type Source interface {
	Decode() (image.Image, error)
	Close() error
}

// Open picks a source implementation from the file extension.
func Open(path string) (Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(err, "input not readable")
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return NewPDFSource(path)
	}
	return &ImageSource{path: path}, nil
}

// ImageSource decodes a png or jpeg file.
type ImageSource struct {
	path string
}

func (s *ImageSource) Decode() (image.Image, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Wrap(err, "opening input image")
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, "decoding input image")
	}
	return img, nil
}

func (s *ImageSource) Close() error { return nil }

// EvenDimensions rounds both dimensions down to even values. H.264 in
// yuv420p needs even frame dimensions; a one-pixel trim is invisible.
func EvenDimensions(w, h int) (int, int) {
	return w - w%2, h - h%2
}
