package source

import (
	"image"

	"github.com/gen2brain/go-fitz"
	"github.com/pkg/errors"
)

// pdfDPI is the rendering resolution for PDF input. 300 DPI keeps enough
// detail for the zoom rescale without ballooning memory.
const pdfDPI = 300

// PDFSource renders the first page of a PDF as the input still.
type PDFSource struct {
	doc *fitz.Document
}

func NewPDFSource(path string) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening PDF")
	}
	if doc.NumPage() == 0 {
		doc.Close()
		return nil, errors.New("PDF has no pages")
	}
	return &PDFSource{doc: doc}, nil
}

func (s *PDFSource) Decode() (image.Image, error) {
	img, err := s.doc.ImageDPI(0, pdfDPI)
	if err != nil {
		return nil, errors.Wrap(err, "rendering PDF page")
	}
	return img, nil
}

func (s *PDFSource) Close() error {
	return s.doc.Close()
}
