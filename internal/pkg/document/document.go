package document

import (
	"errors"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

const (
	// margin is the page margin in millimetres
	margin = 10.0
	// footerHeight is the band above the bottom margin kept for the page number
	footerHeight = 5.0
)

var ErrEmptyImage = errors.New("empty section image")

// Document is an A4 landscape PDF holding one section image per page.
// The first page exists from construction so the first section lands on it.
type Document struct {
	pdf      *gofpdf.Fpdf
	sections int
}

func New(title string) *Document {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("attendance-dashboard", true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-(margin + footerHeight))
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, footerHeight, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	return &Document{pdf: pdf}
}

// AddSection places a PNG on the current page if it is the first section,
// otherwise on a new page. The image spans the page width inside the
// margins and shrinks further when it would overflow the page height.
func (d *Document) AddSection(img io.Reader) error {
	if img == nil {
		return ErrEmptyImage
	}

	name := fmt.Sprintf("section-%d", d.sections)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	info := d.pdf.RegisterImageOptionsReader(name, opts, img)
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("failed to register section image: %w", err)
	}
	if info == nil || info.Width() <= 0 || info.Height() <= 0 {
		return ErrEmptyImage
	}

	if d.sections > 0 {
		d.pdf.AddPage()
	}

	pageW, pageH := d.pdf.GetPageSize()
	x, y, w, h := Fit(info.Width(), info.Height(), pageW, pageH)
	d.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("failed to place section image: %w", err)
	}

	d.sections++
	return nil
}

// Fit scales an image of imgW x imgH into a page, returning its position
// and size. Width fills the page inside the margins; if the height then
// overflows, both sides shrink to fit the height and the image is centered.
// The footer band is never covered.
func Fit(imgW, imgH, pageW, pageH float64) (x, y, w, h float64) {
	availW, availH := pageW-2*margin, pageH-2*margin-footerHeight

	w = availW
	h = imgH * availW / imgW
	if h > availH {
		h = availH
		w = imgW * availH / imgH
	}
	return margin + (availW-w)/2, margin, w, h
}

func (d *Document) Sections() int {
	return d.sections
}

func (d *Document) Pages() int {
	return d.pdf.PageNo()
}

// Output writes the finished PDF and closes the document
func (d *Document) Output(w io.Writer) error {
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
