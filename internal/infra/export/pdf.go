package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/adapter"
)

var _ adapter.DocumentWriter = (*PDFWriter)(nil)

// A4 portrait in millimetres.
const (
	a4Width  = 210.0
	a4Height = 297.0
)

const contentImage = "content"

// PDFWriter places one full-width bitmap on every page, shifted up by the
// slice offset, with no margins.
type PDFWriter struct {
	title string
}

func NewPDFWriter() *PDFWriter {
	return &PDFWriter{title: documentTitle}
}

func (w *PDFWriter) PageSize() (float64, float64) {
	return a4Width, a4Height
}

func (w *PDFWriter) Write(bmp model.Bitmap, contentHeight float64, pages []model.PageSlice) ([]byte, error) {
	if len(pages) == 0 || len(bmp.Data) == 0 {
		return nil, fmt.Errorf("%w: no pages to write", domain.ErrExportFailure)
	}

	opt := fpdf.ImageOptions{ImageType: "JPG"}
	if bmp.Format == model.BitmapPNG {
		opt.ImageType = "PNG"
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(w.title, true)
	pdf.RegisterImageOptionsReader(contentImage, opt, bytes.NewReader(bmp.Data))
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: register image: %w", domain.ErrExportFailure, err)
	}

	for _, p := range pages {
		pdf.AddPage()
		pdf.ImageOptions(contentImage, 0, -p.OffsetY, a4Width, contentHeight, false, opt, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: write pdf: %w", domain.ErrExportFailure, err)
	}
	return buf.Bytes(), nil
}
