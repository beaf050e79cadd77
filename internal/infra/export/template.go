// Package export turns a batch of generated questions into a paginated PDF:
// a printable HTML view, a headless Chromium rasterizer and an A4 writer.
package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/adapter"
)

// PrintableAreaID is the element the rasterizer captures.
const PrintableAreaID = "printable-area"

const documentTitle = "Scenario-Based Questions"

//go:embed templates/printable.html
var templateFS embed.FS

var _ adapter.PrintableRenderer = (*PrintableView)(nil)

type PrintableView struct {
	tmpl *template.Template
}

func NewPrintableView() (*PrintableView, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/printable.html")
	if err != nil {
		return nil, fmt.Errorf("parse printable template: %w", err)
	}
	return &PrintableView{tmpl: tmpl}, nil
}

type printableItem struct {
	Number   int
	Image    template.URL
	Scenario string
	Tasks    []model.Task
	Answers  []model.Answer
}

// RenderPrintable renders the batch into a standalone HTML document.
func (v *PrintableView) RenderPrintable(batch *model.Batch) ([]byte, error) {
	if batch == nil || len(batch.Questions) == 0 {
		return nil, fmt.Errorf("%w: nothing to export", domain.ErrExportFailure)
	}
	items := make([]printableItem, 0, len(batch.Questions))
	for i, q := range batch.Questions {
		items = append(items, printableItem{
			Number:   i + 1,
			Image:    safeImageURL(q.ImageURL),
			Scenario: q.Scenario,
			Tasks:    q.Tasks,
			Answers:  q.Answers,
		})
	}

	var buf bytes.Buffer
	err := v.tmpl.Execute(&buf, struct {
		Title string
		Items []printableItem
	}{Title: documentTitle, Items: items})
	if err != nil {
		return nil, fmt.Errorf("%w: render printable view: %w", domain.ErrExportFailure, err)
	}
	return buf.Bytes(), nil
}

// safeImageURL admits image data URLs and http(s) links. Anything else is
// dropped so it cannot reach the src attribute.
func safeImageURL(u string) template.URL {
	switch {
	case strings.HasPrefix(u, "data:image/"),
		strings.HasPrefix(u, "https://"),
		strings.HasPrefix(u, "http://"):
		return template.URL(u)
	default:
		return ""
	}
}
