package adapter

import (
	"context"

	"scenario-quiz/internal/domain/model"
)

// Renderer loads an HTML document into an offscreen page.
// The returned release func closes the page and must always be called.
type Renderer interface {
	Open(ctx context.Context, html []byte) (Region, func(), error)
}

// Region is the printable element of an opened page.
type Region interface {
	// AwaitImages blocks until every image in the region has loaded or
	// failed. The first failure is an error naming the image source.
	AwaitImages(ctx context.Context) error
	Visibility(ctx context.Context) (string, error)
	SetVisibility(ctx context.Context, value string) error
	// Capture rasterizes the region at the given device scale factor.
	Capture(ctx context.Context, scale float64) (model.Bitmap, error)
}

// DocumentWriter assembles paginated slices of a bitmap into a document.
type DocumentWriter interface {
	// PageSize is the printable page size in the writer's unit.
	PageSize() (width, height float64)
	Write(bmp model.Bitmap, contentHeight float64, pages []model.PageSlice) ([]byte, error)
}

// PrintableRenderer produces the printable HTML document for a batch.
type PrintableRenderer interface {
	RenderPrintable(batch *model.Batch) ([]byte, error)
}
