package model

// BitmapFormat is the encoding of a rasterized region.
type BitmapFormat string

const (
	BitmapJPEG BitmapFormat = "jpeg"
	BitmapPNG  BitmapFormat = "png"
)

// Bitmap is an encoded raster image with its pixel dimensions.
type Bitmap struct {
	Data   []byte
	Width  int
	Height int
	Format BitmapFormat
}

// PageSlice is one output page: the full-width image is drawn shifted up
// by OffsetY so this page shows the next window of it.
type PageSlice struct {
	Index   int
	OffsetY float64
}

// Document is a finished export.
type Document struct {
	Name        string
	ContentType string
	Bytes       []byte
}

const paginateEpsilon = 1e-6

// Paginate scales an image of imgW x imgH pixels to the page width and
// slices it vertically into page-height windows. The first page is always
// emitted; another follows while image height remains after the pages so far.
func Paginate(imgW, imgH int, pageW, pageH float64) (float64, []PageSlice) {
	if imgW <= 0 || imgH <= 0 || pageW <= 0 || pageH <= 0 {
		return 0, nil
	}
	scaled := pageW * float64(imgH) / float64(imgW)

	pages := []PageSlice{{Index: 0, OffsetY: 0}}
	remaining := scaled - pageH
	for remaining > paginateEpsilon {
		idx := len(pages)
		pages = append(pages, PageSlice{Index: idx, OffsetY: float64(idx) * pageH})
		remaining -= pageH
	}
	return scaled, pages
}
