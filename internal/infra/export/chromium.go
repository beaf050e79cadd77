package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"strconv"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"scenario-quiz/internal/config"
	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/adapter"
)

var (
	_ adapter.Renderer = (*ChromiumRenderer)(nil)
	_ adapter.Region   = (*chromiumRegion)(nil)
)

const (
	viewportWidth  = 1024
	viewportHeight = 768
	maxSrcInError  = 96
)

// ChromiumRenderer loads printable documents into tabs of one shared
// headless Chromium instance.
type ChromiumRenderer struct {
	BrowserPath string
	Timeout     time.Duration
	Quality     int

	log *zerolog.Logger

	initOnce      sync.Once
	initErr       error
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

func NewChromiumRenderer(cfg config.ExportConfig, logger *zerolog.Logger) *ChromiumRenderer {
	q := cfg.Quality
	if q <= 0 || q > 100 {
		q = 95
	}
	return &ChromiumRenderer{
		BrowserPath: cfg.ChromePath,
		Timeout:     cfg.Timeout,
		Quality:     q,
		log:         logger,
	}
}

// Open creates a tab, loads html and waits for the printable area. The
// returned release func closes the tab.
func (e *ChromiumRenderer) Open(ctx context.Context, html []byte) (adapter.Region, func(), error) {
	if err := e.ensureBrowser(); err != nil {
		return nil, nil, fmt.Errorf("%w: chromium init: %w", domain.ErrExportFailure, err)
	}

	tabCtx, cancelTab := chromedp.NewContext(e.browserCtx)
	// the first Run on a tab creates its target; it must not use a derived ctx
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		return nil, nil, fmt.Errorf("%w: open tab: %w", domain.ErrExportFailure, err)
	}

	r := &chromiumRegion{tab: tabCtx, quality: e.Quality, timeout: e.Timeout}
	err := r.run(ctx,
		chromedp.EmulateViewport(viewportWidth, viewportHeight),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitReady("#"+PrintableAreaID, chromedp.ByQuery),
	)
	if err != nil {
		cancelTab()
		return nil, nil, fmt.Errorf("%w: load printable view: %w", domain.ErrExportFailure, err)
	}
	return r, cancelTab, nil
}

// Close releases Chromium resources if they have been initialized.
func (e *ChromiumRenderer) Close() error {
	if e == nil {
		return nil
	}
	if e.browserCancel != nil {
		e.browserCancel()
	}
	if e.allocCancel != nil {
		e.allocCancel()
	}
	return nil
}

func (e *ChromiumRenderer) ensureBrowser() error {
	e.initOnce.Do(func() {
		options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		if e.BrowserPath != "" {
			options = append(options, chromedp.ExecPath(e.BrowserPath))
		}
		options = append(options, chromedp.Flag("hide-scrollbars", true))

		e.allocCtx, e.allocCancel = chromedp.NewExecAllocator(context.Background(), options...)
		e.browserCtx, e.browserCancel = chromedp.NewContext(e.allocCtx)
		if err := chromedp.Run(e.browserCtx); err != nil {
			e.initErr = err
			e.browserCancel()
			e.allocCancel()
			return
		}
		if e.log != nil {
			e.log.Info().Str("path", e.BrowserPath).Msg("chromium started")
		}
	})
	if e.initErr != nil {
		return e.initErr
	}
	if e.allocCtx == nil || e.browserCtx == nil {
		return errors.New("chromium allocator unavailable")
	}
	return nil
}

type chromiumRegion struct {
	tab     context.Context
	quality int
	timeout time.Duration
}

// run executes actions on the tab, aborting when ctx is done.
func (r *chromiumRegion) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(r.tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if r.timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, r.timeout)
		defer cancelTimeout()
	}
	return chromedp.Run(runCtx, actions...)
}

const awaitImagesJS = `(async () => {
  const root = document.getElementById('printable-area');
  if (!root) return 'printable area not found';
  const waits = Array.from(root.getElementsByTagName('img')).map(img => new Promise(resolve => {
    const src = img.getAttribute('src') || '(empty src)';
    if (img.complete) { resolve(img.naturalHeight > 0 ? null : src); return; }
    img.addEventListener('load', () => resolve(null), { once: true });
    img.addEventListener('error', () => resolve(src), { once: true });
  }));
  const failed = (await Promise.all(waits)).find(s => s !== null);
  return failed === undefined ? '' : failed;
})()`

func (r *chromiumRegion) AwaitImages(ctx context.Context) error {
	var failed string
	err := r.run(ctx, chromedp.Evaluate(awaitImagesJS, &failed, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
	if err != nil {
		return fmt.Errorf("%w: await images: %w", domain.ErrExportFailure, err)
	}
	if failed != "" {
		return fmt.Errorf("%w: failed to load image: %s", domain.ErrExportFailure, truncate(failed, maxSrcInError))
	}
	return nil
}

func (r *chromiumRegion) Visibility(ctx context.Context) (string, error) {
	var v string
	expr := `document.getElementById('printable-area').style.visibility`
	if err := r.run(ctx, chromedp.Evaluate(expr, &v)); err != nil {
		return "", fmt.Errorf("%w: read visibility: %w", domain.ErrExportFailure, err)
	}
	return v, nil
}

func (r *chromiumRegion) SetVisibility(ctx context.Context, value string) error {
	var ok bool
	expr := fmt.Sprintf(`(document.getElementById('printable-area').style.visibility = %s, true)`, strconv.Quote(value))
	if err := r.run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		return fmt.Errorf("%w: set visibility: %w", domain.ErrExportFailure, err)
	}
	return nil
}

type regionRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

const regionRectJS = `(() => {
  const r = document.getElementById('printable-area').getBoundingClientRect();
  return { x: r.left + window.scrollX, y: r.top + window.scrollY, width: r.width, height: r.height };
})()`

// Capture screenshots the region's full box, beyond the viewport if needed.
func (r *chromiumRegion) Capture(ctx context.Context, scale float64) (model.Bitmap, error) {
	var rect regionRect
	var buf []byte
	err := r.run(ctx,
		chromedp.Evaluate(regionRectJS, &rect),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if rect.Width <= 0 || rect.Height <= 0 {
				return errors.New("printable area has no size")
			}
			var err error
			buf, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatJpeg).
				WithQuality(int64(r.quality)).
				WithCaptureBeyondViewport(true).
				WithFromSurface(true).
				WithClip(&page.Viewport{
					X:      rect.X,
					Y:      rect.Y,
					Width:  rect.Width,
					Height: rect.Height,
					Scale:  scale,
				}).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return model.Bitmap{}, fmt.Errorf("%w: capture: %w", domain.ErrExportFailure, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return model.Bitmap{}, fmt.Errorf("%w: decode capture: %w", domain.ErrExportFailure, err)
	}
	return model.Bitmap{Data: buf, Width: cfg.Width, Height: cfg.Height, Format: model.BitmapJPEG}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
