package usecase

import (
	"context"
	"fmt"
	"time"

	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/adapter"
	"scenario-quiz/internal/domain/ports/repository"
	"scenario-quiz/internal/infra/logging"
	"scenario-quiz/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ExportUseCase = (*exportUC)(nil)

// ExportUseCase turns the session's current batch into a paginated PDF.
type ExportUseCase interface {
	Export(ctx context.Context, sessionID string) (*model.Document, error)
}

type ExportOptions struct {
	Scale    float64
	LockTTL  time.Duration
	FileName string
}

type exportUC struct {
	batches   repository.BatchStore
	printable adapter.PrintableRenderer
	renderer  adapter.Renderer
	writer    adapter.DocumentWriter
	locker    repository.Locker
	opts      ExportOptions
	log       *zerolog.Logger
}

func NewExportUseCase(
	batches repository.BatchStore,
	printable adapter.PrintableRenderer,
	renderer adapter.Renderer,
	writer adapter.DocumentWriter,
	locker repository.Locker,
	opts ExportOptions,
	logger *zerolog.Logger,
) *exportUC {
	if opts.Scale <= 0 {
		opts.Scale = 2
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 3 * time.Minute
	}
	if opts.FileName == "" {
		opts.FileName = "scenario-questions.pdf"
	}
	return &exportUC{
		batches:   batches,
		printable: printable,
		renderer:  renderer,
		writer:    writer,
		locker:    locker,
		opts:      opts,
		log:       logger,
	}
}

// Export runs render, await images, rasterize, paginate and save. Only one
// export per session runs at a time, and none while images are pending.
func (e *exportUC) Export(ctx context.Context, sessionID string) (*model.Document, error) {
	defer logging.TraceDuration(e.log, "ExportUC.Export")()
	start := time.Now()

	batch, err := e.batches.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if batch.ImagesPending {
		metrics.IncExport("busy")
		return nil, domain.ErrExportBusy
	}

	lockKey := "lock:export:" + sessionID
	token, ok, err := e.locker.TryLock(ctx, lockKey, e.opts.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire export lock: %w", err)
	}
	if !ok {
		metrics.IncExport("busy")
		return nil, domain.ErrExportBusy
	}
	defer func() {
		if err := e.locker.Unlock(context.WithoutCancel(ctx), lockKey, token); err != nil {
			e.log.Warn().Err(err).Msg("release export lock")
		}
	}()

	log := logging.With(logging.WithBatchID(ctx, batch.ID), e.log)
	doc, pages, err := e.run(ctx, batch)
	if err != nil {
		metrics.IncExport("failure")
		log.Error().Err(err).Msg("export failed")
		return nil, err
	}
	metrics.IncExport("success")
	metrics.ObserveExport(pages, time.Since(start))
	log.Info().Int("pages", pages).Int("bytes", len(doc.Bytes)).Msg("export finished")
	return doc, nil
}

func (e *exportUC) run(ctx context.Context, batch *model.Batch) (*model.Document, int, error) {
	html, err := e.printable.RenderPrintable(batch)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: render: %w", domain.ErrExportFailure, err)
	}

	region, release, err := e.renderer.Open(ctx, html)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: open page: %w", domain.ErrExportFailure, err)
	}
	defer release()

	bmp, err := e.rasterize(ctx, region)
	if err != nil {
		return nil, 0, err
	}

	pageW, pageH := e.writer.PageSize()
	contentH, pages := model.Paginate(bmp.Width, bmp.Height, pageW, pageH)
	if len(pages) == 0 {
		return nil, 0, fmt.Errorf("%w: empty capture %dx%d", domain.ErrExportFailure, bmp.Width, bmp.Height)
	}

	data, err := e.writer.Write(bmp, contentH, pages)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: write document: %w", domain.ErrExportFailure, err)
	}
	return &model.Document{
		Name:        e.opts.FileName,
		ContentType: "application/pdf",
		Bytes:       data,
	}, len(pages), nil
}

// rasterize waits for images, then captures the region with it forced
// visible. The prior visibility is restored on every path.
func (e *exportUC) rasterize(ctx context.Context, region adapter.Region) (bmp model.Bitmap, err error) {
	if err := region.AwaitImages(ctx); err != nil {
		return model.Bitmap{}, fmt.Errorf("%w: %w", domain.ErrExportFailure, err)
	}

	prev, err := region.Visibility(ctx)
	if err != nil {
		return model.Bitmap{}, fmt.Errorf("%w: read visibility: %w", domain.ErrExportFailure, err)
	}
	if err := region.SetVisibility(ctx, "visible"); err != nil {
		return model.Bitmap{}, fmt.Errorf("%w: show region: %w", domain.ErrExportFailure, err)
	}
	defer func() {
		if rerr := region.SetVisibility(context.WithoutCancel(ctx), prev); rerr != nil {
			e.log.Error().Err(rerr).Msg("restore region visibility")
			if err == nil {
				err = fmt.Errorf("%w: restore visibility: %w", domain.ErrExportFailure, rerr)
			}
		}
	}()

	bmp, err = region.Capture(ctx, e.opts.Scale)
	if err != nil {
		return model.Bitmap{}, fmt.Errorf("%w: capture: %w", domain.ErrExportFailure, err)
	}
	return bmp, nil
}
