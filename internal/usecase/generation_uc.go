package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/adapter"
	"scenario-quiz/internal/domain/ports/repository"
	"scenario-quiz/internal/infra/logging"
	"scenario-quiz/internal/infra/metrics"
	"scenario-quiz/internal/infra/worker"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Compile-time check
var _ GenerationUseCase = (*generationUC)(nil)

// GenerationUseCase runs the two phases of a generation: questions first,
// then images in the background.
//
// Failures are never retried automatically. A failed generation charges
// nothing and the user resubmits; a failed image leaves its item without
// an illustration. A new request discards the previous batch before the
// model is called, so a failed request leaves the session without one.
// The batch is stored before the use is charged; when charging fails the
// stored batch is withdrawn again.
type GenerationUseCase interface {
	Generate(ctx context.Context, sessionID string, req model.GenerationRequest) (*model.Batch, error)
	Illustrate(ctx context.Context, batch *model.Batch) (*model.Batch, bool, error)
	Current(ctx context.Context, sessionID string) (*model.Batch, error)
}

// Scheduler runs background tasks; worker.Pool satisfies it.
type Scheduler interface {
	Submit(task worker.Task) error
}

type GenerationOptions struct {
	ImageConcurrency int
	ImageTimeout     time.Duration
}

type generationUC struct {
	sessions SessionUseCase
	ledger   LedgerUseCase
	batches  repository.BatchStore
	text     adapter.QuestionGenerator
	images   adapter.ImageGenerator
	sched    Scheduler
	opts     GenerationOptions
	log      *zerolog.Logger
}

func NewGenerationUseCase(
	sessions SessionUseCase,
	ledger LedgerUseCase,
	batches repository.BatchStore,
	text adapter.QuestionGenerator,
	images adapter.ImageGenerator,
	sched Scheduler,
	opts GenerationOptions,
	logger *zerolog.Logger,
) *generationUC {
	if opts.ImageConcurrency <= 0 {
		opts.ImageConcurrency = model.QuestionsPerBatch
	}
	if opts.ImageTimeout <= 0 {
		opts.ImageTimeout = 2 * time.Minute
	}
	return &generationUC{
		sessions: sessions,
		ledger:   ledger,
		batches:  batches,
		text:     text,
		images:   images,
		sched:    sched,
		opts:     opts,
		log:      logger,
	}
}

// Generate produces a new batch for the session's active token. Exactly one
// use is recorded once the questions are in hand, before any image work.
func (g *generationUC) Generate(ctx context.Context, sessionID string, req model.GenerationRequest) (*model.Batch, error) {
	defer logging.TraceDuration(g.log, "GenerationUC.Generate")()

	tok, err := g.sessions.Active(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !tok.Usable() {
		return nil, domain.ErrExpiredToken
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	log := logging.With(ctx, g.log)
	if err := g.batches.Clear(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("discard previous batch: %w", err)
	}
	questions, err := g.text.GenerateQuestions(ctx, req)
	if err == nil {
		err = model.ValidateQuestions(questions)
	}
	if err != nil {
		metrics.IncGeneration(string(req.Subject), false)
		log.Error().Err(err).Str("subject", string(req.Subject)).Msg("question generation failed")
		if !errors.Is(err, domain.ErrGenerationFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
		}
		return nil, err
	}

	batch := &model.Batch{
		ID:            ulid.Make().String(),
		SessionID:     sessionID,
		Request:       req,
		Questions:     questions,
		CreatedAt:     time.Now().UTC(),
		ImagesPending: g.images != nil && len(questions) > 0,
	}
	for i := range batch.Questions {
		batch.Questions[i].ImageURL = ""
	}
	if err := g.batches.SaveCurrent(ctx, batch); err != nil {
		return nil, fmt.Errorf("store batch: %w", err)
	}
	if err := g.ledger.RecordConsumption(ctx, tok.ID); err != nil {
		if cerr := g.batches.Clear(context.WithoutCancel(ctx), sessionID); cerr != nil {
			log.Error().Err(cerr).Str("batch_id", batch.ID).Msg("withdraw uncharged batch")
		}
		return nil, fmt.Errorf("record usage: %w", err)
	}
	metrics.IncGeneration(string(req.Subject), true)
	log.Info().Str("batch_id", batch.ID).Int("questions", len(questions)).Msg("batch generated")

	if batch.ImagesPending {
		g.scheduleImages(ctx, batch.Clone())
	}
	return batch.Clone(), nil
}

func (g *generationUC) scheduleImages(ctx context.Context, batch *model.Batch) {
	traceID := logging.TraceID(ctx)
	task := func(ctx context.Context) error {
		ctx = logging.WithBatchID(logging.WithTraceID(ctx, traceID), batch.ID)
		ctx, cancel := context.WithTimeout(ctx, g.opts.ImageTimeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				g.releaseImageGate(ctx, batch)
				panic(r)
			}
		}()
		_, _, err := g.Illustrate(ctx, batch)
		return err
	}
	if g.sched == nil {
		go func() { _ = task(context.WithoutCancel(ctx)) }()
		return
	}
	if err := g.sched.Submit(task); err != nil {
		// no capacity: deliver the batch without images
		g.log.Warn().Err(err).Str("batch_id", batch.ID).Msg("image phase not scheduled")
		g.releaseImageGate(ctx, batch)
	}
}

// releaseImageGate commits batch without images so it becomes exportable.
func (g *generationUC) releaseImageGate(ctx context.Context, batch *model.Batch) {
	done := batch.Clone()
	done.ImagesPending = false
	if _, err := g.batches.CommitIfCurrent(context.WithoutCancel(ctx), done); err != nil {
		g.log.Error().Err(err).Str("batch_id", batch.ID).Msg("release image gate")
	}
}

// Illustrate fetches one image per question concurrently and commits them
// into a fresh copy of batch, only if batch is still the session's current
// one. Per-item failures are logged and leave ImageURL empty. The bool
// reports whether the commit happened.
func (g *generationUC) Illustrate(ctx context.Context, batch *model.Batch) (*model.Batch, bool, error) {
	defer logging.TraceDuration(g.log, "GenerationUC.Illustrate")()

	log := logging.With(logging.WithBatchID(ctx, batch.ID), g.log)
	urls := make([]string, len(batch.Questions))

	var eg errgroup.Group
	eg.SetLimit(g.opts.ImageConcurrency)
	for i, q := range batch.Questions {
		if g.images == nil {
			break
		}
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					metrics.IncImage("failure")
					log.Error().Interface("panic", r).Int("item", i+1).Msg("scenario image panicked")
					err = nil
				}
			}()
			url, err := g.images.GenerateImage(ctx, q.Scenario)
			if err != nil {
				metrics.IncImage("failure")
				log.Warn().Err(err).Int("item", i+1).Msg("scenario image failed")
				return nil
			}
			metrics.IncImage("success")
			urls[i] = url
			return nil
		})
	}
	_ = eg.Wait()

	out := batch.Clone()
	for i := range out.Questions {
		out.Questions[i].ImageURL = urls[i]
	}
	out.ImagesPending = false

	committed, err := g.batches.CommitIfCurrent(context.WithoutCancel(ctx), out)
	if err != nil {
		log.Error().Err(err).Msg("commit images")
		return out, false, err
	}
	if !committed {
		metrics.IncImage("stale")
		log.Debug().Msg("batch superseded, images dropped")
	}
	return out, committed, nil
}

func (g *generationUC) Current(ctx context.Context, sessionID string) (*model.Batch, error) {
	if sessionID == "" {
		return nil, domain.ErrNotFound
	}
	return g.batches.Current(ctx, sessionID)
}
