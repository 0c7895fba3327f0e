package lls

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/ionclm/clm"
	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/logger"
)

// SinkFactory returns the sink that receives one system's store.
type SinkFactory func(ctx context.Context, system SystemInfo) (clm.Sink, error)

// Processor runs sources end to end: fetch, parse, attach.
type Processor struct {
	loader   Loader
	sinkFor  SinkFactory
	dryRun   bool
	parallel int
	logger   *zap.SugaredLogger
}

// ProcessingResult summarizes one ingest run.
type ProcessingResult struct {
	DryRun    bool      `json:"dry_run"`
	Sources   int       `json:"sources"`
	Systems   int       `json:"systems"`
	Excluded  int       `json:"excluded"`
	Ions      int       `json:"ions"`
	Skipped   int       `json:"skipped"`
	Batches   []Batch   `json:"-"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// NewProcessor creates a Processor. In a dry run nothing is attached.
func NewProcessor(loader Loader, sinkFor SinkFactory, dryRun bool, parallel int, log *zap.SugaredLogger) *Processor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Processor{
		loader:   loader,
		sinkFor:  sinkFor,
		dryRun:   dryRun,
		parallel: parallel,
		logger:   log,
	}
}

// Process parses sources and attaches every non-excluded system.
func (p *Processor) Process(ctx context.Context, sources []Source) (*ProcessingResult, error) {
	result := &ProcessingResult{
		DryRun:    p.dryRun,
		Sources:   len(sources),
		StartTime: time.Now(),
	}
	log := p.logger.With(logger.FieldsFromContext(ctx)...)
	defer func() { result.EndTime = time.Now() }()

	batches, err := ParseAll(ctx, p.loader, sources, p.parallel)
	if err != nil {
		result.Message = err.Error()
		return result, err
	}
	result.Batches = batches

	for _, batch := range batches {
		for _, res := range batch.Results {
			result.Skipped += len(res.Skipped)
			for _, s := range res.Skipped {
				log.Debugw("Row skipped",
					logger.FieldSource, batch.Source.Name(),
					logger.FieldSystem, res.System.Name,
					logger.FieldRow, s.Index,
					logger.FieldReason, s.Reason)
			}
			if res.Excluded {
				result.Excluded++
				log.Debugw("System excluded",
					logger.FieldSource, batch.Source.Name(),
					logger.FieldSystem, res.System.Name,
					logger.FieldReason, res.Reason)
				continue
			}
			result.Systems++
			result.Ions += res.Store.Len()

			if !p.dryRun {
				sink, err := p.sinkFor(ctx, res.System)
				if err != nil {
					result.Message = err.Error()
					return result, errors.Wrapf(err, "sink for %s", res.System.Name)
				}
				if err := sink.Attach(ctx, res.Store, res.System.Ref); err != nil {
					result.Message = err.Error()
					return result, errors.Wrapf(err, "attach %s", res.System.Name)
				}
			}
			log.Infow("System ingested",
				logger.FieldSource, batch.Source.Name(),
				logger.FieldSystem, res.System.Name,
				logger.FieldIons, res.Store.Len(),
				logger.FieldDryRun, p.dryRun)
		}
	}

	result.Success = true
	result.Message = "ingest completed"
	log.Infow("Ingest completed",
		logger.FieldCount, result.Sources,
		logger.FieldSystems, result.Systems,
		logger.FieldExcluded, result.Excluded,
		logger.FieldSkipped, result.Skipped,
		logger.FieldDurationMS, time.Since(result.StartTime).Milliseconds())
	return result, nil
}
