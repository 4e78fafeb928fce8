package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
	"github.com/KaramelBytes/tabstat-cli/internal/report"
)

// EventKind tags the messages a running batch sends to its presentation loop.
type EventKind int

const (
	EventStarted EventKind = iota
	EventFile
	EventDone
)

// Event is one message from the worker. Record is set for EventFile;
// Result and Err for EventDone.
type Event struct {
	Kind   EventKind
	Index  int
	Total  int
	Record Record
	Result *Result
	Err    error
}

// Run executes cfg over every source file in order. Per-file problems become
// records and never stop the batch; ctx is checked between files. When at
// least one record is emitted and an output path applies, the result table
// is written once at the end.
func Run(ctx context.Context, cfg RunConfig, log *zap.Logger, emit func(Event)) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if emit == nil {
		emit = func(Event) {}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	proc, err := NewProcessor(cfg)
	if err != nil {
		return nil, err
	}
	out := cfg.OutputPath()
	files, err := dataset.Resolve(cfg.Source, proc.Filter(), out)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ID:        uuid.NewString(),
		Tool:      cfg.Tool,
		Source:    cfg.Source,
		StartedAt: time.Now(),
		Table:     Table{Columns: proc.Columns()},
	}
	log = log.With(zap.String("run_id", res.ID), zap.String("tool", string(cfg.Tool)))
	log.Info("batch started", zap.String("source", cfg.Source), zap.Int("files", len(files)))
	emit(Event{Kind: EventStarted, Total: len(files)})

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			res.EndedAt = time.Now()
			log.Warn("batch interrupted", zap.Int("processed", i), zap.Error(err))
			return res, err
		}
		rec := processFile(proc, path, cfg.Read)
		res.Table.Rows = append(res.Table.Rows, rec)
		log.Debug("file processed",
			zap.String("file", rec.File),
			zap.String("status", string(rec.Status)),
			zap.String("reason", rec.Reason))
		emit(Event{Kind: EventFile, Index: i + 1, Total: len(files), Record: rec})
	}

	switch {
	case len(res.Table.Emitted()) == 0:
		res.Warnings = append(res.Warnings, "No valid files processed.")
	case out != "":
		if err := report.WriteXLSX(out, res.Table.Sheet()); err != nil {
			res.EndedAt = time.Now()
			return res, fmt.Errorf("write results: %w", err)
		}
		res.Output = out
	}
	res.EndedAt = time.Now()
	counts := res.Counts()
	log.Info("batch finished",
		zap.Int("ok", counts[StatusOK]),
		zap.Int("undefined", counts[StatusUndefined]),
		zap.Int("skipped", counts[StatusSkipped]),
		zap.Int("failed", counts[StatusFailed]),
		zap.String("output", res.Output),
		zap.Duration("elapsed", res.EndedAt.Sub(res.StartedAt)))
	return res, nil
}

func processFile(proc Processor, path string, opt dataset.Options) (rec Record) {
	name := filepath.Base(path)
	defer func() {
		if r := recover(); r != nil {
			rec = proc.Fail(name, fmt.Errorf("panic: %v", r))
		}
	}()
	ds, err := dataset.Load(path, opt)
	if err != nil {
		return proc.Fail(name, err)
	}
	return proc.Process(ds)
}
