package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Processor runs the calculator over a batch. Records are independent, so
// Workers > 1 computes them in parallel; output order and error selection are
// the same as a sequential run.
type Processor struct {
	Calculator Calculator
	Policy     string
	Workers    int
	Logger     *zap.Logger
	// OnRecord, when set, is called once per record with its outcome.
	OnRecord func(err error)
}

func NewProcessor(calc Calculator, policy string, workers int, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{Calculator: calc, Policy: policy, Workers: workers, Logger: logger}
}

type outcome struct {
	result PayrollResult
	err    error
}

// Run computes every record. Under PolicyFailFast the first failing record
// (by index) is returned as a *RecordError and the report is empty; under
// PolicyCollect failures are reported alongside the successful results.
func (p *Processor) Run(ctx context.Context, records []json.RawMessage) (Report, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()

	outcomes := make([]outcome, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.Workers, 1))
	for i := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := p.Calculator.Compute(records[i])
			outcomes[i] = outcome{result: result, err: err}
			if p.OnRecord != nil {
				p.OnRecord(err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	report := Report{Results: make([]PayrollResult, 0, len(records))}
	for i, o := range outcomes {
		if o.err == nil {
			report.Results = append(report.Results, o.result)
			continue
		}
		recErr := RecordError{Index: i, ID: recordID(records[i]), Err: o.err}
		logger.Warn("payroll record rejected",
			zap.Int("index", i),
			zap.String("employeeId", recErr.ID),
			zap.String("field", FieldOf(o.err)),
			zap.Error(o.err),
		)
		if p.Policy != PolicyCollect {
			logger.Error("payroll run aborted", zap.Int("records", len(records)), zap.Int("index", i))
			return Report{}, &recErr
		}
		report.Failures = append(report.Failures, recErr)
	}

	logger.Info("payroll run completed",
		zap.Int("records", len(records)),
		zap.Int("computed", len(report.Results)),
		zap.Int("failed", len(report.Failures)),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}

// FailedRecord reports whether err is a per-record failure, as opposed to a
// cancelled or otherwise aborted run.
func FailedRecord(err error) (*RecordError, bool) {
	var recErr *RecordError
	if errors.As(err, &recErr) {
		return recErr, true
	}
	return nil, false
}

// recordID pulls a best-effort identifier out of a record that failed
// validation, for error messages only.
func recordID(raw json.RawMessage) string {
	var record object
	if err := json.Unmarshal(raw, &record); err != nil {
		return ""
	}
	id, err := identity(record, FieldID)
	if err != nil {
		return ""
	}
	return id
}
