package metrics

import (
	"sync/atomic"
	"time"
)

// Collector is safe for concurrent use.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64
	recordsComputed uint64
	recordsFailed   uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordPayroll counts one processed employee record.
func (c *Collector) RecordPayroll(err error) {
	if err != nil {
		atomic.AddUint64(&c.recordsFailed, 1)
		return
	}
	atomic.AddUint64(&c.recordsComputed, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":        total,
		"errorsTotal":          errs,
		"rateLimitedTotal":     limited,
		"avgDurationMs":        avg,
		"totalDurationMs":      totalMs,
		"recordsComputedTotal": atomic.LoadUint64(&c.recordsComputed),
		"recordsFailedTotal":   atomic.LoadUint64(&c.recordsFailed),
	}
}
