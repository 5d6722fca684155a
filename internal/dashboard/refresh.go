package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/shared/metrics"
)

// GaugeRefresher periodically republishes the active/resolved incident gauges
type GaugeRefresher struct {
	agg     *Aggregator
	cron    *cron.Cron
	timeout time.Duration
}

// NewGaugeRefresher schedules a refresh on spec, a standard cron
// expression or a descriptor such as "@every 1m"
func NewGaugeRefresher(agg *Aggregator, spec string, timeout time.Duration) (*GaugeRefresher, error) {
	r := &GaugeRefresher{
		agg:     agg,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		timeout: timeout,
	}
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("invalid dashboard refresh spec %q: %w", spec, err)
	}
	return r, nil
}

// Start refreshes once and then runs on schedule
func (r *GaugeRefresher) Start() {
	r.run()
	r.cron.Start()
}

// Stop waits for a running refresh to finish
func (r *GaugeRefresher) Stop() {
	<-r.cron.Stop().Done()
}

func (r *GaugeRefresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.Refresh(ctx); err != nil {
		r.agg.log.Warn("failed to refresh incident gauges", zap.Error(err))
	}
}

// Refresh recomputes the stats and publishes the gauges
func (r *GaugeRefresher) Refresh(ctx context.Context) error {
	stats, err := r.agg.Stats(ctx)
	if err != nil {
		return err
	}
	metrics.SetIncidentGauges(stats.ActiveIncidents, stats.ResolvedIncidents)
	return nil
}
