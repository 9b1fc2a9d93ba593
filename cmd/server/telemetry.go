package main

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/vendorledger/internal/infrastructure/config"
	"github.com/erp/vendorledger/internal/infrastructure/persistence"
	"github.com/erp/vendorledger/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// observability holds the tracing, metrics and profiling handles owned by main.
type observability struct {
	cfg           config.TelemetryConfig
	logger        *zap.Logger
	tracer        *telemetry.TracerProvider
	meter         *telemetry.MeterProvider
	profiler      *telemetry.Profiler
	dbInstr       *telemetry.DBInstrumentation
	ledgerMetrics *telemetry.LedgerMetrics
}

func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) (*observability, error) {
	tc := cfg.Telemetry
	o := &observability{cfg: tc, logger: log}

	var err error
	o.tracer, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		SamplingRatio:     tc.SamplingRatio,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("tracer: %w", err)
	}

	o.meter, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tc.MetricsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ExportInterval:    tc.MetricsInterval,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("meter: %w", err)
	}

	o.profiler, err = telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         tc.ProfilingEnabled,
		ServerAddress:   tc.PyroscopeEndpoint,
		ApplicationName: tc.ServiceName,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("profiler: %w", err)
	}
	if o.profiler.IsEnabled() && o.tracer.IsEnabled() {
		o.tracer.EnableSpanProfiles()
	}

	if tc.MetricsEnabled {
		o.ledgerMetrics, err = telemetry.NewLedgerMetrics(o.meter.Meter("vendor-ledger"))
		if err != nil {
			return nil, fmt.Errorf("ledger metrics: %w", err)
		}
	}
	return o, nil
}

func (o *observability) httpMeter() metric.Meter {
	if !o.cfg.MetricsEnabled {
		return nil
	}
	return o.meter.Meter("http.server")
}

// instrumentDatabase registers query tracing and metrics on db and starts
// pool sampling.
func (o *observability) instrumentDatabase(ctx context.Context, db *persistence.Database) error {
	if !o.cfg.DBTraceEnabled && !o.cfg.MetricsEnabled {
		return nil
	}
	instr, err := telemetry.NewDBInstrumentation(o.meter.Meter("db"), telemetry.DBConfig{
		TraceEnabled:    o.cfg.DBTraceEnabled,
		LogFullSQL:      o.cfg.DBLogFullSQL,
		SlowQueryThresh: o.cfg.DBSlowQueryThresh,
	}, o.logger)
	if err != nil {
		return err
	}
	if err := db.DB.Use(instr); err != nil {
		return err
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	instr.StartPoolStats(ctx, sqlDB)
	o.dbInstr = instr
	return nil
}

func (o *observability) shutdown(log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if o.dbInstr != nil {
		o.dbInstr.Stop()
	}
	if err := o.profiler.Stop(); err != nil {
		log.Warn("profiler shutdown", zap.Error(err))
	}
	if err := o.meter.Shutdown(ctx); err != nil {
		log.Warn("meter shutdown", zap.Error(err))
	}
	if err := o.tracer.Shutdown(ctx); err != nil {
		log.Warn("tracer shutdown", zap.Error(err))
	}
}
