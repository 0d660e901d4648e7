package middleware

import (
	"github.com/duynhne/registro-facial/config"
	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

var profiler *pyroscope.Profiler

// InitProfiling starts Pyroscope continuous profiling for the stub backend.
// Profiler diagnostics are routed through the given zap logger.
func InitProfiling(cfg config.ProfilingConfig, env string, logger *zap.Logger) error {
	pcfg := pyroscope.Config{
		ApplicationName: cfg.ServiceName,
		ServerAddress:   cfg.Endpoint,
		Tags: map[string]string{
			"service": cfg.ServiceName,
			"env":     env,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
		Logger: logger.Sugar(),
	}

	var err error
	profiler, err = pyroscope.Start(pcfg)
	return err
}

// StopProfiling stops Pyroscope profiling
func StopProfiling() {
	if profiler != nil {
		_ = profiler.Stop()
	}
}
