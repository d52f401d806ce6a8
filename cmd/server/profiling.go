package main

import (
	"fmt"
	"log/slog"

	"notely/internal/config"

	"github.com/grafana/pyroscope-go"
)

// pyroscopeLogger routes profiler messages into slog.
type pyroscopeLogger struct {
	log *slog.Logger
}

func (l pyroscopeLogger) Infof(format string, args ...any) {
	l.log.Info(fmt.Sprintf(format, args...), "component", "pyroscope")
}

func (l pyroscopeLogger) Debugf(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...), "component", "pyroscope")
}

func (l pyroscopeLogger) Errorf(format string, args ...any) {
	l.log.Error(fmt.Sprintf(format, args...), "component", "pyroscope")
}

// startProfiler pushes continuous profiles to PYROSCOPE_SERVER_ADDRESS. The
// returned stop func is never nil; it does nothing when profiling is off.
func startProfiler(cfg config.Config, log *slog.Logger) (func() error, error) {
	if cfg.PyroscopeAddress == "" {
		return func() error { return nil }, nil
	}

	p, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "notely.server",
		ServerAddress:   cfg.PyroscopeAddress,
		Logger:          pyroscopeLogger{log: log},
		Tags:            map[string]string{"dev_mode": fmt.Sprint(cfg.DevMode)},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return nil, err
	}

	log.Info("continuous profiling enabled", "server", cfg.PyroscopeAddress)
	return p.Stop, nil
}
