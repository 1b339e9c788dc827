// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LerianStudio/pagehost/internal/services"
	"github.com/LerianStudio/pagehost/pkg/constant"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"github.com/LerianStudio/lib-commons/v3/commons/log"
)

// Sweeper periodically removes artifacts older than the retention window.
// Idle between runs; the first run is delayed from process start so boot
// traffic settles before the store takes a scan.
type Sweeper struct {
	service      *services.UseCase
	logger       log.Logger
	initialDelay time.Duration
	interval     time.Duration
}

// NewSweeper creates a Sweeper from the application configuration.
func NewSweeper(cfg *Config, service *services.UseCase, logger log.Logger) *Sweeper {
	initialDelay := time.Duration(cfg.SweepInitialDelayMin) * time.Minute
	if initialDelay <= 0 {
		initialDelay = constant.DefaultSweepInitialDelay
	}

	interval := time.Duration(cfg.SweepIntervalHours) * time.Hour
	if interval <= 0 {
		interval = constant.DefaultSweepInterval
	}

	return &Sweeper{
		service:      service,
		logger:       logger,
		initialDelay: initialDelay,
		interval:     interval,
	}
}

// Run drives the sweep loop until the process is signalled to stop.
func (sw *Sweeper) Run(l *libCommons.Launcher) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigs
		cancel()
	}()

	sw.logger.Infof("Expiry sweeper scheduled: first run in %v, then every %v", sw.initialDelay, sw.interval)

	select {
	case <-ctx.Done():
		return nil
	case <-time.After(sw.initialDelay):
	}

	sw.sweep(ctx)

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sw.logger.Info("Expiry sweeper stopping")

			return nil
		case <-ticker.C:
			sw.sweep(ctx)
		}
	}
}

func (sw *Sweeper) sweep(ctx context.Context) {
	ctx = libCommons.ContextWithLogger(ctx, sw.logger)

	removed, err := sw.service.SweepExpired(ctx)
	if err != nil {
		sw.logger.Errorf("Expiry sweep failed: %v", err)

		return
	}

	sw.logger.Infof("Expiry sweep finished, %d artifacts removed", removed)
}
