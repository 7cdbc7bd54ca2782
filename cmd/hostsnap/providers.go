package main

import (
	"go.uber.org/zap"

	"github.com/modoterra/hostsnap/pkg/config"
	"github.com/modoterra/hostsnap/pkg/core"
	"github.com/modoterra/hostsnap/pkg/providers/gopsutil"
	"github.com/modoterra/hostsnap/pkg/providers/logs/journald"
	"github.com/modoterra/hostsnap/pkg/providers/logs/sdjournal"
	"github.com/modoterra/hostsnap/pkg/providers/logs/wevtutil"
	"github.com/modoterra/hostsnap/pkg/providers/netstat"
)

// providerSet holds the external collaborators for one run.
type providerSet struct {
	lister core.Lister
	tables core.TableProvider
	source core.LogSource
}

// providerFactory builds the providers for a config. Tests replace it.
type providerFactory func(cfg *config.Config, logger *zap.Logger) providerSet

// selectProviders resolves "auto" selectors for the given operating system.
// Connections and processes come from gopsutil everywhere; the log source
// depends on the platform.
func selectProviders(goos string, sdjournalAvailable bool) providerFactory {
	return func(cfg *config.Config, logger *zap.Logger) providerSet {
		lister := cfg.Ports.Lister
		if lister == config.Auto {
			lister = config.ListerGopsutil
		}

		table := cfg.Ports.ProcessTable
		if table == config.Auto {
			table = config.TableGopsutil
		}

		source := cfg.Events.Source
		if source == config.Auto {
			switch {
			case goos == "windows":
				source = config.SourceWevtutil
			case goos == "linux" && sdjournalAvailable:
				source = config.SourceSdjournal
			default:
				source = config.SourceJournalctl
			}
		}

		if source == config.SourceSdjournal && !sdjournalAvailable {
			logger.Warn("sdjournal support not built in, using journalctl")
			source = config.SourceJournalctl
		}

		logger.Debug("selected providers",
			zap.String("os", goos),
			zap.String("lister", lister),
			zap.String("process_table", table),
			zap.String("source", source))

		host := gopsutil.New(logger)
		set := providerSet{lister: host, tables: host}
		if lister == config.ListerNetstat {
			set.lister = netstat.New(logger)
		}
		switch source {
		case config.SourceWevtutil:
			set.source = wevtutil.New(logger)
		case config.SourceSdjournal:
			set.source = sdjournal.New(logger)
		default:
			set.source = journald.New(logger)
		}
		return set
	}
}
