// Command webui-shell runs the navigation list and printer discovery and
// exposes them through an interactive shell.
//
// Usage:
//
//	webui-shell [options]
//
// Options:
//
//	-config string      YAML configuration file
//	-downloads string   Directory mounted as the Downloads volume
//	-media-root string  Directory watched for removable media
//	-store string       Shortcut store (.db/.sqlite for SQLite, otherwise JSON)
//	-event-log string   CBOR model event log file
//	-log-level string   Log level: debug, info, warn, error (default "info")
//	-browse             Discover IPP printers on the local network
//	-interactive        Run the interactive shell (default true)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/cros-webui/webui-go/cmd/webui-shell/interactive"
	eventlog "github.com/cros-webui/webui-go/pkg/log"
	"github.com/cros-webui/webui-go/pkg/navlist"
	"github.com/cros-webui/webui-go/pkg/printer"
	"github.com/cros-webui/webui-go/pkg/shortcut"
	"github.com/cros-webui/webui-go/pkg/volume"
)

var (
	configFile string
	flagConfig = DefaultConfig()
	runShell   bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "YAML configuration file")
	flag.StringVar(&flagConfig.Downloads, "downloads", "", "Directory mounted as the Downloads volume")
	flag.StringVar(&flagConfig.MediaRoot, "media-root", "", "Directory watched for removable media")
	flag.StringVar(&flagConfig.ShortcutStore, "store", "", "Shortcut store (.db/.sqlite for SQLite, otherwise JSON)")
	flag.StringVar(&flagConfig.EventLog, "event-log", "", "CBOR model event log file")
	flag.StringVar(&flagConfig.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&flagConfig.Printers.Browse, "browse", false, "Discover IPP printers on the local network")
	flag.BoolVar(&runShell, "interactive", true, "Run the interactive shell")
}

func main() {
	flag.Parse()

	config, err := loadConfig()
	if err != nil {
		fail("Invalid configuration: %v", err)
	}
	volumes, err := config.Validate()
	if err != nil {
		fail("Invalid configuration: %v", err)
	}

	logger := setupLogging(config.LogLevel)
	logger.Info("starting webui-shell", "downloads", config.Downloads, "media_root", config.MediaRoot)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := volume.NewManager()
	if config.Downloads != "" {
		volumes = append([]volume.Info{{
			VolumeID:  "downloads",
			Label:     "Downloads",
			Type:      volume.TypeDownloads,
			MountPath: config.Downloads,
		}}, volumes...)
	}
	for _, info := range volumes {
		if _, err := manager.Mount(info); err != nil {
			logger.Warn("failed to mount volume", "volume", info.VolumeID, "error", err)
		}
	}

	if config.MediaRoot != "" {
		watcher, err := volume.NewWatcher(config.MediaRoot, manager, logger.With("component", "media"))
		if err != nil {
			fail("Failed to watch media root: %v", err)
		}
		defer watcher.Close()
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("media watcher stopped", "error", err)
			}
		}()
	}

	store, closeStore, err := openShortcutStore(config.ShortcutStore)
	if err != nil {
		fail("Failed to open shortcut store: %v", err)
	}
	defer closeStore()

	shortcuts := shortcut.NewList(store)
	if err := shortcuts.Load(ctx); err != nil {
		fail("Failed to load shortcuts: %v", err)
	}

	loggers := []eventlog.Logger{eventlog.NewSlogAdapter(logger)}
	if config.EventLog != "" {
		fileLogger, err := eventlog.NewFileLogger(config.EventLog)
		if err != nil {
			fail("Failed to open event log: %v", err)
		}
		defer func() {
			if n := fileLogger.Dropped(); n > 0 {
				logger.Warn("event log dropped events", "count", n)
			}
			fileLogger.Close()
		}()
		loggers = append(loggers, fileLogger)
	}
	modelLogger := eventlog.NewMultiLogger(loggers...)

	model, err := navlist.New(navlist.Config{
		Volumes:   manager,
		Shortcuts: shortcuts,
		Resolver:  manager,
		Logger:    modelLogger,
		OnError: func(path string, err error) {
			logger.Debug("resolution failed", "path", path, "error", err)
		},
	})
	if err != nil {
		fail("Failed to create navigation list: %v", err)
	}
	defer model.Close()

	var printers *printer.Store
	if config.Printers.Browse {
		printers = printer.NewStore(modelLogger, model.ID())
		browser := printer.NewBrowser(printer.BrowserConfig{
			Interface: config.Printers.Interface,
			Timeout:   config.Printers.Timeout,
		}, logger.With("component", "printer"))
		defer browser.Stop()

		added, removed, err := browser.Browse(ctx)
		if err != nil {
			logger.Warn("printer discovery unavailable", "error", err)
		} else {
			go printers.Track(ctx, added, removed)
		}
	}

	deps := interactive.Deps{
		Volumes:   manager,
		Shortcuts: shortcuts,
		Model:     model,
		Printers:  printers,
		Logger:    modelLogger,
	}

	if runShell {
		shell, err := interactive.New(deps)
		if err != nil {
			fail("Failed to start shell: %v", err)
		}
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGTERM)
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
		shell.Run(ctx, cancel)
		return
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received signal, shutting down", "signal", sig)
}

// loadConfig reads the config file, then applies flags that were set on the
// command line.
func loadConfig() (Config, error) {
	cfg := DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = LoadConfig(configFile); err != nil {
			return cfg, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "downloads":
			cfg.Downloads = flagConfig.Downloads
		case "media-root":
			cfg.MediaRoot = flagConfig.MediaRoot
		case "store":
			cfg.ShortcutStore = flagConfig.ShortcutStore
		case "event-log":
			cfg.EventLog = flagConfig.EventLog
		case "log-level":
			cfg.LogLevel = flagConfig.LogLevel
		case "browse":
			cfg.Printers.Browse = flagConfig.Printers.Browse
		}
	})
	return cfg, nil
}

// openShortcutStore picks the store implementation from the path. An empty
// path keeps shortcuts in memory.
func openShortcutStore(path string) (shortcut.Store, func(), error) {
	noop := func() {}
	switch strings.ToLower(filepath.Ext(path)) {
	case "":
		if path == "" {
			return nil, noop, nil
		}
	case ".db", ".sqlite":
		s, err := shortcut.OpenSQLiteStore(path)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil
	}
	return shortcut.NewFileStore(path), noop, nil
}

func setupLogging(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.TimeOnly + ".000000"))
			}
			return a
		},
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
