// kmapd: a layered, modifier-conditional keyboard remapper for Linux.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kmapd/kmapd/internal/appconfig"
	"github.com/kmapd/kmapd/internal/device"
	"github.com/kmapd/kmapd/internal/engine"
	"github.com/kmapd/kmapd/internal/handler"
	"github.com/kmapd/kmapd/internal/keycodes"
	"github.com/kmapd/kmapd/internal/mapconfig"
	"github.com/kmapd/kmapd/internal/replay"
	"github.com/kmapd/kmapd/internal/tray"
	"github.com/kmapd/kmapd/internal/vkeyboard"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		noTray     bool
	)

	root := &cobra.Command{
		Use:     "kmapd",
		Short:   "Layered, modifier-conditional keyboard remapper",
		Version: fmt.Sprintf("%s (%s)", version, commit),
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to kmapd's application config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Discover keyboards, grab them, and remap events until terminated",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(configPath, logLevel, noTray)
		},
	}
	runCmd.Flags().BoolVar(&noTray, "no-tray", false, "run without a system tray icon")

	var mappingPath string
	var testcasePath string
	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a recorded test script against one keyboard's mapping config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(mappingPath, testcasePath)
		},
	}
	replayCmd.Flags().StringVar(&mappingPath, "mapping", "", "path to a single-document mapping config")
	replayCmd.Flags().StringVar(&testcasePath, "testcase", "", "path to a replay script")
	replayCmd.MarkFlagRequired("mapping")
	replayCmd.MarkFlagRequired("testcase")

	var validateMapping string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a mapping config without running the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(validateMapping)
		},
	}
	validateCmd.Flags().StringVar(&validateMapping, "mapping", "", "path to the root mapping config")
	validateCmd.MarkFlagRequired("mapping")

	root.AddCommand(runCmd, replayCmd, validateCmd)
	return root
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

func runDaemon(configPath, logLevelFlag string, noTray bool) error {
	appCfg, err := appconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading application config: %w", err)
	}

	level := logLevelFlag
	if level == "" {
		level = appCfg.LogLevel
	}
	logger := newLogger(level)
	logger.Info("kmapd starting", "version", version, "mapping_config", appCfg.MappingDoc)

	root, err := mapconfig.LoadRootConfig(appCfg.MappingDoc)
	if err != nil {
		return fmt.Errorf("loading mapping config: %w", err)
	}
	router, err := mapconfig.BuildRouter(root, lookupAdapter, logger)
	if err != nil {
		return fmt.Errorf("building router: %w", err)
	}

	vkb, err := vkeyboard.New(logger)
	if err != nil {
		return fmt.Errorf("creating virtual keyboard (is /dev/uinput writable?): %w", err)
	}
	defer vkb.Close()

	manager := device.NewManager(logger)
	defer manager.Close()

	keyboards, err := manager.FindKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return fmt.Errorf("no keyboards found")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var handlersMu sync.Mutex
	handlers := make(map[string]*handler.Handler)

	// start grabs dev and spins up its own reader/handler goroutine
	// pair wired through a channel private to this one device, so an
	// event read from keyboard A can never be delivered to keyboard
	// B's engine (spec.md §5: "events for keyboard k are always routed
	// to engine k") — no fan-in channel is shared across devices.
	start := func(dev *device.Device) {
		eng, ok := router.EngineFor(dev.Name())
		if !ok {
			logger.Warn("keyboard not covered by any mapping config, forwarding only", "name", dev.Name())
			eng = engine.New(engine.Config{}, logger)
		}
		if err := manager.GrabDevice(dev); err != nil {
			logger.Error("failed to grab keyboard", "name", dev.Name(), "error", err)
			return
		}
		h := handler.New(dev.Name(), eng, vkb, logger)

		handlersMu.Lock()
		handlers[dev.Name()] = h
		handlersMu.Unlock()

		events := make(chan device.RawEvent, 256)
		go func() {
			if err := device.ReadEvents(ctx, dev, events); err != nil {
				logger.Error("device read loop exited", "name", dev.Name(), "error", err)
			}
		}()
		go func() {
			if err := h.ProcessEvents(ctx, events); err != nil && ctx.Err() == nil {
				logger.Error("handler exited", "name", dev.Name(), "error", err)
			}
		}()
	}

	for _, kb := range keyboards {
		start(kb)
	}

	watcher, err := device.NewWatcher(manager, logger)
	if err != nil {
		logger.Warn("hot-plug watching disabled", "error", err)
	} else {
		defer watcher.Close()
		go watcher.Run(ctx, start)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutdown := func() {
		logger.Info("shutting down")
		cancel()
	}

	if noTray {
		logger.Info("running without system tray, press Ctrl+C to quit")
		<-sigChan
		shutdown()
		return nil
	}

	trayIcon := tray.New(tray.Config{
		Enabled: true,
		OnReload: func() error {
			newRoot, err := mapconfig.LoadRootConfig(appCfg.MappingDoc)
			if err != nil {
				return err
			}
			newRouter, err := mapconfig.BuildRouter(newRoot, lookupAdapter, logger)
			if err != nil {
				return err
			}
			router.Replace(newRouter)
			logger.Info("mapping config reloaded")
			return nil
		},
		OnToggle: func(enabled bool) {
			handlersMu.Lock()
			active := make([]*handler.Handler, 0, len(handlers))
			for _, h := range handlers {
				active = append(active, h)
			}
			handlersMu.Unlock()

			for _, h := range active {
				h.SetEnabled(enabled)
			}
		},
		OnQuit: func() {
			shutdown()
			os.Exit(0)
		},
		Logger: logger,
	})

	go func() {
		<-sigChan
		shutdown()
		trayIcon.Quit()
	}()

	trayIcon.Run()
	logger.Info("kmapd stopped")
	return nil
}

func runReplay(mappingPath, testcasePath string) error {
	logger := newLogger("warn")

	data, err := os.ReadFile(mappingPath)
	if err != nil {
		return fmt.Errorf("reading mapping config: %w", err)
	}
	conf, err := mapconfig.ParseKeyboardConfig(data)
	if err != nil {
		return err
	}
	if err := mapconfig.Validate(conf, lookupAdapter); err != nil {
		return err
	}
	eng := engine.New(mapconfig.Build(conf, lookupAdapter), logger)

	f, err := os.Open(testcasePath)
	if err != nil {
		return fmt.Errorf("opening testcase: %w", err)
	}
	defer f.Close()

	cases, err := replay.ParseScript(f)
	if err != nil {
		return err
	}

	results := replay.Run(cases, eng)
	failed := 0
	for _, r := range results {
		if r.OK {
			continue
		}
		failed++
		fmt.Printf("line %d: FAIL\n  expected:", r.Case.Line)
		for _, ev := range r.Case.Expected {
			fmt.Printf(" %s", replay.FormatEvent(ev))
		}
		fmt.Printf("\n  actual:  ")
		for _, ev := range r.Actual {
			fmt.Printf(" %s", replay.FormatEvent(ev))
		}
		fmt.Println()
	}

	fmt.Printf("%d/%d cases passed\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d replay case(s) failed", failed)
	}
	return nil
}

func runValidate(mappingPath string) error {
	root, err := mapconfig.LoadRootConfig(mappingPath)
	if err != nil {
		return err
	}
	for i, conf := range root {
		if err := mapconfig.Validate(conf, lookupAdapter); err != nil {
			return fmt.Errorf("keyboard config #%d: %w", i, err)
		}
	}
	fmt.Printf("%s: OK (%d keyboard configuration(s))\n", mappingPath, len(root))
	return nil
}

func lookupAdapter(name string) (int32, bool) {
	code, ok := keycodes.NameToCode(name)
	return int32(code), ok
}
