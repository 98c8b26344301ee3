// cantina browses Star Wars characters from SWAPI in the terminal.
//
// By default it runs the interactive terminal UI and logs to a file. With
// --headless it skips the UI and serves the controller over the websocket
// bridge only, so other views can drive it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kapu/cantina-go/internal/app"
	"github.com/kapu/cantina-go/internal/config"
	"github.com/kapu/cantina-go/internal/tui"
	"github.com/kapu/cantina-go/internal/util"
)

const defaultTUILogFile = "logs/cantina.log"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		logLevel   string
		logFile    string
		bridgeAddr string
		searchText string
		headless   bool
		noMusic    bool
	)

	flagSet := pflag.NewFlagSet("cantina", pflag.ContinueOnError)
	flagSet.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flagSet.StringVar(&logFile, "log-file", "", "log file path (overrides LOG_FILE)")
	flagSet.StringVar(&bridgeAddr, "bridge-addr", "", "serve the websocket bridge on this address (overrides BRIDGE_ADDR)")
	flagSet.StringVar(&searchText, "search", "", "initial search text")
	flagSet.BoolVar(&headless, "headless", false, "run only the websocket bridge, without the terminal UI")
	flagSet.BoolVar(&noMusic, "no-music", false, "disable background music")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cfg, flagSet, logLevel, logFile, bridgeAddr, searchText, noMusic)

	if headless && cfg.Bridge.Addr == "" {
		return fmt.Errorf("--headless requires --bridge-addr or BRIDGE_ADDR")
	}
	if !headless && cfg.Logging.File == "" {
		// stdout belongs to the terminal UI
		cfg.Logging.File = defaultTUILogFile
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Cantina starting...",
		zap.String("version", "1.0.0"),
		zap.String("log_level", cfg.Logging.Level),
		zap.Bool("headless", headless),
	)

	buildCtx, buildCancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		return err
	}
	defer container.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	if container.Bridge != nil {
		go func() {
			if err := container.Bridge.ListenAndServe(cfg.Bridge.Addr); err != nil {
				errCh <- fmt.Errorf("bridge: %w", err)
			}
		}()
	}

	if headless {
		return runHeadless(ctx, container, errCh)
	}
	return runTUI(ctx, container, errCh)
}

// applyFlags lets explicitly set flags win over environment configuration.
func applyFlags(cfg *config.Config, flagSet *pflag.FlagSet, logLevel, logFile, bridgeAddr, searchText string, noMusic bool) {
	if flagSet.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flagSet.Changed("log-file") {
		cfg.Logging.File = logFile
	}
	if flagSet.Changed("bridge-addr") {
		cfg.Bridge.Addr = bridgeAddr
	}
	if flagSet.Changed("search") {
		cfg.UI.SearchText = searchText
	}
	if noMusic {
		cfg.Music.Enabled = false
	}
}

func runHeadless(ctx context.Context, container *app.Container, errCh <-chan error) error {
	logger := container.Logger

	go container.Controller.Start(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	logger.Info("Headless bridge running, waiting for signals...")

	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		return nil
	case err := <-errCh:
		logger.Error("Bridge error", zap.Error(err))
		return err
	}
}

func runTUI(ctx context.Context, container *app.Container, errCh <-chan error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	states, unsubscribe := tui.StateFeed(container.Controller)
	defer unsubscribe()

	model := tui.NewModel(ctx, container.Controller, states)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		select {
		case err := <-errCh:
			container.Logger.Error("Bridge error", zap.Error(err))
			program.Quit()
		case <-ctx.Done():
		}
	}()

	_, err := program.Run()
	container.Logger.Info("Terminal UI closed")
	return err
}
