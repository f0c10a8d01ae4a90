package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/detect"
	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/dispatch"
	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/duckdb"
	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/httpserver"
	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/ingest"
)

// runServer starts the detection daemon: event intake, the engine loop,
// the decision journal, and the HTTP API.
func runServer(cfg appConfig) error {
	cleanupLogger := configureRuntimeLogger()
	defer cleanupLogger()

	// Initialize the decision journal.
	store, err := duckdb.NewStore(cfg.DBPath, cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	defer store.Close()

	// Create insert buffer for batched journal writes.
	insertBuffer := duckdb.NewInsertBuffer(store, duckdb.InsertBufferConfig{
		BatchSize:      cfg.InsertBatchSize,
		FlushInterval:  cfg.InsertFlushInterval,
		FlushQueueSize: cfg.InsertFlushQueue,
	})
	defer insertBuffer.Stop()

	// Start retention cleaner for automatic decision expiry.
	retentionCleaner := duckdb.NewRetentionCleaner(store, duckdb.RetentionConfig{
		RetentionDays: cfg.RetentionDays,
	})
	if retentionCleaner != nil {
		defer retentionCleaner.Stop()
	}

	// The action setting is shared between the engine and the HTTP API.
	actionSetting := dispatch.NewActionSetting(cfg.blockAction())

	// Start HTTP API server if enabled.
	if cfg.APIEnabled {
		apiServer := httpserver.NewServer(cfg.APIAddr, store, actionSetting)
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer apiServer.Stop()
	}

	// Set up context and signal handling before errgroup.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		// Shutdown deadline starts now — not at boot.
		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		os.Exit(1)
	}()

	// Build input plugins and source multiplexer.
	plugins := buildInputPlugins(InputPluginConfig{
		TCPEnabled: cfg.TCPEnabled,
		TCPAddr:    cfg.TCPAddr,
	})

	sources := make([]NamedEventSource, 0, len(plugins))
	for _, plugin := range plugins {
		if !plugin.Enabled() {
			continue
		}
		src, err := plugin.Build(ctx)
		if err != nil {
			log.Printf("Error initializing input plugin %q: %v", plugin.Name(), err)
			continue
		}
		sources = append(sources, src)
	}

	mux := NewSourceMultiplexer(ctx, sources, cfg.MuxBufferSize)
	mux.Start()

	// Detection pipeline. The dispatcher, click context, and engine share
	// one goroutine (the engine loop below), so none of them lock.
	var nav dispatch.Navigator = &dispatch.AdbNavigator{
		AdbPath: cfg.AdbPath,
		Serial:  cfg.AdbSerial,
	}
	if cfg.DryRun {
		nav = dispatch.NopNavigator{}
	}

	dispatcher := dispatch.NewDispatcher(time.Now, nav, cfg.Cooldown)
	clicks := detect.NewClickContext(time.Now, cfg.ReelClickWindow, cfg.ExploreWindow)
	engine := detect.NewEngine(detect.EngineConfig{
		Clock:      time.Now,
		Clicks:     clicks,
		Dispatcher: dispatcher,
		Action:     actionSetting.Get,
		Sink:       insertBuffer,
	})
	processor := ingest.NewProcessor(engine)

	printStartupBanner(cfg, mux.HasSources())

	// Use errgroup for concurrent goroutine lifecycle management.
	g, gctx := errgroup.WithContext(ctx)

	// Engine loop: the single consumer of all event sources.
	if mux.HasSources() {
		g.Go(func() error {
			for env := range mux.Lines() {
				processor.ProcessEnvelope(env)
			}
			return nil
		})
	}

	// Wait for context cancellation (from signal handler) in the errgroup.
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	// Wait for either signal or all sources to close.
	if err := g.Wait(); err != nil {
		log.Printf("server: errgroup exited with error: %v", err)
	}

	cancel()
	mux.Stop()

	// If we reach here, graceful shutdown succeeded within the deadline.
	// The signal goroutine (if active) dies with the process.
	signal.Stop(sigCh)

	return nil
}

func configureRuntimeLogger() func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	home, err := os.UserHomeDir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logDir := filepath.Join(home, ".local", "state", "shortsblocker")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logPath := filepath.Join(logDir, "shortsblockerd.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}

func printStartupBanner(cfg appConfig, hasSources bool) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	logo := cyan.Bold(true).Render(`
    ╔═╗╦ ╦╔═╗╦═╗╔╦╗╔═╗╔╗ ╦  ╔═╗╔═╗╦╔═╔═╗╦═╗
    ╚═╗╠═╣║ ║╠╦╝ ║ ╚═╗╠╩╗║  ║ ║║  ╠╩╗║╣ ╠╦╝
    ╚═╝╩ ╩╚═╝╩╚═ ╩ ╚═╝╚═╝╩═╝╚═╝╚═╝╩ ╩╚═╝╩╚═`)

	ver := dim.Render("v" + version)

	var lines []string
	lines = append(lines, "")
	lines = append(lines, logo)
	lines = append(lines, "    "+ver)
	lines = append(lines, "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator)
	lines = append(lines, "")

	// Gateway
	lines = append(lines, bold.Render("    Gateway"))
	lines = append(lines, "")

	if cfg.APIEnabled {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render(cfg.APIAddr)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", dot, dim.Render("disabled")))
	}

	if cfg.TCPEnabled {
		lines = append(lines, fmt.Sprintf("    %s  TCP Events     %s", check, cyan.Render(cfg.TCPAddr)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  TCP Events     %s", dot, dim.Render("disabled")))
	}

	if !hasSources {
		lines = append(lines, fmt.Sprintf("    %s  %s", dot, yellow.Render("No event sources active")))
	}
	lines = append(lines, "")

	// Detection
	lines = append(lines, bold.Render("    Detection"))
	lines = append(lines, "")

	lines = append(lines, fmt.Sprintf("    %s  Action         %s", check, cyan.Render(cfg.Action)))
	lines = append(lines, fmt.Sprintf("    %s  Cooldown       %s", check, dim.Render(cfg.Cooldown.String())))
	if cfg.DryRun {
		lines = append(lines, fmt.Sprintf("    %s  Dispatch       %s", dot, yellow.Render("dry-run (no adb)")))
	} else {
		target := cfg.AdbPath
		if cfg.AdbSerial != "" {
			target += " -s " + cfg.AdbSerial
		}
		lines = append(lines, fmt.Sprintf("    %s  Dispatch       %s", check, dim.Render(target)))
	}
	lines = append(lines, "")

	// Storage
	lines = append(lines, bold.Render("    Storage"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  Journal        %s", check, dim.Render(shortenPath(cfg.DBPath))))

	lines = append(lines, "")
	lines = append(lines, bold.Render("    Config"))
	lines = append(lines, "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}

	lines = append(lines, "")
	lines = append(lines, separator)
	lines = append(lines, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"))
	lines = append(lines, "")

	fmt.Println(strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
