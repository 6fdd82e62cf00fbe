// Copyright 2025 The TopicServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the topic search server and its interactive CLI.

TopicServe asks Gemini for recent news on a topic, ranks and summarizes the
articles, and keeps the keywords of the latest search in a prefix index so
that a topic input can suggest completions while the reader types.

# Usage

Start the server with default settings:

	topicserve

Run in CLI mode with debug logs and alphabetical suggestions:

	topicserve -c -d -order alphabetical

# Configuration

Runtime configuration lives in a TOML file which is created with defaults
when missing:

	[server]
	max_limit = 64
	max_prefix = 60
	max_topic = 120

	[suggest]
	limit = 5
	order = "traversal"
	history = true
	history_size = 200

	[gemini]
	model = "gemini-2.5-flash"
	image_model = "imagen-4.0-generate-001"
	api_key_env = "GEMINI_API_KEY"
	images = true
	rate_per_minute = 10
	image_workers = 3
	timeout = "90s"

	[store]
	enabled = true
	path = "topicserve.db"

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. See package
server for the message shapes.

	{"id": "req1", "action": "search", "topic": "Climate policy"}
	{"id": "req2", "p": "cli", "l": 5}

# Command Line Flags

	-c  Run in CLI mode instead of server mode
	-d  Enable debug mode with detailed logging
	-config string
	    Path to a config file
	-db string
	    Path to the reader database (overrides [store] path)
	-limit int
	    Number of suggestions to return (default from config)
	-order string
	    Suggestion order: traversal or alphabetical
	-version
	    Show current version
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bastiangx/topicserve/internal/cli"
	"github.com/bastiangx/topicserve/internal/logger"
	"github.com/bastiangx/topicserve/internal/utils"
	"github.com/bastiangx/topicserve/pkg/config"
	"github.com/bastiangx/topicserve/pkg/gemini"
	"github.com/bastiangx/topicserve/pkg/server"
	"github.com/bastiangx/topicserve/pkg/session"
	"github.com/bastiangx/topicserve/pkg/store"
	"github.com/bastiangx/topicserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0"
	AppName = "topicserve"
	gh      = "https://github.com/bastiangx/topicserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires config, store, Gemini client and session, then hands over to
// the server or the CLI.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	configPath := flag.String("config", "", "Path to config file")
	dbPath := flag.String("db", "", "Path to the reader database")
	limit := flag.Int("limit", 0, "Number of suggestions to return")
	order := flag.String("order", "", "Suggestion order: traversal or alphabetical")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(*debugMode)

	cfg, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activePath))

	if *limit > 0 {
		cfg.Suggest.Limit = *limit
	}
	if *order != "" {
		cfg.Suggest.Order = *order
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	suggestOrder, err := suggest.ParseOrder(cfg.Suggest.Order)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()

	var st *store.Store
	if cfg.Store.Enabled {
		st = openStore(ctx, cfg, *dbPath)
		if st != nil {
			defer st.Close()
		}
	}

	opts := []suggest.Option{suggest.WithOrder(suggestOrder)}
	if cfg.Suggest.History {
		history := suggest.NewTopicHistory(cfg.Suggest.HistorySize)
		if st != nil {
			if counts, err := st.TopicCounts(ctx); err == nil {
				history.Populate(counts)
			} else {
				log.Warnf("Could not load topic history: %v", err)
			}
		}
		opts = append(opts, suggest.WithHistory(history))
	}
	completer := suggest.NewCompleter(opts...)

	client, err := gemini.New(ctx, gemini.Options{
		APIKey:     cfg.APIKey(),
		Model:      cfg.Gemini.Model,
		ImageModel: cfg.Gemini.ImageModel,
	})
	if err != nil {
		log.Fatalf("Failed to init Gemini client: %v", err)
	}

	sessionOpts := []session.Option{
		session.WithLimit(cfg.Suggest.Limit),
		session.WithRateLimit(cfg.Gemini.RatePerMinute),
		session.WithImageWorkers(cfg.Gemini.ImageWorkers),
		session.WithTimeout(cfg.TimeoutDuration()),
	}
	if cfg.Gemini.Images {
		sessionOpts = append(sessionOpts, session.WithIllustrator(client))
	}
	if st != nil {
		sessionOpts = append(sessionOpts, session.WithRecorder(st))
	}
	ctrl := session.New(completer, client, client, sessionOpts...)
	log.Debug("Session ready", "id", ctrl.ID(), "order", suggestOrder, "limit", cfg.Suggest.Limit)

	if *cliMode {
		log.SetReportTimestamp(false)
		handler := cli.NewInputHandler(ctrl, st, os.Stdout, cfg.Suggest.Limit, cfg.Server.MaxPrefix)
		if err := handler.Start(ctx, os.Stdin); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	var srvStore server.Store
	if st != nil {
		srvStore = st
	}
	srv := server.NewServer(ctrl, srvStore, server.Options{
		MaxLimit:  cfg.Server.MaxLimit,
		MaxPrefix: cfg.Server.MaxPrefix,
		MaxTopic:  cfg.Server.MaxTopic,
	})

	showStartupInfo(activePath)

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// openStore opens the reader database and registers today's visit. Failures
// leave the store disabled.
func openStore(ctx context.Context, cfg *config.Config, override string) *store.Store {
	path := cfg.Store.Path
	if override != "" {
		path = override
	}
	if pr, err := utils.NewPathResolver(); err == nil {
		path = pr.ResolvePath(path)
	}

	st, err := store.Open(path)
	if err != nil {
		log.Warnf("Reader store disabled: %v", err)
		return nil
	}
	if streak, err := st.TouchVisit(ctx, time.Now()); err == nil {
		log.Debugf("Daily streak: %d", streak)
	}
	return st
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ TopicServe ] News search with keyword suggestions")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(configPath string) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("============")
	println(" TopicServe ")
	println("============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("config: ( %s )", config.GetActiveConfigPath(configPath))
	log.Info("status: ready")
	println("============")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
