// Presentation web server for go-paradigmas
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	prof "github.com/go-while/go-cpu-mem-profiler"
	"github.com/go-while/go-paradigmas/internal/config"
	"github.com/go-while/go-paradigmas/internal/content"
	"github.com/go-while/go-paradigmas/internal/database"
	"github.com/go-while/go-paradigmas/internal/web"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var appVersion = "-unset-"

var (
	// command-line flags
	configFile    string
	listRoutes    bool
	exportContent string
	pprofAddr     string
	shutdownWait  time.Duration
)

// flagKeys maps command-line flags to their config keys
var flagKeys = map[string]string{
	"host":      "web.listen_host",
	"port":      "web.listen_port",
	"ssl":       "web.ssl",
	"cert":      "web.cert_file",
	"key":       "web.key_file",
	"dev":       "web.dev",
	"templates": "web.templates_dir",
	"static":    "web.static_dir",
	"db":        "database.path",
}

var Prof *prof.Profiler

func main() {
	config.AppVersion = appVersion

	flags := pflag.NewFlagSet("go-paradigmas", pflag.ExitOnError)
	flags.StringVar(&configFile, "config", "", "Config file (yaml, json or toml)")
	flags.String("host", config.DefaultListenHost, "Web server listen host")
	flags.Int("port", config.DefaultListenPort, "Web server port")
	flags.Bool("ssl", false, "Enable SSL")
	flags.String("cert", "", "SSL certificate file (/path/to/fullchain.pem)")
	flags.String("key", "", "SSL key file (/path/to/privkey.pem)")
	flags.Bool("dev", false, "Development mode: templates and static files from disk, live reload")
	flags.String("templates", "internal/web/templates", "Templates directory used in dev mode")
	flags.String("static", "internal/web/static", "Static files directory used in dev mode")
	flags.String("db", "", "SQLite file for page view counters (empty keeps counters in memory)")
	flags.BoolVar(&listRoutes, "list-routes", false, "Print the content routes and exit")
	flags.StringVar(&exportContent, "export-content", "", "Write all page content as JSON to this file ('-' for stdout) and exit")
	flags.StringVar(&pprofAddr, "pprof", "", "Serve pprof on this address (e.g. :51111)")
	flags.DurationVar(&shutdownWait, "shutdown-timeout", 10*time.Second, "Time to wait for active requests on shutdown")
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("[WEB]: %v", err)
	}

	v := viper.New()
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			log.Fatalf("[CONFIG]: Failed to bind flag --%s: %v", name, err)
		}
	}
	mainConfig, err := config.Load(v, configFile)
	if err != nil {
		log.Fatalf("[CONFIG]: %v", err)
	}

	store, err := content.Load()
	if err != nil {
		log.Fatalf("[CONTENT]: Failed to load content: %v", err)
	}
	log.Printf("[CONTENT]: Loaded %s", store)

	if listRoutes {
		printRoutes(os.Stdout, store)
		os.Exit(0)
	}
	if exportContent != "" {
		if err := writeContentExport(exportContent, store); err != nil {
			log.Fatalf("[CONTENT]: Export failed: %v", err)
		}
		os.Exit(0)
	}

	if pprofAddr != "" {
		Prof = prof.NewProf()
		go Prof.PprofWeb(pprofAddr)
		log.Printf("[WEB]: pprof listening on %s", pprofAddr)
	}

	protocol := "http"
	if mainConfig.Web.SSL {
		protocol = "https"
	}
	log.Printf("Starting go-paradigmas web server on %s://%s (version: %s, dev: %t)",
		protocol, mainConfig.Web.ListenAddr(), appVersion, mainConfig.Web.Dev)

	views, err := database.NewViewStore(mainConfig.Database)
	if err != nil {
		log.Fatalf("[DB]: Failed to initialize page view store: %v", err)
	}

	server, err := web.NewServer(mainConfig, store, views)
	if err != nil {
		log.Fatalf("[WEB]: Failed to create web server: %v", err)
	}

	// Set up cross-platform signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start web server in goroutine to make it non-blocking
	webServerErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			webServerErrChan <- err
		}
	}()

	log.Printf("[WEB]: Server started successfully. Press Ctrl+C to gracefully shutdown...")

	updateFileChan := make(chan bool, 1)
	go monitorUpdateFile(updateFileChan)

	exitCode := 0
	select {
	case <-sigChan:
		log.Printf("[WEB]: Received shutdown signal, initiating graceful shutdown...")
	case err := <-webServerErrChan:
		log.Printf("[WEB]: Web server failed: %v", err)
		exitCode = 1
	case <-updateFileChan:
		log.Printf("[WEB]: Update file detected, initiating graceful shutdown for update...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[WEB]: Error during web server shutdown: %v", err)
	}

	// pending page views are written by Close
	if err := views.Close(); err != nil {
		log.Printf("[DB]: Failed to close page view store: %v", err)
		exitCode = 1
	} else {
		log.Printf("[DB]: Page view store closed")
	}

	log.Printf("[WEB]: Graceful shutdown completed")
	if exitCode != 0 {
		cancel()
		os.Exit(exitCode)
	}
} // end main
