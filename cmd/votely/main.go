package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/votely/votely/internal/app"
	"github.com/votely/votely/internal/auth"
	"github.com/votely/votely/internal/config"
	"github.com/votely/votely/internal/logger"
)

var version = "dev"

func main() {
	cfg := config.Load()

	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	adminPw := flag.String("adminpw", cfg.AdminPassword, "Admin password (auto-generated if not set)")
	logLevel := flag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	baseURL := flag.String("baseurl", cfg.BaseURL, "Public base URL for share links (detected if not set)")
	httpLog := flag.Bool("httplog", cfg.HTTPLog, "Log every HTTP request")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Votely - Live Poll Voting Server

Usage:
  votely [options]

Options:
  -port int      HTTP server port (default 8081)
  -db string     SQLite database path (default "votely.db")
  -adminpw str   Admin password (auto-generated if not set)
  -loglevel str  Log level: debug, info, warn, error (default "info")
  -baseurl str   Public base URL for share links (detected if not set)
  -httplog       Log every HTTP request
  -version       Show version and exit
  -help          Show this help message

Every option can also be set through the environment (VOTELY_PORT,
VOTELY_DB, VOTELY_ADMIN_PASSWORD, VOTELY_LOG_LEVEL, VOTELY_BASE_URL,
VOTELY_HTTP_LOG), including via a .env file in the working directory.

Examples:
  votely                               # Run on port 8081 with votely.db
  votely -port 8080                    # Run on port 8080
  votely -db /data/polls.db            # Use custom database path
  votely -adminpw secret123            # Use specific admin password
  votely -baseurl https://vote.lan     # QR codes link to this host

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("votely %s\n", version)
		os.Exit(0)
	}

	// Setup admin authentication
	password := *adminPw
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	// Create logger with specified level
	appLog := logger.NewWithLevel(logger.ParseLevel(*logLevel))
	if *httpLog {
		appLog.EnableHTTPLogging()
	}

	a, err := app.New(appLog, *dbPath, *baseURL, adminAuth)
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}

	addr := fmt.Sprintf(":%d", *port)
	appLog.Info("Admin password", "password", password)

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		appLog.Info("Shutting down")
		os.Exit(0)
	}()

	if err := a.Run(addr); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
