// Loom — workflow planner and executor for LLM tool services.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loomworks/loom/internal/api"
	"github.com/loomworks/loom/internal/infra/config"
	"github.com/loomworks/loom/internal/infra/sqlite"
	"github.com/loomworks/loom/internal/server"
	"github.com/loomworks/loom/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("loom", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}

	if *showHelp {
		printHelp(out)
		return 0
	}

	command := "serve"
	if fs.NArg() > 0 {
		command = fs.Arg(0)
	}

	switch command {
	case "serve":
		if err := serve(); err != nil {
			fmt.Fprintf(out, "error: %v\n", err) //nolint:errcheck
			return 1
		}
		return 0
	case "version":
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	default:
		fmt.Fprintf(out, "unknown command: %s\n", command) //nolint:errcheck
		printHelp(out)
		return 2
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	if err := sqlite.MigrateUp(db); err != nil {
		db.Close()
		return err
	}

	router, err := api.NewRouter(cfg, db)
	if err != nil {
		db.Close()
		return err
	}

	srvConfig := server.DefaultConfig()
	srvConfig.Host = cfg.HTTPHost
	srvConfig.Port = cfg.HTTPPort
	srv := server.NewServer(db, router, srvConfig)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(context.Background())
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func printHelp(out io.Writer) {
	helpText := `Loom - workflow planner and executor for LLM tool services

Usage:
  loom [options] [command]

Options:
  --version    Show version information
  --help       Show this help message

Commands:
  serve        Start the HTTP server (default)
  version      Show version information

Examples:
  loom --version
  loom serve`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
