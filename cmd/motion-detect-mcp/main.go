package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/motion-detect-mcp/internal/config"
	"github.com/ironsheep/motion-detect-mcp/internal/logger"
	"github.com/ironsheep/motion-detect-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := ""

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version", "-v", "version":
			fmt.Printf("motion-detect-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "--config", "-c":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--config requires a path")
				os.Exit(2)
			}
			i++
			configPath = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown option: %s\n", args[i])
			os.Exit(2)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// stdout is for MCP protocol
	cfg.Log.Output = "stderr"
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Debug("starting motion detect MCP server",
		"version", Version,
		"build_time", BuildTime,
		"commit", GitCommit,
		"predictor", cfg.Predictor.Mode,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.Version = Version
	srv := server.New(cfg, log)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("motion-detect-mcp - MCP server for motion detection masks")
	fmt.Println()
	fmt.Println("Usage: motion-detect-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config, -c PATH    YAML configuration file")
	fmt.Println("  --version, -v        Print version information")
	fmt.Println("  --help, -h           Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=PATH    Configuration file when --config is not given\n", config.EnvConfigPath)
	fmt.Printf("  %s=debug    Enable debug logging\n", config.EnvLogLevel)
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
