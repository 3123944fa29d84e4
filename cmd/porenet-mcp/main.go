package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/porenet-mcp/internal/config"
	"github.com/ironsheep/porenet-mcp/internal/poreseg"
	"github.com/ironsheep/porenet-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("porenet-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("porenet-mcp - MCP server for pore network extraction")
			fmt.Println()
			fmt.Println("Usage: porenet-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  PORENET_MCP_CONFIG=path         TOML configuration file")
			fmt.Println("  PORENET_MCP_LOG_LEVEL=debug     Log stage timings (trace adds per-label detail)")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	switch cfg.Log.Level {
	case config.LevelTrace:
		poreseg.SetLogWriters(os.Stderr, os.Stderr, os.Stderr)
	case config.LevelDebug:
		poreseg.SetLogWriters(os.Stderr, os.Stderr, nil)
	default:
		poreseg.SetLogWriters(os.Stderr, nil, nil)
	}
	if cfg.Log.Level != config.LevelInfo {
		log.Printf("Porenet MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
