// Command wayplan turns natural-language trip goals into day-by-day plans
// using a generative model, enriched with weather forecasts and venue
// lookups. It runs as a one-shot CLI, a REST API server, or an MCP tool
// server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/harborline/wayplan/internal/config"
	"github.com/harborline/wayplan/internal/genai"
	"github.com/harborline/wayplan/internal/places"
	"github.com/harborline/wayplan/internal/planner"
	"github.com/harborline/wayplan/internal/weather"
)

// CLI flags parsed from command line.
type cliFlags struct {
	Goal        string
	Description string
	Out         string
	Serve       bool
	ServeMCP    bool
	MCPAddr     string
	Init        bool
	Force       bool
	TripLog     string
	Version     bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("wayplan", flag.ContinueOnError)
	fs.StringVar(&flags.Goal, "goal", "", "natural-language trip goal, e.g. 'plan a 3-day trip to Jaipur'")
	fs.StringVar(&flags.Description, "description", "", "description stored with the plan instead of the generated one")
	fs.StringVar(&flags.Out, "out", "", "write the plan to a file (.json, .md, or .mmd, picked by extension)")
	fs.BoolVar(&flags.Serve, "serve", false, "run the REST API server")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as MCP server over stdio")
	fs.StringVar(&flags.MCPAddr, "mcp-addr", "", "serve MCP over streamable HTTP on this address instead of stdio")
	fs.BoolVar(&flags.Init, "init", false, "scaffold wayplan.yml and .env.example in the current directory")
	fs.BoolVar(&flags.Force, "force", false, "overwrite existing files during -init")
	fs.StringVar(&flags.TripLog, "trip-log", "", "print the audit log for a trip id")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	if flags.Init {
		return runInit(".", flags.Force)
	}

	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; using system environment")
	}

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	switch {
	case flags.TripLog != "":
		return runTripLog(cfg, flags.TripLog)
	case flags.ServeMCP || flags.MCPAddr != "":
		return runMCP(cfg, flags.MCPAddr)
	case flags.Serve:
		return runServe(cfg)
	case flags.Goal != "":
		return runPlan(cfg, flags)
	}

	fs.Usage()
	return fmt.Errorf("nothing to do: pass -goal, -serve, -serve-mcp, -init, or -trip-log")
}

// ---------------------------------------------------------------------------
// Shared wiring
// ---------------------------------------------------------------------------

// plannerConfig maps the project tunables onto the planner defaults.
func plannerConfig(cfg *config.Config) planner.Config {
	pc := planner.DefaultConfig()
	if cfg.DefaultTripDays > 0 {
		pc.DefaultDurationDays = cfg.DefaultTripDays
	}
	if cfg.MaxConcurrentDays > 0 {
		pc.MaxConcurrentDays = cfg.MaxConcurrentDays
	}
	if cfg.RepairAttempts > 0 {
		pc.RepairAttempts = cfg.RepairAttempts
	}
	if cfg.AdvisoryRainThreshold > 0 {
		pc.RainAdvisoryThreshold = cfg.AdvisoryRainThreshold
	}
	return pc
}

// buildModel returns the Gemini client, or nil when no key is configured.
// The pipeline reports a nil model as an internal failure per request.
func buildModel(cfg *config.Config) genai.Model {
	if cfg.GeminiAPIKey == "" {
		return nil
	}
	var opts []genai.Option
	if cfg.GeminiModel != "" {
		opts = append(opts, genai.WithModel(cfg.GeminiModel))
	}
	return genai.NewGemini(cfg.GeminiAPIKey, opts...)
}

// buildWeather returns the forecast provider, or nil so enrichment degrades.
func buildWeather(cfg *config.Config) weather.Provider {
	if cfg.WeatherAPIKey == "" {
		return nil
	}
	return weather.NewOpenWeather(cfg.WeatherAPIKey)
}

// buildPlaces returns the venue search provider, or nil so enrichment
// degrades.
func buildPlaces(cfg *config.Config) places.Provider {
	if cfg.SearchAPIKey == "" {
		return nil
	}
	return places.NewSerpAPI(cfg.SearchAPIKey)
}
