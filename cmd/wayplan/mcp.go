package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/harborline/wayplan/internal/config"
	"github.com/harborline/wayplan/internal/mcptools"
	"github.com/harborline/wayplan/internal/planner"
)

// runMCP exposes the planner as MCP tools, over stdio by default or over
// streamable HTTP when addr is set. Logs go to stderr so the stdio
// transport stays clean.
func runMCP(cfg *config.Config, addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg)
	defer closeStore()

	sink, closeSink := buildSink(cfg)
	defer closeSink()

	plannerCfg := plannerConfig(cfg)
	model := buildModel(cfg)

	pipe := planner.NewPipeline(
		model,
		buildWeather(cfg),
		buildPlaces(cfg),
		planner.WithConfig(plannerCfg),
		planner.WithAuditSink(sink),
	)

	svc := mcptools.NewPlannerService(pipe, planner.NewAnalyzer(model, plannerCfg), store)
	server := mcptools.NewServer(svc, version)

	if addr != "" {
		log.Printf("wayplan MCP server listening on %s", addr)
		return mcptools.RunHTTP(ctx, server, addr)
	}
	return mcptools.RunStdio(ctx, server)
}
