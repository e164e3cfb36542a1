package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"

	"github.com/harborline/wayplan/internal/audit"
	"github.com/harborline/wayplan/internal/config"
	"github.com/harborline/wayplan/internal/export"
	"github.com/harborline/wayplan/internal/planner"
)

// runPlan generates one plan, streaming progress lines while the pipeline
// works, and prints or writes the result.
func runPlan(cfg *config.Config, flags cliFlags) error {
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set; add it to .env or the environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sink := audit.NewFileSink(cfg.TripLogDir)
	defer sink.Close()

	reporter := planner.NewProgressReporter()
	pipe := planner.NewPipeline(
		buildModel(cfg),
		buildWeather(cfg),
		buildPlaces(cfg),
		planner.WithConfig(plannerConfig(cfg)),
		planner.WithAuditSink(sink),
		planner.WithProgress(reporter),
	)

	tripID := uuid.NewString()
	fmt.Printf("Planning: %s\n", flags.Goal)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range reporter.Subscribe() {
			fmt.Println(planner.FormatProgress(ev))
		}
	}()

	plan, err := pipe.GeneratePlan(ctx, flags.Goal, tripID)
	reporter.Close()
	<-done

	fmt.Printf("\nTrip log: %s\n", sink.Path(tripID))

	if err != nil {
		var f *planner.Failure
		if errors.As(err, &f) && f.Retryable && f.RetryAfter > 0 {
			return fmt.Errorf("%s (retry in %ds)", f.Message, f.RetryAfter)
		}
		return err
	}

	if flags.Description != "" {
		plan.Description = flags.Description
	}

	if flags.Out != "" {
		if err := export.Write(plan, flags.Out); err != nil {
			return err
		}
		fmt.Printf("Plan written to %s\n", flags.Out)
		return nil
	}

	out, err := export.JSON(plan)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s\n", out)
	return nil
}
