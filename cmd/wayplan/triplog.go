package main

import (
	"fmt"
	"os"

	"github.com/harborline/wayplan/internal/audit"
	"github.com/harborline/wayplan/internal/config"
)

// runTripLog prints the audit file recorded for one trip.
func runTripLog(cfg *config.Config, tripID string) error {
	path := audit.NewFileSink(cfg.TripLogDir).Path(tripID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no trip log for %s under %s", tripID, cfg.TripLogDir)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	_, err = os.Stdout.Write(data)
	return err
}
