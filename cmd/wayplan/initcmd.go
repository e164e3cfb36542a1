package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// starterConfig is written as wayplan.yml by -init.
const starterConfig = `# wayplan project configuration. Secrets belong in .env or the
# environment, not here.
geminiModel: gemini-1.5-flash
addr: ":8080"
tripLogDir: trip_logs

# Planner tunables (defaults shown).
#defaultTripDays: 3
#maxConcurrentDays: 4
#repairAttempts: 1
#advisoryRainThreshold: 70
`

// starterEnv is written as .env.example by -init.
const starterEnv = `# Copy to .env and fill in. wayplan loads .env on startup.
GEMINI_API_KEY=
WEATHER_API_KEY=
WEB_SEARCH_API_KEY=
#MONGODB_URI=mongodb://localhost:27017
#REDIS_ADDR=localhost:6379
#WAYPLAN_ADDR=:8080
`

// runInit scaffolds a starter wayplan.yml and .env.example in dir.
func runInit(dir string, force bool) error {
	files := []struct {
		name string
		body string
	}{
		{"wayplan.yml", starterConfig},
		{".env.example", starterEnv},
	}

	for _, f := range files {
		dest := filepath.Join(dir, f.name)
		if !force {
			if _, err := os.Stat(dest); err == nil {
				fmt.Printf("  skipped %s (exists, use -force to overwrite)\n", f.name)
				continue
			}
		}
		if err := os.WriteFile(dest, []byte(f.body), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
		fmt.Printf("  created %s\n", f.name)
	}

	fmt.Println("\nSetup complete. Put your API keys in .env (see .env.example).")
	return nil
}
