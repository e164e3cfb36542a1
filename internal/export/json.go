// Package export renders generated plans for CLI output and file export.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harborline/wayplan/internal/planner"
)

// JSON renders the plan as indented JSON.
func JSON(plan *planner.Plan) ([]byte, error) {
	raw, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: encode plan: %w", err)
	}
	return raw, nil
}

// Write renders the plan to path, choosing the format from the file
// extension: .md and .markdown produce the Markdown itinerary, .mmd and
// .mermaid a Mermaid timeline, anything else indented JSON.
func Write(plan *planner.Plan, path string) error {
	var (
		raw []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		raw = []byte(Markdown(plan))
	case ".mmd", ".mermaid":
		raw = []byte(Mermaid(plan))
	default:
		raw, err = JSON(plan)
		if err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}
