// Package store persists and resumes a translation job's sidecar files:
// the full Textures bundle, and the diagnostic reprocessing range list the
// rewriter writes when a batch's response shape did not match.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mapomagpie/lottr/internal/texture"
)

func texturesPath(name string) string { return name + ".textures.json" }

// DiagnosticPath is also where the rewriter writes mismatched ranges, and
// is read back as specify_range on the next run. Both sides of the
// diagnostic feedback loop use this one name, so it never goes stale.
func DiagnosticPath(name string) string { return name + ".diagnostic_failed_range.json" }

// Load reads an existing sidecar for name, returning (nil, false) if none
// exists; this is the extractor's resume hook.
func Load(name string) (*texture.Textures, bool) {
	data, err := os.ReadFile(texturesPath(name))
	if err != nil {
		return nil, false
	}
	var tex texture.Textures
	if err := json.Unmarshal(data, &tex); err != nil {
		return nil, false
	}
	return &tex, true
}

// Save writes the full Textures bundle, used both as the 60-second
// checkpoint and the final write on supervisor exit.
func Save(tex *texture.Textures) error {
	data, err := json.Marshal(tex)
	if err != nil {
		return fmt.Errorf("store: encode textures: %w", err)
	}
	if err := os.WriteFile(texturesPath(tex.Name), data, 0o644); err != nil {
		return fmt.Errorf("store: write textures sidecar: %w", err)
	}
	return nil
}

// LoadSpecifyRange reads a prior run's diagnostic ranges, if any. Absence
// or a malformed file is not an error: specify_range is simply nil, and
// the orchestrator falls back to curr_index.
func LoadSpecifyRange(name string) [][2]int {
	data, err := os.ReadFile(DiagnosticPath(name))
	if err != nil {
		return nil
	}
	var ranges [][2]int
	if err := json.Unmarshal(data, &ranges); err != nil {
		return nil
	}
	return ranges
}

// SaveDiagnostic writes the rewriter's list of shape-mismatched ranges. An
// empty list deletes any existing sidecar instead of writing one, so a
// clean run clears a prior run's diagnostics.
func SaveDiagnostic(name string, ranges [][2]int) error {
	path := DiagnosticPath(name)
	if len(ranges) == 0 {
		_ = os.Remove(path)
		return nil
	}
	data, err := json.Marshal(ranges)
	if err != nil {
		return fmt.Errorf("store: encode diagnostic ranges: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("store: write diagnostic sidecar: %w", err)
	}
	return nil
}
