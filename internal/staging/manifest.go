package staging

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
)

// Manifest summarizes a parse run. It rides along with the canonical dataset
// and is what failure reports print: the matched/total ratio is diagnostic
// only and never a failure trigger.
type Manifest struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Formats     []FormatStats `json:"formats"`
}

// FormatStats holds per-format parse counters.
type FormatStats struct {
	LogType    string        `json:"log_type"`
	Input      string        `json:"input"`
	TotalLines int           `json:"total_lines"`
	Matched    int           `json:"matched_lines"`
	Records    int           `json:"records"`
	Duration   time.Duration `json:"duration_ns"`
}

// WriteManifest writes the manifest as indented JSON.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadManifest reads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}
