// Package staging reads and writes the intermediate CSV dataset that sits
// between the parse workers and the bulk loader.
//
// Layout under the output directory:
//
//	tmp/log_entry_<slug>.csv         per-worker fact rows
//	tmp/log_access_detail_access.csv per-worker detail rows (access only)
//	tmp/action_type_<slug>.csv       per-worker observed actions
//	log_type.csv                     canonical dimension (from the enum)
//	action_type.csv                  canonical dimension (merged)
//	log_entry.csv                    canonical fact rows
//	log_access_detail.csv            canonical detail rows
//	manifest.json                    per-format matched/total summary
//
// Worker files are transient: the merge stage locates them by the naming
// convention above, concatenates them, and the canonical files are all the
// loader ever sees. Column orders are fixed and shared with the warehouse
// COPY path.
package staging

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/logward/logward/internal/model"
)

// Canonical dataset filenames.
const (
	TmpDirName       = "tmp"
	LogTypeFile      = "log_type.csv"
	ActionTypeFile   = "action_type.csv"
	EntryFile        = "log_entry.csv"
	AccessDetailFile = "log_access_detail.csv"
	ManifestFile     = "manifest.json"
)

// Worker staging filename conventions. The merge stage globs on the patterns.
const (
	WorkerEntryPattern  = "log_entry_*.csv"
	WorkerActionPattern = "action_type_*.csv"
	WorkerDetailPattern = "log_access_detail_*.csv"
)

// WorkerEntryFile returns the per-worker fact filename for a log type.
func WorkerEntryFile(t model.LogType) string {
	return fmt.Sprintf("log_entry_%s.csv", t.Slug())
}

// WorkerActionFile returns the per-worker observed-actions filename.
func WorkerActionFile(t model.LogType) string {
	return fmt.Sprintf("action_type_%s.csv", t.Slug())
}

// WorkerDetailFile returns the per-worker access-detail filename.
func WorkerDetailFile(t model.LogType) string {
	return fmt.Sprintf("log_access_detail_%s.csv", t.Slug())
}

// Column orders. These are load-bearing: the COPY path maps them positionally
// onto warehouse staging tables.
var (
	EntryColumns = []string{
		"id", "log_type_id", "action_type_id", "log_timestamp",
		"source_ip", "dest_ip", "block_id", "size_bytes",
	}
	DetailColumns = []string{
		"log_entry_id", "remote_name", "auth_user", "http_method",
		"resource", "http_status", "referrer", "user_agent",
	}
	DimensionColumns = []string{"id", "name"}
)

// ReadRows streams the data rows of a staging CSV, verifying the header width
// and handing each row to fn. The header row itself is skipped.
func ReadRows(path string, columns []string, fn func(row []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(columns)

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return fmt.Errorf("reading %s: empty file, expected header", path)
		}
		return fmt.Errorf("reading %s header: %w", path, err)
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}
