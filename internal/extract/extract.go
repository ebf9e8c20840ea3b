// Package extract turns raw log lines into normalized records.
//
// One extractor exists per supported log format. Extractors are stateless:
// Extract maps a single line to zero or more records and never keeps state
// between lines, so a worker can drive one over a file of any size. A line
// that matches none of a format's patterns simply yields no records — the
// caller counts it and moves on.
package extract

import "github.com/logward/logward/internal/model"

// Extractor maps one raw input line to zero or more normalized records.
// Most lines yield at most one record; the block-placement replicate event
// fans out to one record per destination host.
type Extractor interface {
	// LogType reports which format this extractor understands.
	LogType() model.LogType
	// Extract returns the records for the line, or nil when the line does
	// not match. Field-level conversion failures (bad digits, malformed
	// timestamps) are treated as a non-match, never an error.
	Extract(line string) []model.Record
}

// ForType returns the extractor for a log type.
func ForType(t model.LogType) Extractor {
	switch t {
	case model.Access:
		return accessExtractor{}
	case model.BlockTransfer:
		return transferExtractor{}
	case model.BlockPlacement:
		return placementExtractor{}
	}
	return nil
}
