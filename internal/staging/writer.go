package staging

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/logward/logward/internal/ident"
	"github.com/logward/logward/internal/model"
)

// EntryWriter writes fact rows to a worker staging CSV. Every row gets a
// fresh v4 entry key; the key only exists to join detail rows to their fact
// within the staging dataset — the warehouse primary key is minted later by
// the loader.
type EntryWriter struct {
	f      *os.File
	w      *csv.Writer
	closed bool
}

// NewEntryWriter creates the file and writes the header row.
func NewEntryWriter(path string) (*EntryWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(EntryColumns); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing %s header: %w", path, err)
	}
	return &EntryWriter{f: f, w: w}, nil
}

// Write appends one record and returns its staging entry key.
func (ew *EntryWriter) Write(rec model.Record) (uuid.UUID, error) {
	key := uuid.New()
	row := []string{
		key.String(),
		strconv.Itoa(int(rec.LogType.ID())),
		ident.ForAction(rec.Action).String(),
		rec.Timestamp.Format(time.RFC3339),
		rec.SourceIP,
		rec.DestIP,
		optInt(rec.BlockID),
		optInt(rec.SizeBytes),
	}
	if err := ew.w.Write(row); err != nil {
		return uuid.Nil, fmt.Errorf("writing entry row: %w", err)
	}
	return key, nil
}

// Close flushes and closes the file. Safe to call twice, so callers can
// defer it and still close early to check the error.
func (ew *EntryWriter) Close() error {
	if ew.closed {
		return nil
	}
	ew.closed = true
	ew.w.Flush()
	if err := ew.w.Error(); err != nil {
		ew.f.Close()
		return fmt.Errorf("flushing %s: %w", ew.f.Name(), err)
	}
	return ew.f.Close()
}

// DetailWriter writes access-detail rows keyed by staging entry key.
type DetailWriter struct {
	f      *os.File
	w      *csv.Writer
	closed bool
}

// NewDetailWriter creates the file and writes the header row.
func NewDetailWriter(path string) (*DetailWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(DetailColumns); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing %s header: %w", path, err)
	}
	return &DetailWriter{f: f, w: w}, nil
}

// Write appends one detail row for the fact identified by entryKey.
func (dw *DetailWriter) Write(entryKey uuid.UUID, d *model.AccessDetail) error {
	row := []string{
		entryKey.String(),
		d.RemoteName,
		d.AuthUser,
		d.HTTPMethod,
		d.Resource,
		strconv.Itoa(d.HTTPStatus),
		d.Referrer,
		d.UserAgent,
	}
	if err := dw.w.Write(row); err != nil {
		return fmt.Errorf("writing detail row: %w", err)
	}
	return nil
}

// Close flushes and closes the file. Safe to call twice.
func (dw *DetailWriter) Close() error {
	if dw.closed {
		return nil
	}
	dw.closed = true
	dw.w.Flush()
	if err := dw.w.Error(); err != nil {
		dw.f.Close()
		return fmt.Errorf("flushing %s: %w", dw.f.Name(), err)
	}
	return dw.f.Close()
}

// WriteActions writes an observed-actions dimension CSV, sorted by name so
// the output is deterministic for a given input.
func WriteActions(path string, actions map[string]uuid.UUID) error {
	names := make([]string, 0, len(actions))
	for n := range actions {
		names = append(names, n)
	}
	sort.Strings(names)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(DimensionColumns); err != nil {
		f.Close()
		return fmt.Errorf("writing %s header: %w", path, err)
	}
	for _, n := range names {
		if err := w.Write([]string{actions[n].String(), n}); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

func optInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
