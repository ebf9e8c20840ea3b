package staging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/logward/logward/internal/ident"
	"github.com/logward/logward/internal/model"
)

func TestEntryWriterReadEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log_entry_transfer.csv")

	ew, err := NewEntryWriter(path)
	if err != nil {
		t.Fatalf("NewEntryWriter() error: %v", err)
	}

	rec := model.Record{
		LogType:   model.BlockTransfer,
		Action:    "received",
		Timestamp: time.Date(2008, 11, 9, 20, 35, 18, 0, time.UTC),
		SourceIP:  "10.0.0.1",
		DestIP:    "10.0.0.2",
		BlockID:   model.Int64(-77),
		SizeBytes: model.Int64(67108864),
	}
	key, err := ew.Write(rec)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	// Absent optionals must come back absent, not zero.
	sparse := model.Record{
		LogType:   model.BlockPlacement,
		Action:    "update",
		Timestamp: time.Date(2008, 11, 10, 10, 23, 43, 0, time.UTC),
		DestIP:    "10.0.0.3",
	}
	if _, err := ew.Write(sparse); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := ew.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	var got []Entry
	if err := ReadEntries(path, func(e Entry) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("ReadEntries() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d entries, want 2", len(got))
	}

	e := got[0]
	if e.Key != key {
		t.Errorf("Key = %s, want %s", e.Key, key)
	}
	if e.LogTypeID != model.BlockTransfer.ID() {
		t.Errorf("LogTypeID = %d", e.LogTypeID)
	}
	if e.ActionTypeID != ident.ForAction("received") {
		t.Errorf("ActionTypeID = %s", e.ActionTypeID)
	}
	if !e.Timestamp.Equal(rec.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", e.Timestamp, rec.Timestamp)
	}
	if e.BlockID == nil || *e.BlockID != -77 {
		t.Errorf("BlockID = %v, want -77", e.BlockID)
	}
	if e.SizeBytes == nil || *e.SizeBytes != 67108864 {
		t.Errorf("SizeBytes = %v", e.SizeBytes)
	}

	s := got[1]
	if s.BlockID != nil || s.SizeBytes != nil {
		t.Errorf("sparse optionals not absent: block=%v size=%v", s.BlockID, s.SizeBytes)
	}
	if s.SourceIP != "" || s.DestIP != "10.0.0.3" {
		t.Errorf("sparse addresses: src=%q dst=%q", s.SourceIP, s.DestIP)
	}
}

func TestDetailWriterReadDetails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log_access_detail_access.csv")

	dw, err := NewDetailWriter(path)
	if err != nil {
		t.Fatalf("NewDetailWriter() error: %v", err)
	}
	key := uuid.New()
	d := &model.AccessDetail{
		RemoteName: "-",
		AuthUser:   "frank",
		HTTPMethod: "GET",
		Resource:   "/index.html",
		HTTPStatus: 200,
		UserAgent:  "curl/7.64",
	}
	if err := dw.Write(key, d); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := dw.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	var got []Detail
	if err := ReadDetails(path, func(d Detail) error {
		got = append(got, d)
		return nil
	}); err != nil {
		t.Fatalf("ReadDetails() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("read %d details, want 1", len(got))
	}
	if got[0].EntryKey != key {
		t.Errorf("EntryKey = %s, want %s", got[0].EntryKey, key)
	}
	if got[0].HTTPStatus != 200 || got[0].Resource != "/index.html" {
		t.Errorf("detail = %+v", got[0])
	}
	if got[0].Referrer != "" {
		t.Errorf("Referrer = %q, want empty", got[0].Referrer)
	}
}

func TestWriteActionsSortedAndReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "action_type_access.csv")

	actions := map[string]uuid.UUID{
		"POST": ident.ForAction("POST"),
		"GET":  ident.ForAction("GET"),
	}
	if err := WriteActions(path, actions); err != nil {
		t.Fatalf("WriteActions() error: %v", err)
	}

	got, err := ReadActionCatalog(path)
	if err != nil {
		t.Fatalf("ReadActionCatalog() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("catalog has %d actions, want 2", len(got))
	}
	for name, id := range actions {
		if got[name] != id {
			t.Errorf("catalog[%q] = %s, want %s", name, got[name], id)
		}
	}

	// Output order is deterministic: names sorted.
	var names []string
	if err := ReadRows(path, DimensionColumns, func(row []string) error {
		names = append(names, row[1])
		return nil
	}); err != nil {
		t.Fatalf("ReadRows() error: %v", err)
	}
	if names[0] != "GET" || names[1] != "POST" {
		t.Errorf("action order = %v, want [GET POST]", names)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFile)

	m := Manifest{
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Formats: []FormatStats{
			{LogType: "ACCESS", Input: "access_log_full", TotalLines: 10, Matched: 8, Records: 8},
		},
	}
	if err := WriteManifest(path, m); err != nil {
		t.Fatalf("WriteManifest() error: %v", err)
	}
	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest() error: %v", err)
	}
	if len(got.Formats) != 1 || got.Formats[0].Matched != 8 || got.Formats[0].TotalLines != 10 {
		t.Errorf("manifest = %+v", got)
	}
}
