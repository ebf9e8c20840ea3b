package warehouse

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/logward/logward/internal/ident"
	"github.com/logward/logward/internal/model"
	"github.com/logward/logward/internal/staging"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "copy", want: ModeCopy},
		{in: "batch", want: ModeBatch},
		{in: "", wantErr: true},
		{in: "bulk", wantErr: true},
		{in: "COPY", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseMode(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMode(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func testBatch(t *testing.T) []staging.Entry {
	t.Helper()
	ts := time.Date(2023, 11, 2, 9, 30, 0, 0, time.UTC)
	return []staging.Entry{
		{
			Key:          uuid.New(),
			LogTypeID:    model.Access.ID(),
			ActionTypeID: ident.ForAction("GET"),
			Timestamp:    ts,
			SourceIP:     "10.0.0.1",
			SizeBytes:    model.Int64(512),
		},
		{
			Key:          uuid.New(),
			LogTypeID:    model.BlockTransfer.ID(),
			ActionTypeID: ident.ForAction("received"),
			Timestamp:    ts.Add(time.Minute),
			SourceIP:     "10.0.0.2",
			DestIP:       "10.0.0.3",
			BlockID:      model.Int64(-42),
		},
	}
}

func TestEntryArrays(t *testing.T) {
	batch := testBatch(t)
	cols, err := entryArrays(batch, func(id uuid.UUID) (uuid.UUID, error) {
		return id, nil
	})
	if err != nil {
		t.Fatalf("entryArrays: %v", err)
	}

	if len(cols.logTypes) != len(batch) {
		t.Fatalf("got %d rows, want %d", len(cols.logTypes), len(batch))
	}
	if cols.logTypes[0] != model.Access.ID() || cols.logTypes[1] != model.BlockTransfer.ID() {
		t.Errorf("log type order not preserved: %v", cols.logTypes)
	}
	if cols.actions[0] != ident.ForAction("GET").String() {
		t.Errorf("action[0] = %q", cols.actions[0])
	}

	// Absence must travel as NULL, not as a zero value.
	if cols.destIPs[0] != nil {
		t.Errorf("entry 0 has no dest ip, got %q", *cols.destIPs[0])
	}
	if cols.blockIDs[0] != nil {
		t.Errorf("entry 0 has no block id, got %d", *cols.blockIDs[0])
	}
	if cols.sizes[1] != nil {
		t.Errorf("entry 1 has no size, got %d", *cols.sizes[1])
	}
	if cols.sourceIPs[1] == nil || *cols.sourceIPs[1] != "10.0.0.2" {
		t.Errorf("source ip[1] = %v", cols.sourceIPs[1])
	}
	if cols.blockIDs[1] == nil || *cols.blockIDs[1] != -42 {
		t.Errorf("block id[1] = %v", cols.blockIDs[1])
	}
}

func TestEntryArraysResolverErrorPropagates(t *testing.T) {
	batch := testBatch(t)
	_, err := entryArrays(batch, func(id uuid.UUID) (uuid.UUID, error) {
		return uuid.Nil, errors.New("action id not in dataset catalog")
	})
	if err == nil {
		t.Fatal("expected resolver error to propagate")
	}
}

func TestBatchDetailRows(t *testing.T) {
	batch := testBatch(t)
	ids := []int64{101, 102}
	details := map[uuid.UUID]staging.Detail{
		batch[0].Key: {
			EntryKey:   batch[0].Key,
			RemoteName: "-",
			AuthUser:   "-",
			HTTPMethod: "GET",
			Resource:   "/index.html",
			HTTPStatus: 200,
			UserAgent:  "Mozilla/5.0",
		},
	}

	rows := batchDetailRows(batch, ids, details)
	if len(rows) != 1 {
		t.Fatalf("got %d detail rows, want 1", len(rows))
	}
	if rows[0][0] != int64(101) {
		t.Errorf("detail attached to fact id %v, want 101", rows[0][0])
	}
	if rows[0][3] != "GET" || rows[0][5] != 200 {
		t.Errorf("detail columns out of order: %v", rows[0])
	}
	// Empty referrer becomes NULL.
	if rows[0][6] != (*string)(nil) {
		t.Errorf("referrer = %v, want nil", rows[0][6])
	}
}

func TestActionCacheRejectsUnknownID(t *testing.T) {
	cache := newActionCache(map[string]uuid.UUID{
		"GET": ident.ForAction("GET"),
	})
	if _, ok := cache.names[ident.ForAction("GET")]; !ok {
		t.Fatal("catalog id missing from reverse map")
	}
	if name := cache.names[ident.ForAction("GET")]; name != "GET" {
		t.Errorf("reverse map gave %q, want GET", name)
	}
	if _, ok := cache.names[ident.ForAction("PUT")]; ok {
		t.Error("unknown action unexpectedly present")
	}
}
