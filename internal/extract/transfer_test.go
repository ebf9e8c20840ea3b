package extract

import (
	"testing"
	"time"

	"github.com/logward/logward/internal/model"
)

func TestTransferReceiving(t *testing.T) {
	ex := ForType(model.BlockTransfer)

	line := "081109 203518 143 INFO dfs.DataNode$DataXceiver: Receiving block blk_-1608999687919862906 src: /10.250.19.102:54106 dest: /10.250.19.102:50010"
	recs := ex.Extract(line)
	if len(recs) != 1 {
		t.Fatalf("Extract() returned %d records, want 1", len(recs))
	}
	r := recs[0]

	if r.Action != "receiving" {
		t.Errorf("Action = %q, want receiving", r.Action)
	}
	if r.BlockID == nil || *r.BlockID != -1608999687919862906 {
		t.Errorf("BlockID = %v, want -1608999687919862906", r.BlockID)
	}
	if r.SourceIP != "10.250.19.102" || r.DestIP != "10.250.19.102" {
		t.Errorf("SourceIP/DestIP = %q/%q", r.SourceIP, r.DestIP)
	}
	if r.SizeBytes != nil {
		t.Errorf("SizeBytes = %d, receiving lines never carry a size", *r.SizeBytes)
	}
	want := time.Date(2008, time.November, 9, 20, 35, 18, 0, time.UTC)
	if !r.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", r.Timestamp, want)
	}
	if r.Detail != nil {
		t.Error("Detail must be nil for transfer records")
	}
}

func TestTransferReceived(t *testing.T) {
	ex := ForType(model.BlockTransfer)

	t.Run("with size", func(t *testing.T) {
		line := "081109 204106 329 INFO dfs.DataNode$DataXceiver: Received block blk_-6952295868487656571 src: /10.251.215.16:52002 dest: /10.251.215.16:50010 of size 67108864"
		recs := ex.Extract(line)
		if len(recs) != 1 {
			t.Fatalf("Extract() returned %d records, want 1", len(recs))
		}
		r := recs[0]
		if r.Action != "received" {
			t.Errorf("Action = %q, want received", r.Action)
		}
		if r.SizeBytes == nil || *r.SizeBytes != 67108864 {
			t.Errorf("SizeBytes = %v, want 67108864", r.SizeBytes)
		}
	})

	t.Run("without size", func(t *testing.T) {
		line := "081109 204106 329 INFO dfs.DataNode$DataXceiver: Received block blk_123 src: /10.0.0.1:50010 dest: /10.0.0.2:50010"
		recs := ex.Extract(line)
		if len(recs) != 1 {
			t.Fatalf("Extract() returned %d records, want 1", len(recs))
		}
		if recs[0].SizeBytes != nil {
			t.Errorf("SizeBytes = %d, want absent", *recs[0].SizeBytes)
		}
	})
}

func TestTransferServed(t *testing.T) {
	ex := ForType(model.BlockTransfer)

	line := "081109 204525 512 INFO dfs.DataNode$DataXceiver: 10.251.73.220:50010 Served block blk_-6670958622368987959 to /10.251.73.221"
	recs := ex.Extract(line)
	if len(recs) != 1 {
		t.Fatalf("Extract() returned %d records, want 1", len(recs))
	}
	r := recs[0]
	if r.Action != "served" {
		t.Errorf("Action = %q, want served", r.Action)
	}
	if r.SourceIP != "10.251.73.220" {
		t.Errorf("SourceIP = %q", r.SourceIP)
	}
	if r.DestIP != "10.251.73.221" {
		t.Errorf("DestIP = %q", r.DestIP)
	}
	if r.SizeBytes != nil {
		t.Error("served lines never carry a size")
	}
}

func TestTransferDrops(t *testing.T) {
	ex := ForType(model.BlockTransfer)

	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"wrong component", "081109 203518 143 INFO dfs.FSNamesystem: Receiving block blk_1 src: /1.2.3.4:1 dest: /1.2.3.5:1"},
		{"unknown verb", "081109 203518 143 INFO dfs.DataNode$DataXceiver: Deleting block blk_1"},
		{"truncated", "081109 203518 143 INFO dfs.DataNode$DataXceiver: Receiving block blk_1 src: /1.2.3.4:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if recs := ex.Extract(tt.line); recs != nil {
				t.Errorf("Extract(%q) = %d records, want none", tt.line, len(recs))
			}
		})
	}
}
