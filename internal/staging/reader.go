package staging

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Entry is one typed fact row read back from the canonical dataset.
type Entry struct {
	Key          uuid.UUID
	LogTypeID    int16
	ActionTypeID uuid.UUID
	Timestamp    time.Time
	SourceIP     string // empty = NULL
	DestIP       string // empty = NULL
	BlockID      *int64
	SizeBytes    *int64
}

// Detail is one typed access-detail row read back from the canonical dataset.
type Detail struct {
	EntryKey   uuid.UUID
	RemoteName string
	AuthUser   string
	HTTPMethod string
	Resource   string
	HTTPStatus int
	Referrer   string // empty = NULL
	UserAgent  string
}

// ReadEntries streams typed fact rows from a canonical entry CSV. Unlike the
// parse phase, a malformed staging row here is an error: the dataset is our
// own output, so damage means the pipeline is broken, not the input.
func ReadEntries(path string, fn func(Entry) error) error {
	return ReadRows(path, EntryColumns, func(row []string) error {
		e, err := parseEntry(row)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return fn(e)
	})
}

// ReadDetails streams typed detail rows from a canonical detail CSV.
func ReadDetails(path string, fn func(Detail) error) error {
	return ReadRows(path, DetailColumns, func(row []string) error {
		d, err := parseDetail(row)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return fn(d)
	})
}

// ReadActionCatalog reads an action dimension CSV into a name → id map.
// Both worker action files and the canonical catalog share the format.
func ReadActionCatalog(path string) (map[string]uuid.UUID, error) {
	actions := make(map[string]uuid.UUID)
	err := ReadRows(path, DimensionColumns, func(row []string) error {
		id, err := uuid.Parse(row[0])
		if err != nil {
			return fmt.Errorf("%s: bad action id %q: %w", path, row[0], err)
		}
		actions[row[1]] = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return actions, nil
}

func parseEntry(row []string) (Entry, error) {
	key, err := uuid.Parse(row[0])
	if err != nil {
		return Entry{}, fmt.Errorf("bad entry key %q: %w", row[0], err)
	}
	ltID, err := strconv.ParseInt(row[1], 10, 16)
	if err != nil {
		return Entry{}, fmt.Errorf("bad log_type_id %q: %w", row[1], err)
	}
	actionID, err := uuid.Parse(row[2])
	if err != nil {
		return Entry{}, fmt.Errorf("bad action_type_id %q: %w", row[2], err)
	}
	ts, err := time.Parse(time.RFC3339, row[3])
	if err != nil {
		return Entry{}, fmt.Errorf("bad log_timestamp %q: %w", row[3], err)
	}
	blockID, err := parseOptInt(row[6])
	if err != nil {
		return Entry{}, fmt.Errorf("bad block_id %q: %w", row[6], err)
	}
	size, err := parseOptInt(row[7])
	if err != nil {
		return Entry{}, fmt.Errorf("bad size_bytes %q: %w", row[7], err)
	}
	return Entry{
		Key:          key,
		LogTypeID:    int16(ltID),
		ActionTypeID: actionID,
		Timestamp:    ts,
		SourceIP:     row[4],
		DestIP:       row[5],
		BlockID:      blockID,
		SizeBytes:    size,
	}, nil
}

func parseDetail(row []string) (Detail, error) {
	key, err := uuid.Parse(row[0])
	if err != nil {
		return Detail{}, fmt.Errorf("bad entry key %q: %w", row[0], err)
	}
	status, err := strconv.Atoi(row[5])
	if err != nil {
		return Detail{}, fmt.Errorf("bad http_status %q: %w", row[5], err)
	}
	return Detail{
		EntryKey:   key,
		RemoteName: row[1],
		AuthUser:   row[2],
		HTTPMethod: row[3],
		Resource:   row[4],
		HTTPStatus: status,
		Referrer:   row[6],
		UserAgent:  row[7],
	}, nil
}

func parseOptInt(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
