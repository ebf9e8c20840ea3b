package query

import (
	"regexp"
	"strconv"
	"testing"
	"time"
)

var bindRe = regexp.MustCompile(`\$(\d+)`)

// maxBind returns the highest positional placeholder in a SQL string.
func maxBind(sql string) int {
	max := 0
	for _, m := range bindRe.FindAllStringSubmatch(sql, -1) {
		n, _ := strconv.Atoi(m[1])
		if n > max {
			max = n
		}
	}
	return max
}

func TestCatalogIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, q := range Catalog() {
		if q.ID == "" {
			t.Error("catalog entry with empty id")
		}
		if seen[q.ID] {
			t.Errorf("duplicate query id %q", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestCatalogParamsMatchPlaceholders(t *testing.T) {
	for _, q := range Catalog() {
		if got, want := maxBind(q.SQL), len(q.Params); got != want {
			t.Errorf("%s: SQL uses %d placeholders but declares %d params", q.ID, got, want)
		}
	}
}

func TestByID(t *testing.T) {
	q, ok := ByID("totals-per-type")
	if !ok {
		t.Fatal("totals-per-type missing from catalog")
	}
	if len(q.Params) != 2 {
		t.Errorf("totals-per-type declares %d params, want 2", len(q.Params))
	}
	if _, ok := ByID("no-such-query"); ok {
		t.Error("unexpected hit for unknown id")
	}
}

func TestArgs(t *testing.T) {
	q, _ := ByID("totals-per-day")

	args, err := q.Args(map[string]string{
		"action": "GET",
		"from":   "2023-11-01T00:00:00Z",
		"to":     "2023-11-03T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("Args: %v", err)
	}
	if len(args) != 3 {
		t.Fatalf("got %d args, want 3", len(args))
	}
	if args[0] != "GET" {
		t.Errorf("args[0] = %v", args[0])
	}
	from, ok := args[1].(time.Time)
	if !ok || !from.Equal(time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("args[1] = %v", args[1])
	}
}

func TestArgsValidation(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		values map[string]string
	}{
		{
			name:   "missing required param",
			query:  "totals-per-day",
			values: map[string]string{"action": "GET", "from": "2023-11-01T00:00:00Z"},
		},
		{
			name:   "bad timestamp",
			query:  "totals-per-type",
			values: map[string]string{"from": "yesterday", "to": "2023-11-03T00:00:00Z"},
		},
		{
			name:   "bad date",
			query:  "top-action-per-ip",
			values: map[string]string{"day": "02/11/2023"},
		},
		{
			name:   "bad int",
			query:  "small-access",
			values: map[string]string{"size": "lots"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, ok := ByID(tc.query)
			if !ok {
				t.Fatalf("query %s missing", tc.query)
			}
			if _, err := q.Args(tc.values); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
