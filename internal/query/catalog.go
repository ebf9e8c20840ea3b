// Package query exposes a fixed catalog of parameterized warehouse queries
// over HTTP. The catalog is read-only analytics against the loaded tables;
// the pipeline itself never goes through this layer.
package query

import (
	"fmt"
	"strconv"
	"time"

	"github.com/logward/logward/internal/model"
)

// ParamKind constrains how a query parameter is validated before it reaches
// SQL. Everything travels as a positional bind argument; kinds exist so a bad
// value fails at the HTTP boundary with a useful message instead of a
// Postgres cast error.
type ParamKind string

const (
	KindString    ParamKind = "string"
	KindInt       ParamKind = "int"
	KindDate      ParamKind = "date"      // 2006-01-02
	KindTimestamp ParamKind = "timestamp" // RFC 3339
)

// Param is one required input of a canned query, in bind order.
type Param struct {
	Name string    `json:"name"`
	Kind ParamKind `json:"kind"`
}

// Query is one entry of the canned catalog.
type Query struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Params []Param `json:"params"`
	SQL    string  `json:"-"`
}

// Args validates the raw parameter values against the query's declared
// params and returns them as bind arguments in declaration order. Every
// declared parameter is required.
func (q Query) Args(values map[string]string) ([]any, error) {
	args := make([]any, 0, len(q.Params))
	for _, p := range q.Params {
		raw, ok := values[p.Name]
		if !ok || raw == "" {
			return nil, fmt.Errorf("missing parameter %q", p.Name)
		}
		v, err := convertParam(p, raw)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func convertParam(p Param, raw string) (any, error) {
	switch p.Kind {
	case KindString:
		return raw, nil
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %q is not an integer", p.Name, raw)
		}
		return n, nil
	case KindDate:
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return nil, fmt.Errorf("parameter %q: %q is not a date (want 2006-01-02)", p.Name, raw)
		}
		return raw, nil
	case KindTimestamp:
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %q is not an RFC 3339 timestamp", p.Name, raw)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("parameter %q has unknown kind %q", p.Name, p.Kind)
	}
}

// Catalog returns the canned queries in display order.
func Catalog() []Query {
	return catalog
}

// ByID looks up a canned query.
func ByID(id string) (Query, bool) {
	for _, q := range catalog {
		if q.ID == id {
			return q, true
		}
	}
	return Query{}, false
}

var catalog = []Query{
	{
		ID:    "totals-per-type",
		Title: "Total entries per log type within a time range",
		Params: []Param{
			{Name: "from", Kind: KindTimestamp},
			{Name: "to", Kind: KindTimestamp},
		},
		SQL: `
SELECT t.name AS log_type, COUNT(*) AS total
FROM log_entry e
JOIN log_type t ON t.id = e.log_type_id
WHERE e.log_timestamp >= $1 AND e.log_timestamp < $2
GROUP BY t.name
ORDER BY total DESC`,
	},
	{
		ID:    "totals-per-day",
		Title: "Total entries per day for one action within a time range",
		Params: []Param{
			{Name: "action", Kind: KindString},
			{Name: "from", Kind: KindTimestamp},
			{Name: "to", Kind: KindTimestamp},
		},
		SQL: `
SELECT e.log_timestamp::date AS day, COUNT(*) AS total
FROM log_entry e
JOIN action_type a ON a.id = e.action_type_id
WHERE a.name = $1 AND e.log_timestamp >= $2 AND e.log_timestamp < $3
GROUP BY day
ORDER BY day`,
	},
	{
		ID:    "top-action-per-ip",
		Title: "Most common action per source IP on one day",
		Params: []Param{
			{Name: "day", Kind: KindDate},
		},
		SQL: `
SELECT DISTINCT ON (e.source_ip) e.source_ip::text AS source_ip, a.name AS action, COUNT(*) AS total
FROM log_entry e
JOIN action_type a ON a.id = e.action_type_id
WHERE e.source_ip IS NOT NULL
  AND e.log_timestamp >= $1::date
  AND e.log_timestamp < $1::date + INTERVAL '1 day'
GROUP BY e.source_ip, a.name
ORDER BY e.source_ip, total DESC`,
	},
	{
		ID:    "top-blocks",
		Title: "Top five block ids by actions per day within a day range",
		Params: []Param{
			{Name: "from", Kind: KindDate},
			{Name: "to", Kind: KindDate},
		},
		SQL: `
SELECT e.block_id, e.log_timestamp::date AS day, COUNT(*) AS total
FROM log_entry e
WHERE e.block_id IS NOT NULL
  AND e.log_timestamp >= $1::date
  AND e.log_timestamp < $2::date + INTERVAL '1 day'
GROUP BY e.block_id, day
ORDER BY total DESC
LIMIT 5`,
	},
	{
		ID:    "shared-referrers",
		Title: "Referrers that led to more than one resource",
		SQL: `
SELECT d.referrer, COUNT(DISTINCT d.resource) AS resources
FROM log_access_detail d
WHERE d.referrer IS NOT NULL
GROUP BY d.referrer
HAVING COUNT(DISTINCT d.resource) > 1
ORDER BY resources DESC`,
	},
	{
		ID:    "second-resource",
		Title: "Second most requested resource",
		SQL: `
SELECT d.resource, COUNT(*) AS total
FROM log_access_detail d
GROUP BY d.resource
ORDER BY total DESC
OFFSET 1 LIMIT 1`,
	},
	{
		ID:    "small-access",
		Title: "Access entries with a response size below a threshold",
		Params: []Param{
			{Name: "size", Kind: KindInt},
		},
		SQL: `
SELECT e.id, e.log_timestamp, e.source_ip::text AS source_ip, e.size_bytes,
       d.remote_name, d.auth_user, d.http_method, d.resource,
       d.http_status, d.referrer, d.user_agent
FROM log_entry e
JOIN log_access_detail d ON d.log_entry_id = e.id
WHERE e.size_bytes < $1
ORDER BY e.size_bytes`,
	},
	{
		ID:    "replicated-and-served-day",
		Title: "Blocks replicated and served on the same day",
		SQL: `
SELECT r.block_id
FROM log_entry r
JOIN action_type ra ON ra.id = r.action_type_id AND ra.name = 'replicate'
JOIN log_entry s ON s.block_id = r.block_id
JOIN action_type sa ON sa.id = s.action_type_id AND sa.name = 'served'
WHERE r.log_timestamp::date = s.log_timestamp::date
GROUP BY r.block_id
ORDER BY r.block_id`,
	},
	{
		ID:    "replicated-and-served-hour",
		Title: "Blocks replicated and served within the same day and hour",
		SQL: `
SELECT r.block_id
FROM log_entry r
JOIN action_type ra ON ra.id = r.action_type_id AND ra.name = 'replicate'
JOIN log_entry s ON s.block_id = r.block_id
JOIN action_type sa ON sa.id = s.action_type_id AND sa.name = 'served'
WHERE date_trunc('hour', r.log_timestamp) = date_trunc('hour', s.log_timestamp)
GROUP BY r.block_id
ORDER BY r.block_id`,
	},
	{
		ID:    "firefox-version",
		Title: "Access entries from a specific Firefox version",
		Params: []Param{
			{Name: "version", Kind: KindString},
		},
		SQL: `
SELECT e.id, e.log_timestamp, e.source_ip::text AS source_ip, d.resource, d.user_agent
FROM log_entry e
JOIN log_access_detail d ON d.log_entry_id = e.id
WHERE d.user_agent LIKE '%Firefox/' || $1 || '%'
ORDER BY e.log_timestamp`,
	},
	{
		ID:    "ips-by-method",
		Title: "IPs that issued one HTTP method within a time range",
		Params: []Param{
			{Name: "method", Kind: KindString},
			{Name: "from", Kind: KindTimestamp},
			{Name: "to", Kind: KindTimestamp},
		},
		SQL: `
SELECT DISTINCT e.source_ip::text AS source_ip
FROM log_entry e
JOIN action_type a ON a.id = e.action_type_id
WHERE a.name = $1 AND e.source_ip IS NOT NULL
  AND e.log_timestamp >= $2 AND e.log_timestamp < $3
ORDER BY source_ip`,
	},
	{
		ID:    "ips-by-two-methods",
		Title: "IPs that issued both of two HTTP methods within a time range",
		Params: []Param{
			{Name: "method", Kind: KindString},
			{Name: "method2", Kind: KindString},
			{Name: "from", Kind: KindTimestamp},
			{Name: "to", Kind: KindTimestamp},
		},
		SQL: `
SELECT e.source_ip::text AS source_ip
FROM log_entry e
JOIN action_type a ON a.id = e.action_type_id
WHERE a.name = $1 AND e.source_ip IS NOT NULL
  AND e.log_timestamp >= $3 AND e.log_timestamp < $4
INTERSECT
SELECT e.source_ip::text
FROM log_entry e
JOIN action_type a ON a.id = e.action_type_id
WHERE a.name = $2 AND e.source_ip IS NOT NULL
  AND e.log_timestamp >= $3 AND e.log_timestamp < $4
ORDER BY source_ip`,
	},
	{
		ID:    "ips-four-methods",
		Title: "IPs that issued four or more distinct HTTP methods within a time range",
		Params: []Param{
			{Name: "from", Kind: KindTimestamp},
			{Name: "to", Kind: KindTimestamp},
		},
		SQL: fmt.Sprintf(`
SELECT e.source_ip::text AS source_ip, COUNT(DISTINCT a.name) AS methods
FROM log_entry e
JOIN action_type a ON a.id = e.action_type_id
WHERE e.log_type_id = %d AND e.source_ip IS NOT NULL
  AND e.log_timestamp >= $1 AND e.log_timestamp < $2
GROUP BY e.source_ip
HAVING COUNT(DISTINCT a.name) >= 4
ORDER BY source_ip`, model.Access.ID()),
	},
}
