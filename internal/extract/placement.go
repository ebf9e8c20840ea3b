package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/logward/logward/internal/model"
)

// FSNamesystem lines carry the same compact-clock prefix as transfer lines
// and split into two mutually exclusive events: a blockMap update and a
// replication request listing one or more destination datanodes.
const placementPrefix = `^(?P<date>\d{6})\s+(?P<time>\d{6})\s+\d+\s+INFO\s+dfs\.FSNamesystem:\s+BLOCK\*\s+`

var (
	updateRe = regexp.MustCompile(placementPrefix +
		`NameSystem\.\w+:\s+blockMap updated:\s+` +
		`(?P<ip>[0-9.]+):\d+.*?` +
		`blk_(?P<block>-?\d+)` +
		`(?:\s+size\s+(?P<size>\d+))?$`)

	replicateRe = regexp.MustCompile(placementPrefix +
		`ask\s+(?P<src>[0-9.]+):\d+` +
		`\s+to\s+replicate\s+` +
		`blk_(?P<block>-?\d+)` +
		`\s+to\s+datanode\(s\)\s+` +
		`(?P<dests>\S.*)$`)
)

type placementExtractor struct{}

func (placementExtractor) LogType() model.LogType { return model.BlockPlacement }

// Extract yields one record for "update" lines and one record per destination
// token for "replicate" lines. The updated address is the block's new
// location, so it lands in DestIP. Malformed destination tokens are skipped
// individually; their siblings on the same line still emit.
func (placementExtractor) Extract(line string) []model.Record {
	if m := updateRe.FindStringSubmatch(line); m != nil {
		return updateRecord(groups(updateRe, m))
	}
	if m := replicateRe.FindStringSubmatch(line); m != nil {
		return replicateRecords(groups(replicateRe, m))
	}
	return nil
}

func updateRecord(g map[string]string) []model.Record {
	ts, err := parseCompactTime(g["date"], g["time"])
	if err != nil {
		return nil
	}

	block, err := strconv.ParseInt(g["block"], 10, 64)
	if err != nil {
		return nil
	}

	var size *int64
	if s := g["size"]; s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil
		}
		size = model.Int64(n)
	}

	return []model.Record{{
		LogType:   model.BlockPlacement,
		Action:    "update",
		Timestamp: ts,
		DestIP:    g["ip"],
		BlockID:   model.Int64(block),
		SizeBytes: size,
	}}
}

func replicateRecords(g map[string]string) []model.Record {
	ts, err := parseCompactTime(g["date"], g["time"])
	if err != nil {
		return nil
	}

	block, err := strconv.ParseInt(g["block"], 10, 64)
	if err != nil {
		return nil
	}

	var recs []model.Record
	for _, tok := range strings.Fields(g["dests"]) {
		// Destination tokens are ip:port. A malformed token drops only
		// itself; siblings on the same line still emit.
		host, _, ok := strings.Cut(tok, ":")
		if !ok || host == "" {
			continue
		}
		recs = append(recs, model.Record{
			LogType:   model.BlockPlacement,
			Action:    "replicate",
			Timestamp: ts,
			SourceIP:  g["src"],
			DestIP:    host,
			BlockID:   model.Int64(block),
		})
	}
	return recs
}
