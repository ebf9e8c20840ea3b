package extract

import (
	"regexp"
	"strconv"

	"github.com/logward/logward/internal/model"
)

// DataXceiver lines share a "yymmdd HHMMSS tid INFO dfs.DataNode$DataXceiver:"
// prefix and then diverge into three mutually exclusive events keyed on
// Receiving / Received / Served.
const transferPrefix = `^(?P<date>\d{6})\s+(?P<time>\d{6})\s+\d+\s+INFO\s+dfs\.DataNode\$DataXceiver:\s+`

var (
	receivingRe = regexp.MustCompile(transferPrefix +
		`Receiving\s+block\s+blk_(?P<block>-?\d+)` +
		`\s+src:\s+/(?P<src>[0-9.]+):\d+` +
		`\s+dest:\s+/(?P<dst>[0-9.]+):\d+$`)

	receivedRe = regexp.MustCompile(transferPrefix +
		`Received\s+block\s+blk_(?P<block>-?\d+)` +
		`.*?src:\s+/(?P<src>[0-9.]+):\d+` +
		`\s+dest:\s+/(?P<dst>[0-9.]+):\d+` +
		`(?:.*?size\s+(?P<size>\d+))?$`)

	servedRe = regexp.MustCompile(transferPrefix +
		`(?P<src>[0-9.]+):\d+\s+` +
		`Served\s+block\s+blk_(?P<block>-?\d+)` +
		`\s+to\s+/(?P<dst>[0-9.]+)$`)
)

type transferExtractor struct{}

func (transferExtractor) LogType() model.LogType { return model.BlockTransfer }

// Extract matches the three transfer sub-patterns in order. Block ids are
// signed: the real id space includes negative values. Only "received" lines
// may carry a size.
func (transferExtractor) Extract(line string) []model.Record {
	if m := receivingRe.FindStringSubmatch(line); m != nil {
		return transferRecord("receiving", groups(receivingRe, m))
	}
	if m := receivedRe.FindStringSubmatch(line); m != nil {
		return transferRecord("received", groups(receivedRe, m))
	}
	if m := servedRe.FindStringSubmatch(line); m != nil {
		return transferRecord("served", groups(servedRe, m))
	}
	return nil
}

func transferRecord(action string, g map[string]string) []model.Record {
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
		LogType:   model.BlockTransfer,
		Action:    action,
		Timestamp: ts,
		SourceIP:  g["src"],
		DestIP:    g["dst"],
		BlockID:   model.Int64(block),
		SizeBytes: size,
	}}
}
