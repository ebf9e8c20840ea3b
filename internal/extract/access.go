package extract

import (
	"regexp"
	"strconv"

	"github.com/logward/logward/internal/model"
)

// Combined log format: ip identd user [timestamp] "METHOD resource HTTP/x" status size "referrer" "agent".
var accessRe = regexp.MustCompile(
	`^(?P<ip>\S+)\s+` +
		`(?P<remote>\S+)\s+` +
		`(?P<user>\S+)\s+` +
		`\[(?P<ts>[^\]]+)\]\s+` +
		`"(?P<method>[A-Za-z]+)\s+(?P<resource>[^"]+?)\s+HTTP/[^"]+"\s+` +
		`(?P<status>\d{3})\s+` +
		`(?P<size>\S+)\s+` +
		`"(?P<referrer>[^"]*)"\s+` +
		`"(?P<agent>[^"]*)"`,
)

type accessExtractor struct{}

func (accessExtractor) LogType() model.LogType { return model.Access }

// Extract yields one record plus its AccessDetail per matched line. The HTTP
// method is the action name. A size of "-" means absent, not zero; any other
// non-numeric size or status drops the line.
func (accessExtractor) Extract(line string) []model.Record {
	m := accessRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	g := groups(accessRe, m)

	ts, err := parseApacheTime(g["ts"])
	if err != nil {
		return nil
	}

	status, err := strconv.Atoi(g["status"])
	if err != nil {
		return nil
	}

	var size *int64
	if g["size"] != "-" {
		n, err := strconv.ParseInt(g["size"], 10, 64)
		if err != nil || n < 0 {
			return nil
		}
		size = model.Int64(n)
	}

	referrer := g["referrer"]
	if referrer == "-" {
		referrer = ""
	}

	return []model.Record{{
		LogType:   model.Access,
		Action:    g["method"],
		Timestamp: ts,
		SourceIP:  g["ip"],
		SizeBytes: size,
		Detail: &model.AccessDetail{
			RemoteName: g["remote"],
			AuthUser:   g["user"],
			HTTPMethod: g["method"],
			Resource:   g["resource"],
			HTTPStatus: status,
			Referrer:   referrer,
			UserAgent:  g["agent"],
		},
	}}
}

// groups maps named capture groups of re onto their submatch values.
func groups(re *regexp.Regexp, match []string) map[string]string {
	g := make(map[string]string, len(match))
	for i, name := range re.SubexpNames() {
		if name != "" && i < len(match) {
			g[name] = match[i]
		}
	}
	return g
}
