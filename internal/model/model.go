// Package model defines the normalized record types shared by the parse,
// merge, and load stages, plus the closed LogType dimension.
package model

import "time"

// LogType identifies one of the three supported input formats. The integer
// value doubles as the warehouse dimension id: ids are assigned by enumeration
// order starting at 1 and are fixed at compile time, never derived from data.
type LogType int

const (
	Access LogType = iota + 1
	BlockTransfer
	BlockPlacement
)

// AllLogTypes returns the closed set of supported log types in enumeration
// order.
func AllLogTypes() []LogType {
	return []LogType{Access, BlockTransfer, BlockPlacement}
}

// ID returns the stable dimension id for the log type.
func (t LogType) ID() int16 { return int16(t) }

// Name returns the dimension name stored in the warehouse.
func (t LogType) Name() string {
	switch t {
	case Access:
		return "ACCESS"
	case BlockTransfer:
		return "BLOCK_TRANSFER"
	case BlockPlacement:
		return "BLOCK_PLACEMENT"
	}
	return "UNKNOWN"
}

// Filename returns the canonical input filename for the log type. Each type
// maps to exactly one file in the input directory.
func (t LogType) Filename() string {
	switch t {
	case Access:
		return "access_log_full"
	case BlockTransfer:
		return "HDFS_DataXceiver.log"
	case BlockPlacement:
		return "HDFS_FS_Namesystem.log"
	}
	return ""
}

// Slug returns a short lowercase token used in worker staging filenames.
func (t LogType) Slug() string {
	switch t {
	case Access:
		return "access"
	case BlockTransfer:
		return "transfer"
	case BlockPlacement:
		return "placement"
	}
	return "unknown"
}

// Record is one normalized log event, ready for staging and warehouse
// insertion. A Record is created by exactly one parse worker and is immutable
// once its extractor returns it. The warehouse primary key does not exist at
// this point; it is minted by the bulk loader.
//
// Optional fields are pointers: nil means absent, which the loader maps to
// SQL NULL. A size of zero and an absent size are distinct values.
type Record struct {
	LogType   LogType
	Action    string
	Timestamp time.Time
	SourceIP  string // empty = absent
	DestIP    string // empty = absent
	BlockID   *int64 // block ids are signed; negative values occur
	SizeBytes *int64 // non-negative when present
	Detail    *AccessDetail // non-nil only for Access records
}

// AccessDetail is the 1:1 fact extension carried only by Access records.
type AccessDetail struct {
	RemoteName string
	AuthUser   string
	HTTPMethod string
	Resource   string
	HTTPStatus int
	Referrer   string // empty = absent (the log literal "-")
	UserAgent  string
}

// Int64 returns a pointer to v, for building optional Record fields.
func Int64(v int64) *int64 { return &v }
