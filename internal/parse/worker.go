// Package parse drives the extractors over whole input files and fans the
// three formats out to parallel workers.
package parse

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"

	"github.com/logward/logward/internal/extract"
	"github.com/logward/logward/internal/ident"
	"github.com/logward/logward/internal/model"
	"github.com/logward/logward/internal/staging"
)

// Retention cap per line. HDFS lines are short; access logs can carry long
// user agents and resources, so leave generous headroom. A line beyond the
// cap cannot be a valid record in any supported format: it is dropped and
// counted like any other non-matching line, never a failure.
const maxLineBytes = 1 << 20

// WorkerResult is what one parse worker hands back to the coordinator.
type WorkerResult struct {
	LogType model.LogType
	Input   string

	TotalLines int
	Matched    int
	Records    int
	Duration   time.Duration

	// Actions observed by this worker, each with its deterministic id.
	Actions map[string]uuid.UUID

	// Staging files written by this worker. DetailPath is empty for the
	// non-access formats.
	EntryPath  string
	DetailPath string
	ActionPath string
}

// RunWorker parses one input file to completion: open → per-line match →
// emit → EOF → flush staging outputs. A line either matches and emits or is
// dropped and counted; there is no retry and no mid-run abort. The worker
// never talks to its siblings — the deterministic action ids make
// coordination unnecessary.
func RunWorker(t model.LogType, inputPath, tmpDir string) (*WorkerResult, error) {
	started := time.Now()
	ex := extract.ForType(t)
	if ex == nil {
		return nil, fmt.Errorf("no extractor for log type %s", t.Name())
	}

	in, err := openInput(inputPath)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	res := &WorkerResult{
		LogType:   t,
		Input:     inputPath,
		Actions:   make(map[string]uuid.UUID),
		EntryPath: filepath.Join(tmpDir, staging.WorkerEntryFile(t)),
	}

	ew, err := staging.NewEntryWriter(res.EntryPath)
	if err != nil {
		return nil, err
	}
	defer ew.Close()

	var dw *staging.DetailWriter
	if t == model.Access {
		res.DetailPath = filepath.Join(tmpDir, staging.WorkerDetailFile(t))
		dw, err = staging.NewDetailWriter(res.DetailPath)
		if err != nil {
			return nil, err
		}
		defer dw.Close()
	}

	r := bufio.NewReaderSize(in, 64*1024)

	for {
		line, overlong, err := readLine(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", inputPath, err)
		}
		res.TotalLines++
		if overlong {
			continue
		}
		recs := ex.Extract(line)
		if len(recs) == 0 {
			continue
		}
		res.Matched++
		for _, rec := range recs {
			key, err := ew.Write(rec)
			if err != nil {
				return nil, err
			}
			if rec.Detail != nil && dw != nil {
				if err := dw.Write(key, rec.Detail); err != nil {
					return nil, err
				}
			}
			res.Actions[rec.Action] = ident.ForAction(rec.Action)
			res.Records++
		}
	}

	if err := ew.Close(); err != nil {
		return nil, err
	}
	if dw != nil {
		if err := dw.Close(); err != nil {
			return nil, err
		}
	}

	res.ActionPath = filepath.Join(tmpDir, staging.WorkerActionFile(t))
	if err := staging.WriteActions(res.ActionPath, res.Actions); err != nil {
		return nil, err
	}

	res.Duration = time.Since(started)
	log.Info().
		Str("log_type", t.Name()).
		Str("input", inputPath).
		Int("matched", res.Matched).
		Int("total", res.TotalLines).
		Int("records", res.Records).
		Dur("took", res.Duration).
		Msg("worker finished")

	return res, nil
}

// readLine returns the next line without its terminator. Lines longer than
// maxLineBytes are consumed to the end but reported as overlong; a trailing
// line without a newline still counts. io.EOF means no more lines.
func readLine(r *bufio.Reader) (line string, overlong bool, err error) {
	var buf []byte
	for {
		frag, err := r.ReadSlice('\n')
		if overlong || len(buf)+len(frag) > maxLineBytes {
			overlong = true
		} else {
			buf = append(buf, frag...)
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF {
			if len(buf) == 0 && !overlong {
				return "", false, io.EOF
			}
			err = nil
		}
		if err != nil {
			return "", false, err
		}
		line = strings.TrimSuffix(string(buf), "\n")
		line = strings.TrimSuffix(line, "\r")
		return line, overlong, nil
	}
}

// openInput opens a log file, transparently decompressing ".gz" inputs.
func openInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &gzipInput{zr: zr, f: f}, nil
}

type gzipInput struct {
	zr *gzip.Reader
	f  *os.File
}

func (g *gzipInput) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipInput) Close() error {
	if err := g.zr.Close(); err != nil {
		g.f.Close()
		return err
	}
	return g.f.Close()
}
