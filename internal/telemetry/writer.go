// Package telemetry writes structured, newline-delimited JSON logs for
// connection lifecycle and protocol-audit events, rotating to a fresh
// file every hour the way the game's world logs do.
package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"
)

// Writer appends JSON records to an hourly-rotated file under baseDir
// named "<prefix>-<hour>.jsonl".
type Writer struct {
	baseDir string
	prefix  string

	mu      sync.Mutex
	curHour string
	f       *os.File
	w       *bufio.Writer
	written uint64
}

// NewWriter returns a Writer; the first call to Write creates baseDir
// and opens the file for the current hour.
func NewWriter(baseDir, prefix string) *Writer {
	return &Writer{baseDir: baseDir, prefix: prefix}
}

// Write marshals v to JSON and appends it as one line, rotating to a new
// hourly file first if the hour has turned over since the last write.
func (w *Writer) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := strftime.Format("%Y-%m-%d-%H", time.Now().UTC())
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	n, err := w.w.Write(b)
	if err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.written += uint64(n) + 1
	return w.w.Flush()
}

// BytesWritten reports the total size written so far, in a human
// readable form (e.g. "4.2 MB"), for inclusion in startup/shutdown logs.
func (w *Writer) BytesWritten() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return humanize.Bytes(w.written)
}

func (w *Writer) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	w.f = f
	w.w = bufio.NewWriterSize(f, 64*1024)
	w.curHour = hour
	return nil
}

func (w *Writer) closeLocked() error {
	if w.w != nil {
		_ = w.w.Flush()
	}
	var err error
	if w.f != nil {
		err = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err
}

// Close flushes and closes the currently open file, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *Writer) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl", w.prefix, hour))
}
