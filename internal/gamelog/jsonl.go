package gamelog

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// JSONLWriter appends one JSON object per event, optionally
// zstd-compressed. Safe for concurrent use by multiple games.
type JSONLWriter struct {
	mu  sync.Mutex
	f   io.Closer
	enc *zstd.Encoder
	w   *bufio.Writer
}

// NewJSONLWriter opens (or creates) the log file for appending. With
// compress set, entries are zstd-framed and the conventional extension is
// .jsonl.zst.
func NewJSONLWriter(path string, compress bool) (*JSONLWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	w := &JSONLWriter{f: f}
	if compress {
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		w.enc = enc
		w.w = bufio.NewWriterSize(enc, 64*1024)
	} else {
		w.w = bufio.NewWriter(f)
	}
	return w, nil
}

// NewJSONLWriterTo writes uncompressed entries to an arbitrary writer.
func NewJSONLWriterTo(out io.Writer) *JSONLWriter {
	return &JSONLWriter{w: bufio.NewWriter(out)}
}

// Record appends one event and flushes it.
func (l *JSONLWriter) Record(ev Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := l.w.Write(b); err != nil {
		return err
	}
	if err := l.w.WriteByte('\n'); err != nil {
		return err
	}
	return l.w.Flush()
}

// Close flushes buffers and closes the underlying file.
func (l *JSONLWriter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	if l.w != nil {
		firstErr = l.w.Flush()
	}
	if l.enc != nil {
		if err := l.enc.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if l.f != nil {
		if err := l.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
