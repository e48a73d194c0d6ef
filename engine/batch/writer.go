package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/compozy/hybridqa/engine/qa"
	"github.com/gofrs/flock"
)

// Writer appends answer records to a JSONL file. The file is guarded by an
// advisory lock next to it for as long as the writer is open.
type Writer struct {
	path string
	file *os.File
	buf  *bufio.Writer
	lock *flock.Flock
}

// Create truncates path and takes its lock. It fails when another process
// holds the lock.
func Create(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("output %s is locked by another run", path)
	}
	file, err := os.Create(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("create output %s: %w", path, err)
	}
	return &Writer{path: path, file: file, buf: bufio.NewWriter(file), lock: lock}, nil
}

// EncodeError reports a record that could not be encoded. Nothing was
// written for it, so the writer stays usable.
type EncodeError struct {
	ID  string
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode record %s: %v", e.ID, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Write encodes one record and flushes it to the file.
func (w *Writer) Write(answer *qa.Answer) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return &EncodeError{ID: answer.ID, Err: err}
	}
	if _, err := w.buf.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write record %s: %w", answer.ID, err)
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush record %s: %w", answer.ID, err)
	}
	return nil
}

// Close flushes, closes the file and releases the lock.
func (w *Writer) Close() error {
	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	unlockErr := w.lock.Unlock()
	_ = os.Remove(w.lock.Path())
	switch {
	case flushErr != nil:
		return fmt.Errorf("flush %s: %w", w.path, flushErr)
	case closeErr != nil:
		return fmt.Errorf("close %s: %w", w.path, closeErr)
	case unlockErr != nil:
		return fmt.Errorf("unlock %s: %w", w.path, unlockErr)
	}
	return nil
}
