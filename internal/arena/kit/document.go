package kit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "embed"

	"github.com/louisbranch/ffa-arena/internal/arena/item"
	apperrors "github.com/louisbranch/ffa-arena/internal/platform/errors"
)

//go:embed defaults/kit.json
var defaultKit []byte

// DefaultKit returns a copy of the bundled default kit document.
func DefaultKit() []byte {
	return bytes.Clone(defaultKit)
}

// Document is the persisted kit document.
type Document interface {
	// Category returns the raw value stored under the category key.
	Category(c Category) (any, bool)
	// SetCategory replaces the entries of one category, keyed by decimal slot
	// index, leaving the other categories untouched.
	SetCategory(c Category, entries map[string]item.Record) error
}

// FileDocument is a JSON kit document on disk.
type FileDocument struct {
	path string

	mu   sync.Mutex
	data map[string]any
}

// OpenFile opens the kit document at path. When the file does not exist it is
// created from seed first.
func OpenFile(path string, seed []byte) (*FileDocument, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("kit path is required")
	}
	path = filepath.Clean(path)

	payload, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := writeFileAtomic(path, seed); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeKitUnavailable, "seed kit document", err)
		}
		payload = seed
	} else if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeKitUnavailable, "read kit document", err)
	}

	data, err := decodeDocument(payload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeKitUnavailable, "parse kit document "+path, err)
	}
	return &FileDocument{path: path, data: data}, nil
}

// Path returns the file backing the document.
func (d *FileDocument) Path() string {
	return d.path
}

// Category implements Document.
func (d *FileDocument) Category(c Category) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	value, ok := d.data[string(c)]
	return value, ok
}

// SetCategory implements Document. The file is rewritten atomically; the
// in-memory copy only changes once the write succeeded.
func (d *FileDocument) SetCategory(c Category, entries map[string]item.Record) error {
	object := make(map[string]any, len(entries))
	for slot, record := range entries {
		object[slot] = map[string]any(record)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	next := make(map[string]any, len(d.data)+1)
	for key, value := range d.data {
		next[key] = value
	}
	next[string(c)] = object

	payload, err := json.MarshalIndent(next, "", "    ")
	if err != nil {
		return fmt.Errorf("encode kit document: %w", err)
	}
	if err := writeFileAtomic(d.path, payload); err != nil {
		return apperrors.Wrap(apperrors.CodeKitUnavailable, "write kit document", err)
	}
	d.data = next
	return nil
}

func decodeDocument(payload []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

func writeFileAtomic(path string, payload []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
