package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrBadBundle indicates a bundle that could not be decoded or has an
// incompatible schema.
var ErrBadBundle = errors.New("bad bundle")

// Write serializes the bundle to path atomically (temp file + rename).
func Write(path string, b *Bundle) error {
	b.Schema = SchemaVersion

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name()) // no-op after successful rename

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(b); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Read loads and validates a bundle from path.
func Read(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var b Bundle
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadBundle, path, err)
	}
	if b.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: %s: schema %d, want %d", ErrBadBundle, path, b.Schema, SchemaVersion)
	}
	return &b, nil
}
