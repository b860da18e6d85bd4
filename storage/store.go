// Package storage persists proving keys, verification keys and proofs
// as flat binary files in the engine's canonical encoding. Artifacts
// are write-once/read-many; the store does not arbitrate concurrent
// writers to the same path, that is the caller's responsibility.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zkforge/snarkpipe/log"
)

// ErrDecode is returned when a persisted artifact stream is malformed.
// Fatal to the current action, never retried.
var ErrDecode = errors.New("malformed artifact stream")

// Artifact file extensions. Names derive solely from the first circuit
// description path of the invocation.
const (
	ExtProvingKey   = ".pk"
	ExtVerifyingKey = ".vk"
	ExtProof        = ".proof"
)

// PathProvingKey returns the proving key path for a base circuit name.
func PathProvingKey(base string) string { return base + ExtProvingKey }

// PathVerifyingKey returns the verification key path for a base circuit name.
func PathVerifyingKey(base string) string { return base + ExtVerifyingKey }

// PathProof returns the proof path for a base circuit name.
func PathProof(base string) string { return base + ExtProof }

// Store reads and writes opaque serializable artifacts.
type Store struct{}

// New returns an artifact store.
func New() *Store { return &Store{} }

// Write serializes the artifact to path, overwriting any previous file.
func (s *Store) Write(path string, artifact io.WriterTo) error {
	fd, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	defer func() {
		if err := fd.Close(); err != nil {
			log.Warnw("error closing artifact file", "path", path, "error", err.Error())
		}
	}()
	n, err := artifact.WriteTo(fd)
	if err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	log.Infow("artifact written", "path", path, "bytes", n)
	return nil
}

// Read deserializes the artifact at path into the provided empty
// artifact value. A missing or unreadable file is an I/O failure; a
// stream the artifact cannot decode wraps ErrDecode.
func (s *Store) Read(path string, artifact io.ReaderFrom) error {
	fd, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer func() {
		if err := fd.Close(); err != nil {
			log.Warnw("error closing artifact file", "path", path, "error", err.Error())
		}
	}()
	n, err := artifact.ReadFrom(fd)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	log.Debugw("artifact read", "path", path, "bytes", n)
	return nil
}
