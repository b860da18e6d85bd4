// Package engine wraps the cryptographic backend that performs key
// generation, proof construction and verification. The pipeline depends
// only on the Engine interface; artifacts are opaque and serializable.
package engine

import (
	"io"

	"github.com/zkforge/snarkpipe/zkif"
)

// ProvingKey is an opaque setup artifact enabling proof construction.
type ProvingKey interface {
	io.ReaderFrom
	io.WriterTo
}

// VerifyingKey is an opaque setup artifact enabling proof checking.
type VerifyingKey interface {
	io.ReaderFrom
	io.WriterTo
}

// Proof is an opaque proof artifact.
type Proof interface {
	io.ReaderFrom
	io.WriterTo
}

// Engine is the fixed capability set of the proof backend. Setup needs
// a generated constraint system, Prove a generated witness, Verify only
// the primary input shape.
type Engine interface {
	// Setup runs key generation over the system's constraint system.
	Setup(sys *zkif.System) (ProvingKey, VerifyingKey, error)
	// Prove constructs a proof from the system's assignment.
	Prove(sys *zkif.System, pk ProvingKey) (Proof, error)
	// Verify checks the proof against the system's primary input. A
	// rejected proof yields (false, nil); errors are reserved for
	// malformed inputs.
	Verify(sys *zkif.System, vk VerifyingKey, proof Proof) (bool, error)

	// Empty artifacts for deserialization.
	NewProvingKey() ProvingKey
	NewVerifyingKey() VerifyingKey
	NewProof() Proof
}
