package zkif

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/fxamacker/cbor/v2"

	"github.com/zkforge/snarkpipe/log"
)

// ErrNoWitness is returned when an assignment is requested from a
// system whose witness has not been generated.
var ErrNoWitness = errors.New("witness has not been generated")

// System is the in-memory form of an imported circuit description. The
// header is decoded at import time; the constraint system and the
// witness are expensive and decoded only when generation is requested.
// A System is local to one invocation and never persisted.
type System struct {
	header      Header
	csBlob      []byte
	witnessBlob []byte
	field       *big.Int

	ccs constraint.ConstraintSystem
	wit witness.Witness
}

// Counts describes the decoded constraint system.
type Counts struct {
	Constraints       int
	PublicVariables   int
	SecretVariables   int
	InternalVariables int
}

// Import scans every section of a bundle buffer, keeps the opaque blobs
// and decodes the header (the variable allocation step). It fails with
// ErrDecode on a truncated frame, an unknown section type, a missing
// header or a field order that does not match the engine curve.
func Import(buf []byte) (*System, error) {
	s := &System{field: ecc.BN254.ScalarField()}
	seenHeader := false
	for len(buf) > 0 {
		payload, rest, err := SplitFrame(buf)
		if err != nil {
			return nil, err
		}
		var m message
		if err := cbor.Unmarshal(payload, &m); err != nil {
			return nil, fmt.Errorf("%w: section: %v", ErrDecode, err)
		}
		switch m.Type {
		case MessageHeader:
			if m.Header == nil {
				return nil, fmt.Errorf("%w: header section without header", ErrDecode)
			}
			s.header = *m.Header
			seenHeader = true
		case MessageR1CS:
			s.csBlob = m.Blob
		case MessageWitness:
			s.witnessBlob = m.Blob
		default:
			return nil, fmt.Errorf("%w: unknown section type %d", ErrDecode, m.Type)
		}
		buf = rest
	}
	if !seenHeader {
		return nil, fmt.Errorf("%w: bundle carries no circuit header", ErrDecode)
	}
	if len(s.header.FieldOrder) > 0 &&
		new(big.Int).SetBytes(s.header.FieldOrder).Cmp(s.field) != 0 {
		return nil, fmt.Errorf("%w: field order does not match %s", ErrDecode, ecc.BN254)
	}
	log.Debugw("circuit imported", "publicInputs", len(s.header.PublicInputs),
		"constraintBlob", len(s.csBlob), "witnessBlob", len(s.witnessBlob))
	return s, nil
}

// NbPublicInputs returns the number of primary input values declared by
// the circuit header. It is available in every mode.
func (s *System) NbPublicInputs() int {
	return len(s.header.PublicInputs)
}

// GenerateConstraints decodes the constraint system section.
func (s *System) GenerateConstraints() error {
	_, err := s.ConstraintSystem()
	return err
}

// ConstraintSystem returns the decoded constraint system, materializing
// it on first use. The handle is owned by the importer and must not be
// mutated by callers.
func (s *System) ConstraintSystem() (constraint.ConstraintSystem, error) {
	if s.ccs != nil {
		return s.ccs, nil
	}
	if len(s.csBlob) == 0 {
		return nil, fmt.Errorf("%w: bundle carries no constraint system", ErrDecode)
	}
	ccs := groth16.NewCS(ecc.BN254)
	if _, err := ccs.ReadFrom(bytes.NewReader(s.csBlob)); err != nil {
		return nil, fmt.Errorf("%w: constraint system: %v", ErrDecode, err)
	}
	s.ccs = ccs
	return ccs, nil
}

// Counts reports the size of the constraint system. It requires
// constraint generation.
func (s *System) Counts() (Counts, error) {
	ccs, err := s.ConstraintSystem()
	if err != nil {
		return Counts{}, err
	}
	return Counts{
		Constraints:       ccs.GetNbConstraints(),
		PublicVariables:   ccs.GetNbPublicVariables(),
		SecretVariables:   ccs.GetNbSecretVariables(),
		InternalVariables: ccs.GetNbInternalVariables(),
	}, nil
}

// GenerateWitness decodes the witness section. Idempotent.
func (s *System) GenerateWitness() error {
	if s.wit != nil {
		return nil
	}
	if len(s.witnessBlob) == 0 {
		return fmt.Errorf("%w: bundle carries no witness", ErrDecode)
	}
	w, err := witness.New(s.field)
	if err != nil {
		return fmt.Errorf("new witness: %w", err)
	}
	if err := w.UnmarshalBinary(s.witnessBlob); err != nil {
		return fmt.Errorf("%w: witness: %v", ErrDecode, err)
	}
	s.wit = w
	return nil
}

// IsSatisfied reports whether the generated witness satisfies the
// constraint system. It requires witness generation; the reason for an
// unsatisfied system is logged, not returned.
func (s *System) IsSatisfied() (bool, error) {
	if s.wit == nil {
		return false, ErrNoWitness
	}
	ccs, err := s.ConstraintSystem()
	if err != nil {
		return false, err
	}
	if err := ccs.IsSolved(s.wit); err != nil {
		log.Debugw("constraint system not satisfied", "reason", err.Error())
		return false, nil
	}
	return true, nil
}

// PrimaryInput returns the public input vector. With a generated
// witness it is derived from it; otherwise it is rebuilt from the
// header values, so verification never depends on witness generation.
func (s *System) PrimaryInput() (witness.Witness, error) {
	if s.wit != nil {
		return s.wit.Public()
	}
	w, err := witness.New(s.field)
	if err != nil {
		return nil, fmt.Errorf("new witness: %w", err)
	}
	values := make(chan any, len(s.header.PublicInputs))
	for _, b := range s.header.PublicInputs {
		values <- new(big.Int).SetBytes(b)
	}
	close(values)
	if err := w.Fill(len(s.header.PublicInputs), 0, values); err != nil {
		return nil, fmt.Errorf("%w: primary input: %v", ErrDecode, err)
	}
	return w, nil
}

// FullAssignment returns the complete assignment, primary and auxiliary
// input vectors together, as the prover consumes them. It requires
// witness generation.
func (s *System) FullAssignment() (witness.Witness, error) {
	if s.wit == nil {
		return nil, ErrNoWitness
	}
	return s.wit, nil
}
