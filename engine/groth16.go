package engine

import (
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/logger"

	"github.com/zkforge/snarkpipe/log"
	"github.com/zkforge/snarkpipe/zkif"
)

var initOnce sync.Once

// InitOnce performs the process-wide one-time backend initialization:
// it routes the backend's internal logger into this repo's log sink.
// Idempotent, no teardown. Called by NewGroth16, exposed for callers
// that use the backend without constructing an engine.
func InitOnce() {
	initOnce.Do(func() {
		logger.Set(*log.Logger())
	})
}

// Groth16 implements Engine over the gnark Groth16 backend on BN254.
type Groth16 struct {
	curve ecc.ID
}

// NewGroth16 returns the Groth16 engine, initializing the backend once
// per process.
func NewGroth16() *Groth16 {
	InitOnce()
	return &Groth16{curve: ecc.BN254}
}

// Setup runs Groth16 key generation over the constraint system.
func (e *Groth16) Setup(sys *zkif.System) (ProvingKey, VerifyingKey, error) {
	ccs, err := sys.ConstraintSystem()
	if err != nil {
		return nil, nil, err
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, fmt.Errorf("groth16 setup: %w", err)
	}
	return pk, vk, nil
}

// Prove constructs a Groth16 proof. The prover consumes the circuit
// structure together with the assignment, so the constraint system is
// materialized lazily here even though the orchestrator requested only
// witness generation.
func (e *Groth16) Prove(sys *zkif.System, pk ProvingKey) (Proof, error) {
	gpk, ok := pk.(groth16.ProvingKey)
	if !ok {
		return nil, fmt.Errorf("proving key is not a groth16 key: %T", pk)
	}
	ccs, err := sys.ConstraintSystem()
	if err != nil {
		return nil, err
	}
	assignment, err := sys.FullAssignment()
	if err != nil {
		return nil, err
	}
	proof, err := groth16.Prove(ccs, gpk, assignment)
	if err != nil {
		return nil, fmt.Errorf("groth16 prove: %w", err)
	}
	return proof, nil
}

// Verify checks the proof against the system's primary input. A proof
// the backend rejects is reported as (false, nil).
func (e *Groth16) Verify(sys *zkif.System, vk VerifyingKey, proof Proof) (bool, error) {
	gvk, ok := vk.(groth16.VerifyingKey)
	if !ok {
		return false, fmt.Errorf("verification key is not a groth16 key: %T", vk)
	}
	gproof, ok := proof.(groth16.Proof)
	if !ok {
		return false, fmt.Errorf("proof is not a groth16 proof: %T", proof)
	}
	primary, err := sys.PrimaryInput()
	if err != nil {
		return false, err
	}
	if err := groth16.Verify(gproof, gvk, primary); err != nil {
		log.Debugw("proof rejected", "reason", err.Error())
		return false, nil
	}
	return true, nil
}

// NewProvingKey returns an empty proving key for deserialization.
func (e *Groth16) NewProvingKey() ProvingKey { return groth16.NewProvingKey(e.curve) }

// NewVerifyingKey returns an empty verification key for deserialization.
func (e *Groth16) NewVerifyingKey() VerifyingKey { return groth16.NewVerifyingKey(e.curve) }

// NewProof returns an empty proof for deserialization.
func (e *Groth16) NewProof() Proof { return groth16.NewProof(e.curve) }
