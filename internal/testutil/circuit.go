// Package testutil provides a small compiled circuit and bundle
// builders shared by tests across packages.
package testutil

import (
	"bytes"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/zkforge/snarkpipe/zkif"
)

// CubicCircuit proves knowledge of x such that x**3 + x + 5 == y.
type CubicCircuit struct {
	X frontend.Variable
	Y frontend.Variable `gnark:",public"`
}

// Define declares the circuit constraints.
func (c *CubicCircuit) Define(api frontend.API) error {
	x3 := api.Mul(c.X, c.X, c.X)
	api.AssertIsEqual(c.Y, api.Add(x3, c.X, 5))
	return nil
}

// CubicParts builds the three framed sections of a cubic circuit
// bundle with the assignment (x, y): header, constraint system and
// witness. Callers concatenate them in any grouping to simulate one or
// several circuit description files.
func CubicParts(x, y int64) (header, cs, wit []byte, err error) {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &CubicCircuit{})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("compile: %w", err)
	}
	var csBuf bytes.Buffer
	if _, err := ccs.WriteTo(&csBuf); err != nil {
		return nil, nil, nil, fmt.Errorf("serialize constraint system: %w", err)
	}

	w, err := frontend.NewWitness(&CubicCircuit{X: x, Y: y}, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("witness: %w", err)
	}
	wBlob, err := w.MarshalBinary()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("serialize witness: %w", err)
	}

	header, err = zkif.EncodeHeader(zkif.Header{
		FieldOrder:   ecc.BN254.ScalarField().Bytes(),
		PublicInputs: [][]byte{big.NewInt(y).Bytes()},
	})
	if err != nil {
		return nil, nil, nil, err
	}
	cs, err = zkif.EncodeR1CS(csBuf.Bytes())
	if err != nil {
		return nil, nil, nil, err
	}
	wit, err = zkif.EncodeWitness(wBlob)
	if err != nil {
		return nil, nil, nil, err
	}
	return header, cs, wit, nil
}

// CubicBundle builds a complete single-buffer bundle for the cubic
// circuit with the assignment (x, y). x=3, y=35 satisfies it.
func CubicBundle(x, y int64) ([]byte, error) {
	header, cs, wit, err := CubicParts(x, y)
	if err != nil {
		return nil, err
	}
	bundle := append(header, cs...)
	return append(bundle, wit...), nil
}

// WriteCubicBundle writes a complete cubic bundle to dir/name and
// returns its path.
func WriteCubicBundle(dir, name string, x, y int64) (string, error) {
	bundle, err := CubicBundle(x, y)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, bundle, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
