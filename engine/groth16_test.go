package engine_test

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/zkforge/snarkpipe/engine"
	"github.com/zkforge/snarkpipe/internal/testutil"
	"github.com/zkforge/snarkpipe/zkif"
)

func TestGroth16RoundTrip(t *testing.T) {
	c := qt.New(t)
	eng := engine.NewGroth16()

	bundle, err := testutil.CubicBundle(3, 35)
	c.Assert(err, qt.IsNil)

	// Key generation over structure only.
	setupSys, err := zkif.Import(bundle)
	c.Assert(err, qt.IsNil)
	c.Assert(setupSys.GenerateConstraints(), qt.IsNil)
	pk, vk, err := eng.Setup(setupSys)
	c.Assert(err, qt.IsNil)

	// Proving over the assignment.
	proveSys, err := zkif.Import(bundle)
	c.Assert(err, qt.IsNil)
	c.Assert(proveSys.GenerateWitness(), qt.IsNil)
	proof, err := eng.Prove(proveSys, pk)
	c.Assert(err, qt.IsNil)

	// Verification over an import-only system, with the proof taken
	// through its serialized form.
	var buf bytes.Buffer
	_, err = proof.WriteTo(&buf)
	c.Assert(err, qt.IsNil)
	restored := eng.NewProof()
	_, err = restored.ReadFrom(bytes.NewReader(buf.Bytes()))
	c.Assert(err, qt.IsNil)

	verifySys, err := zkif.Import(bundle)
	c.Assert(err, qt.IsNil)
	verified, err := eng.Verify(verifySys, vk, restored)
	c.Assert(err, qt.IsNil)
	c.Assert(verified, qt.IsTrue)
}

func TestGroth16VerifyRejectsWrongPrimaryInput(t *testing.T) {
	c := qt.New(t)
	eng := engine.NewGroth16()

	bundle, err := testutil.CubicBundle(3, 35)
	c.Assert(err, qt.IsNil)
	sys, err := zkif.Import(bundle)
	c.Assert(err, qt.IsNil)
	c.Assert(sys.GenerateConstraints(), qt.IsNil)
	c.Assert(sys.GenerateWitness(), qt.IsNil)

	pk, vk, err := eng.Setup(sys)
	c.Assert(err, qt.IsNil)
	proof, err := eng.Prove(sys, pk)
	c.Assert(err, qt.IsNil)

	// Same proof checked against a header claiming y=36.
	wrong, err := testutil.CubicBundle(3, 36)
	c.Assert(err, qt.IsNil)
	wrongSys, err := zkif.Import(wrong)
	c.Assert(err, qt.IsNil)
	verified, err := eng.Verify(wrongSys, vk, proof)
	c.Assert(err, qt.IsNil)
	c.Assert(verified, qt.IsFalse)
}

func TestGroth16SetupNeedsConstraints(t *testing.T) {
	c := qt.New(t)
	eng := engine.NewGroth16()

	// A bundle without a constraint system section cannot be set up.
	header, err := zkif.EncodeHeader(zkif.Header{})
	c.Assert(err, qt.IsNil)
	sys, err := zkif.Import(header)
	c.Assert(err, qt.IsNil)
	_, _, err = eng.Setup(sys)
	c.Assert(err, qt.ErrorIs, zkif.ErrDecode)
}
