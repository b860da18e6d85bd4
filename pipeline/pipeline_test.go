package pipeline_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/zkforge/snarkpipe/engine"
	"github.com/zkforge/snarkpipe/internal/testutil"
	"github.com/zkforge/snarkpipe/pipeline"
	"github.com/zkforge/snarkpipe/storage"
)

func newPipeline(out *bytes.Buffer) *pipeline.Pipeline {
	p := pipeline.New(engine.NewGroth16(), storage.New())
	p.SetOutput(out)
	return p
}

func TestLifecycle(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	path, err := testutil.WriteCubicBundle(dir, "cubic.zkif", 3, 35)
	c.Assert(err, qt.IsNil)

	var out bytes.Buffer
	p := newPipeline(&out)

	res, err := p.Run(pipeline.ActionValidate, []string{path})
	c.Assert(err, qt.IsNil)
	c.Assert(res.Satisfied, qt.IsNotNil)
	c.Assert(*res.Satisfied, qt.IsTrue)
	c.Assert(out.String(), qt.Contains, "Satisfied: YES")

	_, err = p.Run(pipeline.ActionSetup, []string{path})
	c.Assert(err, qt.IsNil)
	for _, artifact := range []string{
		storage.PathProvingKey(path),
		storage.PathVerifyingKey(path),
	} {
		_, err := os.Stat(artifact)
		c.Assert(err, qt.IsNil)
	}

	_, err = p.Run(pipeline.ActionProve, []string{path})
	c.Assert(err, qt.IsNil)
	_, err = os.Stat(storage.PathProof(path))
	c.Assert(err, qt.IsNil)

	out.Reset()
	res, err = p.Run(pipeline.ActionVerify, []string{path})
	c.Assert(err, qt.IsNil)
	c.Assert(res.Verified, qt.IsNotNil)
	c.Assert(*res.Verified, qt.IsTrue)
	c.Assert(out.String(), qt.Contains, "Proof verified: YES")

	// Verification does not consume the artifacts.
	res, err = p.Run(pipeline.ActionVerify, []string{path})
	c.Assert(err, qt.IsNil)
	c.Assert(*res.Verified, qt.IsTrue)
}

func TestVerifyNeverAcceptsTamperedProof(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	path, err := testutil.WriteCubicBundle(dir, "cubic.zkif", 3, 35)
	c.Assert(err, qt.IsNil)

	var out bytes.Buffer
	p := newPipeline(&out)
	_, err = p.Run(pipeline.ActionSetup, []string{path})
	c.Assert(err, qt.IsNil)
	_, err = p.Run(pipeline.ActionProve, []string{path})
	c.Assert(err, qt.IsNil)

	proofPath := storage.PathProof(path)
	raw, err := os.ReadFile(proofPath)
	c.Assert(err, qt.IsNil)
	raw[len(raw)/2] ^= 0xff
	c.Assert(os.WriteFile(proofPath, raw, 0o600), qt.IsNil)

	// A corrupted proof may fail to deserialize or fail the pairing
	// check, but it must never verify.
	res, err := p.Run(pipeline.ActionVerify, []string{path})
	if err == nil {
		c.Assert(res.Verified, qt.IsNotNil)
		c.Assert(*res.Verified, qt.IsFalse)
	}
}

func TestValidateUnsatisfied(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	path, err := testutil.WriteCubicBundle(dir, "cubic.zkif", 3, 36)
	c.Assert(err, qt.IsNil)

	var out bytes.Buffer
	res, err := newPipeline(&out).Run(pipeline.ActionValidate, []string{path})
	c.Assert(err, qt.IsNil)
	c.Assert(*res.Satisfied, qt.IsFalse)
	c.Assert(out.String(), qt.Contains, "Satisfied: NO")
}

func TestRunSplitFiles(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	header, cs, wit, err := testutil.CubicParts(3, 35)
	c.Assert(err, qt.IsNil)
	first := filepath.Join(dir, "structure.zkif")
	c.Assert(os.WriteFile(first, append(header, cs...), 0o600), qt.IsNil)
	second := filepath.Join(dir, "assignment.zkif")
	c.Assert(os.WriteFile(second, wit, 0o600), qt.IsNil)

	var out bytes.Buffer
	p := newPipeline(&out)
	res, err := p.Run(pipeline.ActionValidate, []string{first, second})
	c.Assert(err, qt.IsNil)
	c.Assert(*res.Satisfied, qt.IsTrue)

	// Artifact names derive from the first path.
	_, err = p.Run(pipeline.ActionSetup, []string{first, second})
	c.Assert(err, qt.IsNil)
	_, err = os.Stat(storage.PathProvingKey(first))
	c.Assert(err, qt.IsNil)
}

func TestRunErrors(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	path, err := testutil.WriteCubicBundle(dir, "cubic.zkif", 3, 35)
	c.Assert(err, qt.IsNil)

	var out bytes.Buffer
	p := newPipeline(&out)

	c.Run("unknown action", func(c *qt.C) {
		_, err := p.Run(pipeline.Action("attest"), []string{path})
		c.Assert(err, qt.ErrorIs, pipeline.ErrUnknownAction)
	})

	c.Run("no files", func(c *qt.C) {
		_, err := p.Run(pipeline.ActionValidate, nil)
		c.Assert(err, qt.IsNotNil)
	})

	c.Run("missing file", func(c *qt.C) {
		_, err := p.Run(pipeline.ActionValidate, []string{filepath.Join(dir, "absent.zkif")})
		c.Assert(err, qt.IsNotNil)
	})

	c.Run("prove before setup", func(c *qt.C) {
		_, err := p.Run(pipeline.ActionProve, []string{path})
		c.Assert(err, qt.IsNotNil)
	})
}
