// Package pipeline sequences the proof lifecycle: loading circuit
// description files, importing them, generating constraints and
// witness as the action requires, and driving the proof engine and the
// artifact store.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zkforge/snarkpipe/benchmark"
	"github.com/zkforge/snarkpipe/engine"
	"github.com/zkforge/snarkpipe/log"
	"github.com/zkforge/snarkpipe/storage"
	"github.com/zkforge/snarkpipe/zkif"
)

// Action is one of the four terminal pipeline actions.
type Action string

const (
	ActionValidate Action = "validate"
	ActionSetup    Action = "setup"
	ActionProve    Action = "prove"
	ActionVerify   Action = "verify"
)

// ErrUnknownAction is returned for an unrecognized action name. It is
// a usage error, not a silent no-op.
var ErrUnknownAction = errors.New("unknown action")

// mode selects which expensive generation steps an action needs:
// key generation needs structure only, proving needs the assignment
// only, verification needs neither.
type mode struct {
	constraints bool
	witness     bool
}

var actionModes = map[Action]mode{
	ActionValidate: {constraints: true, witness: true},
	ActionSetup:    {constraints: true},
	ActionProve:    {witness: true},
	ActionVerify:   {},
}

// Result reports the booleans an action produced, for callers that do
// not scrape program output.
type Result struct {
	Satisfied *bool
	Verified  *bool
}

// Pipeline runs actions to completion or fatal error; there is no
// retry and no cancellation once started.
type Pipeline struct {
	engine engine.Engine
	store  *storage.Store
	out    io.Writer
}

// New returns a pipeline over the given engine and artifact store.
func New(eng engine.Engine, store *storage.Store) *Pipeline {
	return &Pipeline{engine: eng, store: store, out: os.Stdout}
}

// SetOutput redirects the human-readable result lines (satisfied and
// verified booleans), which otherwise go to stdout.
func (p *Pipeline) SetOutput(w io.Writer) { p.out = w }

// Run executes one action over the circuit description files. Artifact
// names derive from the first path regardless of how many are given.
func (p *Pipeline) Run(action Action, paths []string) (*Result, error) {
	m, ok := actionModes[action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if len(paths) == 0 {
		return nil, errors.New("no circuit description files")
	}

	buf, err := zkif.ReadFiles(paths)
	if err != nil {
		return nil, err
	}
	sys, err := zkif.Import(buf)
	if err != nil {
		return nil, err
	}
	if m.constraints {
		if err := sys.GenerateConstraints(); err != nil {
			return nil, err
		}
	}
	if m.witness {
		if err := sys.GenerateWitness(); err != nil {
			return nil, err
		}
	}

	base := paths[0]
	switch action {
	case ActionValidate:
		return p.validate(sys)
	case ActionSetup:
		return p.setup(sys, base)
	case ActionProve:
		return p.prove(sys, base)
	default:
		return p.verify(sys, base)
	}
}

func (p *Pipeline) validate(sys *zkif.System) (*Result, error) {
	counts, err := sys.Counts()
	if err != nil {
		return nil, err
	}
	log.Infow("constraint system imported",
		"publicInputs", sys.NbPublicInputs(),
		"publicVariables", counts.PublicVariables,
		"secretVariables", counts.SecretVariables,
		"internalVariables", counts.InternalVariables,
		"constraints", counts.Constraints)
	satisfied, err := sys.IsSatisfied()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(p.out, "Satisfied: %s\n", yesNo(satisfied))
	return &Result{Satisfied: &satisfied}, nil
}

func (p *Pipeline) setup(sys *zkif.System, base string) (*Result, error) {
	pk, vk, err := p.engine.Setup(sys)
	if err != nil {
		return nil, err
	}
	if err := p.store.Write(storage.PathProvingKey(base), pk); err != nil {
		return nil, err
	}
	if err := p.store.Write(storage.PathVerifyingKey(base), vk); err != nil {
		return nil, err
	}
	return &Result{}, nil
}

func (p *Pipeline) prove(sys *zkif.System, base string) (*Result, error) {
	pk := p.engine.NewProvingKey()
	if err := p.store.Read(storage.PathProvingKey(base), pk); err != nil {
		return nil, err
	}
	rec := benchmark.Start()
	proof, err := p.engine.Prove(sys, pk)
	if err != nil {
		return nil, err
	}
	rec.StopAndEmit()
	if err := p.store.Write(storage.PathProof(base), proof); err != nil {
		return nil, err
	}
	return &Result{}, nil
}

func (p *Pipeline) verify(sys *zkif.System, base string) (*Result, error) {
	vk := p.engine.NewVerifyingKey()
	if err := p.store.Read(storage.PathVerifyingKey(base), vk); err != nil {
		return nil, err
	}
	proof := p.engine.NewProof()
	if err := p.store.Read(storage.PathProof(base), proof); err != nil {
		return nil, err
	}
	rec := benchmark.Start()
	verified, err := p.engine.Verify(sys, vk, proof)
	if err != nil {
		return nil, err
	}
	rec.StopAndEmit()
	fmt.Fprintf(p.out, "Proof verified: %s\n", yesNo(verified))
	return &Result{Verified: &verified}, nil
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
