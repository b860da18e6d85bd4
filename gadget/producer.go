package gadget

import (
	"fmt"

	"github.com/zkforge/snarkpipe/log"
)

// LocalProducer is an in-process producer that allocates Outputs
// variables above the request's watermark and streams their
// assignments in chunks of ChunkSize. Element derives the field
// element bytes for a variable id and must return vectors of one fixed
// length (the message stride); when nil a one-byte zero element is
// assigned. It serves as the executable documentation of the protocol
// and as the counterpart for tests.
type LocalProducer struct {
	Outputs   int
	ChunkSize int
	Element   func(id uint64) []byte
}

// BuildGadget implements Producer.
func (p *LocalProducer) BuildGadget(request []byte, emit func(result []byte) bool) ([]byte, error) {
	req, err := DecodeAssignmentRequest(request)
	if err != nil {
		return nil, err
	}
	chunk := p.ChunkSize
	if chunk <= 0 {
		chunk = p.Outputs
	}
	element := p.Element
	if element == nil {
		element = func(uint64) []byte { return []byte{0} }
	}
	log.Debugw("building gadget", "name", req.Instance.Name,
		"outputs", p.Outputs, "watermark", req.Instance.FreeVariableIDBefore)

	next := req.Instance.FreeVariableIDBefore
	remaining := p.Outputs
	for remaining > 0 {
		n := min(chunk, remaining)
		av := AssignedVariables{}
		for range n {
			el := element(next)
			if len(el) == 0 {
				return nil, fmt.Errorf("empty element for variable %d", next)
			}
			av.VariableIDs = append(av.VariableIDs, next)
			av.Elements = append(av.Elements, el...)
			next++
		}
		buf, err := EncodeAssignedVariables(av)
		if err != nil {
			return nil, err
		}
		if !emit(buf) {
			// Cancellation: stop streaming, still answer.
			break
		}
		remaining -= n
	}

	return EncodeAssignmentResponse(AssignmentResponse{FreeVariableIDAfter: next})
}
