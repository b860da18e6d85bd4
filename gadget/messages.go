package gadget

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/zkforge/snarkpipe/zkif"
)

// Instance identifies the gadget to build and where its variables sit
// in the caller's circuit. FreeVariableIDBefore is the allocation
// watermark: the producer owns every id at or above it.
type Instance struct {
	Name                 string
	IncomingVariableIDs  []uint64
	OutgoingVariableIDs  []uint64 `cbor:",omitempty"`
	FreeVariableIDBefore uint64
	FieldOrder           []byte `cbor:",omitempty"`
}

// AssignmentRequest asks a producer to assign the gadget's variables.
type AssignmentRequest struct {
	Instance Instance
}

// AssignedVariables is one streamed intermediate result: variable ids
// with their field elements packed contiguously at a fixed stride
// (len(Elements) / len(VariableIDs) bytes per element).
type AssignedVariables struct {
	VariableIDs []uint64
	Elements    []byte
}

// AssignmentResponse is the single final response of an assignment
// exchange.
type AssignmentResponse struct {
	FreeVariableIDAfter uint64
}

func encode(v any) ([]byte, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode gadget message: %w", err)
	}
	payload, err := em.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode gadget message: %w", err)
	}
	return zkif.Frame(payload), nil
}

func decode(buf []byte, v any) error {
	payload, rest, err := zkif.SplitFrame(buf)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("trailing bytes after gadget message: %d", len(rest))
	}
	if err := cbor.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode gadget message: %w", err)
	}
	return nil
}

// EncodeAssignmentRequest frames a request buffer for the bridge.
func EncodeAssignmentRequest(req AssignmentRequest) ([]byte, error) {
	return encode(req)
}

// DecodeAssignmentRequest parses a framed request buffer.
func DecodeAssignmentRequest(buf []byte) (AssignmentRequest, error) {
	var req AssignmentRequest
	err := decode(buf, &req)
	return req, err
}

// EncodeAssignedVariables frames one streamed result message.
func EncodeAssignedVariables(av AssignedVariables) ([]byte, error) {
	return encode(av)
}

// EncodeAssignmentResponse frames the final response message.
func EncodeAssignmentResponse(resp AssignmentResponse) ([]byte, error) {
	return encode(resp)
}

// DecodeAssignmentResponse parses a framed final response buffer.
func DecodeAssignmentResponse(buf []byte) (AssignmentResponse, error) {
	var resp AssignmentResponse
	err := decode(buf, &resp)
	return resp, err
}
