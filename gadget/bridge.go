// Package gadget implements the synchronous cross-boundary protocol
// through which an external producer builds circuit fragments: one
// blocking request, zero or more streamed intermediate results and
// exactly one final response, all delivered through callbacks on the
// caller's goroutine.
package gadget

import (
	"errors"
	"fmt"

	"github.com/zkforge/snarkpipe/log"
)

// Callback receives a response buffer together with the caller-supplied
// opaque context and reports whether the exchange should continue. The
// buffer is owned by the callee only for the duration of the call.
type Callback func(ctx any, payload []byte) bool

// Producer builds gadget sub-circuits. BuildGadget runs synchronously:
// it may call emit for each intermediate result and returns the final
// response. When emit reports false the producer must stop streaming
// and return; the response it returns is still delivered.
type Producer interface {
	BuildGadget(request []byte, emit func(result []byte) bool) (response []byte, err error)
}

// Request performs one gadget exchange. It returns only after the final
// response callback ran exactly once, or after an irrecoverable
// producer failure, in which case it returns false without a final
// callback. The overall result is the final callback's return value.
//
// Callbacks re-enter the caller's stack: they must not block
// indefinitely nor call back into the bridge on the same context, and
// no second call may be issued on a context while one is outstanding.
func Request(p Producer, request []byte,
	onResult Callback, resultCtx any,
	onResponse Callback, responseCtx any,
) bool {
	cancelled := false
	emit := func(result []byte) bool {
		if cancelled {
			return false
		}
		if !onResult(resultCtx, result) {
			cancelled = true
			return false
		}
		return true
	}
	response, err := p.BuildGadget(request, emit)
	if err != nil {
		log.Errorw(err, "gadget request failed")
		return false
	}
	return onResponse(responseCtx, response)
}

// CallResult gathers a whole exchange: every streamed result buffer in
// order, then the final response.
type CallResult struct {
	Stream   [][]byte
	Response []byte
}

// Call runs Request with collecting callbacks, copying each buffer so
// it outlives the exchange. It returns an error when the exchange did
// not complete as a valid result.
func Call(p Producer, request []byte) (*CallResult, error) {
	res := &CallResult{}
	ok := Request(p, request,
		func(_ any, buf []byte) bool {
			res.Stream = append(res.Stream, append([]byte(nil), buf...))
			return true
		}, nil,
		func(_ any, buf []byte) bool {
			res.Response = append([]byte(nil), buf...)
			return true
		}, nil,
	)
	if !ok {
		return nil, errors.New("gadget request failed")
	}
	return res, nil
}

// Assignment is one variable assignment decoded from the stream.
type Assignment struct {
	VariableID uint64
	Element    []byte
}

// Assignments decodes every streamed AssignedVariables message,
// unpacking the stride-encoded elements in order.
func (r *CallResult) Assignments() ([]Assignment, error) {
	var out []Assignment
	for _, buf := range r.Stream {
		var av AssignedVariables
		if err := decode(buf, &av); err != nil {
			return nil, err
		}
		if len(av.VariableIDs) == 0 {
			continue
		}
		if len(av.Elements)%len(av.VariableIDs) != 0 {
			return nil, fmt.Errorf("elements length %d not a multiple of %d variables",
				len(av.Elements), len(av.VariableIDs))
		}
		stride := len(av.Elements) / len(av.VariableIDs)
		if stride == 0 {
			return nil, errors.New("empty elements data")
		}
		for i, id := range av.VariableIDs {
			out = append(out, Assignment{
				VariableID: id,
				Element:    av.Elements[stride*i : stride*(i+1)],
			})
		}
	}
	return out, nil
}
