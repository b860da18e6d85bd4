// Package zkif implements the circuit description container consumed by
// the proof pipeline: a sequence of size-prefixed sections carrying the
// circuit header (field order and primary inputs), the constraint
// system and the witness, each an opaque engine-encoded blob.
package zkif

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/zkforge/snarkpipe/log"
)

// Section types carried by a bundle. Later sections of the same type
// supersede earlier ones, so structure and witness may ship in
// separate files.
const (
	MessageHeader uint8 = iota + 1
	MessageR1CS
	MessageWitness
)

// Header is the only section the importer decodes eagerly. It carries
// the field modulus (big-endian) and the primary input values
// (big-endian byte vectors, in allocation order).
type Header struct {
	FieldOrder   []byte
	PublicInputs [][]byte
}

type message struct {
	Type   uint8
	Header *Header `cbor:",omitempty"`
	Blob   []byte  `cbor:",omitempty"`
}

func encodeMessage(m message) ([]byte, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode bundle section: %w", err)
	}
	payload, err := em.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode bundle section: %w", err)
	}
	return Frame(payload), nil
}

// EncodeHeader returns a framed header section.
func EncodeHeader(h Header) ([]byte, error) {
	return encodeMessage(message{Type: MessageHeader, Header: &h})
}

// EncodeR1CS returns a framed constraint system section wrapping an
// engine-encoded blob.
func EncodeR1CS(blob []byte) ([]byte, error) {
	return encodeMessage(message{Type: MessageR1CS, Blob: blob})
}

// EncodeWitness returns a framed witness section wrapping an
// engine-encoded blob.
func EncodeWitness(blob []byte) ([]byte, error) {
	return encodeMessage(message{Type: MessageWitness, Blob: blob})
}

// ReadFiles reads every circuit description file fully and concatenates
// the contents in argument order. Order is significant and preserved.
// Any open or read failure aborts the whole load; no partial buffer is
// returned.
func ReadFiles(paths []string) ([]byte, error) {
	var buf []byte
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read circuit file: %w", err)
		}
		buf = append(buf, b...)
		log.Infow("read messages from file", "path", p, "bytes", len(b))
	}
	return buf, nil
}
