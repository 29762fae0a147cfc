package datrie

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// envelope wraps the binary stream so a trie can travel inside a CBOR
// document as {"data": bytes}.
type envelope struct {
	Data []byte `cbor:"data"`
}

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	var err error
	if cborEncMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if cborDecMode, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic(err)
	}
}

func marshalEnvelope(data []byte, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	return cborEncMode.Marshal(envelope{Data: data})
}

func unmarshalEnvelope(data []byte) ([]byte, error) {
	var env envelope
	if err := cborDecMode.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFormat, err)
	}
	return env.Data, nil
}

// MarshalCBOR encodes the trie as a CBOR map holding its binary stream.
func (t *Trie) MarshalCBOR() ([]byte, error) {
	return marshalEnvelope(t.MarshalBinary())
}

// UnmarshalCBOR replaces the contents of t with a trie encoded by
// MarshalCBOR.
func (t *Trie) UnmarshalCBOR(data []byte) error {
	stream, err := unmarshalEnvelope(data)
	if err != nil {
		return err
	}
	return t.UnmarshalBinary(stream)
}

// MarshalCBOR encodes the trie and its alphabet as a CBOR map holding their
// binary stream.
func (tt *TextTrie) MarshalCBOR() ([]byte, error) {
	return marshalEnvelope(tt.MarshalBinary())
}

// UnmarshalCBOR replaces the contents of tt with a trie encoded by
// MarshalCBOR.
func (tt *TextTrie) UnmarshalCBOR(data []byte) error {
	stream, err := unmarshalEnvelope(data)
	if err != nil {
		return err
	}
	return tt.UnmarshalBinary(stream)
}
