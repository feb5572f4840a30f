package record

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

// Encoder writes one serialized Value per line.
type Encoder struct {
	enc *jsoniter.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: jsoniter.ConfigFastest.NewEncoder(w)}
}

func (e *Encoder) Encode(v Value) error {
	s, err := Serialize(v)
	if err != nil {
		return err
	}

	return e.enc.Encode(s)
}
