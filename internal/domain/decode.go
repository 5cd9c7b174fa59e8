package domain

import (
	"bytes"
	"encoding/json"

	"github.com/spec-kit/worklog-dictionaries/pkg/util"
)

// Validator is implemented by types that check their own decoded shape.
type Validator interface {
	Validate() error
}

// DecodeStrict unmarshals data into out, rejecting unknown fields, then runs
// the target's Validate hook when it has one. Any failure yields a
// DecodeError and leaves out in an untrusted state the caller must discard.
func DecodeStrict(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return util.NewDecodeError("unexpected payload shape", err)
	}
	// a trailing second JSON value is as suspect as an unknown field
	if dec.More() {
		return util.NewDecodeError("trailing data after payload", nil)
	}
	if v, ok := out.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
