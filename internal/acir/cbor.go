package acir

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var decMode = func() cbor.DecMode {
	opts := cbor.DecOptions{MapType: reflect.TypeOf(map[string]any{})}
	mode, err := opts.DecMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// Pack encodes a program (bare list or {program:[...]} wrapper) into
// ACIR bytes, preferring CBOR and falling back to minified JSON.
// Returns the bytes and the format tag used ("cbor" or "json").
func Pack(data any, preferCBOR bool) ([]byte, string, error) {
	var program []any
	if m, ok := data.(map[string]any); ok {
		if p, ok := m["program"].([]any); ok {
			program = p
		} else {
			return nil, "", fmt.Errorf("program must be a list or {program:[...]} wrapper")
		}
	} else if p, ok := data.([]any); ok {
		program = p
	} else {
		return nil, "", fmt.Errorf("program must be a list or {program:[...]} wrapper")
	}

	enc := EncodeProgram(program)

	if preferCBOR {
		buf, err := cbor.Marshal(enc)
		if err == nil {
			return buf, "cbor", nil
		}
	}

	buf, err := json.Marshal(enc)
	if err != nil {
		return nil, "", err
	}
	return buf, "json", nil
}

// Unpack reverses Pack: given bytes and an (optional) format hint, it
// decodes the ACIR envelope and reconstructs the canonical program
// tree. An empty/"json" hint tries JSON first and falls back to CBOR.
func Unpack(buf []byte, format string) ([]any, error) {
	var enc Encoded

	switch format {
	case "cbor":
		if err := decMode.Unmarshal(buf, &enc); err != nil {
			return nil, err
		}
	case "json", "":
		if err := json.Unmarshal(buf, &enc); err != nil {
			if cerr := decMode.Unmarshal(buf, &enc); cerr != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unknown acir format: %s", format)
	}

	return DecodeProgram(enc)
}
