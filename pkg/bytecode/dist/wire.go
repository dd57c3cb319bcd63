// Package dist provides the wire format for compiled Blocks programs.
// Artifacts are encoded with canonical CBOR so the same program always
// serializes to the same bytes.
package dist

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/blocks/pkg/bytecode"
)

// WireVersion is the current artifact format version. Increment when
// making incompatible changes to the format.
const WireVersion uint16 = 1

// Artifact wraps a compiled program with its format version.
type Artifact struct {
	Version uint16            `cbor:"version"`
	Program *bytecode.Program `cbor:"program"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dist: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalProgram serializes a program to CBOR bytes.
func MarshalProgram(p *bytecode.Program) ([]byte, error) {
	return cborEncMode.Marshal(&Artifact{Version: WireVersion, Program: p})
}

// UnmarshalProgram deserializes a program from CBOR bytes.
func UnmarshalProgram(data []byte) (*bytecode.Program, error) {
	var a Artifact
	if err := cbor.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("dist: unmarshal artifact: %w", err)
	}
	if a.Version > WireVersion {
		return nil, fmt.Errorf("dist: artifact version %d is newer than supported version %d", a.Version, WireVersion)
	}
	if a.Program == nil {
		return nil, fmt.Errorf("dist: artifact has no program")
	}
	if len(a.Program.SourceMap) != len(a.Program.Code) {
		return nil, fmt.Errorf("dist: source map length %d does not match code length %d",
			len(a.Program.SourceMap), len(a.Program.Code))
	}
	return a.Program, nil
}
