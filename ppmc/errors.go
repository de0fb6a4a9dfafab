package ppmc

import (
	"github.com/pkg/errors"

	"github.com/tengdj/ppmc-go/internal/rangecoder"
	"github.com/tengdj/ppmc-go/mesh"
)

// Error taxonomy (spec §7): four sentinel errors, re-exported at the
// public API boundary from the internal packages that actually detect
// them, plus ErrQuantizationOverflow which belongs here since it is a
// property of the wire format this package defines.
var (
	// ErrInvalidMesh is returned by Encode when the input mesh fails the
	// closed/2-manifold/single-component invariant (P1).
	ErrInvalidMesh = mesh.ErrInvalidMesh

	// ErrCorruptedStream is returned by Open/AdvanceTo when the range-coded
	// symbol stream does not decode to a valid symbol, or the blob's magic,
	// version or layout fields cannot be read back.
	ErrCorruptedStream = rangecoder.ErrCorruptedStream

	// ErrPredicateFailure is returned when a decode-side reconstruction
	// step violates a decimation/undecimation precondition (a corrupted or
	// adversarial blob, not reachable from an honestly-encoded stream).
	ErrPredicateFailure = mesh.ErrPredicateFailure

	// ErrQuantizationOverflow is returned by Encode when a vertex's
	// quantization residual does not fit the coder's fixed symbol
	// alphabet (spec §4.2: "quantization must not silently wrap").
	ErrQuantizationOverflow = errors.New("ppmc: quantization residual overflow")
)
