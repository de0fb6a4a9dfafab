// Package ppmc is the public API (spec §6, component C9): a progressive,
// Hausdorff-bounded triangle mesh codec built from the lower-level
// internal/rangecoder, internal/quant, geom, mesh, conquest and hausdorff
// packages. Encode produces a single compressed blob; Open returns a
// Decoder that can be advanced incrementally through refinement levels.
//
// A single Encode/Decode entry point in front of a layered pipeline, with
// a small sentinel-error taxonomy, and a fixed-layout binary header
// convention (magic, version, fixed-width fields via encoding/binary,
// before any variable-length payload).
package ppmc

import (
	"github.com/pkg/errors"
	"github.com/tengdj/ppmc-go/geom"
	"github.com/tengdj/ppmc-go/hausdorff"
)

// Config controls the encoder's quantization precision, decimation
// aggressiveness, and Hausdorff sampling strategy (spec §6).
type Config struct {
	// QuantBits is the number of bits per lattice axis (spec §4.2);
	// step = bbox.MaxExtent() / 2^QuantBits.
	QuantBits uint32
	// DecimationCap bounds the number of batches produced, 0 meaning
	// "decimate until no vertex is removable" (spec §4.8).
	DecimationCap int
	// SamplingRate is the number of extra impact points sampled along the
	// first edge of each fan triangle, beyond its 3 corners, for Hausdorff
	// bound estimation.
	SamplingRate int
	// HausdorffStrategy selects the impact-point sampling strategy of
	// spec §4.7.
	HausdorffStrategy hausdorff.Strategy
	// AdaptiveQuant selects the residual entropy model per removed vertex
	// from its predicted position's lattice-cell parity instead of sharing
	// one model across the whole mesh (spec §3/§6's quant_cell_id "used
	// for adaptive residual modeling"); see DESIGN.md's AdaptiveQuant
	// wiring note.
	AdaptiveQuant bool
	// BBox pins the quantization lattice's bounding box instead of
	// deriving it from m.BoundingBox(). The zero Box means "derive from
	// m". Re-encoding a fully-decoded mesh against its original bbox
	// (Decoder.BoundingBox()) is what makes re-encoding reproduce the
	// same blob: a decoded mesh's own extents are already the quantized
	// corners, which sit half a lattice step inside the original box.
	BBox geom.Box
}

// DefaultConfig returns sensible defaults: 12-bit quantization, unlimited
// decimation, BVH-strategy Hausdorff sampling with 3 extra points per
// triangle edge.
func DefaultConfig() Config {
	return Config{
		QuantBits:         12,
		DecimationCap:     0,
		SamplingRate:      3,
		HausdorffStrategy: hausdorff.StrategyBVH,
		AdaptiveQuant:     false,
	}
}

// Validate checks that cfg's fields are within usable ranges.
func (cfg Config) Validate() error {
	if cfg.QuantBits == 0 || cfg.QuantBits > 30 {
		return errors.Wrapf(ErrInvalidMesh, "QuantBits %d out of range [1,30]", cfg.QuantBits)
	}
	if cfg.DecimationCap < 0 {
		return errors.Wrapf(ErrInvalidMesh, "DecimationCap %d must be >= 0", cfg.DecimationCap)
	}
	if cfg.SamplingRate < 0 {
		return errors.Wrapf(ErrInvalidMesh, "SamplingRate %d must be >= 0", cfg.SamplingRate)
	}
	return nil
}
