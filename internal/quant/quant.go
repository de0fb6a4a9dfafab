// Package quant implements the lattice quantizer of spec §4.2: a single
// isotropic step size derived from the mesh bounding box and a bit depth,
// mapping float positions to integer lattice cells and back.
//
// This is a direct simplification of jpeg2000/quantization.go's
// step-size derivation: that package derives one step per wavelet subband
// from a per-level norm table; a mesh has no subbands, so a single step
// (the largest bounding-box extent divided by 2^Bits) takes its place.
package quant

import (
	"math"

	"github.com/tengdj/ppmc-go/geom"
)

// Quantizer maps points in [BBox.Min, BBox.Max] to integer lattice cells
// in [0, 2^Bits) per axis, and back to cell-center float positions.
type Quantizer struct {
	BBox Box
	Bits uint32
	Step float64
}

// Box mirrors geom.Box to keep this package geom-agnostic save for the
// one Extent() call it needs (kept as a type alias so callers can pass a
// geom.Box directly).
type Box = geom.Box

// New derives a Quantizer from a bounding box and a bit depth. Bits must
// be in (0, 31]; step size is max(extent)/2^Bits per spec §4.2.
func New(bbox Box, bits uint32) *Quantizer {
	if bits == 0 {
		bits = 1
	}
	step := bbox.MaxExtent() / math.Exp2(float64(bits))
	if step <= 0 {
		step = 1
	}
	return &Quantizer{BBox: bbox, Bits: bits, Step: step}
}

// MaxCell returns the exclusive upper bound 2^Bits for a lattice coordinate.
func (q *Quantizer) MaxCell() int64 {
	return int64(1) << q.Bits
}

// Encode maps a float position to its integer lattice cell, axis by axis:
// floor((p-bbmin)/step).
func (q *Quantizer) Encode(p geom.Vec3) [3]int64 {
	cell := [3]int64{
		int64(math.Floor((p.X - q.BBox.Min.X) / q.Step)),
		int64(math.Floor((p.Y - q.BBox.Min.Y) / q.Step)),
		int64(math.Floor((p.Z - q.BBox.Min.Z) / q.Step)),
	}
	// A point on the box's max face along the longest axis lands exactly
	// on 2^Bits; keep it in the last cell.
	for i := range cell {
		if cell[i] >= q.MaxCell() {
			cell[i] = q.MaxCell() - 1
		}
	}
	return cell
}

// Decode maps an integer lattice cell back to the float position of its
// cell center: bbmin + step*(cell+0.5).
func (q *Quantizer) Decode(cell [3]int64) geom.Vec3 {
	return geom.Vec3{
		X: q.BBox.Min.X + q.Step*(float64(cell[0])+0.5),
		Y: q.BBox.Min.Y + q.Step*(float64(cell[1])+0.5),
		Z: q.BBox.Min.Z + q.Step*(float64(cell[2])+0.5),
	}
}

// EncodeResidual returns the integer-lattice offset between the actual
// and predicted position of a removed vertex: quant(actual)-quant(predicted).
func (q *Quantizer) EncodeResidual(actual, predicted geom.Vec3) [3]int64 {
	a := q.Encode(actual)
	p := q.Encode(predicted)
	return [3]int64{a[0] - p[0], a[1] - p[1], a[2] - p[2]}
}

// DecodeResidual reconstructs the actual cell from a predicted float
// position and a decoded residual vector.
func (q *Quantizer) DecodeResidual(predicted geom.Vec3, residual [3]int64) geom.Vec3 {
	p := q.Encode(predicted)
	cell := [3]int64{p[0] + residual[0], p[1] + residual[1], p[2] + residual[2]}
	return q.Decode(cell)
}

// Epsilon returns the planarity tolerance tied to the current quantization
// step, per spec §4.4 ("the polygon is planar within ε, where ε is tied to
// the current quantization step").
func (q *Quantizer) Epsilon() float64 {
	return q.Step * 0.5
}
