package ppmc

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/tengdj/ppmc-go/conquest"
	"github.com/tengdj/ppmc-go/geom"
	"github.com/tengdj/ppmc-go/hausdorff"
	"github.com/tengdj/ppmc-go/internal/quant"
	"github.com/tengdj/ppmc-go/mesh"
)

// Encode compresses m into a progressive, Hausdorff-bounded blob (spec
// §6). m is not mutated. Encode repeatedly runs one decimation batch
// (conquest.DecimationConquest + conquest.InsertedEdgeCoding) until no
// vertex remains removable or cfg.DecimationCap batches have been
// produced, then serializes the resulting coarsest mesh as the base
// level followed by the batches in coarsest-to-finest replay order.
func Encode(m *mesh.Mesh, cfg Config) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidMesh, err.Error())
	}

	original := m.Clone()
	cur := m.Clone()
	bbox := cfg.BBox
	if bbox == (geom.Box{}) {
		bbox = cur.BoundingBox()
	}
	q := quant.New(bbox, cfg.QuantBits)

	engine := &hausdorff.Engine{Strategy: cfg.HausdorffStrategy, Samples: cfg.SamplingRate}
	if engine.Samples == 0 {
		engine.Samples = 3
	}

	var batches []batchRecord
	for cfg.DecimationCap == 0 || len(batches) < cfg.DecimationCap {
		emit := newBatchEmitter(cfg.AdaptiveQuant)
		stats := conquest.DecimationConquest(cur, q, emit)
		if stats.RemovedVertices == 0 {
			break
		}
		conquest.InsertedEdgeCoding(cur, stats.SplitBoundaries, emit)
		blob, err := emit.finish()
		if err != nil {
			return nil, err
		}
		cur.ResetPassFlags()

		res := engine.ComputeBatch(cur, original)
		batches = append(batches, batchRecord{blob: blob, forward: res.Forward, proxy: res.Proxy})

		if err := cur.Validate(); err != nil {
			return nil, errors.Wrap(ErrInvalidMesh, err.Error())
		}
	}

	// batches is finest-to-coarsest (the order each was produced); replay
	// during decode goes coarsest-to-finest, so store the reverse.
	reversed := make([]batchRecord, len(batches))
	for i, b := range batches {
		reversed[len(batches)-1-i] = b
	}

	var buf bytes.Buffer
	h := header{
		Magic:         magic,
		Version:       wireVersion,
		QuantBits:     uint8(cfg.QuantBits),
		AdaptiveQuant: uint8(boolSym(cfg.AdaptiveQuant)),
		BBoxMin:       [3]float64{bbox.Min.X, bbox.Min.Y, bbox.Min.Z},
		BBoxMax:       [3]float64{bbox.Max.X, bbox.Max.Y, bbox.Max.Z},
		NumBatches:    uint32(len(reversed)),
	}
	if err := writeHeader(&buf, h); err != nil {
		return nil, err
	}
	// Base-mesh vertices never go through EncodeResidual/DecodeResidual (they
	// are never removed), so they must be quantized here directly: L1 requires
	// decode(encode(m)) to equal quantize(m) at every vertex, not just the
	// ones a batch actually touched.
	for i := range cur.Vertices {
		if cur.Vertices[i].Alive {
			cur.Vertices[i].Position = q.Decode(q.Encode(cur.Vertices[i].Position))
		}
	}
	if err := writeMesh(&buf, cur); err != nil {
		return nil, err
	}
	for _, b := range reversed {
		if err := writeBatch(&buf, b); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
