package ppmc

import (
	"github.com/pkg/errors"
	"github.com/tengdj/ppmc-go/internal/rangecoder"
)

// residualAlphabet bounds the zigzag-encoded magnitude of any single
// residual axis component that the coder can represent; larger values
// surface as ErrQuantizationOverflow rather than silently truncating
// (spec §7's InvalidMesh/QuantizationOverflow boundary).
const residualAlphabet = 1 << 13

func zigzag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func unzigzag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// quantContexts is the number of residual-model contexts AdaptiveQuant
// selects among, keyed by conquest.quantCellContext's 2-bit tag.
const quantContexts = 4

// models bundles the per-symbol-class quasi-static frequency tables spec
// §4.1 calls for: one each for face bits and edge bits, and one *set* of
// three residual-axis tables per quant-cell context, so a long run of one
// class's symbols cannot skew another class's statistics ("prevent
// cross-contamination"). When AdaptiveQuant is off, every residual is
// coded through context 0 only.
type models struct {
	face, edge       *rangecoder.Model
	resX, resY, resZ [quantContexts]*rangecoder.Model
	adaptive         bool
}

func newModels(adaptive bool) *models {
	m := &models{face: rangecoder.NewModel(2), edge: rangecoder.NewModel(2), adaptive: adaptive}
	n := 1
	if adaptive {
		n = quantContexts
	}
	for i := 0; i < n; i++ {
		m.resX[i] = rangecoder.NewModel(residualAlphabet)
		m.resY[i] = rangecoder.NewModel(residualAlphabet)
		m.resZ[i] = rangecoder.NewModel(residualAlphabet)
	}
	return m
}

// context maps a quant-cell tag to a model index, collapsing to a single
// shared context when AdaptiveQuant is off.
func (m *models) context(quantCellID uint32) uint32 {
	if !m.adaptive {
		return 0
	}
	return quantCellID % quantContexts
}

// batchEmitter implements conquest.Emitter over a rangecoder.Encoder.
type batchEmitter struct {
	enc  *rangecoder.Encoder
	m    *models
	err  error
}

func newBatchEmitter(adaptive bool) *batchEmitter {
	return &batchEmitter{enc: rangecoder.NewEncoder(), m: newModels(adaptive)}
}

func (e *batchEmitter) FaceBit(splittable bool) {
	e.enc.Encode(e.m.face, boolSym(splittable))
}

func (e *batchEmitter) EdgeBit(original bool) {
	e.enc.Encode(e.m.edge, boolSym(original))
}

func (e *batchEmitter) Residual(r [3]int64, quantCellID uint32) {
	c := e.m.context(quantCellID)
	e.encodeAxis(e.m.resX[c], r[0])
	e.encodeAxis(e.m.resY[c], r[1])
	e.encodeAxis(e.m.resZ[c], r[2])
}

func (e *batchEmitter) encodeAxis(model *rangecoder.Model, v int64) {
	if e.err != nil {
		return
	}
	z := zigzag(v)
	if z >= residualAlphabet {
		e.err = errors.Wrapf(ErrQuantizationOverflow, "residual component %d exceeds coder alphabet", v)
		return
	}
	e.enc.Encode(model, int(z))
}

func (e *batchEmitter) finish() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.enc.Finish(), nil
}

func boolSym(b bool) int {
	if b {
		return 1
	}
	return 0
}

// batchConsumer implements conquest.Consumer over a rangecoder.Decoder.
type batchConsumer struct {
	dec *rangecoder.Decoder
	m   *models
	err error
}

func newBatchConsumer(data []byte, adaptive bool) *batchConsumer {
	return &batchConsumer{dec: rangecoder.NewDecoder(data), m: newModels(adaptive)}
}

func (c *batchConsumer) FaceBit() bool {
	s, err := c.dec.Decode(c.m.face)
	if err != nil {
		c.setErr(err)
		return false
	}
	return s == 1
}

func (c *batchConsumer) EdgeBit() bool {
	s, err := c.dec.Decode(c.m.edge)
	if err != nil {
		c.setErr(err)
		return false
	}
	return s == 1
}

func (c *batchConsumer) Residual(quantCellID uint32) [3]int64 {
	ctx := c.m.context(quantCellID)
	x := c.decodeAxis(c.m.resX[ctx])
	y := c.decodeAxis(c.m.resY[ctx])
	z := c.decodeAxis(c.m.resZ[ctx])
	return [3]int64{x, y, z}
}

func (c *batchConsumer) decodeAxis(model *rangecoder.Model) int64 {
	s, err := c.dec.Decode(model)
	if err != nil {
		c.setErr(err)
		return 0
	}
	return unzigzag(uint64(s))
}

func (c *batchConsumer) setErr(err error) {
	if c.err == nil {
		c.err = errors.Wrap(err, "ppmc: decoding batch symbol stream")
	}
}
