// Package rangecoder implements the byte-aligned adaptive range coder of
// spec §4.1: a carry-propagating binary splitter generalized to an
// arbitrary-alphabet, quasi-static cumulative-frequency Model.
//
// The register/renormalization/carry-handling mechanics are adapted from
// the jpeg2000/mqc MQ-coder (growable output buffer via an
// ensureIndex-style append, a (low, range) register pair renormalized a
// byte at a time, explicit carry propagation through a run of cached
// 0xFF bytes). What changes is the symbol model: the MQ-coder hardwires a
// binary MPS/LPS state machine per context; spec §4.1 instead calls for
// quasi-static multi-symbol frequency tables (one per symbol class), so
// Encode/Decode here take a *Model with an arbitrary alphabet instead of
// a context id indexing a 47-state table.
package rangecoder

import "github.com/pkg/errors"

// ErrCorruptedStream is returned by Decode when a symbol falls outside
// the supplied model's alphabet. Reads past the end of the data yield
// zero bytes, so a truncated stream is reported only when that padding
// decodes to an out-of-range symbol.
var ErrCorruptedStream = errors.New("rangecoder: corrupted stream")

const (
	topValue uint32 = 1 << 24
	fullMask uint64 = 0xFFFFFFFF
)

// Encoder is a carry-propagating range encoder. The zero value is not
// usable; construct with NewEncoder.
type Encoder struct {
	low       uint64
	rng       uint32
	cache     byte
	cacheSize uint64
	buf       []byte
}

// NewEncoder creates a range encoder with an empty output buffer.
func NewEncoder() *Encoder {
	return &Encoder{
		rng:       0xFFFFFFFF,
		cache:     0,
		cacheSize: 1,
		buf:       make([]byte, 0, 256),
	}
}

// Encode emits sym under model, then updates model's adaptive statistics.
func (e *Encoder) Encode(m *Model, sym int) {
	cumLo, freq, total := m.Range(sym)
	r := e.rng / uint32(total)
	e.low += uint64(r) * uint64(cumLo)
	e.rng = r * uint32(freq)
	for e.rng < topValue {
		e.shiftLow()
		e.rng <<= 8
	}
	m.update(sym)
}

func (e *Encoder) shiftLow() {
	if uint32(e.low>>32) != 0 || e.low < 0xFF000000 {
		carry := byte(e.low >> 32)
		temp := e.cache
		for {
			e.buf = append(e.buf, temp+carry)
			temp = 0xFF
			e.cacheSize--
			if e.cacheSize == 0 {
				break
			}
		}
		e.cache = byte(e.low >> 24)
	}
	e.cacheSize++
	e.low = (e.low << 8) & fullMask
}

// Finish flushes the remaining register state and returns the encoded
// byte stream. The Encoder must not be used afterward.
func (e *Encoder) Finish() []byte {
	for i := 0; i < 5; i++ {
		e.shiftLow()
	}
	return e.buf
}

// Decoder is the mirror of Encoder.
type Decoder struct {
	data []byte
	pos  int
	rng  uint32
	code uint32
}

// NewDecoder creates a range decoder over data, a byte stream produced by
// an Encoder's Finish.
func NewDecoder(data []byte) *Decoder {
	d := &Decoder{data: data, rng: 0xFFFFFFFF}
	for i := 0; i < 5; i++ {
		d.code = (d.code << 8) | uint32(d.nextByte())
	}
	return d
}

func (d *Decoder) nextByte() byte {
	if d.pos >= len(d.data) {
		d.pos++
		return 0
	}
	b := d.data[d.pos]
	d.pos++
	return b
}

// Decode reads the next symbol coded under model and updates model's
// adaptive statistics, mirroring the encoder's update. It returns
// ErrCorruptedStream if the decoded frequency does not map to any symbol
// in the model's alphabet (which cannot happen for a model the encoder
// used honestly, but can happen on a bit-flipped or truncated stream).
func (d *Decoder) Decode(m *Model) (int, error) {
	total := m.total
	r := d.rng / uint32(total)
	target := d.code / r
	sym, cumLo, freq, err := m.symbolForTarget(int(target))
	if err != nil {
		return 0, err
	}
	d.code -= r * uint32(cumLo)
	d.rng = r * uint32(freq)
	for d.rng < topValue {
		d.code = (d.code << 8) | uint32(d.nextByte())
		d.rng <<= 8
	}
	m.update(sym)
	return sym, nil
}

// BytesConsumed reports how many bytes of the input buffer have been read
// so far, including the 5-byte initial fill. Useful for diagnostics when
// surfacing CorruptedStream with a byte offset.
func (d *Decoder) BytesConsumed() int {
	return d.pos
}
