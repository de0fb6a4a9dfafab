package rangecoder

import "github.com/pkg/errors"

// maxTotal is the ceiling spec §4.1 calls for ("periodically renormalizing
// to keep cumulative frequencies below a fixed ceiling"); once the sum of
// all symbol frequencies would reach it, every frequency is halved
// (floored at 1) before the next update.
const maxTotal = 1 << 15

// increment is how much a symbol's frequency grows each time it is coded:
// model updates are pure integer add/shift, no floating point anywhere in
// the hot path.
const increment = 32

// Model is a quasi-static, adaptive cumulative-frequency table for one
// symbol class (spec §4.1 calls for separate models per class: face bits,
// edge bits, residual components, quant-cell ids, to "prevent
// cross-contamination", per DESIGN NOTES §9).
type Model struct {
	freq  []uint32
	total uint32
}

// NewModel creates a flat (uniform) model over alphabetSize symbols.
func NewModel(alphabetSize int) *Model {
	if alphabetSize < 1 {
		alphabetSize = 1
	}
	m := &Model{freq: make([]uint32, alphabetSize)}
	for i := range m.freq {
		m.freq[i] = 1
	}
	m.total = uint32(alphabetSize)
	return m
}

// AlphabetSize returns the number of distinct symbols this model codes.
func (m *Model) AlphabetSize() int {
	return len(m.freq)
}

// Range returns (cumulative frequency below sym, sym's frequency, total)
// for use by the encoder.
func (m *Model) Range(sym int) (cumLo, freq, total uint32) {
	for i := 0; i < sym; i++ {
		cumLo += m.freq[i]
	}
	return cumLo, m.freq[sym], m.total
}

// symbolForTarget finds the symbol whose cumulative-frequency interval
// contains target, returning (symbol, cumLo, freq, error).
func (m *Model) symbolForTarget(target int) (int, uint32, uint32, error) {
	cum := uint32(0)
	for sym, f := range m.freq {
		if uint32(target) < cum+f {
			return sym, cum, f, nil
		}
		cum += f
	}
	return 0, 0, 0, errors.Wrapf(ErrCorruptedStream, "symbol target %d exceeds model total %d", target, m.total)
}

// update increments sym's frequency and rescales the table if the total
// would cross maxTotal.
func (m *Model) update(sym int) {
	m.freq[sym] += increment
	m.total += increment
	if m.total >= maxTotal {
		m.rescale()
	}
}

func (m *Model) rescale() {
	total := uint32(0)
	for i, f := range m.freq {
		nf := f / 2
		if nf == 0 {
			nf = 1
		}
		m.freq[i] = nf
		total += nf
	}
	m.total = total
}

// Reset restores the model to a flat distribution, used at batch
// boundaries where spec §3 requires transient per-pass state to reset.
func (m *Model) Reset() {
	for i := range m.freq {
		m.freq[i] = 1
	}
	m.total = uint32(len(m.freq))
}
