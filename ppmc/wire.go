package ppmc

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"github.com/tengdj/ppmc-go/geom"
	"github.com/tengdj/ppmc-go/mesh"
)

// Wire format (spec §4.8): a fixed header, a base mesh (the coarsest
// LOD), then one record per batch in coarsest-to-finest replay order.
// Magic + version + fixed-width fields read with encoding/binary.Read
// into a struct, no self-describing schema.
var magic = [4]byte{'P', 'P', 'M', 'C'}

const wireVersion = 1

type header struct {
	Magic         [4]byte
	Version       uint8
	QuantBits     uint8
	AdaptiveQuant uint8
	BBoxMin       [3]float64
	BBoxMax       [3]float64
	NumBatches    uint32
}

// writeHeader/readHeader encode each field individually rather than via a
// single binary.Write(struct) call, since the struct mixes byte and
// float64 fields with no guaranteed wire padding.
func writeHeader(w io.Writer, h header) error {
	for _, v := range []any{h.Magic, h.Version, h.QuantBits, h.AdaptiveQuant, h.BBoxMin, h.BBoxMax, h.NumBatches} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func readHeader(r io.Reader) (header, error) {
	var h header
	fields := []any{&h.Magic, &h.Version, &h.QuantBits, &h.AdaptiveQuant, &h.BBoxMin, &h.BBoxMax, &h.NumBatches}
	for _, v := range fields {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return h, errors.Wrap(ErrCorruptedStream, err.Error())
		}
	}
	if h.Magic != magic {
		return h, errors.Wrapf(ErrCorruptedStream, "bad magic %q", h.Magic)
	}
	if h.Version != wireVersion {
		return h, errors.Wrapf(ErrCorruptedStream, "unsupported version %d", h.Version)
	}
	return h, nil
}

func writeMesh(w io.Writer, m *mesh.Mesh) error {
	remap := make(map[mesh.VertexID]uint32, m.NumVertices())
	n := uint32(0)
	for i := range m.Vertices {
		if m.Vertices[i].Alive {
			remap[mesh.VertexID(i)] = n
			n++
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(m.NumVertices())); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(m.NumFaces())); err != nil {
		return err
	}
	for i := range m.Vertices {
		if !m.Vertices[i].Alive {
			continue
		}
		p := m.Vertices[i].Position
		if err := binary.Write(w, binary.LittleEndian, [3]float64{p.X, p.Y, p.Z}); err != nil {
			return err
		}
	}
	for f := range m.Faces {
		if !m.Faces[f].Alive {
			continue
		}
		verts := m.FaceVertices(mesh.FaceID(f))
		if err := binary.Write(w, binary.LittleEndian, uint32(len(verts))); err != nil {
			return err
		}
		for _, v := range verts {
			if err := binary.Write(w, binary.LittleEndian, remap[v]); err != nil {
				return err
			}
		}
	}
	return nil
}

func readMesh(r io.Reader) (*mesh.Mesh, error) {
	var nv, nf uint32
	if err := binary.Read(r, binary.LittleEndian, &nv); err != nil {
		return nil, errors.Wrap(ErrCorruptedStream, err.Error())
	}
	if err := binary.Read(r, binary.LittleEndian, &nf); err != nil {
		return nil, errors.Wrap(ErrCorruptedStream, err.Error())
	}
	verts := make([]geom.Vec3, nv)
	for i := range verts {
		var p [3]float64
		if err := binary.Read(r, binary.LittleEndian, &p); err != nil {
			return nil, errors.Wrap(ErrCorruptedStream, err.Error())
		}
		verts[i] = geom.Vec3{X: p[0], Y: p[1], Z: p[2]}
	}
	b := mesh.NewBuilder(verts)
	for i := uint32(0); i < nf; i++ {
		var deg uint32
		if err := binary.Read(r, binary.LittleEndian, &deg); err != nil {
			return nil, errors.Wrap(ErrCorruptedStream, err.Error())
		}
		idx := make([]int, deg)
		for j := range idx {
			var vi uint32
			if err := binary.Read(r, binary.LittleEndian, &vi); err != nil {
				return nil, errors.Wrap(ErrCorruptedStream, err.Error())
			}
			idx[j] = int(vi)
		}
		b.AddFacet(idx)
	}
	m, err := b.Finish()
	if err != nil {
		return nil, errors.Wrap(ErrCorruptedStream, err.Error())
	}
	return m, nil
}

type batchRecord struct {
	blob    []byte
	forward float64
	proxy   float64
}

func writeBatch(w io.Writer, b batchRecord) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(b.blob))); err != nil {
		return err
	}
	if _, err := w.Write(b.blob); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, b.forward); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, b.proxy)
}

func readBatch(r io.Reader) (batchRecord, error) {
	var rec batchRecord
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return rec, errors.Wrap(ErrCorruptedStream, err.Error())
	}
	rec.blob = make([]byte, n)
	if _, err := io.ReadFull(r, rec.blob); err != nil {
		return rec, errors.Wrap(ErrCorruptedStream, err.Error())
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.forward); err != nil {
		return rec, errors.Wrap(ErrCorruptedStream, err.Error())
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.proxy); err != nil {
		return rec, errors.Wrap(ErrCorruptedStream, err.Error())
	}
	return rec, nil
}
