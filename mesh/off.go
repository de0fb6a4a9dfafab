package mesh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tengdj/ppmc-go/geom"
)

// ReadOFF parses the Object File Format (the de facto standard plaintext
// mesh format used across the PPMC research code and test fixtures) and
// builds a Mesh via Builder, validating it as a closed 2-manifold.
//
// Grounded on original_source's OFF-based sample meshes (the original
// PPMC tool's ingestion format) and on the jpeg2000/mqc header-parsing
// style (line-oriented scanning with explicit error wrapping), adapted
// here to bufio.Scanner since that source reads binary headers, not text.
func ReadOFF(r io.Reader) (*Mesh, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line, ok := nextNonEmptyLine(sc)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidMesh, "empty OFF stream")
	}
	if strings.TrimSpace(line) != "OFF" {
		return nil, errors.Wrapf(ErrInvalidMesh, "missing OFF header, got %q", line)
	}

	header, ok := nextNonEmptyLine(sc)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidMesh, "missing vertex/face counts line")
	}
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return nil, errors.Wrapf(ErrInvalidMesh, "malformed counts line %q", header)
	}
	nv, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidMesh, "bad vertex count %q", fields[0])
	}
	nf, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidMesh, "bad face count %q", fields[1])
	}

	verts := make([]geom.Vec3, 0, nv)
	for i := 0; i < nv; i++ {
		l, ok := nextNonEmptyLine(sc)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidMesh, "expected %d vertices, stream ended at %d", nv, i)
		}
		f := strings.Fields(l)
		if len(f) < 3 {
			return nil, errors.Wrapf(ErrInvalidMesh, "malformed vertex line %q", l)
		}
		x, err1 := strconv.ParseFloat(f[0], 64)
		y, err2 := strconv.ParseFloat(f[1], 64)
		z, err3 := strconv.ParseFloat(f[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, errors.Wrapf(ErrInvalidMesh, "malformed vertex coordinates %q", l)
		}
		verts = append(verts, geom.Vec3{X: x, Y: y, Z: z})
	}

	b := NewBuilder(verts)
	for i := 0; i < nf; i++ {
		l, ok := nextNonEmptyLine(sc)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidMesh, "expected %d faces, stream ended at %d", nf, i)
		}
		f := strings.Fields(l)
		if len(f) < 1 {
			return nil, errors.Wrapf(ErrInvalidMesh, "malformed facet line %q", l)
		}
		d, err := strconv.Atoi(f[0])
		if err != nil || len(f) < d+1 {
			return nil, errors.Wrapf(ErrInvalidMesh, "malformed facet line %q", l)
		}
		idx := make([]int, d)
		for j := 0; j < d; j++ {
			v, err := strconv.Atoi(f[j+1])
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidMesh, "malformed facet vertex index %q", f[j+1])
			}
			idx[j] = v
		}
		b.AddFacet(idx)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "mesh: reading OFF stream")
	}
	return b.Finish()
}

func nextNonEmptyLine(sc *bufio.Scanner) (string, bool) {
	for sc.Scan() {
		l := strings.TrimSpace(sc.Text())
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		return l, true
	}
	return "", false
}

// WriteOFF serializes the mesh's currently-alive vertices and faces in
// OFF format. Handle ids are remapped to a dense 0..n-1 range since the
// arena may contain tombstoned (not Alive) slots.
func (m *Mesh) WriteOFF(w io.Writer) error {
	remap := make(map[VertexID]int, m.NumVertices())
	bw := bufio.NewWriter(w)
	n := 0
	for i := range m.Vertices {
		if m.Vertices[i].Alive {
			remap[VertexID(i)] = n
			n++
		}
	}
	fmt.Fprintln(bw, "OFF")
	fmt.Fprintf(bw, "%d %d 0\n", m.NumVertices(), m.NumFaces())
	for i := range m.Vertices {
		if !m.Vertices[i].Alive {
			continue
		}
		p := m.Vertices[i].Position
		fmt.Fprintf(bw, "%g %g %g\n", p.X, p.Y, p.Z)
	}
	for f := range m.Faces {
		if !m.Faces[f].Alive {
			continue
		}
		verts := m.FaceVertices(FaceID(f))
		fmt.Fprintf(bw, "%d", len(verts))
		for _, v := range verts {
			fmt.Fprintf(bw, " %d", remap[v])
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
