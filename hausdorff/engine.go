package hausdorff

import (
	"context"
	"math"
	"sync"

	"github.com/tengdj/ppmc-go/geom"
	"github.com/tengdj/ppmc-go/mesh"
)

// Strategy selects how impact points are sampled across a face before
// nearest-facet lookup (spec §4.7: "BVH", "Associate", "AssociateCylinder").
// StrategyAssociate and StrategyAssociateCylinder differ from StrategyBVH
// only in adding each triangle's barycenter as an extra sample; all three
// query the full BVH of the other mesh, with no restriction to absorbed
// triangles and no cylinder filter.
type Strategy int

const (
	StrategyBVH Strategy = iota
	StrategyAssociate
	StrategyAssociateCylinder
)

// Engine computes the forward and proxy Hausdorff distance bounds of
// spec §4.7 between two mesh LODs.
type Engine struct {
	Strategy Strategy
	Samples  int // extra impact points along each fan triangle's first edge, beyond its 3 corners
}

// NewEngine returns an Engine with the BVH strategy and 3 extra samples
// per triangle: the 3 corners plus 3 evenly spaced points along the edge
// from the first corner to the second.
func NewEngine() *Engine {
	return &Engine{Strategy: StrategyBVH, Samples: 3}
}

// Result holds the per-batch Hausdorff bookkeeping of spec §3's face
// attributes, aggregated to the batch level.
type Result struct {
	Forward float64 // max distance: approx -> original
	Proxy   float64 // max distance: original -> approx
}

// ComputeBatch measures the forward and proxy Hausdorff distances
// between approx and original, writing each face's own bound into
// approx's Face.Hausdorff/ProxyHausdorff (spec §3: "per-face bookkeeping"),
// and returns the batch-level maxima (spec §4.7's max aggregation).
func (e *Engine) ComputeBatch(approx, original *mesh.Mesh) Result {
	origTris := triangulate(original)
	approxTris := triangulate(approx)
	origBVH := NewBVH(flatten(origTris))
	approxBVH := NewBVH(flatten(approxTris))

	var res Result
	for f := range approx.Faces {
		if !approx.Faces[f].Alive {
			continue
		}
		fid := mesh.FaceID(f)
		tris := approxTris[fid]
		pts := e.samplePoints(tris)
		maxD := 0.0
		for _, p := range pts {
			_, d2 := origBVH.NearestPoint(p)
			if d := math.Sqrt(d2); d > maxD {
				maxD = d
			}
		}
		approx.Faces[f].Hausdorff = maxD
		approx.Faces[f].ImpactPoints = pts
		if maxD > res.Forward {
			res.Forward = maxD
		}
	}

	for f := range original.Faces {
		if !original.Faces[f].Alive {
			continue
		}
		tris := origTris[mesh.FaceID(f)]
		pts := e.samplePoints(tris)
		maxD := 0.0
		for _, p := range pts {
			_, d2 := approxBVH.NearestPoint(p)
			if d := math.Sqrt(d2); d > maxD {
				maxD = d
			}
		}
		if maxD > res.Proxy {
			res.Proxy = maxD
		}
	}
	// ProxyHausdorff is recorded against the approx mesh's faces too,
	// each carrying the global proxy bound for this batch (spec §3 allows
	// a coarser per-batch value where a precise per-face attribution is
	// not meaningful, since the proxy direction samples the *original*).
	for f := range approx.Faces {
		if approx.Faces[f].Alive {
			approx.Faces[f].ProxyHausdorff = res.Proxy
		}
	}
	return res
}

func (e *Engine) samplePoints(tris []geom.Triangle) []geom.Vec3 {
	var pts []geom.Vec3
	for _, tr := range tris {
		pts = append(pts, tr[0], tr[1], tr[2])
		if e.Strategy != StrategyBVH {
			pts = append(pts, tr.Barycenter())
		}
		for i := 1; i <= e.Samples; i++ {
			t := float64(i) / float64(e.Samples+1)
			pts = append(pts, tr[0].Scale(1-t).Add(tr[1].Scale(t)))
		}
	}
	return pts
}

// triangulate produces a lazy fan triangulation of every live face,
// caching nothing across calls (spec §3: "triangles: lazily computed,
// invalidated whenever SplitState/boundary changes").
func triangulate(m *mesh.Mesh) map[mesh.FaceID][]geom.Triangle {
	out := make(map[mesh.FaceID][]geom.Triangle)
	for f := range m.Faces {
		if !m.Faces[f].Alive {
			continue
		}
		fid := mesh.FaceID(f)
		verts := m.FaceVertices(fid)
		if len(verts) < 3 {
			continue
		}
		p0 := m.V(verts[0]).Position
		var tris []geom.Triangle
		for i := 1; i+1 < len(verts); i++ {
			p1 := m.V(verts[i]).Position
			p2 := m.V(verts[i+1]).Position
			tris = append(tris, geom.Triangle{p0, p1, p2})
		}
		out[fid] = tris
	}
	return out
}

func flatten(m map[mesh.FaceID][]geom.Triangle) []geom.Triangle {
	var out []geom.Triangle
	for _, tris := range m {
		out = append(out, tris...)
	}
	return out
}

// ComputeMany runs ComputeBatch over a slice of (approx, original) pairs
// concurrently, bounded to maxWorkers goroutines: a worker-pool-over-channel
// idiom, adapted to a context-cancellable fixed pool here since Hausdorff
// computation is CPU, not I/O, bound.
func (e *Engine) ComputeMany(ctx context.Context, pairs [][2]*mesh.Mesh, maxWorkers int) ([]Result, error) {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	results := make([]Result, len(pairs))
	jobs := make(chan int)
	errCh := make(chan error, 1)

	n := maxWorkers
	if n > len(pairs) {
		n = len(pairs)
	}
	if n == 0 {
		return results, nil
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				select {
				case <-ctx.Done():
					select {
					case errCh <- ctx.Err():
					default:
					}
					return
				default:
				}
				results[idx] = e.ComputeBatch(pairs[idx][0], pairs[idx][1])
			}
		}()
	}
	cancelled := false
send:
	for i := range pairs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			cancelled = true
			break send
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled {
		return results, ctx.Err()
	}
	select {
	case err := <-errCh:
		return results, err
	default:
		return results, nil
	}
}
