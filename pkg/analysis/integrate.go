package analysis

import (
	"github.com/philipparndt/gomassing/pkg/geometry"
	"golang.org/x/sync/errgroup"
)

// partial is the integral of a run of triangles plus their edge statistics
type partial struct {
	geometry.Integral
	edges EdgeStats
}

func integrateRange(mesh *geometry.Mesh, lo, hi int, ref geometry.Vector3) partial {
	p := partial{Integral: mesh.Integrate(lo, hi, ref)}
	for i := lo; i < hi; i++ {
		tri := mesh.Triangle(i)
		if tri.IsDegenerate() {
			continue
		}
		for _, length := range tri.EdgeLengths() {
			p.edges.add(length)
		}
	}
	return p
}

// integrate sums the mesh's signed volume and area about ref. Meshes at or
// above the parallel threshold are split into contiguous chunks, one per
// worker; partial sums are combined in chunk order so the result only
// depends on the worker count.
func integrate(mesh *geometry.Mesh, ref geometry.Vector3, o options) partial {
	n := mesh.TriangleCount()
	if o.threshold <= 0 || n < o.threshold || o.workers < 2 {
		return integrateRange(mesh, 0, n, ref)
	}

	chunk := (n + o.workers - 1) / o.workers
	parts := make([]partial, (n+chunk-1)/chunk)

	var g errgroup.Group
	g.SetLimit(o.workers)
	for i := range parts {
		lo := i * chunk
		hi := min(lo+chunk, n)
		g.Go(func() error {
			parts[i] = integrateRange(mesh, lo, hi, ref)
			return nil
		})
	}
	_ = g.Wait()

	var sum partial
	for _, p := range parts {
		sum.Integral = sum.Integral.Add(p.Integral)
		sum.edges = sum.edges.merge(p.edges)
	}
	return sum
}
