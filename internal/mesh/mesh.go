// Package mesh builds unstructured triangle meshes from regular grids.
package mesh

// Vertex is an x, y, z position.
type Vertex [3]float64

// Triangle indexes three vertices.
type Triangle [3]uint32

// Triangulate builds a shared-vertex mesh over the grid spanned by xs
// (columns) and ys (rows). Vertices are laid out row-major with z=0; each
// grid cell yields two triangles.
func Triangulate(xs, ys []float64) ([]Vertex, []Triangle) {
	nc := len(xs)
	nr := len(ys)

	vertices := make([]Vertex, nr*nc)
	for r := 0; r < nr; r++ {
		for c := 0; c < nc; c++ {
			vertices[r*nc+c] = Vertex{xs[c], ys[r], 0}
		}
	}

	triangles := make([]Triangle, 0, 2*(nr-1)*(nc-1))
	for r := 0; r < nr-1; r++ {
		for c := 0; c < nc-1; c++ {
			topLeft := uint32(r*nc + c)
			topRight := uint32(r*nc + c + 1)
			botLeft := uint32((r+1)*nc + c)
			botRight := uint32((r+1)*nc + c + 1)
			triangles = append(triangles,
				Triangle{topLeft, topRight, botLeft},
				Triangle{topRight, botRight, botLeft},
			)
		}
	}
	return vertices, triangles
}
