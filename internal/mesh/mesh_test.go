package mesh

import "testing"

func TestTriangulate(t *testing.T) {
	xs := []float64{0, 1, 2}
	ys := []float64{0, 1, 2}

	vertices, triangles := Triangulate(xs, ys)

	if len(vertices) != 9 {
		t.Fatalf("got %d vertices, want 9", len(vertices))
	}
	if len(triangles) != 8 {
		t.Fatalf("got %d triangles, want 8", len(triangles))
	}

	for i, v := range vertices {
		if v[2] != 0 {
			t.Errorf("vertex %d has z=%v, want 0", i, v[2])
		}
	}

	// row-major vertex layout
	if vertices[1] != (Vertex{1, 0, 0}) || vertices[3] != (Vertex{0, 1, 0}) {
		t.Errorf("unexpected vertex layout: %v %v", vertices[1], vertices[3])
	}

	// first cell splits into (0,1,3) and (1,4,3)
	if triangles[0] != (Triangle{0, 1, 3}) {
		t.Errorf("triangle 0 = %v", triangles[0])
	}
	if triangles[1] != (Triangle{1, 4, 3}) {
		t.Errorf("triangle 1 = %v", triangles[1])
	}

	// all indices in range
	for i, tri := range triangles {
		for _, idx := range tri {
			if int(idx) >= len(vertices) {
				t.Errorf("triangle %d references vertex %d", i, idx)
			}
		}
	}
}

func TestTriangulate_SingleCell(t *testing.T) {
	vertices, triangles := Triangulate([]float64{0, 1}, []float64{0, 1})
	if len(vertices) != 4 || len(triangles) != 2 {
		t.Errorf("got %d vertices, %d triangles", len(vertices), len(triangles))
	}
}
