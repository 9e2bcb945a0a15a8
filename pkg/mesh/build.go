package mesh

import (
	"encoding/json"
	"io"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/matzehuels/meshsurgery/pkg/errors"
)

// FromPolygons builds a mesh from a polygon soup. Each polygon lists 0-based
// indices into points in counter-clockwise order and must have at least three
// distinct vertices.
//
// Opposite half-edges are paired by their endpoints. Edges used by only one
// polygon get a border half-edge, and border half-edges are linked into
// border loops. The input must describe an oriented 2-manifold, possibly with
// boundary: an error coded NON_MANIFOLD is returned for a directed edge used
// twice (inconsistent orientation or an edge shared by more than two
// polygons) and for vertices whose incident polygons form more than one fan.
func FromPolygons(points []v3.Vec, polygons [][]int) (*Mesh, error) {
	m := New()
	m.vertices = make([]vertex, 1, len(points)+1)
	for _, p := range points {
		m.AddVertex(p)
	}

	type key struct{ from, to VertexID }
	directed := make(map[key]HalfedgeID)

	for fi, poly := range polygons {
		n := len(poly)
		if n < 3 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "polygon %d has %d vertices, need at least 3", fi, n)
		}
		seen := make(map[int]bool, n)
		for _, idx := range poly {
			if idx < 0 || idx >= len(points) {
				return nil, errors.New(errors.ErrCodeInvalidInput, "polygon %d: vertex index %d out of range", fi, idx)
			}
			if seen[idx] {
				return nil, errors.New(errors.ErrCodeInvalidInput, "polygon %d repeats vertex %d", fi, idx)
			}
			seen[idx] = true
		}

		f := m.AddFace(NoHalfedge)
		loop := make([]HalfedgeID, n)
		for i := range poly {
			a, b := VertexID(poly[i]+1), VertexID(poly[(i+1)%n]+1)
			if _, dup := directed[key{a, b}]; dup {
				return nil, errors.New(errors.ErrCodeNonManifold,
					"polygon %d: edge %d->%d already used (inconsistent orientation or more than two faces on an edge)",
					fi, poly[i], poly[(i+1)%n])
			}
			var h HalfedgeID
			if o, ok := directed[key{b, a}]; ok {
				h = m.Opposite(o)
			} else {
				h = m.AddEdge(a, b)
			}
			directed[key{a, b}] = h
			m.halfedges[h].face = f
			loop[i] = h
		}
		for i, h := range loop {
			m.Link(h, loop[(i+1)%n])
			m.vertices[m.Target(h)].halfedge = h
		}
		m.faces[f].halfedge = loop[0]
	}

	// Border half-edges: link each to the border half-edge leaving its target.
	// A vertex with two outgoing border half-edges is pinched.
	outgoing := make(map[VertexID]HalfedgeID)
	var border []HalfedgeID
	for _, h := range m.Halfedges() {
		if !m.IsBorder(h) {
			continue
		}
		src := m.Source(h)
		if _, dup := outgoing[src]; dup {
			return nil, errors.New(errors.ErrCodeNonManifold, "vertex %d has more than one border fan", src-1)
		}
		outgoing[src] = h
		border = append(border, h)
	}
	for _, h := range border {
		m.Link(h, outgoing[m.Target(h)])
		m.vertices[m.Target(h)].halfedge = h
	}

	incoming := make([]int, len(m.vertices))
	for _, h := range m.Halfedges() {
		incoming[m.Target(h)]++
	}
	for _, v := range m.Vertices() {
		if m.vertices[v].halfedge == NoHalfedge {
			return nil, errors.New(errors.ErrCodeInvalidInput, "vertex %d is not referenced by any polygon", v-1)
		}
		if d := m.Degree(v); d != incoming[v] {
			return nil, errors.New(errors.ErrCodeNonManifold, "vertex %d joins more than one fan (%d of %d edges reachable)", v-1, d, incoming[v])
		}
	}
	return m, nil
}

// Soup is a JSON-serializable polygon soup. It is the snapshot format used
// by the cache and the CLI.
type Soup struct {
	Points   [][3]float64 `json:"points"`
	Polygons [][]int      `json:"polygons"`
}

// Soup exports the live mesh with dense 0-based vertex indices.
func (m *Mesh) Soup() Soup {
	index := make([]int, len(m.vertices))
	s := Soup{
		Points:   make([][3]float64, 0, m.numVertices),
		Polygons: make([][]int, 0, m.numFaces),
	}
	for _, v := range m.Vertices() {
		index[v] = len(s.Points)
		p := m.vertices[v].point
		s.Points = append(s.Points, [3]float64{p.X, p.Y, p.Z})
	}
	for _, f := range m.Faces() {
		var poly []int
		for h := range m.Loop(m.faces[f].halfedge) {
			poly = append(poly, index[m.Source(h)])
		}
		s.Polygons = append(s.Polygons, poly)
	}
	return s
}

// FromSoup builds a mesh from s. See [FromPolygons].
func FromSoup(s Soup) (*Mesh, error) {
	points := make([]v3.Vec, len(s.Points))
	for i, p := range s.Points {
		points[i] = v3.Vec{X: p[0], Y: p[1], Z: p[2]}
	}
	return FromPolygons(points, s.Polygons)
}

// WriteSoup writes the mesh as indented soup JSON.
func (m *Mesh) WriteSoup(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m.Soup())
}

// ReadSoup decodes soup JSON from r and builds a mesh.
func ReadSoup(r io.Reader) (*Mesh, error) {
	var s Soup
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode mesh snapshot")
	}
	return FromSoup(s)
}
