package mesh

import "slices"

// Clone returns a deep copy of m, tombstones included. An open transaction
// is not carried over.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		vertices:     slices.Clone(m.vertices),
		halfedges:    slices.Clone(m.halfedges),
		faces:        slices.Clone(m.faces),
		numVertices:  m.numVertices,
		numHalfedges: m.numHalfedges,
		numFaces:     m.numFaces,
	}
}

// Equal reports whether a and b are structurally identical: the same arena
// records under the same IDs, including removed ones. A rolled-back edit
// leaves a mesh Equal to its state before the edit.
func Equal(a, b *Mesh) bool {
	return a.numVertices == b.numVertices &&
		a.numHalfedges == b.numHalfedges &&
		a.numFaces == b.numFaces &&
		slices.Equal(a.vertices, b.vertices) &&
		slices.Equal(a.halfedges, b.halfedges) &&
		slices.Equal(a.faces, b.faces)
}

// Compact returns a copy of m without tombstones. The returned slice maps
// each old VertexID to its new ID, or [NoVertex] if the vertex was removed.
func (m *Mesh) Compact() (*Mesh, []VertexID) {
	vmap := make([]VertexID, len(m.vertices))
	hmap := make([]HalfedgeID, len(m.halfedges))
	fmap := make([]FaceID, len(m.faces))

	out := &Mesh{
		vertices:  make([]vertex, 1, m.numVertices+1),
		halfedges: make([]halfedge, 1, m.numHalfedges+1),
		faces:     make([]face, 1, m.numFaces+1),
	}
	for i := 1; i < len(m.vertices); i++ {
		if !m.vertices[i].removed {
			vmap[i] = VertexID(len(out.vertices))
			out.vertices = append(out.vertices, m.vertices[i])
		}
	}
	for i := 1; i < len(m.halfedges); i++ {
		if !m.halfedges[i].removed {
			hmap[i] = HalfedgeID(len(out.halfedges))
			out.halfedges = append(out.halfedges, m.halfedges[i])
		}
	}
	for i := 1; i < len(m.faces); i++ {
		if !m.faces[i].removed {
			fmap[i] = FaceID(len(out.faces))
			out.faces = append(out.faces, m.faces[i])
		}
	}

	for i := 1; i < len(out.vertices); i++ {
		out.vertices[i].halfedge = hmap[out.vertices[i].halfedge]
	}
	for i := 1; i < len(out.halfedges); i++ {
		he := &out.halfedges[i]
		he.target = vmap[he.target]
		he.opposite = hmap[he.opposite]
		he.next = hmap[he.next]
		he.prev = hmap[he.prev]
		he.face = fmap[he.face]
	}
	for i := 1; i < len(out.faces); i++ {
		out.faces[i].halfedge = hmap[out.faces[i].halfedge]
	}

	out.numVertices = len(out.vertices) - 1
	out.numHalfedges = len(out.halfedges) - 1
	out.numFaces = len(out.faces) - 1
	return out, vmap
}
