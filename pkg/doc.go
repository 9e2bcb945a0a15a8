// Package pkg provides the core libraries of meshsurgery, a half-edge mesh
// kernel for topology-preserving edge collapse.
//
// # Overview
//
// The pkg directory is organized into these areas:
//
//  1. [mesh] - The half-edge data structure, soup import/export, journaled
//     transactions and invariant validation
//  2. [euler] - Euler operators (join facet, erase facet, join vertex)
//  3. [collapse] - Edge collapse built from the Euler operators, with its
//     topology classification and link condition
//  4. [shapes] and [sdfmesh] - Mesh generators
//  5. [pipeline] - Orchestration (build → collapse → validate) with caching
//  6. [cache] - File, Redis and MongoDB caches for generated meshes
//  7. [errors] and [observability] - Error codes and instrumentation hooks
//
// # Architecture
//
// The typical data flow:
//
//	Shape name or polygon soup file
//	         ↓
//	    [shapes] / [sdfmesh] / [mesh.ReadSoup] (build, cached by [cache])
//	         ↓
//	    [collapse] (classify, check link, collapse via [euler])
//	         ↓
//	    [mesh.Mesh.Validate]
//	         ↓
//	    polygon soup JSON
//
// # Quick Start
//
//	m := shapes.Octahedron()
//	pq := m.FindHalfedge(5, 1)
//	if err := collapse.CheckLink(m, pq); err != nil {
//	    return err
//	}
//	v, err := collapse.Collapse(m, pq)
//	if err != nil {
//	    return err // m is unchanged
//	}
//	fmt.Println("kept vertex", v, m.Counts())
//
// [mesh]: github.com/matzehuels/meshsurgery/pkg/mesh
// [euler]: github.com/matzehuels/meshsurgery/pkg/mesh/euler
// [collapse]: github.com/matzehuels/meshsurgery/pkg/mesh/collapse
// [shapes]: github.com/matzehuels/meshsurgery/pkg/mesh/shapes
// [sdfmesh]: github.com/matzehuels/meshsurgery/pkg/mesh/sdfmesh
// [pipeline]: github.com/matzehuels/meshsurgery/pkg/pipeline
// [cache]: github.com/matzehuels/meshsurgery/pkg/cache
// [errors]: github.com/matzehuels/meshsurgery/pkg/errors
// [observability]: github.com/matzehuels/meshsurgery/pkg/observability
// [mesh.ReadSoup]: github.com/matzehuels/meshsurgery/pkg/mesh#ReadSoup
// [mesh.Mesh.Validate]: github.com/matzehuels/meshsurgery/pkg/mesh#Mesh.Validate
package pkg
