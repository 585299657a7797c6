package schema

import "fmt"

// RefEdge is a proposed entity -> referenced-entity edge, i.e. a new or
// updated reference property.
type RefEdge struct {
	FromEntityID string
	ToEntityID   string
}

// CircularReferenceError reports that a proposed reference property would
// close a cycle in the schema's reference graph.
type CircularReferenceError struct {
	FromEntityID string
	ToEntityID   string
}

func (e CircularReferenceError) Error() string {
	return fmt.Sprintf("circular reference detected: adding a reference from entity %s to entity %s would create a cycle", e.FromEntityID, e.ToEntityID)
}

// WouldCreateCycle reports whether adding the proposed edge to the schema's
// reference graph would introduce a cycle.
//
// props must be all non-deleted properties in the project. The adjacency
// list is built fresh from their reference properties, excluding
// excludePropertyID so that editing a property never competes with its own
// prior value. Depth-first search with a recursion-stack set detects a
// back-edge in O(V+E).
func WouldCreateCycle(props []Property, proposed RefEdge, excludePropertyID string) bool {
	adj := make(map[string][]string)
	for _, p := range props {
		if p.Deleted || p.Type != TypeReference || p.ReferencedEntityID == "" {
			continue
		}
		if p.ID == excludePropertyID {
			continue
		}
		adj[p.EntityID] = append(adj[p.EntityID], p.ReferencedEntityID)
	}
	adj[proposed.FromEntityID] = append(adj[proposed.FromEntityID], proposed.ToEntityID)

	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var visit func(node string) bool
	visit = func(node string) bool {
		visited[node] = true
		onStack[node] = true
		for _, next := range adj[node] {
			if onStack[next] {
				return true
			}
			if !visited[next] && visit(next) {
				return true
			}
		}
		onStack[node] = false
		return false
	}

	for node := range adj {
		if !visited[node] && visit(node) {
			return true
		}
	}
	return false
}
