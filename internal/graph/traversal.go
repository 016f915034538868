package graph

// ============================================================================
// Traversal
// ============================================================================

// Traverse walks the graph breadth-first from start, following edges of
// the given types (empty means all) in the given direction, up to
// maxDepth hops. The start node is not included in the result.
func (s *Store) Traverse(start string, edgeTypes []EdgeType, maxDepth int, direction Direction) []*Node {
	if !s.HasNode(start) || maxDepth < 1 {
		return nil
	}

	typeSet := make(map[EdgeType]bool, len(edgeTypes))
	for _, t := range edgeTypes {
		typeSet[t] = true
	}

	type frontier struct {
		id    string
		depth int
	}

	visited := map[string]struct{}{start: {}}
	queue := []frontier{{id: start, depth: 0}}
	var results []*Node

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.depth >= maxDepth {
			continue
		}

		for _, edge := range s.GetEdges(current.id, direction) {
			if len(typeSet) > 0 && !typeSet[edge.Type] {
				continue
			}
			next := edge.TargetID
			if next == current.id {
				next = edge.SourceID
			}
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			results = append(results, s.nodes[next])
			queue = append(queue, frontier{id: next, depth: current.depth + 1})
		}
	}
	return results
}

// FindPath returns the shortest path between two nodes treating every
// edge as undirected, or nil when no path exists. Both endpoints are
// included in the result.
func (s *Store) FindPath(a, b string) []*Node {
	if !s.HasNode(a) || !s.HasNode(b) {
		return nil
	}
	if a == b {
		return []*Node{s.nodes[a]}
	}

	parent := map[string]string{a: ""}
	queue := []string{a}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for neighbor := range s.NeighborIDs(current) {
			if _, seen := parent[neighbor]; seen {
				continue
			}
			parent[neighbor] = current
			if neighbor == b {
				// Reconstruct the path back to a
				var path []*Node
				for cursor := b; cursor != ""; cursor = parent[cursor] {
					path = append([]*Node{s.nodes[cursor]}, path...)
				}
				return path
			}
			queue = append(queue, neighbor)
		}
	}
	return nil
}

// ConnectedComponents returns the node ids of each undirected connected
// component in the graph
func (s *Store) ConnectedComponents() [][]string {
	visited := make(map[string]struct{}, len(s.nodes))
	var components [][]string

	for id := range s.nodes {
		if _, seen := visited[id]; seen {
			continue
		}

		var component []string
		queue := []string{id}
		visited[id] = struct{}{}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			component = append(component, current)
			for neighbor := range s.NeighborIDs(current) {
				if _, seen := visited[neighbor]; seen {
					continue
				}
				visited[neighbor] = struct{}{}
				queue = append(queue, neighbor)
			}
		}
		components = append(components, component)
	}
	return components
}

// DisconnectedNodes returns all nodes with degree zero
func (s *Store) DisconnectedNodes() []*Node {
	var results []*Node
	for id, node := range s.nodes {
		if s.Degree(id) == 0 {
			results = append(results, node)
		}
	}
	return results
}
