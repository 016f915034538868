package graph

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KohlJary/project-cass-sub004/pkg/errors"
	"github.com/KohlJary/project-cass-sub004/pkg/logger"
)

// ============================================================================
// Node/Edge Store
// ============================================================================

// Store is the process-local node/edge store for one self-model instance.
//
// The store assumes a single logical owner: all callers are routed
// through one owning goroutine, so methods do not lock. Mutations run to
// completion; only the similarity index (which writes from background
// goroutines) synchronizes internally.
type Store struct {
	nodes map[string]*Node
	edges map[string]*Edge

	// Adjacency indexes: node id -> set of edge ids
	outgoing map[string]map[string]struct{}
	incoming map[string]map[string]struct{}

	// Node ids by type
	byType map[NodeType]map[string]struct{}

	snapshotPath string
	autosave     bool
	batchDepth   int
	dirty        bool

	logger *zap.Logger
}

// NewStore creates an empty store persisting to snapshotPath.
// An empty path disables persistence entirely (useful in tests).
func NewStore(snapshotPath string) *Store {
	return &Store{
		nodes:        make(map[string]*Node),
		edges:        make(map[string]*Edge),
		outgoing:     make(map[string]map[string]struct{}),
		incoming:     make(map[string]map[string]struct{}),
		byType:       make(map[NodeType]map[string]struct{}),
		snapshotPath: snapshotPath,
		autosave:     snapshotPath != "",
		logger:       logger.Get(),
	}
}

// NodeCount returns the number of nodes in the store
func (s *Store) NodeCount() int { return len(s.nodes) }

// EdgeCount returns the number of edges in the store
func (s *Store) EdgeCount() int { return len(s.edges) }

// AddNode inserts a node. A missing id is generated; a missing creation
// time defaults to now. Returns the stored node.
func (s *Store) AddNode(node *Node) (*Node, error) {
	if node == nil {
		return nil, errors.NewBaseError(errors.ErrorTypeGraph, "node is nil", nil)
	}
	if !ValidNodeType(node.Type) {
		return nil, errors.NewInvalidNodeType(string(node.Type))
	}
	if node.ID == "" {
		node.ID = uuid.New().String()
	}
	if _, exists := s.nodes[node.ID]; exists {
		return nil, errors.NewBaseError(errors.ErrorTypeGraph, "node id already exists: "+node.ID, nil)
	}
	if node.CreatedAt.IsZero() {
		node.CreatedAt = time.Now().UTC()
	}
	if node.Metadata == nil {
		node.Metadata = make(map[string]string)
	}
	if node.Type == NodeIntention && node.Intention == nil {
		node.Intention = &IntentionPayload{Status: IntentionActive}
	}

	s.nodes[node.ID] = node
	if s.byType[node.Type] == nil {
		s.byType[node.Type] = make(map[string]struct{})
	}
	s.byType[node.Type][node.ID] = struct{}{}

	s.markDirty()
	return node, nil
}

// GetNode retrieves a node by internal id
func (s *Store) GetNode(id string) (*Node, error) {
	node, ok := s.nodes[id]
	if !ok {
		return nil, errors.NewNodeNotFound(id)
	}
	return node, nil
}

// HasNode reports whether a node id exists
func (s *Store) HasNode(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// UpdateNode replaces content and merges metadata for an existing node.
// Type and creation time are immutable.
func (s *Store) UpdateNode(id, content string, metadata map[string]string) (*Node, error) {
	node, ok := s.nodes[id]
	if !ok {
		return nil, errors.NewNodeNotFound(id)
	}
	if content != "" {
		node.Content = content
	}
	for k, v := range metadata {
		node.Metadata[k] = v
	}
	s.markDirty()
	return node, nil
}

// DeleteNode removes a node and cascades removal of every edge touching
// it. This is the only hard-delete path in the engine.
func (s *Store) DeleteNode(id string) error {
	node, ok := s.nodes[id]
	if !ok {
		return errors.NewNodeNotFound(id)
	}

	for edgeID := range s.outgoing[id] {
		s.detachEdge(edgeID)
	}
	for edgeID := range s.incoming[id] {
		s.detachEdge(edgeID)
	}
	delete(s.outgoing, id)
	delete(s.incoming, id)
	delete(s.byType[node.Type], id)
	delete(s.nodes, id)

	s.logger.Info("Node deleted",
		zap.String("node_id", id),
		zap.String("type", string(node.Type)),
	)
	s.markDirty()
	return nil
}

// FindNodes returns nodes matching the filter, unordered
func (s *Store) FindNodes(filter NodeFilter) []*Node {
	var candidates map[string]struct{}
	if filter.Type != "" {
		candidates = s.byType[filter.Type]
	}

	substring := strings.ToLower(filter.ContentSubstring)

	var results []*Node
	appendIfMatch := func(node *Node) {
		if substring != "" && !strings.Contains(strings.ToLower(node.Content), substring) {
			return
		}
		for k, v := range filter.Metadata {
			if node.Metadata[k] != v {
				return
			}
		}
		results = append(results, node)
	}

	if candidates != nil {
		for id := range candidates {
			appendIfMatch(s.nodes[id])
		}
	} else if filter.Type == "" {
		for _, node := range s.nodes {
			appendIfMatch(node)
		}
	}
	return results
}

// NodesByType returns all nodes of the given type
func (s *Store) NodesByType(t NodeType) []*Node {
	ids := s.byType[t]
	results := make([]*Node, 0, len(ids))
	for id := range ids {
		results = append(results, s.nodes[id])
	}
	return results
}

// AllNodes returns every node in the store
func (s *Store) AllNodes() []*Node {
	results := make([]*Node, 0, len(s.nodes))
	for _, node := range s.nodes {
		results = append(results, node)
	}
	return results
}

// AllEdges returns every edge in the store
func (s *Store) AllEdges() []*Edge {
	results := make([]*Edge, 0, len(s.edges))
	for _, edge := range s.edges {
		results = append(results, edge)
	}
	return results
}

// AddEdge inserts a directed edge. Returns false (no error) when either
// endpoint is missing or the edge type is unknown, so numerous
// independent producers can fail soft.
func (s *Store) AddEdge(edge *Edge) bool {
	if edge == nil || !ValidEdgeType(edge.Type) {
		return false
	}
	if !s.HasNode(edge.SourceID) || !s.HasNode(edge.TargetID) {
		s.logger.Debug("Edge rejected, endpoint missing",
			zap.String("source_id", edge.SourceID),
			zap.String("target_id", edge.TargetID),
			zap.String("type", string(edge.Type)),
		)
		return false
	}
	if edge.SourceID == edge.TargetID && edge.Type == EdgeSupersedes {
		// A node cannot supersede itself
		return false
	}
	if edge.ID == "" {
		edge.ID = uuid.New().String()
	}
	if _, exists := s.edges[edge.ID]; exists {
		return false
	}
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now().UTC()
	}

	s.edges[edge.ID] = edge
	if s.outgoing[edge.SourceID] == nil {
		s.outgoing[edge.SourceID] = make(map[string]struct{})
	}
	s.outgoing[edge.SourceID][edge.ID] = struct{}{}
	if s.incoming[edge.TargetID] == nil {
		s.incoming[edge.TargetID] = make(map[string]struct{})
	}
	s.incoming[edge.TargetID][edge.ID] = struct{}{}

	s.markDirty()
	return true
}

// GetEdge retrieves an edge by id
func (s *Store) GetEdge(id string) (*Edge, error) {
	edge, ok := s.edges[id]
	if !ok {
		return nil, errors.NewEdgeNotFound(id)
	}
	return edge, nil
}

// GetEdges returns edges touching a node in the given direction,
// optionally narrowed to specific edge types
func (s *Store) GetEdges(nodeID string, direction Direction, types ...EdgeType) []*Edge {
	typeSet := make(map[EdgeType]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	var results []*Edge
	collect := func(edgeIDs map[string]struct{}) {
		for edgeID := range edgeIDs {
			edge := s.edges[edgeID]
			if len(typeSet) > 0 && !typeSet[edge.Type] {
				continue
			}
			results = append(results, edge)
		}
	}

	switch direction {
	case DirectionOut:
		collect(s.outgoing[nodeID])
	case DirectionIn:
		collect(s.incoming[nodeID])
	default:
		collect(s.outgoing[nodeID])
		collect(s.incoming[nodeID])
	}
	return results
}

// EdgeBetween returns the first edge of the given type between two nodes
// in either direction, or nil
func (s *Store) EdgeBetween(a, b string, t EdgeType) *Edge {
	for edgeID := range s.outgoing[a] {
		edge := s.edges[edgeID]
		if edge.Type == t && edge.TargetID == b {
			return edge
		}
	}
	for edgeID := range s.incoming[a] {
		edge := s.edges[edgeID]
		if edge.Type == t && edge.SourceID == b {
			return edge
		}
	}
	return nil
}

// RemoveEdge deletes an edge by id
func (s *Store) RemoveEdge(id string) bool {
	if _, ok := s.edges[id]; !ok {
		return false
	}
	s.detachEdge(id)
	s.markDirty()
	return true
}

// detachEdge removes an edge from the edge map and both adjacency
// indexes without touching dirty state
func (s *Store) detachEdge(id string) {
	edge, ok := s.edges[id]
	if !ok {
		return
	}
	delete(s.outgoing[edge.SourceID], id)
	delete(s.incoming[edge.TargetID], id)
	delete(s.edges, id)
}

// Neighbors returns the distinct nodes adjacent to nodeID, treating all
// edges as undirected
func (s *Store) Neighbors(nodeID string) []*Node {
	seen := make(map[string]struct{})
	var results []*Node
	for edgeID := range s.outgoing[nodeID] {
		other := s.edges[edgeID].TargetID
		if _, dup := seen[other]; !dup && other != nodeID {
			seen[other] = struct{}{}
			results = append(results, s.nodes[other])
		}
	}
	for edgeID := range s.incoming[nodeID] {
		other := s.edges[edgeID].SourceID
		if _, dup := seen[other]; !dup && other != nodeID {
			seen[other] = struct{}{}
			results = append(results, s.nodes[other])
		}
	}
	return results
}

// NeighborIDs returns the ids of nodes adjacent to nodeID
func (s *Store) NeighborIDs(nodeID string) map[string]struct{} {
	seen := make(map[string]struct{})
	for edgeID := range s.outgoing[nodeID] {
		seen[s.edges[edgeID].TargetID] = struct{}{}
	}
	for edgeID := range s.incoming[nodeID] {
		seen[s.edges[edgeID].SourceID] = struct{}{}
	}
	delete(seen, nodeID)
	return seen
}

// Degree returns the number of edges touching a node
func (s *Store) Degree(nodeID string) int {
	return len(s.outgoing[nodeID]) + len(s.incoming[nodeID])
}

// LinkSupersession wires newID -> supersedes -> oldID, enforcing the
// revision chain invariants: both endpoints exist, each node keeps at
// most one immediate predecessor and successor, and the chain stays
// acyclic.
func (s *Store) LinkSupersession(newID, oldID string) error {
	if newID == oldID {
		return errors.NewRevisionCycle(newID)
	}
	if !s.HasNode(newID) {
		return errors.NewNodeNotFound(newID)
	}
	if !s.HasNode(oldID) {
		return errors.NewNodeNotFound(oldID)
	}
	if len(s.GetEdges(newID, DirectionOut, EdgeSupersedes)) > 0 {
		return errors.NewDuplicateSupersession(newID)
	}
	if len(s.GetEdges(oldID, DirectionIn, EdgeSupersedes)) > 0 {
		return errors.NewDuplicateSupersession(oldID)
	}

	// Walk the chain backwards from oldID; reaching newID means a cycle
	cursor := oldID
	visited := map[string]struct{}{newID: {}}
	for cursor != "" {
		if _, seen := visited[cursor]; seen && cursor != newID {
			break
		}
		if cursor == newID {
			return errors.NewRevisionCycle(newID)
		}
		visited[cursor] = struct{}{}
		cursor = s.supersededBy(cursor)
	}

	s.AddEdge(&Edge{SourceID: newID, TargetID: oldID, Type: EdgeSupersedes})
	return nil
}

// supersededBy returns the id the given node supersedes, or ""
func (s *Store) supersededBy(id string) string {
	edges := s.GetEdges(id, DirectionOut, EdgeSupersedes)
	if len(edges) == 0 {
		return ""
	}
	return edges[0].TargetID
}

// Evolution returns the full revision chain containing nodeID, oldest
// first. The walk is cycle-safe and terminates even on damaged chains.
func (s *Store) Evolution(nodeID string) ([]*Node, error) {
	if !s.HasNode(nodeID) {
		return nil, errors.NewNodeNotFound(nodeID)
	}

	visited := map[string]struct{}{nodeID: {}}

	// Walk back to the oldest revision
	oldest := nodeID
	for {
		prev := s.supersededBy(oldest)
		if prev == "" {
			break
		}
		if _, seen := visited[prev]; seen {
			break
		}
		visited[prev] = struct{}{}
		oldest = prev
	}

	// Walk forward collecting the chain
	var chain []*Node
	forward := map[string]struct{}{}
	cursor := oldest
	for cursor != "" {
		if _, seen := forward[cursor]; seen {
			break
		}
		forward[cursor] = struct{}{}
		chain = append(chain, s.nodes[cursor])

		next := ""
		for _, edge := range s.GetEdges(cursor, DirectionIn, EdgeSupersedes) {
			next = edge.SourceID
			break
		}
		cursor = next
	}
	return chain, nil
}

// PruneDanglingEdges drops edges whose endpoints no longer exist and
// returns how many were removed. Run as a consistency pass.
func (s *Store) PruneDanglingEdges() int {
	var stale []string
	for id, edge := range s.edges {
		if !s.HasNode(edge.SourceID) || !s.HasNode(edge.TargetID) {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		s.detachEdge(id)
	}
	if len(stale) > 0 {
		s.logger.Warn("Dropped dangling edges",
			zap.Int("count", len(stale)),
		)
		s.markDirty()
	}
	return len(stale)
}
