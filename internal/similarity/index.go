package similarity

import (
	"context"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KohlJary/project-cass-sub004/internal/graph"
	"github.com/KohlJary/project-cass-sub004/pkg/logger"
)

// ============================================================================
// Similarity Index
// ============================================================================

// Match is one nearest-neighbor result
type Match struct {
	NodeID   string
	Distance float64
}

// EdgeSuggestion proposes a relates_to edge discovered via similarity
type EdgeSuggestion struct {
	SourceID string
	TargetID string
	Strength float64
	Distance float64
}

// Index maintains one embedding per connectable node, keyed by node id.
//
// Vector state is guarded by a mutex because embeddings are written from
// background goroutines; everything else in the engine is single-owner.
// With no embedder configured the index degrades to a no-op: every
// query returns empty and nothing ever errors out to the caller.
type Index struct {
	store    *graph.Store
	embedder Embedder

	mu      sync.RWMutex
	vectors map[string][]float32

	// Distance at or below which two nodes are considered related
	threshold float64

	logger *zap.Logger
}

// NewIndex creates a similarity index over the store. A nil embedder
// puts the index in degraded mode.
func NewIndex(store *graph.Store, embedder Embedder, threshold float64) *Index {
	if threshold <= 0 {
		threshold = 0.35
	}
	return &Index{
		store:     store,
		embedder:  embedder,
		vectors:   make(map[string][]float32),
		threshold: threshold,
		logger:    logger.Get(),
	}
}

// Available reports whether an embedding provider is configured
func (x *Index) Available() bool {
	return x.embedder != nil
}

// Size returns the number of embedded nodes
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}

// EmbedNode embeds a connectable node's content, replacing any prior
// vector for the same id. Non-connectable types are ignored.
func (x *Index) EmbedNode(ctx context.Context, node *graph.Node) error {
	if x.embedder == nil || node == nil || !graph.ConnectableTypes[node.Type] {
		return nil
	}
	return x.embedText(ctx, node.ID, node.Content)
}

// embedText embeds a content snapshot for a node id. Callers copy the
// fields out of the node first so no goroutine ever reads node state
// the owner may be mutating.
func (x *Index) embedText(ctx context.Context, nodeID, content string) error {
	vector, err := x.embedder.Embed(ctx, content)
	if err != nil {
		x.logger.Warn("Embedding failed, node left unindexed",
			zap.String("node_id", nodeID),
			zap.Error(err),
		)
		return err
	}

	x.mu.Lock()
	x.vectors[nodeID] = vector
	x.mu.Unlock()
	return nil
}

// EmbedNodeAsync embeds in a background goroutine, logging failures
// instead of reporting them. Mutating callers use this so a hung
// provider never blocks a store write. The node's id and content are
// snapshotted before the goroutine launches; the owner is free to
// mutate the node while the embed is in flight.
func (x *Index) EmbedNodeAsync(node *graph.Node) {
	if x.embedder == nil || node == nil || !graph.ConnectableTypes[node.Type] {
		return
	}
	nodeID, content := node.ID, node.Content
	go func() {
		_ = x.embedText(context.Background(), nodeID, content)
	}()
}

// Remove drops a node's vector, if present
func (x *Index) Remove(nodeID string) {
	x.mu.Lock()
	delete(x.vectors, nodeID)
	x.mu.Unlock()
}

// QuerySimilar returns nodes nearest to the query text, closest first.
// Results exclude the given ids, are narrowed to allowedTypes when
// non-empty, and are cut off at maxDistance (<= 0 means no cutoff).
// In degraded mode the result is always empty.
func (x *Index) QuerySimilar(ctx context.Context, text string, excludeIDs map[string]struct{}, allowedTypes []graph.NodeType, limit int, maxDistance float64) []Match {
	if x.embedder == nil {
		return nil
	}

	queryVec, err := x.embedder.Embed(ctx, text)
	if err != nil {
		x.logger.Warn("Similarity query embedding failed, returning empty",
			zap.Error(err),
		)
		return nil
	}
	return x.queryVector(queryVec, excludeIDs, allowedTypes, limit, maxDistance)
}

// queryVector runs the nearest-neighbor scan against the in-memory
// vector table
func (x *Index) queryVector(queryVec []float32, excludeIDs map[string]struct{}, allowedTypes []graph.NodeType, limit int, maxDistance float64) []Match {
	typeSet := make(map[graph.NodeType]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		typeSet[t] = true
	}
	if limit <= 0 {
		limit = 5
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var matches []Match
	for nodeID, vector := range x.vectors {
		if _, skip := excludeIDs[nodeID]; skip {
			continue
		}
		node, err := x.store.GetNode(nodeID)
		if err != nil {
			continue
		}
		if len(typeSet) > 0 && !typeSet[node.Type] {
			continue
		}
		distance := CosineDistance(queryVec, vector)
		if maxDistance > 0 && distance > maxDistance {
			continue
		}
		matches = append(matches, Match{NodeID: nodeID, Distance: distance})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// SuggestEdges proposes relates_to edges for a node based on embedding
// proximity, excluding the node itself and its existing neighbors.
// Distance maps to strength as max(0.3, 1 - d/(2*threshold)).
func (x *Index) SuggestEdges(ctx context.Context, node *graph.Node, limit int) []EdgeSuggestion {
	if x.embedder == nil || node == nil {
		return nil
	}

	exclude := x.store.NeighborIDs(node.ID)
	exclude[node.ID] = struct{}{}

	matches := x.QuerySimilar(ctx, node.Content, exclude, nil, limit, 2*x.threshold)
	suggestions := make([]EdgeSuggestion, 0, len(matches))
	for _, match := range matches {
		suggestions = append(suggestions, EdgeSuggestion{
			SourceID: node.ID,
			TargetID: match.NodeID,
			Strength: x.strengthFor(match.Distance),
			Distance: match.Distance,
		})
	}
	return suggestions
}

// strengthFor maps a cosine distance to a relates_to strength
func (x *Index) strengthFor(distance float64) float64 {
	return math.Max(0.3, 1-distance/(2*x.threshold))
}

// MaterializeSuggestion writes a suggested relates_to edge into the
// store. Returns false if an endpoint vanished in the meantime.
func (x *Index) MaterializeSuggestion(suggestion EdgeSuggestion) bool {
	return x.store.AddEdge(&graph.Edge{
		SourceID: suggestion.SourceID,
		TargetID: suggestion.TargetID,
		Type:     graph.EdgeRelatesTo,
		Strength: suggestion.Strength,
	})
}

// ConnectDisconnected runs the edge-suggestion pass over every
// degree-zero connectable node, materializing one relates_to edge per
// suggestion. Cost scales with disconnected-node count times index
// query cost, so this runs periodically, not inline with writes.
// Returns the number of edges created.
func (x *Index) ConnectDisconnected(ctx context.Context, perNodeLimit int) int {
	if x.embedder == nil {
		return 0
	}
	if perNodeLimit <= 0 {
		perNodeLimit = 3
	}

	var orphans []*graph.Node
	for _, node := range x.store.DisconnectedNodes() {
		if graph.ConnectableTypes[node.Type] {
			orphans = append(orphans, node)
		}
	}
	if len(orphans) == 0 {
		return 0
	}

	// Make sure every orphan has a vector before suggesting edges
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(4)
	for _, node := range orphans {
		x.mu.RLock()
		_, embedded := x.vectors[node.ID]
		x.mu.RUnlock()
		if embedded {
			continue
		}
		nodeID, content := node.ID, node.Content
		group.Go(func() error {
			// Failures are logged inside embedText; the pass continues
			_ = x.embedText(groupCtx, nodeID, content)
			return nil
		})
	}
	_ = group.Wait()

	x.store.BeginBatch()
	defer x.store.EndBatch()

	created := 0
	for _, node := range orphans {
		for _, suggestion := range x.SuggestEdges(ctx, node, perNodeLimit) {
			if x.MaterializeSuggestion(suggestion) {
				created++
			}
		}
	}

	if created > 0 {
		x.logger.Info("Connected disconnected nodes",
			zap.Int("orphans", len(orphans)),
			zap.Int("edges_created", created),
		)
	}
	return created
}

// RebuildAll re-embeds every connectable node from scratch, replacing
// the whole vector table. Runs with bounded concurrency.
func (x *Index) RebuildAll(ctx context.Context) error {
	if x.embedder == nil {
		return nil
	}

	fresh := make(map[string][]float32)
	var freshMu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(4)
	for _, node := range x.store.AllNodes() {
		if !graph.ConnectableTypes[node.Type] {
			continue
		}
		nodeID, content := node.ID, node.Content
		group.Go(func() error {
			vector, err := x.embedder.Embed(groupCtx, content)
			if err != nil {
				x.logger.Warn("Rebuild skipped node",
					zap.String("node_id", nodeID),
					zap.Error(err),
				)
				return nil
			}
			freshMu.Lock()
			fresh[nodeID] = vector
			freshMu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	x.mu.Lock()
	x.vectors = fresh
	x.mu.Unlock()

	x.logger.Info("Similarity index rebuilt",
		zap.Int("vectors", len(fresh)),
	)
	return nil
}

// CosineDistance returns 1 minus the cosine similarity of two vectors.
// Mismatched or zero vectors count as maximally distant.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
