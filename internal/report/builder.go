package report

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/KohlJary/project-cass-sub004/internal/coherence"
	"github.com/KohlJary/project-cass-sub004/internal/graph"
	"github.com/KohlJary/project-cass-sub004/pkg/logger"
)

// ============================================================================
// Context Builder
// ============================================================================
//
// Ranked, human-readable views over the self-model for a downstream
// consumer. Every operation here is read-only; the builder never
// mutates the store.

// Builder produces context views over the self-model graph
type Builder struct {
	store    *graph.Store
	analyzer *coherence.Analyzer

	// Thresholds for the friction section of the overview
	frictionMinAttempts    int
	frictionMaxSuccessRate float64

	logger *zap.Logger
}

// NewBuilder creates a context builder over the store and analyzer.
// The friction thresholds feed the overview's friction section.
func NewBuilder(store *graph.Store, analyzer *coherence.Analyzer, frictionMinAttempts int, frictionMaxSuccessRate float64) *Builder {
	if frictionMinAttempts < 1 {
		frictionMinAttempts = 3
	}
	return &Builder{
		store:                  store,
		analyzer:               analyzer,
		frictionMinAttempts:    frictionMinAttempts,
		frictionMaxSuccessRate: frictionMaxSuccessRate,
		logger:                 logger.Get(),
	}
}

// IntegrationScore computes the 0-100 connectivity health metric:
// the fraction of connected nodes contributes up to 50 points, average
// degree up to 50 more, and each connected component beyond the first
// costs 5 points (capped at 50). Always clamped to [0, 100]; an empty
// graph scores 0.
func (b *Builder) IntegrationScore() float64 {
	total := b.store.NodeCount()
	if total == 0 {
		return 0
	}

	connected := 0
	degreeSum := 0
	for _, node := range b.store.AllNodes() {
		degree := b.store.Degree(node.ID)
		degreeSum += degree
		if degree > 0 {
			connected++
		}
	}

	connectedScore := float64(connected) / float64(total) * 50

	avgDegree := float64(degreeSum) / float64(total)
	degreeScore := avgDegree * 12.5
	if degreeScore > 50 {
		degreeScore = 50
	}

	components := len(b.store.ConnectedComponents())
	penalty := float64(components-1) * 5
	if penalty > 50 {
		penalty = 50
	}

	score := connectedScore + degreeScore - penalty
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// CentralNodes returns identity-bearing nodes ranked by degree,
// most connected first
func (b *Builder) CentralNodes(limit int) []*graph.Node {
	if limit <= 0 {
		limit = 10
	}

	var candidates []*graph.Node
	for _, node := range b.store.AllNodes() {
		if graph.IdentityTypes[node.Type] {
			candidates = append(candidates, node)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		di, dj := b.store.Degree(candidates[i].ID), b.store.Degree(candidates[j].ID)
		if di != dj {
			return di > dj
		}
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// RecentChanges returns meaningful-type nodes created within the last
// N days, most recent first
func (b *Builder) RecentChanges(days, limit int) []*graph.Node {
	if days <= 0 {
		days = 7
	}
	if limit <= 0 {
		limit = 10
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	var results []*graph.Node
	for _, node := range b.store.AllNodes() {
		if graph.MeaningfulTypes[node.Type] && node.CreatedAt.After(cutoff) {
			results = append(results, node)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
