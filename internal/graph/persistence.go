package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/KohlJary/project-cass-sub004/pkg/errors"
)

// ============================================================================
// Snapshot Persistence
// ============================================================================

// Snapshot is the on-disk representation of one instance's graph
type Snapshot struct {
	Nodes   []*Node   `json:"nodes"`
	Edges   []*Edge   `json:"edges"`
	SavedAt time.Time `json:"saved_at"`
}

// Document is the generic export/import shape shared with whole-instance
// tooling. It deliberately omits saved_at.
type Document struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// markDirty records a pending change and saves immediately unless a
// batch is open. Batch mutations defer the whole-file rewrite to
// EndBatch so bulk ingestion stays linear.
func (s *Store) markDirty() {
	s.dirty = true
	if s.autosave && s.batchDepth == 0 {
		s.save()
	}
}

// Touch records an in-place payload mutation (counter bumps, resolved
// flags) so it reaches the next snapshot write
func (s *Store) Touch() {
	s.markDirty()
}

// BeginBatch suspends autosave until the matching EndBatch
func (s *Store) BeginBatch() {
	s.batchDepth++
}

// EndBatch closes a batch and flushes pending changes to disk
func (s *Store) EndBatch() {
	if s.batchDepth > 0 {
		s.batchDepth--
	}
	if s.batchDepth == 0 && s.dirty && s.autosave {
		s.save()
	}
}

// Save forces a snapshot write regardless of dirty state
func (s *Store) Save() error {
	if s.snapshotPath == "" {
		return nil
	}
	return s.save()
}

// save writes the full graph to a temp file and atomically renames it
// over the snapshot path. A failed write leaves the in-memory graph and
// the prior on-disk snapshot untouched.
func (s *Store) save() error {
	snapshot := Snapshot{
		Nodes:   s.AllNodes(),
		Edges:   s.AllEdges(),
		SavedAt: time.Now().UTC(),
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		wrapped := errors.NewSnapshotWriteFailed(s.snapshotPath, err)
		s.logger.Error("Snapshot marshal failed", zap.Error(wrapped))
		return wrapped
	}

	if dir := filepath.Dir(s.snapshotPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			wrapped := errors.NewSnapshotWriteFailed(s.snapshotPath, err)
			s.logger.Error("Snapshot directory create failed", zap.Error(wrapped))
			return wrapped
		}
	}

	tmpPath := s.snapshotPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		wrapped := errors.NewSnapshotWriteFailed(s.snapshotPath, err)
		s.logger.Error("Snapshot write failed", zap.Error(wrapped))
		return wrapped
	}
	if err := os.Rename(tmpPath, s.snapshotPath); err != nil {
		_ = os.Remove(tmpPath)
		wrapped := errors.NewSnapshotWriteFailed(s.snapshotPath, err)
		s.logger.Error("Snapshot rename failed", zap.Error(wrapped))
		return wrapped
	}

	s.dirty = false
	s.logger.Debug("Snapshot saved",
		zap.String("path", s.snapshotPath),
		zap.Int("nodes", len(snapshot.Nodes)),
		zap.Int("edges", len(snapshot.Edges)),
	)
	return nil
}

// Load reads the snapshot from disk. A missing or corrupt file is
// logged and yields an empty graph; load never fails hard, so a damaged
// snapshot cannot take the engine down.
func (s *Store) Load() {
	if s.snapshotPath == "" {
		return
	}

	data, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Snapshot unreadable, starting empty",
				zap.String("path", s.snapshotPath),
				zap.Error(err),
			)
		}
		return
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.logger.Warn("Snapshot corrupt, starting empty",
			zap.String("path", s.snapshotPath),
			zap.Error(err),
		)
		return
	}

	s.BeginBatch()
	loadedNodes := 0
	for _, node := range snapshot.Nodes {
		if node == nil || node.ID == "" || !ValidNodeType(node.Type) {
			continue
		}
		if _, err := s.AddNode(node); err == nil {
			loadedNodes++
		}
	}
	loadedEdges := 0
	for _, edge := range snapshot.Edges {
		if edge == nil {
			continue
		}
		if s.AddEdge(edge) {
			loadedEdges++
		}
	}
	s.dirty = false
	s.batchDepth = 0

	s.logger.Info("Snapshot loaded",
		zap.String("path", s.snapshotPath),
		zap.Int("nodes", loadedNodes),
		zap.Int("edges", loadedEdges),
		zap.Time("saved_at", snapshot.SavedAt),
	)
}

// Export returns the whole graph as a generic document
func (s *Store) Export() *Document {
	return &Document{
		Nodes: s.AllNodes(),
		Edges: s.AllEdges(),
	}
}

// Import merges a document into the store. Nodes whose ids already
// exist are skipped; edges are dropped when either endpoint is absent
// after the merge. Returns counts of imported nodes and edges.
func (s *Store) Import(doc *Document) (int, int) {
	if doc == nil {
		return 0, 0
	}

	s.BeginBatch()
	defer s.EndBatch()

	nodes := 0
	for _, node := range doc.Nodes {
		if node == nil || node.ID == "" || s.HasNode(node.ID) {
			continue
		}
		if _, err := s.AddNode(node); err == nil {
			nodes++
		}
	}
	edges := 0
	for _, edge := range doc.Edges {
		if edge == nil {
			continue
		}
		if edge.ID != "" {
			if _, err := s.GetEdge(edge.ID); err == nil {
				continue
			}
		}
		if s.AddEdge(edge) {
			edges++
		}
	}

	s.logger.Info("Document imported",
		zap.Int("nodes", nodes),
		zap.Int("edges", edges),
	)
	return nodes, edges
}

// MarshalDocument serializes an export document to indented JSON
func MarshalDocument(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// UnmarshalDocument parses an export document, tolerating unknown
// extra fields
func UnmarshalDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &doc, nil
}
