package graph

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistence_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")

	s := NewStore(path)
	a := addNode(t, s, NodeObservation, "I hedge when uncertain")
	b := addNode(t, s, NodeOpinion, "I value directness")
	require.True(t, s.AddEdge(&Edge{SourceID: a.ID, TargetID: b.ID, Type: EdgeContradicts, Strength: 0.8}))
	require.NoError(t, s.Save())

	reloaded := NewStore(path)
	reloaded.Load()

	assert.Equal(t, 2, reloaded.NodeCount())
	assert.Equal(t, 1, reloaded.EdgeCount())

	got, err := reloaded.GetNode(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "I hedge when uncertain", got.Content)
	assert.True(t, got.CreatedAt.Equal(a.CreatedAt))

	edges := reloaded.GetEdges(a.ID, DirectionOut, EdgeContradicts)
	require.Len(t, edges, 1)
	assert.InDelta(t, 0.8, edges[0].Strength, 1e-9)
}

func TestPersistence_IntentionPayloadSurvives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")

	s := NewStore(path)
	intention, err := s.AddNode(&Node{
		Type:    NodeIntention,
		Content: "speak more directly",
		Intention: &IntentionPayload{
			Condition:    "when hedging noticed",
			Status:       IntentionActive,
			SuccessCount: 1,
			FailureCount: 4,
		},
	})
	require.NoError(t, err)
	require.NoError(t, s.Save())

	reloaded := NewStore(path)
	reloaded.Load()

	got, err := reloaded.GetNode(intention.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Intention)
	assert.Equal(t, "when hedging noticed", got.Intention.Condition)
	assert.Equal(t, 1, got.Intention.SuccessCount)
	assert.Equal(t, 4, got.Intention.FailureCount)
}

func TestPersistence_CorruptSnapshotStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewStore(path)
	s.Load()
	assert.Equal(t, 0, s.NodeCount())

	// The store stays usable after a failed load
	addNode(t, s, NodeObservation, "fresh start")
	assert.Equal(t, 1, s.NodeCount())
}

func TestPersistence_MissingSnapshotStartsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "never-written.json"))
	s.Load()
	assert.Equal(t, 0, s.NodeCount())
}

func TestPersistence_LoadSkipsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")

	snapshot := map[string]any{
		"nodes": []map[string]any{
			{"id": "n1", "type": "observation", "content": "ok"},
			{"id": "", "type": "observation", "content": "no id"},
			{"id": "n2", "type": "bogus_type", "content": "bad type"},
		},
		"edges": []map[string]any{
			{"id": "e1", "source_id": "n1", "target_id": "gone", "type": "relates_to"},
		},
	}
	data, err := json.Marshal(snapshot)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	s := NewStore(path)
	s.Load()

	assert.Equal(t, 1, s.NodeCount())
	assert.Equal(t, 0, s.EdgeCount())
}

func TestPersistence_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")

	s := NewStore(path)
	addNode(t, s, NodeObservation, "a")
	require.NoError(t, s.Save())

	_, err := os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestPersistence_BatchDefersWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")

	s := NewStore(path)
	s.BeginBatch()
	addNode(t, s, NodeObservation, "a")
	addNode(t, s, NodeObservation, "b")

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no snapshot should exist mid-batch")

	s.EndBatch()
	_, err = os.Stat(path)
	assert.NoError(t, err, "EndBatch flushes the snapshot")
}

func TestPersistence_ExportImportMerge(t *testing.T) {
	src := newTestStore()
	a := addNode(t, src, NodeObservation, "a")
	b := addNode(t, src, NodeOpinion, "b")
	require.True(t, src.AddEdge(&Edge{SourceID: a.ID, TargetID: b.ID, Type: EdgeRelatesTo}))

	doc := src.Export()
	data, err := MarshalDocument(doc)
	require.NoError(t, err)
	parsed, err := UnmarshalDocument(data)
	require.NoError(t, err)

	dst := newTestStore()
	// Pre-seed one of the nodes so the merge has to skip it
	_, err = dst.AddNode(&Node{ID: a.ID, Type: NodeObservation, Content: "already here"})
	require.NoError(t, err)

	nodes, edges := dst.Import(parsed)
	assert.Equal(t, 1, nodes)
	assert.Equal(t, 1, edges)

	kept, err := dst.GetNode(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "already here", kept.Content, "existing nodes win on merge")

	// Re-importing the same document is a no-op
	nodes, edges = dst.Import(parsed)
	assert.Equal(t, 0, nodes)
	assert.Equal(t, 0, edges)
}
