package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/civitas-ai/opinionspace/internal/domain/opinionspace"
)

const snapshotJSON = `{
  "id": "sim-42",
  "title": "Congestion pricing",
  "status": "completed",
  "clusters": [
    {"id": "c1", "name": "Commuters"},
    {"id": "c2", "name": "Residents"}
  ],
  "results": [
    {"agent_id": "a1", "cluster_id": "c1", "turns": [
      {"round": 1, "score": 30, "emotion": "anger", "response": "Driving to work gets expensive."}
    ]},
    {"agent_id": "a2", "cluster_id": "c2", "turns": [
      {"round": 1, "score": 78, "emotion": "hope", "response": "Quieter streets at last."}
    ]}
  ]
}`

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestProjectCommandJSON(t *testing.T) {
	path := writeSnapshot(t, snapshotJSON)

	out, err := runCommand(t, "project", path)
	require.NoError(t, err)

	var proj domain.Projection
	require.NoError(t, json.Unmarshal([]byte(out), &proj))
	assert.Equal(t, "sim-42", proj.Metadata.SimulationID)
	assert.Equal(t, 2, proj.Metadata.TotalClusters)
	require.Len(t, proj.Clusters, 2)
	assert.Empty(t, proj.Bridges)
}

func TestProjectCommandIncludeBridges(t *testing.T) {
	path := writeSnapshot(t, snapshotJSON)

	out, err := runCommand(t, "project", path, "--include-bridges")
	require.NoError(t, err)

	var proj domain.Projection
	require.NoError(t, json.Unmarshal([]byte(out), &proj))
	assert.Len(t, proj.Bridges, 1)
}

func TestProjectCommandSummary(t *testing.T) {
	path := writeSnapshot(t, snapshotJSON)

	out, err := runCommand(t, "project", path, "-o", "summary")
	require.NoError(t, err)

	assert.Contains(t, out, "Congestion pricing")
	assert.Contains(t, out, "Commuters")
	assert.Contains(t, out, "Residents")
	assert.Contains(t, out, "CLUSTER")
}

func TestProjectCommandUnknownOutput(t *testing.T) {
	path := writeSnapshot(t, snapshotJSON)

	_, err := runCommand(t, "project", path, "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestProjectCommandMissingFile(t *testing.T) {
	_, err := runCommand(t, "project", filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestProjectCommandInvalidJSON(t *testing.T) {
	path := writeSnapshot(t, "{not json")

	_, err := runCommand(t, "project", path)
	require.Error(t, err)
}

func TestProjectCommandInvalidSnapshot(t *testing.T) {
	// Duplicate cluster IDs fail aggregate validation.
	path := writeSnapshot(t, `{
	  "id": "sim-1", "title": "x", "status": "completed",
	  "clusters": [{"id": "c1", "name": "A"}, {"id": "c1", "name": "B"}]
	}`)

	_, err := runCommand(t, "project", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate cluster ID")
}

func TestProjectCommandRequiresArgument(t *testing.T) {
	_, err := runCommand(t, "project")
	require.Error(t, err)
}

func TestRootCommandVersion(t *testing.T) {
	out, err := runCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "opinionctl")
}
