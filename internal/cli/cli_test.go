package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/course-media/internal/blocks"
	"github.com/rcliao/course-media/internal/model"
	"github.com/rcliao/course-media/internal/project"
	"github.com/rcliao/course-media/internal/store"
)

// Topic narration was saved one slot late: topic 0 holds audio-3, topic 1
// holds audio-4. image-9 has no stored asset.
const driftedProject = `{
  "project": {"id": "1700000000000", "name": "Drifted"},
  "course_content": {
    "welcomePage": {"id": "welcome", "media": [{"id": "audio-0", "type": "audio"}]},
    "objectivesPage": {"id": "objectives", "media": [{"id": "audio-1", "type": "audio"}]},
    "topics": [
      {"id": "topic-0", "media": [{"id": "audio-3", "type": "audio"}, {"id": "image-9", "type": "image"}]},
      {"id": "topic-1", "media": [{"id": "audio-4", "type": "audio"}]}
    ],
    "assessment": {}
  }
}`

// Topic 0 is one slot late and topic 1 two slots late.
const mixedDriftProject = `{
  "project": {"id": "1700000000000", "name": "Mixed"},
  "course_content": {
    "welcomePage": {"id": "welcome", "media": [{"id": "audio-0", "type": "audio"}]},
    "objectivesPage": {"id": "objectives", "media": [{"id": "audio-1", "type": "audio"}]},
    "topics": [
      {"id": "topic-0", "media": [{"id": "audio-3", "type": "audio"}]},
      {"id": "topic-1", "media": [{"id": "audio-5", "type": "audio"}]}
    ],
    "assessment": {}
  }
}`

type env struct {
	dir     string
	db      string
	project string
}

func newEnv(t *testing.T) env {
	t.Helper()
	return newEnvWith(t, driftedProject)
}

func newEnvWith(t *testing.T, body string) env {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("COURSE_MEDIA_CONFIG", "")
	t.Setenv("COURSE_MEDIA_DB", "")

	e := env{dir: dir, db: filepath.Join(dir, "media.db"), project: filepath.Join(dir, "Drifted_1700000000000.scormproj")}
	require.NoError(t, os.WriteFile(e.project, []byte(body), 0o644))

	s, err := store.NewSQLiteStore(e.db)
	require.NoError(t, err)
	for _, id := range []string{"audio-0", "audio-1", "audio-2", "audio-3", "audio-4"} {
		_, err := s.Put(context.Background(), store.PutParams{
			ProjectID: "1700000000000", MediaID: id, Data: []byte(id),
			Metadata: model.Metadata{Type: model.MediaAudio},
		})
		require.NoError(t, err)
	}
	require.NoError(t, s.Close())
	return e
}

func execute(ctx context.Context, args ...string) ([]byte, error) {
	// cobra keeps the first context it sees on each command
	RootCmd.SetContext(nil)
	for _, c := range RootCmd.Commands() {
		c.SetContext(nil)
	}
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs(append(args, "--format", "json", "--log-level", "error"))
	err := RootCmd.ExecuteContext(ctx)
	return out.Bytes(), err
}

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	out, err := execute(context.Background(), args...)
	require.NoError(t, err)
	return out
}

func cancelled() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestValidateReportsSystematicDrift(t *testing.T) {
	e := newEnv(t)

	var res validateResult
	require.NoError(t, json.Unmarshal(run(t, "validate", e.project), &res))

	assert.Equal(t, "1700000000000", res.ProjectID)
	assert.Equal(t, 4, res.Checked)
	assert.Equal(t, "systematic", res.Status)
	assert.Equal(t, -1, res.Offset)
	require.Len(t, res.Mismatches, 2)
	assert.Equal(t, "audio-3", res.Mismatches[0].MediaID)
	assert.Equal(t, "0003", res.Mismatches[0].AssignedBlock)
	assert.Equal(t, "0004", res.Mismatches[0].ExpectedBlock)
}

func TestRepairThenValidate(t *testing.T) {
	e := newEnv(t)

	var dry repairResult
	require.NoError(t, json.Unmarshal(run(t, "repair", e.project, "--db", e.db, "--dry-run=true", "--force=false"), &dry))
	assert.Equal(t, 2, dry.Repaired)
	assert.False(t, dry.Saved)

	var res repairResult
	require.NoError(t, json.Unmarshal(run(t, "repair", e.project, "--db", e.db, "--dry-run=false", "--force=false"), &res))
	assert.Equal(t, "systematic", res.Status)
	assert.Equal(t, 2, res.Repaired)
	assert.Zero(t, res.Remaining)
	assert.True(t, res.Saved)

	f, err := project.Load(e.project)
	require.NoError(t, err)
	assert.Equal(t, "audio-2", f.Content.Topics[0].Media[0].ID)
	assert.Equal(t, "audio-3", f.Content.Topics[1].Media[0].ID)

	var after validateResult
	require.NoError(t, json.Unmarshal(run(t, "validate", e.project), &after))
	assert.Equal(t, "aligned", after.Status)
	assert.Empty(t, after.Mismatches)
}

func TestCleanupRemovesOrphans(t *testing.T) {
	e := newEnv(t)

	var res cleanupResult
	require.NoError(t, json.Unmarshal(run(t, "cleanup", e.project, "--db", e.db, "--dry-run=false"), &res))
	assert.Equal(t, 5, res.Checked)
	assert.Equal(t, []string{"image-9"}, res.RemovedMediaIDs)
	assert.True(t, res.Saved)

	f, err := project.Load(e.project)
	require.NoError(t, err)
	require.Len(t, f.Content.Topics[0].Media, 1)
	assert.Equal(t, "audio-3", f.Content.Topics[0].Media[0].ID)

	// second pass finds nothing
	var again cleanupResult
	require.NoError(t, json.Unmarshal(run(t, "cleanup", e.project, "--db", e.db, "--dry-run=false"), &again))
	assert.Empty(t, again.RemovedMediaIDs)
	assert.False(t, again.Saved)
}

func TestCleanupInterruptedLeavesProjectUnchanged(t *testing.T) {
	e := newEnv(t)
	before, err := os.ReadFile(e.project)
	require.NoError(t, err)

	out, err := execute(cancelled(), "cleanup", e.project, "--db", e.db, "--dry-run=false")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out)

	after, err := os.ReadFile(e.project)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestRepairInterruptedLeavesProjectUnchanged(t *testing.T) {
	e := newEnv(t)
	before, err := os.ReadFile(e.project)
	require.NoError(t, err)

	_, err = execute(cancelled(), "repair", e.project, "--db", e.db, "--dry-run=false", "--force=false")
	assert.ErrorIs(t, err, context.Canceled)

	after, err := os.ReadFile(e.project)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestRepairNonSystematicDrift(t *testing.T) {
	e := newEnvWith(t, mixedDriftProject)
	before, err := os.ReadFile(e.project)
	require.NoError(t, err)

	var res repairResult
	require.NoError(t, json.Unmarshal(run(t, "repair", e.project, "--db", e.db, "--dry-run=false", "--force=false"), &res))
	assert.Equal(t, "non_systematic", res.Status)
	assert.Zero(t, res.Repaired)
	assert.Equal(t, 2, res.Remaining)
	assert.False(t, res.Saved)
	assert.Contains(t, res.Note, "detected, not repaired")

	after, err := os.ReadFile(e.project)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	var forced repairResult
	require.NoError(t, json.Unmarshal(run(t, "repair", e.project, "--db", e.db, "--dry-run=false", "--force=true"), &forced))
	assert.Equal(t, "non_systematic", forced.Status)
	assert.Equal(t, 2, forced.Repaired)
	assert.Zero(t, forced.Remaining)
	assert.True(t, forced.Saved)

	f, err := project.Load(e.project)
	require.NoError(t, err)
	assert.Equal(t, "audio-2", f.Content.Topics[0].Media[0].ID)
	assert.Equal(t, "audio-3", f.Content.Topics[1].Media[0].ID)

	// leave the flag off for the other tests
	run(t, "repair", e.project, "--db", e.db, "--dry-run=true", "--force=false")
}

func TestResolveProject(t *testing.T) {
	e := newEnv(t)

	var res []struct {
		MediaID string `json:"mediaId"`
		Found   bool   `json:"found"`
		Size    int64  `json:"size"`
		Entry   *struct {
			Type   string `json:"type"`
			Handle string `json:"handle"`
		} `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(run(t, "resolve", "--project", e.project, "--db", e.db), &res))
	require.Len(t, res, 5)

	found := map[string]bool{}
	size := map[string]int64{}
	for _, r := range res {
		found[r.MediaID] = r.Found
		size[r.MediaID] = r.Size
		if r.Found {
			assert.Contains(t, r.Entry.Handle, "blob:course-media/")
		}
	}
	assert.True(t, found["audio-0"])
	assert.Equal(t, int64(len("audio-0")), size["audio-0"])
	assert.False(t, found["image-9"])
}

func TestMigratePageIDsDryRun(t *testing.T) {
	e := newEnv(t)

	type result struct {
		Fixed  []store.PageIDFix `json:"fixed"`
		DryRun bool              `json:"dryRun"`
	}
	args := []string{"migrate-page-ids", "--project", e.project, "--db", e.db}

	var plan result
	require.NoError(t, json.Unmarshal(run(t, append(args, "--dry-run=true")...), &plan))
	assert.True(t, plan.DryRun)
	require.Len(t, plan.Fixed, 5)

	var again result
	require.NoError(t, json.Unmarshal(run(t, append(args, "--dry-run=true")...), &again))
	assert.Equal(t, plan.Fixed, again.Fixed)

	var applied result
	require.NoError(t, json.Unmarshal(run(t, append(args, "--dry-run=false")...), &applied))
	assert.False(t, applied.DryRun)
	assert.Equal(t, plan.Fixed, applied.Fixed)

	var after result
	require.NoError(t, json.Unmarshal(run(t, append(args, "--dry-run=true")...), &after))
	assert.Empty(t, after.Fixed)
}

func TestOffsetLabel(t *testing.T) {
	assert.Equal(t, "+2", offsetLabel(blocks.Mismatch{AssignedBlock: "0005", ExpectedBlock: "0003"}))
	assert.Equal(t, "-1", offsetLabel(blocks.Mismatch{AssignedBlock: "0003", ExpectedBlock: "0004"}))
	assert.Equal(t, "?", offsetLabel(blocks.Mismatch{AssignedBlock: "x", ExpectedBlock: "0004"}))
}
