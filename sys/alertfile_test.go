package sys

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertFileMissingIsEmpty(t *testing.T) {
	f := NewAlertFile(filepath.Join(t.TempDir(), "alerts.json"))

	alerts, err := f.Load()
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAlertFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "alerts.json")
	f := NewAlertFile(path)

	due := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	in := map[string][]*Alert{
		"42": {
			{ID: "a1", Owner: "42", Label: "standup", DueAt: due},
			{ID: "a2", Owner: "42", Label: "water", DueAt: due.Add(time.Hour), Recurrence: "1h", Failures: 2},
		},
		"7": {},
	}
	require.NoError(t, f.Save(in))

	out, err := f.Load()
	require.NoError(t, err)
	require.Len(t, out["42"], 2)
	assert.NotContains(t, out, "7", "empty owners are not written")

	assert.Equal(t, *in["42"][0], *out["42"][0])
	assert.Equal(t, *in["42"][1], *out["42"][1])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is renamed away")
}

func TestAlertFileSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.json")
	f := NewAlertFile(path)

	due := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	require.NoError(t, f.Save(map[string][]*Alert{
		"42": {{ID: "a1", Owner: "42", Label: "standup", DueAt: due}},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	rec := raw["42"][0]
	assert.Equal(t, "standup", rec["label"])
	assert.Equal(t, "2025-06-01T18:00:00Z", rec["due_at"])
	assert.Contains(t, rec, "recurrence")
	assert.Nil(t, rec["recurrence"])
	assert.NotContains(t, rec, "failures")
}

func TestAlertFileNaiveAndOffsetTimes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.json")
	doc := `{
		"42": [
			{"label": "naive", "due_at": "2025-06-01T18:00:00", "recurrence": null},
			{"label": "offset", "due_at": "2025-06-01T20:00:00+02:00", "recurrence": "1d"},
			{"label": "broken", "due_at": "next tuesday", "recurrence": null}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	alerts, err := NewAlertFile(path).Load()
	require.NoError(t, err)
	require.Len(t, alerts["42"], 2, "unparseable due_at is dropped")

	want := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	for _, a := range alerts["42"] {
		assert.True(t, want.Equal(a.DueAt), a.Label)
		assert.Equal(t, time.UTC, a.DueAt.Location())
		assert.NotEmpty(t, a.ID, "missing IDs are generated")
		assert.Equal(t, "42", a.Owner)
	}
	assert.Equal(t, "1d", alerts["42"][1].Recurrence)
}

func TestAlertFileCorruptIsQuarantined(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	alerts, err := NewAlertFile(path).Load()
	require.ErrorIs(t, err, ErrAlertFileCorrupt)
	assert.Empty(t, alerts)

	_, statErr := os.Stat(path + ".corrupt")
	assert.NoError(t, statErr)
	_, statErr = os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
