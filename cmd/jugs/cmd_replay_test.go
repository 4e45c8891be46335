package main

import (
	"bytes"
	"testing"

	"github.com/danielpatrickdp/jugs/internal/archive"
	"github.com/danielpatrickdp/jugs/internal/replay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func archivedRecord() archive.SessionRecord {
	return archive.SessionRecord{
		SessionID:  "s-1",
		Capacities: []int{8, 5, 3},
		Target:     6,
		Solved:     true,
		Entries: []archive.EntryRecord{
			{Seq: 0, Amounts: []int{8, 0, 0}, Description: "Initial state"},
			{Seq: 1, Amounts: []int{3, 5, 0}, Description: "Pour 5 from jar 1 to jar 2"},
			{Seq: 2, Amounts: []int{3, 2, 3}, Description: "Pour 3 from jar 2 to jar 3"},
			{Seq: 3, Amounts: []int{6, 2, 0}, Description: "Pour 3 from jar 3 to jar 1"},
		},
	}
}

func TestFixtureFromRecordReplaysCleanly(t *testing.T) {
	f, err := fixtureFromRecord(archivedRecord(), "")
	require.NoError(t, err)
	assert.Equal(t, "Archived session s-1", f.Description)
	require.Len(t, f.Requests, 3)
	assert.Equal(t, 0, f.Requests[0].From)
	assert.Equal(t, 1, f.Requests[0].To)

	results := replay.Replay(f.PuzzleConfig(), f.Start(), f.ToRequests(), f.Config.ToReplayConfig())
	var buf bytes.Buffer
	assert.Equal(t, 0, printComparison(&buf, f, results))
	assert.Contains(t, buf.String(), "target reached: true")
	assert.NotContains(t, buf.String(), "DIFF")
}

func TestFixtureFromRecordRejectsEmptyHistory(t *testing.T) {
	rec := archivedRecord()
	rec.Entries = nil
	_, err := fixtureFromRecord(rec, "x")
	assert.Error(t, err)
}

func TestPrintComparisonFlagsDivergence(t *testing.T) {
	f, err := fixtureFromRecord(archivedRecord(), "tampered")
	require.NoError(t, err)
	f.ExpectedResults[1].Amounts = []int{3, 1, 4}

	results := replay.Replay(f.PuzzleConfig(), f.Start(), f.ToRequests(), f.Config.ToReplayConfig())
	var buf bytes.Buffer
	assert.Positive(t, printComparison(&buf, f, results))
	assert.Contains(t, buf.String(), "DIFF")
}
