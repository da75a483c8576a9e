package importer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_WriteApplied(t *testing.T) {
	st, brand := newTestStore(t)
	rep, err := New(st, fixtureOptions(brand.ID)).Run(context.Background(), fixtureWorkbook())
	require.NoError(t, err)

	var buf bytes.Buffer
	rep.Write(&buf)
	out := buf.String()

	assert.Contains(t, out, "Sheets found: Influencers, 2025 Influencer Tracker, 2026 Influencer Tracker, Budget")
	assert.Contains(t, out, "After de-duplication: 4 unique influencers")
	assert.Contains(t, out, "[3] Rejected rows: 4")
	assert.Contains(t, out, "2025 Influencer Tracker row 4: "+ReasonSectionRow)
	assert.Contains(t, out, "[4] Applied (transaction committed)")
	assert.Contains(t, out, "Assignments: 3 inserted, 1 skipped, 0 unmatched")
	assert.Contains(t, out, "IMPORT SUMMARY")
	assert.Contains(t, out, "Influencers in DB:      4")
}

func TestReport_WriteDryRun(t *testing.T) {
	rep := &Report{
		Sheets:     []string{"Influencers"},
		DryRun:     true,
		Rejections: []Rejection{{Sheet: "2025 Influencer Tracker", Reason: ReasonNoSheet}},
	}

	var buf bytes.Buffer
	rep.Write(&buf)
	out := buf.String()

	assert.Contains(t, out, "[4] Dry run: nothing written.")
	assert.Contains(t, out, "    2025 Influencer Tracker: "+ReasonNoSheet)
	assert.NotContains(t, out, "IMPORT SUMMARY")
}
