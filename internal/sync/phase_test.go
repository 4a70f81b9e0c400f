package sync

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mafia-stats/gomafia-sync/internal/models"
)

func clubStageSpec(stored map[string]bool) phaseSpec[*models.ClubCandidate] {
	return phaseSpec[*models.ClubCandidate]{
		name:     models.PhaseClubs,
		validate: func(*models.ClubCandidate) bool { return true },
		exists: func(_ context.Context, gomafiaID string) (bool, error) {
			return stored[gomafiaID], nil
		},
		idOf: func(c *models.ClubCandidate) string { return c.GomafiaID },
	}
}

func stageLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil))
	return logger.WithField("phase", models.PhaseClubs)
}

func TestStageBatchSkipsDuplicatesWithinBatch(t *testing.T) {
	spec := clubStageSpec(nil)
	items := []*models.ClubCandidate{
		{GomafiaID: "15", Name: "Мафия Москва"},
		{GomafiaID: "15", Name: "Мафия Москва"}, // repeated on the same page
		{GomafiaID: "16", Name: "Дикая Мафия"},
	}

	result := &PhaseResult{Phase: models.PhaseClubs}
	toInsert, err := stageBatch(context.Background(), stageLogger(), spec, nil, make(map[string]bool), items, result)

	require.NoError(t, err)
	require.Len(t, toInsert, 2)
	assert.Equal(t, "15", toInsert[0].GomafiaID)
	assert.Equal(t, "16", toInsert[1].GomafiaID)
	assert.Equal(t, 1, result.SkippedDuplicates)
	assert.Equal(t, 0, result.SkippedInvalid)
}

func TestStageBatchSkipsEarlierBatchesOfSameRun(t *testing.T) {
	spec := clubStageSpec(nil)
	result := &PhaseResult{Phase: models.PhaseClubs}
	staged := make(map[string]bool)

	first, err := stageBatch(context.Background(), stageLogger(), spec, nil, staged,
		[]*models.ClubCandidate{{GomafiaID: "15"}}, result)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// The next page repeats a club the run already staged.
	second, err := stageBatch(context.Background(), stageLogger(), spec, nil, staged,
		[]*models.ClubCandidate{{GomafiaID: "15"}, {GomafiaID: "16"}}, result)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "16", second[0].GomafiaID)
	assert.Equal(t, 1, result.SkippedDuplicates)
}

func TestStageBatchSkipsCheckpointedAndStoredIDs(t *testing.T) {
	spec := clubStageSpec(map[string]bool{"17": true})
	checkpoint := models.NewSyncCheckpoint(models.PhaseClubs, 0, 3, []string{"15"})

	items := []*models.ClubCandidate{
		{GomafiaID: "15"}, // committed by the interrupted run
		{GomafiaID: "17"}, // already stored locally
		{GomafiaID: "18"},
	}

	result := &PhaseResult{Phase: models.PhaseClubs}
	toInsert, err := stageBatch(context.Background(), stageLogger(), spec, checkpoint, make(map[string]bool), items, result)

	require.NoError(t, err)
	require.Len(t, toInsert, 1)
	assert.Equal(t, "18", toInsert[0].GomafiaID)
	assert.Equal(t, 2, result.SkippedDuplicates)
}

func TestStageBatchReportsInvalidRecords(t *testing.T) {
	spec := clubStageSpec(nil)
	spec.validate = func(c *models.ClubCandidate) bool { return c.GomafiaID != "bad" }

	result := &PhaseResult{Phase: models.PhaseClubs}
	toInsert, err := stageBatch(context.Background(), stageLogger(), spec, nil, make(map[string]bool),
		[]*models.ClubCandidate{{GomafiaID: "bad"}, {GomafiaID: "15"}}, result)

	require.NoError(t, err)
	require.Len(t, toInsert, 1)
	assert.Equal(t, 1, result.SkippedInvalid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "bad")
}
