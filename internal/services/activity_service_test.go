package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/testutil"
)

func TestActivityLog_QueryGroupsByDayAndAction(t *testing.T) {
	db := testutil.NewTestDB(t)
	owner := testutil.CreateUser(t, db, "alice")
	other := testutil.CreateUser(t, db, "bob")
	activity := NewActivityLog(repository.NewActivityRepository(db))
	ctx := context.Background()

	today := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)
	record := func(at time.Time, userID uint64, action models.ActivityAction) {
		activity.now = func() time.Time { return at }
		taskID := uint64(1)
		activity.Append(ctx, userID, action, &taskID)
	}

	record(today, owner.ID, models.ActivityCreated)
	record(today.Add(time.Hour), owner.ID, models.ActivityCreated)
	record(today.Add(2*time.Hour), owner.ID, models.ActivityUpdated)
	record(today.AddDate(0, 0, -1), owner.ID, models.ActivityDeleted)
	record(today.AddDate(0, 0, -10), owner.ID, models.ActivityCreated)
	record(today, other.ID, models.ActivityCreated)

	activity.now = func() time.Time { return today.Add(3 * time.Hour) }
	counts, err := activity.Query(ctx, owner.ID, 7)
	require.NoError(t, err)

	assert.Equal(t, []ActivityCount{
		{Action: models.ActivityCreated, Count: 2, Date: "2026-10-17"},
		{Action: models.ActivityUpdated, Count: 1, Date: "2026-10-17"},
		{Action: models.ActivityDeleted, Count: 1, Date: "2026-10-16"},
	}, counts)
}

func TestActivityLog_QueryWindowBounds(t *testing.T) {
	db := testutil.NewTestDB(t)
	owner := testutil.CreateUser(t, db, "alice")
	activity := NewActivityLog(repository.NewActivityRepository(db))
	ctx := context.Background()

	for _, days := range []int{0, -1, 366} {
		_, err := activity.Query(ctx, owner.ID, days)
		assert.ErrorIs(t, err, ErrInvalidWindow, days)
	}

	counts, err := activity.Query(ctx, owner.ID, 365)
	require.NoError(t, err)
	assert.NotNil(t, counts)
	assert.Empty(t, counts)
}

func TestActivityLog_RecordsOutliveTasks(t *testing.T) {
	db := testutil.NewTestDB(t)
	owner := testutil.CreateUser(t, db, "alice")
	activity := NewActivityLog(repository.NewActivityRepository(db))
	ctx := context.Background()

	missing := uint64(424242)
	activity.Append(ctx, owner.ID, models.ActivityDeleted, &missing)
	activity.Append(ctx, owner.ID, models.ActivityAction("archived"), nil)

	counts, err := activity.Query(ctx, owner.ID, 1)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, models.ActivityAction("archived"), counts[0].Action)
	assert.Equal(t, models.ActivityDeleted, counts[1].Action)
}

func TestActivityLog_AppendSwallowsFailures(t *testing.T) {
	db := testutil.NewTestDB(t)
	activity := NewActivityLog(repository.NewActivityRepository(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.NotPanics(t, func() {
		activity.Append(context.Background(), 1, models.ActivityCreated, nil)
	})
}
