package tasks_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/infinityvet/infinityvet/internal/database/models"
	"github.com/infinityvet/infinityvet/internal/tasks"
	"github.com/infinityvet/infinityvet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// The booster and stock sweeps never touch the queue client, so the tests
// construct the handler without one.
func newSweepHandler(t *testing.T) (*tasks.Handler, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return tasks.NewHandler(db, logger, nil), db
}

func countNotifications(t *testing.T, db *gorm.DB, orgID uuid.UUID, tipo models.NotificationType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("organization_id = ? AND tipo = ?", orgID, tipo).
		Count(&count).Error)
	return count
}

func TestHandleBoosterCheck(t *testing.T) {
	handler, db := newSweepHandler(t)
	org := testutil.CreateTestOrg(t, db)
	animal := testutil.CreateTestAnimal(t, db, org.ID, "Mimosa")

	past := time.Now().AddDate(0, 0, -3)
	future := time.Now().AddDate(0, 0, 30)

	due := testutil.CreateTestVaccination(t, db, org.ID, animal.ID, &past)
	testutil.CreateTestVaccination(t, db, org.ID, animal.ID, &future)
	testutil.CreateTestVaccination(t, db, org.ID, animal.ID, nil)

	task, err := tasks.NewBoosterCheckTask(tasks.BoosterCheckPayload{OrganizationID: org.ID})
	require.NoError(t, err)

	t.Run("notifies only the due booster", func(t *testing.T) {
		require.NoError(t, handler.HandleBoosterCheck(context.Background(), task))

		assert.Equal(t, int64(1), countNotifications(t, db, org.ID, models.NotificationReforcoVacina))

		var n models.Notification
		require.NoError(t, db.Where("organization_id = ?", org.ID).First(&n).Error)
		require.NotNil(t, n.RefID)
		assert.Equal(t, due.ID, *n.RefID)
		assert.False(t, n.Lida)
	})

	t.Run("second sweep is a no-op while the notification is unread", func(t *testing.T) {
		require.NoError(t, handler.HandleBoosterCheck(context.Background(), task))

		assert.Equal(t, int64(1), countNotifications(t, db, org.ID, models.NotificationReforcoVacina))
	})

	t.Run("resweep after the notification is read notifies again", func(t *testing.T) {
		require.NoError(t, db.Model(&models.Notification{}).
			Where("organization_id = ?", org.ID).
			Update("lida", true).Error)

		require.NoError(t, handler.HandleBoosterCheck(context.Background(), task))

		assert.Equal(t, int64(2), countNotifications(t, db, org.ID, models.NotificationReforcoVacina))
	})
}

func TestHandleBoosterCheck_ScopedToPayloadOrg(t *testing.T) {
	handler, db := newSweepHandler(t)

	org := testutil.CreateTestOrg(t, db)
	otherOrg := testutil.CreateTestOrg(t, db)

	past := time.Now().AddDate(0, 0, -3)
	foreignAnimal := testutil.CreateTestAnimal(t, db, otherOrg.ID, "Alheia")
	testutil.CreateTestVaccination(t, db, otherOrg.ID, foreignAnimal.ID, &past)

	task, err := tasks.NewBoosterCheckTask(tasks.BoosterCheckPayload{OrganizationID: org.ID})
	require.NoError(t, err)
	require.NoError(t, handler.HandleBoosterCheck(context.Background(), task))

	assert.Equal(t, int64(0), countNotifications(t, db, org.ID, models.NotificationReforcoVacina))
	assert.Equal(t, int64(0), countNotifications(t, db, otherOrg.ID, models.NotificationReforcoVacina))
}

func TestHandleStockCheck(t *testing.T) {
	handler, db := newSweepHandler(t)
	org := testutil.CreateTestOrg(t, db)

	testutil.CreateTestProduct(t, db, org.ID, "Cheio", 100, 10)
	low := testutil.CreateTestProduct(t, db, org.ID, "No Limite", 10, 10)
	testutil.CreateTestProduct(t, db, org.ID, "Vazio", 0, 5)

	task, err := tasks.NewStockCheckTask(tasks.StockCheckPayload{OrganizationID: org.ID})
	require.NoError(t, err)

	t.Run("notifies every product at or below minimum", func(t *testing.T) {
		require.NoError(t, handler.HandleStockCheck(context.Background(), task))

		assert.Equal(t, int64(2), countNotifications(t, db, org.ID, models.NotificationEstoqueBaixo))

		var n models.Notification
		require.NoError(t, db.Where("ref_id = ?", low.ID).First(&n).Error)
		assert.Equal(t, models.NotificationEstoqueBaixo, n.Tipo)
	})

	t.Run("sweep is idempotent", func(t *testing.T) {
		require.NoError(t, handler.HandleStockCheck(context.Background(), task))

		assert.Equal(t, int64(2), countNotifications(t, db, org.ID, models.NotificationEstoqueBaixo))
	})

	t.Run("restock then resweep skips the recovered product", func(t *testing.T) {
		require.NoError(t, db.Model(&models.Product{}).
			Where("id = ?", low.ID).
			Update("quantidade", 50).Error)
		require.NoError(t, db.Model(&models.Notification{}).
			Where("organization_id = ?", org.ID).
			Update("lida", true).Error)

		require.NoError(t, handler.HandleStockCheck(context.Background(), task))

		// Only "Vazio" is still low
		assert.Equal(t, int64(3), countNotifications(t, db, org.ID, models.NotificationEstoqueBaixo))
	})
}

func TestHandleBoosterCheck_BadPayload(t *testing.T) {
	handler, _ := newSweepHandler(t)

	task := tasks.NewSchedulerTickTask() // nil payload
	err := handler.HandleBoosterCheck(context.Background(), task)
	assert.Error(t, err)
}
