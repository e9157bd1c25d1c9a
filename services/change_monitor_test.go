package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/choprek/models"
	"github.com/yeremiapane/choprek/realtime"
)

func TestCheckChangesPublishesInIDOrder(t *testing.T) {
	env := newTestEnv(t)
	seedActiveMenu(t, env.db)
	driver := seedDriver(t, env.db, "Budi")
	orderIDs := seedOrders(t, env.db, 2, "2024-03-04")

	received := make(chan realtime.Change, 16)
	unsubscribe := env.feed.Subscribe(func(c realtime.Change) { received <- c })
	defer unsubscribe()

	id, err := env.deliveries.CreateDelivery(ctx, admin, motorcycleInput(driver.ID, 50, "2024-03-04", orderIDs...))
	require.NoError(t, err)
	require.NoError(t, env.deliveries.DeleteDelivery(ctx, admin, id))

	assert.Equal(t, 6, env.monitor.CheckChanges())
	assert.Zero(t, env.monitor.CheckChanges())

	var got []realtime.Change
	for i := 0; i < 6; i++ {
		got = append(got, receive(t, received))
	}
	assert.Equal(t, models.CollectionDeliveries, got[0].Collection)
	assert.Equal(t, models.ChangeInsert, got[0].Action)
	assert.Equal(t, id, got[0].DocumentID)
	assert.Equal(t, models.CollectionDeliveries, got[3].Collection)
	assert.Equal(t, models.ChangeDelete, got[3].Action)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].ID, got[i].ID)
	}

	var pending int64
	require.NoError(t, env.db.Model(&models.StoreChange{}).Where("processed = ?", false).Count(&pending).Error)
	assert.Zero(t, pending)
}

func TestCheckChangesPicksUpLateCommits(t *testing.T) {
	env := newTestEnv(t)
	received := make(chan realtime.Change, 4)
	unsubscribe := env.feed.Subscribe(func(c realtime.Change) { received <- c })
	defer unsubscribe()

	// id 5 sudah commit, id 3 milik transaksi yang commit belakangan
	now := time.Now()
	require.NoError(t, env.db.Create(&models.StoreChange{ID: 5, Collection: models.CollectionDrivers,
		DocumentID: "d-5", ActionType: models.ChangeInsert, ChangedAt: now}).Error)
	assert.Equal(t, 1, env.monitor.CheckChanges())
	assert.Equal(t, "d-5", receive(t, received).DocumentID)

	require.NoError(t, env.db.Create(&models.StoreChange{ID: 3, Collection: models.CollectionDrivers,
		DocumentID: "d-3", ActionType: models.ChangeInsert, ChangedAt: now}).Error)
	assert.Equal(t, 1, env.monitor.CheckChanges())
	assert.Equal(t, "d-3", receive(t, received).DocumentID)
	assert.Zero(t, env.monitor.CheckChanges())
}

func TestPurgeProcessed(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.drivers.CreateDriver(ctx, DriverInput{Name: "Budi"})
	require.NoError(t, err)
	_, err = env.drivers.CreateDriver(ctx, DriverInput{Name: "Andi"})
	require.NoError(t, err)

	assert.Zero(t, env.monitor.PurgeProcessed(time.Now().Add(time.Minute)))
	require.Equal(t, 2, env.monitor.CheckChanges())
	assert.Equal(t, int64(2), env.monitor.PurgeProcessed(time.Now().Add(time.Minute)))
	assert.Zero(t, countRows(t, env.db, &models.StoreChange{}))
}

func TestChangeMonitorStartStop(t *testing.T) {
	env := newTestEnv(t)
	env.monitor.Interval = 10 * time.Millisecond

	received := make(chan realtime.Change, 4)
	unsubscribe := env.feed.Subscribe(func(c realtime.Change) { received <- c }, models.CollectionDrivers)
	defer unsubscribe()

	env.monitor.Start()
	defer env.monitor.Stop()

	driver, err := env.drivers.CreateDriver(ctx, DriverInput{Name: "Budi"})
	require.NoError(t, err)

	change := receive(t, received)
	assert.Equal(t, driver.ID, change.DocumentID)

	env.monitor.Stop()
	env.monitor.Stop()
}
