package broker_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ardakaya/car-market/internal/broker"
	"github.com/ardakaya/car-market/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBroker(t *testing.T) (*broker.RedisCarBroker, *miniredis.Miniredis) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	b, err := broker.NewRedisCarBroker("redis://" + server.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	return b, server
}

func TestCacheCars_RoundTrip(t *testing.T) {
	b, _ := setupBroker(t)

	cars := []models.Car{
		{ID: 1, OwnerID: 10, Brand: "Toyota", Model: "Camry", Year: 2020, Price: 25000, Mileage: 15000},
		{ID: 2, OwnerID: 11, Brand: "Honda", Model: "Civic", Year: 2019, Price: 18000, Mileage: 40000},
	}

	require.NoError(t, b.CacheCars(cars))

	cached, ok, err := b.GetCachedCars()
	require.NoError(t, err)
	assert.True(t, ok, "Cache should be warm after CacheCars")
	assert.Equal(t, cars, cached)
}

func TestGetCachedCars_ColdCache(t *testing.T) {
	b, _ := setupBroker(t)

	cached, ok, err := b.GetCachedCars()
	require.NoError(t, err)
	assert.False(t, ok, "Cold cache should report a miss, not an error")
	assert.Nil(t, cached)
}

func TestInvalidateCars(t *testing.T) {
	b, _ := setupBroker(t)

	require.NoError(t, b.CacheCars([]models.Car{{ID: 1, Brand: "Lada", Model: "Niva", Year: 1995, Price: 3000, Mileage: 200000}}))
	require.NoError(t, b.InvalidateCars())

	_, ok, err := b.GetCachedCars()
	require.NoError(t, err)
	assert.False(t, ok, "Cache should be cold after invalidation")
}

func TestCacheCars_Expires(t *testing.T) {
	b, server := setupBroker(t)

	require.NoError(t, b.CacheCars([]models.Car{{ID: 1, Brand: "Volvo", Model: "240", Year: 1990, Price: 5000, Mileage: 300000}}))

	// miniredis lets the test clock jump past the TTL
	server.FastForward(time.Minute)

	_, ok, err := b.GetCachedCars()
	require.NoError(t, err)
	assert.False(t, ok, "Cache entry should expire")
}

func TestPublishSubscribe_RoundTrip(t *testing.T) {
	b, _ := setupBroker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := b.Subscribe(ctx)
	require.NoError(t, err)

	sent := broker.CarEvent{
		EventID:   uuid.New().String(),
		Action:    broker.EventCarCreated,
		CarID:     3,
		OwnerID:   10,
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, b.Publish(sent))

	select {
	case got := <-events:
		assert.Equal(t, sent.EventID, got.EventID)
		assert.Equal(t, sent.Action, got.Action)
		assert.Equal(t, sent.CarID, got.CarID)
		assert.Equal(t, sent.OwnerID, got.OwnerID)
	case <-ctx.Done():
		t.Fatal("Timed out waiting for published event")
	}
}
