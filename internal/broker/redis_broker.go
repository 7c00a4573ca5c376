package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ardakaya/car-market/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	carListKey      = "cars:list"
	carEventChannel = "cars:events"
	carListTTL      = 30 * time.Second
)

// RedisCarBroker implements CarBroker on a single redis instance.
type RedisCarBroker struct {
	client *redis.Client
	pubsub *redis.PubSub
	ctx    context.Context
}

func NewRedisCarBroker(redisURL string) (*RedisCarBroker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCarBroker{
		client: client,
		ctx:    ctx,
	}, nil
}

func (r *RedisCarBroker) CacheCars(cars []models.Car) error {
	data, err := json.Marshal(cars)
	if err != nil {
		return err
	}

	return r.client.Set(r.ctx, carListKey, data, carListTTL).Err()
}

func (r *RedisCarBroker) GetCachedCars() ([]models.Car, bool, error) {
	data, err := r.client.Get(r.ctx, carListKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var cars []models.Car
	if err := json.Unmarshal(data, &cars); err != nil {
		return nil, false, err
	}

	return cars, true, nil
}

func (r *RedisCarBroker) InvalidateCars() error {
	return r.client.Del(r.ctx, carListKey).Err()
}

func (r *RedisCarBroker) Publish(event CarEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.client.Publish(r.ctx, carEventChannel, data).Err()
}

func (r *RedisCarBroker) Subscribe(ctx context.Context) (<-chan CarEvent, error) {
	r.pubsub = r.client.Subscribe(ctx, carEventChannel)

	eventChan := make(chan CarEvent, 100)

	go func() {
		defer close(eventChan)

		for redisMsg := range r.pubsub.Channel() {
			var event CarEvent

			if err := json.Unmarshal([]byte(redisMsg.Payload), &event); err != nil {
				continue
			}

			select {
			case eventChan <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return eventChan, nil
}

func (r *RedisCarBroker) Close() error {
	if r.pubsub != nil {
		r.pubsub.Close()
	}
	return r.client.Close()
}
