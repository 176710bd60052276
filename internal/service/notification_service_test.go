package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-trust-api/internal/repository"
)

func TestNotificationDispatcherPersistsAndPublishes(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	ctx := context.Background()
	subscription := redisClient.Subscribe(ctx, "trust:notifications")
	defer subscription.Close()
	_, err = subscription.Receive(ctx)
	require.NoError(t, err)

	db := newTestDB(t)
	repo := repository.NewNotificationRepository(db)
	dispatcher := NewNotificationDispatcher(repo, redisClient, "trust", nil, testLogger())

	err = dispatcher.Notify(ctx, 42, Notice{
		Title:       "Badge earned: <b>First Post</b>",
		Body:        "<script>alert(1)</script>Write your first post",
		RelatedType: "badge",
		RelatedID:   "first_post",
	})
	require.NoError(t, err)

	stored, err := repo.ListByUser(ctx, 42, 10, 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, "Badge earned: First Post", stored[0].Title)
	require.Equal(t, "Write your first post", stored[0].Body)

	select {
	case msg := <-subscription.Channel():
		var event notificationEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		require.Equal(t, uint(42), event.Notification.UserID)
		require.Equal(t, "first_post", event.Notification.RelatedID)
		require.NotEmpty(t, event.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a published notification")
	}
}

func TestNotificationDispatcherRejectsEmptyNotice(t *testing.T) {
	dispatcher := NewNotificationDispatcher(nil, nil, "", nil, testLogger())

	require.Error(t, dispatcher.Notify(context.Background(), 0, Notice{Title: "hello"}))
	require.Error(t, dispatcher.Notify(context.Background(), 1, Notice{Title: "<script></script>"}))
	require.NoError(t, dispatcher.Notify(context.Background(), 1, Notice{Title: "hello"}))
}

func TestNotificationDispatcherRetriesEachSinkSeparately(t *testing.T) {
	dispatcher := NewNotificationDispatcher(nil, nil, "", nil, testLogger()).(*notificationDispatcher)
	dispatcher.newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
	}

	var natsCalls, redisCalls int
	dispatcher.sinks = []notificationSink{
		{name: "nats", publish: func(context.Context, []byte) error {
			natsCalls++
			return nil
		}},
		{name: "redis", publish: func(context.Context, []byte) error {
			redisCalls++
			if redisCalls < 3 {
				return errors.New("connection reset")
			}
			return nil
		}},
	}

	require.NoError(t, dispatcher.Notify(context.Background(), 7, Notice{Title: "Your appeal was approved"}))
	require.Equal(t, 1, natsCalls)
	require.Equal(t, 3, redisCalls)

	natsCalls, redisCalls = 0, -10
	err := dispatcher.Notify(context.Background(), 7, Notice{Title: "Your appeal was rejected"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "redis")
	require.Equal(t, 1, natsCalls)
}
