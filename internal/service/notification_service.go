package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-trust-api/internal/dto"
	"github.com/noah-isme/gema-trust-api/internal/models"
	"github.com/noah-isme/gema-trust-api/internal/observability"
	"github.com/noah-isme/gema-trust-api/internal/repository"
)

const notificationPublishRetries = 3

// Notice is the payload handed to the notification dispatcher.
type Notice struct {
	Title       string
	Body        string
	RelatedType string
	RelatedID   string
}

// Notifier delivers notices to users. Callers treat delivery as fire-and-forget and only log
// a returned error.
type Notifier interface {
	Notify(ctx context.Context, userID uint, notice Notice) error
}

// notificationSink is one fan-out target. Each sink is retried on its own.
type notificationSink struct {
	name    string
	publish func(ctx context.Context, payload []byte) error
}

type notificationDispatcher struct {
	repo       repository.NotificationRepository
	sinks      []notificationSink
	newBackOff func() backoff.BackOff
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	tracer     trace.Tracer
	nodeID     string
}

type notificationEvent struct {
	ID           string                   `json:"id"`
	Source       string                   `json:"source"`
	Notification dto.NotificationResponse `json:"notification"`
	SentAt       time.Time                `json:"sent_at"`
}

// NewNotificationDispatcher constructs a dispatcher that persists each notice and fans it out to
// the notification service over NATS and Redis pub/sub when those handles are configured.
func NewNotificationDispatcher(repo repository.NotificationRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) Notifier {
	var sinks []notificationSink
	if channelBase != "" {
		if natsConn != nil {
			subject := strings.ReplaceAll(channelBase, ":", ".") + ".notifications"
			sinks = append(sinks, notificationSink{
				name: "nats",
				publish: func(_ context.Context, payload []byte) error {
					return natsConn.Publish(subject, payload)
				},
			})
		}
		if redisClient != nil {
			channel := channelBase + ":notifications"
			sinks = append(sinks, notificationSink{
				name: "redis",
				publish: func(ctx context.Context, payload []byte) error {
					return redisClient.Publish(ctx, channel, payload).Err()
				},
			})
		}
	}

	return &notificationDispatcher{
		repo:  repo,
		sinks: sinks,
		newBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), notificationPublishRetries)
		},
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "notification_dispatcher").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-trust-api/internal/service/notification"),
		nodeID:    uuid.NewString(),
	}
}

func (d *notificationDispatcher) Notify(ctx context.Context, userID uint, notice Notice) error {
	title := strings.TrimSpace(d.sanitizer.Sanitize(notice.Title))
	if userID == 0 || title == "" {
		observability.Notifications().WithLabelValues("invalid").Inc()
		return errors.New("notification requires a user and a title")
	}

	spanCtx, span := d.tracer.Start(ctx, "notifications.dispatch", trace.WithAttributes(
		attribute.Int64("notification.user_id", int64(userID)),
		attribute.String("notification.related_type", notice.RelatedType),
	))
	defer span.End()

	model := models.Notification{
		UserID:      userID,
		Title:       title,
		Body:        strings.TrimSpace(d.sanitizer.Sanitize(notice.Body)),
		RelatedType: notice.RelatedType,
		RelatedID:   notice.RelatedID,
	}

	if d.repo != nil {
		if err := d.repo.Create(spanCtx, &model); err != nil {
			span.RecordError(err)
			observability.Notifications().WithLabelValues("persist_failed").Inc()
			return err
		}
	}

	if err := d.publish(spanCtx, dto.NewNotificationResponse(model)); err != nil {
		span.RecordError(err)
		observability.Notifications().WithLabelValues("publish_failed").Inc()
		return err
	}

	observability.Notifications().WithLabelValues("sent").Inc()
	return nil
}

func (d *notificationDispatcher) publish(ctx context.Context, notification dto.NotificationResponse) error {
	if len(d.sinks) == 0 {
		return nil
	}

	payload, err := json.Marshal(notificationEvent{
		ID:           uuid.NewString(),
		Source:       d.nodeID,
		Notification: notification,
		SentAt:       time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	var errs []error
	for _, sink := range d.sinks {
		if err := d.retry(ctx, sink, payload); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.name, err))
		}
	}

	return errors.Join(errs...)
}

// retry publishes to a single sink, so a failing sink never replays a delivery to another.
func (d *notificationDispatcher) retry(ctx context.Context, sink notificationSink, payload []byte) error {
	policy := backoff.WithContext(d.newBackOff(), ctx)

	return backoff.RetryNotify(func() error {
		return sink.publish(ctx, payload)
	}, policy, func(err error, wait time.Duration) {
		d.logger.Warn().Err(err).Str("sink", sink.name).Dur("backoff", wait).Msg("notification publish attempt failed")
	})
}
