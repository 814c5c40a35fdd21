package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"mintlite/internal/domain"
)

// InAppChannelPrefix is the Redis pub/sub channel prefix realtime
// consumers subscribe on, one channel per user.
const InAppChannelPrefix = "notify:user:"

type inAppAdapter struct {
	rdb *redis.Client
}

func NewInAppAdapter(rdb *redis.Client) Adapter {
	return &inAppAdapter{rdb: rdb}
}

func (a *inAppAdapter) Channel() domain.Channel {
	return domain.ChannelInApp
}

// Deliver publishes the notification to the user's pub/sub channel.
// Zero subscribers still counts as delivered: the stored row is the
// source of truth and the read API picks it up on next poll.
func (a *inAppAdapter) Deliver(ctx context.Context, notif *domain.Notification) DeliveryResult {
	payload, err := json.Marshal(notif)
	if err != nil {
		return PermanentFailure(fmt.Sprintf("encode notification: %v", err))
	}

	err = a.rdb.Publish(ctx, InAppChannelPrefix+notif.UserID.String(), payload).Err()
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return TransientFailure("redis timeout")
	}
	if err != nil {
		return TransientFailure(err.Error())
	}
	return Delivered("")
}
