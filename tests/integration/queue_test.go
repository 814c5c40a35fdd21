//go:build integration
// +build integration

package integration_test

import (
	"testing"
	"time"

	"mintlite/internal/domain"
	"mintlite/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueClaimOrdering(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Teardown()
	ctx := ctxT(t)

	repo := repository.NewNotificationRepository(env.DB)
	userID := env.CreateUser(t, "claim-order@example.com")
	now := time.Now().UTC()

	low := env.EnqueueNotification(t, userID, domain.PriorityLow, now.Add(-3*time.Second))
	urgent := env.EnqueueNotification(t, userID, domain.PriorityUrgent, now.Add(-2*time.Second))
	medium := env.EnqueueNotification(t, userID, domain.PriorityMedium, now.Add(-1*time.Second))
	env.EnqueueNotification(t, userID, domain.PriorityHigh, now.Add(time.Hour)) // not due yet

	first, err := repo.ClaimNext(ctx, "w1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, urgent.ID, first.ID)

	second, err := repo.ClaimNext(ctx, "w1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, medium.ID, second.ID)

	third, err := repo.ClaimNext(ctx, "w1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, low.ID, third.ID)

	_, err = repo.ClaimNext(ctx, "w1", time.Minute)
	assert.ErrorIs(t, err, domain.ErrNotFound, "future notification must not be claimable")
}

func TestQueueFIFOWithinPriority(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Teardown()
	ctx := ctxT(t)

	repo := repository.NewNotificationRepository(env.DB)
	userID := env.CreateUser(t, "fifo@example.com")
	due := time.Now().UTC().Add(-time.Second)

	older := env.EnqueueNotification(t, userID, domain.PriorityMedium, due)
	time.Sleep(10 * time.Millisecond) // separate created_at
	newer := env.EnqueueNotification(t, userID, domain.PriorityMedium, due)

	first, err := repo.ClaimNext(ctx, "w1", time.Minute)
	require.NoError(t, err)
	second, err := repo.ClaimNext(ctx, "w1", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, older.ID, first.ID)
	assert.Equal(t, newer.ID, second.ID)
}

func TestQueueLease(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Teardown()
	ctx := ctxT(t)

	repo := repository.NewNotificationRepository(env.DB)
	userID := env.CreateUser(t, "lease@example.com")
	due := time.Now().UTC().Add(-time.Second)

	t.Run("Leased Row Is Invisible", func(t *testing.T) {
		env.EnqueueNotification(t, userID, domain.PriorityMedium, due)

		_, err := repo.ClaimNext(ctx, "w1", time.Minute)
		require.NoError(t, err)

		_, err = repo.ClaimNext(ctx, "w2", time.Minute)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Expired Lease Is Reclaimable", func(t *testing.T) {
		notif := env.EnqueueNotification(t, userID, domain.PriorityUrgent, due)

		claimed, err := repo.ClaimNext(ctx, "w1", 100*time.Millisecond)
		require.NoError(t, err)
		require.Equal(t, notif.ID, claimed.ID)

		time.Sleep(200 * time.Millisecond)

		reclaimed, err := repo.ClaimNext(ctx, "w2", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, notif.ID, reclaimed.ID)
		assert.Equal(t, claimed.RetryCount, reclaimed.RetryCount, "expiry is not an attempt")
	})
}

func TestQueueGuardedSettlement(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Teardown()
	ctx := ctxT(t)

	repo := repository.NewNotificationRepository(env.DB)
	userID := env.CreateUser(t, "settle@example.com")
	due := time.Now().UTC().Add(-time.Second)

	t.Run("Wrong Worker Loses", func(t *testing.T) {
		notif := env.EnqueueNotification(t, userID, domain.PriorityMedium, due)
		_, err := repo.ClaimNext(ctx, "w1", time.Minute)
		require.NoError(t, err)

		err = repo.MarkSent(ctx, notif.ID, "w2", nil)
		assert.ErrorIs(t, err, domain.ErrClaimLost)

		msgID := "provider-1"
		require.NoError(t, repo.MarkSent(ctx, notif.ID, "w1", &msgID))

		stored, err := repo.GetByID(ctx, notif.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSent, stored.Status)
		assert.NotNil(t, stored.SentAt)
		require.NotNil(t, stored.ProviderMessageID)
		assert.Equal(t, msgID, *stored.ProviderMessageID)
		assert.Nil(t, stored.ClaimedBy)
	})

	t.Run("Settled Row Rejects Further Transitions", func(t *testing.T) {
		notif := env.EnqueueNotification(t, userID, domain.PriorityMedium, due)
		_, err := repo.ClaimNext(ctx, "w1", time.Minute)
		require.NoError(t, err)
		require.NoError(t, repo.MarkSent(ctx, notif.ID, "w1", nil))

		err = repo.ReleaseForRetry(ctx, notif.ID, "w1", 1, due, "late retry")
		assert.ErrorIs(t, err, domain.ErrClaimLost)
	})

	t.Run("Bounce Clears Sent At", func(t *testing.T) {
		notif := env.EnqueueNotification(t, userID, domain.PriorityMedium, due)
		_, err := repo.ClaimNext(ctx, "w1", time.Minute)
		require.NoError(t, err)

		require.NoError(t, repo.MarkBounced(ctx, notif.ID, "w1", "device tokens no longer registered"))

		stored, err := repo.GetByID(ctx, notif.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusBounced, stored.Status)
		assert.Nil(t, stored.SentAt)
		require.NotNil(t, stored.FailureReason)
	})
}

func TestQueueRetryRequeue(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Teardown()
	ctx := ctxT(t)

	repo := repository.NewNotificationRepository(env.DB)
	userID := env.CreateUser(t, "retry@example.com")
	due := time.Now().UTC().Add(-time.Second)

	notif := env.EnqueueNotification(t, userID, domain.PriorityHigh, due)

	_, err := repo.ClaimNext(ctx, "w1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, repo.ReleaseForRetry(ctx, notif.ID, "w1", 1, time.Now().UTC().Add(-time.Millisecond), "provider timeout"))

	again, err := repo.ClaimNext(ctx, "w1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, notif.ID, again.ID)
	assert.Equal(t, 1, again.RetryCount)
	require.NotNil(t, again.FailureReason)
	assert.Equal(t, "provider timeout", *again.FailureReason)

	require.NoError(t, repo.MarkFailed(ctx, notif.ID, "w1", 2, "provider timeout"))

	_, err = repo.ClaimNext(ctx, "w1", time.Minute)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, err := repo.GetByID(ctx, notif.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	assert.Equal(t, 2, stored.RetryCount)
}

func TestQueueReadFlow(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Teardown()
	ctx := ctxT(t)

	repo := repository.NewNotificationRepository(env.DB)
	userID := env.CreateUser(t, "read@example.com")
	due := time.Now().UTC().Add(-time.Second)

	notif := env.EnqueueNotification(t, userID, domain.PriorityMedium, due)
	_, err := repo.ClaimNext(ctx, "w1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, repo.MarkSent(ctx, notif.ID, "w1", nil))

	unread, err := repo.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	rows, err := repo.MarkRead(ctx, notif.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.MarkRead(ctx, notif.ID, userID)
	require.NoError(t, err)
	assert.Zero(t, rows, "second mark read matches no SENT row")

	stored, err := repo.GetByID(ctx, notif.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRead, stored.Status)
	assert.NotNil(t, stored.ReadAt)

	unread, err = repo.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestQueueDeliveryFeedback(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Teardown()
	ctx := ctxT(t)

	repo := repository.NewNotificationRepository(env.DB)
	userID := env.CreateUser(t, "feedback@example.com")
	due := time.Now().UTC().Add(-time.Second)

	notif := env.EnqueueNotification(t, userID, domain.PriorityMedium, due)
	_, err := repo.ClaimNext(ctx, "w1", time.Minute)
	require.NoError(t, err)
	msgID := "resend-feedback-1"
	require.NoError(t, repo.MarkSent(ctx, notif.ID, "w1", &msgID))

	byMsg, err := repo.GetByProviderMessageID(ctx, msgID)
	require.NoError(t, err)
	assert.Equal(t, notif.ID, byMsg.ID)

	t.Run("Delivered Keeps Original Sent At", func(t *testing.T) {
		before, err := repo.GetByID(ctx, notif.ID)
		require.NoError(t, err)
		require.NotNil(t, before.SentAt)

		require.NoError(t, repo.FeedbackDelivered(ctx, notif.ID))

		after, err := repo.GetByID(ctx, notif.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSent, after.Status)
		assert.WithinDuration(t, *before.SentAt, *after.SentAt, time.Millisecond)
	})

	t.Run("Bounce After Send", func(t *testing.T) {
		require.NoError(t, repo.FeedbackBounced(ctx, notif.ID, "mailbox unavailable"))

		stored, err := repo.GetByID(ctx, notif.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusBounced, stored.Status)
		assert.Nil(t, stored.SentAt)

		// A repeated bounce report finds no SENT row and changes nothing.
		require.NoError(t, repo.FeedbackBounced(ctx, notif.ID, "mailbox unavailable"))
	})
}

func TestDeliveryAttemptLog(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Teardown()
	ctx := ctxT(t)

	notifRepo := repository.NewNotificationRepository(env.DB)
	attemptRepo := repository.NewDeliveryAttemptRepository(env.DB)
	userID := env.CreateUser(t, "attempts@example.com")
	notif := env.EnqueueNotification(t, userID, domain.PriorityMedium, time.Now().UTC().Add(-time.Second))

	_, err := notifRepo.ClaimNext(ctx, "w1", time.Minute)
	require.NoError(t, err)

	reason := "fcm status 503"
	require.NoError(t, attemptRepo.Create(ctx, &domain.DeliveryAttempt{
		ID:             uuid.New(),
		NotificationID: notif.ID,
		Attempt:        1,
		Channel:        notif.Channel,
		Outcome:        "transient_failure",
		Reason:         &reason,
		DurationMS:     42,
	}))
	require.NoError(t, attemptRepo.Create(ctx, &domain.DeliveryAttempt{
		ID:             uuid.New(),
		NotificationID: notif.ID,
		Attempt:        2,
		Channel:        notif.Channel,
		Outcome:        "delivered",
		DurationMS:     17,
	}))

	attempts, err := attemptRepo.ListByNotification(ctx, notif.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, 1, attempts[0].Attempt)
	assert.Equal(t, 2, attempts[1].Attempt)
	assert.Equal(t, "delivered", attempts[1].Outcome)
}

func TestQueueConcurrentClaims(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Teardown()
	ctx := ctxT(t)

	repo := repository.NewNotificationRepository(env.DB)
	userID := env.CreateUser(t, "concurrent@example.com")
	due := time.Now().UTC().Add(-time.Second)

	const n = 8
	for i := 0; i < n; i++ {
		env.EnqueueNotification(t, userID, domain.PriorityMedium, due)
	}

	claims := make(chan uuid.UUID, n*2)
	errs := make(chan error, n*2)
	for i := 0; i < n*2; i++ {
		go func(worker int) {
			notif, err := repo.ClaimNext(ctx, uuid.NewString()[:8], time.Minute)
			if err != nil {
				errs <- err
				return
			}
			claims <- notif.ID
		}(i)
	}

	seen := make(map[uuid.UUID]bool)
	notFound := 0
	for i := 0; i < n*2; i++ {
		select {
		case id := <-claims:
			assert.False(t, seen[id], "notification claimed twice")
			seen[id] = true
		case err := <-errs:
			require.ErrorIs(t, err, domain.ErrNotFound)
			notFound++
		case <-time.After(10 * time.Second):
			t.Fatal("claim goroutines stalled")
		}
	}

	assert.Len(t, seen, n)
	assert.Equal(t, n, notFound)
}
