package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/undercover-social/backend/internal/application"
	"github.com/undercover-social/backend/internal/domain"
)

func newPost(repo *fakePostRepo, expiresAt time.Time) *domain.Post {
	p := &domain.Post{
		ID:        uuid.New(),
		User:      uuid.New(),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	repo.add(p)
	return p
}

// within asserts got is inside [want-1s, want+1s], absorbing test runtime.
func within(t *testing.T, got, want time.Time) {
	t.Helper()
	diff := got.Sub(want)
	if diff < -time.Second || diff > time.Second {
		t.Fatalf("timestamp off: got %v, want ~%v", got, want)
	}
}

func TestRecordLikeIdempotentPerUser(t *testing.T) {
	repo := newFakePostRepo()
	svc := application.NewLifecycleService(repo, nil)
	ctx := context.Background()

	base := time.Now().Add(3 * time.Hour)
	post := newPost(repo, base)

	userA, userB := uuid.New(), uuid.New()

	count, err := svc.RecordLike(ctx, post.ID, userA, "ShadowFox")
	if err != nil {
		t.Fatalf("first like: %v", err)
	}
	if count != 1 {
		t.Fatalf("like count = %d, want 1", count)
	}

	if count, err = svc.RecordLike(ctx, post.ID, userB, "MistWolf"); err != nil || count != 2 {
		t.Fatalf("second like: count=%d err=%v", count, err)
	}

	// A likes again: a no-op, no further extension.
	if count, err = svc.RecordLike(ctx, post.ID, userA, "ShadowFox"); err != nil || count != 2 {
		t.Fatalf("repeat like: count=%d err=%v", count, err)
	}

	got, _ := repo.Get(ctx, post.ID)
	want := base.Add(2 * application.LikeExtension)
	if !got.ExpiresAt.Equal(want) {
		t.Fatalf("expiresAt = %v, want %v (exactly two extensions)", got.ExpiresAt, want)
	}
}

func TestRecordLikeUnknownPost(t *testing.T) {
	svc := application.NewLifecycleService(newFakePostRepo(), nil)

	_, err := svc.RecordLike(context.Background(), uuid.New(), uuid.New(), "x")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordLikeNotifiesAuthor(t *testing.T) {
	posts := newFakePostRepo()
	notifications := newFakeNotificationRepo()
	subs := &fakeSubscriptionRepo{}
	fanout := application.NewFanoutEngine(notifications, subs, newFakeSender(), nil, 0)
	svc := application.NewLifecycleService(posts, fanout)
	ctx := context.Background()

	post := newPost(posts, time.Now().Add(time.Hour))

	if _, err := svc.RecordLike(ctx, post.ID, uuid.New(), "ShadowFox"); err != nil {
		t.Fatalf("like: %v", err)
	}
	if n := notifications.countFor(post.User); n != 1 {
		t.Fatalf("author notifications = %d, want 1", n)
	}

	// Self-likes notify nobody.
	if _, err := svc.RecordLike(ctx, post.ID, post.User, "Me"); err != nil {
		t.Fatalf("self like: %v", err)
	}
	if n := notifications.countFor(post.User); n != 1 {
		t.Fatalf("author notifications after self-like = %d, want 1", n)
	}
}

func TestPinRaisesExpiryNeverShortens(t *testing.T) {
	ctx := context.Background()
	admin := uuid.New()

	for _, duration := range []domain.PinDuration{domain.PinDay, domain.PinWeek, domain.PinIndefinite} {
		t.Run(string(duration), func(t *testing.T) {
			repo := newFakePostRepo()
			svc := application.NewLifecycleService(repo, nil)

			// Expiry already far beyond any timed pin window.
			farOut := time.Now().Add(30 * 24 * time.Hour)
			post := newPost(repo, farOut)

			pinned, err := svc.Pin(ctx, post.ID, admin, duration)
			if err != nil {
				t.Fatalf("pin: %v", err)
			}
			if !pinned.IsPinned {
				t.Fatal("isPinned = false after pin")
			}
			if pinned.ExpiresAt.Before(farOut) {
				t.Fatalf("pin shortened expiry: %v < %v", pinned.ExpiresAt, farOut)
			}

			switch duration {
			case domain.PinIndefinite:
				if pinned.PinnedUntil != nil {
					t.Fatalf("pinnedUntil = %v, want nil for indefinite", pinned.PinnedUntil)
				}
				within(t, pinned.ExpiresAt, time.Now().Add(application.IndefinitePinHorizon))
			case domain.PinDay:
				within(t, *pinned.PinnedUntil, time.Now().Add(24*time.Hour))
			case domain.PinWeek:
				within(t, *pinned.PinnedUntil, time.Now().Add(7*24*time.Hour))
			}
		})
	}
}

func TestPinExtendsShortLivedPost(t *testing.T) {
	repo := newFakePostRepo()
	svc := application.NewLifecycleService(repo, nil)

	post := newPost(repo, time.Now().Add(time.Hour))

	pinned, err := svc.Pin(context.Background(), post.ID, uuid.New(), domain.PinDay)
	if err != nil {
		t.Fatalf("pin: %v", err)
	}
	within(t, pinned.ExpiresAt, time.Now().Add(24*time.Hour))
}

func TestPinInvalidDuration(t *testing.T) {
	repo := newFakePostRepo()
	svc := application.NewLifecycleService(repo, nil)
	post := newPost(repo, time.Now().Add(time.Hour))

	_, err := svc.Pin(context.Background(), post.ID, uuid.New(), "fortnight")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestPinUnknownPost(t *testing.T) {
	svc := application.NewLifecycleService(newFakePostRepo(), nil)

	_, err := svc.Pin(context.Background(), uuid.New(), uuid.New(), domain.PinDay)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUnpinResetsExpiryUnconditionally(t *testing.T) {
	repo := newFakePostRepo()
	svc := application.NewLifecycleService(repo, nil)
	ctx := context.Background()
	admin := uuid.New()

	// Like-extended and then pinned indefinitely: both sources of extra
	// lifetime are discarded on unpin.
	post := newPost(repo, time.Now().Add(3*time.Hour))
	if _, err := svc.RecordLike(ctx, post.ID, uuid.New(), "x"); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := svc.Pin(ctx, post.ID, admin, domain.PinIndefinite); err != nil {
		t.Fatalf("pin: %v", err)
	}

	unpinned, err := svc.Unpin(ctx, post.ID, admin)
	if err != nil {
		t.Fatalf("unpin: %v", err)
	}
	if unpinned.IsPinned {
		t.Fatal("isPinned = true after unpin")
	}
	if unpinned.PinnedUntil != nil {
		t.Fatalf("pinnedUntil = %v, want nil", unpinned.PinnedUntil)
	}
	within(t, unpinned.ExpiresAt, time.Now().Add(application.DefaultTTL))
}
