package application_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/undercover-social/backend/internal/application"
	"github.com/undercover-social/backend/internal/domain"
)

// ─── Posts ───────────────────────────────────────────────────────────────────

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[uuid.UUID]*domain.Post
	likes map[uuid.UUID]map[uuid.UUID]time.Time
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts: make(map[uuid.UUID]*domain.Post),
		likes: make(map[uuid.UUID]map[uuid.UUID]time.Time),
	}
}

func (r *fakePostRepo) add(p *domain.Post) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[p.ID] = p
	r.likes[p.ID] = make(map[uuid.UUID]time.Time)
}

func (r *fakePostRepo) snapshot(id uuid.UUID) *domain.Post {
	p := r.posts[id]
	out := *p
	out.Likes = nil
	for user, at := range r.likes[id] {
		out.Likes = append(out.Likes, domain.Like{User: user, CreatedAt: at})
	}
	return &out
}

func (r *fakePostRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return nil, domain.ErrNotFound
	}
	return r.snapshot(id), nil
}

func (r *fakePostRepo) AddLike(ctx context.Context, postID, userID uuid.UUID, extendBy time.Duration) (*domain.Post, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return nil, false, domain.ErrNotFound
	}
	if _, liked := r.likes[postID][userID]; liked {
		return r.snapshot(postID), false, nil
	}
	r.likes[postID][userID] = time.Now()
	p.ExpiresAt = p.ExpiresAt.Add(extendBy)
	return r.snapshot(postID), true, nil
}

func (r *fakePostRepo) Pin(ctx context.Context, id, adminID uuid.UUID, until *time.Time, expiresAt time.Time) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.IsPinned = true
	p.PinnedUntil = until
	p.PinnedBy = &adminID
	if until == nil {
		p.ExpiresAt = expiresAt
	} else if expiresAt.After(p.ExpiresAt) {
		p.ExpiresAt = expiresAt
	}
	return r.snapshot(id), nil
}

func (r *fakePostRepo) Unpin(ctx context.Context, id uuid.UUID, expiresAt time.Time) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.IsPinned = false
	p.PinnedUntil = nil
	p.ExpiresAt = expiresAt
	return r.snapshot(id), nil
}

// ─── Broadcasts ──────────────────────────────────────────────────────────────

type fakeBroadcastRepo struct {
	mu         sync.Mutex
	broadcasts map[uuid.UUID]*domain.BroadcastNotification
	order      []uuid.UUID
}

func newFakeBroadcastRepo() *fakeBroadcastRepo {
	return &fakeBroadcastRepo{broadcasts: make(map[uuid.UUID]*domain.BroadcastNotification)}
}

func (r *fakeBroadcastRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.broadcasts)
}

func (r *fakeBroadcastRepo) Create(ctx context.Context, b *domain.BroadcastNotification) (*domain.BroadcastNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *b
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	r.broadcasts[stored.ID] = &stored
	r.order = append(r.order, stored.ID)
	out := stored
	return &out, nil
}

func (r *fakeBroadcastRepo) Get(ctx context.Context, id uuid.UUID) (*domain.BroadcastNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.broadcasts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *b
	return &out, nil
}

func (r *fakeBroadcastRepo) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.broadcasts[id]
	if !ok || b.Status != domain.StatusScheduled {
		return false, nil
	}
	b.Status = domain.StatusSent
	b.SentAt = &sentAt
	return true, nil
}

func (r *fakeBroadcastRepo) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.broadcasts[id]
	if !ok || b.Status != domain.StatusScheduled {
		return false, nil
	}
	b.Status = domain.StatusFailed
	return true, nil
}

func (r *fakeBroadcastRepo) List(ctx context.Context, limit int) ([]*domain.BroadcastNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.BroadcastNotification
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		b := *r.broadcasts[r.order[i]]
		out = append(out, &b)
	}
	return out, nil
}

func (r *fakeBroadcastRepo) ListScheduled(ctx context.Context) ([]*domain.BroadcastNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.BroadcastNotification
	for _, id := range r.order {
		if b := r.broadcasts[id]; b.Status == domain.StatusScheduled {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

// ─── Directory ───────────────────────────────────────────────────────────────

type fakeDirectory struct {
	mu  sync.Mutex
	ids []uuid.UUID
	err error
}

func (d *fakeDirectory) addUser(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, id)
}

func (d *fakeDirectory) AllUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	return append([]uuid.UUID(nil), d.ids...), nil
}

// ─── Notifications ───────────────────────────────────────────────────────────

type fakeNotificationRepo struct {
	mu      sync.Mutex
	byUser  map[uuid.UUID][]*domain.Notification
	failFor map[uuid.UUID]error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		byUser:  make(map[uuid.UUID][]*domain.Notification),
		failFor: make(map[uuid.UUID]error),
	}
}

func (r *fakeNotificationRepo) countFor(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser[userID])
}

func (r *fakeNotificationRepo) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, list := range r.byUser {
		n += len(list)
	}
	return n
}

func (r *fakeNotificationRepo) Create(ctx context.Context, userID uuid.UUID, input domain.DeliveryInput) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failFor[userID]; err != nil {
		return nil, err
	}
	n := &domain.Notification{
		ID:            uuid.New(),
		User:          userID,
		Title:         input.Title,
		Body:          input.Body,
		Type:          input.Type,
		ResourceID:    input.ResourceID,
		ResourceModel: input.ResourceModel,
		Sender:        input.Sender,
		URL:           input.URL,
		CreatedAt:     time.Now(),
	}
	r.byUser[userID] = append(r.byUser[userID], n)
	return n, nil
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.Notification(nil), r.byUser[userID]...), nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.byUser[userID] {
		if n.ID == id {
			n.Read = true
			return n, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var flipped int64
	for _, n := range r.byUser[userID] {
		if !n.Read {
			n.Read = true
			flipped++
		}
	}
	return flipped, nil
}

// ─── Subscriptions ───────────────────────────────────────────────────────────

type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	subs []*domain.PushSubscription
}

func (r *fakeSubscriptionRepo) add(userID uuid.UUID, endpoint string) *domain.PushSubscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &domain.PushSubscription{
		ID:       uuid.New(),
		User:     userID,
		Endpoint: endpoint,
		Keys:     domain.SubscriptionKeys{P256dh: "p", Auth: "a"},
		Active:   true,
	}
	r.subs = append(r.subs, s)
	return s
}

func (r *fakeSubscriptionRepo) active(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.ID == id {
			return s.Active
		}
	}
	return false
}

func (r *fakeSubscriptionRepo) Upsert(ctx context.Context, userID uuid.UUID, endpoint string, keys domain.SubscriptionKeys) error {
	r.add(userID, endpoint)
	return nil
}

func (r *fakeSubscriptionRepo) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*domain.PushSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PushSubscription
	for _, s := range r.subs {
		if s.User == userID && s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.ID == id {
			s.Active = false
		}
	}
	return nil
}

// ─── Push sender ─────────────────────────────────────────────────────────────

// fakeSender returns a canned error per endpoint and records what was sent.
// Sends happen concurrently, hence the mutex.
type fakeSender struct {
	mu       sync.Mutex
	failures map[string]error
	sent     []string
}

func newFakeSender() *fakeSender {
	return &fakeSender{failures: make(map[string]error)}
}

func (s *fakeSender) Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sub.Endpoint)
	return s.failures[sub.Endpoint]
}

func (s *fakeSender) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

// ─── Scheduler ───────────────────────────────────────────────────────────────

type scheduledCall struct {
	id uuid.UUID
	at time.Time
	fn func()
}

// manualScheduler captures callbacks so tests advance time by invoking them.
type manualScheduler struct {
	mu    sync.Mutex
	calls []scheduledCall
}

func (s *manualScheduler) Schedule(id uuid.UUID, at time.Time, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, scheduledCall{id: id, at: at, fn: fn})
}

func (s *manualScheduler) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.calls {
		if c.id == id {
			s.calls = append(s.calls[:i], s.calls[i+1:]...)
			return true
		}
	}
	return false
}

func (s *manualScheduler) pending() []scheduledCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]scheduledCall(nil), s.calls...)
}

// Interface conformance for the fakes.
var (
	_ domain.PostRepository         = (*fakePostRepo)(nil)
	_ domain.BroadcastRepository    = (*fakeBroadcastRepo)(nil)
	_ domain.NotificationRepository = (*fakeNotificationRepo)(nil)
	_ domain.SubscriptionRepository = (*fakeSubscriptionRepo)(nil)
	_ application.UserDirectory     = (*fakeDirectory)(nil)
	_ application.PushSender        = (*fakeSender)(nil)
	_ application.Scheduler         = (*manualScheduler)(nil)
)
