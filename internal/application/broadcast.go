package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/undercover-social/backend/internal/domain"
)

// BroadcastInput carries the admin-submitted fields of a broadcast.
type BroadcastInput struct {
	Title       string
	Body        string
	TargetGroup domain.TargetGroup
	TargetUsers []uuid.UUID
	CreatedBy   uuid.UUID
}

// BroadcastService owns the broadcast state machine: immediate sends,
// deferred sends through the Scheduler, and history.
type BroadcastService struct {
	broadcasts domain.BroadcastRepository
	directory  UserDirectory
	fanout     *FanoutEngine
	scheduler  Scheduler
}

// NewBroadcastService creates a BroadcastService.
func NewBroadcastService(
	broadcasts domain.BroadcastRepository,
	directory UserDirectory,
	fanout *FanoutEngine,
	scheduler Scheduler,
) *BroadcastService {
	return &BroadcastService{
		broadcasts: broadcasts,
		directory:  directory,
		fanout:     fanout,
		scheduler:  scheduler,
	}
}

func validateInput(in BroadcastInput) error {
	if in.Title == "" || in.Body == "" {
		return fmt.Errorf("%w: title and body are required", domain.ErrInvalidArgument)
	}
	switch in.TargetGroup {
	case domain.TargetAll, domain.TargetSpecific:
	default:
		return fmt.Errorf("%w: unknown target group %q", domain.ErrInvalidArgument, in.TargetGroup)
	}
	return nil
}

// SendNow persists a broadcast as sent and delivers it synchronously. The
// record is returned regardless of individual delivery failures; end users
// with unreachable devices still get the in-app notification row.
func (s *BroadcastService) SendNow(ctx context.Context, in BroadcastInput) (*domain.BroadcastNotification, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	now := time.Now()
	b, err := s.broadcasts.Create(ctx, &domain.BroadcastNotification{
		Title:       in.Title,
		Body:        in.Body,
		TargetGroup: in.TargetGroup,
		TargetUsers: specificTargets(in),
		SentAt:      &now,
		Status:      domain.StatusSent,
		CreatedBy:   in.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create broadcast: %w", err)
	}

	targets, err := s.resolveAudience(ctx, b)
	if err != nil {
		log.Error().Err(err).Str("broadcast", b.ID.String()).Msg("broadcast: audience resolution failed")
		return b, nil
	}

	if err := s.fanout.Deliver(ctx, deliveryFor(b), targets); err != nil {
		log.Error().Err(err).Str("broadcast", b.ID.String()).Msg("broadcast: delivery incomplete")
	}

	log.Info().
		Str("broadcast", b.ID.String()).
		Str("target_group", string(b.TargetGroup)).
		Int("targets", len(targets)).
		Msg("broadcast sent")

	return b, nil
}

// Schedule persists a broadcast as scheduled and registers a one-shot timer
// keyed by its ID. scheduledFor must be in the future.
func (s *BroadcastService) Schedule(ctx context.Context, in BroadcastInput, scheduledFor time.Time) (*domain.BroadcastNotification, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if !scheduledFor.After(time.Now()) {
		return nil, fmt.Errorf("%w: scheduled time must be in the future", domain.ErrInvalidArgument)
	}

	b, err := s.broadcasts.Create(ctx, &domain.BroadcastNotification{
		Title:        in.Title,
		Body:         in.Body,
		TargetGroup:  in.TargetGroup,
		TargetUsers:  specificTargets(in),
		ScheduledFor: &scheduledFor,
		Status:       domain.StatusScheduled,
		CreatedBy:    in.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create scheduled broadcast: %w", err)
	}

	id := b.ID
	s.scheduler.Schedule(id, scheduledFor, func() { s.fire(id) })

	log.Info().
		Str("broadcast", id.String()).
		Time("scheduled_for", scheduledFor).
		Msg("broadcast scheduled")

	return b, nil
}

// fire is the timer callback: it re-resolves the audience fresh (users
// created after scheduling are included), delivers, and records the terminal
// status. Nothing may escape this boundary — every failure path ends in
// status=failed and a log line.
func (s *BroadcastService) fire(id uuid.UUID) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("broadcast", id.String()).Interface("panic", r).Msg("broadcast: fire panicked")
		}
	}()

	ctx := context.Background()

	b, err := s.broadcasts.Get(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("broadcast", id.String()).Msg("broadcast: load at fire time failed")
		s.markFailed(ctx, id)
		return
	}
	if b.Status != domain.StatusScheduled {
		// Already terminal; nothing to deliver twice.
		log.Warn().Str("broadcast", id.String()).Str("status", string(b.Status)).Msg("broadcast: fire on terminal broadcast ignored")
		return
	}

	targets, err := s.resolveAudience(ctx, b)
	if err != nil {
		log.Error().Err(err).Str("broadcast", id.String()).Msg("broadcast: audience resolution failed")
		s.markFailed(ctx, id)
		return
	}

	if err := s.fanout.Deliver(ctx, deliveryFor(b), targets); err != nil {
		log.Error().Err(err).Str("broadcast", id.String()).Msg("broadcast: delivery failed")
		s.markFailed(ctx, id)
		return
	}

	sent, err := s.broadcasts.MarkSent(ctx, id, time.Now())
	if err != nil {
		log.Error().Err(err).Str("broadcast", id.String()).Msg("broadcast: marking sent failed")
		return
	}
	if !sent {
		log.Warn().Str("broadcast", id.String()).Msg("broadcast: already in a terminal state")
		return
	}

	log.Info().
		Str("broadcast", id.String()).
		Int("targets", len(targets)).
		Msg("scheduled broadcast sent")
}

func (s *BroadcastService) markFailed(ctx context.Context, id uuid.UUID) {
	if _, err := s.broadcasts.MarkFailed(ctx, id); err != nil {
		log.Error().Err(err).Str("broadcast", id.String()).Msg("broadcast: marking failed failed")
	}
}

// History returns broadcasts newest-first. limit <= 0 selects the default
// page of 50.
func (s *BroadcastService) History(ctx context.Context, limit int) ([]*domain.BroadcastNotification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.broadcasts.List(ctx, limit)
}

// RearmScheduled re-registers timers for still-scheduled broadcasts after a
// restart. Future-dated ones get a fresh timer; overdue ones are marked
// failed so the admin sees they were missed rather than silently dropped.
func (s *BroadcastService) RearmScheduled(ctx context.Context) error {
	pending, err := s.broadcasts.ListScheduled(ctx)
	if err != nil {
		return fmt.Errorf("list scheduled broadcasts: %w", err)
	}

	now := time.Now()
	rearmed, expired := 0, 0
	for _, b := range pending {
		if b.ScheduledFor == nil {
			continue
		}
		if b.ScheduledFor.After(now) {
			id := b.ID
			s.scheduler.Schedule(id, *b.ScheduledFor, func() { s.fire(id) })
			rearmed++
			continue
		}
		s.markFailed(ctx, b.ID)
		expired++
	}

	if rearmed > 0 || expired > 0 {
		log.Info().Int("rearmed", rearmed).Int("expired", expired).Msg("scheduled broadcasts recovered")
	}
	return nil
}

// resolveAudience snapshots the target user set at resolution time.
// targetGroup=all asks the directory fresh; targetGroup=specific uses the
// stored list verbatim with no existence validation.
func (s *BroadcastService) resolveAudience(ctx context.Context, b *domain.BroadcastNotification) ([]uuid.UUID, error) {
	switch b.TargetGroup {
	case domain.TargetAll:
		ids, err := s.directory.AllUserIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve all users: %w", err)
		}
		return ids, nil
	case domain.TargetSpecific:
		return b.TargetUsers, nil
	default:
		return nil, fmt.Errorf("%w: unknown target group %q", domain.ErrInvalidArgument, b.TargetGroup)
	}
}

func specificTargets(in BroadcastInput) []uuid.UUID {
	if in.TargetGroup == domain.TargetSpecific {
		return in.TargetUsers
	}
	return nil
}

func deliveryFor(b *domain.BroadcastNotification) domain.DeliveryInput {
	sender := b.CreatedBy
	return domain.DeliveryInput{
		Title:  b.Title,
		Body:   b.Body,
		Type:   domain.TypeBroadcast,
		Sender: &sender,
		URL:    "/",
	}
}
