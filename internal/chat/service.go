// Package chat implements the user-initiated actions on groups and
// messages: sending, pausing and creating groups.
package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/matheus3301/tsched/internal/backend"
	"github.com/matheus3301/tsched/internal/directory"
	"github.com/matheus3301/tsched/internal/msgstore"
	"github.com/matheus3301/tsched/internal/schedule"
	"github.com/matheus3301/tsched/internal/validate"
	"go.uber.org/zap"
)

// ErrNoGroup is returned when an action needs a selected group.
var ErrNoGroup = &validate.FieldError{Field: "group", Message: "Select a group first"}

// API is the part of the backend used by user actions.
type API interface {
	ListMessages(ctx context.Context, groupID string) ([]backend.Message, error)
	Schedule(ctx context.Context, req backend.ScheduleRequest) error
	TogglePause(ctx context.Context, messageID string) error
	CreateGroup(ctx context.Context, displayName, groupID string) (*backend.RemoteGroup, error)
}

// Refresher reloads the group directory.
type Refresher interface {
	Refresh(ctx context.Context) directory.Result
}

// Service runs user actions against the backend and keeps the message
// store in step with their results.
type Service struct {
	api    API
	store  *msgstore.Store
	dir    Refresher
	logger *zap.Logger
}

// NewService creates a chat service.
func NewService(api API, store *msgstore.Store, dir Refresher, logger *zap.Logger) *Service {
	return &Service{
		api:    api,
		store:  store,
		dir:    dir,
		logger: logger.Named("chat"),
	}
}

// Send validates c, submits it for delivery to groupID, reloads the
// group's history and tags the new message with its schedule summary.
// Nothing is sent when c is not eligible.
func (s *Service) Send(ctx context.Context, groupID string, c schedule.Compose) (schedule.Descriptor, error) {
	if groupID == "" {
		return schedule.Descriptor{}, ErrNoGroup
	}
	if err := schedule.Validate(c); err != nil {
		return schedule.Descriptor{}, err
	}

	d := schedule.Build(c.Schedule)
	req := schedule.Payload(groupID, c, d)
	if err := s.api.Schedule(ctx, req); err != nil {
		s.logger.Warn("schedule failed",
			zap.String("group", groupID),
			zap.String("type", string(req.ScheduleType)),
			zap.Error(err),
		)
		return d, fmt.Errorf("schedule message: %w", err)
	}
	s.logger.Info("message scheduled",
		zap.String("group", groupID),
		zap.String("type", string(req.ScheduleType)),
		zap.String("cron", d.Cron),
	)

	if err := s.Reload(ctx, groupID); err != nil {
		s.logger.Warn("reload after send failed", zap.String("group", groupID), zap.Error(err))
		return d, nil
	}
	if c.Schedule.Type != schedule.Now {
		s.store.AnnotateLastOutgoing(groupID, d.Summary)
	}
	return d, nil
}

// TogglePaused flips the paused flag of a scheduled message on the backend
// and then reloads the group that holds it. Local state only changes
// through that reload.
func (s *Service) TogglePaused(ctx context.Context, messageID string) error {
	if messageID == "" {
		return errors.New("toggle pause: message has no id")
	}
	groupID, known := s.store.Owner(messageID)

	if err := s.api.TogglePause(ctx, messageID); err != nil {
		s.logger.Warn("toggle pause failed", zap.String("message", messageID), zap.Error(err))
		return fmt.Errorf("toggle pause: %w", err)
	}
	if !known {
		s.logger.Debug("toggled message not cached", zap.String("message", messageID))
		return nil
	}
	if err := s.Reload(ctx, groupID); err != nil {
		s.logger.Warn("reload after toggle failed", zap.String("group", groupID), zap.Error(err))
	}
	return nil
}

// CreateGroup registers a new destination and refreshes the directory.
func (s *Service) CreateGroup(ctx context.Context, displayName, groupID string) (*backend.RemoteGroup, error) {
	var errs validate.FieldErrors
	var fe *validate.FieldError
	if err := validate.GroupName(displayName); errors.As(err, &fe) {
		errs = append(errs, fe)
	}
	if err := validate.GroupIdentifier(groupID); errors.As(err, &fe) {
		errs = append(errs, fe)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	created, err := s.api.CreateGroup(ctx, displayName, groupID)
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	s.logger.Info("group created", zap.String("group", created.GroupID))
	if s.dir != nil {
		s.dir.Refresh(ctx)
	}
	return created, nil
}

// Reload fetches one group's history and stores it unless a newer fetch
// already landed.
func (s *Service) Reload(ctx context.Context, groupID string) error {
	ticket := s.store.Begin(groupID)
	msgs, err := s.api.ListMessages(ctx, groupID)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	s.store.Apply(ticket, msgs)
	return nil
}
