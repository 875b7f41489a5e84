package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/locm1/nippo/internal/models"
	"github.com/locm1/nippo/internal/notify"
	"github.com/locm1/nippo/internal/storage"
)

const notificationPageSize = 20

// NotificationService persists notifications and pushes them to the realtime
// hub. Delivery is best-effort: a notification write failure is logged, never
// surfaced to the action that triggered it.
type NotificationService struct {
	store storage.Store
	hub   *notify.Hub
}

func NewNotificationService(store storage.Store, hub *notify.Hub) *NotificationService {
	return &NotificationService{store: store, hub: hub}
}

// NotifyComment records that actor commented on the owner's report. Self
// comments produce no notification.
func (s *NotificationService) NotifyComment(ctx context.Context, report *models.Report, comment *models.Comment, actor *models.User) {
	if report.UserID == comment.UserID {
		return
	}
	n := models.Notification{
		UserID:    report.UserID,
		Kind:      models.NotificationKindComment,
		Title:     "新しいコメント",
		Message:   fmt.Sprintf("%sさんが「%s」にコメントしました", DisplayName(actor), DisplayTitle(report)),
		ReportID:  &report.ID,
		CommentID: &comment.ID,
	}
	s.dispatch(ctx, n)
}

// NotifyReaction records that actor stamped the owner's report or comment.
func (s *NotificationService) NotifyReaction(ctx context.Context, report *models.Report, commentID *uuid.UUID, ownerID uuid.UUID, actor *models.User, emoji string) {
	if ownerID == actor.ID {
		return
	}
	n := models.Notification{
		UserID:    ownerID,
		Kind:      models.NotificationKindReaction,
		Title:     "新しいスタンプ",
		Message:   fmt.Sprintf("%sさんが「%s」に%sでリアクションしました", DisplayName(actor), DisplayTitle(report), emoji),
		ReportID:  &report.ID,
		CommentID: commentID,
	}
	s.dispatch(ctx, n)
}

func (s *NotificationService) dispatch(ctx context.Context, n models.Notification) {
	if err := s.store.CreateNotification(ctx, &n); err != nil {
		slog.Error("notification write failed", "kind", n.Kind, "recipient", n.UserID, "error", err)
		return
	}
	if s.hub != nil {
		s.hub.Publish(n)
	}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	notifications, err := s.store.ListNotifications(ctx, userID, notificationPageSize)
	if err != nil {
		return nil, storeErr("list notifications", err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.store.MarkNotificationRead(ctx, id, userID); err != nil {
		return storeErr("mark notification read", err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.MarkAllNotificationsRead(ctx, userID); err != nil {
		return storeErr("mark all notifications read", err)
	}
	return nil
}
