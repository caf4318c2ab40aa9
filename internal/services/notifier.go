package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/lingobridge-backend/internal/domain"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
	"github.com/yungbote/lingobridge-backend/internal/realtime"
	"github.com/yungbote/lingobridge-backend/internal/realtime/bus"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

// HubEmitter delivers straight to the local hub. Used when no bus is configured.
type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.Hub.Broadcast(msg)
}

// BusEmitter publishes through the bus; every instance's forwarder
// rebroadcasts into its own hub.
type BusEmitter struct {
	Bus bus.Bus
	Log *logger.Logger
}

func (e *BusEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if err := e.Bus.Publish(ctx, msg); err != nil && e.Log != nil {
		e.Log.Warn("SSE publish failed", "event", msg.Event, "error", err)
	}
}

// =========================
// Student notifier
// =========================

type StudentNotifier interface {
	SectionCompleted(ctx context.Context, studentID uuid.UUID, sm *types.StudentModule)
	ModuleCompleted(ctx context.Context, studentID uuid.UUID, sm *types.StudentModule)
	AchievementUnlocked(ctx context.Context, studentID uuid.UUID, sa *types.StudentAchievement)
	ExamSubmitted(ctx context.Context, studentID uuid.UUID, attempt *types.ExamAttempt)
	CertificateIssued(ctx context.Context, studentID uuid.UUID, cert *types.Certificate)
}

type studentNotifier struct {
	emit SSEEmitter
}

func NewStudentNotifier(emit SSEEmitter) StudentNotifier {
	return &studentNotifier{emit: emit}
}

func (n *studentNotifier) send(ctx context.Context, studentID uuid.UUID, event realtime.SSEEvent, data map[string]any) {
	if n == nil || n.emit == nil || studentID == uuid.Nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: studentID.String(),
		Event:   event,
		Data:    data,
	})
}

func (n *studentNotifier) SectionCompleted(ctx context.Context, studentID uuid.UUID, sm *types.StudentModule) {
	if sm == nil {
		return
	}
	n.send(ctx, studentID, realtime.SSEEventSectionCompleted, map[string]any{
		"module_id": sm.ModuleID,
		"progress":  sm.Progress,
		"status":    sm.Status,
	})
}

func (n *studentNotifier) ModuleCompleted(ctx context.Context, studentID uuid.UUID, sm *types.StudentModule) {
	if sm == nil {
		return
	}
	n.send(ctx, studentID, realtime.SSEEventModuleCompleted, map[string]any{
		"module_id":    sm.ModuleID,
		"completed_at": sm.CompletedAt,
	})
}

func (n *studentNotifier) AchievementUnlocked(ctx context.Context, studentID uuid.UUID, sa *types.StudentAchievement) {
	if sa == nil {
		return
	}
	n.send(ctx, studentID, realtime.SSEEventAchievementUnlocked, map[string]any{
		"achievement_id": sa.AchievementID,
		"achievement":    sa.Achievement,
		"unlocked_at":    sa.UnlockedAt,
	})
}

func (n *studentNotifier) ExamSubmitted(ctx context.Context, studentID uuid.UUID, attempt *types.ExamAttempt) {
	if attempt == nil {
		return
	}
	n.send(ctx, studentID, realtime.SSEEventExamSubmitted, map[string]any{
		"exam_id":        attempt.ExamID,
		"attempt_number": attempt.AttemptNumber,
		"percentage":     attempt.Percentage,
		"passed":         attempt.Passed,
	})
}

func (n *studentNotifier) CertificateIssued(ctx context.Context, studentID uuid.UUID, cert *types.Certificate) {
	if cert == nil {
		return
	}
	n.send(ctx, studentID, realtime.SSEEventCertificateIssued, map[string]any{
		"certificate_id": cert.ID,
		"exam_id":        cert.ExamID,
		"code":           cert.Code,
	})
}
