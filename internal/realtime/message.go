package realtime

type SSEEvent string

const (
	SSEEventSectionCompleted    SSEEvent = "section_completed"
	SSEEventModuleCompleted     SSEEvent = "module_completed"
	SSEEventAchievementUnlocked SSEEvent = "achievement_unlocked"
	SSEEventExamSubmitted       SSEEvent = "exam_submitted"
	SSEEventCertificateIssued   SSEEvent = "certificate_issued"
)

// SSEMessage is delivered to every client subscribed to Channel. Student
// events use the student ID as the channel.
type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}
