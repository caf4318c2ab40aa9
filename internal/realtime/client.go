package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
)

const outboundBuffer = 16

type SSEClient struct {
	ID        uuid.UUID
	StudentID uuid.UUID
	Channels  map[string]bool
	Outbound  chan SSEMessage
	Logger    *logger.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// Done is closed once the hub has released the client.
func (c *SSEClient) Done() <-chan struct{} { return c.done }
