package bus

import (
	"context"

	"github.com/yungbote/lingobridge-backend/internal/realtime"
)

// Bus fans SSE messages out across API instances so a student connected to
// one instance sees events raised on another.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
