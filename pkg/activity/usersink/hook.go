package usersink

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-conf/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts registry activity events to a go-users ActivitySink. Events
// whose actor is not a UUID fall back to ActorID.
type Hook struct {
	Sink    usertypes.ActivitySink
	ActorID uuid.UUID
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := activity.NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" || normalized.ObjectID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	actor := parseUUID(normalized.ActorID)
	if actor == uuid.Nil {
		actor = h.ActorID
	}

	record := usertypes.ActivityRecord{
		ActorID:    actor,
		UserID:     actor,
		TenantID:   parseUUID(normalized.TenantID),
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		Data:       recordData(normalized),
		OccurredAt: normalized.OccurredAt,
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}

	return h.Sink.Log(ctx, record)
}

func recordData(event activity.Event) map[string]any {
	data := make(map[string]any, len(event.Metadata)+1)
	for key, value := range event.Metadata {
		data[key] = value
	}
	if raw := strings.TrimSpace(event.ActorID); raw != "" && parseUUID(raw) == uuid.Nil {
		data["actor"] = raw
	}
	if len(data) == 0 {
		return nil
	}
	return data
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}
