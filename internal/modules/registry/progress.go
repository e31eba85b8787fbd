package registry

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/realtime"
)

func progressOf(item types.RegistryItem) types.RegistryProgress {
	return types.RegistryProgress{
		EventID:       item.EventID,
		ItemID:        item.ID,
		CurrentAmount: item.CurrentAmount,
		TargetAmount:  item.TargetAmount,
		IsCompleted:   item.IsCompleted(),
	}
}

// publishProgress is best effort: the committed total is the source of truth and clients
// resync from the snapshot on reconnect.
func (u Usecases) publishProgress(ctx context.Context, item types.RegistryItem) {
	if u.deps.Publisher == nil {
		return
	}
	msg := realtime.Message{
		Channel: realtime.RegistryChannel(item.EventID),
		Event:   realtime.EventRegistryProgress,
		Data:    progressOf(item),
	}
	if err := u.deps.Publisher.Publish(ctx, msg); err != nil {
		u.deps.Log.Warn("publish registry progress failed", "event_id", item.EventID, "item_id", item.ID, "error", err)
	}
}

func (u Usecases) publishContribution(ctx context.Context, item types.RegistryItem, c types.Contribution) {
	if u.deps.Publisher == nil {
		return
	}
	msg := realtime.Message{
		Channel: realtime.RegistryChannel(item.EventID),
		Event:   realtime.EventContributionReceived,
		Data:    c.PublicView(),
	}
	if err := u.deps.Publisher.Publish(ctx, msg); err != nil {
		u.deps.Log.Warn("publish contribution failed", "event_id", item.EventID, "error", err)
	}
}

// Snapshot is the first message a live client receives: the progress of every public item,
// so it starts from a known state before deltas arrive.
func (u Usecases) Snapshot(ctx context.Context, eventID uuid.UUID) (realtime.Message, error) {
	items, err := u.ListRegistry(ctx, eventID)
	if err != nil {
		return realtime.Message{}, err
	}
	progress := make([]types.RegistryProgress, 0, len(items))
	for _, it := range items {
		progress = append(progress, progressOf(it.RegistryItem))
	}
	return realtime.Message{
		Channel: realtime.RegistryChannel(eventID),
		Event:   realtime.EventRegistrySnapshot,
		Data:    progress,
	}, nil
}
