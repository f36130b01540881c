// Package notify defines the contract between the fleet analysis engine and
// the notification collaborator. Delivery, deduplication and channel
// selection are entirely the collaborator's responsibility; the engine only
// hands over the per-tick analysis outcome.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tripsentry/tripsentry/internal/tracker"
)

// Update is the per-trip analysis outcome handed to the notification sink.
type Update struct {
	TripID         string              `json:"trip_id"`
	Status         tracker.TripStatus  `json:"status"`
	PreviousStatus tracker.TripStatus  `json:"previous_status"`
	Instruction    tracker.Instruction `json:"-"`

	// InstructionText is the rendered guidance, or the NO_INSTRUCTION
	// sentinel.
	InstructionText string `json:"instruction"`
}

// Notifier receives trip status updates.
type Notifier interface {
	Notify(ctx context.Context, update Update) error
}

// LogNotifier logs updates instead of delivering them. Useful for local
// development and as a fallback when no Pub/Sub topic is configured.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a notifier that writes updates to the log.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the update.
func (n *LogNotifier) Notify(_ context.Context, update Update) error {
	n.logger.Info().
		Str("trip_id", update.TripID).
		Str("status", string(update.Status)).
		Str("previous_status", string(update.PreviousStatus)).
		Str("instruction", update.InstructionText).
		Msg("trip status update")
	return nil
}

// Ensure LogNotifier implements Notifier.
var _ Notifier = (*LogNotifier)(nil)
