// Package notify holds the in-process notifier implementations. The portal's
// real delivery channels (mail, browser push) live behind the same interface
// in the surrounding system; this core ships a structured-log notifier.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/staffhub/hr-portal/internal/core/ports"
)

// LogNotifier records each decision notification to the structured log.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, event ports.LeaveDecisionEvent) error {
	n.log.Info().
		Str("request_id", event.RequestID).
		Str("employee_id", event.EmployeeID).
		Str("type", event.Type).
		Float64("days", event.Days).
		Str("decision", string(event.Decision)).
		Str("approver_id", event.ApproverID).
		Time("decided_at", event.DecidedAt).
		Msg("leave decision notification")
	return nil
}
