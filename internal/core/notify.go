package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/csvrelay/internal/metrics"
)

// Notification subjects.
const (
	SubjectSuccess        = "CSV Upload Success"
	SubjectPartialFailure = "CSV Upload Partial Failure"
)

// SuccessMessage is the body sent when every row reached the sink.
const SuccessMessage = "All rows sent successfully"

// OutcomeNotifier sends one summary message per forwarded upload.
// Delivery is best effort: failures are logged and counted, never retried.
type OutcomeNotifier struct {
	mailer Mailer
}

// NewOutcomeNotifier creates a notifier. A nil mailer disables delivery.
func NewOutcomeNotifier(mailer Mailer) *OutcomeNotifier {
	return &OutcomeNotifier{mailer: mailer}
}

// Compose returns the subject and body describing outcome.
func Compose(outcome ForwardOutcome) (subject, body string) {
	if outcome.OK() {
		return SubjectSuccess, SuccessMessage
	}
	return SubjectPartialFailure, fmt.Sprintf("Error sending row %d", outcome.FailedRow)
}

// Notify sends the summary for outcome. The returned error is a
// *Error of KindNotificationDelivery, for observation only.
func (n *OutcomeNotifier) Notify(ctx context.Context, logger *slog.Logger, outcome ForwardOutcome) error {
	if n == nil || n.mailer == nil {
		return nil
	}

	subject, body := Compose(outcome)
	if err := n.mailer.Send(ctx, subject, body); err != nil {
		metrics.RecordNotificationFailed()
		logger.Error("notification delivery failed",
			"subject", subject,
			"error", err,
		)
		return &Error{Kind: KindNotificationDelivery, Err: err}
	}

	logger.Info("notification sent", "subject", subject)
	return nil
}
