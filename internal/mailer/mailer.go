package mailer

import (
	"context"

	"github.com/twokhq/realtime-core/internal/domain"
)

// Mailer abstracts the outbound mail provider. Mocking this interface in
// tests gives full control over provider behaviour without real calls.
type Mailer interface {
	Send(ctx context.Context, job domain.MailJob) error
}
