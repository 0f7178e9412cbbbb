package mail

import (
	"context"

	"github.com/opslane/clientdesk/pkg/slogx"
)

// LogMailer writes messages to the log instead of delivering them. It is
// the default when no SMTP relay is configured, which keeps local
// development working without infrastructure.
type LogMailer struct{}

func NewLogMailer() *LogMailer { return &LogMailer{} }

func (m *LogMailer) SendVerification(ctx context.Context, to, username, code string) error {
	slogx.FromContext(ctx).Info("mail: verification code",
		"to", to,
		"username", username,
		"code", code,
	)
	return nil
}

func (m *LogMailer) SendInvitation(ctx context.Context, to, companyName, inviteURL string) error {
	slogx.FromContext(ctx).Info("mail: invitation",
		"to", to,
		"company", companyName,
		"url", inviteURL,
	)
	return nil
}
