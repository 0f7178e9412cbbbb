// Package mail sends transactional email for account verification and
// invitations. Delivery is best effort; services never fail an operation
// because a message could not be sent.
package mail

import "context"

// Mailer delivers the two message kinds the platform produces.
type Mailer interface {
	// SendVerification mails a one-time verification code.
	SendVerification(ctx context.Context, to, username, code string) error

	// SendInvitation mails an invite link carrying the opaque token.
	SendInvitation(ctx context.Context, to, companyName, inviteURL string) error
}
