package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/opslane/clientdesk/internal/api/domain"
	"github.com/opslane/clientdesk/internal/api/mail"
	"github.com/opslane/clientdesk/internal/api/metrics"
	"github.com/opslane/clientdesk/internal/api/store"
	"github.com/opslane/clientdesk/pkg/cryptox"
	"github.com/opslane/clientdesk/pkg/idx"
	"github.com/opslane/clientdesk/pkg/slogx"
)

// DefaultInviteTTL is how long an invitation token stays redeemable.
const DefaultInviteTTL = 24 * time.Hour

var (
	ErrNotAdmin               = errors.New("admin role required")
	ErrInvalidRole            = errors.New("invalid role")
	ErrInvalidInviteRequest   = errors.New("invalid invite request")
	ErrInviteExists           = errors.New("a live invitation already exists for this email")
	ErrInviteNotFound         = errors.New("invitation not found or expired")
	ErrInviteMismatch         = errors.New("invitation was issued for different details")
	ErrInvalidRegisterRequest = errors.New("invalid registration request")
)

type InviteService struct {
	Store  store.Store
	Mailer mail.Mailer

	// BaseURL is the public frontend origin the invite link points at.
	BaseURL   string
	InviteTTL time.Duration
}

// Invite creates an invitation for an email address within the caller's
// company and mails the opaque token. Only admins may invite; that check
// comes before any payload validation.
func (s *InviteService) Invite(ctx context.Context, caller domain.Caller, email, role string) (string, error) {
	log := slogx.FromContext(ctx)

	// 1. Role gate first. A non-admin caller is rejected no matter what
	// the rest of the payload looks like.
	if !caller.IsAdmin() {
		log.Warn("non-admin attempted to invite",
			slog.String("account_id", caller.AccountID),
			slog.String("company_id", caller.CompanyID),
		)
		metrics.Invite(metrics.StatusRejected)
		return "", ErrNotAdmin
	}

	// 2. Validate payload.
	if email == "" {
		return "", ErrInvalidInviteRequest
	}
	if !domain.ValidRole(role) {
		return "", ErrInvalidRole
	}

	// 3. The address must not already belong to an account in this tenant.
	_, err := s.Store.Accounts().GetAccountByEmail(ctx, caller.CompanyID, email)
	if err == nil {
		metrics.Invite(metrics.StatusRejected)
		return "", ErrEmailTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check account", slog.Any("error", err))
		return "", err
	}

	now := time.Now().UTC()

	// 4. A live invitation blocks a second one; an expired one is replaced.
	existing, err := s.Store.Invitations().GetInvitationByEmail(ctx, caller.CompanyID, email)
	switch {
	case err == nil:
		if !existing.Expired(now) {
			metrics.Invite(metrics.StatusRejected)
			return "", ErrInviteExists
		}
	case errors.Is(err, store.ErrNotFound):
		existing = domain.Invitation{}
	default:
		log.Error("failed to check invitation", slog.Any("error", err))
		return "", err
	}

	// 5. Generate and fingerprint the opaque token. Only the fingerprint
	// is stored; the raw token goes out in the mail and nowhere else.
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		return "", err
	}

	invitation := domain.Invitation{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken(token),
		Email:     email,
		Role:      domain.Role(role),
		CompanyID: caller.CompanyID,
		CreatedBy: caller.AccountID,
		ExpiresAt: now.Add(s.inviteTTL()),
		CreatedAt: now,
	}

	// 6. Replace-or-create atomically. The (company_id, email) unique
	// index arbitrates concurrent invites: one write wins, the loser
	// surfaces a conflict.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if existing.ID != "" {
			if err := tx.Invitations().DeleteInvitation(ctx, existing.ID); err != nil &&
				!errors.Is(err, store.ErrNotFound) {
				return err
			}
		}
		return tx.Invitations().CreateInvitation(ctx, invitation)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			metrics.Invite(metrics.StatusRejected)
			return "", ErrInviteExists
		}
		log.Error("failed to create invitation", slog.Any("error", err))
		metrics.Invite(metrics.StatusError)
		return "", err
	}

	// 7. Mail the link. Fire and forget; the invitation stands even when
	// delivery fails, an admin can read the token from the response.
	s.sendInvitation(ctx, caller.CompanyID, email, token)

	log.Info("invitation created",
		slog.String("invitation_id", invitation.ID),
		slog.String("company_id", caller.CompanyID),
		slog.String("role", role),
		slog.String("created_by", caller.AccountID),
	)
	metrics.Invite(metrics.StatusOK)

	return token, nil
}

// RegisterRequest carries the fields of an invited registration.
type RegisterRequest struct {
	Token     string
	Email     string
	CompanyID string
	Username  string
	Password  string
	FirstName string
	LastName  string
	Address   string
}

// Register redeems an invitation token and creates the invited account.
// The invitation is deleted in the same transaction that creates the
// account, so a token redeems exactly once.
func (s *InviteService) Register(ctx context.Context, req RegisterRequest) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	if req.Token == "" || req.Email == "" || req.CompanyID == "" ||
		req.Username == "" || req.Password == "" {
		return domain.Account{}, ErrInvalidRegisterRequest
	}

	// 2. Fingerprint the token and look the invitation up.
	invitation, err := s.Store.Invitations().GetInvitationByTokenHash(ctx, cryptox.FingerprintToken(req.Token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("registration attempted with unknown invite token")
			return domain.Account{}, ErrInviteNotFound
		}
		log.Error("failed to fetch invitation", slog.Any("error", err))
		return domain.Account{}, err
	}

	// 3. Expiry is checked lazily here, never by a sweep. A token
	// expiring exactly now is already expired.
	if invitation.Expired(time.Now().UTC()) {
		log.Warn("registration attempted with expired invitation",
			slog.String("invitation_id", invitation.ID),
		)
		return domain.Account{}, ErrInviteNotFound
	}

	// 4. The payload must match what the invitation was issued for.
	if invitation.Email != req.Email || invitation.CompanyID != req.CompanyID {
		log.Warn("registration attempted with mismatched invitation",
			slog.String("invitation_id", invitation.ID),
		)
		return domain.Account{}, ErrInviteMismatch
	}

	// 5. Hash the password.
	passwordHash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.Account{}, err
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:           idx.New().String(),
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Address:      req.Address,
		PasswordHash: passwordHash,
		Role:         invitation.Role, // the invitation decides, not the payload
		CompanyID:    invitation.CompanyID,
		Verified:     true, // the invite mail already proved the address
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 6. Consume the invitation and create the account atomically.
	// Deleting first makes concurrent redemptions race on the row: the
	// loser sees it gone and fails.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().DeleteInvitation(ctx, invitation.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}
		return tx.Accounts().CreateAccount(ctx, account)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrEmailTaken
		}
		if !errors.Is(err, ErrInviteNotFound) {
			log.Error("failed to redeem invitation", slog.Any("error", err))
		}
		return domain.Account{}, err
	}

	log.Info("account registered via invitation",
		slog.String("account_id", account.ID),
		slog.String("company_id", account.CompanyID),
		slog.String("invitation_id", invitation.ID),
		slog.String("role", string(account.Role)),
	)

	return account, nil
}

func (s *InviteService) inviteTTL() time.Duration {
	if s.InviteTTL > 0 {
		return s.InviteTTL
	}
	return DefaultInviteTTL
}

func (s *InviteService) sendInvitation(ctx context.Context, companyID, email, token string) {
	if s.Mailer == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		companyName := companyID
		if company, err := s.Store.Companies().GetCompanyByID(bg, companyID); err == nil {
			companyName = company.Name
		}
		inviteURL := s.BaseURL + "/register?token=" + token
		if err := s.Mailer.SendInvitation(bg, email, companyName, inviteURL); err != nil {
			slogx.FromContext(bg).Warn("failed to send invitation mail",
				slog.Any("error", err),
			)
		}
	}()
}
