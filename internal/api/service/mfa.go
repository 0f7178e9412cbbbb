package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/opslane/clientdesk/internal/api/domain"
	"github.com/opslane/clientdesk/internal/api/store"
	"github.com/opslane/clientdesk/pkg/slogx"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var (
	ErrInvalidTOTPCode   = errors.New("invalid totp code")
	ErrMFANotEnrolled    = errors.New("mfa not enrolled")
	ErrMFANotEnabled     = errors.New("mfa not enabled")
	ErrMFAAlreadyEnabled = errors.New("mfa already enabled")
)

type MFAService struct {
	Store store.Store

	// Issuer is the name shown in authenticator apps.
	Issuer string
}

// Enroll generates a TOTP secret for the caller and stores it. MFA is not
// active until the first code is verified through Activate.
func (s *MFAService) Enroll(ctx context.Context, caller domain.Caller) (domain.MFAEnrollment, error) {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByID(ctx, caller.AccountID)
	if err != nil {
		return domain.MFAEnrollment{}, err
	}
	if account.MFAEnabled() {
		return domain.MFAEnrollment{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: account.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		log.Error("failed to generate totp key", slog.Any("error", err))
		return domain.MFAEnrollment{}, err
	}

	if err := s.Store.Accounts().UpdateMFASecret(ctx, account.ID, key.Secret()); err != nil {
		log.Error("failed to store mfa secret", slog.Any("error", err))
		return domain.MFAEnrollment{}, err
	}

	log.Debug("mfa enrollment started", slog.String("account_id", account.ID))

	return domain.MFAEnrollment{
		Secret:  key.Secret(),
		URL:     key.URL(),
		Issuer:  s.Issuer,
		Account: account.Email,
	}, nil
}

// Activate turns MFA on after the caller proves possession of the secret
// with a valid code. From here on login requires a TOTP code.
func (s *MFAService) Activate(ctx context.Context, caller domain.Caller, code string) error {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByID(ctx, caller.AccountID)
	if err != nil {
		return err
	}
	if account.MFASecret == nil || *account.MFASecret == "" {
		return ErrMFANotEnrolled
	}
	if account.MFAEnabled() {
		return ErrMFAAlreadyEnabled
	}

	if !totp.Validate(code, *account.MFASecret) {
		return ErrInvalidTOTPCode
	}

	if err := s.Store.Accounts().EnableMFA(ctx, account.ID); err != nil {
		log.Error("failed to enable mfa", slog.Any("error", err))
		return err
	}

	log.Info("mfa enabled", slog.String("account_id", account.ID))
	return nil
}

// Disable removes MFA after verifying a current code.
func (s *MFAService) Disable(ctx context.Context, caller domain.Caller, code string) error {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByID(ctx, caller.AccountID)
	if err != nil {
		return err
	}
	if !account.MFAEnabled() {
		return ErrMFANotEnabled
	}

	if !totp.Validate(code, *account.MFASecret) {
		return ErrInvalidTOTPCode
	}

	if err := s.Store.Accounts().DisableMFA(ctx, account.ID); err != nil {
		log.Error("failed to disable mfa", slog.Any("error", err))
		return err
	}

	log.Info("mfa disabled", slog.String("account_id", account.ID))
	return nil
}
