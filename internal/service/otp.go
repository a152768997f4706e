package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/abhikhya/shopcart/internal/logging"
	"github.com/abhikhya/shopcart/internal/mail"
	"github.com/abhikhya/shopcart/internal/repo"
)

const otpTTL = 5 * time.Minute

// OTPService issues and verifies emailed one-time passcodes. Rand and Now
// are injectable so tests get deterministic codes and a movable clock.
type OTPService struct {
	Repo   *repo.GormRepo
	Mail   mail.Sender
	Sender string
	Rand   *rand.Rand
	Now    func() time.Time
}

func (s *OTPService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *OTPService) code() string {
	if s.Rand != nil {
		return fmt.Sprintf("%06d", s.Rand.Intn(1000000))
	}
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

// Issue generates a fresh code, stores it on the user and mails it out.
// The code is stored before the send attempt, so a mail failure leaves
// a usable OTP behind.
func (s *OTPService) Issue(ctx context.Context, receiver, subject, message string) error {
	l := logging.FromContext(ctx).With("svc", "otp.issue")

	user, err := s.Repo.UserByEmail(ctx, receiver)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	code := s.code()
	if err := s.Repo.SaveOTP(ctx, user.ID, code, s.now()); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}

	if s.Mail == nil {
		l.Error("otp mail failed", "userID", user.ID, "error", "no mail transport configured")
		return &MailError{Err: errors.New("no mail transport configured")}
	}

	body := fmt.Sprintf("%s\n\nYour OTP is: %s", message, code)
	if err := s.Mail.Send(subject, body, s.Sender, []string{receiver}); err != nil {
		l.Error("otp mail failed", "userID", user.ID, "error", err)
		return &MailError{Err: err}
	}

	l.Info("otp issued", "userID", user.ID)
	return nil
}

// Verify checks the submitted code against the stored one. The stored
// OTP is left in place whatever the outcome.
func (s *OTPService) Verify(ctx context.Context, email, otp string) error {
	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if user.OTP == nil || user.OTPCreatedAt == nil || *user.OTP != otp {
		return ErrInvalidOTP
	}
	if s.now().After(user.OTPCreatedAt.Add(otpTTL)) {
		return ErrExpiredOTP
	}
	return nil
}
