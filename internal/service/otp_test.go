package service

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhikhya/shopcart/internal/hash"
	"github.com/abhikhya/shopcart/internal/models"
	"github.com/abhikhya/shopcart/internal/repo"
)

type fakeSender struct {
	subject string
	body    string
	from    string
	to      []string
	sends   int
	err     error
}

func (f *fakeSender) Send(subject, body, from string, to []string) error {
	f.sends++
	f.subject, f.body, f.from, f.to = subject, body, from, to
	return f.err
}

func seedUser(t *testing.T, r *repo.GormRepo, email string) *models.User {
	t.Helper()
	pw, err := hash.HashPassword("password")
	require.NoError(t, err)
	user := models.User{
		Email:        email,
		Mobile:       "+1" + email,
		PasswordHash: pw,
		IsActive:     true,
	}
	require.NoError(t, r.DB.Create(&user).Error)
	return &user
}

func newTestOTPService(t *testing.T) (*OTPService, *fakeSender, *time.Time) {
	r := newTestRepo(t)
	sender := &fakeSender{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	svc := &OTPService{
		Repo:   r,
		Mail:   sender,
		Sender: "noreply@shopcart.dev",
		Rand:   rand.New(rand.NewSource(1)),
		Now:    func() time.Time { return now },
	}
	return svc, sender, &now
}

var otpPattern = regexp.MustCompile(`^[0-9]{6}$`)

func TestIssue_StoresAndMailsCode(t *testing.T) {
	svc, sender, _ := newTestOTPService(t)
	ctx := context.Background()

	seedUser(t, svc.Repo, "a@b.com")

	require.NoError(t, svc.Issue(ctx, "a@b.com", "Verify", "Hello there"))

	user, err := svc.Repo.UserByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, user.OTP)
	require.NotNil(t, user.OTPCreatedAt)
	assert.Regexp(t, otpPattern, *user.OTP)

	assert.Equal(t, 1, sender.sends)
	assert.Equal(t, "Verify", sender.subject)
	assert.Equal(t, "noreply@shopcart.dev", sender.from)
	assert.Equal(t, []string{"a@b.com"}, sender.to)
	assert.Contains(t, sender.body, "Hello there")
	assert.Contains(t, sender.body, "Your OTP is: "+*user.OTP)
}

func TestIssue_UnknownReceiver(t *testing.T) {
	svc, sender, _ := newTestOTPService(t)

	err := svc.Issue(context.Background(), "nobody@b.com", "Verify", "Hello")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Zero(t, sender.sends)
}

func TestIssue_MailFailure(t *testing.T) {
	svc, sender, _ := newTestOTPService(t)
	ctx := context.Background()

	seedUser(t, svc.Repo, "a@b.com")
	sender.err = errors.New("connection refused")

	err := svc.Issue(ctx, "a@b.com", "Verify", "Hello")
	var merr *MailError
	require.True(t, errors.As(err, &merr))

	// the code was stored before the send attempt
	user, err2 := svc.Repo.UserByEmail(ctx, "a@b.com")
	require.NoError(t, err2)
	assert.NotNil(t, user.OTP)
	assert.NotNil(t, user.OTPCreatedAt)
}

func TestIssue_NoTransportConfigured(t *testing.T) {
	svc, _, _ := newTestOTPService(t)
	svc.Mail = nil
	ctx := context.Background()

	seedUser(t, svc.Repo, "a@b.com")

	err := svc.Issue(ctx, "a@b.com", "Verify", "Hello")
	var merr *MailError
	require.True(t, errors.As(err, &merr))

	// the code was stored before the delivery attempt
	user, err2 := svc.Repo.UserByEmail(ctx, "a@b.com")
	require.NoError(t, err2)
	assert.NotNil(t, user.OTP)
	assert.NotNil(t, user.OTPCreatedAt)
}

func TestVerify_Success(t *testing.T) {
	svc, _, _ := newTestOTPService(t)
	ctx := context.Background()

	seedUser(t, svc.Repo, "a@b.com")
	require.NoError(t, svc.Issue(ctx, "a@b.com", "Verify", "Hello"))

	user, err := svc.Repo.UserByEmail(ctx, "a@b.com")
	require.NoError(t, err)

	require.NoError(t, svc.Verify(ctx, "a@b.com", *user.OTP))

	// the code is not invalidated by a successful verification
	require.NoError(t, svc.Verify(ctx, "a@b.com", *user.OTP))
}

func TestVerify_WrongCode(t *testing.T) {
	svc, _, _ := newTestOTPService(t)
	ctx := context.Background()

	seedUser(t, svc.Repo, "a@b.com")
	require.NoError(t, svc.Issue(ctx, "a@b.com", "Verify", "Hello"))

	user, err := svc.Repo.UserByEmail(ctx, "a@b.com")
	require.NoError(t, err)

	wrong := "000000"
	if *user.OTP == wrong {
		wrong = "000001"
	}
	assert.ErrorIs(t, svc.Verify(ctx, "a@b.com", wrong), ErrInvalidOTP)
}

func TestVerify_NoCodeIssued(t *testing.T) {
	svc, _, _ := newTestOTPService(t)
	ctx := context.Background()

	seedUser(t, svc.Repo, "a@b.com")
	assert.ErrorIs(t, svc.Verify(ctx, "a@b.com", "123456"), ErrInvalidOTP)
}

func TestVerify_UnknownUser(t *testing.T) {
	svc, _, _ := newTestOTPService(t)

	assert.ErrorIs(t, svc.Verify(context.Background(), "nobody@b.com", "123456"), ErrUserNotFound)
}

func TestVerify_Expired(t *testing.T) {
	svc, _, now := newTestOTPService(t)
	ctx := context.Background()

	seedUser(t, svc.Repo, "a@b.com")
	require.NoError(t, svc.Issue(ctx, "a@b.com", "Verify", "Hello"))

	user, err := svc.Repo.UserByEmail(ctx, "a@b.com")
	require.NoError(t, err)

	// still valid at exactly five minutes
	*now = now.Add(5 * time.Minute)
	require.NoError(t, svc.Verify(ctx, "a@b.com", *user.OTP))

	*now = now.Add(time.Minute)
	assert.ErrorIs(t, svc.Verify(ctx, "a@b.com", *user.OTP), ErrExpiredOTP)
}

func TestIssue_DeterministicWithSeededRand(t *testing.T) {
	svc, sender, _ := newTestOTPService(t)
	ctx := context.Background()

	seedUser(t, svc.Repo, "a@b.com")

	other := &OTPService{
		Repo:   svc.Repo,
		Mail:   sender,
		Sender: svc.Sender,
		Rand:   rand.New(rand.NewSource(1)),
		Now:    svc.Now,
	}

	expected := other.code()
	require.NoError(t, svc.Issue(ctx, "a@b.com", "Verify", "Hello"))

	user, err := svc.Repo.UserByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, expected, *user.OTP)
}
