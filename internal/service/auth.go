package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/abhikhya/shopcart/internal/hash"
	"github.com/abhikhya/shopcart/internal/logging"
	"github.com/abhikhya/shopcart/internal/models"
	"github.com/abhikhya/shopcart/internal/mykafka"
	"github.com/abhikhya/shopcart/internal/repo"
	"github.com/abhikhya/shopcart/internal/tokens"
)

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	Producer      *mykafka.Producer
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	IsStaff      bool
}

type UserSummary struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	IsActive bool   `json:"is_active"`
	IsStaff  bool   `json:"is_staff"`
}

func (s *AuthService) publish(ctx context.Context, topic, key string, event map[string]interface{}) {
	if s.Producer == nil {
		return
	}
	if err := s.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", topic, "error", err)
	}
}

func (s *AuthService) Register(ctx context.Context, email, password, mobile string) error {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	verr := NewValidationError()
	if email == "" {
		verr.Add("email", "this field is required")
	} else if !strings.Contains(email, "@") {
		verr.Add("email", "enter a valid email address")
	}
	if password == "" {
		verr.Add("password", "this field is required")
	}
	if mobile == "" {
		verr.Add("mobile", "this field is required")
	}
	if !verr.Empty() {
		return verr
	}

	if taken, err := s.Repo.EmailTaken(ctx, email); err != nil {
		return fmt.Errorf("check email: %w", err)
	} else if taken {
		verr.Add("email", "user with this email already exists")
	}
	if taken, err := s.Repo.MobileTaken(ctx, mobile); err != nil {
		return fmt.Errorf("check mobile: %w", err)
	} else if taken {
		verr.Add("mobile", "user with this mobile already exists")
	}
	if !verr.Empty() {
		return verr
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		Mobile:       mobile,
		PasswordHash: pwHash,
		IsActive:     true,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	s.publish(ctx, "user_events", fmt.Sprint(user.ID), map[string]interface{}{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})

	l.Info("user registered", "userID", user.ID)
	return nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive || !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		l.Error("login failed", "error", err)
		return nil, err
	}

	s.publish(ctx, "user_events", fmt.Sprint(user.ID), map[string]interface{}{
		"type":   "user_logged_in",
		"userID": user.ID,
		"email":  user.Email,
	})

	return pair, nil
}

func (s *AuthService) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	role := tokens.RoleUser
	if user.IsStaff {
		role = tokens.RoleStaff
	}

	accessExp := time.Now().Add(tokens.AccessTTL)
	access, err := tokens.SignAccess(user.ID, role, s.JWTSecret, accessExp)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshExp := time.Now().Add(tokens.RefreshTTL)
	refresh, err := tokens.SignRefresh(user.ID, s.RefreshSecret, refreshExp)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	claims, err := tokens.RefreshClaimsFromToken(refresh, s.RefreshSecret)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddRefresh(ctx, refresh, claims.ID, user.ID, refreshExp); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		IsStaff:      user.IsStaff,
	}, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	usable, err := s.Repo.RefreshUsable(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check refresh token: %w", err)
	}
	if !usable {
		return nil, ErrInvalidCredentials
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.Repo.RevokeRefresh(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	return s.issuePair(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.Repo.RevokeRefresh(ctx, refreshToken)
}

func (s *AuthService) ListUsers(ctx context.Context) (int, []UserSummary, error) {
	users, err := s.Repo.ListUsers(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]UserSummary, len(users))
	for i, u := range users {
		out[i] = UserSummary{
			ID:       u.ID,
			Email:    u.Email,
			Mobile:   u.Mobile,
			IsActive: u.IsActive,
			IsStaff:  u.IsStaff,
		}
	}
	return len(out), out, nil
}
