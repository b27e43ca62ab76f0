package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	repo "github.com/oksasatya/go-recipe-api/internal/domain/repository"
	"github.com/oksasatya/go-recipe-api/pkg/helpers"
	"github.com/oksasatya/go-recipe-api/pkg/mailer"
	"github.com/oksasatya/go-recipe-api/pkg/validation"
)

// Publisher delivers a JSON message to the notification queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type UserService struct {
	Repo     repo.UserRepository
	Sessions repo.SessionRepository // optional
	JWT      *helpers.JWTManager
	Pub      Publisher // optional
	Logger   *logrus.Logger

	// NotifyTimeout bounds the fire-and-forget publish.
	NotifyTimeout time.Duration
}

func NewUserService(repo repo.UserRepository, sessions repo.SessionRepository, jwt *helpers.JWTManager, pub Publisher, logger *logrus.Logger) *UserService {
	return &UserService{
		Repo:          repo,
		Sessions:      sessions,
		JWT:           jwt,
		Pub:           pub,
		Logger:        logger,
		NotifyTimeout: 5 * time.Second,
	}
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Register creates a user. Duplicate emails are reported on the email field.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	verr := NewValidationError()
	email := NormalizeEmail(in.Email)
	if email == "" {
		verr.Add("email", "this field is required")
	}
	if len(in.Password) < validation.MinPasswordLength {
		verr.Add("password", fmt.Sprintf("ensure this field has at least %d characters", validation.MinPasswordLength))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if existing, err := s.Repo.GetByEmail(ctx, email); err == nil && existing != nil {
		verr.Add("email", "user with this email already exists")
		return nil, verr
	} else if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Email: email, Name: strings.TrimSpace(in.Name), Password: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			verr.Add("email", "user with this email already exists")
			return nil, verr
		}
		return nil, err
	}
	s.Logger.WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

// Authenticate validates email/password and returns the user without issuing tokens.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueToken authenticates the user and returns a bearer token bound to a fresh session.
func (s *UserService) IssueToken(ctx context.Context, email, password string) (string, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	sid := uuid.NewString()
	token, _, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return "", err
	}
	if s.Sessions != nil {
		sess := entity.Session{UserID: u.ID, SessionID: sid, Email: u.Email, Name: u.Name, CreatedAt: time.Now()}
		if err := s.Sessions.Save(ctx, sess); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("save session failed")
			return "", err
		}
	}
	return token, nil
}

// ViewMeta describes who opened the profile; it only feeds the notification.
type ViewMeta struct {
	IP        string
	UserAgent string
}

// GetProfile returns the user and fires a profile_viewed notification without waiting for it.
func (s *UserService) GetProfile(ctx context.Context, userID string, meta ViewMeta) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.notify(mailer.NotificationJob{
		Type:       mailer.ProfileViewed,
		UserID:     u.ID,
		To:         u.Email,
		Name:       u.Name,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
		OccurredAt: time.Now().UTC(),
	})
	return u, nil
}

func (s *UserService) notify(job mailer.NotificationJob) {
	if s.Pub == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.NotifyTimeout)
		defer cancel()
		if err := s.Pub.PublishJSON(ctx, job); err != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": job.UserID, "type": job.Type}).Warn("publish notification failed")
		}
	}()
}

// UpdateProfileInput holds the optional fields of a profile update; nil means "not supplied".
type UpdateProfileInput struct {
	Name     *string
	Password *string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	if in.Password != nil && len(*in.Password) < validation.MinPasswordLength {
		verr := NewValidationError()
		verr.Add("password", fmt.Sprintf("ensure this field has at least %d characters", validation.MinPasswordLength))
		return nil, verr
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Password != nil {
		hash, err := helpers.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.Password = hash
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
