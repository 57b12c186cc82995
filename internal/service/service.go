package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dan9191/ziptalk-calculator/internal/cache"
	"github.com/Dan9191/ziptalk-calculator/internal/config"
	"github.com/Dan9191/ziptalk-calculator/internal/models"
	"github.com/Dan9191/ziptalk-calculator/internal/repository"
)

var (
	// ErrInvalidInput marks requests rejected by validation
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = repository.ErrNotFound
	// ErrInvalidCredentials is returned for any failed login
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const tokenTTL = 24 * time.Hour

// Store is the persistence the service depends on
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateScore(ctx context.Context, score *models.SubscriptionScore) error
	DeleteScoresBefore(ctx context.Context, before time.Time) (int64, error)
	UpsertApartment(ctx context.Context, apt *models.Apartment) error
	ListApartments(ctx context.Context) ([]*models.Apartment, error)
	GetApartment(ctx context.Context, id int64) (*models.Apartment, error)
	DeleteApartment(ctx context.Context, id int64) error
	CreateCompetitionUpload(ctx context.Context, apartments []*models.Apartment, entry *models.CompetitionData,
		encode func([]*models.Apartment) (json.RawMessage, error)) error
	ListCompetitionData(ctx context.Context) ([]*models.CompetitionData, error)
	DeleteCompetitionData(ctx context.Context, id int64) error
}

// Notifier delivers upload notifications
type Notifier interface {
	SendUploadNotification(to, fileName string, count int, avgRate float64) error
}

// FeedClient fetches competition results from an external source
type FeedClient interface {
	FetchCompetitionRates(ctx context.Context) ([]models.Apartment, error)
}

// Service handles business logic
type Service struct {
	repo     Store
	cache    cache.Cache
	notifier Notifier
	feed     FeedClient
	log      *logrus.Logger
	config   *config.Config
	now      func() time.Time
}

// NewService initializes a new service. notifier and feed may be nil when
// mail or the public-data feed are not configured.
func NewService(repo Store, c cache.Cache, notifier Notifier, feed FeedClient, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		repo:     repo,
		cache:    c,
		notifier: notifier,
		feed:     feed,
		log:      log,
		config:   cfg,
		now:      time.Now,
	}
}

// Login authenticates an administrator and returns a JWT token
func (s *Service) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	user, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.WithError(err).Error("Failed to look up user")
		}
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := s.now().Add(tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Username)
	return &models.LoginResponse{Token: tokenString, ExpiresAt: expiresAt}, nil
}

// EnsureAdmin creates the administrator account if it does not exist yet
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.repo.FindUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if password == "" {
		s.log.Warnf("ADMIN_PASSWORD is not set, admin user %s was not created", username)
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return err
	}

	s.log.Infof("Admin user created: %s", user.Username)
	return nil
}
