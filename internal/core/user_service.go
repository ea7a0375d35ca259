package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/decorly/decorly-backend/internal/db"
	"github.com/decorly/decorly-backend/internal/models"
)

// Custom errors for the UserService.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInsufficientCoins  = errors.New("not enough ad coins")
)

// One rewarded-ad view earns one coin; one unlock spends one coin. Coins are
// only ever moved in these discrete unit amounts.
const (
	adRewardCoins = 1
	adUnlockCost  = 1
)

// userService implements the UserService interface.
type userService struct {
	userRepo  db.UserRepository
	projector StatusProjector
	logger    *zap.Logger
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository, projector StatusProjector, logger *zap.Logger) UserService {
	return &userService{
		userRepo:  userRepo,
		projector: projector,
		logger:    logger,
	}
}

// Signup registers a new account with a bcrypt-hashed credential.
func (s *userService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmailTaken, email)
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email '%s': %w", email, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		Email:        email,
		FullName:     req.FullName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and returns the account. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *userService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s': %w", userID, err)
	}
	return user, nil
}

// Profile returns the account together with its freshly projected
// subscription status.
func (s *userService) Profile(ctx context.Context, userID string) (*models.User, *SubscriptionStatus, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	status, err := s.projector.Status(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to project subscription status for user '%s': %w", userID, err)
	}
	user.IsSubscribed = status.IsSubscribed

	return user, status, nil
}

// GrantAdReward credits the user for a completed rewarded-ad view.
func (s *userService) GrantAdReward(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.AdCoins += adRewardCoins
	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to credit ad coins for user '%s': %w", userID, err)
	}

	s.logger.Info("ad reward credited", zap.String("userID", userID), zap.Int("adCoins", user.AdCoins))
	return user, nil
}

// SpendAdCoin debits one unlock from the user's coin balance. The balance
// never goes below zero; an empty balance is a business-rule rejection, not a
// failure.
func (s *userService) SpendAdCoin(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.AdCoins < adUnlockCost {
		return nil, fmt.Errorf("%w: user '%s' has %d", ErrInsufficientCoins, userID, user.AdCoins)
	}

	user.AdCoins -= adUnlockCost
	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to debit ad coins for user '%s': %w", userID, err)
	}
	return user, nil
}

// SetPremium flips the administrator-granted premium flag.
func (s *userService) SetPremium(ctx context.Context, userID string, premium bool) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.IsPremium = premium
	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to set premium flag for user '%s': %w", userID, err)
	}

	s.logger.Info("premium flag updated", zap.String("userID", userID), zap.Bool("isPremium", premium))
	return user, nil
}
