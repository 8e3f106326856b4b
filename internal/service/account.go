// Package service implements the session-scoped account and message
// operations on top of the repository primitives.
package service

import (
	"errors"
	"fmt"
	"strings"

	"anonmsg/internal/domain"
	"anonmsg/internal/repository"
	"anonmsg/internal/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Input limits carried over from the historical API.
const (
	MaxUsernameLen = 32
	MaxPasswordLen = 128
	MaxContentLen  = 500
	MinPasswordLen = 6

	// DefaultMessageLimit caps one inbox page.
	DefaultMessageLimit = 500
)

// Profile is the account view returned to the owner. RewardsR is derived
// from the referral count at read time; RewardBalance is the persisted
// total of explicit credit events. The two are independent channels.
type Profile struct {
	Username      string `json:"username"`
	RecipientLink string `json:"recipientLink"`
	ReferralCode  string `json:"referralCode"`
	Referrals     int    `json:"referrals"`
	RewardsR      int    `json:"rewardsR"`
	RewardBalance int    `json:"rewardBalance"`
	Theme         string `json:"theme"`
	LinkActive    bool   `json:"linkActive"`
}

// AccountService composes repository primitives with credential checks
// and derived-value computation.
type AccountService struct {
	repo *repository.Repository
}

// NewAccountService returns a service over the given repository.
func NewAccountService(repo *repository.Repository) *AccountService {
	return &AccountService{repo: repo}
}

// RecipientLink renders the public send path for a recipient id.
func RecipientLink(recipientID string) string {
	return "/u/" + recipientID
}

// Signup creates an account and, when a referral code resolves, applies
// the referral as a second atomic step: the referrer's count goes up and
// both parties receive the signup bonus. Between the two steps the new
// account exists without its referral credit.
func (s *AccountService) Signup(username, password, ref string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}
	if len(username) > MaxUsernameLen || len(password) > MaxPasswordLen {
		return nil, ErrInputTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.repo.CreateUser(username, string(hash), utils.NewRecipientID())
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}
	if ref != "" {
		if err := s.repo.ApplyReferral(ref, user.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			// The account exists either way; the missed credit is the
			// only casualty of a failed referral write.
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,
				"ref":     ref,
				"error":   err.Error(),
			}).Warn("referral credit failed")
		}
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("account created")
	return user, nil
}

// Login verifies credentials. Unknown usernames and wrong passwords fail
// identically so usernames cannot be enumerated.
func (s *AccountService) Login(username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}
	user, err := s.repo.UserByUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// SendMessage posts anonymous content to a recipient link. The link's
// active flag does not gate sends; only an unknown link is rejected.
func (s *AccountService) SendMessage(recipientID, content string) (int, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || len(trimmed) > MaxContentLen {
		return 0, ErrInvalidContent
	}
	id, err := s.repo.AddMessageToRecipient(recipientID, trimmed)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, ErrRecipientNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListMessages returns the user's inbox, most recent first.
func (s *AccountService) ListMessages(userID, limit int) []domain.Message {
	if limit <= 0 || limit > DefaultMessageLimit {
		limit = DefaultMessageLimit
	}
	return s.repo.MessagesForUser(userID, limit)
}

// AccountInfo returns the profile with the derived reward total:
// 100 units per full ten referrals.
func (s *AccountService) AccountInfo(userID int) (*Profile, error) {
	user, err := s.repo.UserByID(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	return &Profile{
		Username:      user.Username,
		RecipientLink: RecipientLink(user.RecipientID),
		ReferralCode:  user.ReferralCode,
		Referrals:     user.Referrals,
		RewardsR:      user.Referrals / 10 * 100,
		RewardBalance: user.RewardBalance,
		Theme:         user.Theme,
		LinkActive:    user.LinkActive,
	}, nil
}

// UpdateTheme sets the account theme to dark or light.
func (s *AccountService) UpdateTheme(userID int, theme string) error {
	if !domain.ValidTheme(theme) {
		return ErrInvalidTheme
	}
	if err := s.repo.UpdateTheme(userID, theme); err != nil {
		return ErrNotFound
	}
	return nil
}

// ToggleLink marks the recipient link active or inactive.
func (s *AccountService) ToggleLink(userID int, active bool) error {
	if err := s.repo.ToggleLink(userID, active); err != nil {
		return ErrNotFound
	}
	return nil
}

// RegenerateLink issues a fresh recipient link id. The previous link
// stops resolving immediately.
func (s *AccountService) RegenerateLink(userID int) (string, error) {
	link, err := s.repo.RegenerateLink(userID)
	if err != nil {
		return "", ErrNotFound
	}
	return link, nil
}

// ChangePassword verifies the current password before storing a new
// hash. A failed check leaves the stored hash untouched.
func (s *AccountService) ChangePassword(userID int, current, next string) error {
	if current == "" || next == "" {
		return ErrMissingFields
	}
	if len(next) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	user, err := s.repo.UserByID(userID)
	if err != nil {
		return ErrNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(userID, string(hash))
}

// DeleteAccount verifies the password and removes the account together
// with all of its messages.
func (s *AccountService) DeleteAccount(userID int, password string) error {
	if password == "" {
		return ErrMissingFields
	}
	user, err := s.repo.UserByID(userID)
	if err != nil {
		return ErrNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrWrongPassword
	}
	if err := s.repo.DeleteUser(userID); err != nil {
		return err
	}
	logrus.WithField("user_id", userID).Info("account deleted")
	return nil
}
