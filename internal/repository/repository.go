// Package repository exposes the primitive operations over the persisted
// store. Every mutation is one load→mutate→save cycle executed inside a
// process-wide writer lock, so mutations are applied atomically with
// respect to each other; reads share the reader lock and run against the
// latest persisted snapshot without blocking one another.
package repository

import (
	"errors"
	"sync"
	"time"

	"anonmsg/internal/db"
	"anonmsg/internal/domain"
	"anonmsg/internal/utils"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
var ErrAlreadyExists = errors.New("repository: already exists")

// ReferralReward is the bonus credited to both parties of a referral.
const ReferralReward = 10

// Repository owns the store codec and the single serialization point.
// Construct one per process and inject it; there are no ambient globals.
type Repository struct {
	codec *db.FileStore
	mu    sync.RWMutex
}

// New returns a repository over the given codec.
func New(codec *db.FileStore) *Repository {
	return &Repository{codec: codec}
}

// update runs fn as one load→mutate→save cycle under the writer lock.
// If fn returns an error nothing is persisted.
func (r *Repository) update(fn func(store *domain.Store) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	store := r.codec.Load()
	if err := fn(store); err != nil {
		return err
	}
	return r.codec.Save(store)
}

// view runs fn against the latest persisted snapshot under the reader lock.
func (r *Repository) view(fn func(store *domain.Store)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(r.codec.Load())
}

// CreateUser allocates the next user id and appends a new account with a
// fresh referral code, default theme and an active link. The username
// uniqueness check runs inside the same critical section as the insert,
// so two concurrent signups with the same name yield exactly one success.
func (r *Repository) CreateUser(username, passwordHash, recipientID string) (*domain.User, error) {
	var user domain.User
	err := r.update(func(store *domain.Store) error {
		for i := range store.Users {
			if store.Users[i].Username == username {
				return ErrAlreadyExists
			}
		}
		user = domain.User{
			ID:           store.NextUserID,
			Username:     username,
			PasswordHash: passwordHash,
			RecipientID:  recipientID,
			ReferralCode: utils.NewReferralCode(),
			Theme:        domain.ThemeDark,
			LinkActive:   true,
		}
		store.NextUserID++
		store.Users = append(store.Users, user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserByUsername finds an account by exact username.
func (r *Repository) UserByUsername(username string) (*domain.User, error) {
	return r.findUser(func(u *domain.User) bool { return u.Username == username })
}

// UserByID finds an account by id.
func (r *Repository) UserByID(id int) (*domain.User, error) {
	return r.findUser(func(u *domain.User) bool { return u.ID == id })
}

// UserByRecipient finds the account owning a recipient link id.
func (r *Repository) UserByRecipient(recipientID string) (*domain.User, error) {
	return r.findUser(func(u *domain.User) bool { return u.RecipientID == recipientID })
}

// UserByReferralCode finds the account owning a referral code.
func (r *Repository) UserByReferralCode(code string) (*domain.User, error) {
	return r.findUser(func(u *domain.User) bool { return u.ReferralCode == code })
}

func (r *Repository) findUser(match func(*domain.User) bool) (*domain.User, error) {
	var found *domain.User
	r.view(func(store *domain.Store) {
		for i := range store.Users {
			if match(&store.Users[i]) {
				u := store.Users[i]
				found = &u
				return
			}
		}
	})
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// IncrementReferralsForCode bumps the referral count of the account
// owning code by one.
func (r *Repository) IncrementReferralsForCode(code string) error {
	return r.update(func(store *domain.Store) error {
		for i := range store.Users {
			if store.Users[i].ReferralCode == code {
				store.Users[i].Referrals++
				return nil
			}
		}
		return ErrNotFound
	})
}

// ApplyReferral records a successful referred signup as one atomic store
// write: the referrer's count goes up by one and both the referrer and
// the new user are credited with ReferralReward bonus units.
func (r *Repository) ApplyReferral(code string, newUserID int) error {
	return r.update(func(store *domain.Store) error {
		referrer := -1
		for i := range store.Users {
			if store.Users[i].ReferralCode == code {
				referrer = i
				break
			}
		}
		if referrer == -1 {
			return ErrNotFound
		}
		store.Users[referrer].Referrals++
		store.Users[referrer].RewardBalance += ReferralReward
		for i := range store.Users {
			if store.Users[i].ID == newUserID {
				store.Users[i].RewardBalance += ReferralReward
				break
			}
		}
		return nil
	})
}

// AddMessageToRecipient resolves the recipient link and prepends a new
// message, evicting the oldest entries past the cap. An unknown link
// returns ErrNotFound without consuming a message id.
func (r *Repository) AddMessageToRecipient(recipientID, content string) (int, error) {
	var id int
	err := r.update(func(store *domain.Store) error {
		owner := -1
		for i := range store.Users {
			if store.Users[i].RecipientID == recipientID {
				owner = i
				break
			}
		}
		if owner == -1 {
			return ErrNotFound
		}
		id = store.NextMsgID
		store.NextMsgID++
		msg := domain.Message{
			ID:        id,
			UserID:    store.Users[owner].ID,
			Content:   content,
			CreatedAt: time.Now().UnixMilli(),
		}
		store.Messages = append([]domain.Message{msg}, store.Messages...)
		if len(store.Messages) > domain.MaxMessages {
			store.Messages = store.Messages[:domain.MaxMessages]
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// MessagesForUser returns the user's messages preserving store order
// (most recent first), truncated to limit when limit is positive.
func (r *Repository) MessagesForUser(userID, limit int) []domain.Message {
	msgs := []domain.Message{}
	r.view(func(store *domain.Store) {
		for _, m := range store.Messages {
			if m.UserID != userID {
				continue
			}
			msgs = append(msgs, m)
			if limit > 0 && len(msgs) == limit {
				return
			}
		}
	})
	return msgs
}

// UpdatePassword replaces the stored password hash.
func (r *Repository) UpdatePassword(userID int, newHash string) error {
	return r.mutateUser(userID, func(u *domain.User) { u.PasswordHash = newHash })
}

// UpdateTheme sets the account theme. Value validation is the caller's job.
func (r *Repository) UpdateTheme(userID int, theme string) error {
	return r.mutateUser(userID, func(u *domain.User) { u.Theme = theme })
}

// ToggleLink flips whether the recipient link is marked active.
func (r *Repository) ToggleLink(userID int, active bool) error {
	return r.mutateUser(userID, func(u *domain.User) { u.LinkActive = active })
}

// RegenerateLink replaces the recipient link id with a fresh random one.
// The old link stops resolving as soon as the write lands.
func (r *Repository) RegenerateLink(userID int) (string, error) {
	link := utils.NewRecipientID()
	if err := r.mutateUser(userID, func(u *domain.User) { u.RecipientID = link }); err != nil {
		return "", err
	}
	return link, nil
}

func (r *Repository) mutateUser(userID int, mutate func(*domain.User)) error {
	return r.update(func(store *domain.Store) error {
		for i := range store.Users {
			if store.Users[i].ID == userID {
				mutate(&store.Users[i])
				return nil
			}
		}
		return ErrNotFound
	})
}

// DeleteUser removes the account and cascades removal of all its
// messages, persisted as a single store write. Deleting an unknown id
// is a no-op.
func (r *Repository) DeleteUser(userID int) error {
	return r.update(func(store *domain.Store) error {
		users := store.Users[:0]
		for _, u := range store.Users {
			if u.ID != userID {
				users = append(users, u)
			}
		}
		store.Users = users
		msgs := store.Messages[:0]
		for _, m := range store.Messages {
			if m.UserID != userID {
				msgs = append(msgs, m)
			}
		}
		store.Messages = msgs
		return nil
	})
}

// SetToken records a legacy auth token for a user, both in the token map
// and on the user record, matching the historical document layout.
func (r *Repository) SetToken(token string, userID int) error {
	return r.update(func(store *domain.Store) error {
		store.Tokens[token] = userID
		for i := range store.Users {
			if store.Users[i].ID == userID {
				store.Users[i].Token = token
				break
			}
		}
		return nil
	})
}

// UserIDByToken resolves a legacy auth token to a user id.
func (r *Repository) UserIDByToken(token string) (int, error) {
	var (
		id int
		ok bool
	)
	r.view(func(store *domain.Store) {
		id, ok = store.Tokens[token]
	})
	if !ok {
		return 0, ErrNotFound
	}
	return id, nil
}

// EnsureTokenForUser returns the user's legacy token, minting and
// persisting one if the account has none yet.
func (r *Repository) EnsureTokenForUser(userID int) (string, error) {
	user, err := r.UserByID(userID)
	if err != nil {
		return "", err
	}
	if user.Token != "" {
		return user.Token, nil
	}
	token := utils.NewLegacyToken()
	if err := r.SetToken(token, userID); err != nil {
		return "", err
	}
	return token, nil
}
