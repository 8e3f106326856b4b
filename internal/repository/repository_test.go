package repository

import (
	"fmt"
	"sync"
	"testing"

	"anonmsg/internal/db"
	"anonmsg/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*Repository, *db.FileStore) {
	t.Helper()
	codec, err := db.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return New(codec), codec
}

func TestCreateUserDefaults(t *testing.T) {
	repo, _ := newTestRepo(t)

	user, err := repo.CreateUser("alice", "hash", "recipient01ab")
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, domain.ThemeDark, user.Theme)
	assert.True(t, user.LinkActive)
	assert.Len(t, user.ReferralCode, 8)
	assert.Zero(t, user.Referrals)
	assert.Zero(t, user.RewardBalance)

	// Ids are allocated monotonically
	second, err := repo.CreateUser("bob", "hash", "recipient02cd")
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.CreateUser("alice", "hash", "r1")
	require.NoError(t, err)
	_, err = repo.CreateUser("alice", "hash", "r2")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCreateUserIsCaseSensitive(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.CreateUser("alice", "hash", "r1")
	require.NoError(t, err)
	_, err = repo.CreateUser("Alice", "hash", "r2")
	assert.NoError(t, err)
}

func TestConcurrentSignupsSameUsername(t *testing.T) {
	repo, _ := newTestRepo(t)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.CreateUser("alice", "hash", fmt.Sprintf("recipient%04d", i))
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyExists)
		}
	}
	assert.Equal(t, 1, successes)
}

func TestUserLookups(t *testing.T) {
	repo, _ := newTestRepo(t)
	user, err := repo.CreateUser("alice", "hash", "reclink01")
	require.NoError(t, err)

	byName, err := repo.UserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byID, err := repo.UserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byRecipient, err := repo.UserByRecipient("reclink01")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byRecipient.ID)

	byCode, err := repo.UserByReferralCode(user.ReferralCode)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byCode.ID)

	_, err = repo.UserByUsername("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.UserByID(99)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.UserByRecipient("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.UserByReferralCode("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddMessageUnknownRecipientKeepsCounter(t *testing.T) {
	repo, codec := newTestRepo(t)
	_, err := repo.CreateUser("alice", "hash", "reclink01")
	require.NoError(t, err)

	_, err = repo.AddMessageToRecipient("unknown", "hi")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, codec.Load().NextMsgID)

	id, err := repo.AddMessageToRecipient("reclink01", "hi")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	assert.Equal(t, 2, codec.Load().NextMsgID)
}

func TestMessagesAreMostRecentFirst(t *testing.T) {
	repo, _ := newTestRepo(t)
	user, err := repo.CreateUser("alice", "hash", "reclink01")
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		_, err := repo.AddMessageToRecipient("reclink01", fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	msgs := repo.MessagesForUser(user.ID, 0)
	require.Len(t, msgs, 3)
	assert.Equal(t, "msg 3", msgs[0].Content)
	assert.Equal(t, "msg 1", msgs[2].Content)

	limited := repo.MessagesForUser(user.ID, 2)
	require.Len(t, limited, 2)
	assert.Equal(t, "msg 3", limited[0].Content)
}

func TestMessagesForUserFiltersByOwner(t *testing.T) {
	repo, _ := newTestRepo(t)
	alice, err := repo.CreateUser("alice", "hash", "alicelink")
	require.NoError(t, err)
	bob, err := repo.CreateUser("bob", "hash", "boblink")
	require.NoError(t, err)

	_, err = repo.AddMessageToRecipient("alicelink", "for alice")
	require.NoError(t, err)
	_, err = repo.AddMessageToRecipient("boblink", "for bob")
	require.NoError(t, err)

	aliceMsgs := repo.MessagesForUser(alice.ID, 0)
	require.Len(t, aliceMsgs, 1)
	assert.Equal(t, "for alice", aliceMsgs[0].Content)

	bobMsgs := repo.MessagesForUser(bob.ID, 0)
	require.Len(t, bobMsgs, 1)
	assert.Equal(t, "for bob", bobMsgs[0].Content)
}

func TestMessageCapEvictsOldest(t *testing.T) {
	repo, codec := newTestRepo(t)
	user, err := repo.CreateUser("alice", "hash", "reclink01")
	require.NoError(t, err)

	// Seed a full store directly instead of 10,000 write cycles
	store := codec.Load()
	for i := domain.MaxMessages; i >= 1; i-- {
		store.Messages = append(store.Messages, domain.Message{ID: i, UserID: user.ID, Content: fmt.Sprintf("msg %d", i), CreatedAt: int64(i)})
	}
	store.NextMsgID = domain.MaxMessages + 1
	require.NoError(t, codec.Save(store))

	id, err := repo.AddMessageToRecipient("reclink01", "newest")
	require.NoError(t, err)
	assert.Equal(t, domain.MaxMessages+1, id)

	reloaded := codec.Load()
	require.Len(t, reloaded.Messages, domain.MaxMessages)
	assert.Equal(t, "newest", reloaded.Messages[0].Content)
	// The oldest entry (id 1) fell off the end
	assert.Equal(t, 2, reloaded.Messages[domain.MaxMessages-1].ID)

	msgs := repo.MessagesForUser(user.ID, 0)
	assert.LessOrEqual(t, len(msgs), domain.MaxMessages)
}

func TestApplyReferralCreditsBothParties(t *testing.T) {
	repo, codec := newTestRepo(t)
	referrer, err := repo.CreateUser("alice", "hash", "alicelink")
	require.NoError(t, err)
	invited, err := repo.CreateUser("bob", "hash", "boblink")
	require.NoError(t, err)

	require.NoError(t, repo.ApplyReferral(referrer.ReferralCode, invited.ID))

	gotReferrer, err := repo.UserByID(referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotReferrer.Referrals)
	assert.Equal(t, ReferralReward, gotReferrer.RewardBalance)

	gotInvited, err := repo.UserByID(invited.ID)
	require.NoError(t, err)
	assert.Zero(t, gotInvited.Referrals)
	assert.Equal(t, ReferralReward, gotInvited.RewardBalance)

	// The whole referral lands as one persisted write
	store := codec.Load()
	assert.Len(t, store.Users, 2)
}

func TestApplyReferralUnknownCode(t *testing.T) {
	repo, _ := newTestRepo(t)
	invited, err := repo.CreateUser("bob", "hash", "boblink")
	require.NoError(t, err)

	err = repo.ApplyReferral("missing", invited.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.UserByID(invited.ID)
	require.NoError(t, err)
	assert.Zero(t, got.RewardBalance)
}

func TestIncrementReferralsForCode(t *testing.T) {
	repo, _ := newTestRepo(t)
	user, err := repo.CreateUser("alice", "hash", "alicelink")
	require.NoError(t, err)

	require.NoError(t, repo.IncrementReferralsForCode(user.ReferralCode))
	require.NoError(t, repo.IncrementReferralsForCode(user.ReferralCode))

	got, err := repo.UserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Referrals)
	assert.Zero(t, got.RewardBalance)

	assert.ErrorIs(t, repo.IncrementReferralsForCode("missing"), ErrNotFound)
}

func TestSingleFieldUpdates(t *testing.T) {
	repo, _ := newTestRepo(t)
	user, err := repo.CreateUser("alice", "oldhash", "reclink01")
	require.NoError(t, err)

	require.NoError(t, repo.UpdatePassword(user.ID, "newhash"))
	require.NoError(t, repo.UpdateTheme(user.ID, domain.ThemeLight))
	require.NoError(t, repo.ToggleLink(user.ID, false))

	got, err := repo.UserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)
	assert.Equal(t, domain.ThemeLight, got.Theme)
	assert.False(t, got.LinkActive)

	assert.ErrorIs(t, repo.UpdatePassword(99, "h"), ErrNotFound)
	assert.ErrorIs(t, repo.UpdateTheme(99, domain.ThemeDark), ErrNotFound)
	assert.ErrorIs(t, repo.ToggleLink(99, true), ErrNotFound)
}

func TestRegenerateLinkRetiresOldLink(t *testing.T) {
	repo, _ := newTestRepo(t)
	user, err := repo.CreateUser("alice", "hash", "oldlink")
	require.NoError(t, err)

	link, err := repo.RegenerateLink(user.ID)
	require.NoError(t, err)
	assert.Len(t, link, 12)
	assert.NotEqual(t, "oldlink", link)

	// The old link stops resolving immediately
	_, err = repo.UserByRecipient("oldlink")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := repo.UserByRecipient(link)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.RegenerateLink(99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUserCascadesOnlyOwnMessages(t *testing.T) {
	repo, codec := newTestRepo(t)
	alice, err := repo.CreateUser("alice", "hash", "alicelink")
	require.NoError(t, err)
	bob, err := repo.CreateUser("bob", "hash", "boblink")
	require.NoError(t, err)

	_, err = repo.AddMessageToRecipient("alicelink", "one")
	require.NoError(t, err)
	_, err = repo.AddMessageToRecipient("alicelink", "two")
	require.NoError(t, err)
	_, err = repo.AddMessageToRecipient("boblink", "keep me")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteUser(alice.ID))

	_, err = repo.UserByID(alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, repo.MessagesForUser(alice.ID, 0))

	bobMsgs := repo.MessagesForUser(bob.ID, 0)
	require.Len(t, bobMsgs, 1)
	assert.Equal(t, "keep me", bobMsgs[0].Content)

	// User ids are never reused after deletion
	next, err := repo.CreateUser("carol", "hash", "carollink")
	require.NoError(t, err)
	assert.Equal(t, 3, next.ID)

	// Counters survive in the persisted document
	assert.Equal(t, 4, codec.Load().NextUserID)
}

func TestLegacyTokens(t *testing.T) {
	repo, codec := newTestRepo(t)
	user, err := repo.CreateUser("alice", "hash", "reclink01")
	require.NoError(t, err)

	token, err := repo.EnsureTokenForUser(user.ID)
	require.NoError(t, err)
	assert.Len(t, token, 48)

	// A second call reuses the stored token
	again, err := repo.EnsureTokenForUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	id, err := repo.UserIDByToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	_, err = repo.UserIDByToken("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.EnsureTokenForUser(99)
	assert.ErrorIs(t, err, ErrNotFound)

	// The token round-trips through the persisted document
	store := codec.Load()
	assert.Equal(t, user.ID, store.Tokens[token])
	assert.Equal(t, token, store.Users[0].Token)
}

func TestConcurrentFieldUpdatesAreNotLost(t *testing.T) {
	repo, _ := newTestRepo(t)
	alice, err := repo.CreateUser("alice", "hash", "alicelink")
	require.NoError(t, err)
	bob, err := repo.CreateUser("bob", "hash", "boblink")
	require.NoError(t, err)

	// Interleave theme updates and referral credits; the serialization
	// point must not let either overwrite the other.
	var wg sync.WaitGroup
	const rounds = 10
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.UpdateTheme(alice.ID, domain.ThemeLight))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.ApplyReferral(alice.ReferralCode, bob.ID))
		}()
	}
	wg.Wait()

	got, err := repo.UserByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeLight, got.Theme)
	assert.Equal(t, rounds, got.Referrals)
	assert.Equal(t, rounds*ReferralReward, got.RewardBalance)
}
