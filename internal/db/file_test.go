package db

import (
	"os"
	"path/filepath"
	"testing"

	"anonmsg/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return fs
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	fs := newTestStore(t)

	store := fs.Load()
	assert.Equal(t, 1, store.NextUserID)
	assert.Equal(t, 1, store.NextMsgID)
	assert.Empty(t, store.Users)
	assert.Empty(t, store.Messages)
	assert.Empty(t, store.Tokens)
}

func TestLoadCorruptFileStartsEmpty(t *testing.T) {
	fs := newTestStore(t)
	require.NoError(t, os.WriteFile(fs.Path(), []byte("{not json"), 0o600))

	store := fs.Load()
	assert.Equal(t, 1, store.NextUserID)
	assert.Empty(t, store.Users)
}

func TestLoadFillsMissingCollections(t *testing.T) {
	fs := newTestStore(t)
	// A document from before some fields existed
	require.NoError(t, os.WriteFile(fs.Path(), []byte(`{"nextUserId":3,"nextMsgId":7}`), 0o600))

	store := fs.Load()
	assert.Equal(t, 3, store.NextUserID)
	assert.Equal(t, 7, store.NextMsgID)
	assert.NotNil(t, store.Users)
	assert.NotNil(t, store.Messages)
	assert.NotNil(t, store.Tokens)
}

func TestSaveLoadRoundTripIsIdempotent(t *testing.T) {
	fs := newTestStore(t)
	store := domain.NewStore()
	store.NextUserID = 5
	store.NextMsgID = 12
	store.Users = append(store.Users, domain.User{
		ID: 4, Username: "alice", PasswordHash: "x", RecipientID: "abcdef012345",
		ReferralCode: "deadbeef", Referrals: 3, RewardBalance: 20,
		Theme: domain.ThemeLight, LinkActive: true, Token: "legacy",
	})
	store.Messages = append(store.Messages, domain.Message{ID: 11, UserID: 4, Content: "hi", CreatedAt: 1700000000000})
	store.Tokens["legacy"] = 4

	require.NoError(t, fs.Save(store))
	first, err := os.ReadFile(fs.Path())
	require.NoError(t, err)

	require.NoError(t, fs.Save(fs.Load()))
	second, err := os.ReadFile(fs.Path())
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestSavePersistedFieldNames(t *testing.T) {
	fs := newTestStore(t)
	store := domain.NewStore()
	store.Users = append(store.Users, domain.User{ID: 1, Username: "bob", PasswordHash: "h", RecipientID: "r", ReferralCode: "c", LinkActive: true, Theme: domain.ThemeDark})
	store.Messages = append(store.Messages, domain.Message{ID: 1, UserID: 1, Content: "hey", CreatedAt: 42})
	require.NoError(t, fs.Save(store))

	raw, err := os.ReadFile(fs.Path())
	require.NoError(t, err)
	// The on-disk layout is a compatibility contract
	for _, field := range []string{
		`"nextUserId"`, `"nextMsgId"`, `"users"`, `"messages"`, `"tokens"`,
		`"passwordHash"`, `"recipientId"`, `"referralCode"`, `"referrals"`,
		`"rewardBalance"`, `"theme"`, `"linkActive"`, `"userId"`, `"created_at"`,
	} {
		assert.Contains(t, string(raw), field)
	}
}

func TestSaveLeavesNoTempFileBehind(t *testing.T) {
	fs := newTestStore(t)
	require.NoError(t, fs.Save(domain.NewStore()))

	_, err := os.Stat(fs.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fs.Path())
	assert.NoError(t, err)
}

func TestNewFileStoreCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	fs, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, fs.Save(domain.NewStore()))

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}
