package domain

// MaxMessages caps the store's message list; oldest entries past the cap are evicted on insert
const MaxMessages = 10000

// Store is the single persisted document holding all application state.
// JSON field names are the on-disk format and must not change.
type Store struct {
	NextUserID int            `json:"nextUserId"` // Next user id to allocate, monotonically increasing
	NextMsgID  int            `json:"nextMsgId"`  // Next message id to allocate, monotonically increasing
	Users      []User         `json:"users"`      // All accounts, insertion order
	Messages   []Message      `json:"messages"`   // All messages, most-recent-first, capped at MaxMessages
	Tokens     map[string]int `json:"tokens"`     // Legacy token -> user id map, kept for format compatibility
}

// NewStore returns an empty store with counters starting at 1
func NewStore() *Store {
	return &Store{
		NextUserID: 1,                // First user gets id 1
		NextMsgID:  1,                // First message gets id 1
		Users:      []User{},         // No accounts yet
		Messages:   []Message{},      // No messages yet
		Tokens:     map[string]int{}, // Empty legacy token map
	}
}
