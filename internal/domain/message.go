package domain

// Message Model
type Message struct {
	ID        int    `json:"id"`         // Unique, allocated from the store counter
	UserID    int    `json:"userId"`     // Owning inbox; cascade-deleted with the owner
	Content   string `json:"content"`    // Non-empty trimmed text
	CreatedAt int64  `json:"created_at"` // Timestamp of creation in milliseconds
}
