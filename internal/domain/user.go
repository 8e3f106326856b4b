package domain

// Theme values
const (
	ThemeDark  = "dark"  // Default theme
	ThemeLight = "light" // Alternate theme
)

// User Model
type User struct {
	ID            int    `json:"id"`              // Unique, immutable
	Username      string `json:"username"`        // Unique, case-sensitive, immutable after creation
	PasswordHash  string `json:"passwordHash"`    // Bcrypt hash
	RecipientID   string `json:"recipientId"`     // Unique public inbox link id, mutable via regeneration
	ReferralCode  string `json:"referralCode"`    // Unique invite code, assigned at creation
	Referrals     int    `json:"referrals"`       // Count of successful referred signups
	RewardBalance int    `json:"rewardBalance"`   // Accumulated bonus units from referral credit events
	Theme         string `json:"theme"`           // dark or light
	LinkActive    bool   `json:"linkActive"`      // Owner toggle on the recipient link
	Token         string `json:"token,omitempty"` // Legacy auth token, kept for format compatibility
}

// ValidTheme reports whether theme is one of the supported values
func ValidTheme(theme string) bool {
	return theme == ThemeDark || theme == ThemeLight // Only two themes exist
}
