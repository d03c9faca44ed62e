package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash; it is empty for accounts created
// through GitHub OAuth that never set a local password.
type User struct {
	ID        string
	Username  string
	Email     string
	Password  string
	GitHubID  int64 // 0 when no federated identity is linked
	CreatedAt time.Time
	UpdatedAt time.Time
}
