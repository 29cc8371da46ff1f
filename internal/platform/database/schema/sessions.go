package schema

// SessionsTable represents the 'sessions' table
type SessionsTable struct {
	Table     string
	ID        string
	UserID    string
	TokenHash string
	UserAgent string
	IPAddress string
	ExpiresAt string
	IsRevoked string
	CreatedAt string
}

// Sessions is the schema definition for sessions
var Sessions = SessionsTable{
	Table:     "sessions",
	ID:        "id",
	UserID:    "user_id",
	TokenHash: "token_hash",
	UserAgent: "user_agent",
	IPAddress: "ip_address",
	ExpiresAt: "expires_at",
	IsRevoked: "is_revoked",
	CreatedAt: "created_at",
}
