// Package schema centralizes table and column identifiers so that SQL built
// with fmt.Sprintf never drifts from the migrations.
package schema

// UsersTable represents the 'users' table
type UsersTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	IsVerified   string
	CreatedAt    string
	UpdatedAt    string
	DeletedAt    string
}

// Users is the schema definition for users
var Users = UsersTable{
	Table:        "users",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	PasswordHash: "password_hash",
	Role:         "role",
	IsVerified:   "is_verified",
	CreatedAt:    "created_at",
	UpdatedAt:    "updated_at",
	DeletedAt:    "deleted_at",
}
