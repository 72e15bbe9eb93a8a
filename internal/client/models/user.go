package models

// Role is the account kind that decides which dashboard a user lands on.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// User is the profile returned by the auth endpoints.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
	Phone     string `json:"phone,omitempty"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// DisplayName is "First Last" when known, else the username.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// Tokens is the credential pair minted by login/register.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AuthResponse is the body of a successful login or registration.
type AuthResponse struct {
	User   User   `json:"user"`
	Tokens Tokens `json:"tokens"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest carries the sign-up profile. Password2 is the confirmation
// the backend checks against Password.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
	Phone     string `json:"phone,omitempty"`
}

// ProfileUpdate is a partial profile; nil fields are left untouched.
type ProfileUpdate struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse carries a new access token and, when the backend rotates
// refresh tokens, a new refresh token.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Snapshot is the persisted part of the session.
type Snapshot struct {
	User *User `json:"user"`
}
