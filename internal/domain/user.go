package domain

// User is the profile returned by the backend for the current token.
type User struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	DateOfBirth string `json:"tanggal_lahir"`
	Biography   string `json:"biografi"`
}

// Credentials is the token pair returned by login and signup.
type Credentials struct {
	Token                 string `json:"token"`
	TokenExpiresAt        string `json:"token_expiration_time,omitempty"`
	RefreshToken          string `json:"refresh_token,omitempty"`
	RefreshTokenExpiresAt string `json:"refresh_token_expiration_time,omitempty"`
}

// Registration carries the signup form.
type Registration struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	DateOfBirth     string `json:"tanggal_lahir"`
	Biography       string `json:"biografi"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	DateOfBirth string `json:"tanggal_lahir"`
	Biography   string `json:"biografi"`
}
