package dto

// LoginRequest authenticates a staff member.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserRequest creates or updates a staff account. Password is optional on
// update; an empty value keeps the stored digest.
type UserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserResponse is a staff account without credentials.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
