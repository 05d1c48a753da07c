package model

import "github.com/golang-jwt/jwt/v5"

// Claims are the JWT claims carried by every authenticated request.
// StudentID is set only for student-role tokens whose user links to a
// student record.
type Claims struct {
	UserID    string `json:"userId"`
	Role      Role   `json:"role"`
	Email     string `json:"email"`
	StudentID string `json:"studentId,omitempty"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
