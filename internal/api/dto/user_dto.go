package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AssigneesRequest filters the assignee list.
type AssigneesRequest struct {
	Limit      *FlexInt  `json:"limit"`
	OnlyActive *FlexBool `json:"only_active"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Login  string `json:"login"`
	Active bool   `json:"active"`
}

// UserListResponse wraps assignees.
type UserListResponse struct {
	Count   int            `json:"count"`
	Records []UserResponse `json:"records"`
}

// LoginResponse standard response for the login endpoint.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// NewUserResponse maps a user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Login: u.Login, Active: u.Active}
}

// NewUserListResponse maps users.
func NewUserListResponse(users []domain.User) UserListResponse {
	records := make([]UserResponse, 0, len(users))
	for i := range users {
		records = append(records, NewUserResponse(&users[i]))
	}
	return UserListResponse{Count: len(records), Records: records}
}
