package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type User struct {
	ID        ID     `json:"id,omitempty"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// DisplayName prefers the full name and falls back to the email.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return AuthResult{}, fmt.Errorf("login: email and password required: %w", ErrValidationFailed)
	}
	return c.authenticate(ctx, "login", "/auth/login", loginRequest{Email: email, Password: password})
}

func (c *Client) Register(ctx context.Context, r RegisterRequest) (AuthResult, error) {
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	if r.Email == "" || r.Password == "" {
		return AuthResult{}, fmt.Errorf("register: email and password required: %w", ErrValidationFailed)
	}
	return c.authenticate(ctx, "register", "/auth/register", r)
}

func (c *Client) authenticate(ctx context.Context, op, path string, body any) (AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, op, http.MethodPost, path, nil, body, &res); err != nil {
		return AuthResult{}, err
	}
	if res.Token == "" {
		return AuthResult{}, fmt.Errorf("%s: response carried no token", op)
	}
	return res, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "logout", http.MethodPost, "/auth/logout", nil, nil, nil)
}
