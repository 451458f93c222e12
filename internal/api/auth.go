// ABOUTME: Registration and login calls
// ABOUTME: Login returns the bearer token and user; registration never creates a session

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/2389/gigboard/internal/model"
)

// LoginResult is the body of a successful POST /login.
type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. The caller must log in afterwards.
func (c *Client) Register(ctx context.Context, u model.NewUser) (*model.User, error) {
	var created model.User
	if err := c.do(ctx, http.MethodPost, "/register", u, &created, "user"); err != nil {
		return nil, err
	}
	return &created, nil
}

// Login exchanges credentials for a bearer token and the user record.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var res LoginResult
	if err := c.do(ctx, http.MethodPost, "/login", loginRequest{Email: email, Password: password}, &res, ""); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, &Error{Kind: KindServer, StatusCode: http.StatusOK, Method: http.MethodPost, Path: "/login",
			Err: errors.New("login response has no token")}
	}
	return &res, nil
}
