// ABOUTME: Profile read and update calls
// ABOUTME: Both use /profile/{id}; the update response wraps the record in "profile"

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/2389/gigboard/internal/model"
)

// GetProfile fetches a user's profile.
func (c *Client) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/profile/%d", userID), nil, &u, ""); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile replaces the editable profile fields and returns the updated record.
func (c *Client) UpdateProfile(ctx context.Context, userID int64, p model.ProfileUpdate) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/profile/%d", userID), p, &u, "profile"); err != nil {
		return nil, err
	}
	return &u, nil
}
