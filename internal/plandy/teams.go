package plandy

import (
	"context"
	"fmt"
	"net/http"
)

// ListTeams fetches the teams the current user belongs to.
func (c *Client) ListTeams(ctx context.Context) ([]Team, error) {
	var teams []Team
	if err := c.do(ctx, http.MethodGet, "/teams", nil, nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// GetTeam fetches a single team including its member list.
func (c *Client) GetTeam(ctx context.Context, id int64) (*Team, error) {
	var team Team
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/teams/%d", id), nil, nil, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// CreateTeam creates a team owned by the current user.
func (c *Client) CreateTeam(ctx context.Context, name, description string) (*Team, error) {
	body := map[string]string{
		"name":        name,
		"description": description,
	}
	var team Team
	if err := c.do(ctx, http.MethodPost, "/teams", nil, body, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// UpdateTeam applies a partial update to a team.
func (c *Client) UpdateTeam(ctx context.Context, id int64, fields map[string]any) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/teams/%d", id), nil, fields, nil)
}

// DeleteTeam removes a team. Only owners may do this; anyone else gets a
// validation or status error from the backend.
func (c *Client) DeleteTeam(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/teams/%d", id), nil, nil, nil)
}

// JoinTeam joins a team via invite code and returns the joined team.
func (c *Client) JoinTeam(ctx context.Context, inviteCode string) (*Team, error) {
	body := map[string]string{"invite_code": inviteCode}
	var team Team
	if err := c.do(ctx, http.MethodPost, "/teams/join", nil, body, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// LeaveTeam removes the current user from a team.
func (c *Client) LeaveTeam(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/teams/%d/leave", id), nil, nil, nil)
}

// UpdateMemberRole changes a member's role (member/admin).
func (c *Client) UpdateMemberRole(ctx context.Context, teamID, userID int64, role string) error {
	body := map[string]string{"role": role}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/teams/%d/members/%d", teamID, userID), nil, body, nil)
}

// RemoveMember removes a member from a team.
func (c *Client) RemoveMember(ctx context.Context, teamID, userID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/teams/%d/members/%d", teamID, userID), nil, nil, nil)
}
