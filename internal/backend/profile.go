package backend

import (
	"context"
)

// ProfileResponse mirrors /user_data. Roadmap and Projects stay undecoded
// because their shape depends on the generator.
type ProfileResponse struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	SelectedRole   string `json:"selected_role"`
	Roadmap        any    `json:"roadmap_data"`
	Projects       any    `json:"projects"`
	SuggestedRoles any    `json:"suggested_roles"`
}

func (c *Client) FetchProfile(ctx context.Context) (*ProfileResponse, error) {
	const op = "fetch-profile"

	data, err := c.get(ctx, op, "/user_data")
	if err != nil {
		return nil, err
	}

	var resp ProfileResponse
	if err := decodeInto(op, data, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}
