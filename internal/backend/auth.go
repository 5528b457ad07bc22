package backend

import (
	"context"
)

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	// Resume is optional.
	Resume *File
}

// AuthResponse is the union of the registration and login answers.
// SuggestedRoles is left undecoded for the normalizer.
type AuthResponse struct {
	Token          string `json:"token"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	SelectedRole   string `json:"selected_role"`
	SuggestedRoles any    `json:"suggested_roles"`
	Message        string `json:"message"`
}

func (c *Client) Register(ctx context.Context, r RegisterRequest) (*AuthResponse, error) {
	const op = "register"

	data, err := c.postForm(ctx, op, "/register_with_resume", form{
		fields: map[string]string{
			"name":     r.Name,
			"email":    r.Email,
			"password": r.Password,
		},
		file: r.Resume,
	})
	if err != nil {
		return nil, err
	}

	var resp AuthResponse
	if err := decodeInto(op, data, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	const op = "login"

	data, err := c.postForm(ctx, op, "/login", form{
		fields: map[string]string{
			"email":    email,
			"password": password,
		},
	})
	if err != nil {
		return nil, err
	}

	var resp AuthResponse
	if err := decodeInto(op, data, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// SelectRole records the target role on the server.
func (c *Client) SelectRole(ctx context.Context, role string) error {
	_, err := c.postForm(ctx, "select-role", "/select_role", form{
		fields: map[string]string{"role": role},
	})
	return err
}
