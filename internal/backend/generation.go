package backend

import (
	"context"
)

// GenerateRoadmap asks the server to build a learning roadmap for role.
// The result is read back through FetchProfile.
func (c *Client) GenerateRoadmap(ctx context.Context, role string) error {
	_, err := c.postForm(ctx, "generate-roadmap", "/roadmap", form{
		fields: map[string]string{"target_role": role},
	})
	return err
}

func (c *Client) GenerateProjects(ctx context.Context, role string) error {
	_, err := c.postForm(ctx, "generate-projects", "/projects", form{
		fields: map[string]string{"role": role},
	})
	return err
}
