package backend

import (
	"context"
)

const defaultTargetRole = "general"

type ResumeResponse struct {
	Summary        string
	SuggestedRoles any
}

// UploadResume sends a resume for analysis. An empty targetRole means "general".
func (c *Client) UploadResume(ctx context.Context, file File, targetRole, email string) (*ResumeResponse, error) {
	const op = "upload-resume"

	if targetRole == "" {
		targetRole = defaultTargetRole
	}

	data, err := c.postForm(ctx, op, "/upload_resume", form{
		fields: map[string]string{
			"target_role": targetRole,
			"email":       email,
		},
		file: &file,
	})
	if err != nil {
		return nil, err
	}

	var body struct {
		AIOutput       any `json:"ai_output"`
		SuggestedRoles any `json:"suggested_roles"`
	}
	if err := decodeInto(op, data, &body); err != nil {
		return nil, err
	}

	return &ResumeResponse{
		Summary:        summaryOf(body.AIOutput),
		SuggestedRoles: body.SuggestedRoles,
	}, nil
}

func summaryOf(output any) string {
	switch v := output.(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["ai_summary"].(string); ok {
			return s
		}
	}
	return ""
}
