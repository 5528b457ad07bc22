package backend

import (
	"context"
)

type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// StartInterview returns the question payload as decoded JSON, or the raw
// text when the body is not JSON.
func (c *Client) StartInterview(ctx context.Context) (any, error) {
	data, err := c.postJSON(ctx, "start-interview", "/start_interview", nil)
	if err != nil {
		return nil, err
	}

	return decodeAny(data), nil
}

func (c *Client) EvaluateInterview(ctx context.Context, pairs []QAPair) (any, error) {
	if pairs == nil {
		pairs = []QAPair{}
	}

	data, err := c.postJSON(ctx, "evaluate-interview", "/evaluate_interview", map[string]any{
		"qa_pairs": pairs,
	})
	if err != nil {
		return nil, err
	}

	return decodeAny(data), nil
}
