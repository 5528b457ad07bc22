// Package backend is the HTTP transport for the coaching API.
package backend

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL         = "https://edubridge-lczi.onrender.com"
	userAgent      = "spigell/edubridge (spigelly@gmail.com)"
	defaultTimeout = 60 * time.Second
	// defaultPreviewLength bounds response bodies written to debug logs.
	defaultPreviewLength = 300
)

// TokenSource returns the current bearer credential. It is consulted on every
// request so that login and logout take effect without rebuilding the client.
type TokenSource func() string

type Client struct {
	tokens        TokenSource
	logger        *zap.Logger
	HTTPClient    *http.Client
	UserAgent     string
	APIURL        string
	PreviewLength int
}

func New(logger *zap.Logger, tokens TokenSource) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tokens == nil {
		tokens = func() string { return "" }
	}

	return &Client{
		tokens: tokens,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:        logger,
		UserAgent:     userAgent,
		PreviewLength: defaultPreviewLength,
	}
}
