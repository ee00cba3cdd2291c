package khojapi

import (
	"github.com/imroc/req/v3"
	"github.com/khoj-ai/khoj-sync/internal/version"
)

const (
	contentPath = "/api/content"

	// clientName identifies this client to the server on every exchange.
	clientName = "khoj-sync"
)

// Client talks to the Khoj content-ingestion API.
type Client struct {
	http *req.Client
}

// New creates a Client for the given server. When apiKey is non-empty it is
// attached as a bearer credential on every request.
func New(serverURL, apiKey string) *Client {
	c := req.C().
		SetBaseURL(serverURL).
		SetUserAgent(version.AppName + "/" + version.Version).
		SetCommonQueryParam("client", clientName)

	if apiKey != "" {
		c.SetCommonBearerAuthToken(apiKey)
	}

	return &Client{http: c}
}
