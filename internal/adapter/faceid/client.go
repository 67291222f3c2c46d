// Package faceid talks to the face recognition service over HTTP.
package faceid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Compile-time check: Client implements domain.FaceMatcher.
var _ domain.FaceMatcher = (*Client)(nil)

const statusSuccess = "success"

type extractResponse struct {
	Status   string          `json:"status"`
	Encoding json.RawMessage `json:"encoding"`
	Message  string          `json:"message"`
}

type knownEncoding struct {
	ID       string          `json:"id"`
	Encoding json.RawMessage `json:"encoding"`
}

type verifyResponse struct {
	Status string `json:"status"`
	UserID string `json:"userId"`
}

// Client is the face recognition service client. Descriptors are kept as
// the service's JSON encoding and passed back verbatim.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: client, logger: logger}
}

// ExtractFeatures returns the face encoding found in image.
func (c *Client) ExtractFeatures(ctx context.Context, filename string, image []byte) ([]byte, error) {
	var out extractResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(image)).
		SetResult(&out).
		Post("/extract-features")
	if err != nil {
		return nil, unavailable("extract-features", err)
	}
	if resp.IsError() {
		return nil, unavailable("extract-features", fmt.Errorf("status %d", resp.StatusCode()))
	}

	if out.Status != statusSuccess || len(out.Encoding) == 0 || string(out.Encoding) == "null" {
		c.logger.Info("no face found in image", zap.String("filename", filename), zap.String("detail", out.Message))
		return nil, &domain.InvalidInputError{Field: "file", Reason: "no face found in image"}
	}
	return out.Encoding, nil
}

// Match asks the service which candidate, if any, the face in image belongs to.
func (c *Client) Match(ctx context.Context, filename string, image []byte, candidates []domain.FaceCandidate) (domain.FaceMatch, error) {
	known := make([]knownEncoding, 0, len(candidates))
	for _, cand := range candidates {
		known = append(known, knownEncoding{ID: cand.UserID, Encoding: cand.Descriptor})
	}
	payload, err := json.Marshal(known)
	if err != nil {
		return domain.FaceMatch{}, fmt.Errorf("encoding known faces: %w", err)
	}

	var out verifyResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(image)).
		SetFormData(map[string]string{"known_encodings": string(payload)}).
		SetResult(&out).
		Post("/verify")
	if err != nil {
		return domain.FaceMatch{}, unavailable("verify", err)
	}
	if resp.IsError() {
		return domain.FaceMatch{}, unavailable("verify", fmt.Errorf("status %d", resp.StatusCode()))
	}

	c.logger.Debug("face verification answered",
		zap.String("status", out.Status),
		zap.Int("candidates", len(candidates)),
	)
	if out.Status != statusSuccess || out.UserID == "" {
		return domain.FaceMatch{}, nil
	}
	return domain.FaceMatch{Matched: true, UserID: out.UserID}, nil
}

func unavailable(endpoint string, err error) error {
	return &domain.TransientError{Err: fmt.Errorf("face service %s: %w", endpoint, err)}
}
