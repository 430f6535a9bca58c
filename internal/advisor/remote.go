package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// maxResponseBytes caps how much of an advisory response is read.
const maxResponseBytes = 64 * 1024

// Remote delegates classification to an advisory endpoint. It makes a
// single attempt per call; retrying is left to the caller.
type Remote struct {
	url      string
	apiKey   string
	client   *http.Client
	validate *validator.Validate
}

// NewRemote creates a Remote advisor posting to url.
func NewRemote(url, apiKey string, timeout time.Duration) *Remote {
	return &Remote{
		url:      url,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
		validate: validator.New(),
	}
}

// Advise posts the request and returns the validated response. Transport
// errors, non-200 statuses and malformed bodies wrap ErrAdvisoryFailed.
func (r *Remote) Advise(ctx context.Context, req Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrAdvisoryFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrAdvisoryFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrAdvisoryFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrAdvisoryFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		log.WithFields(log.Fields{
			"status": resp.StatusCode,
			"url":    r.url,
		}).Warn("Advisory endpoint returned an error status")
		return nil, fmt.Errorf("%w: unexpected status %d", ErrAdvisoryFailed, resp.StatusCode)
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrAdvisoryFailed, err)
	}
	if err := r.validate.Struct(result); err != nil {
		return nil, fmt.Errorf("%w: invalid response: %v", ErrAdvisoryFailed, err)
	}

	return &result, nil
}
