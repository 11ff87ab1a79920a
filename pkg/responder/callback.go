/*
2019 © Postgres.ai
*/

package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"gitlab.com/postgres-ai/memebot/pkg/models"
)

// Callback posts replies to response URLs.
type Callback struct {
	client *http.Client
}

// NewCallback creates a new Callback.
func NewCallback(timeout time.Duration) *Callback {
	return &Callback{
		client: &http.Client{Timeout: timeout},
	}
}

// Deliver posts the reply to the response URL. It makes a single attempt.
func (c *Callback) Deliver(ctx context.Context, responseURL *url.URL, reply models.ReplyPayload) error {
	if responseURL == nil {
		return errors.New("response URL is not defined")
	}

	body, err := json.Marshal(reply)
	if err != nil {
		return errors.Wrap(err, "failed to marshal a reply")
	}

	r, err := http.NewRequest(http.MethodPost, responseURL.String(), bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create a callback request")
	}

	r.Header.Set("Content-Type", "application/json")

	response, err := c.client.Do(r.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "failed to make a request")
	}

	defer func() { _ = response.Body.Close() }()

	// Drain the body to reuse the connection.
	_, _ = io.Copy(io.Discard, response.Body)

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("unsuccessful status given: %d", response.StatusCode)
	}

	return nil
}
