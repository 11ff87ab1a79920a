/*
2019 © Postgres.ai
*/

// Package imgflip provides an imgflip.com API client.
package imgflip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/pkg/errors"
	"gitlab.com/postgres-ai/database-lab/pkg/log"

	"gitlab.com/postgres-ai/memebot/pkg/config"
	"gitlab.com/postgres-ai/memebot/pkg/models"
)

// APIError is returned when imgflip.com rejects a request.
type APIError struct {
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return "imgflip: " + e.Message
}

// CaptionedImage describes a generated meme.
type CaptionedImage struct {
	URL     string `json:"url"`
	PageURL string `json:"page_url"`
}

// Meme describes a meme template.
type Meme struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BoxCount int    `json:"box_count"`
}

// APIResponse represents common fields of an API response.
type APIResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message"`
}

// CaptionImageResponse represents a response of a caption request.
type CaptionImageResponse struct {
	APIResponse
	Data CaptionedImage `json:"data"`
}

// GetMemesResponse represents a response of a templates request.
type GetMemesResponse struct {
	APIResponse
	Data struct {
		Memes []Meme `json:"memes"`
	} `json:"data"`
}

// Client provides an imgflip.com API client. It is safe for concurrent use.
type Client struct {
	url      *url.URL
	username string
	password string
	client   *http.Client
}

// NewClient creates a new imgflip.com API client.
func NewClient(cfg config.Imgflip) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse an imgflip URL")
	}

	u.Path = strings.TrimRight(u.Path, "/")

	c := Client{
		url:      u,
		username: cfg.Username,
		password: cfg.Password,
		client: &http.Client{
			Transport: &http.Transport{},
			Timeout:   cfg.Timeout,
		},
	}

	return &c, nil
}

// CaptionImage makes an HTTP request to add captions to a meme template.
func (c *Client) CaptionImage(ctx context.Context, request models.CaptionRequest) (*CaptionedImage, error) {
	form := url.Values{}
	form.Set("template_id", request.TemplateID)
	form.Set("username", c.username)
	form.Set("password", c.password)

	for i, text := range request.Boxes {
		form.Set(fmt.Sprintf("boxes[%d][text]", i), text)
	}

	postURL := c.buildURL("/caption_image").String()

	r, err := http.NewRequest(http.MethodPost, postURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create a caption request")
	}

	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	respData := CaptionImageResponse{}

	if err := c.doRequest(ctx, r, newJSONParser(&respData)); err != nil {
		return nil, errors.Wrap(err, "failed to do request")
	}

	if !respData.Success {
		return nil, &APIError{Message: respData.ErrorMessage}
	}

	log.Dbg("Imgflip API: Image has been successfully captioned", respData.Data.URL)

	return &respData.Data, nil
}

// GetMemes makes an HTTP request to get the popular meme templates.
func (c *Client) GetMemes(ctx context.Context) ([]Meme, error) {
	r, err := http.NewRequest(http.MethodGet, c.buildURL("/get_memes").String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create a templates request")
	}

	respData := GetMemesResponse{}

	if err := c.doRequest(ctx, r, newJSONParser(&respData)); err != nil {
		return nil, errors.Wrap(err, "failed to do request")
	}

	if !respData.Success {
		return nil, &APIError{Message: respData.ErrorMessage}
	}

	return respData.Data.Memes, nil
}

func (c *Client) doRequest(ctx context.Context, request *http.Request, parser responseParser) error {
	request = request.WithContext(ctx)

	response, err := c.client.Do(request)
	if err != nil {
		return errors.Wrap(err, "failed to make a request")
	}

	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return errors.Errorf("unsuccessful status given: %d", response.StatusCode)
	}

	return parser(response)
}

// URL builds URL for a specific endpoint.
func (c *Client) buildURL(urlPath string) *url.URL {
	fullPath := path.Join(c.url.Path, urlPath)

	u := *c.url
	u.Path = fullPath

	return &u
}

type responseParser func(*http.Response) error

func newJSONParser(v interface{}) responseParser {
	return func(resp *http.Response) error {
		return json.NewDecoder(resp.Body).Decode(v)
	}
}
