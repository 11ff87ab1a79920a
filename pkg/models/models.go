/*
2019 © Postgres.ai
*/

// Package models provides the data shared between the webhook and the reply worker.
package models

import (
	"net/url"
)

// Invocation is a decoded slash command request.
type Invocation struct {
	ID          string
	ChannelID   string
	ChannelName string
	Command     string
	ResponseURL *url.URL
	TeamDomain  string
	TeamID      string
	Text        string
	Token       string
	TriggerID   string
	UserID      string
	UserName    string
}

// CaptionRequest defines a meme template and the texts of its caption boxes.
type CaptionRequest struct {
	TemplateID string
	Boxes      []string
}

// ReplyPayload is a message shown to a user, both as an immediate response and as a delayed one.
type ReplyPayload struct {
	Text             string `json:"text,omitempty"`
	ResponseType     string `json:"response_type,omitempty"`
	Username         string `json:"username,omitempty"`
	ChannelID        string `json:"channel_id,omitempty"`
	IconURL          string `json:"icon_url,omitempty"`
	GotoLocation     string `json:"goto_location,omitempty"`
	SkipSlackParsing bool   `json:"skip_slack_parsing,omitempty"`
}

// Audit describes an accepted invocation.
type Audit struct {
	ID         string `json:"id"`
	UserID     string `json:"userID"`
	UserName   string `json:"userName"`
	ChannelID  string `json:"channelID"`
	Command    string `json:"command"`
	TemplateID string `json:"templateID"`
}
