/*
2019 © Postgres.ai
*/

// Package webhook decodes and validates incoming slash command requests.
package webhook

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/nlopes/slack"

	"gitlab.com/postgres-ai/memebot/pkg/models"
)

// Form fields of a slash command request.
const (
	FieldChannelID   = "channel_id"
	FieldChannelName = "channel_name"
	FieldCommand     = "command"
	FieldResponseURL = "response_url"
	FieldTeamDomain  = "team_domain"
	FieldTeamID      = "team_id"
	FieldText        = "text"
	FieldToken       = "token"
	FieldTriggerID   = "trigger_id"
	FieldUserID      = "user_id"
	FieldUserName    = "user_name"
)

var requiredFields = []string{
	FieldChannelID,
	FieldChannelName,
	FieldCommand,
	FieldResponseURL,
	FieldTeamDomain,
	FieldTeamID,
	FieldText,
	FieldToken,
	FieldTriggerID,
	FieldUserID,
	FieldUserName,
}

// DecodeInvocation decodes a form-encoded slash command request.
func DecodeInvocation(r *http.Request) (models.Invocation, error) {
	if err := r.ParseForm(); err != nil {
		return models.Invocation{}, NewError(KindDecode, "failed to parse the form body", err)
	}

	for _, field := range requiredFields {
		if _, ok := r.PostForm[field]; !ok {
			return models.Invocation{}, NewError(KindDecode, fmt.Sprintf("missing field `%s`", field), nil)
		}
	}

	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		return models.Invocation{}, NewError(KindDecode, "failed to parse the slash command", err)
	}

	responseURL, err := parseResponseURL(cmd.ResponseURL)
	if err != nil {
		return models.Invocation{}, err
	}

	return models.Invocation{
		ChannelID:   cmd.ChannelID,
		ChannelName: cmd.ChannelName,
		Command:     cmd.Command,
		ResponseURL: responseURL,
		TeamDomain:  cmd.TeamDomain,
		TeamID:      cmd.TeamID,
		Text:        cmd.Text,
		Token:       cmd.Token,
		TriggerID:   cmd.TriggerID,
		UserID:      cmd.UserID,
		UserName:    cmd.UserName,
	}, nil
}

func parseResponseURL(rawURL string) (*url.URL, error) {
	detail := fmt.Sprintf("field `%s` is not a valid URL", FieldResponseURL)

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, NewError(KindDecode, detail, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, NewError(KindDecode, detail, nil)
	}

	return u, nil
}
