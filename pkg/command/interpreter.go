/*
2019 © Postgres.ai
*/

// Package command interprets the text of a meme slash command.
package command

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/nlopes/slack"

	"gitlab.com/postgres-ai/memebot/pkg/models"
)

// ExampleTemplateID is the template shown in the usage example.
const ExampleTemplateID = "181913649"

const usageTpl = "Usage: `%[1]s <id>⇧⏎<text>⇧⏎…`\n" +
	"Example:\n" +
	"```%[1]s " + ExampleTemplateID + "\n" +
	"making memes yourself\n" +
	"using a bot to make memes```"

// Result is an interpreted command: either a caption request or a usage reply.
type Result struct {
	Caption *models.CaptionRequest
	Usage   *models.ReplyPayload
}

// NeedsUsage reports whether the command has to be answered with the usage.
func (r Result) NeedsUsage() bool {
	return r.Usage != nil
}

// Interpreter parses command texts.
type Interpreter struct {
	IconURL string
}

// Interpret splits the invocation text into a template ID (the first line) and caption boxes (the rest).
func (i Interpreter) Interpret(inv models.Invocation) Result {
	lines := Lines(inv.Text)

	if len(lines) < 2 {
		usage := i.Usage(inv.Command)
		return Result{Usage: &usage}
	}

	return Result{
		Caption: &models.CaptionRequest{
			TemplateID: lines[0],
			Boxes:      lines[1:],
		},
	}
}

// Usage builds a usage reply for the slash command.
func (i Interpreter) Usage(slashCommand string) models.ReplyPayload {
	return models.ReplyPayload{
		Text:             fmt.Sprintf(usageTpl, slashCommand),
		ResponseType:     slack.ResponseTypeEphemeral,
		IconURL:          i.IconURL,
		SkipSlackParsing: true,
	}
}

// Lines splits a text into lines. A trailing line break does not start a new line
// and carriage returns before line breaks are dropped.
func Lines(text string) []string {
	lines := make([]string, 0)

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, len(text)+1), len(text)+1)

	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	return lines
}
