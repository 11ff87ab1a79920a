/*
2019 © Postgres.ai
*/

// Package responder provides the delayed replies to slash commands.
package responder

import (
	"context"
	"net/url"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/hako/durafmt"
	"github.com/nlopes/slack"
	"github.com/pkg/errors"
	"gitlab.com/postgres-ai/database-lab/pkg/log"

	"gitlab.com/postgres-ai/memebot/pkg/imgflip"
	"gitlab.com/postgres-ai/memebot/pkg/models"
)

// MsgFailed is the reply text when a meme cannot be generated.
const MsgFailed = "Uhoh, something went wrong"

// Job describes a delayed reply to an invocation.
type Job struct {
	InvocationID string
	Request      models.CaptionRequest
	ResponseURL  *url.URL
}

// Captioner generates memes.
type Captioner interface {
	CaptionImage(ctx context.Context, request models.CaptionRequest) (*imgflip.CaptionedImage, error)
}

// Responder generates a meme and posts the result to the response URL of an invocation.
type Responder struct {
	captioner Captioner
	callback  *Callback
	iconURL   string
}

// NewResponder creates a new Responder.
func NewResponder(captioner Captioner, callback *Callback, iconURL string) *Responder {
	return &Responder{
		captioner: captioner,
		callback:  callback,
		iconURL:   iconURL,
	}
}

// Reply runs the job. Failures are reported to the user when possible and logged otherwise.
func (r *Responder) Reply(ctx context.Context, job Job) {
	log.Dbg("Reply", job.InvocationID, "template", job.Request.TemplateID,
		"with", english.Plural(len(job.Request.Boxes), "caption box", "caption boxes"))

	start := time.Now()
	image, err := r.captioner.CaptionImage(ctx, job.Request)
	elapsed := durafmt.Parse(time.Since(start)).String()

	if err != nil {
		log.Err("Reply", job.InvocationID, "caption failed in", elapsed, err)
	} else {
		log.Dbg("Reply", job.InvocationID, "captioned in", elapsed)
	}

	reply := r.BuildReply(image, err)

	if err := r.callback.Deliver(ctx, job.ResponseURL, reply); err != nil {
		log.Err("Reply", job.InvocationID, "is not delivered:", err)
		return
	}

	log.Dbg("Reply", job.InvocationID, "delivered")
}

// BuildReply converts the result of a caption request to a reply.
func (r *Responder) BuildReply(image *imgflip.CaptionedImage, err error) models.ReplyPayload {
	reply := models.ReplyPayload{
		ResponseType:     slack.ResponseTypeEphemeral,
		IconURL:          r.iconURL,
		SkipSlackParsing: true,
	}

	var apiErr *imgflip.APIError

	switch {
	case err == nil && image != nil:
		reply.Text = image.URL
		reply.ResponseType = slack.ResponseTypeInChannel
		reply.GotoLocation = image.PageURL

	case errors.As(err, &apiErr):
		reply.Text = MsgFailed + ": " + apiErr.Message

	default:
		reply.Text = MsgFailed
	}

	return reply
}
