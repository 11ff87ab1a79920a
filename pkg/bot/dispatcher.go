/*
2019 © Postgres.ai
*/

package bot

import (
	"encoding/json"
	"net/http"

	"github.com/nlopes/slack"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"gitlab.com/postgres-ai/database-lab/pkg/log"

	"gitlab.com/postgres-ai/memebot/pkg/auth"
	"gitlab.com/postgres-ai/memebot/pkg/command"
	"gitlab.com/postgres-ai/memebot/pkg/models"
	"gitlab.com/postgres-ai/memebot/pkg/problem"
	"gitlab.com/postgres-ai/memebot/pkg/responder"
	"gitlab.com/postgres-ai/memebot/pkg/webhook"
)

// MsgWorkingOnIt acknowledges an accepted caption request.
const MsgWorkingOnIt = "working on it"

const maxBodySize = 1 << 20

// Scheduler runs delayed replies in the background.
type Scheduler interface {
	Submit(job responder.Job)
}

// Dispatcher handles slash command requests: it checks the token, acknowledges
// the invocation and schedules a delayed reply.
type Dispatcher struct {
	tokens       auth.TokenSet
	interpreter  command.Interpreter
	scheduler    Scheduler
	auditEnabled bool
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(tokens auth.TokenSet, interpreter command.Interpreter, scheduler Scheduler, auditEnabled bool) *Dispatcher {
	return &Dispatcher{
		tokens:       tokens,
		interpreter:  interpreter,
		scheduler:    scheduler,
		auditEnabled: auditEnabled,
	}
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	inv, err := d.accept(r)
	if err != nil {
		log.Dbg("Request rejected:", err)
		problem.Write(w, problem.FromError(err))

		return
	}

	inv.ID = xid.New().String()

	result := d.interpreter.Interpret(inv)
	if result.NeedsUsage() {
		log.Dbg("Invocation", inv.ID, "needs usage:", inv.Command)

		if err := writeReply(w, *result.Usage); err != nil {
			log.Err("Invocation", inv.ID, "failed to write usage:", err)
		}

		return
	}

	d.audit(inv, result.Caption)

	if err := writeReply(w, d.acknowledgement()); err != nil {
		log.Err("Invocation", inv.ID, "failed to write acknowledgement:", err)
	}

	// The acknowledgement is flushed, so the delayed reply cannot overtake it.
	d.scheduler.Submit(responder.Job{
		InvocationID: inv.ID,
		Request:      *result.Caption,
		ResponseURL:  inv.ResponseURL,
	})
}

func (d *Dispatcher) accept(r *http.Request) (models.Invocation, error) {
	credential, err := auth.ParseTokenHeader(r.Header.Get("Authorization"))
	if err != nil {
		return models.Invocation{}, webhook.NewError(webhook.KindMalformedHeader,
			"expected `Authorization: Token <token>`", err)
	}

	if !d.tokens.Authorize(credential) {
		return models.Invocation{}, webhook.NewError(webhook.KindInvalidToken, "token is not accepted", nil)
	}

	return webhook.DecodeInvocation(r)
}

func (d *Dispatcher) acknowledgement() models.ReplyPayload {
	return models.ReplyPayload{
		Text:             MsgWorkingOnIt,
		ResponseType:     slack.ResponseTypeEphemeral,
		IconURL:          d.interpreter.IconURL,
		SkipSlackParsing: true,
	}
}

func (d *Dispatcher) audit(inv models.Invocation, caption *models.CaptionRequest) {
	if !d.auditEnabled {
		return
	}

	record, err := json.Marshal(models.Audit{
		ID:         inv.ID,
		UserID:     inv.UserID,
		UserName:   inv.UserName,
		ChannelID:  inv.ChannelID,
		Command:    inv.Command,
		TemplateID: caption.TemplateID,
	})
	if err != nil {
		log.Err("Failed to marshal an audit record:", err)
		return
	}

	log.Audit(string(record))
}

func writeReply(w http.ResponseWriter, reply models.ReplyPayload) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(reply); err != nil {
		return errors.Wrap(err, "failed to encode a reply")
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	return nil
}
