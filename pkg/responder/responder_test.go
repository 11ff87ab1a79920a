/*
2019 © Postgres.ai
*/

package responder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/postgres-ai/memebot/pkg/imgflip"
	"gitlab.com/postgres-ai/memebot/pkg/models"
)

const testIconURL = "https://imgflip.com/imgflip_white_96.png"

type captionerMock struct {
	image *imgflip.CaptionedImage
	err   error

	mu       sync.Mutex
	requests []models.CaptionRequest
}

func (m *captionerMock) CaptionImage(_ context.Context, request models.CaptionRequest) (*imgflip.CaptionedImage, error) {
	m.mu.Lock()
	m.requests = append(m.requests, request)
	m.mu.Unlock()

	return m.image, m.err
}

type callbackRecorder struct {
	server  *httptest.Server
	status  int
	replies chan models.ReplyPayload
}

func newCallbackRecorder(t *testing.T, status int) *callbackRecorder {
	rec := &callbackRecorder{status: status, replies: make(chan models.ReplyPayload, 10)}

	rec.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reply models.ReplyPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reply))

		rec.replies <- reply

		w.WriteHeader(rec.status)
	}))
	t.Cleanup(rec.server.Close)

	return rec
}

func (rec *callbackRecorder) url(t *testing.T) *url.URL {
	u, err := url.Parse(rec.server.URL + "/hooks/commands/1234")
	require.NoError(t, err)

	return u
}

func TestBuildReply(t *testing.T) {
	r := NewResponder(nil, nil, testIconURL)

	success := r.BuildReply(&imgflip.CaptionedImage{
		URL:     "https://i.imgflip.com/123abc.jpg",
		PageURL: "https://imgflip.com/i/123abc",
	}, nil)

	assert.Equal(t, "https://i.imgflip.com/123abc.jpg", success.Text)
	assert.Equal(t, "in_channel", success.ResponseType)
	assert.Equal(t, "https://imgflip.com/i/123abc", success.GotoLocation)
	assert.Equal(t, testIconURL, success.IconURL)
	assert.True(t, success.SkipSlackParsing)

	apiFailure := r.BuildReply(nil, errors.Wrap(&imgflip.APIError{Message: "rate limited"}, "failed to caption"))

	assert.Equal(t, "Uhoh, something went wrong: rate limited", apiFailure.Text)
	assert.Equal(t, "ephemeral", apiFailure.ResponseType)
	assert.Empty(t, apiFailure.GotoLocation)
	assert.True(t, apiFailure.SkipSlackParsing)

	transportFailure := r.BuildReply(nil, errors.New("connection refused"))

	assert.Equal(t, "Uhoh, something went wrong", transportFailure.Text)
	assert.Equal(t, "ephemeral", transportFailure.ResponseType)
	assert.Empty(t, transportFailure.GotoLocation)

	assert.Equal(t, "Uhoh, something went wrong", r.BuildReply(nil, nil).Text)
}

func TestReplySuccess(t *testing.T) {
	captioner := &captionerMock{image: &imgflip.CaptionedImage{
		URL:     "https://i.imgflip.com/123abc.jpg",
		PageURL: "https://imgflip.com/i/123abc",
	}}
	rec := newCallbackRecorder(t, http.StatusOK)

	r := NewResponder(captioner, NewCallback(5*time.Second), testIconURL)
	r.Reply(context.Background(), Job{
		InvocationID: "test",
		Request:      models.CaptionRequest{TemplateID: "181913649", Boxes: []string{"top text", "bottom text"}},
		ResponseURL:  rec.url(t),
	})

	require.Len(t, captioner.requests, 1)
	assert.Equal(t, "181913649", captioner.requests[0].TemplateID)
	assert.Equal(t, []string{"top text", "bottom text"}, captioner.requests[0].Boxes)

	require.Len(t, rec.replies, 1)
	reply := <-rec.replies
	assert.Equal(t, "https://i.imgflip.com/123abc.jpg", reply.Text)
	assert.Equal(t, "in_channel", reply.ResponseType)
	assert.Equal(t, "https://imgflip.com/i/123abc", reply.GotoLocation)
}

func TestReplyAPIError(t *testing.T) {
	captioner := &captionerMock{err: &imgflip.APIError{Message: "rate limited"}}
	rec := newCallbackRecorder(t, http.StatusOK)

	r := NewResponder(captioner, NewCallback(5*time.Second), testIconURL)
	r.Reply(context.Background(), Job{InvocationID: "test", ResponseURL: rec.url(t)})

	require.Len(t, rec.replies, 1)
	reply := <-rec.replies
	assert.Equal(t, "Uhoh, something went wrong: rate limited", reply.Text)
	assert.Equal(t, "ephemeral", reply.ResponseType)
	assert.Empty(t, reply.GotoLocation)
}

func TestReplyCallbackRejected(t *testing.T) {
	captioner := &captionerMock{err: errors.New("timeout")}
	rec := newCallbackRecorder(t, http.StatusInternalServerError)

	r := NewResponder(captioner, NewCallback(5*time.Second), testIconURL)
	r.Reply(context.Background(), Job{InvocationID: "test", ResponseURL: rec.url(t)})

	// A single attempt, no retries.
	assert.Len(t, rec.replies, 1)
}

func TestDeliverConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	responseURL, err := url.Parse(server.URL)
	require.NoError(t, err)
	server.Close()

	err = NewCallback(time.Second).Deliver(context.Background(), responseURL, models.ReplyPayload{Text: "hi"})
	assert.Error(t, err)

	captioner := &captionerMock{image: &imgflip.CaptionedImage{URL: "https://i.imgflip.com/1.jpg"}}
	r := NewResponder(captioner, NewCallback(time.Second), testIconURL)

	assert.NotPanics(t, func() {
		r.Reply(context.Background(), Job{InvocationID: "test", ResponseURL: responseURL})
	})
}

func TestDeliverStatus(t *testing.T) {
	testCases := []struct {
		status int
		ok     bool
	}{
		{status: http.StatusOK, ok: true},
		{status: http.StatusNoContent, ok: true},
		{status: http.StatusMovedPermanently, ok: false},
		{status: http.StatusNotFound, ok: false},
		{status: http.StatusBadGateway, ok: false},
	}

	for _, tc := range testCases {
		rec := newCallbackRecorder(t, tc.status)

		err := NewCallback(time.Second).Deliver(context.Background(), rec.url(t), models.ReplyPayload{Text: "hi"})
		if tc.ok {
			assert.NoError(t, err, tc.status)
		} else {
			assert.Error(t, err, tc.status)
		}
	}

	assert.Error(t, NewCallback(time.Second).Deliver(context.Background(), nil, models.ReplyPayload{}))
}

func TestPoolRunsEveryJob(t *testing.T) {
	var handled int32

	pool := NewPool(2, func(_ context.Context, _ Job) {
		atomic.AddInt32(&handled, 1)
	})

	for i := 0; i < 10; i++ {
		pool.Submit(Job{InvocationID: "test"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, pool.Wait(ctx))
	assert.Equal(t, int32(10), atomic.LoadInt32(&handled))
}

func TestPoolLimitsInFlightJobs(t *testing.T) {
	var inFlight, maxInFlight int32

	release := make(chan struct{})

	pool := NewPool(2, func(_ context.Context, _ Job) {
		current := atomic.AddInt32(&inFlight, 1)

		for {
			seen := atomic.LoadInt32(&maxInFlight)
			if current <= seen || atomic.CompareAndSwapInt32(&maxInFlight, seen, current) {
				break
			}
		}

		<-release
		atomic.AddInt32(&inFlight, -1)
	})

	for i := 0; i < 6; i++ {
		pool.Submit(Job{InvocationID: "test"})
	}

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&inFlight) == 2
	}, time.Second, 10*time.Millisecond)

	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, pool.Wait(ctx))
	assert.Equal(t, int32(2), atomic.LoadInt32(&maxInFlight))
}

func TestPoolWaitTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	pool := NewPool(1, func(_ context.Context, _ Job) {
		<-release
	})

	pool.Submit(Job{InvocationID: "test"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.Error(t, pool.Wait(ctx))
}

func TestSubmitDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	pool := NewPool(1, func(_ context.Context, _ Job) {
		<-release
	})

	done := make(chan struct{})

	go func() {
		for i := 0; i < 5; i++ {
			pool.Submit(Job{InvocationID: "test"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked")
	}
}
