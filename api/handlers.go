package api

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wayfarerhq/wayfarer/pkg/engine"
	"github.com/wayfarerhq/wayfarer/pkg/eventstream"
	"github.com/wayfarerhq/wayfarer/pkg/graph"
)

// ChatRequest is the POST /chat request body.
type ChatRequest struct {
	Message     string            `json:"message"`
	UserProfile map[string]string `json:"user_profile,omitempty"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleChat runs one conversational turn, streaming events to the client
// as NDJSON: zero or more status lines followed by exactly one answer or
// error line (or a final status prompt when the run suspends on profile).
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "message is required"})
	}

	c.Set(fiber.HeaderContentType, "application/x-ndjson")

	// Use io.Pipe + SetBodyStream so each event line reaches the socket as
	// it is written; fasthttp's chunked writer flushes per chunk, giving
	// real backpressure instead of buffering the whole run.
	//
	// The run uses context.Background() because fasthttp recycles its
	// RequestCtx after the handler returns while the goroutine is still
	// streaming.
	pr, pw := io.Pipe()
	go s.runChat(context.Background(), req, pw)

	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// runChat executes the engine run, writing one JSON line per event.
func (s *Server) runChat(ctx context.Context, req ChatRequest, pw *io.PipeWriter) {
	defer pw.Close()

	encoder := json.NewEncoder(pw)
	emit := func(ev engine.Event) {
		// An encode failure means the client went away; the run finishes
		// regardless and the remaining events are dropped.
		if err := encoder.Encode(ev); err != nil {
			s.logger.Debug("client disconnected mid-stream", zap.Error(err))
		}
	}

	started := time.Now()
	final, result, err := s.engine.Run(ctx, req.Message, req.UserProfile, emit)
	if err != nil {
		s.logger.Warn("chat run aborted", zap.Error(err))
		return
	}

	if result.Kind == graph.Completed {
		s.publishAnswer(ctx, final, time.Since(started))
	}
}

// publishAnswer emits the answer event to the configured stream. Publish
// failures are logged, never surfaced to the client; the answer was already
// delivered.
func (s *Server) publishAnswer(ctx context.Context, final *engine.ConversationState, duration time.Duration) {
	if s.publisher == nil {
		return
	}

	event := eventstream.NewAnswerProducedEvent(final, duration)
	if err := s.publisher.PublishAnswer(ctx, event); err != nil {
		s.logger.Warn("failed to publish answer event",
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	}
}
