package handlers

import (
	"github.com/votely/votely/internal/auth"
	"github.com/votely/votely/internal/services"
	"github.com/votely/votely/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Voting  services.VotingServicer
	Results services.ResultsServicer
	Polls   services.PollServicer
	Auth    *auth.Auth
	Hub     *websocket.Hub
	Log     HTTPLogger
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	voting services.VotingServicer,
	results services.ResultsServicer,
	polls services.PollServicer,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
) *Handlers {
	return &Handlers{
		Voting:  voting,
		Results: results,
		Polls:   polls,
		Auth:    adminAuth,
		Hub:     hub,
		Log:     log,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance with a known admin password and
// no websocket hub (API endpoints under test do not need one)
func NewForTesting(
	voting services.VotingServicer,
	results services.ResultsServicer,
	polls services.PollServicer,
) *Handlers {
	return &Handlers{
		Voting:  voting,
		Results: results,
		Polls:   polls,
		Auth:    auth.New("test-password"),
		Log:     NoopHTTPLogger{},
	}
}
