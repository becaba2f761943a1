// Package ussd drives one USSD session leg: it loads or creates the session,
// forwards the user's input to the chatbot, waits for the correlated reply and
// renders the gateway envelope. Every failure becomes an envelope.
package ussd

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ussd-bridge/internal/chatbot"
	"ussd-bridge/internal/correlation"
	"ussd-bridge/internal/logger"
	"ussd-bridge/internal/session"
)

type Sessions interface {
	Create(ctx context.Context, sessionID, msisdn string) (*session.Session, error)
	Get(ctx context.Context, sessionID string) (*session.Session, error)
	Update(ctx context.Context, sessionID string, p session.Patch) (*session.Session, error)
	End(ctx context.Context, sessionID string) (bool, error)
}

type Gateway interface {
	Send(ctx context.Context, sess *session.Session, text string) (*chatbot.Ack, error)
}

type Waiter interface {
	Wait(ctx context.Context, sessionID string) (string, error)
}

type StartRequest struct {
	SessionID string `json:"-"`
	MSISDN    string `json:"msisdn"`
	Text      string `json:"text"`
	ShortCode string `json:"shortCode"`
}

type ResponseRequest struct {
	SessionID string `json:"-"`
	MSISDN    string `json:"msisdn"`
	Text      string `json:"text"`
}

type EndRequest struct {
	SessionID string `json:"-"`
	ExitCode  *int   `json:"exitCode"`
	Reason    string `json:"reason"`
}

type Adapter struct {
	sessions  Sessions
	gateway   Gateway
	waiter    Waiter
	endMarker string
}

func NewAdapter(sessions Sessions, gateway Gateway, waiter Waiter, endMarker string) *Adapter {
	if endMarker == "" {
		endMarker = DefaultEndMarker
	}
	return &Adapter{
		sessions:  sessions,
		gateway:   gateway,
		waiter:    waiter,
		endMarker: endMarker,
	}
}

// Start opens a session and returns the chatbot's first reply.
func (a *Adapter) Start(ctx context.Context, req StartRequest) Result {
	logger.Info("ussd session started", map[string]any{
		"session_id": req.SessionID,
		"msisdn":     req.MSISDN,
		"short_code": req.ShortCode,
	})

	sess, err := a.sessions.Create(ctx, req.SessionID, req.MSISDN)
	if err != nil {
		return a.failure("start", req.SessionID, err)
	}

	text := req.Text
	if text == "" {
		text = "start"
	}

	return a.exchange(ctx, "start", sess, text)
}

// Respond forwards a follow-up input. It never recreates a missing session.
func (a *Adapter) Respond(ctx context.Context, req ResponseRequest) Result {
	logger.Info("ussd response received", map[string]any{
		"session_id": req.SessionID,
		"msisdn":     req.MSISDN,
	})

	sess, err := a.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return a.failure("response", req.SessionID, err)
	}
	if sess == nil {
		logger.Warn("session not found for response", map[string]any{
			"session_id": req.SessionID,
		})
		return notFound()
	}

	sess, err = a.sessions.Update(ctx, req.SessionID, session.Patch{})
	if err != nil {
		return a.failure("response", req.SessionID, err)
	}
	if sess == nil {
		return notFound()
	}

	return a.exchange(ctx, "response", sess, req.Text)
}

// End closes the session. Ending an unknown session still succeeds.
func (a *Adapter) End(ctx context.Context, req EndRequest) (int, EndReply) {
	fields := map[string]any{
		"session_id": req.SessionID,
		"reason":     req.Reason,
	}
	if req.ExitCode != nil {
		fields["exit_code"] = *req.ExitCode
	}
	logger.Info("ussd session ended", fields)

	if _, err := a.sessions.End(ctx, req.SessionID); err != nil {
		logger.Error("error in ussd end handler", map[string]any{
			"session_id": req.SessionID,
			"error":      err.Error(),
		})
		return http.StatusInternalServerError, EndReply{
			ResponseExitCode: http.StatusInternalServerError,
			ResponseMessage:  "Internal server error",
		}
	}

	return http.StatusOK, EndReply{ResponseExitCode: http.StatusOK}
}

func (a *Adapter) exchange(ctx context.Context, leg string, sess *session.Session, text string) Result {
	if _, err := a.gateway.Send(ctx, sess, text); err != nil {
		return a.failure(leg, sess.SessionID, err)
	}

	reply, err := a.waiter.Wait(ctx, sess.SessionID)
	switch {
	case errors.Is(err, correlation.ErrTimeout):
		logger.Warn("no chatbot response received in time", map[string]any{
			"session_id": sess.SessionID,
			"leg":        leg,
		})
		return timeout()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Warn("ussd request abandoned while waiting", map[string]any{
			"session_id": sess.SessionID,
			"leg":        leg,
		})
		return timeout()
	case err != nil:
		return a.failure(leg, sess.SessionID, err)
	}

	menu, closing := a.stripMarker(reply)
	if !closing {
		logger.Info("responding with chatbot response", map[string]any{
			"session_id": sess.SessionID,
			"leg":        leg,
		})
		return continueSession(menu)
	}

	logger.Info("chatbot requested end of session", map[string]any{
		"session_id": sess.SessionID,
		"leg":        leg,
	})
	if _, err := a.sessions.End(ctx, sess.SessionID); err != nil {
		// the user already has the final menu; the TTL removes the record
		logger.Error("failed to close session after end marker", map[string]any{
			"session_id": sess.SessionID,
			"error":      err.Error(),
		})
	}
	return endSession(menu)
}

// stripMarker removes the end marker and reports whether it was present.
func (a *Adapter) stripMarker(reply string) (string, bool) {
	if !strings.Contains(reply, a.endMarker) {
		return reply, false
	}
	return strings.TrimSpace(strings.ReplaceAll(reply, a.endMarker, "")), true
}

func (a *Adapter) failure(leg, sessionID string, err error) Result {
	fields := map[string]any{
		"session_id": sessionID,
		"leg":        leg,
		"error":      err.Error(),
	}

	var authErr *chatbot.AuthError
	switch {
	case chatbot.IsConfigError(err):
		logger.Error("chatbot configuration error", fields)
		return errorResult(MenuServiceUnavailable, err.Error())
	case errors.As(err, &authErr):
		fields["status"] = authErr.StatusCode
		logger.Error("chatbot platform rejected credentials", fields)
	default:
		logger.Error("error in ussd "+leg+" handler", fields)
	}

	return errorResult(MenuError, err.Error())
}
