package ussd

import "net/http"

const (
	MenuTimeout            = "We are experiencing technical issues. Please try again later."
	MenuError              = "Sorry, an error occurred. Please try again later."
	MenuServiceUnavailable = "Service is currently unavailable due to configuration issues. Please contact the service provider."
	MenuSessionExpired     = "Session expired. Please start again."
	MenuInvalidRequest     = "Invalid request. Please try again."

	DefaultEndMarker = "[END]"
)

// Envelope is the body the USSD gateway expects for start and response legs.
type Envelope struct {
	ShouldClose      bool   `json:"shouldClose"`
	USSDMenu         string `json:"ussdMenu"`
	ResponseExitCode int    `json:"responseExitCode"`
	ResponseMessage  string `json:"responseMessage"`
}

// EndReply is the body for the end leg.
type EndReply struct {
	ResponseExitCode int    `json:"responseExitCode"`
	ResponseMessage  string `json:"responseMessage"`
}

type Outcome string

const (
	OutcomeContinue Outcome = "CONTINUE"
	OutcomeEnd      Outcome = "END"
	OutcomeTimeout  Outcome = "TIMEOUT"
	OutcomeError    Outcome = "ERROR"
	OutcomeNotFound Outcome = "NOT_FOUND"
)

// Result is what one start or response leg produced.
type Result struct {
	Outcome  Outcome
	Status   int
	Envelope Envelope
}

func continueSession(text string) Result {
	return Result{
		Outcome:  OutcomeContinue,
		Status:   http.StatusOK,
		Envelope: Envelope{ShouldClose: false, USSDMenu: text, ResponseExitCode: http.StatusOK},
	}
}

func endSession(text string) Result {
	return Result{
		Outcome:  OutcomeEnd,
		Status:   http.StatusOK,
		Envelope: Envelope{ShouldClose: true, USSDMenu: text, ResponseExitCode: http.StatusOK},
	}
}

func timeout() Result {
	return Result{
		Outcome: OutcomeTimeout,
		Status:  http.StatusOK,
		Envelope: Envelope{
			ShouldClose:      true,
			USSDMenu:         MenuTimeout,
			ResponseExitCode: http.StatusOK,
			ResponseMessage:  "Response timeout",
		},
	}
}

func errorResult(menu, detail string) Result {
	return Result{
		Outcome:  OutcomeError,
		Status:   http.StatusInternalServerError,
		Envelope: ErrorEnvelope(menu, detail),
	}
}

func notFound() Result {
	return Result{
		Outcome: OutcomeNotFound,
		Status:  http.StatusNotFound,
		Envelope: Envelope{
			ShouldClose:      true,
			USSDMenu:         MenuSessionExpired,
			ResponseExitCode: http.StatusNotFound,
			ResponseMessage:  "Session not found",
		},
	}
}

// ErrorEnvelope closes the session with a 500 exit code.
func ErrorEnvelope(menu, detail string) Envelope {
	return Envelope{
		ShouldClose:      true,
		USSDMenu:         menu,
		ResponseExitCode: http.StatusInternalServerError,
		ResponseMessage:  detail,
	}
}

// InvalidRequestEnvelope answers USSD-shaped requests to unknown routes.
func InvalidRequestEnvelope() Envelope {
	return Envelope{
		ShouldClose:      true,
		USSDMenu:         MenuInvalidRequest,
		ResponseExitCode: http.StatusNotFound,
		ResponseMessage:  "Not found",
	}
}
