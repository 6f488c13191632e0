package generate

import "studynotes/internal/domain/generate"

type generateInput struct {
	ID   string `path:"id" format:"uuid"`
	Kind string `path:"kind" enum:"summary,quiz,flashcards,mindmap"`
}

type generateOutput struct {
	Body *generate.Result
}

type ChatRequest struct {
	History []generate.Message `json:"history,omitempty" required:"false" maxItems:"50"`
	Message string             `json:"message" minLength:"1" maxLength:"4000"`
}

type chatInput struct {
	ID   string `path:"id" format:"uuid"`
	Body ChatRequest
}

type chatOutput struct {
	Body ChatResponse
}

type ChatResponse struct {
	Reply string `json:"reply"`
}
