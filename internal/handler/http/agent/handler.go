package agent

import (
	"context"
	"net/http"
)

// Handler decodes a JSON request, runs one agent operation and writes the
// result in an Envelope.
type Handler[Req, Res any] struct {
	Name string
	Run  func(ctx context.Context, req Req) (Res, error)
}

func (h Handler[Req, Res]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Req
	if err := decode(r, &req); err != nil {
		writeFailure(w, r, h.Name, err)
		return
	}

	res, err := h.Run(r.Context(), req)
	if err != nil {
		writeFailure(w, r, h.Name, err)
		return
	}
	writeSuccess(w, h.Name, res)
}

// QueryHandler runs an agent operation that takes no input.
type QueryHandler[Res any] struct {
	Name string
	Run  func(ctx context.Context) (Res, error)
}

func (h QueryHandler[Res]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res, err := h.Run(r.Context())
	if err != nil {
		writeFailure(w, r, h.Name, err)
		return
	}
	writeSuccess(w, h.Name, res)
}
