package connectkservice

import (
	"encoding/json"
	"errors"
	"net/http"

	"connectk/internal/logger"
	"connectk/pkg/connectk"
	"connectk/pkg/engine"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type httpHandler struct {
	svc *Service
}

// HTTPHandler builds the REST surface over the game service:
//
//	POST   /games             create a game
//	GET    /games/{gameID}    current state
//	DELETE /games/{gameID}    drop the game
//	POST   /games/{gameID}/moves        play a column
//	POST   /games/{gameID}/engine-move  let the engine reply
//	GET    /ws/search         live search statistics
func HTTPHandler(s *Service, log *logger.Logger) http.Handler {
	h := &httpHandler{svc: s}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.NewMiddleware(log))

	r.Post("/games", h.handleCreateGame)
	r.Get("/games/{gameID}", h.handleGetGame)
	r.Delete("/games/{gameID}", h.handleDeleteGame)
	r.Post("/games/{gameID}/moves", h.handlePlayMove)
	r.Post("/games/{gameID}/engine-move", h.handleEngineMove)

	r.Get("/ws/search", func(w http.ResponseWriter, r *http.Request) {
		ServeSearchWS(s.Hub(), w, r)
	})

	return r
}

type createGameRequest struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	WinLength   int     `json:"win_length"`
	Iterations  int     `json:"iterations"`
	MoveTimeMs  int     `json:"move_time_ms"`
	Exploration float64 `json:"exploration"`
	Seed        int64   `json:"seed"`
}

type moveRequest struct {
	Column int `json:"column"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *httpHandler) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	state, err := h.svc.CreateGame(r.Context(), engine.Config{
		Width:       req.Width,
		Height:      req.Height,
		WinLength:   req.WinLength,
		Iterations:  req.Iterations,
		MoveTime:    req.MoveTimeMs,
		Exploration: req.Exploration,
		Seed:        req.Seed,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, state)
}

func (h *httpHandler) handleGetGame(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.Game(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *httpHandler) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteGame(r.Context(), chi.URLParam(r, "gameID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *httpHandler) handlePlayMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Column < 0 || req.Column > 255 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "column out of range"})
		return
	}

	state, err := h.svc.PlayMove(r.Context(), chi.URLParam(r, "gameID"), connectk.Move(req.Column))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *httpHandler) handleEngineMove(w http.ResponseWriter, r *http.Request) {
	reply, err := h.svc.EngineMove(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// writeServiceError maps the domain error taxonomy to HTTP statuses:
// bad configuration and illegal moves are the client's fault, asking a
// finished game for a move is a conflict, unknown IDs are 404.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		notFound  *ErrGameNotFound
		cfgErr    *connectk.ConfigurationError
		moveErr   *connectk.InvalidMoveError
		noMoveErr *engine.NoMovesAvailableError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &cfgErr), errors.As(err, &moveErr):
		status = http.StatusBadRequest
	case errors.As(err, &noMoveErr):
		status = http.StatusConflict
	}

	writeError(w, status, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
