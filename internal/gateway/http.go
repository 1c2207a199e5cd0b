package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/DeafWorld/story-clash/internal/game"
)

// Routes mounts the REST surface. The WebSocket endpoint lives alongside it
// so a single server handles both.
func (g *Gateway) Routes(r chi.Router) {
	r.Post("/api/rooms", g.handleCreateRoom)
	r.Post("/api/rooms/{code}/join", g.handleJoinRoomHTTP)
	r.Get("/api/rooms/{code}", g.handleGetRoom)
	r.Get("/api/rooms/{code}/recap", g.handleRecap)
	r.Get("/api/rooms/{code}/invite.png", g.handleInviteQR)
	r.Get("/ws", g.ServeWS)
}

type createRoomRequest struct {
	HostName string `json:"hostName"`
}

type joinRoomRequest struct {
	Name string `json:"name"`
}

func (g *Gateway) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.writeError(w, game.NewValidationError("malformed request body"))
		return
	}
	view, player, err := g.rooms.CreateRoom(req.HostName)
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusCreated, map[string]any{
		"room":   view,
		"player": player,
	})
}

func (g *Gateway) handleJoinRoomHTTP(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.writeError(w, game.NewValidationError("malformed request body"))
		return
	}
	view, player, err := g.rooms.JoinRoom(chi.URLParam(r, "code"), req.Name)
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, map[string]any{
		"room":   view,
		"player": player,
	})
}

func (g *Gateway) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	view, err := g.rooms.RoomView(chi.URLParam(r, "code"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, view)
}

func (g *Gateway) handleRecap(w http.ResponseWriter, r *http.Request) {
	recap, err := g.rooms.Recap(chi.URLParam(r, "code"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, recap)
}

// handleInviteQR renders the join link for a room as a QR code PNG.
func (g *Gateway) handleInviteQR(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if _, err := g.rooms.RoomView(code); err != nil {
		g.writeError(w, err)
		return
	}
	link := fmt.Sprintf("%s/join/%s", g.publicURL, code)
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		g.logger.Error("Failed to encode invite QR", zap.String("code", code), zap.Error(err))
		http.Error(w, "failed to render invite", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.logger.Warn("Failed to write response", zap.Error(err))
	}
}

func (g *Gateway) writeError(w http.ResponseWriter, err error) {
	kind := game.KindOf(err)
	g.writeJSON(w, httpStatusForKind(kind), map[string]string{
		"code":  string(kind),
		"error": err.Error(),
	})
}

func httpStatusForKind(kind game.ErrorKind) int {
	switch kind {
	case game.ErrNotFound:
		return http.StatusNotFound
	case game.ErrValidation:
		return http.StatusBadRequest
	case game.ErrForbidden, game.ErrNotYourTurn:
		return http.StatusForbidden
	case game.ErrBusy:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}
