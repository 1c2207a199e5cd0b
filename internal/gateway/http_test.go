package gateway

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/DeafWorld/story-clash/config"
	"github.com/DeafWorld/story-clash/internal/game"
	"github.com/DeafWorld/story-clash/internal/story"
	"github.com/DeafWorld/story-clash/internal/types"
)

func newTestServer() (*Gateway, *chi.Mux) {
	cfg := config.DefaultConfig()
	rooms := game.NewRoomManager(cfg, game.NewMemoryStore(), story.NewCatalog(), nil, zap.NewNop())
	g := NewGateway(rooms, "http://localhost:8080", zap.NewNop())

	router := chi.NewRouter()
	g.Routes(router)
	return g, router
}

func postJSON(t *testing.T, router *chi.Mux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	assert.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateRoomEndpoint(t *testing.T) {
	_, router := newTestServer()

	rec := postJSON(t, router, "/api/rooms", map[string]string{"hostName": "Ana"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Room   *types.RoomView `json:"room"`
		Player *types.Player   `json:"player"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, game.ValidRoomCode(body.Room.Code))
	assert.Equal(t, "Ana", body.Player.Name)
	assert.True(t, body.Player.IsHost)
}

func TestJoinRoomEndpoint(t *testing.T) {
	_, router := newTestServer()

	rec := postJSON(t, router, "/api/rooms", map[string]string{"hostName": "Ana"})
	var created struct {
		Room *types.RoomView `json:"room"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = postJSON(t, router, "/api/rooms/"+created.Room.Code+"/join", map[string]string{"name": "Bruno"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var joined struct {
		Player *types.Player `json:"player"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &joined))
	assert.Equal(t, "Bruno", joined.Player.Name)
}

func TestGetRoomEndpointErrors(t *testing.T) {
	_, router := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/ZZZZ", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["code"])
}

func TestInviteQREndpoint(t *testing.T) {
	_, router := newTestServer()

	rec := postJSON(t, router, "/api/rooms", map[string]string{"hostName": "Ana"})
	var created struct {
		Room *types.RoomView `json:"room"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/"+created.Room.Code+"/invite.png", nil)
	qr := httptest.NewRecorder()
	router.ServeHTTP(qr, req)
	assert.Equal(t, http.StatusOK, qr.Code)
	assert.Equal(t, "image/png", qr.Header().Get("Content-Type"))
	assert.NotEmpty(t, qr.Body.Bytes())
}

func TestRecapEndpointBeforeEnding(t *testing.T) {
	_, router := newTestServer()

	rec := postJSON(t, router, "/api/rooms", map[string]string{"hostName": "Ana"})
	var created struct {
		Room *types.RoomView `json:"room"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/"+created.Room.Code+"/recap", nil)
	out := httptest.NewRecorder()
	router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusUnprocessableEntity, out.Code)
}

func TestHTTPStatusForKind(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, httpStatusForKind(game.ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, httpStatusForKind(game.ErrValidation))
	assert.Equal(t, http.StatusForbidden, httpStatusForKind(game.ErrForbidden))
	assert.Equal(t, http.StatusForbidden, httpStatusForKind(game.ErrNotYourTurn))
	assert.Equal(t, http.StatusConflict, httpStatusForKind(game.ErrBusy))
	assert.Equal(t, http.StatusUnprocessableEntity, httpStatusForKind(game.ErrInvalidState))
}

func TestDecodePayloadRejectsMalformedData(t *testing.T) {
	_, err := decodePayload[types.JoinRoomPayload](types.ClientEnvelope{Event: types.EventJoinRoom})
	assert.Error(t, err)
	assert.Equal(t, game.ErrValidation, game.KindOf(err))

	_, err = decodePayload[types.JoinRoomPayload](types.ClientEnvelope{
		Event: types.EventJoinRoom,
		Data:  json.RawMessage(`{"playerId":`),
	})
	assert.Error(t, err)

	payload, err := decodePayload[types.JoinRoomPayload](types.ClientEnvelope{
		Event: types.EventJoinRoom,
		Data:  json.RawMessage(`{"playerId":"p1"}`),
	})
	assert.NoError(t, err)
	assert.Equal(t, "p1", payload.PlayerID)
}
