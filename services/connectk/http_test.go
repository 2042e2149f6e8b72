package connectkservice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectk/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(HTTPHandler(New(logger.New()), logger.New()))
	t.Cleanup(srv.Close)
	return srv
}

func createGame(t *testing.T, srv *httptest.Server, body string) GameState {
	t.Helper()

	resp, err := http.Post(srv.URL+"/games", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var state GameState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	return state
}

func TestCreateGame(t *testing.T) {
	srv := newTestServer(t)

	state := createGame(t, srv, `{"width":7,"height":6,"win_length":4,"iterations":100,"seed":42}`)
	assert.NotEmpty(t, state.ID)
	assert.Equal(t, 7, state.Width)
	assert.Equal(t, "ongoing", state.Status)
	assert.Equal(t, 0, state.Ply)
	assert.Len(t, state.Grid, 6)
	assert.Len(t, state.Grid[0], 7)
}

func TestCreateGameBadConfig(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/games", "application/json",
		bytes.NewBufferString(`{"width":0,"height":6,"win_length":4,"iterations":100}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlayAndEngineMove(t *testing.T) {
	srv := newTestServer(t)
	state := createGame(t, srv, `{"width":7,"height":6,"win_length":4,"iterations":200,"seed":42}`)

	resp, err := http.Post(srv.URL+"/games/"+state.ID+"/moves", "application/json",
		bytes.NewBufferString(`{"column":3}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var after GameState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&after))
	assert.Equal(t, 1, after.Ply)
	assert.Equal(t, "O", after.Turn)

	resp2, err := http.Post(srv.URL+"/games/"+state.ID+"/engine-move", "application/json", nil)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	var reply EngineReply
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&reply))
	assert.Equal(t, 2, reply.State.Ply)
	assert.Equal(t, 200, reply.Search.Cycles)
	assert.Less(t, int(reply.Move), 7)
}

func TestPlayMoveInvalidColumn(t *testing.T) {
	srv := newTestServer(t)
	state := createGame(t, srv, `{"width":7,"height":6,"win_length":4,"iterations":100,"seed":1}`)

	resp, err := http.Post(srv.URL+"/games/"+state.ID+"/moves", "application/json",
		bytes.NewBufferString(`{"column":9}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEngineMoveOnFinishedGame(t *testing.T) {
	srv := newTestServer(t)
	state := createGame(t, srv, `{"width":7,"height":6,"win_length":4,"iterations":100,"seed":1}`)

	// Red stacks column 0 to a vertical win, yellow answers in column 1
	for _, col := range []int{0, 1, 0, 1, 0, 1, 0} {
		resp, err := http.Post(srv.URL+"/games/"+state.ID+"/moves", "application/json",
			bytes.NewBufferString(fmt.Sprintf(`{"column":%d}`, col)))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := http.Get(srv.URL + "/games/" + state.ID)
	require.NoError(t, err)
	var final GameState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&final))
	resp.Body.Close()
	assert.Equal(t, "red_won", final.Status)

	resp2, err := http.Post(srv.URL+"/games/"+state.ID+"/engine-move", "application/json", nil)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)
}

func TestGameNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/games/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteGame(t *testing.T) {
	srv := newTestServer(t)
	state := createGame(t, srv, `{"width":7,"height":6,"win_length":4,"iterations":100,"seed":1}`)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/games/"+state.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/games/" + state.ID)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}
