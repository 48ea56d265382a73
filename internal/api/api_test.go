package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lobbysight/lobbysight/internal/api"
	"github.com/lobbysight/lobbysight/internal/api/request"
	"github.com/lobbysight/lobbysight/internal/api/response"
	"github.com/lobbysight/lobbysight/internal/dependencies/mocks"
	"github.com/lobbysight/lobbysight/internal/model"
	"github.com/lobbysight/lobbysight/internal/overlay"
	"github.com/lobbysight/lobbysight/internal/roster"
	"github.com/lobbysight/lobbysight/internal/services/denick"
	"github.com/lobbysight/lobbysight/internal/storage/memory"
	"github.com/lobbysight/lobbysight/internal/testutil"
)

const technoUUID = "b876ec32-e396-476b-a115-8438d83c67d4"

// offlineClient keeps API tests off the network; every remote lookup misses
type offlineClient struct{}

func (offlineClient) UUIDForName(ctx context.Context, name string) (model.PlayerUUID, error) {
	return "", model.ErrNotFound
}

func (offlineClient) Denick(ctx context.Context, nick string) (model.Identity, error) {
	return model.Identity{}, model.ErrNotFound
}

func (offlineClient) PlayerStats(ctx context.Context, uuid model.PlayerUUID) (model.StatsPayload, error) {
	return model.StatsPayload{}, model.ErrNotFound
}

// testServer bundles the router with the pieces tests poke at directly
type testServer struct {
	handler http.Handler
	state   *overlay.State
	tracker *roster.Tracker
	storage *memory.Storage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := testutil.NopLogger()
	clk := mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := memory.New()
	state := overlay.NewState()
	tracker := roster.New(logger)
	denickService := denick.New(store, offlineClient{}, clk, logger, denick.DefaultConfig())

	router := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		State:         state,
		Tracker:       tracker,
		DenickService: denickService,
		Storage:       store,
		Clock:         clk,
	})

	return &testServer{
		handler: router,
		state:   state,
		tracker: tracker,
		storage: store,
	}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetSnapshotEmpty(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodGet, "/api/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot response.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Zero(t, snapshot.Seq)
	assert.Empty(t, snapshot.Rows)
	assert.False(t, snapshot.OutOfSync)
}

func TestGetSnapshotWithRows(t *testing.T) {
	ts := newTestServer(t)

	payload := model.StatsPayload{Stars: 241, FinalKills: 1200, FinalDeaths: 400}
	ts.state.Publish(model.Snapshot{
		Seq: 3,
		Rows: []model.Row{
			{
				Identity: model.Identity{UUID: technoUUID, Username: "Technoblade"},
				Kind:     model.KindParty,
				Record: model.StatsRecord{
					Outcome: model.OutcomeKnown,
					Payload: &payload,
				},
			},
			{
				Identity: model.Identity{Username: "MysteryNick"},
				Kind:     model.KindLobby,
				Record:   model.NickedRecord(model.Identity{Username: "MysteryNick"}, time.Now()),
			},
		},
		OutOfSync: true,
	})

	rec := ts.request(http.MethodGet, "/api/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot response.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.EqualValues(t, 3, snapshot.Seq)
	assert.True(t, snapshot.OutOfSync)
	require.Len(t, snapshot.Rows, 2)

	assert.Equal(t, "Technoblade", snapshot.Rows[0].Username)
	assert.True(t, snapshot.Rows[0].InParty)
	assert.Equal(t, "known", snapshot.Rows[0].Outcome)
	require.NotNil(t, snapshot.Rows[0].Stats)
	assert.InDelta(t, 3.0, snapshot.Rows[0].Stats.FKDR, 0.001)

	assert.Equal(t, "MysteryNick", snapshot.Rows[1].Username)
	assert.False(t, snapshot.Rows[1].InParty)
	assert.Equal(t, "nicked", snapshot.Rows[1].Outcome)
	assert.Nil(t, snapshot.Rows[1].Stats)
}

func TestRosterReset(t *testing.T) {
	ts := newTestServer(t)

	ts.tracker.Apply(model.Event{
		Type:        model.EventLobbyJoin,
		Username:    "Zealous",
		PlayerCount: 1,
		PlayerCap:   16,
	})
	require.Len(t, ts.tracker.Members(), 1)

	rec := ts.request(http.MethodPost, "/api/roster/reset", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, ts.tracker.Members())
}

func TestRosterMarkOutOfSync(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodPost, "/api/roster/out-of-sync", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, ts.tracker.OutOfSync())
}

func TestAliasLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// Create
	rec := ts.request(http.MethodPut, "/api/aliases/Sneaky", request.PutAliasRequest{
		UUID: technoUUID,
		Note: "seen in ranked",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var entry response.AliasEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, "Sneaky", entry.Alias)
	assert.Equal(t, technoUUID, entry.UUID)

	// List
	rec = ts.request(http.MethodGet, "/api/aliases", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []response.AliasEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)

	// Get
	rec = ts.request(http.MethodGet, "/api/aliases/Sneaky", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Delete
	rec = ts.request(http.MethodDelete, "/api/aliases/Sneaky", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.request(http.MethodGet, "/api/aliases/Sneaky", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutAliasAcceptsUndashedUUID(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodPut, "/api/aliases/Sneaky", request.PutAliasRequest{
		UUID: "b876ec32e396476ba1158438d83c67d4",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var entry response.AliasEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, technoUUID, entry.UUID)
}

func TestPutAliasRejectsBadUUID(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodPut, "/api/aliases/Sneaky", request.PutAliasRequest{
		UUID: "not-a-uuid",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMissingAliasReturns404(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodGet, "/api/aliases/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "ALIAS_NOT_FOUND", errResp.Error.Code)
}

func TestResolveUsesAliasTable(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodPut, "/api/aliases/Sneaky", request.PutAliasRequest{
		UUID: technoUUID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(http.MethodGet, "/api/resolve/Sneaky", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Resolved bool   `json:"resolved"`
		UUID     string `json:"uuid"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Resolved)
	assert.Equal(t, technoUUID, res.UUID)
}

func TestResolveUnknownName(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodGet, "/api/resolve/MysteryNick", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Resolved bool `json:"resolved"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Resolved)
}
