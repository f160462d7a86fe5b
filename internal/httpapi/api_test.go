package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moonhowl/werewolfd/internal/config"
	"github.com/moonhowl/werewolfd/internal/game/action"
	"github.com/moonhowl/werewolfd/internal/game/engine"
	"github.com/moonhowl/werewolfd/internal/game/role"
	"github.com/moonhowl/werewolfd/internal/game/room"
	"github.com/moonhowl/werewolfd/internal/game/seat"
)

// fakeDB backs the API tests with in-memory stores.
type fakeDB struct {
	rooms    map[string]room.Room
	members  map[string][]room.Member
	settings map[string]role.Settings
	seats    map[string][]seat.Seat
	actions  map[string][]action.GameAction
	nextID   int64
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		rooms:    make(map[string]room.Room),
		members:  make(map[string][]room.Member),
		settings: make(map[string]role.Settings),
		seats:    make(map[string][]seat.Seat),
		actions:  make(map[string][]action.GameAction),
		nextID:   1,
	}
}

func (db *fakeDB) id() int64 {
	id := db.nextID
	db.nextID++
	return id
}

type fakeRooms struct{ db *fakeDB }

func (f fakeRooms) Get(_ context.Context, id string) (room.Room, error) {
	r, ok := f.db.rooms[id]
	if !ok {
		return room.Room{}, room.ErrRoomNotFound
	}
	return r, nil
}

func (f fakeRooms) Create(_ context.Context, r room.Room) error {
	f.db.rooms[r.ID] = r
	return nil
}

func (f fakeRooms) Update(_ context.Context, r room.Room) error {
	if _, ok := f.db.rooms[r.ID]; !ok {
		return room.ErrRoomNotFound
	}
	f.db.rooms[r.ID] = r
	return nil
}

func (f fakeRooms) Exists(_ context.Context, id string) (bool, error) {
	_, ok := f.db.rooms[id]
	return ok, nil
}

type fakeMembers struct{ db *fakeDB }

func (f fakeMembers) Members(_ context.Context, roomID string) ([]room.Member, error) {
	return append([]room.Member(nil), f.db.members[roomID]...), nil
}

func (f fakeMembers) Member(_ context.Context, roomID string, playerID uuid.UUID) (room.Member, error) {
	for _, m := range f.db.members[roomID] {
		if m.PlayerID == playerID {
			return m, nil
		}
	}
	return room.Member{}, room.ErrMemberNotFound
}

func (f fakeMembers) Add(_ context.Context, m room.Member) error {
	m.ID = f.db.id()
	f.db.members[m.RoomID] = append(f.db.members[m.RoomID], m)
	return nil
}

func (f fakeMembers) Update(_ context.Context, m room.Member) error {
	for i, cur := range f.db.members[m.RoomID] {
		if cur.PlayerID == m.PlayerID {
			f.db.members[m.RoomID][i] = m
			return nil
		}
	}
	return room.ErrMemberNotFound
}

func (f fakeMembers) Remove(_ context.Context, roomID string, playerID uuid.UUID) error {
	list := f.db.members[roomID]
	for i, cur := range list {
		if cur.PlayerID == playerID {
			f.db.members[roomID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeSettings struct{ db *fakeDB }

func (f fakeSettings) Get(_ context.Context, roomID string) (role.Settings, error) {
	cfg, ok := f.db.settings[roomID]
	if !ok {
		return role.Settings{}, room.ErrRoomNotFound
	}
	return cfg, nil
}

func (f fakeSettings) Save(_ context.Context, cfg role.Settings) error {
	f.db.settings[cfg.RoomID] = cfg
	return nil
}

type fakeSeats struct{ db *fakeDB }

func (f fakeSeats) Roster(_ context.Context, roomID string) ([]seat.Seat, error) {
	return append([]seat.Seat(nil), f.db.seats[roomID]...), nil
}

func (f fakeSeats) Get(_ context.Context, roomID string, seatID int64) (seat.Seat, error) {
	for _, s := range f.db.seats[roomID] {
		if s.ID == seatID {
			return s, nil
		}
	}
	return seat.Seat{}, engine.ErrSeatNotFound
}

func (f fakeSeats) Add(_ context.Context, seats []seat.Seat) error {
	for _, s := range seats {
		s.ID = f.db.id()
		f.db.seats[s.RoomID] = append(f.db.seats[s.RoomID], s)
	}
	return nil
}

func (f fakeSeats) Update(_ context.Context, s seat.Seat) error {
	for i, cur := range f.db.seats[s.RoomID] {
		if cur.ID == s.ID {
			f.db.seats[s.RoomID][i] = s
			return nil
		}
	}
	return engine.ErrSeatNotFound
}

func (f fakeSeats) MarkDead(_ context.Context, roomID string, seatIDs []int64, night int) error {
	dead := make(map[int64]bool, len(seatIDs))
	for _, id := range seatIDs {
		dead[id] = true
	}
	for i, s := range f.db.seats[roomID] {
		if dead[s.ID] {
			n := night
			s.IsAlive = false
			s.NightKilled = &n
			f.db.seats[roomID][i] = s
		}
	}
	return nil
}

func (f fakeSeats) RemoveAll(_ context.Context, roomID string) error {
	delete(f.db.seats, roomID)
	return nil
}

type fakeActions struct{ db *fakeDB }

func (f fakeActions) byState(roomID string, st action.State) []action.GameAction {
	var out []action.GameAction
	for _, a := range f.db.actions[roomID] {
		if a.State == st {
			out = append(out, a)
		}
	}
	return out
}

func (f fakeActions) Queued(_ context.Context, roomID string) ([]action.GameAction, error) {
	return f.byState(roomID, action.StateQueued), nil
}

func (f fakeActions) Processed(_ context.Context, roomID string) ([]action.GameAction, error) {
	return f.byState(roomID, action.StateProcessed), nil
}

func (f fakeActions) QueuedForActor(_ context.Context, roomID string, actorID int64) (action.GameAction, error) {
	for _, a := range f.db.actions[roomID] {
		if a.State == action.StateQueued && a.ByActor(actorID) {
			return a, nil
		}
	}
	return action.GameAction{}, engine.ErrActionNotFound
}

func (f fakeActions) QueuedWerewolfKill(_ context.Context, roomID string) (action.GameAction, error) {
	for _, a := range f.db.actions[roomID] {
		if a.State == action.StateQueued && a.Type == action.WerewolfKill {
			return a, nil
		}
	}
	return action.GameAction{}, engine.ErrActionNotFound
}

func (f fakeActions) Save(_ context.Context, a *action.GameAction) error {
	if a.ID == 0 {
		a.ID = f.db.id()
		f.db.actions[a.RoomID] = append(f.db.actions[a.RoomID], *a)
		return nil
	}
	for i, cur := range f.db.actions[a.RoomID] {
		if cur.ID == a.ID {
			f.db.actions[a.RoomID][i] = *a
			return nil
		}
	}
	return engine.ErrActionNotFound
}

func (f fakeActions) Delete(_ context.Context, actionID int64) error {
	for roomID, list := range f.db.actions {
		for i, cur := range list {
			if cur.ID == actionID {
				f.db.actions[roomID] = append(list[:i:i], list[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (f fakeActions) MarkProcessed(_ context.Context, roomID string, actionIDs []int64) error {
	flip := make(map[int64]bool, len(actionIDs))
	for _, id := range actionIDs {
		flip[id] = true
	}
	for i, a := range f.db.actions[roomID] {
		if flip[a.ID] {
			a.State = action.StateProcessed
			f.db.actions[roomID][i] = a
		}
	}
	return nil
}

func (f fakeActions) Clear(_ context.Context, roomID string) error {
	delete(f.db.actions, roomID)
	return nil
}

type zeroSource struct{}

func (zeroSource) Intn(int) int { return 0 }

type apiFixture struct {
	router *gin.Engine
	auth   *TokenIssuer
	db     *fakeDB
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newFakeDB()
	src := zeroSource{}
	logger := zap.NewNop()

	eng := engine.New(fakeRooms{db}, fakeMembers{db}, fakeSettings{db},
		fakeSeats{db}, fakeActions{db}, src, logger)
	dir := room.NewDirectory(fakeRooms{db}, fakeMembers{db}, fakeSettings{db}, src)
	auth := NewTokenIssuer(testAuthConfig())

	srv := New(config.HTTPConfig{Port: 8080}, eng, dir, fakeRooms{db}, fakeSettings{db}, auth, logger)
	return &apiFixture{router: srv.Router(), auth: auth, db: db}
}

// session is an authenticated test client.
type session struct {
	f        *apiFixture
	t        *testing.T
	token    string
	PlayerID uuid.UUID
}

func (f *apiFixture) newSession(t *testing.T) *session {
	t.Helper()
	token, playerID, err := f.auth.Issue()
	require.NoError(t, err)
	return &session{f: f, t: t, token: token, PlayerID: playerID}
}

func (s *session) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.f.router.ServeHTTP(w, req)
	return w
}

func (s *session) createRoom() string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/rooms", nil)
	require.Equal(s.t, http.StatusCreated, w.Code)
	var resp struct {
		RoomID string `json:"roomId"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.RoomID
}

func (s *session) join(roomID, nickname string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/rooms/"+roomID+"/join",
		gin.H{"nickname": nickname, "avatarIndex": 1})
	require.Equal(s.t, http.StatusNoContent, w.Code)
}

func TestGuestToken(t *testing.T) {
	f := newAPIFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/guest", nil)
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp guestTokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	playerID, err := f.auth.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.PlayerID, playerID.String())
}

func TestRoomsRequireAuth(t *testing.T) {
	f := newAPIFixture(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", nil)
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAndGetRoom(t *testing.T) {
	f := newAPIFixture(t)
	mod := f.newSession(t)
	roomID := mod.createRoom()

	w := mod.do(http.MethodGet, "/api/rooms/"+roomID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp roomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, roomID, resp.ID)
	assert.Equal(t, "lobby", resp.State)
	assert.True(t, resp.IsModerator)

	other := f.newSession(t)
	w = other.do(http.MethodGet, "/api/rooms/"+roomID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.IsModerator)
}

func TestGetRoomMissing(t *testing.T) {
	f := newAPIFixture(t)
	s := f.newSession(t)
	w := s.do(http.MethodGet, "/api/rooms/ZZZZZ", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJoinAndListMembers(t *testing.T) {
	f := newAPIFixture(t)
	mod := f.newSession(t)
	roomID := mod.createRoom()
	mod.join(roomID, "mod")

	player := f.newSession(t)
	player.join(roomID, "ada")

	w := mod.do(http.MethodGet, "/api/rooms/"+roomID+"/members", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var members []memberResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &members))
	require.Len(t, members, 1, "the moderator is excluded by default")
	assert.Equal(t, "ada", members[0].Nickname)

	w = mod.do(http.MethodGet, "/api/rooms/"+roomID+"/members?includeModerator=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &members))
	assert.Len(t, members, 2)
}

func TestKickMember(t *testing.T) {
	f := newAPIFixture(t)
	mod := f.newSession(t)
	roomID := mod.createRoom()

	player := f.newSession(t)
	player.join(roomID, "ada")

	w := player.do(http.MethodDelete, "/api/rooms/"+roomID+"/members/"+mod.PlayerID.String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "only the moderator may kick")

	w = mod.do(http.MethodDelete, "/api/rooms/"+roomID+"/members/"+player.PlayerID.String(), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = mod.do(http.MethodGet, "/api/rooms/"+roomID+"/members", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var members []memberResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &members))
	assert.Empty(t, members)
}

func TestStartGameModeratorOnly(t *testing.T) {
	f := newAPIFixture(t)
	mod := f.newSession(t)
	roomID := mod.createRoom()

	player := f.newSession(t)
	w := player.do(http.MethodPost, "/api/rooms/"+roomID+"/game/start", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestStartGameNotEnoughPlayers(t *testing.T) {
	f := newAPIFixture(t)
	mod := f.newSession(t)
	roomID := mod.createRoom()

	w := mod.do(http.MethodPost, "/api/rooms/"+roomID+"/game/start", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUpdateSettingsValidation(t *testing.T) {
	f := newAPIFixture(t)
	mod := f.newSession(t)
	roomID := mod.createRoom()

	w := mod.do(http.MethodPut, "/api/rooms/"+roomID+"/settings",
		settingsPayload{Werewolves: 0, SelectedRoles: []string{"doctor"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = mod.do(http.MethodPut, "/api/rooms/"+roomID+"/settings",
		settingsPayload{Werewolves: 1, SelectedRoles: []string{"archmage"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = mod.do(http.MethodPut, "/api/rooms/"+roomID+"/settings",
		settingsPayload{Werewolves: 2, SelectedRoles: []string{"doctor", "vigilante"}})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = mod.do(http.MethodGet, "/api/rooms/"+roomID+"/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got settingsPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Werewolves)
	assert.Equal(t, []string{"doctor", "vigilante"}, got.SelectedRoles)
}

// TestFullGameFlow drives a complete round through the API: deal, queue the
// pack kill, resolve the night, read the phase and deaths.
func TestFullGameFlow(t *testing.T) {
	f := newAPIFixture(t)
	mod := f.newSession(t)
	roomID := mod.createRoom()
	mod.join(roomID, "mod")

	players := make([]*session, 0, 4)
	for i := 0; i < 4; i++ {
		p := f.newSession(t)
		p.join(roomID, fmt.Sprintf("player%d", i))
		players = append(players, p)
	}

	w := mod.do(http.MethodPost, "/api/rooms/"+roomID+"/game/start", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// Find the dealt werewolf and a victim via the moderator board view.
	w = mod.do(http.MethodGet, "/api/rooms/"+roomID+"/game/roles-and-actions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var board []seatActionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board, 4)

	var wolfSeat, victimSeat int64
	for _, entry := range board {
		if entry.Seat.Role == "werewolf" {
			wolfSeat = entry.Seat.ID
		} else if victimSeat == 0 {
			victimSeat = entry.Seat.ID
		}
	}
	require.NotZero(t, wolfSeat)
	require.NotZero(t, victimSeat)

	// Each dealt player can read their own role.
	w = players[0].do(http.MethodGet, "/api/rooms/"+roomID+"/game/role", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = mod.do(http.MethodPost, "/api/rooms/"+roomID+"/actions",
		queueRequest{ActorID: &wolfSeat, Type: "werewolf_kill", TargetID: victimSeat})
	require.Equal(t, http.StatusOK, w.Code)
	var queued actionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &queued))
	assert.Equal(t, victimSeat, queued.TargetID)

	w = mod.do(http.MethodPost, "/api/rooms/"+roomID+"/game/end-night", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var phase phaseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &phase))
	assert.Equal(t, 0, phase.Night)
	assert.True(t, phase.IsDay)

	w = mod.do(http.MethodGet, "/api/rooms/"+roomID+"/game/deaths", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var deaths []seatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deaths))
	require.Len(t, deaths, 1)
	assert.Equal(t, victimSeat, deaths[0].ID)
	assert.False(t, deaths[0].IsAlive)

	w = mod.do(http.MethodPost, "/api/rooms/"+roomID+"/game/lynch", lynchRequest{})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &phase))
	assert.Equal(t, 1, phase.Night)
	assert.False(t, phase.IsDay)

	w = mod.do(http.MethodGet, "/api/rooms/"+roomID+"/game/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary []roundHistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	require.Len(t, summary, 1)
	assert.Len(t, summary[0].NightActions, 1)
}

func TestQueueActionRejectsSystemTypes(t *testing.T) {
	f := newAPIFixture(t)
	mod := f.newSession(t)
	roomID := mod.createRoom()

	actor := int64(1)
	w := mod.do(http.MethodPost, "/api/rooms/"+roomID+"/actions",
		queueRequest{ActorID: &actor, Type: "suicide", TargetID: 1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDequeueInvalidID(t *testing.T) {
	f := newAPIFixture(t)
	mod := f.newSession(t)
	roomID := mod.createRoom()

	w := mod.do(http.MethodDelete, "/api/rooms/"+roomID+"/actions/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSeatQueuedEmpty(t *testing.T) {
	f := newAPIFixture(t)
	mod := f.newSession(t)
	roomID := mod.createRoom()

	w := mod.do(http.MethodGet, "/api/rooms/"+roomID+"/seats/1/queued", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}
