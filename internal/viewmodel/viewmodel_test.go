package viewmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/dictation/internal/ident"
	"example.com/dictation/internal/protocol"
	"example.com/dictation/internal/wsclient"
)

func stateWithRoom(me ident.ID, players ...protocol.Player) protocol.State {
	s := protocol.InitialState()
	s.Connection = wsclient.Status{State: wsclient.Connected}
	s.CurrentUser = &protocol.Player{ID: me, Name: "me"}
	s = protocol.Reduce(s, protocol.RoomStateChanged{Room: protocol.Room{
		ID:         "r1",
		Name:       "Phòng 1",
		Code:       "ABCD",
		Players:    players,
		MaxPlayers: 4,
		Status:     protocol.RoomWaiting,
	}})
	return s
}

func TestConnection(t *testing.T) {
	cases := []struct {
		name   string
		status wsclient.Status
		srvErr string
		label  string
		detail string
	}{
		{name: "connected", status: wsclient.Status{State: wsclient.Connected}, label: LabelConnected},
		{name: "connected ignores server errors", status: wsclient.Status{State: wsclient.Connected}, srvErr: "NOT_HOST", label: LabelConnected},
		{name: "connecting", status: wsclient.Status{State: wsclient.Connecting}, label: LabelConnecting},
		{name: "reconnecting", status: wsclient.Status{State: wsclient.Reconnecting, Attempts: 2, Err: "connection lost"}, label: LabelConnecting, detail: "reconnecting, attempt 2"},
		{name: "fresh start", status: wsclient.Status{}, label: LabelConnecting},
		{name: "gave up", status: wsclient.Status{State: wsclient.Disconnected, Attempts: 5, Err: "failed to connect to server"}, label: LabelError, detail: "failed to connect to server"},
		{name: "server error while down", status: wsclient.Status{}, srvErr: "Invalid token", label: LabelError, detail: "Invalid token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := protocol.InitialState()
			s.Connection = tc.status
			s.LastError = tc.srvErr
			v := Connection(s)
			assert.Equal(t, tc.label, v.Label)
			assert.Equal(t, tc.detail, v.Detail)
			assert.Equal(t, tc.label, ConnectionLabel(s))
		})
	}
}

func TestLobby(t *testing.T) {
	s := protocol.InitialState()
	s.LobbyRooms = []protocol.Room{
		{ID: "a", Name: "open", MaxPlayers: 2, Status: protocol.RoomWaiting, Players: []protocol.Player{{ID: "1"}}},
		{ID: "b", Name: "full", MaxPlayers: 1, Status: protocol.RoomWaiting, Players: []protocol.Player{{ID: "2"}}},
		{ID: "c", Name: "busy", MaxPlayers: 6, Status: protocol.RoomPlaying},
	}

	v := Lobby(s)
	assert.False(t, v.CanCreate, "cannot create while disconnected")
	require.Len(t, v.Rooms, 3)
	assert.True(t, v.Rooms[0].Joinable)
	assert.Equal(t, 1, v.Rooms[0].Players)
	assert.False(t, v.Rooms[1].Joinable)
	assert.False(t, v.Rooms[2].Joinable)

	s.Connection.State = wsclient.Connected
	s.CurrentUser = &protocol.Player{ID: "9", Name: "Cáo Vui vẻ"}
	v = Lobby(s)
	assert.True(t, v.CanCreate)
	assert.Equal(t, "Cáo Vui vẻ", v.Me)

	id, name := QuickMatch(s, time.UnixMilli(1700000000000))
	assert.Equal(t, ident.ID("a"), id)
	assert.Empty(t, name)

	s.LobbyRooms = s.LobbyRooms[1:]
	id, name = QuickMatch(s, time.UnixMilli(1700000000000))
	assert.True(t, id.IsZero())
	assert.Equal(t, "Quick Match 1700000000000", name)
}

func TestRoom_Scenarios(t *testing.T) {
	type scenario struct {
		name string
		run  func(t *testing.T)
	}

	cases := []scenario{
		{
			name: "host sees start enabled once everyone else is ready",
			run: func(t *testing.T) {
				s := stateWithRoom("42",
					protocol.Player{ID: "42", Name: "me"},
					protocol.Player{ID: "7", Name: "other", IsReady: true},
				)
				v := Room(s)
				assert.True(t, v.ShowRoom)
				assert.False(t, v.BackToLobby)
				assert.True(t, v.IsHost)
				assert.True(t, v.AllReady)
				assert.True(t, v.CanStart)
				assert.Equal(t, 2, v.OpenSlots)

				require.Len(t, v.Players, 2)
				assert.True(t, v.Players[0].IsHost)
				assert.True(t, v.Players[0].IsSelf)
				assert.False(t, v.Players[0].IsReady, "row shows the stored flag")
				assert.False(t, v.Players[1].IsSelf)
			},
		},
		{
			name: "host waits for unready players",
			run: func(t *testing.T) {
				s := stateWithRoom("42",
					protocol.Player{ID: "42"},
					protocol.Player{ID: "7"},
				)
				v := Room(s)
				assert.True(t, v.IsHost)
				assert.False(t, v.AllReady)
				assert.False(t, v.CanStart)
			},
		},
		{
			name: "non-host never starts",
			run: func(t *testing.T) {
				s := stateWithRoom("7",
					protocol.Player{ID: "42", IsReady: true},
					protocol.Player{ID: "7"},
				)
				v := Room(s)
				assert.False(t, v.IsHost)
				assert.True(t, v.AllReady)
				assert.False(t, v.CanStart)
			},
		},
		{
			name: "numeric and string ids are the same player",
			run: func(t *testing.T) {
				s := stateWithRoom(ident.FromInt(42),
					protocol.Player{ID: ident.Parse("42")},
					protocol.Player{ID: "7", IsReady: true},
				)
				v := Room(s)
				assert.True(t, v.IsHost)
				assert.True(t, v.CanStart)
			},
		},
		{
			name: "leaving navigates back",
			run: func(t *testing.T) {
				s := stateWithRoom("42", protocol.Player{ID: "42"})
				s = protocol.Reduce(s, protocol.LeftRoom{})
				v := Room(s)
				assert.False(t, v.ShowRoom)
				assert.True(t, v.BackToLobby)
				assert.Empty(t, v.Players)
			},
		},
		{
			name: "overfull room has no open slots",
			run: func(t *testing.T) {
				s := stateWithRoom("1", protocol.Player{ID: "1"}, protocol.Player{ID: "2"}, protocol.Player{ID: "3"},
					protocol.Player{ID: "4"}, protocol.Player{ID: "5"})
				assert.Equal(t, 0, Room(s).OpenSlots)
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, c.run)
	}
}

func TestJoinTarget(t *testing.T) {
	s := protocol.InitialState()
	s.LobbyRooms = []protocol.Room{{ID: "17"}, {ID: "room-a"}}

	assert.Equal(t, "17", JoinTarget(s, " 17 "))
	assert.Equal(t, "room-a", JoinTarget(s, "room-a"))
	assert.Equal(t, "XK9P", JoinTarget(s, "xk9p"))
}
