// Package viewmodel derives what the lobby and room screens show from a
// session snapshot. Everything here is a pure function of protocol.State.
package viewmodel

import (
	"fmt"
	"strings"
	"time"

	"example.com/dictation/internal/ident"
	"example.com/dictation/internal/protocol"
	"example.com/dictation/internal/wsclient"
)

const (
	LabelConnected  = "Connected"
	LabelConnecting = "Connecting"
	LabelError      = "Error"
)

type ConnectionView struct {
	Label  string
	Detail string
}

// Connection always resolves to one of the three labels. A disconnected
// session with no error on record is about to connect, not broken.
func Connection(s protocol.State) ConnectionView {
	switch s.Connection.State {
	case wsclient.Connected:
		return ConnectionView{Label: LabelConnected}
	case wsclient.Connecting:
		return ConnectionView{Label: LabelConnecting}
	case wsclient.Reconnecting:
		return ConnectionView{
			Label:  LabelConnecting,
			Detail: fmt.Sprintf("reconnecting, attempt %d", s.Connection.Attempts),
		}
	}

	detail := s.Connection.Err
	if detail == "" {
		detail = s.LastError
	}
	if detail == "" {
		return ConnectionView{Label: LabelConnecting}
	}
	return ConnectionView{Label: LabelError, Detail: detail}
}

func ConnectionLabel(s protocol.State) string {
	return Connection(s).Label
}

type RoomRow struct {
	ID         ident.ID
	Name       string
	Code       string
	Players    int
	MaxPlayers int
	Status     protocol.RoomStatus
	Joinable   bool
}

type LobbyView struct {
	Connection ConnectionView
	Me         string
	Rooms      []RoomRow
	CanCreate  bool
	Error      string
}

func Lobby(s protocol.State) LobbyView {
	v := LobbyView{
		Connection: Connection(s),
		Rooms:      make([]RoomRow, 0, len(s.LobbyRooms)),
		CanCreate:  s.Connection.State == wsclient.Connected,
		Error:      s.LastError,
	}
	if s.CurrentUser != nil {
		v.Me = s.CurrentUser.Name
	}
	for _, r := range s.LobbyRooms {
		v.Rooms = append(v.Rooms, RoomRow{
			ID:         r.ID,
			Name:       r.Name,
			Code:       r.Code,
			Players:    len(r.Players),
			MaxPlayers: r.MaxPlayers,
			Status:     r.Status,
			Joinable:   r.Joinable(),
		})
	}
	return v
}

type PlayerRow struct {
	ID      ident.ID
	Name    string
	Avatar  string
	IsHost  bool
	IsSelf  bool
	IsReady bool
}

type RoomView struct {
	ID         ident.ID
	Name       string
	Code       string
	Status     protocol.RoomStatus
	Players    []PlayerRow
	MaxPlayers int
	OpenSlots  int

	IsHost   bool
	AllReady bool
	CanStart bool

	// ShowRoom and BackToLobby drive navigation. Both can be false while a
	// join is in flight.
	ShowRoom    bool
	BackToLobby bool

	Chat []protocol.ChatMessage
}

func Room(s protocol.State) RoomView {
	v := RoomView{
		ShowRoom:    s.IsInRoom && s.CurrentRoom != nil,
		BackToLobby: !s.IsInRoom && s.CurrentRoom == nil,
		Chat:        s.Chat,
	}
	r := s.CurrentRoom
	if r == nil {
		return v
	}

	local := s.LocalID()
	v.ID, v.Name, v.Code, v.Status = r.ID, r.Name, r.Code, r.Status
	v.MaxPlayers = r.MaxPlayers
	v.OpenSlots = max(r.MaxPlayers-len(r.Players), 0)
	v.IsHost = !local.IsZero() && r.IsHost(local)
	v.AllReady = r.AllReady(local)
	v.CanStart = v.IsHost && v.AllReady

	v.Players = make([]PlayerRow, 0, len(r.Players))
	for i, p := range r.Players {
		v.Players = append(v.Players, PlayerRow{
			ID:      p.ID,
			Name:    p.Name,
			Avatar:  p.Avatar,
			IsHost:  i == 0,
			IsSelf:  !local.IsZero() && ident.Equal(p.ID, local),
			IsReady: p.IsReady,
		})
	}
	return v
}

// JoinTarget resolves what the user typed into a join argument: a room id
// from the lobby list as is, anything else as an upper-cased room code.
func JoinTarget(s protocol.State, input string) string {
	input = strings.TrimSpace(input)
	for _, r := range s.LobbyRooms {
		if ident.Equal(r.ID, ident.ID(input)) {
			return r.ID.String()
		}
	}
	return strings.ToUpper(input)
}

// QuickMatch picks the first joinable lobby room. When there is none it
// returns a name for a fresh room instead.
func QuickMatch(s protocol.State, now time.Time) (roomID ident.ID, newRoomName string) {
	for _, r := range s.LobbyRooms {
		if r.Joinable() {
			return r.ID, ""
		}
	}
	return "", fmt.Sprintf("Quick Match %d", now.UnixMilli())
}
