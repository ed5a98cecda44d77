package protocol

import (
	"slices"
	"strings"
)

// Reduce applies one event and returns the next state. Every authoritative
// event replaces the aggregate it carries; nothing is merged. The input state
// is never modified, so earlier snapshots stay valid.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case SessionEstablished:
		u := e.User
		s.CurrentUser = &u
		s.LobbyRooms = e.Rooms
		s.CurrentRoom = nil
		s.IsInLobby = true
		s.IsInRoom = false

	case LobbyUpdated:
		s.LobbyRooms = e.Rooms

	case RoomStateChanged:
		s = enterRoom(s, e.Room)

	case RoomCreated:
		s = enterRoom(s, e.Room)

	case ChatReceived:
		chat := slices.Clip(s.Chat)
		s.Chat = append(chat, e.Message)

	case GameStarted:
		s.IsGameActive = true
		s.GameID = e.GameID
		s.Results = nil

	case GameStateUpdated:
		s.GameState = e.State
		if e.GameID != "" {
			s.GameID = e.GameID
		}

	case GameEnded:
		s.IsGameActive = false
		s.Results = e.Results

	case ServerError:
		s.LastError = e.Message
		if s.LastError == "" {
			s.LastError = e.Code
		}
		if strings.EqualFold(e.Code, CodeKicked) {
			s.CurrentRoom = nil
			s.IsInRoom = false
			s.IsInLobby = true
		}

	case ConnectionChanged:
		s.Connection = e.Status

	case LeftRoom:
		s.Chat = nil
		s.CurrentRoom = nil
		s.IsInRoom = false
		s.IsInLobby = true

	case Reset:
		conn := s.Connection
		s = InitialState()
		s.Connection = conn
	}
	return s
}

func enterRoom(s State, r Room) State {
	s.CurrentRoom = &r
	s.IsInRoom = true
	s.IsInLobby = false
	return s
}
