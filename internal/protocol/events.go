package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"example.com/dictation/internal/ident"
	"example.com/dictation/internal/wsclient"
)

var ErrUnknownType = errors.New("protocol: unknown message type")

// Event is one input of Reduce.
type Event interface {
	isEvent()
}

type SessionEstablished struct {
	User  Player
	Rooms []Room
}

type LobbyUpdated struct {
	Rooms []Room
}

type RoomStateChanged struct {
	Room Room
}

// RoomCreated is the creator's own confirmation; it has the same effect as
// RoomStateChanged.
type RoomCreated struct {
	Room Room
}

type ChatReceived struct {
	Message ChatMessage
}

type GameStarted struct {
	GameID string
	RoomID string
}

// GameStateUpdated carries the raw payload; its content belongs to the game
// screen.
type GameStateUpdated struct {
	GameID string
	State  json.RawMessage
}

type GameEnded struct {
	GameID  string
	Results json.RawMessage
}

type ServerError struct {
	Code    string
	Message string
}

type ConnectionChanged struct {
	Status wsclient.Status
}

// LeftRoom is the optimistic local effect of leaving a room.
type LeftRoom struct{}

// Reset returns to the initial state, keeping the connection status.
type Reset struct{}

func (SessionEstablished) isEvent() {}
func (LobbyUpdated) isEvent()       {}
func (RoomStateChanged) isEvent()   {}
func (RoomCreated) isEvent()        {}
func (ChatReceived) isEvent()       {}
func (GameStarted) isEvent()        {}
func (GameStateUpdated) isEvent()   {}
func (GameEnded) isEvent()          {}
func (ServerError) isEvent()        {}
func (ConnectionChanged) isEvent()  {}
func (LeftRoom) isEvent()           {}
func (Reset) isEvent()              {}

// Decode turns an inbound envelope into an event. Heartbeat frames decode to
// (nil, nil): they are handled by the transport. Unknown types return
// ErrUnknownType.
func Decode(env wsclient.Envelope) (Event, error) {
	switch env.Type {
	case wsclient.TypePing, wsclient.TypePong:
		return nil, nil

	case TypeConnected:
		var p connectedData
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return SessionEstablished{User: playerFromData(p.User), Rooms: roomsFromData(p.Lobby.Rooms)}, nil

	case TypeLobbyUpdate:
		var p lobbyUpdateData
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return LobbyUpdated{Rooms: roomsFromData(p.Rooms)}, nil

	case TypeRoomStateUpdate:
		var p roomEnvelopeData
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return RoomStateChanged{Room: roomFromData(p.Room)}, nil

	case TypeCreateRoomSuccess:
		var p roomEnvelopeData
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return RoomCreated{Room: roomFromData(p.Room)}, nil

	case TypeChatMessage:
		var p chatData
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return ChatReceived{Message: chatFromData(p, env.Timestamp)}, nil

	case TypeGameStarted:
		var p gameStartedData
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return GameStarted{GameID: p.GameID.String(), RoomID: p.RoomID.String()}, nil

	case TypeGameStateUpdate:
		var p gameStateData
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return GameStateUpdated{GameID: p.GameID.String(), State: cloneRaw(env.Data)}, nil

	case TypeGameEnded:
		var p gameEndedData
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return GameEnded{GameID: p.GameID.String(), Results: cloneRaw(p.Results)}, nil

	case TypeError:
		var p errorData
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return ServerError{Code: p.Code, Message: p.Message}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

func chatFromData(p chatData, envTimestamp string) ChatMessage {
	id := p.ID
	if id.IsZero() {
		id = ident.ID(uuid.NewString())
	}
	sent, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		sent, _ = time.Parse(time.RFC3339Nano, envTimestamp)
	}
	return ChatMessage{
		ID:         id,
		PlayerID:   p.UserID,
		PlayerName: p.UserName,
		Text:       p.Message,
		Sent:       sent,
	}
}

func cloneRaw(b json.RawMessage) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	out := make(json.RawMessage, len(b))
	copy(out, b)
	return out
}
