package protocol

import (
	"encoding/json"
	"time"

	"example.com/dictation/internal/ident"
	"example.com/dictation/internal/wsclient"
)

const (
	DefaultAvatar     = "😊"
	DefaultMaxPlayers = 6
	unknownName       = "Unknown"
)

type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomPlaying  RoomStatus = "playing"
	RoomFinished RoomStatus = "finished"
)

type Player struct {
	ID       ident.ID
	Name     string
	Avatar   string
	IsReady  bool
	UserType string
	// IsHost is the server's flag. The lobby logic derives the host from
	// position instead, see Room.Host.
	IsHost bool
	Score  int
}

type Room struct {
	ID         ident.ID
	Name       string
	Code       string
	Players    []Player
	MaxPlayers int
	Status     RoomStatus
	IsActive   bool
	CreatedAt  time.Time
	CreatedBy  ident.ID
}

// Host is the participant at index 0.
func (r Room) Host() (Player, bool) {
	if len(r.Players) == 0 {
		return Player{}, false
	}
	return r.Players[0], true
}

func (r Room) IsHost(id ident.ID) bool {
	h, ok := r.Host()
	return ok && ident.Equal(h.ID, id)
}

func (r Room) HasPlayer(id ident.ID) bool {
	for _, p := range r.Players {
		if ident.Equal(p.ID, id) {
			return true
		}
	}
	return false
}

// AllReady reports whether every participant is ready. The local player
// always counts as ready: their own flag may lag behind a toggle that the
// server has not echoed yet.
func (r Room) AllReady(local ident.ID) bool {
	for _, p := range r.Players {
		if !p.IsReady && !ident.Equal(p.ID, local) {
			return false
		}
	}
	return true
}

func (r Room) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

func (r Room) Joinable() bool {
	return r.Status == RoomWaiting && !r.IsFull()
}

type ChatMessage struct {
	ID         ident.ID
	PlayerID   ident.ID
	PlayerName string
	Text       string
	Sent       time.Time
}

func (m ChatMessage) IsSystem() bool {
	return m.PlayerID == ident.System
}

// State is the whole multiplayer session as the client sees it. Values
// handed out by Session are snapshots: treat slices and pointers as
// read-only.
type State struct {
	Connection wsclient.Status

	CurrentUser *Player

	IsInLobby  bool
	LobbyRooms []Room

	CurrentRoom *Room
	IsInRoom    bool

	Chat []ChatMessage

	IsGameActive bool
	GameID       string
	GameState    json.RawMessage
	Results      json.RawMessage

	LastError string
}

func InitialState() State {
	return State{IsInLobby: true}
}

// LocalID is the current user's id, zero when the session has not been
// established yet.
func (s State) LocalID() ident.ID {
	if s.CurrentUser == nil {
		return ""
	}
	return s.CurrentUser.ID
}

func playerFromData(u userData) Player {
	name := u.FullName
	if name == "" {
		name = unknownName
	}
	avatar := u.Avatar
	if avatar == "" {
		avatar = DefaultAvatar
	}
	return Player{
		ID:       u.ID,
		Name:     name,
		Avatar:   avatar,
		IsReady:  u.IsReady,
		UserType: u.UserType,
		IsHost:   u.IsHost,
		Score:    u.Score,
	}
}

func roomFromData(d roomData) Room {
	players := make([]Player, 0, len(d.Participants))
	for _, p := range d.Participants {
		players = append(players, playerFromData(p))
	}

	maxPlayers := d.MaxPlayers
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}

	status := RoomStatus(d.Status)
	switch status {
	case RoomWaiting, RoomPlaying, RoomFinished:
	default:
		status = RoomWaiting
		if d.IsGameActive {
			status = RoomPlaying
		}
	}

	r := Room{
		ID:         d.ID,
		Name:       d.Name,
		Code:       d.Code,
		Players:    players,
		MaxPlayers: maxPlayers,
		Status:     status,
		IsActive:   d.IsActive,
		CreatedBy:  d.CreatedBy,
	}
	if ts, err := time.Parse(time.RFC3339Nano, d.CreatedAt); err == nil {
		r.CreatedAt = ts
	}
	return r
}

func roomsFromData(ds []roomData) []Room {
	rooms := make([]Room, 0, len(ds))
	for _, d := range ds {
		rooms = append(rooms, roomFromData(d))
	}
	return rooms
}
