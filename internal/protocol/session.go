// Package protocol turns server messages into session state and user
// actions into server messages.
package protocol

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"example.com/dictation/internal/ident"
	"example.com/dictation/internal/wsclient"
)

var ErrEmptyInput = errors.New("protocol: empty input")

// Conn is the part of the connection manager the session drives.
type Conn interface {
	Connect(ctx context.Context) error
	Disconnect()
	Send(env wsclient.Envelope) error
}

// Session owns the single State. Inbound messages and optimistic local
// updates both go through Apply, one at a time.
type Session struct {
	conn Conn
	log  *slog.Logger

	mu     sync.Mutex
	state  State
	subs   map[int]chan State
	nextID int
}

func NewSession(conn Conn, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		conn:  conn,
		log:   log.With("component", "session"),
		state: InitialState(),
		subs:  make(map[int]chan State),
	}
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel that always holds the latest state after a
// change. Slow readers skip intermediate states. cancel closes the channel.
func (s *Session) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// HandleEnvelope is the connection manager's message handler.
func (s *Session) HandleEnvelope(env wsclient.Envelope) {
	ev, err := Decode(env)
	if err != nil {
		if errors.Is(err, ErrUnknownType) {
			s.log.Debug("unhandled message type", "type", env.Type)
			return
		}
		s.log.Warn("bad message payload", "type", env.Type, "err", err)
		return
	}
	if ev == nil {
		return
	}
	if e, ok := ev.(ServerError); ok {
		s.log.Error("server error", "code", e.Code, "message", e.Message)
	}
	s.Apply(ev)
}

// OnConnectionStatus is the connection manager's status listener.
func (s *Session) OnConnectionStatus(st wsclient.Status) {
	s.Apply(ConnectionChanged{Status: st})
}

func (s *Session) Apply(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Reduce(s.state, ev)

	switch ev.(type) {
	case RoomStateChanged, RoomCreated:
		s.checkMembershipLocked()
	}

	for _, ch := range s.subs {
		offer(ch, s.state)
	}
}

func (s *Session) checkMembershipLocked() {
	u, r := s.state.CurrentUser, s.state.CurrentRoom
	if u == nil || r == nil || r.HasPlayer(u.ID) {
		return
	}
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		ids = append(ids, p.ID.String())
	}
	s.log.Warn("local player not found in room participants",
		"room_id", r.ID.String(), "user_id", u.ID.String(), "participants", ids)
}

// offer replaces whatever the reader has not consumed yet.
func offer(ch chan State, st State) {
	select {
	case ch <- st:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- st:
	default:
	}
}

func (s *Session) Connect(ctx context.Context) error {
	return s.conn.Connect(ctx)
}

// Disconnect stops the connection and resets everything except the
// connection status.
func (s *Session) Disconnect() {
	s.conn.Disconnect()
	s.Apply(Reset{})
}

func (s *Session) send(typ string, data any) error {
	env, err := wsclient.NewEnvelope(typ, data)
	if err != nil {
		return err
	}
	return s.conn.Send(env)
}

func (s *Session) CreateRoom(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyInput
	}
	return s.send(TypeCreateRoom, createRoomPayload{RoomName: name})
}

// JoinRoom accepts a room id or a room code.
func (s *Session) JoinRoom(idOrCode string) error {
	idOrCode = strings.TrimSpace(idOrCode)
	if idOrCode == "" {
		return ErrEmptyInput
	}
	return s.send(TypeJoinRoom, joinRoomPayload{RoomID: idOrCode})
}

// LeaveRoom tells the server and flips to the lobby right away, without
// waiting for confirmation. The next room or lobby update from the server
// wins over this local guess.
func (s *Session) LeaveRoom() error {
	err := s.send(TypeLeaveRoom, nil)
	s.Apply(LeftRoom{})
	return err
}

func (s *Session) ToggleReady() error {
	return s.send(TypeToggleReady, nil)
}

func (s *Session) KickPlayer(id ident.ID) error {
	if id.IsZero() {
		return ErrEmptyInput
	}
	return s.send(TypeKickPlayer, kickPlayerPayload{PlayerID: id})
}

func (s *Session) StartGame() error {
	return s.send(TypeStartGame, nil)
}

func (s *Session) SendChat(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}
	return s.send(TypeSendMessage, sendMessagePayload{Message: text})
}

// SubmitAnswer sends an answer for gameID, or for the running game when
// gameID is empty.
func (s *Session) SubmitAnswer(gameID, text string) error {
	if gameID == "" {
		gameID = s.Snapshot().GameID
	}
	if gameID == "" {
		return ErrEmptyInput
	}
	return s.send(TypeSubmitAnswer, submitAnswerPayload{GameID: gameID, Answer: text})
}
