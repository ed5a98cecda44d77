package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"example.com/dictation/internal/ident"
	"example.com/dictation/internal/protocol"
	"example.com/dictation/internal/viewmodel"
)

var errQuit = errors.New("quit")

const helpText = `commands:
  /rooms                  list lobby rooms
  /state                  show the current room or lobby
  /create <name>          create a room
  /join <id-or-code>      join a room by id or code
  /quick                  join the first open room or create one
  /leave                  leave the current room
  /ready                  toggle ready
  /kick <player-id>       remove a player (host only)
  /start                  start the game (host only)
  /answer [#game] <text>  submit an answer
  /connect, /disconnect   manage the connection
  /logout                 forget this guest and register a new one
  /quit                   exit
anything else is sent as chat`

// Session is what the console drives.
type Session interface {
	Snapshot() protocol.State
	Connect(ctx context.Context) error
	Disconnect()
	CreateRoom(name string) error
	JoinRoom(idOrCode string) error
	LeaveRoom() error
	ToggleReady() error
	KickPlayer(id ident.ID) error
	StartGame() error
	SendChat(text string) error
	SubmitAnswer(gameID, text string) error
}

// Console is a line-oriented front end: Exec runs one input line, Render
// prints whatever changed since the last rendered state.
type Console struct {
	session Session
	logout  func(ctx context.Context) error
	now     func() time.Time

	mu       sync.Mutex
	out      io.Writer
	prev     protocol.State
	rendered bool
}

func NewConsole(s Session, out io.Writer, logout func(ctx context.Context) error) *Console {
	return &Console{session: s, out: out, logout: logout, now: time.Now}
}

// Exec runs one line. It returns errQuit for /quit and reports command
// failures on the output instead of returning them.
func (c *Console) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		return c.report(c.session.SendChat(line))
	}

	cmd, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	st := c.session.Snapshot()

	switch strings.ToLower(cmd) {
	case "quit", "exit":
		return errQuit
	case "help":
		c.println(helpText)
		return nil
	case "rooms":
		c.printLobby(viewmodel.Lobby(st))
		return nil
	case "state":
		if st.IsInRoom {
			c.printRoom(viewmodel.Room(st))
		} else {
			c.printLobby(viewmodel.Lobby(st))
		}
		return nil
	case "create":
		return c.report(c.session.CreateRoom(arg))
	case "join":
		if arg == "" {
			return c.report(protocol.ErrEmptyInput)
		}
		return c.report(c.session.JoinRoom(viewmodel.JoinTarget(st, arg)))
	case "quick":
		id, name := viewmodel.QuickMatch(st, c.now())
		if !id.IsZero() {
			return c.report(c.session.JoinRoom(id.String()))
		}
		return c.report(c.session.CreateRoom(name))
	case "leave":
		return c.report(c.session.LeaveRoom())
	case "ready":
		return c.report(c.session.ToggleReady())
	case "kick":
		return c.report(c.session.KickPlayer(ident.Parse(arg)))
	case "start":
		return c.report(c.session.StartGame())
	case "answer":
		gameID, text := "", arg
		if strings.HasPrefix(arg, "#") {
			gameID, text, _ = strings.Cut(arg[1:], " ")
		}
		return c.report(c.session.SubmitAnswer(gameID, strings.TrimSpace(text)))
	case "connect":
		return c.report(c.session.Connect(ctx))
	case "disconnect":
		c.session.Disconnect()
		return nil
	case "logout":
		if c.logout == nil {
			return nil
		}
		return c.report(c.logout(ctx))
	default:
		c.printf("unknown command /%s, try /help\n", cmd)
		return nil
	}
}

func (c *Console) report(err error) error {
	if err != nil {
		c.printf("! %v\n", err)
	}
	return nil
}

// Render prints the parts of st that differ from the previous call.
func (c *Console) Render(st protocol.State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.prev
	first := !c.rendered
	c.prev, c.rendered = st, true

	if conn := viewmodel.Connection(st); first || conn != viewmodel.Connection(prev) {
		if conn.Detail != "" {
			fmt.Fprintf(c.out, "[%s] %s\n", conn.Label, conn.Detail)
		} else {
			fmt.Fprintf(c.out, "[%s]\n", conn.Label)
		}
	}
	if st.LastError != "" && st.LastError != prev.LastError {
		fmt.Fprintf(c.out, "! %s\n", st.LastError)
	}
	if st.CurrentUser != nil && (prev.CurrentUser == nil || !ident.Equal(prev.CurrentUser.ID, st.CurrentUser.ID)) {
		fmt.Fprintf(c.out, "signed in as %s (%s)\n", st.CurrentUser.Name, st.CurrentUser.ID)
	}

	switch {
	case st.CurrentRoom != nil && roomChanged(prev.CurrentRoom, st.CurrentRoom):
		c.writeRoom(viewmodel.Room(st))
	case prev.IsInRoom && !st.IsInRoom:
		fmt.Fprintln(c.out, "back in the lobby")
		c.writeLobby(viewmodel.Lobby(st))
	case !st.IsInRoom && !roomsEqual(prev.LobbyRooms, st.LobbyRooms):
		c.writeLobby(viewmodel.Lobby(st))
	}

	from := len(prev.Chat)
	if from > len(st.Chat) {
		from = 0
	}
	for _, m := range st.Chat[from:] {
		if m.IsSystem() {
			fmt.Fprintf(c.out, "* %s\n", m.Text)
			continue
		}
		fmt.Fprintf(c.out, "<%s> %s\n", m.PlayerName, m.Text)
	}

	if st.GameID != "" && st.GameID != prev.GameID {
		fmt.Fprintf(c.out, "game %s started\n", st.GameID)
	}
	if len(st.GameState) > 0 && string(st.GameState) != string(prev.GameState) {
		fmt.Fprintf(c.out, "game state: %s\n", st.GameState)
	}
	if len(st.Results) > 0 && string(st.Results) != string(prev.Results) {
		fmt.Fprintf(c.out, "game over: %s\n", st.Results)
	}
}

func (c *Console) printLobby(v viewmodel.LobbyView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLobby(v)
}

func (c *Console) printRoom(v viewmodel.RoomView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeRoom(v)
}

func (c *Console) writeLobby(v viewmodel.LobbyView) {
	if len(v.Rooms) == 0 {
		fmt.Fprintln(c.out, "lobby: no rooms yet, /create one")
		return
	}
	fmt.Fprintf(c.out, "lobby: %d room(s)\n", len(v.Rooms))
	for _, r := range v.Rooms {
		mark := " "
		if r.Joinable {
			mark = "+"
		}
		fmt.Fprintf(c.out, " %s %-6s %-20s %d/%d %s code=%s\n", mark, r.ID, r.Name, r.Players, r.MaxPlayers, r.Status, r.Code)
	}
}

func (c *Console) writeRoom(v viewmodel.RoomView) {
	fmt.Fprintf(c.out, "room %s %q code=%s %s, %d open slot(s)\n", v.ID, v.Name, v.Code, v.Status, v.OpenSlots)
	for _, p := range v.Players {
		var tags []string
		if p.IsHost {
			tags = append(tags, "host")
		}
		if p.IsSelf {
			tags = append(tags, "you")
		}
		if p.IsReady {
			tags = append(tags, "ready")
		}
		fmt.Fprintf(c.out, "  %s %s [%s] %s\n", p.Avatar, p.Name, p.ID, strings.Join(tags, ","))
	}
	if v.CanStart {
		fmt.Fprintln(c.out, "everyone is ready, /start when you like")
	}
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func roomChanged(prev, cur *protocol.Room) bool {
	if prev == nil || cur == nil {
		return prev != cur
	}
	if !ident.Equal(prev.ID, cur.ID) || prev.Name != cur.Name || prev.Status != cur.Status {
		return true
	}
	return !slices.EqualFunc(prev.Players, cur.Players, func(a, b protocol.Player) bool {
		return ident.Equal(a.ID, b.ID) && a.IsReady == b.IsReady && a.Name == b.Name
	})
}

func roomsEqual(a, b []protocol.Room) bool {
	return slices.EqualFunc(a, b, func(x, y protocol.Room) bool {
		return ident.Equal(x.ID, y.ID) && len(x.Players) == len(y.Players) && x.Status == y.Status && x.Name == y.Name
	})
}
