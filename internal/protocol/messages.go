package protocol

import (
	"encoding/json"

	"example.com/dictation/internal/ident"
)

// inbound
const (
	TypeConnected         = "CONNECTED"
	TypeLobbyUpdate       = "LOBBY_UPDATE"
	TypeRoomStateUpdate   = "ROOM_STATE_UPDATE"
	TypeCreateRoomSuccess = "CREATE_ROOM_SUCCESS"
	TypeChatMessage       = "CHAT_MESSAGE"
	TypeGameStarted       = "GAME_STARTED"
	TypeGameStateUpdate   = "GAME_STATE_UPDATE"
	TypeGameEnded         = "GAME_ENDED"
	TypeError             = "ERROR"
)

// outbound
const (
	TypeCreateRoom   = "CREATE_ROOM"
	TypeJoinRoom     = "JOIN_ROOM"
	TypeLeaveRoom    = "LEAVE_ROOM"
	TypeToggleReady  = "TOGGLE_READY"
	TypeKickPlayer   = "KICK_PLAYER"
	TypeStartGame    = "START_GAME"
	TypeSendMessage  = "SEND_MESSAGE"
	TypeSubmitAnswer = "SUBMIT_ANSWER"
)

// Server error codes.
const (
	CodeInvalidToken    = "INVALID_TOKEN"
	CodeTokenExpired    = "TOKEN_EXPIRED"
	CodeUserNotFound    = "USER_NOT_FOUND"
	CodeRoomNotFound    = "ROOM_NOT_FOUND"
	CodeRoomFull        = "ROOM_FULL"
	CodeAlreadyInRoom   = "ALREADY_IN_ROOM"
	CodeNotInRoom       = "NOT_IN_ROOM"
	CodeGameActive      = "GAME_ACTIVE"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeNotHost         = "NOT_HOST"
	CodePlayerNotFound  = "PLAYER_NOT_FOUND"
	CodeNotReady        = "NOT_READY"
	CodeGameNotFound    = "GAME_NOT_FOUND"
	CodeInvalidAnswer   = "INVALID_ANSWER"
	CodeInvalidMessage  = "INVALID_MESSAGE"
	CodeMessageTooLong  = "MESSAGE_TOO_LONG"
	CodeKicked          = "KICKED"
)

type userData struct {
	ID       ident.ID `json:"id"`
	FullName string   `json:"full_name"`
	UserType string   `json:"user_type"`
	IsHost   bool     `json:"is_host"`
	Score    int      `json:"score"`
	IsReady  bool     `json:"is_ready"`
	Avatar   string   `json:"avatar,omitempty"`
}

type roomData struct {
	ID           ident.ID   `json:"id"`
	Name         string     `json:"name"`
	Code         string     `json:"code,omitempty"`
	Participants []userData `json:"participants"`
	MaxPlayers   int        `json:"max_players"`
	IsActive     bool       `json:"is_active"`
	IsGameActive bool       `json:"is_game_active"`
	Status       string     `json:"status,omitempty"`
	CreatedAt    string     `json:"created_at"`
	CreatedBy    ident.ID   `json:"created_by"`
}

type connectedData struct {
	User  userData `json:"user"`
	Lobby struct {
		Rooms []roomData `json:"rooms"`
	} `json:"lobby"`
}

type lobbyUpdateData struct {
	Rooms []roomData `json:"rooms"`
}

type roomEnvelopeData struct {
	Room roomData `json:"room"`
}

type chatData struct {
	ID        ident.ID `json:"id"`
	UserID    ident.ID `json:"user_id"`
	UserName  string   `json:"user_name"`
	Message   string   `json:"message"`
	Timestamp string   `json:"timestamp"`
}

type gameStartedData struct {
	GameID ident.ID `json:"gameId"`
	RoomID ident.ID `json:"roomId"`
}

type gameStateData struct {
	GameID ident.ID `json:"gameId"`
}

type gameEndedData struct {
	GameID  ident.ID        `json:"gameId"`
	Results json.RawMessage `json:"results"`
}

type errorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type createRoomPayload struct {
	RoomName string `json:"room_name"`
}

type joinRoomPayload struct {
	RoomID string `json:"room_id"`
}

type kickPlayerPayload struct {
	PlayerID ident.ID `json:"playerID"`
}

type sendMessagePayload struct {
	Message string `json:"message"`
}

type submitAnswerPayload struct {
	GameID string `json:"gameID"`
	Answer string `json:"answer"`
}
