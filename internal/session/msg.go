package session

// Msg is the websocket envelope: a type tag plus a free-form payload. The
// payload stays a map so the transport layer never needs one struct per
// message kind.
type Msg struct {
	T string         `json:"type"`
	M map[string]any `json:"msg,omitempty"`
}

// Inbound message types.
const (
	MsgCreateRoom          = "create_room"
	MsgJoinRoom            = "join_room"
	MsgMove                = "move"
	MsgChat                = "chat"
	MsgOfferDraw           = "offer_draw"
	MsgAcceptDraw          = "accept_draw"
	MsgResign              = "resign"
	MsgRequestComputerMove = "request_computer_move"
)

// Outbound message types.
const (
	MsgRoomCreated        = "room_created"
	MsgRoomNotFound       = "room_not_found"
	MsgRoomFull           = "room_full"
	MsgPlayerJoined       = "player_joined"
	MsgPlayerLeft         = "player_left"
	MsgReceiveMessage     = "receive_message"
	MsgGameOver           = "game_over"
	MsgComputerMoveResult = "computer_move_result"
	MsgError              = "error"
)

// Conn is the coordinator's view of one connected client. The websocket
// layer implements it; tests use an in-memory fake.
type Conn interface {
	ID() string
	Send(Msg) error
}
