package network

// 消息ID定义
// 1xx: 客户端请求, 3xx: 服务端推送
const (
	MsgTypeHeartbeat = 1
	MsgTypeError     = 2

	MsgTypeJoinRoom    = 101
	MsgTypeLeaveRoom   = 102
	MsgTypeStartGame   = 103
	MsgTypeSubmitGuess = 104
	MsgTypeChat        = 105

	MsgTypeRoomState       = 301
	MsgTypePlayerJoined    = 302
	MsgTypePlayerLeft      = 303
	MsgTypeNewRound        = 304
	MsgTypePlayerSubmitted = 305
	MsgTypeGuessResult     = 306
	MsgTypeRoundEnded      = 307
	MsgTypeGameOver        = 308
	MsgTypeChatMessage     = 309
	MsgTypeOnlineCount     = 310
)
