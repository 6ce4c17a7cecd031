package network

// 消息ID定义: 1xx 连接层, 2xx 客户端->服务端, 3xx 服务端->客户端
const (
	MsgTypeHeartbeat = 1

	MsgTypeAction       = 201
	MsgTypeRequestState = 210

	MsgTypeStateUpdate   = 301
	MsgTypeGameEvent     = 303
	MsgTypeStringMessage = 304
	MsgTypeDisconnect    = 305
	MsgTypeGameStop      = 306
)
