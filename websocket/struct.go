package websocket

const (
	WEB_SOCKET_STATE_CONNECTING = "ws_connecting"
	WEB_SOCKET_STATE_CONNECTED  = "ws_connected"
	WEB_SOCKET_STATE_STOPPING   = "ws_stopping"
	WEB_SOCKET_STATE_STOPPED    = "ws_stopped"
)
