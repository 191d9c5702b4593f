package dto

// FeedClientMsg 客户端通过 websocket 发送的订阅指令
type FeedClientMsg struct {
	Action string `json:"action"` // subscribe | unsubscribe
	Table  string `json:"table"`
	Filter string `json:"filter,omitempty"`
}

// FeedServerMsg 推送给客户端的消息
type FeedServerMsg struct {
	Type   string      `json:"type"` // snapshot | change | subscribed | unsubscribed | error
	Table  string      `json:"table,omitempty"`
	Filter string      `json:"filter,omitempty"`
	Event  string      `json:"event,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}
