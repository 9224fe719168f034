package config

import "time"

const (
	// WebSocket transport
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 512

	// SendBufferSize bounds each subscriber's outbound sink. When the
	// buffer is full the newest message is dropped for that subscriber
	// only; the room is never stalled for a slow consumer.
	SendBufferSize = 256

	// HistoryPageSize caps how many messages the history endpoint returns.
	HistoryPageSize = 100
)
