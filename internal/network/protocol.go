package network

import (
	"encoding/json"
	"time"

	"skycycle/internal/environment"
)

type MessageType string

const (
	MessageHello      MessageType = "hello"
	MessageKeepAlive  MessageType = "keepAlive"
	MessageFrame      MessageType = "frame"
	MessageClockQuery MessageType = "clockQuery"
	MessageClockReply MessageType = "clockReply"
)

type Envelope struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Seq       uint64          `json:"seq"`
	Payload   json.RawMessage `json:"payload"`
}

type Hello struct {
	ServerID string `json:"serverId"`
	Listen   string `json:"listen"`
}

type KeepAlive struct {
	ServerID string    `json:"serverId"`
	Time     time.Time `json:"time"`
}

// FrameUpdate carries one engine frame to a remote consumer.
type FrameUpdate struct {
	ServerID string            `json:"serverId"`
	Tick     uint64            `json:"tick"`
	Frame    environment.Frame `json:"frame"`
}

type ClockQuery struct {
	RequestID uint64 `json:"requestId"`
}

type ClockReply struct {
	RequestID   uint64  `json:"requestId"`
	ServerID    string  `json:"serverId"`
	Hours       int     `json:"hours"`
	Minutes     int     `json:"minutes"`
	Days        int     `json:"days"`
	MinuteOfDay float64 `json:"minuteOfDay"`
	Phase       string  `json:"phase"`
}

func Encode(msg Envelope) ([]byte, error) {
	return json.Marshal(msg)
}

func Decode(data []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(data, &env)
	return env, err
}

// Unpack decodes an envelope payload into v.
func (e Envelope) Unpack(v any) error {
	return json.Unmarshal(e.Payload, v)
}
