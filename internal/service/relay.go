package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/go-redis/redis"
)

// relayMessage 在 redis 頻道上傳遞的格式
type relayMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Except  string          `json:"except,omitempty"`
}

// RedisRelay 透過 redis pub/sub 把事件送到所有實例的本地連線
// 每個房間一個頻道: prefix + 房間代碼
type RedisRelay struct {
	client *redis.Client
	prefix string
	local  *WebSocketService
	log    *slog.Logger
}

func NewRedisRelay(client *redis.Client, prefix string, local *WebSocketService, log *slog.Logger) *RedisRelay {
	if log == nil {
		log = slog.Default()
	}
	return &RedisRelay{client: client, prefix: prefix, local: local, log: log}
}

func (r *RedisRelay) BroadcastToRoom(code string, ev Event) {
	r.publish(code, ev, "")
}

func (r *RedisRelay) BroadcastToRoomExcept(code string, ev Event, exceptClientID string) {
	r.publish(code, ev, exceptClientID)
}

func (r *RedisRelay) publish(code string, ev Event, except string) {
	data, err := encodeRelay(ev, except)
	if err != nil {
		r.log.Error("encode relay message", "room", code, "type", ev.Type, "error", err)
		return
	}
	if err := r.client.Publish(r.prefix+code, data).Err(); err != nil {
		// redis 不可用時至少送給本機的連線
		r.log.Warn("redis publish failed, delivering locally", "room", code, "error", err)
		r.local.BroadcastToRoomExcept(code, ev, except)
	}
}

// Run 訂閱所有房間頻道並轉送給本機連線，直到 ctx 結束
func (r *RedisRelay) Run(ctx context.Context) error {
	ps := r.client.PSubscribe(r.prefix + "*")
	defer ps.Close()

	if _, err := ps.Receive(); err != nil {
		return err
	}
	ch := ps.Channel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.deliver(msg.Channel, msg.Payload)
		}
	}
}

func (r *RedisRelay) deliver(channel, payload string) {
	code := strings.TrimPrefix(channel, r.prefix)
	ev, except, err := decodeRelay([]byte(payload))
	if err != nil {
		r.log.Warn("drop malformed relay message", "channel", channel, "error", err)
		return
	}
	r.local.BroadcastToRoomExcept(code, ev, except)
}

func encodeRelay(ev Event, except string) ([]byte, error) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(relayMessage{Type: ev.Type, Payload: payload, Except: except})
}

func decodeRelay(data []byte) (Event, string, error) {
	var m relayMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return Event{}, "", err
	}
	return Event{Type: m.Type, Payload: m.Payload}, m.Except, nil
}
