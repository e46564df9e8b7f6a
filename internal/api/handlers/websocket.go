package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/gorilla/websocket"

	"debate_arena/internal/models"
	"debate_arena/internal/service"
)

const commandTimeout = 15 * time.Second

// 定義 WebSocket 升級器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 前端與 API 分開部署，origin 由反向代理把關
	},
}

// inbound 客戶端送來的指令
type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// roomRef 指令可以帶上房間代碼，必須與連線所在的房間相同
type roomRef struct {
	RoomCode string `json:"room_code"`
}

func (r roomRef) code() string { return r.RoomCode }

type joinCommand struct {
	RoomCode string `json:"room_code" binding:"required"`
}

type claimSeatCommand struct {
	roomRef
	Side models.Side `json:"side" binding:"required"`
	Seat int         `json:"seat" binding:"required,min=1"`
}

type submitArgumentCommand struct {
	roomRef
	Content string      `json:"content" binding:"required"`
	Side    models.Side `json:"side" binding:"required"`
	Round   int         `json:"round" binding:"required,min=1"`
}

type endTurnCommand struct {
	roomRef
	CurrentSide models.Side `json:"current_side" binding:"required"`
	CurrentSeat int         `json:"current_seat" binding:"required,min=1"`
}

type castVoteCommand struct {
	roomRef
	Round int         `json:"round" binding:"required,min=1"`
	Side  models.Side `json:"side" binding:"required"`
}

type tagFallacyCommand struct {
	roomRef
	ArgumentID uint               `json:"argument_id" binding:"required"`
	Type       models.FallacyType `json:"type" binding:"required"`
	Text       string             `json:"text"`
}

type typingCommand struct {
	roomRef
	Text string `json:"text"`
}

// WebSocketHandler 處理 WebSocket 連接與房間內的指令
type WebSocketHandler struct {
	hub         *service.WebSocketService
	roomService *service.RoomService
	voteService *service.VoteService
	log         *slog.Logger
}

// NewWebSocketHandler 創建一個新的 WebSocketHandler 實例
func NewWebSocketHandler(hub *service.WebSocketService, roomService *service.RoomService, voteService *service.VoteService, log *slog.Logger) *WebSocketHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebSocketHandler{hub: hub, roomService: roomService, voteService: voteService, log: log}
}

// HandleWebSocket 升級連線並加入房間的廣播，連上後立即送出目前狀態
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	roomID, ok := parseID(c, "id")
	if !ok {
		return
	}
	room, err := h.roomService.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}

	// 升級 HTTP 連接為 WebSocket 連接，失敗時 upgrader 已回應
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "room", room.Code, "error", err)
		return
	}

	client := service.NewClient(conn, currentUser(c))
	h.log.Debug("websocket connected", "room", room.Code, "client", client.ID, "user", client.User.UserID)
	h.hub.HandleConnection(client, room.Code, func(cl *service.Client) {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := h.sendSync(ctx, cl, room.ID); err != nil {
			h.hub.Send(cl, service.ErrorEvent("sync", err))
		}
	}, h.dispatch)
	h.log.Debug("websocket disconnected", "room", room.Code, "client", client.ID)
}

// dispatch 處理一則指令，錯誤只回給送出指令的連線
func (h *WebSocketHandler) dispatch(client *service.Client, message []byte) {
	var msg inbound
	if err := json.Unmarshal(message, &msg); err != nil {
		h.hub.Send(client, service.ErrorEvent("", fmt.Errorf("%w: malformed message", service.ErrValidation)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := h.handle(ctx, client, msg); err != nil {
		if service.ErrorCode(err) == "internal" {
			h.log.Error("websocket command failed", "command", msg.Type, "client", client.ID, "error", err)
		}
		h.hub.Send(client, service.ErrorEvent(msg.Type, err))
	}
}

func (h *WebSocketHandler) handle(ctx context.Context, client *service.Client, msg inbound) error {
	user := client.User

	if msg.Type == "join" {
		var p joinCommand
		if err := decode(msg.Payload, &p); err != nil {
			return err
		}
		res, err := h.roomService.JoinRoom(ctx, user, p.RoomCode)
		if err != nil {
			return err
		}
		h.hub.Join(client, res.Room.Code)
		h.hub.Send(client, service.Event{Type: service.EventJoined, Payload: res})
		return h.sendSync(ctx, client, res.Room.ID)
	}

	room, err := h.roomService.GetRoomByCode(ctx, h.hub.RoomOf(client))
	if err != nil {
		return err
	}

	switch msg.Type {
	case "sync":
		return h.sendSync(ctx, client, room.ID)

	case "start":
		return h.roomService.Start(ctx, user, room.ID)

	case "start_timer":
		return h.roomService.TriggerCountdown(ctx, user, room.ID)

	case "request_judgment":
		return h.roomService.RequestJudgment(ctx, user, room.ID)

	case "claim_seat":
		var p claimSeatCommand
		if err := decodeFor(msg.Payload, &p, room.Code); err != nil {
			return err
		}
		return h.roomService.ClaimSeat(ctx, user, room.ID, p.Side, p.Seat)

	case "submit_argument":
		var p submitArgumentCommand
		if err := decodeFor(msg.Payload, &p, room.Code); err != nil {
			return err
		}
		_, err := h.roomService.SubmitArgument(ctx, user, room.ID, p.Content, p.Side, p.Round)
		return err

	case "end_turn":
		var p endTurnCommand
		if err := decodeFor(msg.Payload, &p, room.Code); err != nil {
			return err
		}
		return h.roomService.EndTurn(ctx, user, room.ID, models.Speaker{Side: p.CurrentSide, Seat: p.CurrentSeat})

	case "cast_vote":
		var p castVoteCommand
		if err := decodeFor(msg.Payload, &p, room.Code); err != nil {
			return err
		}
		_, err := h.voteService.CastVote(ctx, user, room.ID, p.Round, p.Side)
		return err

	case "tag_fallacy":
		var p tagFallacyCommand
		if err := decodeFor(msg.Payload, &p, room.Code); err != nil {
			return err
		}
		_, err := h.voteService.TagFallacy(ctx, user, p.ArgumentID, p.Type, p.Text)
		return err

	case "typing":
		var p typingCommand
		if err := decodeFor(msg.Payload, &p, room.Code); err != nil {
			return err
		}
		return h.roomService.Typing(ctx, user, room.ID, client.ID, p.Text)

	default:
		return fmt.Errorf("%w: unknown command %q", service.ErrValidation, msg.Type)
	}
}

// sendSync 只回給要求的連線
func (h *WebSocketHandler) sendSync(ctx context.Context, client *service.Client, roomID uint) error {
	events, err := h.roomService.Sync(ctx, roomID)
	if err != nil {
		return err
	}
	for _, ev := range events {
		h.hub.Send(client, ev)
	}
	return nil
}

// decode 解析並以 gin 的 binding 規則驗證
func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", service.ErrValidation, err)
	}
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return fmt.Errorf("%w: %v", service.ErrValidation, err)
	}
	return nil
}

func decodeFor(raw json.RawMessage, v interface{ code() string }, current string) error {
	if err := decode(raw, v); err != nil {
		return err
	}
	if code := strings.ToUpper(strings.TrimSpace(v.code())); code != "" && code != current {
		return fmt.Errorf("%w: connection is joined to %s, not %s", service.ErrConflict, current, code)
	}
	return nil
}
