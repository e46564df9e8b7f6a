package service

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 8192
	sendBufferSize = 256
)

// Client 代表一個 WebSocket 客戶端連接
type Client struct {
	ID       string          // 連線 ID，用來在廣播時排除自己
	Conn     *websocket.Conn // WebSocket 連接
	User     Identity        // 已驗證的使用者
	SendChan chan Event      // 消息發送通道，用於異步傳送消息

	roomCode string // 受 clientsMux 保護
}

// MessageHandler 處理客戶端送來的一則訊息
type MessageHandler func(client *Client, message []byte)

// WebSocketService 管理所有的 WebSocket 連接和消息傳遞
type WebSocketService struct {
	clients    map[string]map[*Client]bool // 兩層 map: 房間代碼 -> client -> bool
	clientsMux sync.RWMutex
	log        *slog.Logger
}

// NewWebSocketService 創建並初始化新的 WebSocket 服務
func NewWebSocketService(log *slog.Logger) *WebSocketService {
	if log == nil {
		log = slog.Default()
	}
	return &WebSocketService{
		clients: make(map[string]map[*Client]bool),
		log:     log,
	}
}

// NewClient 建立尚未加入任何房間的客戶端
func NewClient(conn *websocket.Conn, user Identity) *Client {
	return &Client{
		ID:       uuid.NewString(),
		Conn:     conn,
		User:     user,
		SendChan: make(chan Event, sendBufferSize),
	}
}

// HandleConnection 加入房間後處理連線直到斷線為止
// onJoined 在開始讀取訊息前呼叫，用來送出初始狀態
func (s *WebSocketService) HandleConnection(client *Client, roomCode string, onJoined func(*Client), onMessage MessageHandler) {
	s.Join(client, roomCode)

	// 確保連接關閉時清理資源
	defer func() {
		s.removeClient(client)
		client.Conn.Close()
		close(client.SendChan)
	}()

	go s.writePump(client)
	if onJoined != nil {
		onJoined(client)
	}
	s.readPump(client, onMessage)
}

// readPump 持續監聽並處理從客戶端接收的消息
func (s *WebSocketService) readPump(client *Client, onMessage MessageHandler) {
	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warn("websocket unexpected close", "client", client.ID, "error", err)
			}
			return
		}
		onMessage(client, message)
	}
}

// writePump 處理向客戶端發送消息的邏輯
func (s *WebSocketService) writePump(client *Client) {
	// 設置心跳檢查計時器
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-client.SendChan:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				s.log.Error("event encoding error", "type", ev.Type, "error", err)
				continue
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			// 發送心跳包
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// BroadcastToRoom 向房間內的所有客戶端廣播消息
func (s *WebSocketService) BroadcastToRoom(code string, ev Event) {
	s.BroadcastToRoomExcept(code, ev, "")
}

// BroadcastToRoomExcept 廣播給房間內除了 exceptClientID 以外的客戶端
// 在讀鎖內送出，離線中的客戶端不會收到已關閉的通道
func (s *WebSocketService) BroadcastToRoomExcept(code string, ev Event, exceptClientID string) {
	var slow []*Client

	s.clientsMux.RLock()
	for client := range s.clients[code] {
		if client.ID == exceptClientID {
			continue
		}
		select {
		case client.SendChan <- ev:
		default:
			// 客戶端消息隊列已滿
			slow = append(slow, client)
		}
	}
	s.clientsMux.RUnlock()

	for _, client := range slow {
		s.log.Warn("dropping slow websocket client", "room", code, "client", client.ID)
		s.removeClient(client)
		client.Conn.Close()
	}
}

// Send 只送給單一客戶端
func (s *WebSocketService) Send(client *Client, ev Event) {
	s.clientsMux.RLock()
	defer s.clientsMux.RUnlock()

	if !s.clients[client.roomCode][client] {
		return
	}
	select {
	case client.SendChan <- ev:
	default:
		s.log.Warn("client send buffer full", "client", client.ID)
	}
}

// Join 把客戶端移到指定房間
func (s *WebSocketService) Join(client *Client, code string) {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()

	s.detach(client)
	if s.clients[code] == nil {
		s.clients[code] = make(map[*Client]bool)
	}
	s.clients[code][client] = true
	client.roomCode = code
}

// RoomOf 客戶端目前所在的房間代碼
func (s *WebSocketService) RoomOf(client *Client) string {
	s.clientsMux.RLock()
	defer s.clientsMux.RUnlock()
	return client.roomCode
}

// removeClient 安全地移除客戶端連接
func (s *WebSocketService) removeClient(client *Client) {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()
	s.detach(client)
}

func (s *WebSocketService) detach(client *Client) {
	if clients, ok := s.clients[client.roomCode]; ok {
		delete(clients, client)
		// 如果房間空了，刪除房間
		if len(clients) == 0 {
			delete(s.clients, client.roomCode)
		}
	}
}

// GetRoomClients 獲取指定房間的在線客戶端數量
func (s *WebSocketService) GetRoomClients(code string) int {
	s.clientsMux.RLock()
	defer s.clientsMux.RUnlock()

	return len(s.clients[code])
}
