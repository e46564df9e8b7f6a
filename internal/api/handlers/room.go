package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"debate_arena/internal/models"
	"debate_arena/internal/service"
)

// RoomHandler 處理與辯論房間相關的請求
type RoomHandler struct {
	roomService *service.RoomService
	voteService *service.VoteService
}

// NewRoomHandler 創建一個新的 RoomHandler 實例
func NewRoomHandler(roomService *service.RoomService, voteService *service.VoteService) *RoomHandler {
	return &RoomHandler{roomService: roomService, voteService: voteService}
}

// CreateRoom 處理創建新房間的請求，建立者成為主持人
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var input struct {
		MotionID uint              `json:"motion_id" binding:"required"`
		Config   models.RoomConfig `json:"config"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.roomService.CreateRoom(c.Request.Context(), currentUser(c), input.MotionID, input.Config)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// ListPublicRooms 尚未結束的公開房間
func (h *RoomHandler) ListPublicRooms(c *gin.Context) {
	rooms, err := h.roomService.ListPublicRooms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// GetRoom 處理獲取房間訊息的請求
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, ok := parseID(c, "id")
	if !ok {
		return
	}
	room, err := h.roomService.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *RoomHandler) GetRoomByCode(c *gin.Context) {
	room, err := h.roomService.GetRoomByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// JoinRoom 以房間代碼加入，已經在房間內時回傳原本的身分
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var input struct {
		RoomCode string `json:"room_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.roomService.JoinRoom(c.Request.Context(), currentUser(c), input.RoomCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// LeaveRoom 處理離開房間的請求
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	roomID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.roomService.LeaveRoom(c.Request.Context(), currentUser(c), roomID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left room"})
}

// Participants 席位表
func (h *RoomHandler) Participants(c *gin.Context) {
	roomID, ok := parseID(c, "id")
	if !ok {
		return
	}
	seats, err := h.roomService.SeatMap(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, seats)
}

// Arguments 逐字稿，包含每段的謬誤標記
func (h *RoomHandler) Arguments(c *gin.Context) {
	roomID, ok := parseID(c, "id")
	if !ok {
		return
	}
	args, err := h.voteService.Transcript(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, args)
}

// Votes 每回合的票數
func (h *RoomHandler) Votes(c *gin.Context) {
	roomID, ok := parseID(c, "id")
	if !ok {
		return
	}
	tallies, err := h.voteService.Tallies(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tallies)
}
