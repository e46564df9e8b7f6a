package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"debate_arena/internal/service"
)

// MotionHandler 處理辯題相關的請求
type MotionHandler struct {
	motionService *service.MotionService
}

func NewMotionHandler(motionService *service.MotionService) *MotionHandler {
	return &MotionHandler{motionService: motionService}
}

// CreateMotion 新增辯題
func (h *MotionHandler) CreateMotion(c *gin.Context) {
	var input struct {
		Topic       string `json:"topic" binding:"required,max=500"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	motion, err := h.motionService.CreateMotion(c.Request.Context(), currentUser(c), input.Topic, input.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, motion)
}

func (h *MotionHandler) ListMotions(c *gin.Context) {
	motions, err := h.motionService.ListMotions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, motions)
}

// GetMotion 辯題與使用它的公開房間
func (h *MotionHandler) GetMotion(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	motion, err := h.motionService.GetMotion(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, motion)
}
