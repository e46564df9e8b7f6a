package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"debate_arena/internal/middleware"
	"debate_arena/internal/service"
)

// respondError 依服務層錯誤決定 HTTP 狀態碼
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrExternalService):
		status = http.StatusBadGateway
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		// 內部錯誤只記錄，不回傳細節
		_ = c.Error(err)
		msg = "internal server error"
	}
	c.JSON(status, gin.H{"error": msg, "code": service.ErrorCode(err)})
}

// currentUser 取出 AuthMiddleware 驗證過的使用者
func currentUser(c *gin.Context) service.Identity {
	return service.Identity{
		UserID:   c.GetUint(middleware.ContextUserID),
		Username: c.GetString(middleware.ContextUsername),
	}
}

// parseID 解析路徑上的數字 id，失敗時直接回應 400
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
