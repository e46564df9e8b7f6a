package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"debate_arena/internal/api/handlers"
	"debate_arena/internal/middleware"
	"debate_arena/internal/service"
	"debate_arena/internal/utils"
)

func SetupRoutes(r *gin.Engine, services *service.Services, tokens *utils.TokenManager, log *slog.Logger) {
	// 初始化 handlers
	motionHandler := handlers.NewMotionHandler(services.Motion)
	roomHandler := handlers.NewRoomHandler(services.Room, services.Vote)
	wsHandler := handlers.NewWebSocketHandler(services.WebSocket, services.Room, services.Vote, log.With("component", "websocket"))

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 基本的健康檢查
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// 需要驗證的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware(tokens))
	{
		motions := authorized.Group("/motions")
		{
			motions.GET("", motionHandler.ListMotions)
			motions.POST("", motionHandler.CreateMotion)
			motions.GET("/:id", motionHandler.GetMotion)
		}

		// 辯論室相關
		rooms := authorized.Group("/rooms")
		{
			rooms.POST("", roomHandler.CreateRoom)
			rooms.GET("/public", roomHandler.ListPublicRooms)
			rooms.POST("/join", roomHandler.JoinRoom)
			rooms.GET("/code/:code", roomHandler.GetRoomByCode)
			rooms.GET("/:id", roomHandler.GetRoom)

			rooms.POST("/:id/leave", roomHandler.LeaveRoom)
			rooms.GET("/:id/participants", roomHandler.Participants)
			rooms.GET("/:id/arguments", roomHandler.Arguments)
			rooms.GET("/:id/votes", roomHandler.Votes)

			// 比賽中的操作都走 WebSocket
			rooms.GET("/:id/ws", wsHandler.HandleWebSocket)
		}
	}
}
