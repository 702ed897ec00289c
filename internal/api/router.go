package api

import (
	"github.com/AlfredoZC/DentiAI/internal/api/handler"
	"github.com/AlfredoZC/DentiAI/internal/api/middleware"
	"github.com/AlfredoZC/DentiAI/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(as *service.AuthService, ds *service.DiagnosisService,
	authMw *middleware.AuthMiddleware, staticDir string) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Authorization, Accept, Origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	if staticDir != "" {
		r.Static("/static", staticDir)
	}

	authHandler := handler.NewAuthHandler(as)
	r.POST("/register", authHandler.Register)
	r.POST("/token", authHandler.Token)

	diagnosisHandler := handler.NewDiagnosisHandler(ds)
	authed := r.Group("/")
	authed.Use(authMw.Authenticate())
	{
		authed.GET("/users/me", authHandler.Me)
		authed.POST("/predict", diagnosisHandler.Predict)
		authed.GET("/history", diagnosisHandler.History)
	}
	return r
}
