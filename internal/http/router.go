package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notes-auth/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas de cuentas.
// metricsHandler es opcional; con nil no se expone /metrics.
func NewRouter(
	logger *zap.Logger,
	authH *AuthHandler,
	tokens *service.TokenIssuer,
	metricsHandler http.Handler,
) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	users := r.Group("/api/users")
	users.POST("/create-account", authH.Register)
	users.POST("/login", authH.Login)
	users.POST("/verify-otp", authH.VerifyOtp)
	users.POST("/resend-otp", authH.ResendOtp)
	users.POST("/check-email", authH.CheckEmail)
	users.POST("/check-user-exists", authH.CheckUserExists)
	users.GET("/check-verified", authH.CheckVerified)

	authed := users.Group("", TokenAuthMiddleware(tokens))
	authed.GET("/get-user", authH.GetUser)
	authed.PUT("/update-user", authH.UpdateUser)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
