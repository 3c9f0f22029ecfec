package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notes-auth/internal/service"
)

// AuthHandler expone AuthService sobre HTTP.
type AuthHandler struct {
	logger *zap.Logger
	auth   *service.AuthService
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, auth *service.AuthService) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{logger: logger, auth: auth}
}

type emailRequest struct {
	Email string `json:"email"`
}

// Register maneja POST /api/users/create-account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, h.logger, "register", err)
		return
	}

	res, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.logger, "register", err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{
		"user":    res.Account,
		"token":   res.Token,
		"message": res.Message,
	})
}

// Login maneja POST /api/users/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, h.logger, "login", err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "login", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"user":    res.Account,
		"token":   res.Token,
		"message": res.Message,
	})
}

// VerifyOtp maneja POST /api/users/verify-otp.
func (h *AuthHandler) VerifyOtp(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Otp   string `json:"otp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, h.logger, "verify otp", err)
		return
	}

	if err := h.auth.VerifyOtp(c.Request.Context(), req.Email, req.Otp); err != nil {
		respondError(c, h.logger, "verify otp", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "OTP verified, account is now active"})
}

// ResendOtp maneja POST /api/users/resend-otp.
func (h *AuthHandler) ResendOtp(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, h.logger, "resend otp", err)
		return
	}

	if err := h.auth.ResendOtp(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, "resend otp", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "A new OTP has been sent to your email"})
}

// CheckEmail maneja POST /api/users/check-email.
func (h *AuthHandler) CheckEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, h.logger, "check email", err)
		return
	}

	if err := h.auth.CheckEmailAvailable(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, "check email", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "User does not exist"})
}

// CheckUserExists maneja POST /api/users/check-user-exists.
func (h *AuthHandler) CheckUserExists(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, h.logger, "check user exists", err)
		return
	}

	status, err := h.auth.CheckAccountExists(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, h.logger, "check user exists", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"exists":   status.Exists,
		"verified": status.Verified,
	})
}

// CheckVerified maneja GET /api/users/check-verified?email=.
func (h *AuthHandler) CheckVerified(c *gin.Context) {
	verified, err := h.auth.CheckVerified(c.Request.Context(), c.Query("email"))
	if err != nil {
		respondError(c, h.logger, "check verified", err)
		return
	}
	message := "User is not verified"
	if verified {
		message = "User is verified"
	}
	respondOK(c, http.StatusOK, gin.H{"verified": verified, "message": message})
}

// GetUser maneja GET /api/users/get-user para el dueno del token.
func (h *AuthHandler) GetUser(c *gin.Context) {
	accountID, _ := GetAccountID(c)
	account, err := h.auth.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, h.logger, "get user", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": account, "message": "User retrieved successfully"})
}

// UpdateUser maneja PUT /api/users/update-user para el dueno del token.
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	var req struct {
		FullName *string `json:"full_name"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, h.logger, "update user", err)
		return
	}

	accountID, _ := GetAccountID(c)
	account, err := h.auth.UpdateProfile(c.Request.Context(), accountID, service.UpdateProfileInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.logger, "update user", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": account, "message": "User updated successfully"})
}
