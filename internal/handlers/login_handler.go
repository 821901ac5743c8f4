package handlers

import (
	"errors"
	"net/http"

	"dispatch-ledger/internal/auth"
	"dispatch-ledger/internal/database"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler issues tokens for the operators stored in the register.
type AuthHandler struct {
	Store  *database.Store
	Tokens *auth.Manager
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginRequest
	// 1. Validate Input JSON
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// 2. Find the user and verify the password (bcrypt)
	user, err := h.Store.Authenticate(c.Request.Context(), input.Username, input.Password)
	if errors.Is(err, database.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	// 3. Generate JWT Token
	token, err := h.Tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	// 4. Success! Return Token and Role
	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"role":     user.Role,
		"username": user.Username,
	})
}
