package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/jobhunter-dashboard/internal/session"
	"github.com/yourusername/jobhunter-dashboard/internal/view"
)

type AuthHandler struct {
	login *view.Login
	sess  session.Reader
}

func NewAuthHandler(login *view.Login, sess session.Reader) *AuthHandler {
	return &AuthHandler{login: login, sess: sess}
}

// Session reports the lifecycle state and the signed-in user, if any
// GET /session
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state": h.sess.State(),
		"user":  h.sess.User(),
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	user, err := h.login.Submit(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.login.SignOut(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
