package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Daviipontes/Dev-Web/pkg/global"
	"github.com/Daviipontes/Dev-Web/pkg/models"
)

func (h *Handler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.Accounts.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(gin.H{"user": user.Public()}))
}

// Login stores the account email in the session cookie. The cart session is
// kept so items added before logging in survive.
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	session, _ := h.Sessions.Get(c.Request, sessionName)
	session.Values[ctxUserEmail] = user.Email
	if err := session.Save(c.Request, c.Writer); err != nil {
		slog.Error("Failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to start session", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"user": user.Public()}))
}

func (h *Handler) Logout(c *gin.Context) {
	session, _ := h.Sessions.Get(c.Request, sessionName)
	delete(session.Values, ctxUserEmail)
	if err := session.Save(c.Request, c.Writer); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
	c.JSON(http.StatusOK, global.MessageResponse("Logged out"))
}

func (h *Handler) GetProfileDetails(c *gin.Context) {
	user, err := h.Accounts.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(user.Public()))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var profile models.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.Accounts.UpdateProfile(c.Request.Context(), currentUser(c), profile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(user.Public()))
}

func (h *Handler) UpdateShippingAddress(c *gin.Context) {
	var addr models.ShippingAddress
	if err := c.ShouldBindJSON(&addr); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.Accounts.UpdateShippingAddress(c.Request.Context(), currentUser(c), addr)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(user.Public()))
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Accounts.ChangePassword(c.Request.Context(), currentUser(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.MessageResponse("Password updated"))
}
