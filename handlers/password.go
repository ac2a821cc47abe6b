package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"attendly_console/api"
	"attendly_console/models"
)

type PasswordHandler struct {
	passwords *api.PasswordAPI
}

func NewPasswordHandler(passwords *api.PasswordAPI) *PasswordHandler {
	return &PasswordHandler{passwords: passwords}
}

func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		respondError(c, models.NewValidationError("email", "Email is required"))
		return
	}

	resp, err := h.passwords.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	msg := resp.Message
	if msg == "" {
		msg = "If an account exists for that email, a reset link has been sent."
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

type resetPasswordForm struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var form resetPasswordForm
	if !bindJSON(c, &form) {
		return
	}
	if form.Token == "" {
		form.Token = c.Query("token")
	}
	if err := models.ValidatePasswordReset(form.Token, form.Password, form.ConfirmPassword); err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.passwords.ResetPassword(c.Request.Context(), form.Token, form.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	msg := resp.Message
	if msg == "" {
		msg = "Password reset successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "redirect": "/"})
}

type changePasswordForm struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *PasswordHandler) ChangePassword(c *gin.Context) {
	var form changePasswordForm
	if !bindJSON(c, &form) {
		return
	}
	if form.CurrentPassword == "" {
		respondError(c, models.NewValidationError("current_password", "Current password is required"))
		return
	}
	if len(form.NewPassword) < models.MinPasswordLength {
		respondError(c, models.NewValidationError("new_password", "Password must be at least 6 characters"))
		return
	}
	if form.NewPassword != form.ConfirmPassword {
		respondError(c, models.NewValidationError("confirm_password", "Passwords do not match"))
		return
	}

	resp, err := h.passwords.ChangePassword(c.Request.Context(), form.CurrentPassword, form.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}

	msg := resp.Message
	if msg == "" {
		msg = "Password changed"
	}
	render(c, http.StatusOK, gin.H{"message": msg})
}
