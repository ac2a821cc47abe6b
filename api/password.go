package api

import (
	"context"
	"net/http"

	"attendly_console/client"
	"attendly_console/models"
)

type PasswordAPI struct {
	c Caller
}

func NewPasswordAPI(c Caller) *PasswordAPI {
	return &PasswordAPI{c: c}
}

func (p *PasswordAPI) ForgotPassword(ctx context.Context, email string) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	err := p.c.Do(ctx, client.Request{
		Method:   http.MethodPost,
		Path:     "/auth/forgot-password",
		Body:     models.ForgotPasswordRequest{Email: email},
		Fallback: "Failed to send reset email. Please try again.",
		Public:   true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (p *PasswordAPI) ResetPassword(ctx context.Context, token, newPassword string) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	err := p.c.Do(ctx, client.Request{
		Method:   http.MethodPost,
		Path:     "/auth/reset-password",
		Body:     models.ResetPasswordRequest{Token: token, NewPassword: newPassword},
		Fallback: "Failed to reset password. The link may have expired.",
		Public:   true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (p *PasswordAPI) ChangePassword(ctx context.Context, current, newPassword string) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	err := p.c.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/auth/change-password",
		Body:   models.ChangePasswordRequest{CurrentPassword: current, NewPassword: newPassword},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
