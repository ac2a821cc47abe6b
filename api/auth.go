package api

import (
	"context"
	"net/http"

	"attendly_console/client"
	"attendly_console/models"
)

type AuthAPI struct {
	c Caller
}

func NewAuthAPI(c Caller) *AuthAPI {
	return &AuthAPI{c: c}
}

func (a *AuthAPI) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	err := a.c.Do(ctx, client.Request{
		Method:         http.MethodPost,
		Path:           "/auth/login",
		Body:           models.LoginRequest{Email: email, Password: password},
		Fallback:       "Login failed",
		DetailFallback: "Invalid credentials",
		Public:         true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AuthAPI) Register(ctx context.Context, req models.RegisterRequest) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	err := a.c.Do(ctx, client.Request{
		Method:         http.MethodPost,
		Path:           "/auth/register",
		Body:           req,
		Fallback:       "Registration failed",
		DetailFallback: "Could not create account",
		Public:         true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AuthAPI) Users(ctx context.Context) (models.Employees, error) {
	var users models.Employees
	if err := a.c.Do(ctx, client.Request{Path: "/auth/users"}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (a *AuthAPI) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := a.c.Do(ctx, client.Request{Path: "/auth/me"}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *AuthAPI) AddEmployee(ctx context.Context, req models.AddEmployeeRequest) (*models.AddEmployeeResponse, error) {
	var resp models.AddEmployeeResponse
	err := a.c.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/auth/add-employee",
		Body:   req,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
