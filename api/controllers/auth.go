package controllers

import (
	"context"
	"net/http"

	"github.com/kapilraj10/pos-storefront/api/responses"
	"github.com/kapilraj10/pos-storefront/api/validators"
	"github.com/kapilraj10/pos-storefront/internal/session"
	"github.com/kapilraj10/pos-storefront/pkg/backend"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
)

type authClient interface {
	Login(ctx context.Context, params backend.LoginParams) (*backend.LoginResult, error)
	Register(ctx context.Context, params backend.RegisterParams) error
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
}

type authSessionStarter interface {
	StartAuthenticated(ctx context.Context, backendToken, rawRole string) (*session.Session, error)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	UserName string `json:"user_name,omitempty"`
}

// AuthLogin exchanges credentials for a storefront session. The backend
// token stays server-side; the client only ever sees the session JWT.
func AuthLogin(client authClient, manager authSessionStarter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := client.Login(r.Context(), backend.LoginParams{Email: payload.Email, Password: payload.Password})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, err := manager.StartAuthenticated(r.Context(), result.Token, result.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, loginResponse{Token: sess.Token, Role: sess.Role, UserName: result.UserName})
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Mobile   string `json:"mobile" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthRegister forwards a registration to the backend. The account is
// usable once OTP verification completes.
func AuthRegister(client authClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err := client.Register(r.Context(), backend.RegisterParams{
			Name:     payload.Name,
			Email:    payload.Email,
			Mobile:   payload.Mobile,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "registered"})
	}
}

type otpRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func AuthRequestOTP(client authClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload otpRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := client.RequestOTP(r.Context(), payload.Email); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "otp_sent"})
	}
}

type otpVerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

func AuthVerifyOTP(client authClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload otpVerifyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := client.VerifyOTP(r.Context(), payload.Email, payload.OTP); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "verified"})
	}
}
