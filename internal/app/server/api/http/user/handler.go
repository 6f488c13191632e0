package user

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"studynotes/internal/app/server/api/http/apierror"
	"studynotes/internal/app/server/api/http/middleware/auth"
	"studynotes/internal/domain/session"
	"studynotes/internal/domain/user"
)

const statusOk = "Ok"

type Handler struct {
	service    user.Servicer
	session    session.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service user.Servicer, session session.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		session:    session,
		log:        log.With("component", "user_handler"),
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.loginOp(), h.login)
	huma.Register(api, h.logoutOp(), h.logout)
}

func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	userID, err := h.service.Register(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}

	return &registerOutput{
		Body: RegisterResponse{ID: userID, Status: statusOk},
	}, nil
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*loginOutput, error) {
	u, err := h.service.Authenticate(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, apierror.From(h.log, err)
	}

	token, err := h.session.Create(ctx, u.ID)
	if err != nil {
		return nil, apierror.From(h.log, fmt.Errorf("create session: %w", err))
	}

	return &loginOutput{
		Body: LoginResponse{Token: token, Status: statusOk},
	}, nil
}

// logout отзывает сессию. Повторный выход с тем же токеном не ошибка.
func (h *Handler) logout(ctx context.Context, input *logoutInput) (*logoutOutput, error) {
	token, ok := auth.BearerToken(input.Authorization)
	if !ok {
		return nil, apierror.From(h.log, session.ErrInvalidSession)
	}
	if err := h.session.Revoke(ctx, token); err != nil {
		return nil, apierror.From(h.log, fmt.Errorf("revoke session: %w", err))
	}
	return &logoutOutput{Body: StatusResponse{Status: statusOk}}, nil
}
