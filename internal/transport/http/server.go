package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"juin_store/internal/domain/models"
	"juin_store/internal/lib/logger/sl"
	"juin_store/internal/metrics"
	tokensvc "juin_store/internal/services/token_service"
	"juin_store/internal/storage"
	"juin_store/internal/transport/http/dto/request"
	"juin_store/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

type TokenService interface {
	GenerateTokenPair(ctx context.Context, account models.Account) (models.TokenPair, error)
	ReissueAccessToken(ctx context.Context, refreshToken string) (string, error)
}

type AccountService interface {
	ByIdentification(ctx context.Context, identification string) (models.Account, error)
}

type Routers struct {
	log            *slog.Logger
	TokenService   TokenService
	AccountService AccountService
}

func NewRouter(log *slog.Logger, tokenService TokenService, accountService AccountService) *Routers {
	return &Routers{
		log:            log,
		TokenService:   tokenService,
		AccountService: accountService,
	}
}

// IssueTokens mints an access/refresh pair for an already-authenticated
// identification, replacing any previous refresh token on file. The
// authentication step itself lives outside this service.
func (r *Routers) IssueTokens(c echo.Context) error {
	const op = "http.routers.IssueTokens"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.IssueTokensRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid issue request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	account, err := r.AccountService.ByIdentification(c.Request().Context(), req.Identification)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
		}
		log.Error("account lookup failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	pair, err := r.TokenService.GenerateTokenPair(c.Request().Context(), account)
	if err != nil {
		log.Error("failed to generate token pair", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	metrics.RefreshTokenRotationsTotal.Inc()

	return c.JSON(http.StatusOK, response.SuccessResponse(pair))
}

// Reissue exchanges a live refresh token for a fresh access token. Every
// protocol failure maps to the same 401 body.
func (r *Routers) Reissue(c echo.Context) error {
	const op = "http.routers.Reissue"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.ReissueRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	accessToken, err := r.TokenService.ReissueAccessToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, tokensvc.ErrInvalidRefreshToken) {
			metrics.TokenReissuesTotal.WithLabelValues("rejected").Inc()
			return c.JSON(http.StatusUnauthorized, response.ErrInvalidRefreshToken)
		}
		metrics.TokenReissuesTotal.WithLabelValues("error").Inc()
		log.Error("reissue failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	metrics.TokenReissuesTotal.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]string{
		"access_token": accessToken,
	}))
}

func (r *Routers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]string{"status": "ok"}))
}
