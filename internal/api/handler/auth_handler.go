package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/escrowbot/dashboard-api/internal/api/metrics"
	"github.com/escrowbot/dashboard-api/internal/core/ports"
)

// AuthHandler handles the two OAuth routes: the login redirect and the
// provider callback.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login redirects the browser to Discord's authorization page.
//
// @Summary      Start a Discord OAuth login
// @Tags         auth
// @Success      302
// @Router       /auth/discord [get]
func (h *AuthHandler) Login(c echo.Context) error {
	return c.Redirect(http.StatusFound, h.authService.LoginURL())
}

// Callback completes the OAuth handshake. Depending on configuration the
// response is either a plain confirmation or a redirect to the frontend
// carrying the user's guild list.
//
// @Summary      Discord OAuth callback
// @Tags         auth
// @Param        code   query  string  true   "authorization code"
// @Param        state  query  string  false  "state echoed by the provider"
// @Success      200  {string}  string
// @Success      302
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /auth/callback [get]
func (h *AuthHandler) Callback(c echo.Context) error {
	code := c.QueryParam("code")
	state := c.QueryParam("state")

	result, err := h.authService.HandleCallback(c.Request().Context(), code, state)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	if result.RedirectURL != "" {
		return c.Redirect(http.StatusFound, result.RedirectURL)
	}
	return c.String(http.StatusOK, result.Message)
}
