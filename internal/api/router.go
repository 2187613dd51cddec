package api

import (
	"job-portal/internal/api/handlers"
	"job-portal/internal/api/middleware"
	"job-portal/internal/domain"
	"job-portal/pkg/logger"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const accessLogFormat = `{"time":"${time_rfc3339}","id":"${id}","remote_ip":"${remote_ip}","method":"${method}","uri":"${uri}","status":${status},"error":"${error}","latency_human":"${latency_human}","bytes_in":${bytes_in},"bytes_out":${bytes_out}}` + "\n"

type RouterDeps struct {
	WebSocket      *handlers.WebSocketHandlers
	System         *handlers.SystemHandlers
	Notifications  *handlers.NotificationHandler
	Verifier       domain.IdentityVerifier
	AllowedOrigins []string
	Log            logger.Logger
}

// NewRouter builds the root mux router. The socket endpoint, health and stats live on
// mux directly; the dispatch API is an echo app mounted at /api/v1.
func NewRouter(deps RouterDeps) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.CORSWithOrigins(deps.AllowedOrigins, deps.Log))

	router.HandleFunc("/ws", deps.WebSocket.HandleConnection)
	router.HandleFunc("/health", deps.System.Health).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/stats", deps.System.Stats).Methods(http.MethodGet, http.MethodOptions)

	router.PathPrefix("/api/v1").Handler(newAPI(deps))

	return router
}

func newAPI(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RequestID())
	e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{Format: accessLogFormat}))
	e.Use(echomw.Recover())

	api := e.Group("/api/v1", middleware.RequireRole(deps.Verifier, deps.Log, domain.RoleAdmin, domain.RoleService))
	deps.Notifications.Register(api)

	return e
}
