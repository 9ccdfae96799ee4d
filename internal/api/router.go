package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gorc/internal/directory"
	"gorc/internal/dispatcher"
	"gorc/internal/logger"
	"gorc/internal/middleware"
	ws "gorc/internal/websocket"
)

// Router exposes read-only views over the directory plus the websocket
// attach point. Room names appear in paths without their '#' prefix.
type Router struct {
	dir  *directory.Directory
	disp *dispatcher.Dispatcher
	log  *logger.Logger
	rl   *middleware.IPRateLimiter
}

func NewRouter(dir *directory.Directory, disp *dispatcher.Dispatcher, log *logger.Logger) *Router {
	return &Router{
		dir:  dir,
		disp: disp,
		log:  log,
		rl:   middleware.NewIPRateLimiter(middleware.DefaultRateLimit),
	}
}

func (r *Router) RegisterRoutes(router *gin.Engine) {
	router.GET("/hc", HealthCheckHandler)

	limited := router.Group("/")
	limited.Use(r.rl.Limit())
	limited.GET("/rooms", r.ListRoomsHandler)
	limited.GET("/rooms/:name/users", r.RoomUsersHandler)
	limited.GET("/users", r.ListUsersHandler)
	limited.GET("/ws", r.WebsocketHandler)
}

func HealthCheckHandler(c *gin.Context) {
	c.String(http.StatusOK, "Running")
}

func (r *Router) ListRoomsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": r.dir.ListRooms()})
}

func (r *Router) RoomUsersHandler(c *gin.Context) {
	room := "#" + c.Param("name")
	users, err := r.dir.ListUsersIn(room)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": room + " does not exist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room, "users": users})
}

func (r *Router) ListUsersHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": r.dir.ListAllUsers()})
}

// WebsocketHandler attaches a websocket user. The requested user id comes
// in as ?name=; the session blocks here until the peer goes away.
func (r *Router) WebsocketHandler(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" || strings.ContainsAny(name[:1], "/#@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid name query parameter is required"})
		return
	}
	ws.Serve(c.Writer, c.Request, name, r.dir, r.disp, r.log)
}
