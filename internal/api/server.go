package api

import "github.com/gin-gonic/gin"

// Serve runs the HTTP gateway until the listener fails.
func Serve(addr string, router *Router) error {
	r := gin.Default()
	router.RegisterRoutes(r)
	return r.Run(addr)
}
