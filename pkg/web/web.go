package web

import (
	"time"

	rootapi "github.com/ferama/rexpect/pkg/web/api/root"
	sessionapi "github.com/ferama/rexpect/pkg/web/api/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the api handler
func NewRouter(isDev bool, info *rootapi.Info) *gin.Engine {
	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET"},
		AllowHeaders:     []string{"Content-Type, Origin"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	rootapi.Routes(info, r.Group("/api"))
	sessionapi.Routes(r.Group("/api/sessions"))
	return r
}

// StartServer serves the api on conf.ListenAddress. It blocks.
func StartServer(isDev bool, info *rootapi.Info, conf *WebConf) error {
	return NewRouter(isDev, info).Run(conf.ListenAddress)
}
