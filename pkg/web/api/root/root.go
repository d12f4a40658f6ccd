package rootapi

import (
	"net/http"
	"runtime"

	"github.com/ferama/rexpect/pkg/script"
	"github.com/gin-gonic/gin"
)

type rootRoutes struct {
	info *Info
}

// Routes registers the info and stats endpoints
func Routes(info *Info, router *gin.RouterGroup) {
	r := &rootRoutes{
		info: info,
	}

	router.GET("/info", r.getInfo)
	router.GET("/stats", r.getStats)
}

func (r *rootRoutes) getInfo(c *gin.Context) {
	c.JSON(http.StatusOK, r.info)
}

func (r *rootRoutes) getStats(c *gin.Context) {
	response := &statsResponse{}
	for _, s := range script.SessionRegistry().GetAll() {
		st := s.Stats()
		response.CountSessions++
		if st.Closed {
			response.CountClosedSessions++
		}
		response.BytesRead += st.BytesRead
		response.Matches += st.Matches
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	response.NumGoroutine = runtime.NumGoroutine()
	response.MemTotal = m.Sys
	c.JSON(http.StatusOK, response)
}
