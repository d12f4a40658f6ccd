package sessionapi

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/ferama/rexpect/pkg/script"
	"github.com/gin-gonic/gin"
)

// Routes registers the session endpoints
func Routes(router *gin.RouterGroup) {
	r := &sessionRoutes{}

	router.GET("/", r.get)
	router.GET("/:session-id", r.get)
}

type sessionRoutes struct {
}

func (r *sessionRoutes) get(c *gin.Context) {
	if c.Param("session-id") == "" {
		res := []responseItem{}
		for id, s := range script.SessionRegistry().GetAll() {
			res = append(res, responseItem{
				ID:    id,
				Stats: s.Stats(),
			})
		}
		sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
		c.JSON(http.StatusOK, res)
		return
	}

	sessionID, err := strconv.Atoi(c.Param("session-id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}
	s, err := script.SessionRegistry().GetByID(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, responseItem{
		ID:    sessionID,
		Stats: s.Stats(),
	})
}
