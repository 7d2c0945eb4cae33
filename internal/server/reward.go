package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Server) voidRewards(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.rewardSvc.VoidFuture(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// settleRewards triggers a settlement pass outside the schedule. The pass
// itself never reports per-reward failures to the caller.
func (s *Server) settleRewards(c *gin.Context) {
	if err := s.rewardSvc.ProcessDue(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "settlement_started"})
}
