package service

import (
	"github.com/gin-gonic/gin"

	"github.com/photon-storage/sth-explorer/sth"
)

// Stats handles the /stats request. The whole report is computed against
// a single instant taken when the request arrives.
func (s *Service) Stats(c *gin.Context) (*sth.Report, error) {
	return s.aggregator.Snapshot(c.Request.Context(), s.now())
}
