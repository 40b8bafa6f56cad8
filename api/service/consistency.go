package service

import (
	"github.com/gin-gonic/gin"

	"github.com/photon-storage/sth-explorer/sth"
)

type consistencyQuery struct {
	LogID string `form:"log_id"`
}

type consistencyResp struct {
	Consistent bool                     `json:"consistent"`
	Results    []*sth.ConsistencyResult `json:"results"`
}

// Consistency handles the /consistency request. Without log_id every
// known log is checked.
func (s *Service) Consistency(c *gin.Context, req *consistencyQuery) (*consistencyResp, error) {
	var results []*sth.ConsistencyResult
	if req.LogID != "" {
		r, err := s.checker.Check(c.Request.Context(), req.LogID)
		if err != nil {
			return nil, err
		}
		results = []*sth.ConsistencyResult{r}
	} else {
		all, err := s.checker.CheckAll(c.Request.Context())
		if err != nil {
			return nil, err
		}
		results = all
	}

	resp := &consistencyResp{
		Consistent: true,
		Results:    results,
	}
	for _, r := range results {
		if !r.Consistent {
			resp.Consistent = false
		}
	}

	return resp, nil
}
