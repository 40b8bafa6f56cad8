package service

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/photon-storage/sth-explorer/api/pagination"
	"github.com/photon-storage/sth-explorer/sth"
)

type submitResp struct {
	*sth.Attestation
	New bool `json:"new"`
}

// StatusCode reports 201 for newly stored attestations.
func (r *submitResp) StatusCode() int {
	if r.New {
		return http.StatusCreated
	}

	return http.StatusOK
}

// Submit handles the POST /sth request.
func (s *Service) Submit(c *gin.Context, req *sth.Submission) (*submitResp, error) {
	a, isNew, err := s.ingester.Submit(c.Request.Context(), req)
	if err != nil {
		return nil, err
	}

	return &submitResp{
		Attestation: a,
		New:         isNew,
	}, nil
}

type logQuery struct {
	LogID string `form:"log_id" binding:"required"`
}

type latestResp struct {
	LogID     string `json:"log_id"`
	TreeSize  uint64 `json:"tree_size"`
	RootHash  string `json:"root_hash"`
	Timestamp uint64 `json:"timestamp"`
}

// Latest handles the /latest request.
func (s *Service) Latest(c *gin.Context, req *logQuery) (*latestResp, error) {
	a, err := s.ingester.Latest(c.Request.Context(), req.LogID)
	if err != nil {
		return nil, err
	}

	return &latestResp{
		LogID:     a.LogID,
		TreeSize:  a.TreeSize,
		RootHash:  a.RootHash,
		Timestamp: a.Timestamp,
	}, nil
}

// STHs handles the /sths request.
func (s *Service) STHs(
	c *gin.Context,
	req *logQuery,
	page *pagination.Query,
) (*pagination.Result, error) {
	rows, total, err := s.ingester.List(
		c.Request.Context(),
		req.LogID,
		page.Start,
		page.Limit,
	)
	if err != nil {
		return nil, err
	}

	return &pagination.Result{
		Data:  rows,
		Total: total,
	}, nil
}
