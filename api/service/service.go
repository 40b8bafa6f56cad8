package service

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/photon-storage/sth-explorer/database/store"
	"github.com/photon-storage/sth-explorer/sth"
)

// Service defines an instance of service that handles monitor and
// dashboard requests.
type Service struct {
	ingester   *sth.Ingester
	checker    *sth.Checker
	aggregator *sth.Aggregator
	now        func() time.Time
}

// New creates a new service instance.
func New(db *gorm.DB) *Service {
	return NewWithStore(store.New(db), time.Now)
}

// NewWithStore creates a service over an arbitrary attestation store
// using now as the clock.
func NewWithStore(st sth.Store, now func() time.Time) *Service {
	checker := sth.NewChecker(st)
	return &Service{
		ingester:   sth.NewIngester(st, now),
		checker:    checker,
		aggregator: sth.NewAggregator(st, checker),
		now:        now,
	}
}

type pingResp struct {
	Pong string `json:"pong"`
}

func (s *Service) Ping(_ *gin.Context) (*pingResp, error) {
	return &pingResp{Pong: "pong"}, nil
}
