package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/photon-storage/go-common/log"

	"github.com/photon-storage/sth-explorer/api/service"
)

// Server defines an instance of a server that handles the requests of
// monitors and dashboards.
type Server struct {
	port   int
	engine *gin.Engine
}

// New returns a new instance of the server.
func New(port int, service *service.Service) *Server {
	server := &Server{
		port:   port,
		engine: gin.Default(),
	}

	server.registerRouter(service)
	return server
}

func (s *Server) registerRouter(service *service.Service) {
	s.engine.Use(handleError())
	g := s.engine.Group("sth/v1")

	g.GET("ping", s.handle(service.Ping))
	g.POST("sth", s.handle(service.Submit))
	g.GET("latest", s.handle(service.Latest))
	g.GET("sths", s.handle(service.STHs))
	g.GET("consistency", s.handle(service.Consistency))
	g.GET("stats", s.handle(service.Stats))
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() *gin.Engine {
	return s.engine
}

// Run the server
func (s *Server) Run() {
	if err := s.engine.Run(fmt.Sprintf(":%d", s.port)); err != nil {
		log.Error("run the server failed", "error", err)
		os.Exit(1)
	}
}
