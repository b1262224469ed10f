package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes registers all endpoints on router.
func SetupRoutes(router *gin.Engine, s *Server) {
	router.GET("/health", HealthCheck)
	if s.opts.Metrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/v1")
	{
		v1.GET("/habitats", s.HandleHabitats())
		v1.GET("/population", s.HandlePopulation())

		samples := v1.Group("/samples")
		{
			samples.POST("", s.HandleDraw())
			samples.GET("/:sampleId/csv", s.HandleSampleCSV())
		}
	}
}
