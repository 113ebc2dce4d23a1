package handler

import (
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Optimizer *OptimizerHandler
	Schedule  *ScheduleHandler
	Wave      *WaveHandler
	Floor     *FloorHandler

	// GeneratorLimit guards the routes that call the generator.
	GeneratorLimit gin.HandlerFunc
}

// RegisterRoutes mounts the /api/v1 routes. Nil handlers are skipped.
func RegisterRoutes(r gin.IRouter, h Handlers) {
	v1 := r.Group("/api/v1")

	if h.Optimizer != nil {
		opt := v1.Group("/seat-optimizer")
		opt.POST("/convert", h.Optimizer.HandleConvert)
		opt.POST("/payload", h.Optimizer.HandlePayload)
		if h.GeneratorLimit != nil {
			opt.POST("/preview", h.GeneratorLimit, h.Optimizer.HandlePreview)
		} else {
			opt.POST("/preview", h.Optimizer.HandlePreview)
		}
	}

	if h.Schedule != nil {
		v1.POST("/schedule/conflicts", h.Schedule.HandleConflicts)
	}

	if h.Wave != nil {
		v1.POST("/wave/calm-windows", h.Wave.HandleCalmWindows)
		v1.POST("/wave/notify", h.Wave.HandleNotify)
	}

	if h.Floor != nil {
		store := v1.Group("/stores/:storeId")
		store.GET("/days/:day/reservations", h.Floor.HandleListReservations)
		store.PUT("/days/:day/reservations", h.Floor.HandlePutReservation)
		store.GET("/tables", h.Floor.HandleGetTables)
		store.PUT("/tables", h.Floor.HandlePutTables)
		store.GET("/policy", h.Floor.HandleGetPolicy)
		store.PUT("/policy", h.Floor.HandlePutPolicy)
		store.GET("/courses", h.Floor.HandleGetCourses)
		store.PUT("/courses", h.Floor.HandlePutCourses)
		store.GET("/wave-settings", h.Floor.HandleGetWaveSettings)
		store.PUT("/wave-settings", h.Floor.HandlePutWaveSettings)
	}
}
