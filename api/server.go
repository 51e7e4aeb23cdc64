// Package api provides the REST control surface for dnbseq
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"dnbseq/pattern"
	"dnbseq/sequencer"
)

// @title dnbseq API
// @version 1.0
// @description Remote control for the dnbseq drum & bass sequencer
// @host localhost:8080
// @BasePath /api/v1

// Server exposes one engine over HTTP.
type Server struct {
	eng *sequencer.Engine
}

// StartServer serves the control API for eng on the given port
// (blocking).
func StartServer(port int, eng *sequencer.Engine) error {
	r := newRouter(&Server{eng: eng})
	return r.Run(fmt.Sprintf(":%d", port))
}

func newRouter(s *Server) *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/snapshot", s.handleSnapshot)
		v1.GET("/patterns", s.handlePatterns)
		v1.POST("/pattern/:id", s.handleSelectPattern)
		v1.POST("/vary", s.handleVary)
		v1.POST("/reset", s.handleReset)
		v1.POST("/probability", s.handleProbability)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "dnbseq",
	})
}

// snapshotJSON mirrors sequencer.Snapshot with grid rows as strings.
type snapshotJSON struct {
	PatternID   int                `json:"patternId"`
	PatternName string             `json:"patternName"`
	StepCount   int                `json:"stepCount"`
	Step        int                `json:"step"`
	PendingID   int                `json:"pendingId"`
	Seed        int64              `json:"seed"`
	Tracks      map[string]string  `json:"tracks"`
	Probability map[string]float32 `json:"probability"`
}

func toJSON(snap sequencer.Snapshot) snapshotJSON {
	out := snapshotJSON{
		PatternID:   snap.PatternID,
		PatternName: snap.PatternName,
		StepCount:   snap.StepCount,
		Step:        snap.Step,
		PendingID:   snap.PendingID,
		Seed:        snap.Seed,
		Tracks:      make(map[string]string, pattern.NumTracks),
		Probability: make(map[string]float32, pattern.NumTracks),
	}
	for t := 0; t < pattern.NumTracks; t++ {
		track := pattern.Track(t)
		rowBytes := make([]byte, snap.StepCount)
		for s := 0; s < snap.StepCount; s++ {
			if snap.Hits[t][s] {
				rowBytes[s] = 'X'
			} else {
				rowBytes[s] = '.'
			}
		}
		out.Tracks[track.String()] = string(rowBytes)
		out.Probability[track.String()] = snap.Probability[t]
	}
	return out
}

// handleSnapshot godoc
// @Summary Current playing state
// @Description Returns the current pattern, step position, seed and probabilities
// @Tags state
// @Produce json
// @Success 200 {object} snapshotJSON
// @Router /api/v1/snapshot [get]
func (s *Server) handleSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, toJSON(s.eng.Snapshot()))
}

// handlePatterns godoc
// @Summary List the pattern catalog
// @Description Returns id, name and step count for every pattern
// @Tags state
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/patterns [get]
func (s *Server) handlePatterns(c *gin.Context) {
	type entry struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Steps int    `json:"steps"`
	}
	entries := make([]entry, pattern.Count())
	for i := range entries {
		p := pattern.Lookup(i)
		entries[i] = entry{ID: p.ID, Name: p.Name, Steps: p.Steps}
	}
	c.JSON(http.StatusOK, gin.H{"patterns": entries})
}

// handleSelectPattern godoc
// @Summary Queue a pattern change
// @Description Queues pattern id for the next loop boundary; out-of-range ids clamp to 0
// @Tags control
// @Produce json
// @Param id path int true "Pattern id (0-9)"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /api/v1/pattern/{id} [post]
func (s *Server) handleSelectPattern(c *gin.Context) {
	var id int
	if _, err := fmt.Sscanf(c.Param("id"), "%d", &id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pattern id must be an integer"})
		return
	}
	s.eng.SelectPattern(id)
	c.JSON(http.StatusOK, gin.H{"queued": s.eng.PendingPattern()})
}

type varyRequest struct {
	Strategy string `json:"strategy"` // toggle, seeded, copy, slide, remove, swap
	Seed     *int64 `json:"seed,omitempty"`
}

// handleVary godoc
// @Summary Mutate the current pattern
// @Description Applies a variation strategy to the base pattern; the snare backbeat is preserved
// @Tags control
// @Accept json
// @Produce json
// @Success 200 {object} snapshotJSON
// @Failure 400 {object} map[string]string
// @Router /api/v1/vary [post]
func (s *Server) handleVary(c *gin.Context) {
	var req varyRequest
	// An empty body means the default strategy.
	_ = c.ShouldBindJSON(&req)
	if req.Seed != nil {
		s.eng.VarySeeded(*req.Seed)
		c.JSON(http.StatusOK, toJSON(s.eng.Snapshot()))
		return
	}

	var strat sequencer.Strategy
	switch req.Strategy {
	case "", "toggle":
		strat = sequencer.StrategyToggle
	case "seeded":
		strat = sequencer.StrategySeeded
	case "copy":
		strat = sequencer.StrategyCopyTrack
	case "slide":
		strat = sequencer.StrategySlide
	case "remove":
		strat = sequencer.StrategyRemove
	case "swap":
		strat = sequencer.StrategySwap
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown strategy: " + req.Strategy})
		return
	}
	s.eng.Vary(strat)
	c.JSON(http.StatusOK, toJSON(s.eng.Snapshot()))
}

// handleReset godoc
// @Summary Restore the base pattern
// @Description Sets current := base, discarding all mutations
// @Tags control
// @Produce json
// @Success 200 {object} snapshotJSON
// @Router /api/v1/reset [post]
func (s *Server) handleReset(c *gin.Context) {
	s.eng.ResetToDefault()
	c.JSON(http.StatusOK, toJSON(s.eng.Snapshot()))
}

type probabilityRequest struct {
	Track string  `json:"track"` // Kick, Snare, Ghost
	Value float32 `json:"value"` // 0-1
}

// handleProbability godoc
// @Summary Set a track's trigger probability
// @Description Sets the per-track probability in [0,1]; the hi-hat is not gateable
// @Tags control
// @Accept json
// @Produce json
// @Success 200 {object} map[string]float32
// @Failure 400 {object} map[string]string
// @Router /api/v1/probability [post]
func (s *Server) handleProbability(c *gin.Context) {
	var req probabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var track pattern.Track
	switch req.Track {
	case "Kick", "kick":
		track = pattern.Kick
	case "Snare", "snare":
		track = pattern.Snare
	case "Ghost", "ghost":
		track = pattern.Ghost
	case "HiHat", "hihat":
		c.JSON(http.StatusBadRequest, gin.H{"error": "the hi-hat always fires"})
		return
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown track: " + req.Track})
		return
	}
	s.eng.SetProbability(track, req.Value)
	c.JSON(http.StatusOK, gin.H{req.Track: s.eng.Probability(track)})
}
