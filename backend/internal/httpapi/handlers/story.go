package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"previewServer/backend/internal/broadcast"
	"previewServer/backend/internal/store"
	"previewServer/backend/internal/story"
	"previewServer/backend/internal/ws"
)

// StoryHandler exposes the live story state. PUT is the editor's write
// path: updating the source is what (after the debounce window) fans the
// snapshot out to every connected surface.
type StoryHandler struct {
	source  *story.Source
	stories *store.StoryStore // nil when MySQL is not configured
}

func NewStoryHandler(source *story.Source, stories *store.StoryStore) *StoryHandler {
	return &StoryHandler{source: source, stories: stories}
}

// Get handles GET /v1/story.
func (h *StoryHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.source.Snapshot())
}

// Put handles PUT /v1/story.
func (h *StoryHandler) Put(c *gin.Context) {
	var snap story.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_STORY", "message": err.Error()})
		return
	}
	if err := h.source.Update(snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_STORY", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Save handles POST /v1/story/save/:title.
func (h *StoryHandler) Save(c *gin.Context) {
	if h.stories == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"code": "NO_STORE", "message": "story persistence not configured"})
		return
	}
	title := c.Param("title")
	if err := h.stories.Save(c.Request.Context(), title, h.source.Snapshot()); err != nil {
		log.Printf("story handler: save %q failed: %v", title, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORE_FAILED", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": title})
}

// Load handles POST /v1/story/load/:title: reads the named snapshot into
// the live source, which broadcasts it like any other edit.
func (h *StoryHandler) Load(c *gin.Context) {
	if h.stories == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"code": "NO_STORE", "message": "story persistence not configured"})
		return
	}
	title := c.Param("title")
	snap, err := h.stories.Load(c.Request.Context(), title)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"code": "UNKNOWN_STORY", "message": "no such story"})
		return
	}
	if err != nil {
		log.Printf("story handler: load %q failed: %v", title, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORE_FAILED", "message": err.Error()})
		return
	}
	if err := h.source.Update(snap); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "BAD_STORY", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// StatsHandler reports the engine's live ack bookkeeping.
type StatsHandler struct {
	engine *broadcast.Engine
	hub    *ws.Hub
}

func NewStatsHandler(engine *broadcast.Engine, hub *ws.Hub) *StatsHandler {
	return &StatsHandler{engine: engine, hub: hub}
}

// Get handles GET /v1/broadcast/stats.
func (h *StatsHandler) Get(c *gin.Context) {
	resp := gin.H{
		"generation":       h.engine.Generation(),
		"cycleDevices":     h.engine.CycleSize(),
		"pendingAcks":      h.engine.PendingAcks(),
		"pendingDeviceIds": h.engine.PendingDeviceIDs(),
		"connectedDevices": h.hub.ConnectedIDs(),
	}
	if m := h.engine.Perf(); m != nil {
		resp["perf"] = m.Stats()
	}
	c.JSON(http.StatusOK, resp)
}
