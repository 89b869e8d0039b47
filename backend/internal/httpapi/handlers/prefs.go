package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"previewServer/backend/internal/prefs"
)

type PrefsHandler struct {
	store *prefs.Store
}

func NewPrefsHandler(store *prefs.Store) *PrefsHandler {
	return &PrefsHandler{store: store}
}

// storageFailure maps a *StorageError to the one HTTP shape clients can
// act on; anything else is a handler bug and becomes a plain 500.
func storageFailure(c *gin.Context, err error) {
	var se *prefs.StorageError
	if errors.As(err, &se) {
		log.Printf("prefs handler: storage failure: %v", se)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORAGE_FAILED", "message": se.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL", "message": err.Error()})
}

// Get handles GET /v1/prefs/:session.
func (h *PrefsHandler) Get(c *gin.Context) {
	p, err := h.store.Load(c.Request.Context(), c.Param("session"))
	if err != nil {
		storageFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Put handles PUT /v1/prefs/:session. The stored record is stamped with
// the current schema version and a fresh lastUpdated.
func (h *PrefsHandler) Put(c *gin.Context) {
	var p prefs.Preferences
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_PREFS", "message": err.Error()})
		return
	}
	p = prefs.Migrate(p, prefs.CurrentVersion)
	if err := h.store.Save(c.Request.Context(), c.Param("session"), p); err != nil {
		storageFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /v1/prefs/:session.
func (h *PrefsHandler) Delete(c *gin.Context) {
	if err := h.store.Clear(c.Request.Context(), c.Param("session")); err != nil {
		storageFailure(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Export handles GET /v1/prefs/:session/export.
func (h *PrefsHandler) Export(c *gin.Context) {
	p, err := h.store.Load(c.Request.Context(), c.Param("session"))
	if err != nil {
		storageFailure(c, err)
		return
	}
	doc, err := prefs.Export(p)
	if err != nil {
		storageFailure(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", []byte(doc))
}

// Import handles POST /v1/prefs/:session/import. The body must be a full
// Export-shaped document; partial documents are rejected, never stored.
func (h *PrefsHandler) Import(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_BODY", "message": err.Error()})
		return
	}
	p, err := prefs.Import(string(body))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_IMPORT", "message": err.Error()})
		return
	}
	p = prefs.Migrate(p, prefs.CurrentVersion)
	if err := h.store.Save(c.Request.Context(), c.Param("session"), p); err != nil {
		storageFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
