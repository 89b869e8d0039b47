package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"previewServer/backend/internal/device"
)

type deviceView struct {
	device.Profile
	DisplaySize device.DisplaySize `json:"displaySize"`
}

// ListDevices handles GET /v1/devices.
func ListDevices(c *gin.Context) {
	category := c.Query("category")
	var profiles []device.Profile
	if category != "" {
		profiles = device.DevicesByCategory(device.Category(category))
	} else {
		profiles = device.AllProfiles()
	}
	out := make([]deviceView, len(profiles))
	for i, p := range profiles {
		out[i] = deviceView{Profile: p, DisplaySize: device.GetDisplaySize(p)}
	}
	c.JSON(http.StatusOK, gin.H{"devices": out})
}

// GetDevice handles GET /v1/devices/:id.
func GetDevice(c *gin.Context) {
	p, ok := device.DeviceByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"code": "UNKNOWN_DEVICE", "message": "no such device"})
		return
	}
	c.JSON(http.StatusOK, deviceView{Profile: p, DisplaySize: device.GetDisplaySize(p)})
}
