package handler

import (
	"ShareVault/internal/service"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// GetShareAccessLogs returns recent share access logs for the caller.
func GetShareAccessLogs(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	limit := parsePositiveInt(c.Query("limit"), 50)
	linkID := uint64(parsePositiveInt(c.Query("share_link_id"), 0))

	items, err := service.ListShareAccessLogs(principal.ID, linkID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list share access logs failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func parsePositiveInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
