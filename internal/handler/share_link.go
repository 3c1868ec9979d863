package handler

import (
	"ShareVault/config"
	"ShareVault/internal/dto"
	"ShareVault/internal/service"
	"ShareVault/model"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CreateShare mints a new share link for a file.
func CreateShare(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req dto.CreateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	link, err := service.CreateShare(c.Request.Context(), principal, req.FileID, req.ExpireDays, req.MaxViews)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shareResponse(c, link))
}

// EnsureShare returns an existing usable link or creates one.
func EnsureShare(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req dto.EnsureShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	link, err := service.EnsureShare(c.Request.Context(), principal, req.FileID, req.ExpireDays, req.MaxViews, req.Reuse)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shareResponse(c, link))
}

// ShareMeta resolves a token read-only; no view is consumed.
func ShareMeta(c *gin.Context) {
	token := c.Param("token")
	link, file, err := service.GetShareMeta(c.Request.Context(), token)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ShareMetaResponse{
		Filename:    file.Filename,
		Size:        file.Size,
		ContentType: file.ContentType,
		ExpiresAt:   link.ExpiresAt,
		Views:       link.Views,
		MaxViews:    link.MaxViews,
	})
}

func shareResponse(c *gin.Context, link *model.ShareLink) dto.ShareResponse {
	return dto.ShareResponse{
		Token:     link.Token,
		ShareURL:  buildShareURL(c, link.Token),
		ExpiresAt: link.ExpiresAt,
	}
}

// buildShareURL prefers the configured base URL, falling back to the
// request's forwarded host.
func buildShareURL(c *gin.Context, token string) string {
	baseURL := strings.TrimSpace(config.AppConfig.BaseURL)
	if baseURL == "" {
		scheme := "http"
		if forwarded := strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")); forwarded != "" {
			scheme = forwarded
		} else if c.Request.TLS != nil {
			scheme = "https"
		}
		host := strings.TrimSpace(c.GetHeader("X-Forwarded-Host"))
		if host == "" {
			host = c.Request.Host
		}
		baseURL = scheme + "://" + host
	}
	return strings.TrimRight(baseURL, "/") + "/download/" + token
}
