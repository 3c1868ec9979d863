package handler

import (
	"ShareVault/config"
	"ShareVault/internal/metrics"
	"ShareVault/internal/service"
	"ShareVault/internal/storage"
	"ShareVault/internal/task"
	"ShareVault/utils"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Download streams a shared file. The view is consumed before any byte
// leaves the process: a client that disconnects mid-stream has still paid
// its view.
func Download(c *gin.Context) {
	token := c.Param("token")

	file, link, err := service.ResolveAndConsume(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
			return
		}
		// Every other failure mode looks like a missing token.
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	metrics.DownloadsServed.Inc()
	task.PublishAccessEvent(task.AccessEvent{
		ShareLinkID: link.ID,
		FileID:      file.ID,
		OwnerID:     file.OwnerID,
		Filename:    file.Filename,
		RemoteAddr:  c.ClientIP(),
		UserAgent:   c.Request.UserAgent(),
		AccessedAt:  time.Now(),
	})

	stat, err := storage.Default.StatObject(c.Request.Context(), file.BucketName, file.ObjectName)
	if err != nil {
		// A live File row without its blob is storage drift, not a server
		// fault worth a 500.
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	object, _, err := storage.Default.GetObject(c.Request.Context(), file.BucketName, file.ObjectName)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
		return
	}
	defer object.Close()

	displayName := file.Filename
	if override := strings.TrimSpace(c.Query("filename")); override != "" {
		displayName = override
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = stat.ContentType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Disposition", utils.ContentDisposition(displayName))
	c.Header("Content-Type", contentType)
	if stat.Size >= 0 {
		c.Header("Content-Length", fmt.Sprintf("%d", stat.Size))
	}
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)

	chunk := config.AppConfig.DownloadChunkSize
	if chunk <= 0 {
		chunk = 512 * 1024
	}
	buf := make([]byte, chunk)
	if _, err := io.CopyBuffer(c.Writer, object, buf); err != nil {
		// Headers are gone; nothing to send. Usually the client went away.
		log.Printf("download: stream aborted token=%s: %v", token, err)
	}
}
