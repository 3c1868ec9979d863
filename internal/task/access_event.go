package task

import (
	"ShareVault/internal/mq"
	"ShareVault/internal/repo"
	"ShareVault/model"
	"context"
	"encoding/json"
	"log"
	"time"
)

// AccessEvent describes one successful gated download.
type AccessEvent struct {
	ShareLinkID uint64    `json:"share_link_id"`
	FileID      uint64    `json:"file_id"`
	OwnerID     uint64    `json:"owner_id"`
	Filename    string    `json:"filename"`
	RemoteAddr  string    `json:"remote_addr"`
	UserAgent   string    `json:"user_agent"`
	AccessedAt  time.Time `json:"accessed_at"`
}

const publishTimeout = 5 * time.Second

// PublishAccessEvent hands an event to the broker from a detached
// goroutine, fire and forget. A download must not wait on, or fail
// because of, the analytics broker.
func PublishAccessEvent(event AccessEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		client, err := mq.GetPublisher()
		if err != nil {
			log.Printf("access event: publisher unavailable: %v", err)
			return
		}
		body, err := json.Marshal(event)
		if err != nil {
			log.Printf("access event: marshal failed: %v", err)
			return
		}
		if err := client.PublishAccess(ctx, body); err != nil {
			log.Printf("access event: publish failed: %v", err)
		}
	}()
}

// PersistAccessEvent writes the access-log row for an event.
func PersistAccessEvent(ctx context.Context, event AccessEvent) error {
	row := model.ShareAccessLog{
		ShareLinkID: event.ShareLinkID,
		FileID:      event.FileID,
		OwnerID:     event.OwnerID,
		Filename:    event.Filename,
		RemoteAddr:  event.RemoteAddr,
		UserAgent:   event.UserAgent,
		AccessedAt:  event.AccessedAt,
	}
	return repo.Db.WithContext(ctx).Create(&row).Error
}
