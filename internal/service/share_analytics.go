package service

import (
	"ShareVault/internal/repo"
	"ShareVault/model"
)

// ListShareAccessLogs returns recent gated downloads of the owner's files.
func ListShareAccessLogs(ownerID uint64, shareLinkID uint64, limit int) ([]model.ShareAccessLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query := repo.Db.Where("owner_id = ?", ownerID)
	if shareLinkID != 0 {
		query = query.Where("share_link_id = ?", shareLinkID)
	}
	var logs []model.ShareAccessLog
	err := query.Order("accessed_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
