package service

import (
	"ShareVault/config"
	"ShareVault/internal/repo"
	"ShareVault/model"
	"ShareVault/utils"
	"errors"
	"time"

	"golang.org/x/net/context"
	"gorm.io/gorm"
)

const shareCachePrefix = "share:"

const maxShareCacheTTL = 10 * time.Minute

// consumeRetry bounds internal retries of the view-increment statement on
// transient database errors. Callers never see these attempts.
var consumeRetry = utils.RetryPolicy{MaxAttempts: 3, Delay: 50 * time.Millisecond}

func shareCacheKey(token string) string {
	return shareCachePrefix + token
}

func cacheShareLink(ctx context.Context, link *model.ShareLink) {
	if repo.Redis == nil {
		return
	}
	ttl := maxShareCacheTTL
	if link.ExpiresAt != nil {
		if until := time.Until(*link.ExpiresAt); until < ttl {
			ttl = until
		}
	}
	if ttl <= 0 {
		return
	}
	if err := repo.SetJSON(ctx, shareCacheKey(link.Token), link, ttl); err != nil {
		// Cache population is best effort; the DB stays authoritative.
		return
	}
}

func dropShareCache(ctx context.Context, token string) {
	if repo.Redis == nil {
		return
	}
	_ = repo.DeleteKey(ctx, shareCacheKey(token))
}

func validateShareParams(expireDays int, maxViews *int) (int, error) {
	if expireDays == 0 {
		expireDays = config.AppConfig.ShareExpireDays
	}
	ceiling := config.AppConfig.ShareMaxExpireDays
	if expireDays < 1 || (ceiling > 0 && expireDays > ceiling) {
		return 0, ErrInvalid
	}
	if maxViews != nil && *maxViews < 1 {
		return 0, ErrInvalid
	}
	return expireDays, nil
}

func authorizeShare(principal Principal, fileID uint64) (*model.File, error) {
	file, err := GetFileById(fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != principal.ID && !principal.IsAdmin {
		return nil, ErrPermissionDenied
	}
	return file, nil
}

// CreateShare mints a fresh share link for a file the principal owns.
func CreateShare(ctx context.Context, principal Principal, fileID uint64, expireDays int, maxViews *int) (*model.ShareLink, error) {
	expireDays, err := validateShareParams(expireDays, maxViews)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeShare(principal, fileID); err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(time.Duration(expireDays) * 24 * time.Hour)
	link := &model.ShareLink{
		FileID:    fileID,
		Token:     utils.NewShareToken(),
		ExpiresAt: &expiresAt,
		MaxViews:  maxViews,
		IsActive:  true,
	}
	if err := repo.Db.Create(link).Error; err != nil {
		return nil, err
	}

	cacheShareLink(ctx, link)
	return link, nil
}

// EnsureShare returns an existing usable link for the file when reuse is
// requested, otherwise creates a new one. Repeated ensure calls do not
// proliferate links.
func EnsureShare(ctx context.Context, principal Principal, fileID uint64, expireDays int, maxViews *int, reuse bool) (*model.ShareLink, error) {
	expireDays, err := validateShareParams(expireDays, maxViews)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeShare(principal, fileID); err != nil {
		return nil, err
	}

	if reuse {
		now := time.Now()
		var existing model.ShareLink
		err := repo.Db.
			Where("file_id = ? AND is_active = ?", fileID, true).
			Where("expires_at IS NULL OR expires_at > ?", now).
			Where("max_views IS NULL OR views < max_views").
			Order("created_at DESC").
			First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return CreateShare(ctx, principal, fileID, expireDays, maxViews)
}

// GetShareByToken loads a link without consuming a view. Unusable links
// report the same ErrNotFound as missing ones.
func GetShareByToken(ctx context.Context, token string) (*model.ShareLink, error) {
	now := time.Now()

	var cached model.ShareLink
	if repo.Redis != nil {
		if err := repo.GetJSON(ctx, shareCacheKey(token), &cached); err == nil {
			if cached.Usable(now) {
				return &cached, nil
			}
			return nil, ErrNotFound
		}
	}

	var link model.ShareLink
	if err := repo.Db.Where("token = ?", token).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrUnavailable
	}
	if !link.Usable(now) {
		return nil, ErrNotFound
	}
	cacheShareLink(ctx, &link)
	return &link, nil
}

// GetShareMeta resolves a token to link and file metadata, read-only.
func GetShareMeta(ctx context.Context, token string) (*model.ShareLink, *model.File, error) {
	link, err := GetShareByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	file, err := GetFileById(link.FileID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			deactivateDanglingLink(ctx, link)
		}
		return nil, nil, ErrNotFound
	}
	return link, file, nil
}

// deactivateDanglingLink tombstones a link whose file row vanished.
func deactivateDanglingLink(ctx context.Context, link *model.ShareLink) {
	_ = repo.Db.Model(&model.ShareLink{}).
		Where("id = ?", link.ID).
		Update("is_active", false).Error
	dropShareCache(ctx, link.Token)
}

// ResolveAndConsume validates a token and consumes exactly one view,
// atomically. The UPDATE carries the whole usability predicate in its
// WHERE clause and flips is_active in the same statement, so concurrent
// consumers of a nearly-exhausted link cannot both win: views never
// exceeds max_views. MySQL applies SET left to right, so is_active is
// computed from the pre-increment views.
func ResolveAndConsume(ctx context.Context, token string) (*model.File, *model.ShareLink, error) {
	var link model.ShareLink
	if err := repo.Db.WithContext(ctx).Where("token = ?", token).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, ErrUnavailable
	}

	now := time.Now()
	if !link.Usable(now) {
		return nil, nil, ErrNotFound
	}

	file, err := GetFileById(link.FileID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			deactivateDanglingLink(ctx, &link)
			return nil, nil, ErrNotFound
		}
		return nil, nil, ErrUnavailable
	}

	var affected int64
	err = utils.Retry(ctx, consumeRetry, func() error {
		res := repo.Db.WithContext(ctx).Exec(`
			UPDATE share_links
			SET is_active = (max_views IS NULL OR views + 1 < max_views),
			    views = views + 1
			WHERE token = ?
			  AND is_active = ?
			  AND (expires_at IS NULL OR expires_at > ?)
			  AND (max_views IS NULL OR views < max_views)`,
			token, true, now,
		)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, nil, ErrUnavailable
	}
	if affected == 0 {
		// Lost the race for the final view, or the link expired between
		// the read and the update. Indistinguishable from not-found.
		return nil, nil, ErrNotFound
	}

	dropShareCache(ctx, token)

	link.Views++
	if link.MaxViews != nil && link.Views >= *link.MaxViews {
		link.IsActive = false
	}
	return file, &link, nil
}
