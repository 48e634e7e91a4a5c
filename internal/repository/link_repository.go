package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"shorturl-analytics/internal/errx"
	"shorturl-analytics/internal/model"
)

// appendClickSQL 用一条语句插入点击记录，不读取再回写整个链接
const appendClickSQL = `INSERT INTO clicks (link_id, clicked_at, referrer, geo_location)
SELECT id, ?, ?, ? FROM links WHERE shortcode = ?`

var (
	ErrLinkNotFound  = errors.New("short URL not found")
	ErrDuplicateCode = errors.New("shortcode already exists")
)

// LinkRepository 是基于 gorm 的链接存储
type LinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository 创建链接存储，db 需开启 TranslateError
func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// FindByCode 按短码查询链接，不加载点击记录
func (r *LinkRepository) FindByCode(ctx context.Context, code string) (*model.Link, error) {
	const op = "repository.FindByCode"

	var link model.Link
	if err := r.db.WithContext(ctx).Where("shortcode = ?", code).First(&link).Error; err != nil {
		return nil, mapError(op, err)
	}
	return &link, nil
}

// Create 写入新链接，短码冲突由唯一索引保证并返回 Conflict
func (r *LinkRepository) Create(ctx context.Context, link *model.Link) error {
	const op = "repository.Create"

	if err := r.db.WithContext(ctx).Omit("Clicks").Create(link).Error; err != nil {
		return mapError(op, err)
	}
	return nil
}

// AppendClick 原子地追加一条点击记录并刷新 updated_at
func (r *LinkRepository) AppendClick(ctx context.Context, code string, click model.Click) error {
	const op = "repository.AppendClick"

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(appendClickSQL, click.Timestamp, click.Referrer, click.GeoLocation, code)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrLinkNotFound
		}
		return tx.Model(&model.Link{}).
			Where("shortcode = ?", code).
			UpdateColumn("updated_at", click.Timestamp).Error
	})
	if err != nil {
		return mapError(op, err)
	}
	return nil
}

// ListAll 按创建时间倒序返回所有链接及其点击记录
func (r *LinkRepository) ListAll(ctx context.Context) ([]model.Link, error) {
	const op = "repository.ListAll"

	var links []model.Link
	err := r.db.WithContext(ctx).
		Preload("Clicks", func(db *gorm.DB) *gorm.DB {
			return db.Order("clicks.id ASC")
		}).
		Order("created_at DESC").
		Order("id DESC").
		Find(&links).Error
	if err != nil {
		return nil, mapError(op, err)
	}

	for i := range links {
		if links[i].Clicks == nil {
			links[i].Clicks = []model.Click{}
		}
	}
	return links, nil
}

// Stats 汇总链接数、点击数和 now 时刻仍有效的链接数
func (r *LinkRepository) Stats(ctx context.Context, now time.Time) (*model.LinkStats, error) {
	const op = "repository.Stats"

	var stats model.LinkStats
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Link{}).Count(&stats.TotalLinks).Error; err != nil {
		return nil, mapError(op, err)
	}
	if err := db.Model(&model.Click{}).Count(&stats.TotalClicks).Error; err != nil {
		return nil, mapError(op, err)
	}
	if err := db.Model(&model.Link{}).Where("expires_at >= ?", now).Count(&stats.ActiveLinks).Error; err != nil {
		return nil, mapError(op, err)
	}
	return &stats, nil
}

// Ping 检查数据库连接
func (r *LinkRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func mapError(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, ErrLinkNotFound):
		return errx.E(op, errx.NotFound, ErrLinkNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errx.E(op, errx.Conflict, fmt.Errorf("%w: %v", ErrDuplicateCode, err))
	case model.IsValidationError(err),
		errors.Is(err, gorm.ErrInvalidData),
		errors.Is(err, gorm.ErrInvalidValue),
		errors.Is(err, gorm.ErrInvalidField):
		return errx.E(op, errx.Validation, err)
	default:
		return errx.E(op, errx.Unavailable, err)
	}
}
