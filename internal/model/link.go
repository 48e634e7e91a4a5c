package model

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"gorm.io/gorm"
)

const (
	// MaxShortcodeLength 是短码列的最大长度
	MaxShortcodeLength = 64
	// MaxURLLength 是原始链接的最大长度
	MaxURLLength = 2048
)

// Link 短链接模型，点击记录只能追加
type Link struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Shortcode   string    `gorm:"size:64;uniqueIndex;not null" json:"shortcode"`
	OriginalURL string    `gorm:"type:text;not null" json:"originalURL"`
	ExpiresAt   time.Time `gorm:"not null;index" json:"expiresAt"`
	Clicks      []Click   `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE" json:"clicks"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (Link) TableName() string {
	return "links"
}

// Expired 判断链接在 now 时刻是否已过期
func (l *Link) Expired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// BeforeCreate 在写入前校验模型，失败时返回 *ValidationError
func (l *Link) BeforeCreate(tx *gorm.DB) error {
	return l.Validate()
}

// Validate 校验必填字段和格式
func (l *Link) Validate() error {
	if l.OriginalURL == "" {
		return &ValidationError{Field: "originalURL", Reason: "is required"}
	}
	if len(l.OriginalURL) > MaxURLLength {
		return &ValidationError{Field: "originalURL", Reason: fmt.Sprintf("exceeds %d characters", MaxURLLength)}
	}
	u, err := url.ParseRequestURI(l.OriginalURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{Field: "originalURL", Reason: "must be an absolute URL"}
	}
	if l.Shortcode == "" {
		return &ValidationError{Field: "shortcode", Reason: "is required"}
	}
	if len(l.Shortcode) > MaxShortcodeLength {
		return &ValidationError{Field: "shortcode", Reason: fmt.Sprintf("exceeds %d characters", MaxShortcodeLength)}
	}
	if l.ExpiresAt.IsZero() {
		return &ValidationError{Field: "expiresAt", Reason: "is required"}
	}
	return nil
}

// ValidationError 表示模型层校验失败
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Url validation failed: %s: %s", e.Field, e.Reason)
}

// IsValidationError 判断错误链中是否包含模型校验错误
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// LinkTarget 是重定向所需的最小字段集合，用于缓存
type LinkTarget struct {
	Shortcode   string    `json:"shortcode"`
	OriginalURL string    `json:"originalURL"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Target 返回链接的重定向视图
func (l *Link) Target() *LinkTarget {
	return &LinkTarget{Shortcode: l.Shortcode, OriginalURL: l.OriginalURL, ExpiresAt: l.ExpiresAt}
}

// Expired 判断缓存的目标在 now 时刻是否已过期
func (t *LinkTarget) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// LinkStats 汇总统计
type LinkStats struct {
	TotalLinks  int64 `json:"totalLinks"`
	TotalClicks int64 `json:"totalClicks"`
	ActiveLinks int64 `json:"activeLinks"`
}
