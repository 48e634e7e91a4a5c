package model

import (
	"time"
)

const (
	// DirectReferrer 是没有 Referer 头时记录的来源
	DirectReferrer = "Direct"
	// UnknownLocation 是无法解析地理位置时记录的值
	UnknownLocation = "Unknown"
)

// Click 一次重定向访问，只属于一个 Link
type Click struct {
	ID          uint      `gorm:"primarykey" json:"-"`
	LinkID      uint      `gorm:"not null;index" json:"-"`
	Timestamp   time.Time `gorm:"column:clicked_at;not null" json:"timestamp"`
	Referrer    string    `gorm:"type:text;not null" json:"referrer"`
	GeoLocation string    `gorm:"size:255;not null" json:"geoLocation"`
}

func (Click) TableName() string {
	return "clicks"
}
