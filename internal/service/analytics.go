package service

import (
	"context"
	"time"

	"shorturl-analytics/internal/errx"
	"shorturl-analytics/internal/model"
)

// AnalyticsStore 是只读统计需要的存储能力
type AnalyticsStore interface {
	ListAll(ctx context.Context) ([]model.Link, error)
	Stats(ctx context.Context, now time.Time) (*model.LinkStats, error)
}

// AnalyticsReader 只读地返回链接及点击记录，不做任何写入
type AnalyticsReader struct {
	store AnalyticsStore
	now   func() time.Time
}

func NewAnalyticsReader(store AnalyticsStore) *AnalyticsReader {
	return &AnalyticsReader{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ListAll 按创建时间倒序返回所有链接，包括已过期的
func (a *AnalyticsReader) ListAll(ctx context.Context) ([]model.Link, error) {
	links, err := a.store.ListAll(ctx)
	if err != nil {
		return nil, errx.E("service.ListAll", errx.KindOf(err), err)
	}
	return links, nil
}

// Stats 返回链接总数、点击总数和当前有效链接数
func (a *AnalyticsReader) Stats(ctx context.Context) (*model.LinkStats, error) {
	stats, err := a.store.Stats(ctx, a.now())
	if err != nil {
		return nil, errx.E("service.Stats", errx.KindOf(err), err)
	}
	return stats, nil
}
