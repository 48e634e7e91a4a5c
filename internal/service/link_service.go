// Package service 实现短链接的创建、解析重定向和访问统计。
package service

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"shorturl-analytics/internal/errx"
	"shorturl-analytics/internal/model"
)

const (
	// DefaultValidityMinutes 未指定有效期时的默认值
	DefaultValidityMinutes = 30
	// DefaultGenerateRetries 生成短码冲突时的默认最大尝试次数
	DefaultGenerateRetries = 3
	// MaxValidityMinutes 是 time.Duration 能表示的最大分钟数
	MaxValidityMinutes = math.MaxInt64 / int64(time.Minute)

	lookupTimeout = 5 * time.Second
)

var (
	ErrURLRequired       = errors.New("url is required")
	ErrInvalidShortcode  = errors.New("shortcode may only contain letters, digits, '_' and '-' (max 64 characters)")
	ErrReservedShortcode = errors.New("shortcode is reserved")
	ErrValidityRange     = errors.New("validity is out of range")
	ErrCodeTaken         = errors.New("shortcode already exists")
	ErrLinkExpired       = errors.New("link has expired")
)

var shortcodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// reservedCodes 与 /api/v1/shorturl 下的固定路由冲突
var reservedCodes = map[string]struct{}{
	"all":   {},
	"stats": {},
}

// LinkStore 是服务依赖的存储能力
type LinkStore interface {
	FindByCode(ctx context.Context, code string) (*model.Link, error)
	Create(ctx context.Context, link *model.Link) error
	AppendClick(ctx context.Context, code string, click model.Click) error
}

// LinkCache 是可选的重定向目标缓存，未命中时 Get 返回 (nil, nil)
type LinkCache interface {
	Get(ctx context.Context, code string) (*model.LinkTarget, error)
	Set(ctx context.Context, target *model.LinkTarget) error
}

// GeoResolver 把客户端地址解析为 "City, CC"，解析不了时返回 Unknown
type GeoResolver interface {
	Resolve(address string) string
}

// CodeGenerator 生成随机短码
type CodeGenerator interface {
	Generate() string
}

// Config 服务行为参数
type Config struct {
	DefaultValidityMinutes int
	// GenerateRetries 是自动生成短码时的最大尝试次数，自定义短码不重试
	GenerateRetries int
	// StrictClickRecording 为 true 时点击写入失败会使重定向失败
	StrictClickRecording bool
}

// CreateLinkInput 创建短链接的参数，ValidityMinutes 为 nil 时使用默认有效期
type CreateLinkInput struct {
	OriginalURL     string
	Shortcode       string
	ValidityMinutes *int
}

type CreatedLink struct {
	Shortcode string
	ExpiresAt time.Time
}

// RequestMeta 重定向请求中用于统计的信息
type RequestMeta struct {
	Referrer      string
	ClientAddress string
}

// LinkService 负责链接创建和重定向解析
type LinkService struct {
	store  LinkStore
	cache  LinkCache
	gen    CodeGenerator
	geo    GeoResolver
	cfg    Config
	group  singleflight.Group
	now    func() time.Time
	logger *zap.SugaredLogger
}

// NewLinkService 创建服务，cache 可以为 nil
func NewLinkService(store LinkStore, cache LinkCache, gen CodeGenerator, geo GeoResolver, cfg Config, logger *zap.SugaredLogger) *LinkService {
	if cfg.DefaultValidityMinutes == 0 {
		cfg.DefaultValidityMinutes = DefaultValidityMinutes
	}
	if cfg.GenerateRetries <= 0 {
		cfg.GenerateRetries = DefaultGenerateRetries
	}
	return &LinkService{
		store:  store,
		cache:  cache,
		gen:    gen,
		geo:    geo,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.Named("link_service"),
	}
}

// CreateLink 创建短链接。自定义短码被占用时返回 Conflict；
// 自动生成的短码冲突时换一个重试，直到用完尝试次数。
func (s *LinkService) CreateLink(ctx context.Context, in CreateLinkInput) (*CreatedLink, error) {
	const op = "service.CreateLink"

	if strings.TrimSpace(in.OriginalURL) == "" {
		return nil, errx.E(op, errx.Invalid, ErrURLRequired)
	}

	custom := in.Shortcode != ""
	if custom {
		if !shortcodePattern.MatchString(in.Shortcode) {
			return nil, errx.E(op, errx.Invalid, ErrInvalidShortcode)
		}
		if _, ok := reservedCodes[in.Shortcode]; ok {
			return nil, errx.E(op, errx.Invalid, ErrReservedShortcode)
		}
	}

	validity := s.cfg.DefaultValidityMinutes
	if in.ValidityMinutes != nil {
		validity = *in.ValidityMinutes
	}
	if v := int64(validity); v > MaxValidityMinutes || v < -MaxValidityMinutes {
		return nil, errx.E(op, errx.Invalid, ErrValidityRange)
	}

	attempts := 1
	if !custom {
		attempts = s.cfg.GenerateRetries
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		code := in.Shortcode
		if !custom {
			code = s.gen.Generate()
		}

		created, err := s.create(ctx, code, in.OriginalURL, validity)
		if err == nil {
			return created, nil
		}
		if custom || !errx.Is(err, errx.Conflict) {
			return nil, errx.E(op, errx.KindOf(err), err)
		}
		s.logger.Warnf("生成的短码已存在，重新生成 code=%s attempt=%d", code, i+1)
		lastErr = err
	}

	return nil, errx.E(op, errx.Conflict, lastErr)
}

func (s *LinkService) create(ctx context.Context, code, originalURL string, validity int) (*CreatedLink, error) {
	// 先查一次，唯一索引兜底并发创建
	_, err := s.store.FindByCode(ctx, code)
	if err == nil {
		return nil, errx.E("service.create", errx.Conflict, ErrCodeTaken)
	}
	if !errx.Is(err, errx.NotFound) {
		return nil, err
	}

	now := s.now()
	link := &model.Link{
		Shortcode:   code,
		OriginalURL: originalURL,
		ExpiresAt:   now.Add(time.Duration(validity) * time.Minute),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, link); err != nil {
		return nil, err
	}

	return &CreatedLink{Shortcode: link.Shortcode, ExpiresAt: link.ExpiresAt}, nil
}

// ResolveAndRecord 返回短码对应的原始链接并追加一条点击记录。
// 过期的链接返回 Expired，不记录点击。
func (s *LinkService) ResolveAndRecord(ctx context.Context, code string, meta RequestMeta) (string, error) {
	const op = "service.ResolveAndRecord"

	target, err := s.lookup(ctx, code)
	if err != nil {
		return "", errx.E(op, errx.KindOf(err), err)
	}

	now := s.now()
	if target.Expired(now) {
		return "", errx.E(op, errx.Expired, ErrLinkExpired)
	}

	referrer := strings.TrimSpace(meta.Referrer)
	if referrer == "" {
		referrer = model.DirectReferrer
	}
	click := model.Click{
		Timestamp:   now,
		Referrer:    referrer,
		GeoLocation: s.geo.Resolve(meta.ClientAddress),
	}

	if err := s.store.AppendClick(ctx, code, click); err != nil {
		if s.cfg.StrictClickRecording {
			return "", errx.E(op, errx.KindOf(err), err)
		}
		s.logger.Errorf("点击记录写入失败，继续重定向 code=%s: %v", code, err)
	}

	return target.OriginalURL, nil
}

// lookup 先查缓存再查库，同一短码的并发未命中合并为一次查询。
// 合并后的查询不跟随单个请求取消，由 lookupTimeout 限时。
func (s *LinkService) lookup(ctx context.Context, code string) (*model.LinkTarget, error) {
	if s.cache != nil {
		target, err := s.cache.Get(ctx, code)
		if err != nil {
			s.logger.Warnf("读取缓存失败 code=%s: %v", code, err)
		} else if target != nil {
			return target, nil
		}
	}

	v, err, _ := s.group.Do(code, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		link, err := s.store.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		target := link.Target()
		if s.cache != nil {
			if err := s.cache.Set(ctx, target); err != nil {
				s.logger.Warnf("写入缓存失败 code=%s: %v", code, err)
			}
		}
		return target, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.LinkTarget), nil
}
