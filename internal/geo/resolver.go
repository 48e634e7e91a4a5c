package geo

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"shorturl-analytics/internal/model"
)

const (
	// DefaultLoopbackSubstitute 本地开发时用来替换回环地址的公网地址，便于得到非 Unknown 的结果
	DefaultLoopbackSubstitute = "8.8.8.8"
	// fallbackAddress 无法从请求中取得地址时使用
	fallbackAddress = "127.0.0.1"
)

// Location 是一次查询的结果，任一字段都可能为空
type Location struct {
	City    string
	Country string
}

// Locator 是本地 IP 数据集的查询接口
type Locator interface {
	Lookup(ip net.IP) (Location, error)
}

// Resolver 把客户端地址解析为 "城市, 国家" 标签
type Resolver struct {
	locator    Locator
	substitute string
	logger     *zap.SugaredLogger
}

// NewResolver 创建解析器。locator 为 nil 时所有结果都是 Unknown；
// substitute 为空时不替换回环地址。
func NewResolver(locator Locator, substitute string, logger *zap.SugaredLogger) *Resolver {
	return &Resolver{
		locator:    locator,
		substitute: substitute,
		logger:     logger.Named("geo"),
	}
}

// Resolve 返回地址对应的位置标签，查询失败或没有记录时返回 "Unknown"
func (r *Resolver) Resolve(address string) string {
	if r.locator == nil {
		return model.UnknownLocation
	}

	address = r.remapLoopback(strings.TrimSpace(address))
	ip := net.ParseIP(address)
	if ip == nil {
		return model.UnknownLocation
	}

	loc, err := r.locator.Lookup(ip)
	if err != nil {
		r.logger.Debugf("地理位置查询失败 ip=%s: %v", address, err)
		return model.UnknownLocation
	}
	return Label(loc)
}

func (r *Resolver) remapLoopback(address string) string {
	if r.substitute != "" && IsLoopback(address) {
		return r.substitute
	}
	return address
}

// Label 去掉空字段后用 ", " 连接城市和国家，都为空时返回 "Unknown"
func Label(loc Location) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{loc.City, loc.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return model.UnknownLocation
	}
	return strings.Join(parts, ", ")
}

// IsLoopback 判断地址是否为本地回环地址（::1、127.x、::ffff:127.x）
func IsLoopback(address string) bool {
	if address == "::1" || strings.HasPrefix(address, "127.") || strings.HasPrefix(address, "::ffff:127.") {
		return true
	}
	ip := net.ParseIP(address)
	return ip != nil && ip.IsLoopback()
}

// ClientAddress 按 X-Forwarded-For 第一项、连接地址、127.0.0.1 的顺序取客户端地址
func ClientAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}

	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return host
		}
		return r.RemoteAddr
	}

	return fallbackAddress
}
