package geo

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// MaxMindLocator 基于本地 GeoLite2-City 数据库查询
type MaxMindLocator struct {
	reader *geoip2.Reader
}

// OpenMaxMind 打开 mmdb 数据文件
func OpenMaxMind(path string) (*MaxMindLocator, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开地理位置数据库失败: %w", err)
	}
	return &MaxMindLocator{reader: reader}, nil
}

// Lookup 返回英文城市名和 ISO 国家代码
func (m *MaxMindLocator) Lookup(ip net.IP) (Location, error) {
	record, err := m.reader.City(ip)
	if err != nil {
		return Location{}, err
	}
	return Location{
		City:    record.City.Names["en"],
		Country: record.Country.IsoCode,
	}, nil
}

func (m *MaxMindLocator) Close() error {
	return m.reader.Close()
}
