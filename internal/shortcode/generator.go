package shortcode

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// Charset 是 URL 安全的短码字符集
	Charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	// CodeLength 是生成的短码的长度
	CodeLength = 6
	// DefaultPoolSize 是预生成通道的默认缓冲区大小
	DefaultPoolSize = 1000
	// refillInterval 是后台检查通道水位的周期
	refillInterval = 5 * time.Second
)

var charsetSize = big.NewInt(int64(len(Charset)))

// Generator 生成固定长度的随机短码，不保证唯一，唯一性由存储层的唯一索引保证
type Generator struct{}

// NewGenerator 创建一个新的短码生成器
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate 返回一个 CodeLength 长度的短码
func (g *Generator) Generate() string {
	return randomString(CodeLength)
}

// randomString 使用加密安全的随机数生成器生成一个给定长度的字符串
func randomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, charsetSize)
		if err != nil {
			// 系统随机源失效时无法继续安全地生成短码
			panic("shortcode: crypto/rand unavailable: " + err.Error())
		}
		b[i] = Charset[num.Int64()]
	}
	return string(b)
}

// Pool 在后台预生成短码并放入缓冲通道，通道耗尽时退化为同步生成
type Pool struct {
	gen       *Generator
	codeChan  chan string
	mu        sync.Mutex
	isFilling bool
	stopChan  chan struct{}
	stopOnce  sync.Once
	minFill   int
	logger    *zap.SugaredLogger
}

// NewPool 创建一个容量为 size 的短码池，size <= 0 时使用 DefaultPoolSize
func NewPool(gen *Generator, size int, logger *zap.SugaredLogger) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	minFill := size / 10
	if minFill < 1 {
		minFill = 1
	}
	return &Pool{
		gen:      gen,
		codeChan: make(chan string, size),
		stopChan: make(chan struct{}),
		minFill:  minFill,
		logger:   logger.Named("shortcode_pool"),
	}
}

// Start 启动后台短码生成和补充任务
func (p *Pool) Start() {
	p.logger.Info("启动短码池...")
	go p.fillChannel()
	go p.monitorAndRefill()
}

// Stop 停止后台任务，可重复调用
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("正在停止短码池...")
		close(p.stopChan)
	})
}

// Generate 优先从通道中取短码，通道为空时直接生成
func (p *Pool) Generate() string {
	select {
	case code := <-p.codeChan:
		return code
	default:
		return p.gen.Generate()
	}
}

// Len 返回通道中剩余的短码数量
func (p *Pool) Len() int {
	return len(p.codeChan)
}

// monitorAndRefill 监视通道的填充水平并根据需要进行补充
func (p *Pool) monitorAndRefill() {
	ticker := time.NewTicker(refillInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if len(p.codeChan) < p.minFill {
				p.fillChannel()
			}
		case <-p.stopChan:
			p.logger.Info("已停止监控和补充任务。")
			return
		}
	}
}

// fillChannel 生成短码直到通道填满或收到停止信号
func (p *Pool) fillChannel() {
	p.mu.Lock()
	if p.isFilling {
		p.mu.Unlock()
		return
	}
	p.isFilling = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.isFilling = false
		p.mu.Unlock()
	}()

	p.logger.Debugf("通道中剩余 %d 个短码，开始补充...", len(p.codeChan))
	for {
		select {
		case <-p.stopChan:
			p.logger.Info("填充任务已中断。")
			return
		case p.codeChan <- p.gen.Generate():
		default:
			p.logger.Debugf("短码通道已填满，现有 %d 个。", len(p.codeChan))
			return
		}
	}
}
