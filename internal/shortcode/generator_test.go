package shortcode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestGenerate_BasicProperties(t *testing.T) {
	code := NewGenerator().Generate()

	assert.Len(t, code, CodeLength, "短码长度应为 6")
	assert.Regexp(t, "^[A-Za-z0-9_-]+$", code, "短码只能包含 URL 安全字符")
}

func TestGenerate_Uniqueness(t *testing.T) {
	gen := NewGenerator()
	codes := make(map[string]bool, 1000)

	for i := 0; i < 1000; i++ {
		code := gen.Generate()
		assert.False(t, codes[code], "生成了重复短码: %s", code)
		codes[code] = true
	}

	assert.Len(t, codes, 1000)
}

func TestPool_FallsBackWhenEmpty(t *testing.T) {
	// 未启动的池通道为空，应直接生成
	pool := NewPool(NewGenerator(), 10, zap.NewNop().Sugar())

	assert.Equal(t, 0, pool.Len())
	assert.Len(t, pool.Generate(), CodeLength)
}

func TestPool_StartFillsChannel(t *testing.T) {
	pool := NewPool(NewGenerator(), 50, zap.NewNop().Sugar())
	pool.Start()
	defer pool.Stop()

	assert.Eventually(t, func() bool { return pool.Len() == 50 }, time.Second, 10*time.Millisecond)

	code := pool.Generate()
	assert.Len(t, code, CodeLength)
	assert.Equal(t, 49, pool.Len())
}

func TestPool_StopIsIdempotent(t *testing.T) {
	pool := NewPool(NewGenerator(), 5, zap.NewNop().Sugar())
	pool.Start()

	assert.NotPanics(t, func() {
		pool.Stop()
		pool.Stop()
	})
}

func TestNewPool_DefaultSize(t *testing.T) {
	pool := NewPool(NewGenerator(), 0, zap.NewNop().Sugar())
	assert.Equal(t, DefaultPoolSize, cap(pool.codeChan))
}
