package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SourceError 数据源调用失败的分类错误，调用方据此决定是否继续采集其余数据
type SourceError struct {
	Provider   string // tavily / searxng / reddit
	StatusCode int    // 非 2xx 时记录，网络错误为 0
	Err        error
}

func (e *SourceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s source error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s source error: %v", e.Provider, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Retryable 判断该失败是否值得重试；除认证失效与限流外，4xx 视为不可恢复
func (e *SourceError) Retryable() bool {
	if e.StatusCode == 0 {
		return true // 网络错误
	}
	switch e.StatusCode {
	case 401, 429:
		return true
	}
	return e.StatusCode >= 500
}

// Policy 指数退避重试策略：delay = BaseDelay × Multiplier^attempt
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// DefaultPolicy 默认策略，与配置默认值保持一致
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2.0}
}

// Do 按策略执行 fn，耗尽重试后返回最后一次的错误
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p = DefaultPolicy()
	}

	var lastErr error
	delay := p.BaseDelay

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay = time.Duration(float64(delay) * p.Multiplier)
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		var srcErr *SourceError
		if errors.As(err, &srcErr) && !srcErr.Retryable() {
			return err
		}
	}

	return lastErr
}
