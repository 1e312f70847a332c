package district

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"territory-engine/internal/logger"
	"territory-engine/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// CacheKey：Redis 中缓存原始载荷的键
const CacheKey = "districts:payload"

var ErrNotLoaded = errors.New("district data not loaded")

// 文档注释：行政区数据源
// 背景：启动时一次性拉取远程 GeoJSON（先查 Redis 载荷缓存），成功后原子发布只读数据集并回调订阅者；
// 失败只记录日志，数据集保持缺失，所有行政区相关操作视为“无行政区”。不自动重试，由上层调用 Load 重新拉取。
// 约束：rdb 为 nil 表示不使用缓存；后一次成功结果覆盖前一次。
type Source struct {
	url    string
	client *http.Client
	rdb    *redis.Client
	ttl    time.Duration

	ds atomic.Pointer[Dataset]

	mu     sync.Mutex
	onLoad []func(*Dataset)
}

func NewSource(url string, client *http.Client, rdb *redis.Client, ttl time.Duration) *Source {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Source{url: url, client: client, rdb: rdb, ttl: ttl}
}

// OnLoad：注册数据集发布回调（在加载所在的 goroutine 中调用）
func (s *Source) OnLoad(fn func(*Dataset)) {
	s.mu.Lock()
	s.onLoad = append(s.onLoad, fn)
	s.mu.Unlock()
}

// Start：后台执行一次拉取，不阻塞调用方
func (s *Source) Start(ctx context.Context) {
	go func() { _ = s.Load(ctx) }()
}

// 文档注释：拉取并发布数据集
// 返回：失败时返回错误，已发布的数据集保持不变。
func (s *Source) Load(ctx context.Context) error {
	l := logger.Component("district")
	if payload, ok := s.cached(ctx); ok {
		ds, err := Parse(payload)
		if err == nil {
			metrics.DistrictFetchTotal.WithLabelValues("cache_hit").Inc()
			l.Info("district_cache_hit", "districts", ds.Len())
			s.Set(ds)
			return nil
		}
		l.Warn("district_cache_invalid", "err", err)
	}

	t0 := time.Now()
	payload, err := s.fetch(ctx)
	metrics.DistrictFetchDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.DistrictFetchTotal.WithLabelValues("error").Inc()
		l.Error("district_fetch_error", "url", s.url, "err", err)
		return err
	}
	ds, err := Parse(payload)
	if err != nil {
		metrics.DistrictFetchTotal.WithLabelValues("error").Inc()
		l.Error("district_parse_error", "err", err)
		return err
	}
	metrics.DistrictFetchTotal.WithLabelValues("ok").Inc()
	l.Info("district_loaded", "districts", ds.Len(), "duration_ms", time.Since(t0).Milliseconds())
	if s.rdb != nil {
		if err := s.rdb.Set(ctx, CacheKey, payload, s.ttl).Err(); err != nil {
			l.Warn("district_cache_write_error", "err", err)
		}
	}
	s.Set(ds)
	return nil
}

func (s *Source) cached(ctx context.Context) ([]byte, bool) {
	if s.rdb == nil {
		return nil, false
	}
	b, err := s.rdb.Get(ctx, CacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Component("district").Warn("district_cache_read_error", "err", err)
		}
		return nil, false
	}
	return b, true
}

func (s *Source) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/geo+json, application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("district fetch status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Set：发布数据集并触发回调
func (s *Source) Set(ds *Dataset) {
	s.ds.Store(ds)
	s.mu.Lock()
	fns := make([]func(*Dataset), len(s.onLoad))
	copy(fns, s.onLoad)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ds)
	}
}

// Dataset：当前数据集；未加载时为 nil（nil 数据集的方法安全可用）
func (s *Source) Dataset() *Dataset { return s.ds.Load() }

func (s *Source) IsLoaded() bool { return s.ds.Load() != nil }

// Require：已加载时返回数据集，否则返回 ErrNotLoaded
func (s *Source) Require() (*Dataset, error) {
	ds := s.ds.Load()
	if ds == nil {
		return nil, ErrNotLoaded
	}
	return ds, nil
}
