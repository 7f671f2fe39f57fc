package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"dimission-forecast/config"
	"dimission-forecast/internal/dto"
	"dimission-forecast/internal/forecast"
	"dimission-forecast/internal/repository"
	pkgerrors "dimission-forecast/pkg/errors"
)

// ErrNoForecast 指定日期没有预测结果
var ErrNoForecast = errors.New("该日期暂无预测结果")

// ForecastService 预测结果查询业务接口
type ForecastService interface {
	// Get 返回以 date 为起始日的最新预测，每个单元、每个预测天数各一条
	Get(ctx context.Context, date time.Time) (*dto.ForecastResponse, error)
}

type forecastService struct {
	cfg      *config.ForecastConfig
	repo     *repository.Repository
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewForecastService 创建 ForecastService 实例
func NewForecastService(cfg *config.ForecastConfig, repo *repository.Repository, cache Cache, cacheTTL time.Duration, logger *zap.Logger) ForecastService {
	return &forecastService{cfg: cfg, repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func (s *forecastService) Get(ctx context.Context, date time.Time) (*dto.ForecastResponse, error) {
	date = forecast.Day(date)
	key := forecastCacheKey(date)

	if s.cache != nil {
		b, err := s.cache.GetCache(ctx, key)
		switch {
		case err == nil:
			var resp dto.ForecastResponse
			if err := json.Unmarshal(b, &resp); err == nil {
				return &resp, nil
			}
			s.logger.Warn("预测缓存内容损坏，回源查询", zap.String("key", key))
		case !errors.Is(err, pkgerrors.ErrCacheMiss):
			s.logger.Warn("读取预测缓存失败", zap.String("key", key), zap.Error(err))
		}
	}

	rows, err := s.repo.Prediction.ListByStartDate(ctx, date)
	if err != nil {
		s.logger.Error("查询预测结果失败", zap.Error(err))
		return nil, err
	}

	// 只追加表中同一单元、同一天数可能有多条，最新在前
	type slot struct {
		unit string
		days int
	}
	seen := make(map[slot]bool, len(rows))
	resp := &dto.ForecastResponse{Date: formatDay(date)}
	for _, p := range rows {
		k := slot{p.Unit, p.Days}
		if seen[k] {
			continue
		}
		seen[k] = true
		resp.Items = append(resp.Items, toForecastItem(s.cfg, p))
	}
	if len(resp.Items) == 0 {
		return nil, ErrNoForecast
	}

	order := make(map[string]int, len(s.cfg.Units))
	for i, u := range s.cfg.Units {
		order[u.Code] = i
	}
	sort.SliceStable(resp.Items, func(i, j int) bool {
		a, b := resp.Items[i], resp.Items[j]
		if order[a.Unit] != order[b.Unit] {
			return order[a.Unit] < order[b.Unit]
		}
		return a.Days < b.Days
	})

	if s.cache != nil {
		if b, err := json.Marshal(resp); err == nil {
			if err := s.cache.SetCache(ctx, key, b, s.cacheTTL); err != nil {
				s.logger.Warn("写入预测缓存失败", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return resp, nil
}
