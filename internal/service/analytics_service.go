package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"survey_insight_backend/internal/model"
	"survey_insight_backend/internal/repository"
	"survey_insight_backend/internal/util"
	"survey_insight_backend/pkg/logger"
	"survey_insight_backend/pkg/monitoring"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	// 趋势窗口：最近 3 个数据点与更早数据点对比，±20% 为方向阈值（固定设计常量）
	trendRecentWindow    = 3
	trendUpwardFactor    = 1.2
	trendDownwardFactor  = 0.8
	defaultTextSampleCap = 5
)

type AnalyticsService struct {
	SurveyRepo   *repository.SurveyRepository
	ResponseRepo *repository.ResponseRepository
	Redis        *redis.Client

	textSampleLimit int
	cacheTTL        time.Duration
}

func NewAnalyticsService(
	surveyRepo *repository.SurveyRepository,
	responseRepo *repository.ResponseRepository,
	rdb *redis.Client,
	textSampleLimit int,
	cacheTTL time.Duration,
) *AnalyticsService {
	if textSampleLimit <= 0 {
		textSampleLimit = defaultTextSampleCap
	}
	return &AnalyticsService{
		SurveyRepo:      surveyRepo,
		ResponseRepo:    responseRepo,
		Redis:           rdb,
		textSampleLimit: textSampleLimit,
		cacheTTL:        cacheTTL,
	}
}

// Aggregate 纯函数：不读库、不写缓存，同一输入永远得到同一输出。
// 单条脏数据只影响自身的统计贡献，不会中断整体聚合。
func (s *AnalyticsService) Aggregate(survey *model.Survey, responses []*model.SurveyResponse) ([]model.QuestionAnalytics, []model.TrendPoint, error) {
	if survey == nil || responses == nil {
		return nil, nil, util.ErrInvalidInput
	}

	start := time.Now()
	questions := survey.AllQuestions()
	analytics := make([]model.QuestionAnalytics, 0, len(questions))

	for _, q := range questions {
		analytics = append(analytics, s.aggregateQuestion(q, responses))
	}

	trend := buildTrendPoints(responses)
	monitoring.AggregationDuration.Observe(time.Since(start).Seconds())
	return analytics, trend, nil
}

func (s *AnalyticsService) aggregateQuestion(q model.Question, responses []*model.SurveyResponse) model.QuestionAnalytics {
	qa := model.QuestionAnalytics{
		QuestionID:           q.ID,
		QuestionText:         q.Text,
		QuestionType:         q.Type,
		ResponseDistribution: map[string]int{},
	}

	// labelOrder 记录标签首次出现的顺序，众数并列时取先出现者（稳定，非字典序）
	var labelOrder []string
	bump := func(label string) {
		if _, seen := qa.ResponseDistribution[label]; !seen {
			labelOrder = append(labelOrder, label)
		}
		qa.ResponseDistribution[label]++
	}

	var ratingSum float64
	ratingCount := 0

	for _, r := range responses {
		value, ok := ExtractAnswer(r, q.ID)
		if !ok {
			continue
		}
		qa.TotalResponses++

		switch {
		case q.Type.IsChoiceLike():
			if value.Kind == model.AnswerList {
				// 多选：每个被选中的选项各计一次
				for _, opt := range value.List {
					bump(opt)
				}
			} else {
				bump(value.Label())
			}
		case q.Type == model.Rating:
			switch value.Kind {
			case model.AnswerNumber:
				ratingSum += value.Num
				ratingCount++
				// 越界评分按字面值入桶，让图表能暴露异常，不做截断
				bump(model.FormatNumber(value.Num))
			case model.AnswerList:
				// 数组形式的评分逐元素入桶、不参与均值，避免产生空标签桶
				for _, opt := range value.List {
					bump(opt)
				}
			default:
				bump(value.Label())
			}
		case q.Type == model.Text:
			if len(qa.TextResponseSummary) < s.textSampleLimit {
				qa.TextResponseSummary = append(qa.TextResponseSummary, value.Label())
			}
		}
	}

	if ratingCount > 0 {
		avg := ratingSum / float64(ratingCount)
		qa.AverageRating = &avg
	}

	best := ""
	bestCount := 0
	for _, label := range labelOrder {
		if qa.ResponseDistribution[label] > bestCount {
			best = label
			bestCount = qa.ResponseDistribution[label]
		}
	}
	qa.MostCommonAnswer = best

	return qa
}

// buildTrendPoints 按 UTC 自然日分桶，只保留有提交的日期，按时间升序
func buildTrendPoints(responses []*model.SurveyResponse) []model.TrendPoint {
	countsByDay := map[string]int{}
	for _, r := range responses {
		day := r.SubmittedAt.UTC().Format("2006-01-02")
		countsByDay[day]++
	}

	days := make([]string, 0, len(countsByDay))
	for d := range countsByDay {
		days = append(days, d)
	}
	sort.Strings(days)

	points := make([]model.TrendPoint, 0, len(days))
	for _, d := range days {
		points = append(points, model.TrendPoint{Date: d, Responses: countsByDay[d]})
	}
	return points
}

// ClassifyTrend 最近窗口均值对比更早均值：高于 1.2 倍为 upward，
// 低于 0.8 倍为 downward，否则 steady。更早窗口为空时视为持平。
func ClassifyTrend(points []model.TrendPoint) model.TrendDirection {
	if len(points) == 0 {
		return model.TrendSteady
	}

	recent := points
	if len(points) > trendRecentWindow {
		recent = points[len(points)-trendRecentWindow:]
	}
	earlier := points[:len(points)-len(recent)]
	if len(earlier) == 0 {
		earlier = recent
	}

	recentAvg := averageResponses(recent)
	earlierAvg := averageResponses(earlier)

	switch {
	case recentAvg > earlierAvg*trendUpwardFactor:
		return model.TrendUpward
	case recentAvg < earlierAvg*trendDownwardFactor:
		return model.TrendDownward
	default:
		return model.TrendSteady
	}
}

func averageResponses(points []model.TrendPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	sum := 0
	for _, p := range points {
		sum += p.Responses
	}
	return float64(sum) / float64(len(points))
}

// GetSurveyAnalytics 接口入口：查缓存、取数、聚合。
// 缓存键由提交数量和最近提交时间两条轻量查询构成，响应集一变旧缓存即失效，
// 命中时完全不加载响应集；聚合函数本身保持无状态（见 Aggregate）。
func (s *AnalyticsService) GetSurveyAnalytics(ctx context.Context, surveyID string, ownerID uint) (*model.SurveyAnalytics, error) {
	survey, err := s.SurveyRepo.FindByID(surveyID)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, util.ErrSurveyNotFound
	}
	if survey.OwnerID != ownerID {
		return nil, util.ErrSurveyNotOwned
	}

	var cacheKey string
	if s.Redis != nil {
		count, err := s.ResponseRepo.CountBySurveyID(surveyID)
		if err != nil {
			return nil, err
		}
		latest, err := s.ResponseRepo.LatestSubmittedAt(surveyID)
		if err != nil {
			return nil, err
		}
		cacheKey = s.analyticsCacheKey(surveyID, count, latest)
		if cached := s.cacheGet(ctx, cacheKey); cached != nil {
			return cached, nil
		}
	}

	responses, err := s.ResponseRepo.FindBySurveyID(surveyID)
	if err != nil {
		return nil, err
	}

	questionAnalytics, trend, err := s.Aggregate(survey, responses)
	if err != nil {
		return nil, err
	}

	result := &model.SurveyAnalytics{
		SurveyID:       survey.ID,
		Title:          survey.Title,
		TotalResponses: len(responses),
		Questions:      questionAnalytics,
		Trend:          trend,
		TrendDirection: ClassifyTrend(trend),
	}

	s.cacheSet(ctx, cacheKey, result)
	return result, nil
}

func (s *AnalyticsService) analyticsCacheKey(surveyID string, count int64, latest time.Time) string {
	latestUnix := int64(0)
	if !latest.IsZero() {
		latestUnix = latest.Unix()
	}
	return fmt.Sprintf("analytics:%s:%d:%d", surveyID, count, latestUnix)
}

func (s *AnalyticsService) cacheGet(ctx context.Context, key string) *model.SurveyAnalytics {
	if s.Redis == nil {
		return nil
	}
	raw, err := s.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var result model.SurveyAnalytics
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil
	}
	return &result
}

func (s *AnalyticsService) cacheSet(ctx context.Context, key string, result *model.SurveyAnalytics) {
	if s.Redis == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		logger.Log.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
}
