package service

import (
	"survey_insight_backend/internal/config"
	"survey_insight_backend/internal/model"
	"survey_insight_backend/internal/repository"
	"survey_insight_backend/internal/util"
	"survey_insight_backend/pkg/monitoring"
	"time"

	"gorm.io/datatypes"
)

type ResponseService struct {
	SurveyRepo   *repository.SurveyRepository
	ResponseRepo *repository.ResponseRepository

	analyticsCfg config.AnalyticsConfig
}

func NewResponseService(surveyRepo *repository.SurveyRepository, responseRepo *repository.ResponseRepository, analyticsCfg config.AnalyticsConfig) *ResponseService {
	return &ResponseService{
		SurveyRepo:   surveyRepo,
		ResponseRepo: responseRepo,
		analyticsCfg: analyticsCfg,
	}
}

type SubmitResponseInput struct {
	UserID         *string                `json:"userId"`
	Language       string                 `json:"language"`
	CompletionTime *int64                 `json:"completionTime"` // 毫秒
	Answers        map[string]interface{} `json:"answers" binding:"required"`
}

// Submit 提交一次作答。答案键不在题目列表里（孤儿键）不拒绝，
// 聚合时这类键不参与任何题目的统计；评分越界仅在开关打开时拒绝。
func (s *ResponseService) Submit(surveyID string, in *SubmitResponseInput) (*model.SurveyResponse, error) {
	survey, err := s.SurveyRepo.FindByID(surveyID)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, util.ErrSurveyNotFound
	}

	if s.analyticsCfg.ValidateRatings {
		if err := s.validateRatings(survey, in.Answers); err != nil {
			return nil, err
		}
	}

	response := &model.SurveyResponse{
		ID:               model.GenerateUUID(),
		SurveyID:         surveyID,
		UserID:           in.UserID,
		Language:         in.Language,
		SubmittedAt:      time.Now().UTC(),
		CompletionTimeMs: in.CompletionTime,
		Answers:          datatypes.JSONMap(in.Answers),
	}
	if response.Language == "" {
		response.Language = survey.TargetLanguage
	}

	if err := s.ResponseRepo.Create(response); err != nil {
		return nil, err
	}
	monitoring.ResponseSubmitted.Inc()
	return response, nil
}

func (s *ResponseService) validateRatings(survey *model.Survey, answers map[string]interface{}) error {
	for _, q := range survey.AllQuestions() {
		if q.Type != model.Rating {
			continue
		}
		raw, exists := answers[q.ID]
		if !exists || raw == nil {
			continue
		}
		value, ok := model.ParseAnswerValue(raw)
		if !ok || value.Kind != model.AnswerNumber {
			continue
		}
		if value.Num < float64(s.analyticsCfg.RatingMin) || value.Num > float64(s.analyticsCfg.RatingMax) {
			return util.ErrRatingOutOfRange
		}
	}
	return nil
}

func (s *ResponseService) ListBySurvey(surveyID string, ownerID uint) ([]*model.SurveyResponse, error) {
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
	return s.ResponseRepo.FindBySurveyID(surveyID)
}
