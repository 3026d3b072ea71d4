package repository

import (
	"survey_insight_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ResponseRepository struct {
	DB *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: db}
}

func (r *ResponseRepository) Create(response *model.SurveyResponse) error {
	return r.DB.Create(response).Error
}

// FindBySurveyID 按提交时间升序返回，聚合与导出都依赖这个稳定顺序
func (r *ResponseRepository) FindBySurveyID(surveyID string) ([]*model.SurveyResponse, error) {
	var responses []*model.SurveyResponse
	err := r.DB.Where("survey_id = ?", surveyID).
		Order("submitted_at asc, id asc").
		Find(&responses).Error
	return responses, err
}

func (r *ResponseRepository) CountBySurveyID(surveyID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.SurveyResponse{}).
		Where("survey_id = ?", surveyID).
		Count(&count).Error
	return count, err
}

// LatestSubmittedAt 最近一次提交时间，用于分析缓存的版本号
func (r *ResponseRepository) LatestSubmittedAt(surveyID string) (time.Time, error) {
	var response model.SurveyResponse
	err := r.DB.Where("survey_id = ?", surveyID).
		Order("submitted_at desc").
		Limit(1).
		Find(&response).Error
	return response.SubmittedAt, err
}

func (r *ResponseRepository) DeleteBySurveyID(surveyID string) error {
	return r.DB.Where("survey_id = ?", surveyID).Delete(&model.SurveyResponse{}).Error
}
