package repository

import (
	"errors"
	"survey_insight_backend/internal/model"

	"gorm.io/gorm"
)

type SurveyRepository struct {
	DB *gorm.DB
}

func NewSurveyRepository(db *gorm.DB) *SurveyRepository {
	return &SurveyRepository{DB: db}
}

func (r *SurveyRepository) Create(survey *model.Survey) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(survey).Error; err != nil {
			return err
		}
		for i := range survey.Questions {
			survey.Questions[i].SurveyID = survey.ID
			survey.Questions[i].Dynamic = false
			survey.Questions[i].Position = i
			if err := tx.Create(&survey.Questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID 加载问卷及其题目，固定题与动态题分开、各自按 position 升序
func (r *SurveyRepository) FindByID(id string) (*model.Survey, error) {
	var survey model.Survey
	if err := r.DB.First(&survey, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var questions []model.Question
	if err := r.DB.Where("survey_id = ?", id).
		Order("dynamic asc, position asc, created_at asc").
		Find(&questions).Error; err != nil {
		return nil, err
	}

	survey.Questions = make([]model.Question, 0, len(questions))
	survey.DynamicQuestions = make([]model.Question, 0)
	for _, q := range questions {
		if q.Dynamic {
			survey.DynamicQuestions = append(survey.DynamicQuestions, q)
		} else {
			survey.Questions = append(survey.Questions, q)
		}
	}
	return &survey, nil
}

func (r *SurveyRepository) ListByOwner(ownerID uint, page, limit int) ([]model.Survey, int64, error) {
	var surveys []model.Survey
	var total int64
	query := r.DB.Model(&model.Survey{}).Where("owner_id = ?", ownerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&surveys).Error
	return surveys, total, err
}

func (r *SurveyRepository) Update(survey *model.Survey) error {
	return r.DB.Save(survey).Error
}

func (r *SurveyRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("survey_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Survey{}, "id = ?", id).Error
	})
}

// AppendDynamicQuestion 追加会话中生成的动态题目，position 接在已有动态题之后
func (r *SurveyRepository) AppendDynamicQuestion(surveyID string, question *model.Question) error {
	var count int64
	if err := r.DB.Model(&model.Question{}).
		Where("survey_id = ? AND dynamic = ?", surveyID, true).
		Count(&count).Error; err != nil {
		return err
	}
	question.SurveyID = surveyID
	question.Dynamic = true
	question.Position = int(count)
	return r.DB.Create(question).Error
}
