package service

import (
	"encoding/json"
	"survey_insight_backend/internal/model"
	"survey_insight_backend/internal/repository"
	"survey_insight_backend/internal/util"

	"gorm.io/datatypes"
)

type SurveyService struct {
	SurveyRepo   *repository.SurveyRepository
	ResponseRepo *repository.ResponseRepository
}

func NewSurveyService(surveyRepo *repository.SurveyRepository, responseRepo *repository.ResponseRepository) *SurveyService {
	return &SurveyService{SurveyRepo: surveyRepo, ResponseRepo: responseRepo}
}

type QuestionInput struct {
	Text       string   `json:"text" binding:"required"`
	Type       string   `json:"type" binding:"required"`
	Options    []string `json:"options"`
	IsRequired bool     `json:"isRequired"`
}

type CreateSurveyInput struct {
	Title          string          `json:"title" binding:"required"`
	Description    string          `json:"description"`
	TargetLanguage string          `json:"targetLanguage"`
	Questions      []QuestionInput `json:"questions" binding:"required,dive"`
}

func (in *QuestionInput) toModel() (model.Question, error) {
	q := model.Question{
		Text:       in.Text,
		Type:       model.QuestionType(in.Type),
		IsRequired: in.IsRequired,
	}
	switch q.Type {
	case model.SingleChoice, model.MultipleChoice, model.Scale, model.Rating,
		model.YesNo, model.Boolean, model.Text:
	default:
		return q, util.ErrInvalidInput
	}
	if len(in.Options) > 0 {
		raw, err := json.Marshal(in.Options)
		if err != nil {
			return q, err
		}
		q.Options = datatypes.JSON(raw)
	}
	return q, nil
}

func (s *SurveyService) CreateSurvey(ownerID uint, in *CreateSurveyInput) (*model.Survey, error) {
	survey := &model.Survey{
		OwnerID:        ownerID,
		Title:          in.Title,
		Description:    in.Description,
		TargetLanguage: in.TargetLanguage,
	}
	if survey.TargetLanguage == "" {
		survey.TargetLanguage = "en"
	}
	for _, qi := range in.Questions {
		q, err := qi.toModel()
		if err != nil {
			return nil, err
		}
		survey.Questions = append(survey.Questions, q)
	}
	if err := s.SurveyRepo.Create(survey); err != nil {
		return nil, err
	}
	return survey, nil
}

func (s *SurveyService) GetSurvey(surveyID string) (*model.Survey, error) {
	survey, err := s.SurveyRepo.FindByID(surveyID)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, util.ErrSurveyNotFound
	}
	return survey, nil
}

func (s *SurveyService) GetOwnedSurvey(surveyID string, ownerID uint) (*model.Survey, error) {
	survey, err := s.GetSurvey(surveyID)
	if err != nil {
		return nil, err
	}
	if survey.OwnerID != ownerID {
		return nil, util.ErrSurveyNotOwned
	}
	return survey, nil
}

func (s *SurveyService) ListSurveys(ownerID uint, page, limit int) ([]model.Survey, int64, error) {
	return s.SurveyRepo.ListByOwner(ownerID, page, limit)
}

type UpdateSurveyInput struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	TargetLanguage *string `json:"targetLanguage"`
	IsPublished    *bool   `json:"isPublished"`
}

func (s *SurveyService) UpdateSurvey(surveyID string, ownerID uint, in *UpdateSurveyInput) (*model.Survey, error) {
	survey, err := s.GetOwnedSurvey(surveyID, ownerID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		survey.Title = *in.Title
	}
	if in.Description != nil {
		survey.Description = *in.Description
	}
	if in.TargetLanguage != nil {
		survey.TargetLanguage = *in.TargetLanguage
	}
	if in.IsPublished != nil {
		survey.IsPublished = *in.IsPublished
	}
	if err := s.SurveyRepo.Update(survey); err != nil {
		return nil, err
	}
	return survey, nil
}

func (s *SurveyService) DeleteSurvey(surveyID string, ownerID uint) error {
	if _, err := s.GetOwnedSurvey(surveyID, ownerID); err != nil {
		return err
	}
	if err := s.ResponseRepo.DeleteBySurveyID(surveyID); err != nil {
		return err
	}
	return s.SurveyRepo.Delete(surveyID)
}

// AddDynamicQuestion 追加会话中生成的追问题目（生成服务在引擎之外）
func (s *SurveyService) AddDynamicQuestion(surveyID string, ownerID uint, in *QuestionInput) (*model.Question, error) {
	if _, err := s.GetOwnedSurvey(surveyID, ownerID); err != nil {
		return nil, err
	}
	q, err := in.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.SurveyRepo.AppendDynamicQuestion(surveyID, &q); err != nil {
		return nil, err
	}
	return &q, nil
}
