package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SurveyResponse 一次完整提交，answers 以 questionId 为键
// swagger:model SurveyResponse
type SurveyResponse struct {
	ID               string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SurveyID         string            `gorm:"index;type:varchar(36)" json:"surveyId"`
	UserID           *string           `gorm:"type:varchar(36)" json:"userId,omitempty"` // 匿名提交为空
	Language         string            `gorm:"size:10;default:'en'" json:"language"`
	SubmittedAt      time.Time         `gorm:"index" json:"submittedAt"`
	CompletionTimeMs *int64            `json:"completionTime,omitempty"` // 毫秒
	Answers          datatypes.JSONMap `gorm:"type:json" json:"answers"`
}

func (SurveyResponse) TableName() string {
	return "survey_responses"
}

func (r *SurveyResponse) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = GenerateUUID()
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = time.Now().UTC()
	}
	return
}
