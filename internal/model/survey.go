package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
	Scale          QuestionType = "scale"
	Rating         QuestionType = "rating"
	YesNo          QuestionType = "yes_no"
	Boolean        QuestionType = "boolean"
	Text           QuestionType = "text"
)

// IsChoiceLike 选择类题型按选项标签计数，评分题和文本题单独处理
func (t QuestionType) IsChoiceLike() bool {
	switch t {
	case SingleChoice, MultipleChoice, Scale, YesNo, Boolean:
		return true
	}
	return false
}

// swagger:model Question
type Question struct {
	UUIDBase
	SurveyID   string         `gorm:"index;type:varchar(36)" json:"surveyId"`
	Text       string         `gorm:"type:text;not null" json:"text"`
	Type       QuestionType   `gorm:"size:50;not null" json:"type"`
	Options    datatypes.JSON `gorm:"type:json" json:"options,omitempty"` // JSON: []string，选择/量表类题目使用
	IsRequired bool           `gorm:"default:false" json:"isRequired"`
	Dynamic    bool           `gorm:"default:false;index" json:"dynamic"` // AI 追问等会话中生成的题目
	Position   int            `gorm:"default:0" json:"position"`
}

func (Question) TableName() string {
	return "survey_questions"
}

// OptionLabels 解析 Options 列，损坏的 JSON 按无选项处理
func (q *Question) OptionLabels() []string {
	if len(q.Options) == 0 {
		return nil
	}
	var labels []string
	if err := json.Unmarshal(q.Options, &labels); err != nil {
		return nil
	}
	return labels
}

// swagger:model Survey
type Survey struct {
	UUIDBase
	OwnerID          uint       `gorm:"index;type:bigint unsigned" json:"ownerId"`
	Title            string     `gorm:"size:255;not null" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	TargetLanguage   string     `gorm:"size:10;default:'en'" json:"targetLanguage"`
	IsPublished      bool       `gorm:"default:false" json:"isPublished"`
	Questions        []Question `gorm:"-" json:"questions"`
	DynamicQuestions []Question `gorm:"-" json:"dynamicQuestions"`
}

func (Survey) TableName() string {
	return "surveys"
}

// AllQuestions 固定题目在前、动态题目在后，聚合与导出统一按此顺序遍历
func (s *Survey) AllQuestions() []Question {
	out := make([]Question, 0, len(s.Questions)+len(s.DynamicQuestions))
	out = append(out, s.Questions...)
	out = append(out, s.DynamicQuestions...)
	return out
}
