package service

import (
	"survey_insight_backend/internal/model"
)

// ExtractAnswer 从一次提交中取出某道题的答案。
// 缺失、null、空字符串都视为"未作答"，返回 ok=false，绝不返回错误：
// 稀疏作答是常态而不是异常。
func ExtractAnswer(response *model.SurveyResponse, questionID string) (model.AnswerValue, bool) {
	if response == nil || response.Answers == nil {
		return model.AnswerValue{}, false
	}
	raw, exists := response.Answers[questionID]
	if !exists || raw == nil {
		return model.AnswerValue{}, false
	}
	value, ok := model.ParseAnswerValue(raw)
	if !ok {
		return model.AnswerValue{}, false
	}
	if value.Kind == model.AnswerString && value.Str == "" {
		return model.AnswerValue{}, false
	}
	return value, true
}
