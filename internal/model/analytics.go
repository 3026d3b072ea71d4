package model

// QuestionAnalytics 单题统计结果，每次请求重新计算，不落库
// swagger:model QuestionAnalytics
type QuestionAnalytics struct {
	QuestionID           string         `json:"questionId"`
	QuestionText         string         `json:"questionText"`
	QuestionType         QuestionType   `json:"questionType"`
	TotalResponses       int            `json:"totalResponses"`
	ResponseDistribution map[string]int `json:"responseDistribution"`
	MostCommonAnswer     string         `json:"mostCommonAnswer,omitempty"`
	AverageRating        *float64       `json:"averageRating,omitempty"`
	TextResponseSummary  []string       `json:"textResponseSummary,omitempty"`
}

// TrendPoint 按 UTC 自然日汇总的提交量，只包含有提交的日期
type TrendPoint struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Responses int    `json:"responses"`
}

type TrendDirection string

const (
	TrendUpward   TrendDirection = "upward"
	TrendDownward TrendDirection = "downward"
	TrendSteady   TrendDirection = "steady"
)

// SurveyAnalytics 分析接口的完整返回
// swagger:model SurveyAnalytics
type SurveyAnalytics struct {
	SurveyID       string              `json:"surveyId"`
	Title          string              `json:"title"`
	TotalResponses int                 `json:"totalResponses"`
	Questions      []QuestionAnalytics `json:"questions"`
	Trend          []TrendPoint        `json:"trend"`
	TrendDirection TrendDirection      `json:"trendDirection"`
}
