package service

import (
	"fmt"
	"survey_insight_backend/internal/model"
	"survey_insight_backend/internal/util"
	"testing"
	"time"

	"gorm.io/datatypes"
)

func newTestAnalyticsService() *AnalyticsService {
	return NewAnalyticsService(nil, nil, nil, 5, 0)
}

func testQuestion(id string, qType model.QuestionType) model.Question {
	q := model.Question{Text: "Q " + id, Type: qType}
	q.ID = id
	return q
}

func testSurvey(questions ...model.Question) *model.Survey {
	s := &model.Survey{Title: "Test Survey"}
	s.ID = "s1"
	s.Questions = questions
	return s
}

func testResponse(day int, answers map[string]interface{}) *model.SurveyResponse {
	return &model.SurveyResponse{
		ID:          model.GenerateUUID(),
		SurveyID:    "s1",
		SubmittedAt: time.Date(2025, 6, day, 12, 0, 0, 0, time.UTC),
		Answers:     datatypes.JSONMap(answers),
	}
}

func TestAggregateRejectsNilInput(t *testing.T) {
	svc := newTestAnalyticsService()
	if _, _, err := svc.Aggregate(nil, []*model.SurveyResponse{}); err != util.ErrInvalidInput {
		t.Fatalf("nil survey err = %v", err)
	}
	if _, _, err := svc.Aggregate(testSurvey(), nil); err != util.ErrInvalidInput {
		t.Fatalf("nil responses err = %v", err)
	}
}

func TestAggregateSingleChoiceDistribution(t *testing.T) {
	svc := newTestAnalyticsService()
	survey := testSurvey(testQuestion("q1", model.SingleChoice))
	responses := []*model.SurveyResponse{
		testResponse(1, map[string]interface{}{"q1": "Red"}),
		testResponse(1, map[string]interface{}{"q1": "Blue"}),
		testResponse(2, map[string]interface{}{"q1": "Red"}),
		testResponse(2, map[string]interface{}{}), // 未作答
	}

	analytics, _, err := svc.Aggregate(survey, responses)
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	qa := analytics[0]

	if qa.TotalResponses != 3 {
		t.Fatalf("TotalResponses = %d, want 3", qa.TotalResponses)
	}
	// 单选题：分布计数之和 == 作答人数
	sum := 0
	for _, n := range qa.ResponseDistribution {
		sum += n
	}
	if sum != 3 {
		t.Fatalf("distribution sum = %d, want 3", sum)
	}
	if qa.MostCommonAnswer != "Red" {
		t.Fatalf("MostCommonAnswer = %q, want Red", qa.MostCommonAnswer)
	}
}

func TestAggregateMultipleChoiceCountsPairs(t *testing.T) {
	svc := newTestAnalyticsService()
	survey := testSurvey(testQuestion("q1", model.MultipleChoice))
	responses := []*model.SurveyResponse{
		testResponse(1, map[string]interface{}{"q1": []interface{}{"A", "B"}}),
		testResponse(1, map[string]interface{}{"q1": []interface{}{"B"}}),
	}

	analytics, _, err := svc.Aggregate(survey, responses)
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	qa := analytics[0]

	// 多选题：分布计数之和 == (作答, 选项) 对的数量
	sum := 0
	for _, n := range qa.ResponseDistribution {
		sum += n
	}
	if sum != 3 {
		t.Fatalf("distribution sum = %d, want 3", sum)
	}
	if qa.TotalResponses != 2 {
		t.Fatalf("TotalResponses = %d, want 2", qa.TotalResponses)
	}
	if qa.ResponseDistribution["B"] != 2 {
		t.Fatalf("count(B) = %d, want 2", qa.ResponseDistribution["B"])
	}
}

func TestAggregateMostCommonTieBreakIsFirstEncountered(t *testing.T) {
	svc := newTestAnalyticsService()
	survey := testSurvey(testQuestion("q1", model.SingleChoice))
	// Zebra 先出现，Apple 后出现，计数相同时必须取 Zebra（稳定序而非字典序）
	responses := []*model.SurveyResponse{
		testResponse(1, map[string]interface{}{"q1": "Zebra"}),
		testResponse(1, map[string]interface{}{"q1": "Apple"}),
		testResponse(2, map[string]interface{}{"q1": "Zebra"}),
		testResponse(2, map[string]interface{}{"q1": "Apple"}),
	}

	analytics, _, err := svc.Aggregate(survey, responses)
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	if got := analytics[0].MostCommonAnswer; got != "Zebra" {
		t.Fatalf("MostCommonAnswer = %q, want Zebra", got)
	}
}

func TestAggregateBooleanUsesYesNoLabels(t *testing.T) {
	svc := newTestAnalyticsService()
	survey := testSurvey(testQuestion("q1", model.Boolean))
	responses := []*model.SurveyResponse{
		testResponse(1, map[string]interface{}{"q1": true}),
		testResponse(1, map[string]interface{}{"q1": false}),
		testResponse(2, map[string]interface{}{"q1": true}),
	}

	analytics, _, err := svc.Aggregate(survey, responses)
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	qa := analytics[0]
	if qa.ResponseDistribution["Yes"] != 2 || qa.ResponseDistribution["No"] != 1 {
		t.Fatalf("distribution = %v", qa.ResponseDistribution)
	}
	if qa.MostCommonAnswer != "Yes" {
		t.Fatalf("MostCommonAnswer = %q", qa.MostCommonAnswer)
	}
}

func TestAggregateRatingAverageAndBuckets(t *testing.T) {
	svc := newTestAnalyticsService()
	survey := testSurvey(testQuestion("q1", model.Rating))
	responses := []*model.SurveyResponse{
		testResponse(1, map[string]interface{}{"q1": float64(4)}),
		testResponse(1, map[string]interface{}{"q1": float64(5)}),
		testResponse(2, map[string]interface{}{"q1": float64(3)}),
	}

	analytics, _, err := svc.Aggregate(survey, responses)
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	qa := analytics[0]
	if qa.AverageRating == nil || *qa.AverageRating != 4 {
		t.Fatalf("AverageRating = %v, want 4", qa.AverageRating)
	}
	if qa.ResponseDistribution["4"] != 1 || qa.ResponseDistribution["5"] != 1 || qa.ResponseDistribution["3"] != 1 {
		t.Fatalf("distribution = %v", qa.ResponseDistribution)
	}
}

func TestAggregateRatingAverageOrderInvariant(t *testing.T) {
	svc := newTestAnalyticsService()
	survey := testSurvey(testQuestion("q1", model.Rating))
	forward := []*model.SurveyResponse{
		testResponse(1, map[string]interface{}{"q1": float64(2)}),
		testResponse(2, map[string]interface{}{"q1": float64(7)}),
		testResponse(3, map[string]interface{}{"q1": float64(9)}),
	}
	backward := []*model.SurveyResponse{forward[2], forward[1], forward[0]}

	a1, _, _ := svc.Aggregate(survey, forward)
	a2, _, _ := svc.Aggregate(survey, backward)
	if *a1[0].AverageRating != *a2[0].AverageRating {
		t.Fatalf("average depends on order: %v vs %v", *a1[0].AverageRating, *a2[0].AverageRating)
	}
}

func TestAggregateRatingZeroAnswersLeavesAverageUnset(t *testing.T) {
	svc := newTestAnalyticsService()
	survey := testSurvey(testQuestion("q1", model.Rating))
	responses := []*model.SurveyResponse{
		testResponse(1, map[string]interface{}{}),
	}

	analytics, _, err := svc.Aggregate(survey, responses)
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	if analytics[0].AverageRating != nil {
		t.Fatalf("AverageRating should be unset, got %v", *analytics[0].AverageRating)
	}
}

func TestAggregateRatingOutOfRangeKeptLiterally(t *testing.T) {
	svc := newTestAnalyticsService()
	survey := testSurvey(testQuestion("q1", model.Rating))
	responses := []*model.SurveyResponse{
		testResponse(1, map[string]interface{}{"q1": float64(42)}),
	}

	analytics, _, err := svc.Aggregate(survey, responses)
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	// 不截断，按字面值入桶，让前端能发现异常
	if analytics[0].ResponseDistribution["42"] != 1 {
		t.Fatalf("distribution = %v", analytics[0].ResponseDistribution)
	}
}

func TestAggregateRatingListAnswerBucketsPerElement(t *testing.T) {
	svc := newTestAnalyticsService()
	survey := testSurvey(testQuestion("q1", model.Rating))
	responses := []*model.SurveyResponse{
		testResponse(1, map[string]interface{}{"q1": []interface{}{"4", "5"}}),
		testResponse(2, map[string]interface{}{"q1": float64(3)}),
	}

	analytics, _, err := svc.Aggregate(survey, responses)
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	qa := analytics[0]
	if _, ok := qa.ResponseDistribution[""]; ok {
		t.Fatalf("distribution must not contain an empty label: %v", qa.ResponseDistribution)
	}
	if qa.ResponseDistribution["4"] != 1 || qa.ResponseDistribution["5"] != 1 || qa.ResponseDistribution["3"] != 1 {
		t.Fatalf("distribution = %v", qa.ResponseDistribution)
	}
	// 均值只来自数值型答案
	if qa.AverageRating == nil || *qa.AverageRating != 3 {
		t.Fatalf("AverageRating = %v, want 3", qa.AverageRating)
	}
}

func TestAnalyticsCacheKeyVersionedBySubmissions(t *testing.T) {
	svc := newTestAnalyticsService()
	latest := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)

	key := svc.analyticsCacheKey("s1", 3, latest)
	want := fmt.Sprintf("analytics:s1:3:%d", latest.Unix())
	if key != want {
		t.Fatalf("cache key = %q, want %q", key, want)
	}
	// 无提交时时间戳归零而不是 Unix 负值
	if got := svc.analyticsCacheKey("s1", 0, time.Time{}); got != "analytics:s1:0:0" {
		t.Fatalf("empty-set cache key = %q", got)
	}
	// 新增一条提交必然产生不同的键，旧缓存随之失效
	if svc.analyticsCacheKey("s1", 4, latest) == key {
		t.Fatalf("key must change when the submission count changes")
	}
}

func TestAggregateTextSummaryCapped(t *testing.T) {
	svc := NewAnalyticsService(nil, nil, nil, 2, 0)
	survey := testSurvey(testQuestion("q1", model.Text))
	responses := []*model.SurveyResponse{
		testResponse(1, map[string]interface{}{"q1": "first "}),
		testResponse(1, map[string]interface{}{"q1": "second"}),
		testResponse(2, map[string]interface{}{"q1": "third"}),
	}

	analytics, _, err := svc.Aggregate(survey, responses)
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	qa := analytics[0]
	if len(qa.TextResponseSummary) != 2 {
		t.Fatalf("summary len = %d, want 2", len(qa.TextResponseSummary))
	}
	// 原文不裁剪、保持提交顺序；总数仍计全部
	if qa.TextResponseSummary[0] != "first " || qa.TextResponseSummary[1] != "second" {
		t.Fatalf("summary = %v", qa.TextResponseSummary)
	}
	if qa.TotalResponses != 3 {
		t.Fatalf("TotalResponses = %d, want 3", qa.TotalResponses)
	}
}

func TestAggregateToleratesOrphanAnswerKeys(t *testing.T) {
	svc := newTestAnalyticsService()
	survey := testSurvey(testQuestion("q1", model.SingleChoice))
	responses := []*model.SurveyResponse{
		testResponse(1, map[string]interface{}{"q1": "A", "ghost": "B"}),
	}

	analytics, _, err := svc.Aggregate(survey, responses)
	if err != nil {
		t.Fatalf("orphan keys must not fail aggregation: %v", err)
	}
	if analytics[0].TotalResponses != 1 {
		t.Fatalf("TotalResponses = %d", analytics[0].TotalResponses)
	}
}

func TestAggregateIncludesDynamicQuestionsAfterFixed(t *testing.T) {
	svc := newTestAnalyticsService()
	survey := testSurvey(testQuestion("q1", model.SingleChoice))
	dyn := testQuestion("q2", model.Text)
	dyn.Dynamic = true
	survey.DynamicQuestions = []model.Question{dyn}

	responses := []*model.SurveyResponse{
		testResponse(1, map[string]interface{}{"q1": "A", "q2": "note"}),
	}

	analytics, _, err := svc.Aggregate(survey, responses)
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	if len(analytics) != 2 {
		t.Fatalf("analytics len = %d, want 2", len(analytics))
	}
	if analytics[0].QuestionID != "q1" || analytics[1].QuestionID != "q2" {
		t.Fatalf("question order = %s, %s", analytics[0].QuestionID, analytics[1].QuestionID)
	}
}

func TestTrendPointsGroupedByUTCDayChronological(t *testing.T) {
	svc := newTestAnalyticsService()
	survey := testSurvey()
	responses := []*model.SurveyResponse{
		testResponse(3, nil),
		testResponse(1, nil),
		testResponse(1, nil),
		// 北京时间 6 月 2 日凌晨，UTC 仍是 6 月 1 日
		{
			ID:          model.GenerateUUID(),
			SurveyID:    "s1",
			SubmittedAt: time.Date(2025, 6, 2, 1, 30, 0, 0, time.FixedZone("CST", 8*3600)),
		},
	}

	_, trend, err := svc.Aggregate(survey, responses)
	if err != nil {
		t.Fatalf("Aggregate error: %v", err)
	}
	if len(trend) != 2 {
		t.Fatalf("trend len = %d, want 2 (no gap filling)", len(trend))
	}
	if trend[0].Date != "2025-06-01" || trend[0].Responses != 3 {
		t.Fatalf("trend[0] = %+v", trend[0])
	}
	if trend[1].Date != "2025-06-03" || trend[1].Responses != 1 {
		t.Fatalf("trend[1] = %+v", trend[1])
	}
}

func trendPoints(counts []int) []model.TrendPoint {
	points := make([]model.TrendPoint, 0, len(counts))
	for i, n := range counts {
		points = append(points, model.TrendPoint{
			Date:      time.Date(2025, 6, i+1, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			Responses: n,
		})
	}
	return points
}

func TestClassifyTrend(t *testing.T) {
	cases := []struct {
		name   string
		counts []int
		want   model.TrendDirection
	}{
		{"upward", []int{10, 10, 10, 10, 15, 15, 15}, model.TrendUpward},
		{"downward", []int{15, 15, 15, 15, 5, 5, 5}, model.TrendDownward},
		{"steady", []int{10, 10, 10, 10, 11, 11, 11}, model.TrendSteady},
		{"short series neutral", []int{5, 7}, model.TrendSteady},
		{"empty", nil, model.TrendSteady},
	}

	for _, tc := range cases {
		if got := ClassifyTrend(trendPoints(tc.counts)); got != tc.want {
			t.Fatalf("%s: ClassifyTrend = %q, want %q", tc.name, got, tc.want)
		}
	}
}
