package service

import (
	"survey_insight_backend/internal/model"
	"testing"

	"gorm.io/datatypes"
)

func responseWithAnswers(answers map[string]interface{}) *model.SurveyResponse {
	return &model.SurveyResponse{
		ID:       "r1",
		SurveyID: "s1",
		Answers:  datatypes.JSONMap(answers),
	}
}

func TestExtractAnswerAbsentCases(t *testing.T) {
	resp := responseWithAnswers(map[string]interface{}{
		"q_nil":   nil,
		"q_empty": "",
	})

	if _, ok := ExtractAnswer(resp, "q_missing"); ok {
		t.Fatalf("missing key should be absent")
	}
	if _, ok := ExtractAnswer(resp, "q_nil"); ok {
		t.Fatalf("nil value should be absent")
	}
	if _, ok := ExtractAnswer(resp, "q_empty"); ok {
		t.Fatalf("empty string should be absent")
	}
	if _, ok := ExtractAnswer(nil, "q"); ok {
		t.Fatalf("nil response should be absent")
	}
	if _, ok := ExtractAnswer(&model.SurveyResponse{}, "q"); ok {
		t.Fatalf("nil answers map should be absent")
	}
}

func TestExtractAnswerKinds(t *testing.T) {
	resp := responseWithAnswers(map[string]interface{}{
		"q_str":  "hello",
		"q_num":  float64(4),
		"q_bool": true,
		"q_list": []interface{}{"A", "B"},
	})

	v, ok := ExtractAnswer(resp, "q_str")
	if !ok || v.Kind != model.AnswerString || v.Str != "hello" {
		t.Fatalf("string answer = %+v ok=%v", v, ok)
	}

	v, ok = ExtractAnswer(resp, "q_num")
	if !ok || v.Kind != model.AnswerNumber || v.Num != 4 {
		t.Fatalf("number answer = %+v ok=%v", v, ok)
	}

	v, ok = ExtractAnswer(resp, "q_bool")
	if !ok || v.Kind != model.AnswerBool || !v.Bool {
		t.Fatalf("bool answer = %+v ok=%v", v, ok)
	}
	if v.Label() != model.BoolLabelYes {
		t.Fatalf("bool label = %q, want Yes", v.Label())
	}

	v, ok = ExtractAnswer(resp, "q_list")
	if !ok || v.Kind != model.AnswerList || len(v.List) != 2 {
		t.Fatalf("list answer = %+v ok=%v", v, ok)
	}
}

func TestBooleanLabelNormalization(t *testing.T) {
	yes, _ := model.ParseAnswerValue(true)
	no, _ := model.ParseAnswerValue(false)
	if yes.Label() != "Yes" || no.Label() != "No" {
		t.Fatalf("labels = %q/%q", yes.Label(), no.Label())
	}
}

func TestFormatNumberDropsTrailingPoint(t *testing.T) {
	if got := model.FormatNumber(4); got != "4" {
		t.Fatalf("FormatNumber(4) = %q", got)
	}
	if got := model.FormatNumber(4.5); got != "4.5" {
		t.Fatalf("FormatNumber(4.5) = %q", got)
	}
}
