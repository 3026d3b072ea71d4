package model

import (
	"encoding/json"
	"strconv"
)

// AnswerKind 答案值的封闭变体集合：字符串、数字、布尔、字符串数组
type AnswerKind int

const (
	AnswerString AnswerKind = iota
	AnswerNumber
	AnswerBool
	AnswerList
)

const (
	BoolLabelYes = "Yes"
	BoolLabelNo  = "No"
)

// AnswerValue 答案的带标签联合类型，避免在题型之间误读原始值
type AnswerValue struct {
	Kind AnswerKind
	Str  string
	Num  float64
	Bool bool
	List []string
}

// ParseAnswerValue 从 JSON 解码后的原始值构造 AnswerValue，
// 第二个返回值为 false 表示该值无法识别（按缺失处理，不报错）
func ParseAnswerValue(raw interface{}) (AnswerValue, bool) {
	switch v := raw.(type) {
	case string:
		return AnswerValue{Kind: AnswerString, Str: v}, true
	case float64:
		return AnswerValue{Kind: AnswerNumber, Num: v}, true
	case int:
		return AnswerValue{Kind: AnswerNumber, Num: float64(v)}, true
	case int64:
		return AnswerValue{Kind: AnswerNumber, Num: float64(v)}, true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return AnswerValue{Kind: AnswerString, Str: v.String()}, true
		}
		return AnswerValue{Kind: AnswerNumber, Num: f}, true
	case bool:
		return AnswerValue{Kind: AnswerBool, Bool: v}, true
	case []string:
		return AnswerValue{Kind: AnswerList, List: v}, true
	case []interface{}:
		list := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				list = append(list, s)
				continue
			}
			if av, ok := ParseAnswerValue(item); ok {
				list = append(list, av.Label())
			}
		}
		return AnswerValue{Kind: AnswerList, List: list}, true
	}
	return AnswerValue{}, false
}

// Label 单值答案的展示标签；布尔值归一化为 Yes/No
func (v AnswerValue) Label() string {
	switch v.Kind {
	case AnswerString:
		return v.Str
	case AnswerNumber:
		return FormatNumber(v.Num)
	case AnswerBool:
		if v.Bool {
			return BoolLabelYes
		}
		return BoolLabelNo
	}
	return ""
}

// FormatNumber 整数值不带小数点，保持图表标签简洁
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
