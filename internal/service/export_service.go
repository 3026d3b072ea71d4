package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"survey_insight_backend/internal/model"
	"survey_insight_backend/internal/repository"
	"survey_insight_backend/internal/util"
	"survey_insight_backend/pkg/monitoring"
	"time"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"

	// Excel 等工具依赖 BOM 识别 UTF-8，否则非拉丁题目文本会显示乱码
	utf8BOM = "\xEF\xBB\xBF"

	csvNoDataText  = "No responses found"
	jsonNoDataText = "No responses available for export"

	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

// ExportResult 导出文档与建议文件名。
// Filename 是 ASCII 安全的兜底名，FilenameStar 是 RFC 5987
// filename*=UTF-8'' 使用的百分号编码名，两者由 HTTP 层一并下发。
type ExportResult struct {
	Data         []byte
	Filename     string
	FilenameStar string
	ContentType  string
}

type ExportService struct {
	SurveyRepo   *repository.SurveyRepository
	ResponseRepo *repository.ResponseRepository
	Storage      *StorageService

	archivePrefix string
}

func NewExportService(
	surveyRepo *repository.SurveyRepository,
	responseRepo *repository.ResponseRepository,
	storage *StorageService,
	archivePrefix string,
) *ExportService {
	return &ExportService{
		SurveyRepo:    surveyRepo,
		ResponseRepo:  responseRepo,
		Storage:       storage,
		archivePrefix: archivePrefix,
	}
}

// Serialize 把问卷和响应集编码成 CSV 或 JSON 文档。
// 空响应集不是错误：返回约定的"无数据"文档（CSV 单行哨兵 / JSON error 对象）。
// exportedAt 等时钟相关值在入口处取一次，整个文档内部保持一致。
func (s *ExportService) Serialize(survey *model.Survey, responses []*model.SurveyResponse, format string) (*ExportResult, error) {
	if survey == nil || responses == nil {
		return nil, util.ErrInvalidInput
	}

	now := time.Now().UTC()

	switch format {
	case FormatCSV:
		plain, star := exportFilenames(survey.Title, now, FormatCSV)
		return &ExportResult{
			Data:         buildCSVDocument(survey, responses),
			Filename:     plain,
			FilenameStar: star,
			ContentType:  contentTypeCSV,
		}, nil
	case FormatJSON:
		data, err := buildJSONDocument(survey, responses, now)
		if err != nil {
			return nil, err
		}
		plain, star := exportFilenames(survey.Title, now, FormatJSON)
		return &ExportResult{
			Data:         data,
			Filename:     plain,
			FilenameStar: star,
			ContentType:  contentTypeJSON,
		}, nil
	}
	return nil, util.ErrUnsupportedFormat
}

// ExportSurvey 接口入口：校验归属后取数并序列化
func (s *ExportService) ExportSurvey(surveyID string, ownerID uint, format string) (*ExportResult, error) {
	survey, err := s.SurveyRepo.FindByID(surveyID)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, util.ErrSurveyNotFound
	}
	if survey.OwnerID != ownerID {
		return nil, util.ErrSurveyNotOwned
	}

	responses, err := s.ResponseRepo.FindBySurveyID(surveyID)
	if err != nil {
		return nil, err
	}

	result, err := s.Serialize(survey, responses, format)
	if err != nil {
		return nil, err
	}
	monitoring.ExportCounter.WithLabelValues(format).Inc()
	return result, nil
}

// ArchiveExport 序列化后把文档写入存储（本地或 MinIO），返回对象 URL
func (s *ExportService) ArchiveExport(ctx context.Context, surveyID string, ownerID uint, format string) (string, error) {
	result, err := s.ExportSurvey(surveyID, ownerID, format)
	if err != nil {
		return "", err
	}
	objectName := fmt.Sprintf("%s/%s/%s", s.archivePrefix, surveyID, result.Filename)
	return s.Storage.Upload(ctx, objectName, strings.NewReader(string(result.Data)), int64(len(result.Data)), result.ContentType)
}

// buildCSVDocument 按字节级约定编码：
// BOM 开头；固定前导列后接题目列（固定题在前）；所有字段一律双引号包裹，
// 内部双引号翻倍转义；字段逗号连接、行换行连接，末尾不补换行。
// encoding/csv 只在必要时加引号且强制行终止符，无法复现该字节约定，
// 因此此处手工拼接（测试仍用 encoding/csv 做回读验证）。
func buildCSVDocument(survey *model.Survey, responses []*model.SurveyResponse) []byte {
	var b strings.Builder
	b.WriteString(utf8BOM)

	if len(responses) == 0 {
		b.WriteString(csvNoDataText)
		return []byte(b.String())
	}

	questions := survey.AllQuestions()

	header := []string{"Response ID", "Submitted At", "User ID", "Language", "Completion Time (minutes)"}
	for _, q := range questions {
		header = append(header, q.Text)
	}

	rows := make([]string, 0, len(responses)+1)
	rows = append(rows, joinCSVRow(header))

	for _, r := range responses {
		row := []string{
			r.ID,
			r.SubmittedAt.UTC().Format(time.RFC3339),
			derefString(r.UserID),
			r.Language,
			completionMinutes(r.CompletionTimeMs),
		}
		for _, q := range questions {
			row = append(row, exportCell(r.Answers[q.ID]))
		}
		rows = append(rows, joinCSVRow(row))
	}

	b.WriteString(strings.Join(rows, "\n"))
	return []byte(b.String())
}

func joinCSVRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// exportCell 单元格取值：复合值渲染为 JSON 文本，标量用字符串形态，缺失为空串
func exportCell(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return model.FormatNumber(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return ""
	}
	return string(data)
}

func completionMinutes(ms *int64) string {
	if ms == nil {
		return ""
	}
	minutes := int64(float64(*ms)/60000 + 0.5)
	return strconv.FormatInt(minutes, 10)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// exportSurveyView 导出文档里的问卷投影，绝不暴露完整内部表示
type exportSurveyView struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	TargetLanguage   string           `json:"targetLanguage"`
	Questions        []model.Question `json:"questions"`
	DynamicQuestions []model.Question `json:"dynamicQuestions"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

type exportMetadata struct {
	TotalResponses int       `json:"totalResponses"`
	ExportedAt     time.Time `json:"exportedAt"`
	Format         string    `json:"format"`
}

type exportDocument struct {
	Survey    exportSurveyView        `json:"survey"`
	Responses []*model.SurveyResponse `json:"responses"`
	Metadata  exportMetadata          `json:"metadata"`
}

type exportNoData struct {
	Error string `json:"error"`
}

func buildJSONDocument(survey *model.Survey, responses []*model.SurveyResponse, now time.Time) ([]byte, error) {
	if len(responses) == 0 {
		return json.MarshalIndent(exportNoData{Error: jsonNoDataText}, "", "  ")
	}

	doc := exportDocument{
		Survey: exportSurveyView{
			ID:               survey.ID,
			Title:            survey.Title,
			Description:      survey.Description,
			TargetLanguage:   survey.TargetLanguage,
			Questions:        survey.Questions,
			DynamicQuestions: survey.DynamicQuestions,
			CreatedAt:        survey.CreatedAt,
			UpdatedAt:        survey.UpdatedAt,
		},
		Responses: responses,
		Metadata: exportMetadata{
			TotalResponses: len(responses),
			ExportedAt:     now,
			Format:         FormatJSON,
		},
	}
	return json.MarshalIndent(doc, "", "  ")
}

// exportFilenames 生成 {title}_responses_{date}.{ext} 的两种形态：
// plain 把非 ASCII 与头部敏感字符替换成下划线，star 按 RFC 5987 百分号编码
func exportFilenames(title string, now time.Time, ext string) (plain, star string) {
	name := fmt.Sprintf("%s_responses_%s.%s", title, now.Format("2006-01-02"), ext)
	return asciiFallbackFilename(name), rfc5987Encode(name)
}

func asciiFallbackFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r > 126 || r < 32:
			b.WriteByte('_')
		case strings.ContainsRune(`"\/:*?<>|`, r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// rfc5987Encode 只保留 attr-char（RFC 5987 §3.2.1），其余字节百分号编码
func rfc5987Encode(s string) string {
	var b strings.Builder
	for _, c := range []byte(s) {
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteString(fmt.Sprintf("%%%02X", c))
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
		return true
	}
	switch c {
	case '!', '#', '$', '&', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}
