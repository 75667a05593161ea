package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Mouaaaaadddd/quizmaster/internal/model"
	"github.com/Mouaaaaadddd/quizmaster/pkg/logger"
	"github.com/Mouaaaaadddd/quizmaster/pkg/monitoring"

	"go.uber.org/zap"
)

// GraderService 批改协作方：把整卷题目和用户作答交给 AI，
// 归一出 CorrectionResponse。批改结果整体产出，本地不做局部修改。
type GraderService struct {
	ai *AIService
}

func NewGraderService(ai *AIService) *GraderService {
	return &GraderService{ai: ai}
}

const graderSystemPrompt = "你是一个阅卷助手。用户会给出题目（含正确答案）和作答情况，" +
	"请逐题批改并总结薄弱知识点。只输出一个 JSON 对象，不要输出任何解释文字，格式：" +
	`{"results":[{"questionId":"...","userAnswer":["..."],"correctAnswer":["..."],"isCorrect":true,` +
	`"feedbackZh":"中文讲解","feedbackEn":"English explanation"}],"weakTopics":"薄弱知识点总结"}` +
	"。feedbackZh 和 feedbackEn 都必须给出。weakTopics 用一段简短文字概括答错题目涉及的概念，全对时给空字符串。"

type gradePromptQuestion struct {
	QuestionID    string   `json:"questionId"`
	QuestionText  string   `json:"questionText"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer []string `json:"correctAnswer"`
	UserAnswer    []string `json:"userAnswer"`
}

func (g *GraderService) buildPrompt(questions []model.Question, answers map[string]model.AnswerSet) string {
	payload := make([]gradePromptQuestion, 0, len(questions))
	for _, q := range questions {
		pq := gradePromptQuestion{
			QuestionID:    q.ID,
			QuestionText:  q.QuestionText,
			Type:          string(q.Type),
			CorrectAnswer: q.CorrectOptions(),
			UserAnswer:    answers[q.ID],
		}
		for _, opt := range q.Options {
			pq.Options = append(pq.Options, opt.Text)
		}
		payload = append(payload, pq)
	}

	data, _ := json.Marshal(payload)
	return "请批改以下作答：\n" + string(data)
}

// Grade 单次、不重试的批改调用
func (g *GraderService) Grade(ctx context.Context, questions []model.Question, answers map[string]model.AnswerSet) (*model.CorrectionResponse, error) {
	raw, err := g.ai.Chat(ctx, graderSystemPrompt, g.buildPrompt(questions, answers))
	if err != nil {
		monitoring.GradingTotal.WithLabelValues("failure").Inc()
		return nil, &GradingError{Message: "批改服务调用失败", Err: err}
	}

	correction, err := decodeCorrection(raw, questions, answers)
	if err != nil {
		monitoring.GradingTotal.WithLabelValues("failure").Inc()
		logger.Log.Warn("grader returned undecodable payload",
			zap.Error(err), zap.Int("payload_len", len(raw)))
		return nil, err
	}

	monitoring.GradingTotal.WithLabelValues("success").Inc()
	return correction, nil
}

// flexibleStrings 容忍模型把答案输出成单个字符串而非数组
type flexibleStrings []string

func (f *flexibleStrings) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*f = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*f = nil
		} else {
			*f = []string{s}
		}
		return nil
	}
	return fmt.Errorf("neither string nor string array: %s", string(data))
}

type gradedResult struct {
	QuestionID    flexibleID      `json:"questionId"`
	UserAnswer    flexibleStrings `json:"userAnswer"`
	CorrectAnswer flexibleStrings `json:"correctAnswer"`
	IsCorrect     *bool           `json:"isCorrect"`
	FeedbackZh    string          `json:"feedbackZh"`
	FeedbackEn    string          `json:"feedbackEn"`
	Feedback      string          `json:"feedback"`
}

type gradedEnvelope struct {
	Results     []gradedResult `json:"results"`
	Corrections []gradedResult `json:"corrections"`
	WeakTopics  string         `json:"weakTopics"`
	WeakTopics2 string         `json:"weak_topics"`
}

// decodeCorrection 宽松解码批改结果。缺失字段用本地数据补齐：
// userAnswer/correctAnswer 从会话数据回填，isCorrect 缺失时
// 按集合相等现场判定。
func decodeCorrection(raw string, questions []model.Question, answers map[string]model.AnswerSet) (*model.CorrectionResponse, error) {
	payload := stripCodeFences(raw)

	var results []gradedResult
	weakTopics := ""

	if strings.HasPrefix(strings.TrimSpace(payload), "[") {
		// 裸数组：只有逐题结果，没有总结
		if err := json.Unmarshal([]byte(payload), &results); err != nil {
			return nil, &GradingError{Message: "AI 返回的批改结果无法解析", Err: err}
		}
	} else {
		var envelope gradedEnvelope
		if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
			return nil, &GradingError{Message: "AI 返回的批改结果无法解析", Err: err}
		}
		results = envelope.Results
		if len(results) == 0 {
			results = envelope.Corrections
		}
		weakTopics = envelope.WeakTopics
		if weakTopics == "" {
			weakTopics = envelope.WeakTopics2
		}
	}

	if len(results) == 0 {
		return nil, &GradingError{Message: "AI 没有返回任何批改结果"}
	}

	byID := make(map[string]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	out := &model.CorrectionResponse{
		Results:    make([]model.QuizResult, 0, len(results)),
		WeakTopics: weakTopics,
	}

	for i, r := range results {
		qid := string(r.QuestionID)
		question := byID[qid]
		if question == nil && i < len(questions) {
			// 没带 questionId 或对不上号时按顺序回退
			question = &questions[i]
			qid = question.ID
		}
		if question == nil {
			return nil, &GradingError{Message: fmt.Sprintf("第 %d 条批改结果无法对应到题目", i+1)}
		}

		result := model.QuizResult{
			QuestionID:    qid,
			UserAnswer:    r.UserAnswer,
			CorrectAnswer: r.CorrectAnswer,
			IsCorrect:     false,
			FeedbackZh:    r.FeedbackZh,
			FeedbackEn:    r.FeedbackEn,
		}
		if result.FeedbackZh == "" {
			result.FeedbackZh = r.Feedback
		}
		if len(result.UserAnswer) == 0 {
			result.UserAnswer = answers[qid]
		}
		if len(result.CorrectAnswer) == 0 {
			result.CorrectAnswer = question.CorrectOptions()
		}
		if r.IsCorrect != nil {
			result.IsCorrect = *r.IsCorrect
		} else {
			result.IsCorrect = sameStringSet(result.UserAnswer, question.CorrectOptions())
		}

		out.Results = append(out.Results, result)
	}

	return out, nil
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
