package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Mouaaaaadddd/quizmaster/internal/model"
	"github.com/Mouaaaaadddd/quizmaster/pkg/logger"
	"github.com/Mouaaaaadddd/quizmaster/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GeneratorService 出题协作方：把文档内容交给 AI，
// 在边界上把各种形状的返回归一成 []model.Question，
// 形状问题不外漏，失败统一成 GenerationError。
type GeneratorService struct {
	ai *AIService
}

func NewGeneratorService(ai *AIService) *GeneratorService {
	return &GeneratorService{ai: ai}
}

const generatorSystemPrompt = "你是一个出题助手。根据用户提供的学习材料生成选择题，" +
	"只输出一个 JSON 数组，不要输出任何解释文字。数组元素格式：" +
	`{"questionText":"题干","type":"single|multiple","options":[{"text":"选项","isCorrect":true}]}` +
	"。每道题至少有一个 isCorrect 为 true 的选项，多选题可以有多个。"

func (g *GeneratorService) buildPrompt(content string, quizType model.QuizType, numQuestions int, weakTopics string) string {
	var b strings.Builder

	switch quizType {
	case model.QuizSingle:
		fmt.Fprintf(&b, "请根据下面的材料出 %d 道单选题（type 固定为 single）。\n", numQuestions)
	case model.QuizMultiple:
		fmt.Fprintf(&b, "请根据下面的材料出 %d 道多选题（type 固定为 multiple）。\n", numQuestions)
	default:
		fmt.Fprintf(&b, "请根据下面的材料出 %d 道选择题，单选和多选混合。\n", numQuestions)
	}

	if weakTopics != "" {
		fmt.Fprintf(&b, "重点围绕学习者此前掌握薄弱的知识点出题：%s\n", weakTopics)
	}

	b.WriteString("\n===== 学习材料 =====\n")
	b.WriteString(content)
	return b.String()
}

// Generate 单次、不重试的出题调用。失败或空结果返回 GenerationError，
// 不产生任何部分结果。
func (g *GeneratorService) Generate(ctx context.Context, content string, quizType model.QuizType, numQuestions int, weakTopics string) ([]model.Question, error) {
	raw, err := g.ai.Chat(ctx, generatorSystemPrompt, g.buildPrompt(content, quizType, numQuestions, weakTopics))
	if err != nil {
		monitoring.GenerationTotal.WithLabelValues("failure").Inc()
		return nil, &GenerationError{Message: "出题服务调用失败", Err: err}
	}

	questions, err := decodeQuestions(raw)
	if err != nil {
		monitoring.GenerationTotal.WithLabelValues("failure").Inc()
		logger.Log.Warn("generator returned undecodable payload",
			zap.Error(err), zap.Int("payload_len", len(raw)))
		return nil, err
	}

	monitoring.GenerationTotal.WithLabelValues("success").Inc()
	return questions, nil
}

type generatedOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type generatedQuestion struct {
	ID           flexibleID        `json:"id"`
	QuestionText string            `json:"questionText"`
	Question     string            `json:"question"`
	Options      []generatedOption `json:"options"`
	Type         string            `json:"type"`
}

// decodeQuestions 宽松解码：容忍代码块包裹、信封对象、缺失id。
// 结构性缺陷（没有题干、没有正确选项、空结果）仍然是 GenerationError。
func decodeQuestions(raw string) ([]model.Question, error) {
	payload := stripCodeFences(raw)

	arr, ok := unwrapArray(payload, []string{"questions", "quiz", "items", "data"})
	if !ok {
		return nil, &GenerationError{Message: "AI 返回的内容不是有效的题目列表"}
	}

	var items []generatedQuestion
	if err := json.Unmarshal(arr, &items); err != nil {
		return nil, &GenerationError{Message: "AI 返回的题目列表无法解析", Err: err}
	}

	if len(items) == 0 {
		return nil, &GenerationError{Message: "AI 没有生成任何题目，请重试或更换材料"}
	}

	questions := make([]model.Question, 0, len(items))
	for i, item := range items {
		text := item.QuestionText
		if text == "" {
			text = item.Question
		}
		if text == "" {
			return nil, &GenerationError{Message: fmt.Sprintf("第 %d 道题缺少题干", i+1)}
		}

		q := model.Question{
			ID:           string(item.ID),
			QuestionText: text,
			Type:         model.QuestionSingle,
		}
		if q.ID == "" {
			q.ID = uuid.New().String()
		}
		if strings.EqualFold(item.Type, string(model.QuestionMultiple)) {
			q.Type = model.QuestionMultiple
		}

		for _, opt := range item.Options {
			if opt.Text == "" {
				continue
			}
			q.Options = append(q.Options, model.QuestionOption{Text: opt.Text, IsCorrect: opt.IsCorrect})
		}

		if len(q.Options) == 0 {
			return nil, &GenerationError{Message: fmt.Sprintf("第 %d 道题没有可用选项", i+1)}
		}
		if !q.HasCorrectOption() {
			return nil, &GenerationError{Message: fmt.Sprintf("第 %d 道题没有标注正确答案", i+1)}
		}

		questions = append(questions, q)
	}

	return questions, nil
}
