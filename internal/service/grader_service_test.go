package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/Mouaaaaadddd/quizmaster/internal/model"
)

func gradedQuiz() ([]model.Question, map[string]model.AnswerSet) {
	questions := []model.Question{
		{
			ID: "q1", QuestionText: "单选题", Type: model.QuestionSingle,
			Options: []model.QuestionOption{
				{Text: "A", IsCorrect: true},
				{Text: "B", IsCorrect: false},
			},
		},
		{
			ID: "q2", QuestionText: "多选题", Type: model.QuestionMultiple,
			Options: []model.QuestionOption{
				{Text: "A", IsCorrect: true},
				{Text: "B", IsCorrect: true},
				{Text: "C", IsCorrect: false},
			},
		},
	}
	answers := map[string]model.AnswerSet{
		"q1": {"A"},
		"q2": {"A", "C"},
	}
	return questions, answers
}

func TestDecodeCorrectionEnvelope(t *testing.T) {
	questions, answers := gradedQuiz()
	raw := `{"results":[
		{"questionId":"q1","userAnswer":["A"],"correctAnswer":["A"],"isCorrect":true,
		 "feedbackZh":"答对了","feedbackEn":"Correct"},
		{"questionId":"q2","userAnswer":["A","C"],"correctAnswer":["A","B"],"isCorrect":false,
		 "feedbackZh":"漏选了B且误选了C","feedbackEn":"Missed B, picked C"}
	],"weakTopics":"多选题的排除法"}`

	correction, err := decodeCorrection(raw, questions, answers)
	if err != nil {
		t.Fatalf("decodeCorrection: %v", err)
	}
	if len(correction.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(correction.Results))
	}
	if correction.WeakTopics != "多选题的排除法" {
		t.Errorf("weakTopics: %q", correction.WeakTopics)
	}
	if correction.Score() != 1 {
		t.Errorf("score: expected 1, got %d", correction.Score())
	}
	if correction.Results[1].FeedbackZh == "" || correction.Results[1].FeedbackEn == "" {
		t.Error("bilingual feedback lost")
	}
}

func TestDecodeCorrectionAltKeys(t *testing.T) {
	questions, answers := gradedQuiz()
	// corrections/weak_topics 的别名键，feedback 单键，answer 是字符串不是数组
	raw := `{"corrections":[
		{"questionId":"q1","userAnswer":"A","isCorrect":true,"feedback":"没问题"},
		{"questionId":"q2","userAnswer":"A","isCorrect":false,"feedback":"再看看"}
	],"weak_topics":"集合运算"}`

	correction, err := decodeCorrection(raw, questions, answers)
	if err != nil {
		t.Fatalf("decodeCorrection: %v", err)
	}
	if correction.WeakTopics != "集合运算" {
		t.Errorf("weak_topics alias not honored: %q", correction.WeakTopics)
	}
	if correction.Results[0].FeedbackZh != "没问题" {
		t.Errorf("feedback alias not honored: %q", correction.Results[0].FeedbackZh)
	}
	if len(correction.Results[0].UserAnswer) != 1 || correction.Results[0].UserAnswer[0] != "A" {
		t.Errorf("string answer not normalized: %+v", correction.Results[0].UserAnswer)
	}
	// correctAnswer 缺失时从题目回填
	if len(correction.Results[1].CorrectAnswer) != 2 {
		t.Errorf("correctAnswer not backfilled: %+v", correction.Results[1].CorrectAnswer)
	}
}

func TestDecodeCorrectionBareArrayOrderFallback(t *testing.T) {
	questions, answers := gradedQuiz()
	// 裸数组且没有 questionId：按顺序对应到题目
	raw := "```json\n" + `[
		{"isCorrect":true,"feedbackZh":"对","feedbackEn":"ok"},
		{"isCorrect":false,"feedbackZh":"错","feedbackEn":"no"}
	]` + "\n```"

	correction, err := decodeCorrection(raw, questions, answers)
	if err != nil {
		t.Fatalf("decodeCorrection: %v", err)
	}
	if correction.Results[0].QuestionID != "q1" || correction.Results[1].QuestionID != "q2" {
		t.Errorf("order fallback broken: %q, %q",
			correction.Results[0].QuestionID, correction.Results[1].QuestionID)
	}
	// userAnswer 缺失时从会话作答回填
	if len(correction.Results[1].UserAnswer) != 2 {
		t.Errorf("userAnswer not backfilled: %+v", correction.Results[1].UserAnswer)
	}
	if correction.WeakTopics != "" {
		t.Errorf("bare array cannot carry weakTopics, got %q", correction.WeakTopics)
	}
}

func TestDecodeCorrectionComputesIsCorrectLocally(t *testing.T) {
	questions, answers := gradedQuiz()
	// isCorrect 缺失：按集合相等现场判定。q1 作答 {A} 与正确答案 {A} 相等，
	// q2 作答 {A,C} 与 {A,B} 不等。
	raw := `{"results":[
		{"questionId":"q1","feedbackZh":"a","feedbackEn":"a"},
		{"questionId":"q2","feedbackZh":"b","feedbackEn":"b"}
	],"weakTopics":""}`

	correction, err := decodeCorrection(raw, questions, answers)
	if err != nil {
		t.Fatalf("decodeCorrection: %v", err)
	}
	if !correction.Results[0].IsCorrect {
		t.Error("q1 should be judged correct by set equality")
	}
	if correction.Results[1].IsCorrect {
		t.Error("q2 should be judged incorrect by set equality")
	}
}

func TestDecodeCorrectionErrors(t *testing.T) {
	questions, answers := gradedQuiz()

	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "批改完成"},
		{"empty results", `{"results":[],"weakTopics":""}`},
		{"too many unmatchable results", `[
			{"questionId":"zzz","isCorrect":true},
			{"questionId":"yyy","isCorrect":true},
			{"questionId":"xxx","isCorrect":true}
		]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeCorrection(tt.raw, questions, answers)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var gradeErr *GradingError
			if !errors.As(err, &gradeErr) {
				t.Fatalf("expected GradingError, got %T", err)
			}
		})
	}
}

func TestSameStringSet(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want bool
	}{
		{"equal unordered", []string{"B", "A"}, []string{"A", "B"}, true},
		{"subset", []string{"A"}, []string{"A", "B"}, false},
		{"both empty", nil, nil, true},
		{"disjoint", []string{"A"}, []string{"B"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameStringSet(tt.a, tt.b); got != tt.want {
				t.Errorf("sameStringSet(%v, %v) = %v", tt.a, tt.b, got)
			}
		})
	}
}

func TestGraderBuildPrompt(t *testing.T) {
	questions, answers := gradedQuiz()
	g := NewGraderService(nil)

	prompt := g.buildPrompt(questions, answers)
	for _, want := range []string{"q1", "q2", "单选题", "多选题", `"correctAnswer"`, `"userAnswer"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
