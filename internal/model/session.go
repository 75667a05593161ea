package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionState 会话生命周期状态
type SessionState string

const (
	StateConfiguring SessionState = "CONFIGURING_QUIZ"
	StateGenerating  SessionState = "GENERATING_QUIZ"
	StateTaking      SessionState = "TAKING_QUIZ"
	StateSubmitting  SessionState = "SUBMITTING_QUIZ"
	StateReviewing   SessionState = "REVIEWING_QUIZ"
	StateError       SessionState = "ERROR"
)

// QuizType 组卷类型：单选卷、多选卷或混合卷
type QuizType string

const (
	QuizSingle   QuizType = "single"
	QuizMultiple QuizType = "multiple"
	QuizMixed    QuizType = "mixed"
)

func (t QuizType) Valid() bool {
	switch t {
	case QuizSingle, QuizMultiple, QuizMixed:
		return true
	}
	return false
}

// DocumentSession 一份上传文档对应的可恢复测验会话，持久化的基本单位。
// ID、FileName、Content 创建后不可变；QuizType/NumQuestions 仅在配置态可改。
// swagger:model DocumentSession
type DocumentSession struct {
	ID           string               `json:"id"`
	FileName     string               `json:"fileName"`
	Content      string               `json:"content"`
	QuizType     QuizType             `json:"quizType"`
	NumQuestions int                  `json:"numQuestions"`
	Questions    []Question           `json:"questions"`
	UserAnswers  map[string]AnswerSet `json:"userAnswers"`
	Correction   *CorrectionResponse  `json:"correction,omitempty"`
	WeakTopics   string               `json:"weakTopics,omitempty"`
	LastAccessed time.Time            `json:"lastAccessed"`
	State        SessionState         `json:"state"`
	Error        string               `json:"error,omitempty"`
}

func NewDocumentSession(fileName, content string, quizType QuizType, numQuestions int) *DocumentSession {
	return &DocumentSession{
		ID:           uuid.New().String(),
		FileName:     fileName,
		Content:      content,
		QuizType:     quizType,
		NumQuestions: numQuestions,
		Questions:    []Question{},
		UserAnswers:  map[string]AnswerSet{},
		LastAccessed: time.Now(),
		State:        StateConfiguring,
	}
}

// QuestionByID 按题目ID查找，未找到返回 nil
func (s *DocumentSession) QuestionByID(id string) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}

// AllAnswered 提交守卫：每道题都有至少一个已选选项。
// 每次调用都基于 Questions/UserAnswers 现场推导，不做缓存。
func (s *DocumentSession) AllAnswered() bool {
	if len(s.Questions) == 0 {
		return false
	}
	for _, q := range s.Questions {
		if len(s.UserAnswers[q.ID]) == 0 {
			return false
		}
	}
	return true
}

// ClearQuizState 清空一轮测验的产物，回到可重新配置的状态
func (s *DocumentSession) ClearQuizState() {
	s.Questions = []Question{}
	s.UserAnswers = map[string]AnswerSet{}
	s.Correction = nil
	s.Error = ""
}

// Clone 深拷贝，避免调用方拿到 store 内部指针后绕过串行化修改
func (s *DocumentSession) Clone() *DocumentSession {
	c := *s
	c.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		c.Questions[i] = q
		c.Questions[i].Options = append([]QuestionOption(nil), q.Options...)
	}
	c.UserAnswers = make(map[string]AnswerSet, len(s.UserAnswers))
	for id, set := range s.UserAnswers {
		c.UserAnswers[id] = append(AnswerSet(nil), set...)
	}
	if s.Correction != nil {
		cr := *s.Correction
		cr.Results = append([]QuizResult(nil), s.Correction.Results...)
		c.Correction = &cr
	}
	return &c
}
