package model

// QuestionType 题型
type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
)

// swagger:model Question
type Question struct {
	ID           string           `json:"id"`
	QuestionText string           `json:"questionText"`
	Options      []QuestionOption `json:"options"`
	Type         QuestionType     `json:"type"`
}

type QuestionOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// HasCorrectOption 每道有效题目至少要有一个正确选项
func (q *Question) HasCorrectOption() bool {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return true
		}
	}
	return false
}

// CorrectOptions 返回全部正确选项的文本
func (q *Question) CorrectOptions() []string {
	var out []string
	for _, opt := range q.Options {
		if opt.IsCorrect {
			out = append(out, opt.Text)
		}
	}
	return out
}
