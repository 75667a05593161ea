package model

// QuizResult 单题批改结果，由批改方整体产出，本地不做局部修改
type QuizResult struct {
	QuestionID    string   `json:"questionId"`
	UserAnswer    []string `json:"userAnswer"`
	CorrectAnswer []string `json:"correctAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
	FeedbackZh    string   `json:"feedbackZh"`
	FeedbackEn    string   `json:"feedbackEn"`
}

// CorrectionResponse 整卷批改结果
// swagger:model CorrectionResponse
type CorrectionResponse struct {
	Results    []QuizResult `json:"results"`
	WeakTopics string       `json:"weakTopics"`
}

// Score 答对题数
func (c *CorrectionResponse) Score() int {
	n := 0
	for _, r := range c.Results {
		if r.IsCorrect {
			n++
		}
	}
	return n
}
