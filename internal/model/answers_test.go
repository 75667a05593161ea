package model

import "testing"

func TestAnswerSetToggle(t *testing.T) {
	testCases := []struct {
		name     string
		initial  AnswerSet
		option   string
		expected []string
	}{
		{"add to empty", nil, "A", []string{"A"}},
		{"add second", AnswerSet{"A"}, "B", []string{"A", "B"}},
		{"remove existing", AnswerSet{"A", "B"}, "A", []string{"B"}},
		{"remove duplicate legacy entries", AnswerSet{"A", "B", "A"}, "A", []string{"B"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.initial.Toggle(tc.option)
			if len(got) != len(tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Errorf("expected %v, got %v", tc.expected, got)
				}
			}
		})
	}
}

func TestAnswerSetTogglePairIsIdentity(t *testing.T) {
	initial := AnswerSet{"A", "C"}

	once := initial.Toggle("B")
	twice := once.Toggle("B")

	if len(twice) != len(initial) {
		t.Fatalf("toggle pair changed set: %v -> %v", initial, twice)
	}
	for i := range twice {
		if twice[i] != initial[i] {
			t.Errorf("toggle pair changed set: %v -> %v", initial, twice)
		}
	}
}

func TestAnswerSetAddIsIdempotent(t *testing.T) {
	set := AnswerSet{}
	set = set.Add("A")
	set = set.Add("A")

	if len(set) != 1 || set[0] != "A" {
		t.Errorf("expected singleton {A}, got %v", set)
	}
}

func TestAllAnswered(t *testing.T) {
	questions := []Question{
		{ID: "q1", QuestionText: "1", Type: QuestionSingle, Options: []QuestionOption{{Text: "A", IsCorrect: true}}},
		{ID: "q2", QuestionText: "2", Type: QuestionMultiple, Options: []QuestionOption{{Text: "A", IsCorrect: true}}},
	}

	testCases := []struct {
		name      string
		questions []Question
		answers   map[string]AnswerSet
		expected  bool
	}{
		{"no questions", nil, map[string]AnswerSet{}, false},
		{"nothing answered", questions, map[string]AnswerSet{}, false},
		{"partially answered", questions, map[string]AnswerSet{"q1": {"A"}}, false},
		{"empty set does not count", questions, map[string]AnswerSet{"q1": {"A"}, "q2": {}}, false},
		{"fully answered", questions, map[string]AnswerSet{"q1": {"A"}, "q2": {"A"}}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := &DocumentSession{Questions: tc.questions, UserAnswers: tc.answers}
			if got := s.AllAnswered(); got != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	session := NewDocumentSession("doc.txt", "content", QuizMixed, 5)
	session.Questions = []Question{
		{ID: "q1", QuestionText: "1", Type: QuestionSingle, Options: []QuestionOption{{Text: "A", IsCorrect: true}}},
	}
	session.UserAnswers["q1"] = AnswerSet{"A"}

	clone := session.Clone()
	clone.Questions[0].QuestionText = "changed"
	clone.UserAnswers["q1"] = clone.UserAnswers["q1"].Toggle("B")

	if session.Questions[0].QuestionText != "1" {
		t.Error("clone shares questions slice with original")
	}
	if len(session.UserAnswers["q1"]) != 1 {
		t.Error("clone shares answer sets with original")
	}
}
