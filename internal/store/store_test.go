package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mouaaaaadddd/quizmaster/internal/model"
	"github.com/Mouaaaaadddd/quizmaster/internal/util"
)

func newTestStore(t *testing.T) (*SessionStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.json")
	st := NewSessionStore(NewFileSnapshotStore(path))
	st.Load(context.Background())
	return st, path
}

func TestCreateGetDelete(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	session := model.NewDocumentSession("doc1.txt", "内容", model.QuizMixed, 5)
	if _, err := st.Create(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := st.Get(session.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FileName != "doc1.txt" || got.State != model.StateConfiguring {
		t.Errorf("unexpected session: %+v", got)
	}

	if err := st.Delete(ctx, session.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.Get(session.ID); !errors.Is(err, util.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if err := st.Delete(ctx, session.ID); !errors.Is(err, util.ErrSessionNotFound) {
		t.Errorf("double delete: expected ErrSessionNotFound, got %v", err)
	}
}

func TestUpdateStampsLastAccessed(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	session := model.NewDocumentSession("doc.txt", "内容", model.QuizMixed, 5)
	st.Create(ctx, session)
	before := session.LastAccessed

	time.Sleep(5 * time.Millisecond)

	// mutate 什么都不改，lastAccessed 也必须被刷新
	updated, err := st.Update(ctx, session.ID, func(s *model.DocumentSession) error { return nil })
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.LastAccessed.After(before) {
		t.Errorf("lastAccessed not refreshed: %v -> %v", before, updated.LastAccessed)
	}
}

func TestUpdateAbortsOnMutateError(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	session := model.NewDocumentSession("doc.txt", "内容", model.QuizMixed, 5)
	st.Create(ctx, session)

	_, err := st.Update(ctx, session.ID, func(s *model.DocumentSession) error {
		s.State = model.StateError
		s.Error = "partial"
		s.UserAnswers["q1"] = model.AnswerSet{"A"}
		return util.ErrInvalidState
	})
	if !errors.Is(err, util.ErrInvalidState) {
		t.Fatalf("expected mutate error, got %v", err)
	}

	got, _ := st.Get(session.ID)
	if got.State != model.StateConfiguring || got.Error != "" {
		t.Errorf("aborted mutation leaked into store: state=%v error=%q", got.State, got.Error)
	}
	if len(got.UserAnswers) != 0 {
		t.Errorf("aborted map write leaked into store: %+v", got.UserAnswers)
	}

	// 后续一次正常修改不能把被放弃的改动带下去
	clean, err := st.Update(ctx, session.ID, func(s *model.DocumentSession) error { return nil })
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if clean.State != model.StateConfiguring || clean.Error != "" {
		t.Errorf("aborted mutation resurfaced on next update: state=%v error=%q", clean.State, clean.Error)
	}
}

func TestListOrdering(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	first := model.NewDocumentSession("first.txt", "a", model.QuizMixed, 5)
	second := model.NewDocumentSession("second.txt", "b", model.QuizMixed, 5)
	st.Create(ctx, first)
	time.Sleep(2 * time.Millisecond)
	st.Create(ctx, second)

	time.Sleep(2 * time.Millisecond)
	if _, err := st.Update(ctx, first.ID, func(s *model.DocumentSession) error { return nil }); err != nil {
		t.Fatalf("update: %v", err)
	}

	list := st.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(list))
	}
	if list[0].ID != first.ID {
		t.Errorf("expected most recently touched session first, got %s", list[0].FileName)
	}
}

func TestDeleteActiveClearsSelection(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	session := model.NewDocumentSession("doc.txt", "内容", model.QuizMixed, 5)
	st.Create(ctx, session)
	if err := st.SetActive(session.ID); err != nil {
		t.Fatalf("set active: %v", err)
	}

	st.Delete(ctx, session.ID)
	if st.ActiveID() != "" {
		t.Errorf("expected no active session after deleting it, got %q", st.ActiveID())
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	ctx := context.Background()

	st := NewSessionStore(NewFileSnapshotStore(path))
	st.Load(ctx)

	session := model.NewDocumentSession("doc.txt", "学习材料", model.QuizSingle, 3)
	session.Questions = []model.Question{
		{
			ID:           "q1",
			QuestionText: "问题",
			Type:         model.QuestionMultiple,
			Options: []model.QuestionOption{
				{Text: "A", IsCorrect: true},
				{Text: "B", IsCorrect: false},
			},
		},
	}
	session.UserAnswers["q1"] = model.AnswerSet{"A"}
	session.State = model.StateTaking
	st.Create(ctx, session)

	st.Update(ctx, session.ID, func(s *model.DocumentSession) error {
		s.Correction = &model.CorrectionResponse{
			Results: []model.QuizResult{
				{QuestionID: "q1", UserAnswer: []string{"A"}, CorrectAnswer: []string{"A"}, IsCorrect: true, FeedbackZh: "正确", FeedbackEn: "Correct"},
			},
			WeakTopics: "指针",
		}
		s.WeakTopics = "指针"
		s.State = model.StateReviewing
		return nil
	})

	// 新的 store 从同一个快照恢复
	reloaded := NewSessionStore(NewFileSnapshotStore(path))
	reloaded.Load(ctx)

	got, err := reloaded.Get(session.ID)
	if err != nil {
		t.Fatalf("session missing after reload: %v", err)
	}
	if got.State != model.StateReviewing {
		t.Errorf("state: expected %v, got %v", model.StateReviewing, got.State)
	}
	if got.Content != "学习材料" || got.QuizType != model.QuizSingle || got.NumQuestions != 3 {
		t.Errorf("config fields lost: %+v", got)
	}
	if len(got.Questions) != 1 || got.Questions[0].Options[0].Text != "A" {
		t.Errorf("questions lost: %+v", got.Questions)
	}
	if len(got.UserAnswers["q1"]) != 1 || got.UserAnswers["q1"][0] != "A" {
		t.Errorf("answers lost: %+v", got.UserAnswers)
	}
	if got.Correction == nil || got.Correction.WeakTopics != "指针" || !got.Correction.Results[0].IsCorrect {
		t.Errorf("correction lost: %+v", got.Correction)
	}
}

func TestCorruptSnapshotStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, []byte("{{{ definitely not json"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	st := NewSessionStore(NewFileSnapshotStore(path))
	st.Load(ctx)

	if len(st.List()) != 0 {
		t.Fatalf("expected empty store after corrupt load, got %d sessions", len(st.List()))
	}

	// 损坏恢复后照常工作，下一次写入直接覆盖坏数据
	session := model.NewDocumentSession("doc.txt", "内容", model.QuizMixed, 5)
	if _, err := st.Create(ctx, session); err != nil {
		t.Fatalf("create after corrupt load: %v", err)
	}

	reloaded := NewSessionStore(NewFileSnapshotStore(path))
	reloaded.Load(ctx)
	if len(reloaded.List()) != 1 {
		t.Errorf("snapshot not rewritten after corrupt load")
	}
}

func TestNoSaveBeforeLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	st := NewSessionStore(NewFileSnapshotStore(path))

	session := model.NewDocumentSession("doc.txt", "内容", model.QuizMixed, 5)
	if _, err := st.Create(context.Background(), session); !errors.Is(err, util.ErrStoreNotLoaded) {
		t.Fatalf("expected ErrStoreNotLoaded before Load, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("snapshot written before load completed")
	}
}

func TestLoadNormalizesLegacySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	// 早期快照里没有 userAnswers 字段，反序列化出 nil map
	raw := `{"s1":{"id":"s1","fileName":"old.txt","content":"内容","quizType":"single","numQuestions":3,
		"questions":[{"id":"q1","questionText":"题干","type":"single",
			"options":[{"text":"A","isCorrect":true},{"text":"B","isCorrect":false}]}],
		"lastAccessed":"2025-01-01T00:00:00Z","state":"TAKING_QUIZ"}}`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	st := NewSessionStore(NewFileSnapshotStore(path))
	st.Load(ctx)

	// 第一次作答直接写 map，不能因为旧快照缺字段而炸
	updated, err := st.Update(ctx, "s1", func(s *model.DocumentSession) error {
		s.UserAnswers["q1"] = s.UserAnswers["q1"].Toggle("A")
		return nil
	})
	if err != nil {
		t.Fatalf("update on legacy session: %v", err)
	}
	if got := updated.UserAnswers["q1"]; len(got) != 1 || got[0] != "A" {
		t.Errorf("answer not recorded on legacy session: %+v", got)
	}
}

// failingSnapshotStore 模拟写入持续失败的持久层
type failingSnapshotStore struct{}

func (f *failingSnapshotStore) Load(ctx context.Context) (map[string]*model.DocumentSession, error) {
	return map[string]*model.DocumentSession{}, nil
}

func (f *failingSnapshotStore) Save(ctx context.Context, sessions map[string]*model.DocumentSession) error {
	return errors.New("disk full")
}

func (f *failingSnapshotStore) Ping(ctx context.Context) error {
	return errors.New("disk full")
}

func TestSaveFailureKeepsMemoryAuthoritative(t *testing.T) {
	ctx := context.Background()
	st := NewSessionStore(&failingSnapshotStore{})
	st.Load(ctx)

	// 落盘失败被吞掉，内存中的会话照常读写
	session := model.NewDocumentSession("doc.txt", "内容", model.QuizMixed, 5)
	if _, err := st.Create(ctx, session); err != nil {
		t.Fatalf("create with failing backend: %v", err)
	}

	updated, err := st.Update(ctx, session.ID, func(s *model.DocumentSession) error {
		s.State = model.StateGenerating
		return nil
	})
	if err != nil {
		t.Fatalf("update with failing backend: %v", err)
	}
	if updated.State != model.StateGenerating {
		t.Errorf("mutation lost: %v", updated.State)
	}

	got, err := st.Get(session.ID)
	if err != nil {
		t.Fatalf("get after failed saves: %v", err)
	}
	if got.State != model.StateGenerating {
		t.Errorf("in-memory state no longer authoritative: %v", got.State)
	}

	if err := st.Delete(ctx, session.ID); err != nil {
		t.Fatalf("delete with failing backend: %v", err)
	}
}

func TestMissingSnapshotFileIsNotAnError(t *testing.T) {
	st, _ := newTestStore(t)
	if len(st.List()) != 0 {
		t.Errorf("expected empty store from missing snapshot")
	}
}
