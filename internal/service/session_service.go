package service

import (
	"context"
	"strings"

	"github.com/Mouaaaaadddd/quizmaster/internal/config"
	"github.com/Mouaaaaadddd/quizmaster/internal/model"
	"github.com/Mouaaaaadddd/quizmaster/internal/store"
	"github.com/Mouaaaaadddd/quizmaster/internal/util"
	"github.com/Mouaaaaadddd/quizmaster/pkg/logger"

	"go.uber.org/zap"
)

// SessionService 会话生命周期控制器。
//
// 状态迁移全部在 store.Update 的临界区内做守卫和切换；
// 出题/批改是仅有的两个挂起操作，调用期间会话停在
// GENERATING_QUIZ / SUBMITTING_QUIZ，重复触发会被状态守卫拒绝，
// 不需要额外的锁。协作方失败是合法迁移（进 ERROR 态），
// 不作为 error 向上冒泡。
type SessionService struct {
	store     *store.SessionStore
	generator *GeneratorService
	grader    *GraderService
	storage   *StorageService
	quizCfg   config.QuizConfig
}

func NewSessionService(st *store.SessionStore, generator *GeneratorService, grader *GraderService, storage *StorageService, quizCfg config.QuizConfig) *SessionService {
	return &SessionService{
		store:     st,
		generator: generator,
		grader:    grader,
		storage:   storage,
		quizCfg:   quizCfg,
	}
}

// SessionView 呈现层投影：会话状态的纯函数，不缓存任何派生值
type SessionView struct {
	*model.DocumentSession
	Active    bool `json:"active"`
	CanSubmit bool `json:"canSubmit"`
	Score     int  `json:"score"`
}

func (s *SessionService) view(session *model.DocumentSession) *SessionView {
	v := &SessionView{
		DocumentSession: session,
		Active:          session.ID == s.store.ActiveID(),
		CanSubmit:       session.State == model.StateTaking && session.AllAnswered(),
	}
	if session.Correction != nil {
		v.Score = session.Correction.Score()
	}
	return v
}

// CreateFromUpload 文件摄取成功即创建会话并选中。
// 摄取失败返回 IngestionError，不创建会话，不写入任何状态。
func (s *SessionService) CreateFromUpload(ctx context.Context, fileName string, content []byte) (*SessionView, error) {
	if strings.TrimSpace(string(content)) == "" {
		return nil, &IngestionError{Message: "文档内容为空"}
	}

	contentType, err := util.DetectTextContent(content)
	if err != nil {
		return nil, &IngestionError{Message: "仅支持文本类文档", Err: err}
	}

	session := model.NewDocumentSession(fileName, string(content), model.QuizMixed, s.quizCfg.DefaultQuestions)
	created, err := s.store.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetActive(created.ID); err != nil {
		return nil, err
	}

	// 原始文档留档，失败不影响会话
	go s.storage.ArchiveDocument(context.Background(), created.ID, fileName, content, contentType)

	logger.Log.Info("session created",
		zap.String("session_id", created.ID),
		zap.String("file", fileName),
		zap.Int("content_bytes", len(content)))

	return s.view(created), nil
}

// Configure 调整组卷参数，仅在 CONFIGURING_QUIZ 状态下允许。
// 题目数量在进入 store 之前就被钳到合法区间。
func (s *SessionService) Configure(ctx context.Context, id string, quizType model.QuizType, numQuestions int) (*SessionView, error) {
	if !quizType.Valid() {
		return nil, util.ErrInvalidQuizType
	}

	if numQuestions < 1 {
		numQuestions = 1
	}
	if numQuestions > s.quizCfg.MaxQuestions {
		numQuestions = s.quizCfg.MaxQuestions
	}

	session, err := s.store.Update(ctx, id, func(sess *model.DocumentSession) error {
		if sess.State != model.StateConfiguring {
			return util.ErrInvalidState
		}
		sess.QuizType = quizType
		sess.NumQuestions = numQuestions
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(session), nil
}

// Generate CONFIGURING_QUIZ -> GENERATING_QUIZ -> TAKING_QUIZ | ERROR。
// 单次调用、不重试、无部分进度：失败丢弃一切中间结果，只留一条错误信息。
func (s *SessionService) Generate(ctx context.Context, id string) (*SessionView, error) {
	parked, err := s.store.Update(ctx, id, func(sess *model.DocumentSession) error {
		if sess.State != model.StateConfiguring {
			return util.ErrInvalidState
		}
		if strings.TrimSpace(sess.Content) == "" {
			return util.ErrEmptyContent
		}
		sess.State = model.StateGenerating
		return nil
	})
	if err != nil {
		return nil, err
	}

	questions, genErr := s.generator.Generate(ctx, parked.Content, parked.QuizType, parked.NumQuestions, parked.WeakTopics)

	session, err := s.store.Update(ctx, id, func(sess *model.DocumentSession) error {
		if genErr != nil {
			sess.State = model.StateError
			sess.Error = genErr.Error()
			return nil
		}
		sess.Questions = questions
		sess.UserAnswers = map[string]model.AnswerSet{}
		sess.Correction = nil
		sess.Error = ""
		sess.State = model.StateTaking
		return nil
	})
	if err != nil {
		// 挂起期间会话被删除：结果直接丢弃
		logger.Log.Warn("generation finished for missing session", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}

	if genErr != nil {
		logger.Log.Warn("quiz generation failed",
			zap.String("session_id", id), zap.Error(genErr))
	} else {
		logger.Log.Info("quiz generated",
			zap.String("session_id", id), zap.Int("questions", len(questions)))
	}

	return s.view(session), nil
}

// RecordAnswer 答题跟踪。没有活动会话时是显式的 no-op。
// 单选：整组替换成单元素集合；多选：按成员资格翻转。
func (s *SessionService) RecordAnswer(ctx context.Context, questionID, optionText string) (*SessionView, error) {
	activeID := s.store.ActiveID()
	if activeID == "" {
		return nil, nil
	}

	session, err := s.store.Update(ctx, activeID, func(sess *model.DocumentSession) error {
		if sess.State != model.StateTaking {
			return util.ErrInvalidState
		}
		question := sess.QuestionByID(questionID)
		if question == nil {
			return util.ErrQuestionUnknown
		}

		if question.Type == model.QuestionMultiple {
			sess.UserAnswers[questionID] = sess.UserAnswers[questionID].Toggle(optionText)
		} else {
			sess.UserAnswers[questionID] = model.AnswerSet{optionText}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(session), nil
}

// Submit TAKING_QUIZ -> SUBMITTING_QUIZ -> REVIEWING_QUIZ | ERROR。
// 提交守卫（每题至少一个已选项）在临界区内现场推导。
func (s *SessionService) Submit(ctx context.Context, id string) (*SessionView, error) {
	parked, err := s.store.Update(ctx, id, func(sess *model.DocumentSession) error {
		if sess.State != model.StateTaking {
			return util.ErrInvalidState
		}
		if !sess.AllAnswered() {
			return util.ErrQuizIncomplete
		}
		sess.State = model.StateSubmitting
		return nil
	})
	if err != nil {
		return nil, err
	}

	correction, gradeErr := s.grader.Grade(ctx, parked.Questions, parked.UserAnswers)

	session, err := s.store.Update(ctx, id, func(sess *model.DocumentSession) error {
		if gradeErr != nil {
			sess.State = model.StateError
			sess.Error = gradeErr.Error()
			return nil
		}
		sess.Correction = correction
		sess.WeakTopics = correction.WeakTopics
		sess.Error = ""
		sess.State = model.StateReviewing
		return nil
	})
	if err != nil {
		logger.Log.Warn("grading finished for missing session", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}

	if gradeErr != nil {
		logger.Log.Warn("quiz grading failed",
			zap.String("session_id", id), zap.Error(gradeErr))
	} else {
		logger.Log.Info("quiz graded",
			zap.String("session_id", id),
			zap.Int("score", correction.Score()),
			zap.Int("total", len(parked.Questions)))
	}

	return s.view(session), nil
}

// Retake 同一份文档重新开始：清空题目、作答、批改和薄弱知识点
func (s *SessionService) Retake(ctx context.Context, id string) (*SessionView, error) {
	session, err := s.store.Update(ctx, id, func(sess *model.DocumentSession) error {
		if sess.State != model.StateReviewing {
			return util.ErrInvalidState
		}
		sess.ClearQuizState()
		sess.WeakTopics = ""
		sess.State = model.StateConfiguring
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(session), nil
}

// ImproveWeakTopics 针对性再出题：保留薄弱知识点总结，
// 下一轮生成会把它拼进出题提示
func (s *SessionService) ImproveWeakTopics(ctx context.Context, id string) (*SessionView, error) {
	session, err := s.store.Update(ctx, id, func(sess *model.DocumentSession) error {
		if sess.State != model.StateReviewing {
			return util.ErrInvalidState
		}
		sess.ClearQuizState()
		sess.State = model.StateConfiguring
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(session), nil
}

// AcknowledgeError 用户确认错误后回到配置态。
// 上一轮的半成品（批改失败时残留的题目和作答）一并清掉，
// 保证配置态下 questions/userAnswers/correction 恒为空。
func (s *SessionService) AcknowledgeError(ctx context.Context, id string) (*SessionView, error) {
	session, err := s.store.Update(ctx, id, func(sess *model.DocumentSession) error {
		if sess.State != model.StateError {
			return util.ErrInvalidState
		}
		sess.ClearQuizState()
		sess.State = model.StateConfiguring
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(session), nil
}

// Delete 不可逆删除
func (s *SessionService) Delete(ctx context.Context, id string) error {
	session, err := s.store.Get(id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	go s.storage.RemoveDocument(context.Background(), session.ID, session.FileName)

	logger.Log.Info("session deleted", zap.String("session_id", id))
	return nil
}

// Select 选中会话用于交互，并刷新其 lastAccessed
func (s *SessionService) Select(ctx context.Context, id string) (*SessionView, error) {
	session, err := s.store.Update(ctx, id, func(sess *model.DocumentSession) error {
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.SetActive(id); err != nil {
		return nil, err
	}
	return s.view(session), nil
}

// Deselect "返回"动作：仅取消选中，会话保持原状态
func (s *SessionService) Deselect() {
	s.store.Deselect()
}

func (s *SessionService) Get(id string) (*SessionView, error) {
	session, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return s.view(session), nil
}

// List 按最近访问倒序
func (s *SessionService) List() []*SessionView {
	sessions := s.store.List()
	views := make([]*SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, s.view(session))
	}
	return views
}

// Ping 健康检查透传到快照后端
func (s *SessionService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
