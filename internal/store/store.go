package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Mouaaaaadddd/quizmaster/internal/model"
	"github.com/Mouaaaaadddd/quizmaster/internal/util"
	"github.com/Mouaaaaadddd/quizmaster/pkg/logger"
	"github.com/Mouaaaaadddd/quizmaster/pkg/monitoring"

	"go.uber.org/zap"
)

// SessionStore 进程内唯一的会话映射，所有修改串行通过这里，
// 每次修改后整体镜像到 SnapshotStore。
//
// 持久化约定（见 SnapshotStore）：
//   - Load 必须先于任何 Save 完成，防止启动竞态用空 store 覆盖持久数据；
//   - Save 失败仅记日志，内存状态在本进程生命周期内保持权威；
//   - Load 失败（损坏/不兼容）非致命，从空 store 起步。
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.DocumentSession
	activeID string
	loaded   bool
	snapshot SnapshotStore
}

func NewSessionStore(snapshot SnapshotStore) *SessionStore {
	return &SessionStore{
		sessions: map[string]*model.DocumentSession{},
		snapshot: snapshot,
	}
}

// Load 从持久层恢复会话。损坏的快照按空快照处理，只记日志不报错。
func (s *SessionStore) Load(ctx context.Context) {
	sessions, err := s.snapshot.Load(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		logger.Log.Warn("session snapshot unreadable, starting empty", zap.Error(err))
		sessions = map[string]*model.DocumentSession{}
	} else {
		logger.Log.Info("session snapshot loaded", zap.Int("sessions", len(sessions)))
	}

	// 旧快照可能缺字段，反序列化出 nil map/slice，这里统一补齐，
	// 后续的写入路径不再做判空
	for _, session := range sessions {
		if session.UserAnswers == nil {
			session.UserAnswers = map[string]model.AnswerSet{}
		}
		if session.Questions == nil {
			session.Questions = []model.Question{}
		}
	}

	s.sessions = sessions
	s.loaded = true
}

// Create 新建会话并持久化
func (s *SessionStore) Create(ctx context.Context, session *model.DocumentSession) (*model.DocumentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil, util.ErrStoreNotLoaded
	}

	s.sessions[session.ID] = session
	s.persistLocked(ctx)
	return session.Clone(), nil
}

// Get 返回会话的拷贝
func (s *SessionStore) Get(id string) (*model.DocumentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Update 在锁内对会话应用局部修改并持久化。
// 无论 mutate 动了什么，都会刷新 LastAccessed。
// mutate 作用在拷贝上，返回错误时原记录不受任何影响，也不落盘。
func (s *SessionStore) Update(ctx context.Context, id string, mutate func(*model.DocumentSession) error) (*model.DocumentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil, util.ErrStoreNotLoaded
	}

	session, ok := s.sessions[id]
	if !ok {
		return nil, util.ErrSessionNotFound
	}

	next := session.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}

	next.LastAccessed = time.Now()
	s.sessions[id] = next
	s.persistLocked(ctx)
	return next.Clone(), nil
}

// Delete 不可逆删除；若删除的是当前活动会话则同时取消选中
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return util.ErrStoreNotLoaded
	}

	if _, ok := s.sessions[id]; !ok {
		return util.ErrSessionNotFound
	}

	delete(s.sessions, id)
	if s.activeID == id {
		s.activeID = ""
	}
	s.persistLocked(ctx)
	return nil
}

// List 按 LastAccessed 倒序返回全部会话的拷贝
func (s *SessionStore) List() []*model.DocumentSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.DocumentSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastAccessed.After(out[j].LastAccessed)
	})
	return out
}

// SetActive 选中会话用于交互，同一时刻至多一个
func (s *SessionStore) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return util.ErrSessionNotFound
	}
	s.activeID = id
	return nil
}

// Deselect 返回列表页：仅取消选中，不改会话本身的状态
func (s *SessionStore) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = ""
}

func (s *SessionStore) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Ping 透传后端健康检查
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.snapshot.Ping(ctx)
}

// persistLocked 全量落盘。调用方必须持有 s.mu。
// 失败只记日志：单写者 + 幂等全量覆盖，下一次成功写入即可追平。
func (s *SessionStore) persistLocked(ctx context.Context) {
	if !s.loaded {
		logger.Log.Warn("skip snapshot save before load completes")
		return
	}
	if err := s.snapshot.Save(ctx, s.sessions); err != nil {
		monitoring.SnapshotSaveFailures.Inc()
		logger.Log.Error("session snapshot save failed, in-memory state stays authoritative", zap.Error(err))
	}
}
