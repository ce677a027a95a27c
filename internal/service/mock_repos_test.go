package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/model"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/repository"
	pkgerrors "github.com/Spinoza1124/emotion-labeling-refactoring/pkg/errors"
)

// memStore 内存版存储，供各 mock repository 共享。
// 所有写操作持同一把锁，模拟数据库事务的原子性。
type memStore struct {
	mu            sync.Mutex
	users         map[string]*model.User
	groups        map[int]*model.GroupStatus
	speakers      []model.SpeakerGroup
	audioFiles    map[string][]string
	assignments   map[string]*model.GroupAssignment
	speakerOrders map[string][]string
	audioOrders   map[string]map[string][]string
	labels        map[string]*model.EmotionLabel

	// 错误注入，用于降级路径测试
	getSpeakerOrderErr  error
	saveSpeakerOrderErr error
	getAudioOrderErr    error
	saveAudioOrderErr   error
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[string]*model.User),
		groups:        make(map[int]*model.GroupStatus),
		audioFiles:    make(map[string][]string),
		assignments:   make(map[string]*model.GroupAssignment),
		speakerOrders: make(map[string][]string),
		audioOrders:   make(map[string]map[string][]string),
		labels:        make(map[string]*model.EmotionLabel),
	}
}

func newTestRepo(store *memStore) *repository.Repository {
	return &repository.Repository{
		User:       &mockUserRepo{store},
		Group:      &mockGroupRepo{store},
		Assignment: &mockAssignmentRepo{store},
		Order:      &mockOrderRepo{store},
		Label:      &mockLabelRepo{store},
	}
}

func labelKey(audioFile, speaker, username string) string {
	return audioFile + "|" + speaker + "|" + username
}

// ── UserRepository ──

type mockUserRepo struct{ s *memStore }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[user.Username]; ok {
		return gorm.ErrDuplicatedKey
	}
	cp := *user
	m.s.users[user.Username] = &cp
	return nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var names []string
	for name := range m.s.users {
		names = append(names, name)
	}
	sort.Strings(names)
	users := make([]model.User, 0, len(names))
	for _, name := range names {
		users = append(users, *m.s.users[name])
	}
	return users, nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, username, passwordHash string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if u, ok := m.s.users[username]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, username string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.users, username)
	return nil
}

// ── GroupRepository ──

type mockGroupRepo struct{ s *memStore }

func (m *mockGroupRepo) CreateGroup(_ context.Context, group *model.GroupStatus) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.groups[group.GroupID]; ok {
		return nil // OnConflict DoNothing
	}
	cp := *group
	m.s.groups[group.GroupID] = &cp
	return nil
}

func (m *mockGroupRepo) GetByID(_ context.Context, groupID int) (*model.GroupStatus, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	g, ok := m.s.groups[groupID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *mockGroupRepo) FindAvailable(_ context.Context, capacity int) (*model.GroupStatus, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var ids []int
	for id := range m.s.groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		g := m.s.groups[id]
		if g.Status == model.GroupStatusAvailable && g.AssignedCount < capacity {
			cp := *g
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) ListFleetStatus(_ context.Context) ([]repository.GroupFleetStatus, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var ids []int
	for id := range m.s.groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	actual := make(map[int]int)
	for _, a := range m.s.assignments {
		actual[a.GroupID]++
	}
	result := make([]repository.GroupFleetStatus, 0, len(ids))
	for _, id := range ids {
		g := m.s.groups[id]
		result = append(result, repository.GroupFleetStatus{
			GroupID:        g.GroupID,
			TotalDuration:  g.TotalDuration,
			TotalSegments:  g.TotalSegments,
			AssignedCount:  g.AssignedCount,
			CompletedCount: g.CompletedCount,
			Status:         g.Status,
			ActualAssigned: actual[id],
		})
	}
	return result, nil
}

func (m *mockGroupRepo) UpsertSpeakers(_ context.Context, speakers []model.SpeakerGroup) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, sp := range speakers {
		exists := false
		for _, have := range m.s.speakers {
			if have.GroupID == sp.GroupID && have.SpeakerID == sp.SpeakerID {
				exists = true
				break
			}
		}
		if !exists {
			m.s.speakers = append(m.s.speakers, sp)
		}
	}
	return nil
}

func (m *mockGroupRepo) ListSpeakers(_ context.Context, groupID int) ([]model.SpeakerGroup, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var speakers []model.SpeakerGroup
	for _, sp := range m.s.speakers {
		if sp.GroupID == groupID {
			speakers = append(speakers, sp)
		}
	}
	sort.Slice(speakers, func(i, j int) bool { return speakers[i].Duration > speakers[j].Duration })
	return speakers, nil
}

func (m *mockGroupRepo) ListSpeakerIDs(_ context.Context, groupID int) ([]string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var ids []string
	for _, sp := range m.s.speakers {
		if sp.GroupID == groupID {
			ids = append(ids, sp.SpeakerID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockGroupRepo) UpsertAudioFiles(_ context.Context, files []model.SpeakerAudioFile) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, f := range files {
		exists := false
		for _, have := range m.s.audioFiles[f.SpeakerID] {
			if have == f.FileName {
				exists = true
				break
			}
		}
		if !exists {
			m.s.audioFiles[f.SpeakerID] = append(m.s.audioFiles[f.SpeakerID], f.FileName)
		}
	}
	return nil
}

func (m *mockGroupRepo) ListAudioFiles(_ context.Context, speakerID string) ([]string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	files := append([]string{}, m.s.audioFiles[speakerID]...)
	sort.Strings(files)
	return files, nil
}

func (m *mockGroupRepo) CountGroups(_ context.Context) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return int64(len(m.s.groups)), nil
}

// ── AssignmentRepository ──

type mockAssignmentRepo struct{ s *memStore }

func (m *mockAssignmentRepo) GetActiveByUsername(_ context.Context, username string) (*model.GroupAssignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.assignments[username]
	if !ok || !a.Active() {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAssignmentRepo) GetByUsername(_ context.Context, username string) (*model.GroupAssignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.assignments[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAssignmentRepo) GetByGroupAndUsername(_ context.Context, groupID int, username string) (*model.GroupAssignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.assignments[username]
	if !ok || a.GroupID != groupID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAssignmentRepo) Commit(_ context.Context, username string, groupID int, capacity int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	group, ok := m.s.groups[groupID]
	if !ok {
		return gorm.ErrRecordNotFound
	}

	if a, ok := m.s.assignments[username]; ok {
		if a.GroupID == groupID {
			return nil // 幂等
		}
		if a.Active() {
			return pkgerrors.ErrActiveAssignmentExists
		}
	}

	if group.Status != model.GroupStatusAvailable || group.AssignedCount >= capacity {
		return pkgerrors.ErrCapacityExceeded
	}

	m.s.assignments[username] = &model.GroupAssignment{
		GroupID:       groupID,
		Username:      username,
		Status:        model.AssignmentStatusAssigned,
		TotalSegments: group.TotalSegments,
	}
	group.AssignedCount++
	if group.AssignedCount >= capacity {
		group.Status = model.GroupStatusInProgress
	}
	return nil
}

func (m *mockAssignmentRepo) UpdateProgress(_ context.Context, username string, groupID int, progress int) (*model.GroupAssignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	a, ok := m.s.assignments[username]
	if !ok || a.GroupID != groupID {
		return nil, gorm.ErrRecordNotFound
	}
	if progress < a.ProgressCount {
		return nil, pkgerrors.ErrProgressRegression
	}

	wasCompleted := a.Status == model.AssignmentStatusCompleted
	a.ProgressCount = progress
	switch {
	case a.TotalSegments > 0 && progress >= a.TotalSegments:
		a.Status = model.AssignmentStatusCompleted
		if a.CompletedAt == nil {
			now := time.Now()
			a.CompletedAt = &now
		}
	case progress > 0:
		a.Status = model.AssignmentStatusInProgress
	}

	// 与真实仓储一致：只有满员分组在全员完成后才整组完结
	if a.Status == model.AssignmentStatusCompleted && !wasCompleted {
		if g, ok := m.s.groups[groupID]; ok {
			g.CompletedCount++
			if g.Status == model.GroupStatusInProgress && g.CompletedCount >= g.AssignedCount {
				g.Status = model.GroupStatusCompleted
			}
		}
	}

	cp := *a
	return &cp, nil
}

func (m *mockAssignmentRepo) ListByGroup(_ context.Context, groupID int) ([]model.GroupAssignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var assignments []model.GroupAssignment
	for _, a := range m.s.assignments {
		if a.GroupID == groupID {
			assignments = append(assignments, *a)
		}
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].Username < assignments[j].Username })
	return assignments, nil
}

func (m *mockAssignmentRepo) DeleteByUsername(_ context.Context, username string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.assignments[username]
	if !ok {
		return nil
	}
	delete(m.s.assignments, username)
	if g, ok := m.s.groups[a.GroupID]; ok && g.AssignedCount > 0 {
		g.AssignedCount--
		g.Status = model.GroupStatusAvailable
	}
	return nil
}

// ── OrderRepository ──

type mockOrderRepo struct{ s *memStore }

func (m *mockOrderRepo) GetSpeakerOrder(_ context.Context, username string) (*model.UserSpeakerOrder, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.getSpeakerOrderErr != nil {
		return nil, m.s.getSpeakerOrderErr
	}
	order, ok := m.s.speakerOrders[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.UserSpeakerOrder{
		Username:     username,
		SpeakerOrder: append(model.StringList{}, order...),
	}, nil
}

func (m *mockOrderRepo) SaveSpeakerOrder(_ context.Context, username string, order []string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.saveSpeakerOrderErr != nil {
		return m.s.saveSpeakerOrderErr
	}
	m.s.speakerOrders[username] = append([]string{}, order...)
	return nil
}

func (m *mockOrderRepo) GetAudioOrder(_ context.Context, username, speaker string) (*model.UserAudioOrder, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.getAudioOrderErr != nil {
		return nil, m.s.getAudioOrderErr
	}
	order, ok := m.s.audioOrders[username][speaker]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.UserAudioOrder{
		Username:   username,
		Speaker:    speaker,
		AudioOrder: append(model.StringList{}, order...),
	}, nil
}

func (m *mockOrderRepo) SaveAudioOrder(_ context.Context, username, speaker string, order []string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.saveAudioOrderErr != nil {
		return m.s.saveAudioOrderErr
	}
	if m.s.audioOrders[username] == nil {
		m.s.audioOrders[username] = make(map[string][]string)
	}
	m.s.audioOrders[username][speaker] = append([]string{}, order...)
	return nil
}

func (m *mockOrderRepo) DeleteByUsername(_ context.Context, username string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.speakerOrders, username)
	delete(m.s.audioOrders, username)
	return nil
}

func (m *mockOrderRepo) CountByUsername(_ context.Context, username string) (int64, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var speakerOrders int64
	if _, ok := m.s.speakerOrders[username]; ok {
		speakerOrders = 1
	}
	return speakerOrders, int64(len(m.s.audioOrders[username])), nil
}

// ── LabelRepository ──

type mockLabelRepo struct{ s *memStore }

func (m *mockLabelRepo) Upsert(_ context.Context, label *model.EmotionLabel) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *label
	cp.RecomputeCompleteness() // 模拟 BeforeSave 钩子
	key := labelKey(label.AudioFile, label.Speaker, label.Username)
	if have, ok := m.s.labels[key]; ok {
		cp.PlayCount = have.PlayCount
	}
	m.s.labels[key] = &cp
	return nil
}

func (m *mockLabelRepo) Get(_ context.Context, username, speaker, audioFile string) (*model.EmotionLabel, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	l, ok := m.s.labels[labelKey(audioFile, speaker, username)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	cp.RecomputeCompleteness() // 模拟 AfterFind 钩子
	return &cp, nil
}

func (m *mockLabelRepo) ListByUserAndSpeaker(_ context.Context, username, speaker string) ([]model.EmotionLabel, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var labels []model.EmotionLabel
	for _, l := range m.s.labels {
		if l.Username == username && l.Speaker == speaker {
			cp := *l
			cp.RecomputeCompleteness()
			labels = append(labels, cp)
		}
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].AudioFile < labels[j].AudioFile })
	return labels, nil
}

func (m *mockLabelRepo) ListBySpeakers(_ context.Context, speakers []string) ([]model.EmotionLabel, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	in := make(map[string]bool, len(speakers))
	for _, sp := range speakers {
		in[sp] = true
	}
	var labels []model.EmotionLabel
	for _, l := range m.s.labels {
		if in[l.Speaker] {
			cp := *l
			cp.RecomputeCompleteness()
			labels = append(labels, cp)
		}
	}
	sort.Slice(labels, func(i, j int) bool {
		if labels[i].Speaker != labels[j].Speaker {
			return labels[i].Speaker < labels[j].Speaker
		}
		if labels[i].Username != labels[j].Username {
			return labels[i].Username < labels[j].Username
		}
		return labels[i].AudioFile < labels[j].AudioFile
	})
	return labels, nil
}

func (m *mockLabelRepo) CountFullyComplete(_ context.Context, username string, speakers []string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	in := make(map[string]bool, len(speakers))
	for _, sp := range speakers {
		in[sp] = true
	}
	var count int64
	for _, l := range m.s.labels {
		if l.Username == username && in[l.Speaker] && l.VAComplete && l.DiscreteComplete {
			count++
		}
	}
	return count, nil
}

func (m *mockLabelRepo) IncrementPlayCount(_ context.Context, username, speaker, audioFile string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	key := labelKey(audioFile, speaker, username)
	if l, ok := m.s.labels[key]; ok {
		l.PlayCount++
		return nil
	}
	m.s.labels[key] = &model.EmotionLabel{
		AudioFile: audioFile,
		Speaker:   speaker,
		Username:  username,
		PlayCount: 1,
	}
	return nil
}

func (m *mockLabelRepo) GetPlayCount(_ context.Context, username, speaker, audioFile string) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if l, ok := m.s.labels[labelKey(audioFile, speaker, username)]; ok {
		return l.PlayCount, nil
	}
	return 0, nil
}

func (m *mockLabelRepo) DeleteByUsername(_ context.Context, username string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for key, l := range m.s.labels {
		if l.Username == username {
			delete(m.s.labels, key)
		}
	}
	return nil
}
