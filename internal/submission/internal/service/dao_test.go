// Copyright 2023 ecodeclub
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ecodeclub/coursework/internal/submission/internal/domain"
	"github.com/ecodeclub/coursework/internal/submission/internal/repository/dao"
	"gorm.io/gorm"
)

var _ dao.SubmissionDAO = (*memDAO)(nil)

// memDAO 内存实现，行为和 GORMSubmissionDAO 保持一致
type memDAO struct {
	mu        sync.Mutex
	subs      map[int64]dao.Submission
	feedbacks map[int64]dao.Feedback
	fbID      int64
}

func newMemDAO() *memDAO {
	return &memDAO{
		subs:      map[int64]dao.Submission{},
		feedbacks: map[int64]dao.Feedback{},
	}
}

func (m *memDAO) Create(ctx context.Context, s dao.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, old := range m.subs {
		if old.AssignmentCode == s.AssignmentCode && old.Submitter == s.Submitter {
			return dao.ErrDuplicateSubmission
		}
	}
	now := time.Now().UnixMilli()
	s.Ctime, s.Utime = now, now
	m.subs[s.Id] = s
	return nil
}

func (m *memDAO) Replace(ctx context.Context, s dao.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.subs[s.Id]
	if !ok {
		return nil
	}
	s.AssignmentCode, s.Submitter, s.Ctime = old.AssignmentCode, old.Submitter, old.Ctime
	s.Utime = time.Now().UnixMilli()
	m.subs[s.Id] = s
	delete(m.feedbacks, s.Id)
	return nil
}

func (m *memDAO) FindByID(ctx context.Context, id int64) (dao.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return dao.Submission{}, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (m *memDAO) FindByCodeAndSubmitter(ctx context.Context, code string, submitter int64) (dao.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.AssignmentCode == code && s.Submitter == submitter {
			return s, nil
		}
	}
	return dao.Submission{}, gorm.ErrRecordNotFound
}

func (m *memDAO) UpdateState(ctx context.Context, id int64, submittedAt int64, state uint8, reason string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subs[id].SubmittedAt != submittedAt {
		return 0, nil
	}
	return m.setState(id, state, reason), nil
}

func (m *memDAO) CompareAndSetState(ctx context.Context, id int64, from, to uint8, reason string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok || s.State != from {
		return 0, nil
	}
	return m.setState(id, to, reason), nil
}

func (m *memDAO) setState(id int64, state uint8, reason string) int64 {
	s, ok := m.subs[id]
	if !ok {
		return 0
	}
	s.State, s.FailureReason, s.Utime = state, reason, time.Now().UnixMilli()
	m.subs[id] = s
	return 1
}

func (m *memDAO) SaveFeedback(ctx context.Context, fb dao.Feedback, submittedAt int64, state uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[fb.SubmissionId]
	if !ok || s.SubmittedAt != submittedAt {
		return dao.ErrSubmissionReplaced
	}
	now := time.Now().UnixMilli()
	if old, ok := m.feedbacks[fb.SubmissionId]; ok {
		fb.Id = old.Id
	} else {
		m.fbID++
		fb.Id = m.fbID
	}
	fb.Ctime, fb.Utime = now, now
	m.feedbacks[fb.SubmissionId] = fb
	m.setState(fb.SubmissionId, state, "")
	return nil
}

func (m *memDAO) FindFeedback(ctx context.Context, submissionID int64) (dao.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fb, ok := m.feedbacks[submissionID]
	if !ok {
		return dao.Feedback{}, gorm.ErrRecordNotFound
	}
	return fb, nil
}

func (m *memDAO) CountByAssignment(ctx context.Context, code string) ([]dao.StateCount, float64, error) {
	return m.count(func(s dao.Submission) bool { return s.AssignmentCode == code })
}

func (m *memDAO) CountBySubmitter(ctx context.Context, submitter int64) ([]dao.StateCount, float64, error) {
	return m.count(func(s dao.Submission) bool { return s.Submitter == submitter })
}

func (m *memDAO) count(match func(s dao.Submission) bool) ([]dao.StateCount, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cnts := map[uint8]int64{}
	var sum, ready float64
	for _, s := range m.subs {
		if !match(s) {
			continue
		}
		cnts[s.State]++
		fb, ok := m.feedbacks[s.Id]
		if ok && s.State == domain.StateFeedbackReady.ToUint8() {
			sum += float64(fb.Score)
			ready++
		}
	}
	res := make([]dao.StateCount, 0, len(cnts))
	for state, cnt := range cnts {
		res = append(res, dao.StateCount{State: state, Cnt: cnt})
	}
	if ready == 0 {
		return res, 0, nil
	}
	return res, sum / ready, nil
}

func (m *memDAO) TopScores(ctx context.Context, limit int) ([]dao.ScoreRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []dao.ScoreRow
	for _, s := range m.subs {
		fb, ok := m.feedbacks[s.Id]
		if !ok || s.State != domain.StateFeedbackReady.ToUint8() {
			continue
		}
		res = append(res, dao.ScoreRow{
			SubmissionId:   s.Id,
			AssignmentCode: s.AssignmentCode,
			Submitter:      s.Submitter,
			Score:          fb.Score,
			Ctime:          s.Ctime,
		})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Score != res[j].Score {
			return res[i].Score > res[j].Score
		}
		if res[i].Ctime != res[j].Ctime {
			return res[i].Ctime < res[j].Ctime
		}
		return res[i].SubmissionId < res[j].SubmissionId
	})
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m *memDAO) FindStale(ctx context.Context, state uint8, before int64, limit int) ([]dao.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []dao.Submission
	for _, s := range m.subs {
		if s.State == state && s.Utime < before {
			res = append(res, s)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Utime < res[j].Utime })
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

// touch 修改更新时间，模拟很久之前的提交
func (m *memDAO) touch(id int64, utime int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.subs[id]
	s.Utime = utime
	m.subs[id] = s
}
