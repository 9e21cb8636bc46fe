//go:build e2e

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/ecodeclub/coursework/internal/submission/internal/domain"
	"github.com/ecodeclub/coursework/internal/submission/internal/repository/dao"
	testioc "github.com/ecodeclub/coursework/internal/test/ioc"
	"github.com/ecodeclub/ekit/sqlx"
	"github.com/ego-component/egorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type SubmissionDAOTestSuite struct {
	suite.Suite
	db  *egorm.Component
	dao dao.SubmissionDAO
}

func TestSubmissionDAO(t *testing.T) {
	suite.Run(t, new(SubmissionDAOTestSuite))
}

func (s *SubmissionDAOTestSuite) SetupSuite() {
	s.db = testioc.InitDB()
	require.NoError(s.T(), dao.InitTables(s.db))
	s.dao = dao.NewGORMSubmissionDAO(s.db)
}

func (s *SubmissionDAOTestSuite) TearDownTest() {
	require.NoError(s.T(), s.db.Exec("TRUNCATE TABLE `submissions`").Error)
	require.NoError(s.T(), s.db.Exec("TRUNCATE TABLE `submission_feedbacks`").Error)
}

func (s *SubmissionDAOTestSuite) create(id int64, code string, submitter int64, state domain.State) {
	require.NoError(s.T(), s.dao.Create(context.Background(), dao.Submission{
		Id:             id,
		AssignmentCode: code,
		Submitter:      submitter,
		Kind:           string(domain.KindBlog),
		Content:        "正文",
		Meta: sqlx.JsonColumn[domain.Meta]{
			Valid: true,
			Val:   domain.Meta{},
		},
		State:       state.ToUint8(),
		SubmittedAt: 100,
	}))
}

func (s *SubmissionDAOTestSuite) TestCreate_Duplicate() {
	t := s.T()
	s.create(1, "ABC123", 1, domain.StateCreated)
	err := s.dao.Create(context.Background(), dao.Submission{
		Id:             2,
		AssignmentCode: "ABC123",
		Submitter:      1,
		Kind:           string(domain.KindBlog),
	})
	assert.ErrorIs(t, err, dao.ErrDuplicateSubmission)
}

func (s *SubmissionDAOTestSuite) TestSaveFeedback() {
	t := s.T()
	ctx := context.Background()
	s.create(1, "ABC123", 1, domain.StateFeedbackPending)
	for _, score := range []int{60, 90} {
		err := s.dao.SaveFeedback(ctx, dao.Feedback{
			SubmissionId: 1,
			Score:        score,
			Subscores: sqlx.JsonColumn[domain.Subscores]{
				Valid: true,
				Val:   domain.Subscores{Quality: score},
			},
			Content: "评审内容",
		}, 100, domain.StateFeedbackReady.ToUint8())
		require.NoError(t, err)
	}
	fb, err := s.dao.FindFeedback(ctx, 1)
	require.NoError(t, err)
	// 重新生成覆盖之前的结果
	assert.Equal(t, 90, fb.Score)
	assert.Equal(t, 90, fb.Subscores.Val.Quality)
	sub, err := s.dao.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StateFeedbackReady.ToUint8(), sub.State)

	// 覆盖提交的时候删除评审
	sub.Content = "新的正文"
	sub.State = domain.StateCreated.ToUint8()
	sub.SubmittedAt = 200
	require.NoError(t, s.dao.Replace(ctx, sub))
	_, err = s.dao.FindFeedback(ctx, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// 旧内容的生成结果不能写进去
	err = s.dao.SaveFeedback(ctx, dao.Feedback{SubmissionId: 1, Score: 10}, 100, domain.StateFeedbackReady.ToUint8())
	assert.ErrorIs(t, err, dao.ErrSubmissionReplaced)
	_, err = s.dao.FindFeedback(ctx, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	cnt, err := s.dao.UpdateState(ctx, 1, 100, domain.StateFeedbackFailed.ToUint8(), "timeout")
	require.NoError(t, err)
	assert.Zero(t, cnt)
	sub, err = s.dao.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StateCreated.ToUint8(), sub.State)

	cnt, err = s.dao.UpdateState(ctx, 1, 200, domain.StateFeedbackPending.ToUint8(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cnt)
}

func (s *SubmissionDAOTestSuite) TestCountAndTopScores() {
	t := s.T()
	ctx := context.Background()
	s.create(1, "ABC123", 1, domain.StateFeedbackPending)
	s.create(2, "ABC123", 2, domain.StateFeedbackPending)
	s.create(3, "ABC123", 3, domain.StateFeedbackFailed)
	s.create(4, "XYZ999", 1, domain.StateFeedbackPending)
	for id, score := range map[int64]int{1: 70, 2: 90, 4: 99} {
		require.NoError(t, s.dao.SaveFeedback(ctx, dao.Feedback{SubmissionId: id, Score: score},
			100, domain.StateFeedbackReady.ToUint8()))
	}

	counts, avg, err := s.dao.CountByAssignment(ctx, "ABC123")
	require.NoError(t, err)
	assert.ElementsMatch(t, []dao.StateCount{
		{State: domain.StateFeedbackReady.ToUint8(), Cnt: 2},
		{State: domain.StateFeedbackFailed.ToUint8(), Cnt: 1},
	}, counts)
	assert.Equal(t, 80.0, avg)

	counts, avg, err = s.dao.CountBySubmitter(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []dao.StateCount{{State: domain.StateFeedbackReady.ToUint8(), Cnt: 2}}, counts)
	assert.InDelta(t, 84.5, avg, 0.001)

	rows, err := s.dao.TopScores(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(4), rows[0].SubmissionId)
	assert.Equal(t, 99, rows[0].Score)
	assert.Equal(t, int64(2), rows[1].SubmissionId)
}

func (s *SubmissionDAOTestSuite) TestCompareAndSetState() {
	t := s.T()
	ctx := context.Background()
	s.create(1, "ABC123", 1, domain.StateFeedbackPending)

	stale, err := s.dao.FindStale(ctx, domain.StateFeedbackPending.ToUint8(), time.Now().Add(time.Minute).UnixMilli(), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)

	cnt, err := s.dao.CompareAndSetState(ctx, 1, domain.StateCreated.ToUint8(),
		domain.StateFeedbackFailed.ToUint8(), string(domain.FailureAbandoned))
	require.NoError(t, err)
	assert.Equal(t, int64(0), cnt)

	cnt, err = s.dao.CompareAndSetState(ctx, 1, domain.StateFeedbackPending.ToUint8(),
		domain.StateFeedbackFailed.ToUint8(), string(domain.FailureAbandoned))
	require.NoError(t, err)
	assert.Equal(t, int64(1), cnt)

	sub, err := s.dao.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, string(domain.FailureAbandoned), sub.FailureReason)
}
