package dao

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ecodeclub/coursework/internal/submission/internal/domain"
	"github.com/ecodeclub/ekit/sqlx"
	"github.com/ego-component/egorm"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDuplicateSubmission = errors.New("重复提交")
	// ErrSubmissionReplaced submitted_at 对不上，说明提交已经被覆盖
	ErrSubmissionReplaced = errors.New("提交已经被覆盖")
)

type SubmissionDAO interface {
	Create(ctx context.Context, s Submission) error
	// Replace 覆盖已有的提交，同时删除之前的评审结果
	Replace(ctx context.Context, s Submission) error
	FindByID(ctx context.Context, id int64) (Submission, error)
	FindByCodeAndSubmitter(ctx context.Context, code string, submitter int64) (Submission, error)
	// UpdateState 只更新 submitted_at 没有变化的提交，返回受影响的行数
	UpdateState(ctx context.Context, id int64, submittedAt int64, state uint8, reason string) (int64, error)
	// CompareAndSetState 只有当前状态是 from 的时候才更新
	CompareAndSetState(ctx context.Context, id int64, from, to uint8, reason string) (int64, error)
	// SaveFeedback 保存评审结果，并且把提交标记为生成成功。
	// 提交已经被覆盖的时候返回 ErrSubmissionReplaced，不会写入评审结果
	SaveFeedback(ctx context.Context, fb Feedback, submittedAt int64, state uint8) error
	FindFeedback(ctx context.Context, submissionID int64) (Feedback, error)
	CountByAssignment(ctx context.Context, code string) ([]StateCount, float64, error)
	CountBySubmitter(ctx context.Context, submitter int64) ([]StateCount, float64, error)
	TopScores(ctx context.Context, limit int) ([]ScoreRow, error)
	// FindStale utime 早于 before 的某个状态的提交
	FindStale(ctx context.Context, state uint8, before int64, limit int) ([]Submission, error)
}

type GORMSubmissionDAO struct {
	db *egorm.Component
}

func NewGORMSubmissionDAO(db *egorm.Component) SubmissionDAO {
	return &GORMSubmissionDAO{db: db}
}

func (g *GORMSubmissionDAO) Create(ctx context.Context, s Submission) error {
	now := time.Now().UnixMilli()
	s.Ctime, s.Utime = now, now
	err := g.db.WithContext(ctx).Create(&s).Error
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		const uniqueIndexErrNo uint16 = 1062
		if me.Number == uniqueIndexErrNo {
			return ErrDuplicateSubmission
		}
	}
	return err
}

func (g *GORMSubmissionDAO) Replace(ctx context.Context, s Submission) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&Submission{}).Where("id = ?", s.Id).Updates(map[string]any{
			"kind":           s.Kind,
			"reference":      s.Reference,
			"title":          s.Title,
			"content":        s.Content,
			"structure":      s.Structure,
			"meta":           s.Meta,
			"state":          s.State,
			"failure_reason": s.FailureReason,
			"submitted_at":   s.SubmittedAt,
			"utime":          time.Now().UnixMilli(),
		}).Error
		if err != nil {
			return err
		}
		return tx.Where("submission_id = ?", s.Id).Delete(&Feedback{}).Error
	})
}

func (g *GORMSubmissionDAO) FindByID(ctx context.Context, id int64) (Submission, error) {
	var res Submission
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&res).Error
	return res, err
}

func (g *GORMSubmissionDAO) FindByCodeAndSubmitter(ctx context.Context, code string, submitter int64) (Submission, error) {
	var res Submission
	err := g.db.WithContext(ctx).
		Where("assignment_code = ? AND submitter = ?", code, submitter).
		First(&res).Error
	return res, err
}

func (g *GORMSubmissionDAO) UpdateState(ctx context.Context, id int64, submittedAt int64, state uint8, reason string) (int64, error) {
	var cnt int64
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 值没变的时候 RowsAffected 是 0，所以单独查一次版本
		err := tx.Model(&Submission{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND submitted_at = ?", id, submittedAt).
			Count(&cnt).Error
		if err != nil || cnt == 0 {
			return err
		}
		return tx.Model(&Submission{}).Where("id = ?", id).Updates(map[string]any{
			"state":          state,
			"failure_reason": reason,
			"utime":          time.Now().UnixMilli(),
		}).Error
	})
	return cnt, err
}

func (g *GORMSubmissionDAO) CompareAndSetState(ctx context.Context, id int64, from, to uint8, reason string) (int64, error) {
	res := g.db.WithContext(ctx).Model(&Submission{}).
		Where("id = ? AND state = ?", id, from).
		Updates(map[string]any{
			"state":          to,
			"failure_reason": reason,
			"utime":          time.Now().UnixMilli(),
		})
	return res.RowsAffected, res.Error
}

func (g *GORMSubmissionDAO) SaveFeedback(ctx context.Context, fb Feedback, submittedAt int64, state uint8) error {
	now := time.Now().UnixMilli()
	fb.Ctime, fb.Utime = now, now
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		err := tx.Model(&Submission{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND submitted_at = ?", fb.SubmissionId, submittedAt).
			Count(&cnt).Error
		if err != nil {
			return err
		}
		if cnt == 0 {
			return ErrSubmissionReplaced
		}
		err = tx.Model(&Submission{}).Where("id = ?", fb.SubmissionId).Updates(map[string]any{
			"state":          state,
			"failure_reason": "",
			"utime":          now,
		}).Error
		if err != nil {
			return err
		}
		// 重新生成的时候整体覆盖
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "submission_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"score", "subscores", "content", "model", "tokens_used", "latency_ms", "ctime", "utime",
			}),
		}).Create(&fb).Error
	})
}

func (g *GORMSubmissionDAO) FindFeedback(ctx context.Context, submissionID int64) (Feedback, error) {
	var res Feedback
	err := g.db.WithContext(ctx).Where("submission_id = ?", submissionID).First(&res).Error
	return res, err
}

func (g *GORMSubmissionDAO) CountByAssignment(ctx context.Context, code string) ([]StateCount, float64, error) {
	return g.count(ctx, "s.assignment_code = ?", code)
}

func (g *GORMSubmissionDAO) CountBySubmitter(ctx context.Context, submitter int64) ([]StateCount, float64, error) {
	return g.count(ctx, "s.submitter = ?", submitter)
}

func (g *GORMSubmissionDAO) count(ctx context.Context, where string, arg any) ([]StateCount, float64, error) {
	var counts []StateCount
	err := g.db.WithContext(ctx).Table("submissions AS s").
		Select("s.state AS state, COUNT(*) AS cnt").
		Where(where, arg).
		Group("s.state").
		Scan(&counts).Error
	if err != nil {
		return nil, 0, err
	}
	var avg sql.NullFloat64
	err = g.db.WithContext(ctx).Table("submissions AS s").
		Joins("JOIN submission_feedbacks AS f ON f.submission_id = s.id").
		Select("AVG(f.score)").
		Where(where, arg).
		Where("s.state = ?", domain.StateFeedbackReady.ToUint8()).
		Scan(&avg).Error
	return counts, avg.Float64, err
}

func (g *GORMSubmissionDAO) TopScores(ctx context.Context, limit int) ([]ScoreRow, error) {
	var res []ScoreRow
	err := g.db.WithContext(ctx).Table("submissions AS s").
		Joins("JOIN submission_feedbacks AS f ON f.submission_id = s.id").
		Select("s.id AS submission_id, s.assignment_code, s.submitter, f.score, s.ctime").
		Where("s.state = ?", domain.StateFeedbackReady.ToUint8()).
		Order("f.score DESC, s.ctime ASC").
		Limit(limit).
		Scan(&res).Error
	return res, err
}

func (g *GORMSubmissionDAO) FindStale(ctx context.Context, state uint8, before int64, limit int) ([]Submission, error) {
	var res []Submission
	err := g.db.WithContext(ctx).
		Select("id", "assignment_code", "submitter", "state", "utime").
		Where("state = ? AND utime < ?", state, before).
		Order("utime ASC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

type StateCount struct {
	State uint8
	Cnt   int64
}

type ScoreRow struct {
	SubmissionId   int64
	AssignmentCode string
	Submitter      int64
	Score          int
	Ctime          int64
}

type Submission struct {
	// Id 雪花算法生成
	Id             int64                        `gorm:"primaryKey;autoIncrement:false"`
	AssignmentCode string                       `gorm:"type:char(6);not null;uniqueIndex:uniq_code_submitter,priority:1"`
	Submitter      int64                        `gorm:"not null;uniqueIndex:uniq_code_submitter,priority:2;index"`
	Kind           string                       `gorm:"type:varchar(16);not null"`
	Reference      string                       `gorm:"type:varchar(1024)"`
	Title          string                       `gorm:"type:varchar(512)"`
	Content        string                       `gorm:"type:mediumtext"`
	Structure      string                       `gorm:"type:text"`
	Meta           sqlx.JsonColumn[domain.Meta] `gorm:"type:json;comment:文件清单和统计信息"`
	State          uint8                        `gorm:"type:tinyint unsigned;not null;index:idx_state_utime,priority:1;comment:1=已创建 2=生成中 3=生成成功 4=生成失败"`
	FailureReason  string                       `gorm:"type:varchar(32)"`
	SubmittedAt    int64
	Ctime          int64
	Utime          int64 `gorm:"index:idx_state_utime,priority:2"`
}

func (Submission) TableName() string {
	return "submissions"
}

type Feedback struct {
	Id           int64                             `gorm:"primaryKey,autoIncrement"`
	SubmissionId int64                             `gorm:"not null;uniqueIndex"`
	Score        int                               `gorm:"not null"`
	Subscores    sqlx.JsonColumn[domain.Subscores] `gorm:"type:json"`
	Content      string                            `gorm:"type:text"`
	Model        string                            `gorm:"type:varchar(128)"`
	TokensUsed   int64
	LatencyMs    int64
	Ctime        int64
	Utime        int64
}

func (Feedback) TableName() string {
	return "submission_feedbacks"
}
