package dao

import (
	"context"
	"time"

	"github.com/ecodeclub/ekit/sqlx"
	"github.com/ego-component/egorm"
	"gorm.io/gorm"
)

type AssignmentDAO interface {
	Create(ctx context.Context, a Assignment) (int64, error)
	// Update 按照 code 更新，返回受影响的行数
	Update(ctx context.Context, a Assignment) (int64, error)
	UpdateStatus(ctx context.Context, code string, status uint8) (int64, error)
	Delete(ctx context.Context, code string) (int64, error)
	FindByCode(ctx context.Context, code string) (Assignment, error)
	Exists(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, creator int64, status uint8, offset, limit int) ([]Assignment, error)
	Count(ctx context.Context, creator int64, status uint8) (int64, error)
	ActiveCodes(ctx context.Context) ([]string, error)
}

type GORMAssignmentDAO struct {
	db *egorm.Component
}

func NewGORMAssignmentDAO(db *egorm.Component) AssignmentDAO {
	return &GORMAssignmentDAO{db: db}
}

func (g *GORMAssignmentDAO) Create(ctx context.Context, a Assignment) (int64, error) {
	now := time.Now().UnixMilli()
	a.Ctime = now
	a.Utime = now
	err := g.db.WithContext(ctx).Create(&a).Error
	return a.Id, err
}

func (g *GORMAssignmentDAO) Update(ctx context.Context, a Assignment) (int64, error) {
	res := g.db.WithContext(ctx).Model(&Assignment{}).
		Where("code = ?", a.Code).
		Updates(map[string]any{
			"title":           a.Title,
			"description":     a.Description,
			"requirements":    a.Requirements,
			"recommendations": a.Recommendations,
			"deadline":        a.Deadline,
			"status":          a.Status,
			"allow_resubmit":  a.AllowResubmit,
			"cohort_size":     a.CohortSize,
			"utime":           time.Now().UnixMilli(),
		})
	return res.RowsAffected, res.Error
}

func (g *GORMAssignmentDAO) UpdateStatus(ctx context.Context, code string, status uint8) (int64, error) {
	res := g.db.WithContext(ctx).Model(&Assignment{}).
		Where("code = ?", code).
		Updates(map[string]any{
			"status": status,
			"utime":  time.Now().UnixMilli(),
		})
	return res.RowsAffected, res.Error
}

func (g *GORMAssignmentDAO) Delete(ctx context.Context, code string) (int64, error) {
	res := g.db.WithContext(ctx).Where("code = ?", code).Delete(&Assignment{})
	return res.RowsAffected, res.Error
}

func (g *GORMAssignmentDAO) FindByCode(ctx context.Context, code string) (Assignment, error) {
	var res Assignment
	err := g.db.WithContext(ctx).Where("code = ?", code).First(&res).Error
	return res, err
}

func (g *GORMAssignmentDAO) Exists(ctx context.Context, code string) (bool, error) {
	var cnt int64
	err := g.db.WithContext(ctx).Model(&Assignment{}).Where("code = ?", code).Count(&cnt).Error
	return cnt > 0, err
}

func (g *GORMAssignmentDAO) List(ctx context.Context, creator int64, status uint8, offset, limit int) ([]Assignment, error) {
	var res []Assignment
	err := g.filter(ctx, creator, status).
		Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (g *GORMAssignmentDAO) Count(ctx context.Context, creator int64, status uint8) (int64, error) {
	var cnt int64
	err := g.filter(ctx, creator, status).Count(&cnt).Error
	return cnt, err
}

func (g *GORMAssignmentDAO) filter(ctx context.Context, creator int64, status uint8) *gorm.DB {
	db := g.db.WithContext(ctx).Model(&Assignment{})
	if creator > 0 {
		db = db.Where("creator = ?", creator)
	}
	if status > 0 {
		db = db.Where("status = ?", status)
	}
	return db
}

func (g *GORMAssignmentDAO) ActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	err := g.db.WithContext(ctx).Model(&Assignment{}).
		Where("status = ?", StatusActive).
		Order("id ASC").
		Pluck("code", &codes).Error
	return codes, err
}

const StatusActive uint8 = 1

type Assignment struct {
	Id              int64                     `gorm:"primaryKey,autoIncrement"`
	Code            string                    `gorm:"type:char(6);not null;uniqueIndex"`
	Title           string                    `gorm:"type:varchar(256);not null"`
	Description     string                    `gorm:"type:text"`
	Requirements    sqlx.JsonColumn[[]string] `gorm:"type:json;comment:作业要求"`
	Recommendations sqlx.JsonColumn[[]string] `gorm:"type:json;comment:建议"`
	Deadline        int64                     `gorm:"comment:截止时间，毫秒，0 表示没有截止时间"`
	Status          uint8                     `gorm:"type:tinyint unsigned;not null;default:1;index;comment:1=进行中 2=已停止"`
	AllowResubmit   bool                      `gorm:"not null;default:false"`
	CohortSize      int                       `gorm:"not null;default:0;comment:应交人数"`
	Creator         int64                     `gorm:"index"`
	Ctime           int64
	Utime           int64
}

func (Assignment) TableName() string {
	return "assignments"
}
