package dao

import (
	"context"
	"database/sql"
	"time"

	"github.com/ego-component/egorm"
	"gorm.io/gorm/clause"
)

type LLMRecordDAO interface {
	Save(ctx context.Context, r LLMRecord) (int64, error)
	FindByBizID(ctx context.Context, biz string, bizID int64) ([]LLMRecord, error)
}

type GORMLLMRecordDAO struct {
	db *egorm.Component
}

func NewGORMLLMRecordDAO(db *egorm.Component) LLMRecordDAO {
	return &GORMLLMRecordDAO{db: db}
}

func (g *GORMLLMRecordDAO) Save(ctx context.Context, record LLMRecord) (int64, error) {
	now := time.Now().UnixMilli()
	record.Ctime = now
	record.Utime = now
	err := g.db.WithContext(ctx).Model(&LLMRecord{}).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tid"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "tokens", "latency", "answer", "utime"}),
		}).Create(&record).Error
	return record.Id, err
}

func (g *GORMLLMRecordDAO) FindByBizID(ctx context.Context, biz string, bizID int64) ([]LLMRecord, error) {
	var res []LLMRecord
	err := g.db.WithContext(ctx).
		Where("biz = ? AND biz_id = ?", biz, bizID).
		Order("id DESC").
		Find(&res).Error
	return res, err
}

type LLMRecord struct {
	Id      int64          `gorm:"primaryKey;autoIncrement;comment:调用记录表自增ID"`
	Tid     string         `gorm:"type:varchar(256);not null;uniqueIndex:unq_tid;comment:一次请求的Tid只能有一次"`
	Biz     string         `gorm:"type:varchar(256);not null;index:idx_biz_biz_id,priority:1;comment:业务类型名"`
	BizID   int64          `gorm:"not null;index:idx_biz_biz_id,priority:2;comment:业务ID"`
	Model   string         `gorm:"type:varchar(256);not null;comment:使用的模型"`
	Tokens  int64          `gorm:"default:0;comment:消耗的token数"`
	Latency int64          `gorm:"default:0;comment:调用耗时，毫秒"`
	Status  uint8          `gorm:"type:tinyint unsigned;not null;default:0;comment:调用状态 0=进行中 1=成功, 2=失败"`
	Input   sql.NullString `gorm:"type:mediumtext;comment:完整的 prompt"`
	Answer  sql.NullString `gorm:"type:mediumtext;comment:llm的回答"`
	Ctime   int64
	Utime   int64
}

func (l LLMRecord) TableName() string {
	return "llm_records"
}
