package repository

import (
	"errors"
	"time"

	"github.com/freightdesk-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository 序号计数器数据访问接口
type SequenceRepository interface {
	Next(name, scopeKey string) (uint64, error)
	NextN(name, scopeKey string, n int) (uint64, error)
	Current(name, scopeKey string) (uint64, error)
	WithTx(tx *gorm.DB) *GormSequenceRepository
}

// GormSequenceRepository GORM 实现
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository 创建序号仓储
func NewSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSequenceRepository) WithTx(tx *gorm.DB) *GormSequenceRepository {
	if tx == nil {
		return r
	}
	return &GormSequenceRepository{db: tx}
}

// Next 取下一个序号（行级写锁自增，已分配的序号删除后也不会复用）
func (r *GormSequenceRepository) Next(name, scopeKey string) (uint64, error) {
	return r.NextN(name, scopeKey, 1)
}

// NextN 连续取 n 个序号，返回第一个
func (r *GormSequenceRepository) NextN(name, scopeKey string, n int) (uint64, error) {
	if n <= 0 {
		return 0, errors.New("sequence step must be positive")
	}
	var first uint64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var seq models.Sequence
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ? AND scope_key = ?", name, scopeKey).
			First(&seq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seq = models.Sequence{Name: name, ScopeKey: scopeKey, Value: 0, UpdatedAt: time.Now()}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		first = seq.Value + 1
		seq.Value += uint64(n)
		seq.UpdatedAt = time.Now()
		return tx.Model(&models.Sequence{}).Where("id = ?", seq.ID).
			Updates(map[string]interface{}{"value": seq.Value, "updated_at": seq.UpdatedAt}).Error
	})
	if err != nil {
		return 0, err
	}
	return first, nil
}

// Current 查询当前已分配到的序号
func (r *GormSequenceRepository) Current(name, scopeKey string) (uint64, error) {
	var seq models.Sequence
	if err := r.db.Where("name = ? AND scope_key = ?", name, scopeKey).First(&seq).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return seq.Value, nil
}
