package repository

import (
	"github.com/freightdesk-next/internal/models"

	"gorm.io/gorm"
)

// AuditTrailRepository 审计轨迹数据访问接口
type AuditTrailRepository interface {
	Create(trail *models.AuditTrail, fields []models.AuditTrailField) error
	ListByEntity(entityKind string, entityID uint) ([]models.AuditTrail, error)
	List(filter AuditTrailListFilter) ([]models.AuditTrail, int64, error)
	CountByEntity(entityKind string, entityID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormAuditTrailRepository
}

// GormAuditTrailRepository GORM 实现
type GormAuditTrailRepository struct {
	db *gorm.DB
}

// NewAuditTrailRepository 创建审计轨迹仓储
func NewAuditTrailRepository(db *gorm.DB) *GormAuditTrailRepository {
	return &GormAuditTrailRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAuditTrailRepository) WithTx(tx *gorm.DB) *GormAuditTrailRepository {
	if tx == nil {
		return r
	}
	return &GormAuditTrailRepository{db: tx}
}

// Create 创建审计轨迹及字段明细
func (r *GormAuditTrailRepository) Create(trail *models.AuditTrail, fields []models.AuditTrailField) error {
	if err := r.db.Create(trail).Error; err != nil {
		return err
	}
	for i := range fields {
		fields[i].TrailID = trail.ID
	}
	if len(fields) > 0 {
		if err := r.db.Create(&fields).Error; err != nil {
			return err
		}
	}
	return nil
}

// ListByEntity 获取实体的全部审计轨迹
func (r *GormAuditTrailRepository) ListByEntity(entityKind string, entityID uint) ([]models.AuditTrail, error) {
	var trails []models.AuditTrail
	if err := r.db.Preload("Fields").
		Where("entity_kind = ? AND entity_id = ?", entityKind, entityID).
		Order("id asc").
		Find(&trails).Error; err != nil {
		return nil, err
	}
	return trails, nil
}

// List 分页查询审计轨迹
func (r *GormAuditTrailRepository) List(filter AuditTrailListFilter) ([]models.AuditTrail, int64, error) {
	query := r.db.Model(&models.AuditTrail{})

	if filter.EntityKind != "" {
		query = query.Where("entity_kind = ?", filter.EntityKind)
	}
	if filter.EntityID != 0 {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.ActorID != 0 {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var trails []models.AuditTrail
	if err := query.Preload("Fields").Order("id desc").Find(&trails).Error; err != nil {
		return nil, 0, err
	}
	return trails, total, nil
}

// CountByEntity 统计实体已有的审计轨迹数量
func (r *GormAuditTrailRepository) CountByEntity(entityKind string, entityID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.AuditTrail{}).
		Where("entity_kind = ? AND entity_id = ?", entityKind, entityID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
