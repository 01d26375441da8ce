package repository

import (
	"errors"

	"github.com/freightdesk-next/internal/models"

	"gorm.io/gorm"
)

// ConsoleRepository 集运批次数据访问接口
type ConsoleRepository interface {
	Create(console *models.Console) error
	GetByID(id uint) (*models.Console, error)
	List(page, pageSize int) ([]models.Console, int64, error)
	UpdateStatus(id uint, status string) error
	CountConsignments(consoleID uint) (int64, error)
	DistinctConsignmentStatuses(consoleID uint) ([]string, error)
	WithTx(tx *gorm.DB) *GormConsoleRepository
}

// GormConsoleRepository GORM 实现
type GormConsoleRepository struct {
	db *gorm.DB
}

// NewConsoleRepository 创建集运批次仓储
func NewConsoleRepository(db *gorm.DB) *GormConsoleRepository {
	return &GormConsoleRepository{db: db}
}

// WithTx 绑定事务
func (r *GormConsoleRepository) WithTx(tx *gorm.DB) *GormConsoleRepository {
	if tx == nil {
		return r
	}
	return &GormConsoleRepository{db: tx}
}

// Create 创建集运批次
func (r *GormConsoleRepository) Create(console *models.Console) error {
	return r.db.Create(console).Error
}

// GetByID 根据 ID 获取集运批次
func (r *GormConsoleRepository) GetByID(id uint) (*models.Console, error) {
	var console models.Console
	if err := r.db.Preload("Consignments").First(&console, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &console, nil
}

// List 分页查询集运批次
func (r *GormConsoleRepository) List(page, pageSize int) ([]models.Console, int64, error) {
	query := r.db.Model(&models.Console{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var consoles []models.Console
	if err := query.Order("id desc").Find(&consoles).Error; err != nil {
		return nil, 0, err
	}
	return consoles, total, nil
}

// UpdateStatus 更新批次状态
func (r *GormConsoleRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Console{}).Where("id = ?", id).Update("status", status).Error
}

// CountConsignments 统计批次下托运单数量
func (r *GormConsoleRepository) CountConsignments(consoleID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Consignment{}).
		Where("console_id = ?", consoleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DistinctConsignmentStatuses 获取批次下托运单状态的去重集合
func (r *GormConsoleRepository) DistinctConsignmentStatuses(consoleID uint) ([]string, error) {
	var statuses []string
	if err := r.db.Model(&models.Consignment{}).
		Where("console_id = ?", consoleID).
		Distinct("status").
		Pluck("status", &statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}
