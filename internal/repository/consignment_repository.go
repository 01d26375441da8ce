package repository

import (
	"errors"

	"github.com/freightdesk-next/internal/constants"
	"github.com/freightdesk-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// consignmentActiveStatuses 仍会占用订单行的托运单状态（终态除外）
var consignmentActiveStatuses = []string{
	constants.ConsignmentStatusDraft,
	constants.ConsignmentStatusPendingForApproval,
	constants.ConsignmentStatusPendingConsoleAssignment,
	constants.ConsignmentStatusPendingBid,
	constants.ConsignmentStatusFreightForwarderAssigned,
	constants.ConsignmentStatusPickupCompleted,
	constants.ConsignmentStatusAtCustom,
	constants.ConsignmentStatusCustomsCleared,
	constants.ConsignmentStatusOutForDelivery,
	constants.ConsignmentStatusPartiallyReceived,
}

// ConsignmentRepository 托运单数据访问接口
type ConsignmentRepository interface {
	Create(consignment *models.Consignment) error
	GetByID(id uint) (*models.Consignment, error)
	GetByIDForUpdate(id uint) (*models.Consignment, error)
	GetByNo(consignmentNo string) (*models.Consignment, error)
	GetByIDs(ids []uint) ([]models.Consignment, error)
	List(filter ConsignmentListFilter) ([]models.Consignment, int64, error)
	ListByConsole(consoleID uint) ([]models.Consignment, error)
	Update(id uint, updates map[string]interface{}) error
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	CreateLines(lines []models.ConsignmentLine) error
	ListLines(consignmentID uint) ([]models.ConsignmentLine, error)
	GetLine(consignmentID, lineID uint) (*models.ConsignmentLine, error)
	UpdateLine(id uint, updates map[string]interface{}) error
	DeleteLines(consignmentID uint, lineIDs []uint) error
	FindActiveConsignmentByLine(lineID uint, excludeConsignmentID uint) (*models.Consignment, error)
	FindActiveConsignmentByOrder(orderID uint, excludeConsignmentID uint) (*models.Consignment, error)
	WithTx(tx *gorm.DB) *GormConsignmentRepository
}

// GormConsignmentRepository GORM 实现
type GormConsignmentRepository struct {
	db *gorm.DB
}

// NewConsignmentRepository 创建托运单仓储
func NewConsignmentRepository(db *gorm.DB) *GormConsignmentRepository {
	return &GormConsignmentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormConsignmentRepository) WithTx(tx *gorm.DB) *GormConsignmentRepository {
	if tx == nil {
		return r
	}
	return &GormConsignmentRepository{db: tx}
}

// Create 创建托运单
func (r *GormConsignmentRepository) Create(consignment *models.Consignment) error {
	return r.db.Create(consignment).Error
}

// GetByID 根据 ID 获取托运单
func (r *GormConsignmentRepository) GetByID(id uint) (*models.Consignment, error) {
	var consignment models.Consignment
	if err := r.db.Preload("Lines").Preload("Packages").Preload("Packages.Allocations").
		First(&consignment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consignment, nil
}

// GetByIDForUpdate 根据 ID 加写锁获取托运单
func (r *GormConsignmentRepository) GetByIDForUpdate(id uint) (*models.Consignment, error) {
	var consignment models.Consignment
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&consignment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consignment, nil
}

// GetByNo 根据编号获取托运单
func (r *GormConsignmentRepository) GetByNo(consignmentNo string) (*models.Consignment, error) {
	if consignmentNo == "" {
		return nil, nil
	}
	var consignment models.Consignment
	if err := r.db.Preload("Lines").Preload("Packages").Preload("Packages.Allocations").
		Where("consignment_no = ?", consignmentNo).
		First(&consignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consignment, nil
}

// GetByIDs 批量获取托运单
func (r *GormConsignmentRepository) GetByIDs(ids []uint) ([]models.Consignment, error) {
	if len(ids) == 0 {
		return []models.Consignment{}, nil
	}
	var consignments []models.Consignment
	if err := r.db.Where("id IN ?", ids).Order("id asc").Find(&consignments).Error; err != nil {
		return nil, err
	}
	return consignments, nil
}

// List 分页查询托运单
func (r *GormConsignmentRepository) List(filter ConsignmentListFilter) ([]models.Consignment, int64, error) {
	query := r.db.Model(&models.Consignment{})
	query = filter.Scope.Apply(query)

	if filter.ConsignmentNo != "" {
		query = query.Where("consignment_no = ?", filter.ConsignmentNo)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OwnerID != 0 {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.ConsoleID != 0 {
		query = query.Where("console_id = ?", filter.ConsoleID)
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

	var consignments []models.Consignment
	if err := query.Preload("Lines").Order("id desc").Find(&consignments).Error; err != nil {
		return nil, 0, err
	}
	return consignments, total, nil
}

// ListByConsole 获取批次下全部托运单
func (r *GormConsignmentRepository) ListByConsole(consoleID uint) ([]models.Consignment, error) {
	if consoleID == 0 {
		return []models.Consignment{}, nil
	}
	var consignments []models.Consignment
	if err := r.db.Where("console_id = ?", consoleID).Order("id asc").Find(&consignments).Error; err != nil {
		return nil, err
	}
	return consignments, nil
}

// Update 更新托运单字段
func (r *GormConsignmentRepository) Update(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Consignment{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateStatus 更新托运单状态
func (r *GormConsignmentRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Consignment{}).Where("id = ?", id).Updates(updates).Error
}

// CreateLines 批量创建托运单行
func (r *GormConsignmentRepository) CreateLines(lines []models.ConsignmentLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.Create(&lines).Error
}

// ListLines 获取托运单下全部关联行
func (r *GormConsignmentRepository) ListLines(consignmentID uint) ([]models.ConsignmentLine, error) {
	if consignmentID == 0 {
		return []models.ConsignmentLine{}, nil
	}
	var lines []models.ConsignmentLine
	if err := r.db.Where("consignment_id = ?", consignmentID).Order("id asc").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// GetLine 获取托运单与订单行的关联
func (r *GormConsignmentRepository) GetLine(consignmentID, lineID uint) (*models.ConsignmentLine, error) {
	var line models.ConsignmentLine
	if err := r.db.Where("consignment_id = ? AND purchase_order_line_id = ?", consignmentID, lineID).
		First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &line, nil
}

// UpdateLine 更新托运单行（合规信息）
func (r *GormConsignmentRepository) UpdateLine(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.ConsignmentLine{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteLines 删除托运单下指定订单行的关联
func (r *GormConsignmentRepository) DeleteLines(consignmentID uint, lineIDs []uint) error {
	if consignmentID == 0 || len(lineIDs) == 0 {
		return nil
	}
	return r.db.Where("consignment_id = ? AND purchase_order_line_id IN ?", consignmentID, lineIDs).
		Delete(&models.ConsignmentLine{}).Error
}

// FindActiveConsignmentByLine 查找占用该订单行的在途托运单
// 同一订单行同时只允许出现在一个非终态托运单的装箱集合里。
func (r *GormConsignmentRepository) FindActiveConsignmentByLine(lineID uint, excludeConsignmentID uint) (*models.Consignment, error) {
	if lineID == 0 {
		return nil, nil
	}
	var consignment models.Consignment
	query := r.db.Model(&models.Consignment{}).
		Joins("JOIN consignment_lines ON consignment_lines.consignment_id = consignments.id").
		Where("consignment_lines.purchase_order_line_id = ?", lineID).
		Where("consignments.status IN ?", consignmentActiveStatuses)
	if excludeConsignmentID != 0 {
		query = query.Where("consignments.id <> ?", excludeConsignmentID)
	}
	if err := query.First(&consignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consignment, nil
}

// FindActiveConsignmentByOrder 查找占用该采购订单任一行的在途托运单
func (r *GormConsignmentRepository) FindActiveConsignmentByOrder(orderID uint, excludeConsignmentID uint) (*models.Consignment, error) {
	if orderID == 0 {
		return nil, nil
	}
	var consignment models.Consignment
	query := r.db.Model(&models.Consignment{}).
		Joins("JOIN consignment_lines ON consignment_lines.consignment_id = consignments.id").
		Joins("JOIN purchase_order_lines ON purchase_order_lines.id = consignment_lines.purchase_order_line_id").
		Where("purchase_order_lines.purchase_order_id = ?", orderID).
		Where("consignments.status IN ?", consignmentActiveStatuses)
	if excludeConsignmentID != 0 {
		query = query.Where("consignments.id <> ?", excludeConsignmentID)
	}
	if err := query.First(&consignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consignment, nil
}
