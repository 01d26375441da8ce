package repository

import (
	"errors"
	"sort"

	"github.com/freightdesk-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchaseOrderRepository 采购订单数据访问接口
type PurchaseOrderRepository interface {
	Create(order *models.PurchaseOrder, lines []models.PurchaseOrderLine) error
	GetByID(id uint) (*models.PurchaseOrder, error)
	GetByCustomerRef(customerRef string) (*models.PurchaseOrder, error)
	List(filter PurchaseOrderListFilter) ([]models.PurchaseOrder, int64, error)
	GetLineByID(id uint) (*models.PurchaseOrderLine, error)
	GetLinesByIDs(ids []uint) ([]models.PurchaseOrderLine, error)
	GetLinesByIDsForUpdate(ids []uint) ([]models.PurchaseOrderLine, error)
	CreateLines(lines []models.PurchaseOrderLine) error
	SaveLineQuantities(lines []models.PurchaseOrderLine) error
	UpdateOrderDerived(id uint, status string, openQuantity int) error
	ListLinesByOrderID(orderID uint) ([]models.PurchaseOrderLine, error)
	WithTx(tx *gorm.DB) *GormPurchaseOrderRepository
}

// GormPurchaseOrderRepository GORM 实现
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewPurchaseOrderRepository 创建采购订单仓储
func NewPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPurchaseOrderRepository) WithTx(tx *gorm.DB) *GormPurchaseOrderRepository {
	if tx == nil {
		return r
	}
	return &GormPurchaseOrderRepository{db: tx}
}

// Create 创建采购订单与订单行
func (r *GormPurchaseOrderRepository) Create(order *models.PurchaseOrder, lines []models.PurchaseOrderLine) error {
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	for i := range lines {
		lines[i].PurchaseOrderID = order.ID
	}
	if len(lines) > 0 {
		if err := r.db.Create(&lines).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据 ID 获取采购订单
func (r *GormPurchaseOrderRepository) GetByID(id uint) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	if err := r.db.Preload("Lines").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByCustomerRef 根据客户参考号获取采购订单
func (r *GormPurchaseOrderRepository) GetByCustomerRef(customerRef string) (*models.PurchaseOrder, error) {
	if customerRef == "" {
		return nil, nil
	}
	var order models.PurchaseOrder
	if err := r.db.Preload("Lines").Where("customer_ref = ?", customerRef).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List 分页查询采购订单
func (r *GormPurchaseOrderRepository) List(filter PurchaseOrderListFilter) ([]models.PurchaseOrder, int64, error) {
	query := r.db.Model(&models.PurchaseOrder{})
	query = filter.Scope.Apply(query)

	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.CustomerRef != "" {
		query = query.Where("customer_ref = ?", filter.CustomerRef)
	}
	if filter.SupplierCode != "" {
		query = query.Where("supplier_code = ?", filter.SupplierCode)
	}
	if filter.ClientCode != "" {
		query = query.Where("client_code = ?", filter.ClientCode)
	}
	if filter.StorerKey != "" {
		query = query.Where("storer_key = ?", filter.StorerKey)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
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

	var orders []models.PurchaseOrder
	if err := query.Preload("Lines").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// GetLineByID 根据 ID 获取订单行
func (r *GormPurchaseOrderRepository) GetLineByID(id uint) (*models.PurchaseOrderLine, error) {
	var line models.PurchaseOrderLine
	if err := r.db.First(&line, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &line, nil
}

// GetLinesByIDs 批量获取订单行
func (r *GormPurchaseOrderRepository) GetLinesByIDs(ids []uint) ([]models.PurchaseOrderLine, error) {
	if len(ids) == 0 {
		return []models.PurchaseOrderLine{}, nil
	}
	var lines []models.PurchaseOrderLine
	if err := r.db.Where("id IN ?", ids).Order("id asc").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// GetLinesByIDsForUpdate 批量加写锁获取订单行
// 锁总是按 ID 升序获取，避免并发批次相互以不同顺序加锁造成死锁。
func (r *GormPurchaseOrderRepository) GetLinesByIDsForUpdate(ids []uint) ([]models.PurchaseOrderLine, error) {
	if len(ids) == 0 {
		return []models.PurchaseOrderLine{}, nil
	}
	sorted := make([]uint, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var lines []models.PurchaseOrderLine
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", sorted).
		Order("id asc").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// CreateLines 批量创建订单行
func (r *GormPurchaseOrderRepository) CreateLines(lines []models.PurchaseOrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.Create(&lines).Error
}

// SaveLineQuantities 批量落库订单行的数量与状态
// 同一事务内整批写入，避免并发读者看到部分行已更新的中间态。
func (r *GormPurchaseOrderRepository) SaveLineQuantities(lines []models.PurchaseOrderLine) error {
	for i := range lines {
		line := lines[i]
		updates := map[string]interface{}{
			"open_quantity":      line.OpenQuantity,
			"processed_quantity": line.ProcessedQuantity,
			"fulfilled_quantity": line.FulfilledQuantity,
			"status":             line.Status,
			"updated_at":         line.UpdatedAt,
		}
		if err := r.db.Model(&models.PurchaseOrderLine{}).Where("id = ?", line.ID).Updates(updates).Error; err != nil {
			return err
		}
	}
	return nil
}

// UpdateOrderDerived 写入订单的推导状态与未分配数量
func (r *GormPurchaseOrderRepository) UpdateOrderDerived(id uint, status string, openQuantity int) error {
	return r.db.Model(&models.PurchaseOrder{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        status,
		"open_quantity": openQuantity,
	}).Error
}

// ListLinesByOrderID 获取订单下全部订单行
func (r *GormPurchaseOrderRepository) ListLinesByOrderID(orderID uint) ([]models.PurchaseOrderLine, error) {
	if orderID == 0 {
		return []models.PurchaseOrderLine{}, nil
	}
	var lines []models.PurchaseOrderLine
	if err := r.db.Where("purchase_order_id = ?", orderID).Order("line_no asc").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}
