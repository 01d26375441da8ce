package repository

import (
	"errors"

	"github.com/freightdesk-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LineAllocationSum 按订单行与包裹状态汇总的分配数量
type LineAllocationSum struct {
	PurchaseOrderLineID uint
	PackageStatus       string
	Total               int
}

// PackagingRepository 包裹与分配数据访问接口
type PackagingRepository interface {
	CreatePackages(packages []models.ConsignmentPackaging) error
	GetPackageByID(id uint) (*models.ConsignmentPackaging, error)
	GetPackageByNo(consignmentID uint, packageNo string) (*models.ConsignmentPackaging, error)
	ListPackagesByConsignment(consignmentID uint) ([]models.ConsignmentPackaging, error)
	ListPackageNos(consignmentID uint) ([]string, error)
	UpdatePackage(id uint, updates map[string]interface{}) error
	UpdatePackageStatusByConsignment(consignmentID uint, status string) error
	CountPackagesByConsignment(consignmentID uint) (int64, error)
	DeletePackage(id uint) error
	DeleteEmptyPackages(consignmentID uint) error
	GetAllocation(packagingID, lineID uint) (*models.PackagingAllocation, error)
	ListAllocationsByPackage(packagingID uint) ([]models.PackagingAllocation, error)
	ListAllocationsByConsignment(consignmentID uint) ([]models.PackagingAllocation, error)
	SaveAllocation(allocation *models.PackagingAllocation) error
	DeleteAllocation(id uint) error
	DeleteAllocationsByLines(consignmentID uint, lineIDs []uint) ([]models.PackagingAllocation, error)
	SumAllocationsByLineIDs(lineIDs []uint) ([]LineAllocationSum, error)
	WithTx(tx *gorm.DB) *GormPackagingRepository
}

// GormPackagingRepository GORM 实现
type GormPackagingRepository struct {
	db *gorm.DB
}

// NewPackagingRepository 创建包裹仓储
func NewPackagingRepository(db *gorm.DB) *GormPackagingRepository {
	return &GormPackagingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPackagingRepository) WithTx(tx *gorm.DB) *GormPackagingRepository {
	if tx == nil {
		return r
	}
	return &GormPackagingRepository{db: tx}
}

// CreatePackages 批量创建包裹
func (r *GormPackagingRepository) CreatePackages(packages []models.ConsignmentPackaging) error {
	if len(packages) == 0 {
		return nil
	}
	return r.db.Create(&packages).Error
}

// GetPackageByID 根据 ID 获取包裹
func (r *GormPackagingRepository) GetPackageByID(id uint) (*models.ConsignmentPackaging, error) {
	var pkg models.ConsignmentPackaging
	if err := r.db.Preload("Allocations").First(&pkg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

// GetPackageByNo 按编号获取包裹（草稿号或正式号均可）
func (r *GormPackagingRepository) GetPackageByNo(consignmentID uint, packageNo string) (*models.ConsignmentPackaging, error) {
	if packageNo == "" {
		return nil, nil
	}
	var pkg models.ConsignmentPackaging
	if err := r.db.Preload("Allocations").
		Where("consignment_id = ? AND package_no = ?", consignmentID, packageNo).
		First(&pkg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

// ListPackagesByConsignment 获取托运单下全部包裹
func (r *GormPackagingRepository) ListPackagesByConsignment(consignmentID uint) ([]models.ConsignmentPackaging, error) {
	if consignmentID == 0 {
		return []models.ConsignmentPackaging{}, nil
	}
	var packages []models.ConsignmentPackaging
	if err := r.db.Preload("Allocations").
		Where("consignment_id = ?", consignmentID).
		Order("id asc").
		Find(&packages).Error; err != nil {
		return nil, err
	}
	return packages, nil
}

// ListPackageNos 获取托运单下全部包裹编号（含已软删包裹，保证草稿号不复用）
func (r *GormPackagingRepository) ListPackageNos(consignmentID uint) ([]string, error) {
	var nos []string
	if err := r.db.Unscoped().Model(&models.ConsignmentPackaging{}).
		Where("consignment_id = ?", consignmentID).
		Pluck("package_no", &nos).Error; err != nil {
		return nil, err
	}
	return nos, nil
}

// UpdatePackage 更新包裹字段
func (r *GormPackagingRepository) UpdatePackage(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.ConsignmentPackaging{}).Where("id = ?", id).Updates(updates).Error
}

// UpdatePackageStatusByConsignment 批量更新托运单下包裹状态
func (r *GormPackagingRepository) UpdatePackageStatusByConsignment(consignmentID uint, status string) error {
	return r.db.Model(&models.ConsignmentPackaging{}).
		Where("consignment_id = ?", consignmentID).
		Update("status", status).Error
}

// CountPackagesByConsignment 统计托运单下包裹数量
func (r *GormPackagingRepository) CountPackagesByConsignment(consignmentID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.ConsignmentPackaging{}).
		Where("consignment_id = ?", consignmentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeletePackage 软删除包裹（编号保留占用，不复用）
func (r *GormPackagingRepository) DeletePackage(id uint) error {
	return r.db.Delete(&models.ConsignmentPackaging{}, id).Error
}

// DeleteEmptyPackages 清理没有任何分配的包裹（托运单保存时调用）
func (r *GormPackagingRepository) DeleteEmptyPackages(consignmentID uint) error {
	return r.db.
		Where("consignment_id = ?", consignmentID).
		Where("id NOT IN (?)", r.db.Model(&models.PackagingAllocation{}).
			Select("packaging_id").
			Where("consignment_id = ?", consignmentID)).
		Delete(&models.ConsignmentPackaging{}).Error
}

// GetAllocation 获取指定包裹与订单行的分配
func (r *GormPackagingRepository) GetAllocation(packagingID, lineID uint) (*models.PackagingAllocation, error) {
	var allocation models.PackagingAllocation
	if err := r.db.Where("packaging_id = ? AND purchase_order_line_id = ?", packagingID, lineID).
		First(&allocation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &allocation, nil
}

// ListAllocationsByPackage 获取包裹下全部分配
func (r *GormPackagingRepository) ListAllocationsByPackage(packagingID uint) ([]models.PackagingAllocation, error) {
	var allocations []models.PackagingAllocation
	if err := r.db.Where("packaging_id = ?", packagingID).Order("id asc").Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

// ListAllocationsByConsignment 获取托运单下全部分配
func (r *GormPackagingRepository) ListAllocationsByConsignment(consignmentID uint) ([]models.PackagingAllocation, error) {
	var allocations []models.PackagingAllocation
	if err := r.db.Where("consignment_id = ?", consignmentID).Order("id asc").Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

// SaveAllocation 新建或更新分配
func (r *GormPackagingRepository) SaveAllocation(allocation *models.PackagingAllocation) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "packaging_id"}, {Name: "purchase_order_line_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"allocated_qty", "updated_at"}),
	}).Create(allocation).Error
}

// DeleteAllocation 删除分配
func (r *GormPackagingRepository) DeleteAllocation(id uint) error {
	return r.db.Delete(&models.PackagingAllocation{}, id).Error
}

// DeleteAllocationsByLines 删除托运单下指定订单行的分配，返回被删除的行
func (r *GormPackagingRepository) DeleteAllocationsByLines(consignmentID uint, lineIDs []uint) ([]models.PackagingAllocation, error) {
	if consignmentID == 0 || len(lineIDs) == 0 {
		return []models.PackagingAllocation{}, nil
	}
	var allocations []models.PackagingAllocation
	if err := r.db.Where("consignment_id = ? AND purchase_order_line_id IN ?", consignmentID, lineIDs).
		Find(&allocations).Error; err != nil {
		return nil, err
	}
	if len(allocations) == 0 {
		return allocations, nil
	}
	if err := r.db.Where("consignment_id = ? AND purchase_order_line_id IN ?", consignmentID, lineIDs).
		Delete(&models.PackagingAllocation{}).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

// SumAllocationsByLineIDs 按订单行与包裹状态汇总分配数量（Reconciler 的求和边）
func (r *GormPackagingRepository) SumAllocationsByLineIDs(lineIDs []uint) ([]LineAllocationSum, error) {
	if len(lineIDs) == 0 {
		return []LineAllocationSum{}, nil
	}
	var sums []LineAllocationSum
	if err := r.db.Model(&models.PackagingAllocation{}).
		Select("packaging_allocations.purchase_order_line_id, consignment_packagings.status AS package_status, SUM(packaging_allocations.allocated_qty) AS total").
		Joins("JOIN consignment_packagings ON consignment_packagings.id = packaging_allocations.packaging_id AND consignment_packagings.deleted_at IS NULL").
		Where("packaging_allocations.purchase_order_line_id IN ?", lineIDs).
		Group("packaging_allocations.purchase_order_line_id, consignment_packagings.status").
		Scan(&sums).Error; err != nil {
		return nil, err
	}
	return sums, nil
}
