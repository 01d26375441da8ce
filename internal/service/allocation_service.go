package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/freightdesk-next/internal/constants"
	"github.com/freightdesk-next/internal/models"
	"github.com/freightdesk-next/internal/repository"

	"gorm.io/gorm"
)

// AllocationService 包裹分配服务
// 负责草稿阶段的包裹创建、订单行装箱分配与草稿号转正；
// 每次分配变更都在同一事务内触发数量重算，保证守恒不变量。
type AllocationService struct {
	orderRepo       repository.PurchaseOrderRepository
	consignmentRepo repository.ConsignmentRepository
	packagingRepo   repository.PackagingRepository
	sequenceService *SequenceService
	reconcile       *ReconcileService
	auditService    *AuditService
}

// NewAllocationService 创建包裹分配服务
func NewAllocationService(
	orderRepo repository.PurchaseOrderRepository,
	consignmentRepo repository.ConsignmentRepository,
	packagingRepo repository.PackagingRepository,
	sequenceService *SequenceService,
	reconcile *ReconcileService,
	auditService *AuditService,
) *AllocationService {
	return &AllocationService{
		orderRepo:       orderRepo,
		consignmentRepo: consignmentRepo,
		packagingRepo:   packagingRepo,
		sequenceService: sequenceService,
		reconcile:       reconcile,
		auditService:    auditService,
	}
}

// CreatePackages 在草稿托运单下批量创建包裹
// 草稿编号取当前最大序号（含已删除包裹）递增，保证同一托运单内编号不复用。
func (s *AllocationService) CreatePackages(consignmentID uint, packagingType string, weight models.Weight, count int, actor Actor) ([]models.ConsignmentPackaging, error) {
	if packagingType == "" {
		return nil, ErrPackagingTypeRequired
	}
	if count <= 0 || count > 100 {
		return nil, ErrPackageCountInvalid
	}

	var packages []models.ConsignmentPackaging
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		consignmentRepo := s.consignmentRepo.WithTx(tx)
		packagingRepo := s.packagingRepo.WithTx(tx)

		consignment, err := consignmentRepo.GetByIDForUpdate(consignmentID)
		if err != nil {
			return err
		}
		if consignment == nil {
			return ErrConsignmentNotFound
		}
		if consignment.Status != constants.ConsignmentStatusDraft {
			return ErrConsignmentNotEditable
		}

		existingNos, err := packagingRepo.ListPackageNos(consignmentID)
		if err != nil {
			return err
		}

		packages = make([]models.ConsignmentPackaging, 0, count)
		for i := 0; i < count; i++ {
			packages = append(packages, models.ConsignmentPackaging{
				ConsignmentID: consignmentID,
				PackageNo:     nextDraftPackageNo(existingNos, i),
				PackagingType: packagingType,
				Weight:        weight,
				Status:        constants.PackagingStatusDraft,
			})
		}
		return packagingRepo.CreatePackages(packages)
	})
	if err != nil {
		return nil, err
	}

	for i := range packages {
		s.auditService.Record(constants.AuditEntityPackaging, packages[i].ID, nil, SnapshotPackaging(&packages[i]), actor)
	}
	return packages, nil
}

// UpdatePackageDetails 修改草稿包裹的包装类型与重量
func (s *AllocationService) UpdatePackageDetails(consignmentID uint, packageNo, packagingType string, weight models.Weight, actor Actor) error {
	if packagingType == "" {
		return ErrPackagingTypeRequired
	}

	var before, after map[string]string
	var packageID uint
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		pkg, err := s.lockDraftPackage(tx, consignmentID, packageNo)
		if err != nil {
			return err
		}
		before = SnapshotPackaging(pkg)
		packageID = pkg.ID

		if err := s.packagingRepo.WithTx(tx).UpdatePackage(pkg.ID, map[string]interface{}{
			"packaging_type": packagingType,
			"weight":         weight,
		}); err != nil {
			return err
		}
		pkg.PackagingType = packagingType
		pkg.Weight = weight
		after = SnapshotPackaging(pkg)
		return nil
	})
	if err != nil {
		return err
	}

	s.auditService.Record(constants.AuditEntityPackaging, packageID, before, after, actor)
	return nil
}

// RemovePackage 删除草稿包裹并释放其全部分配
func (s *AllocationService) RemovePackage(consignmentID uint, packageNo string, actor Actor) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		pkg, err := s.lockDraftPackage(tx, consignmentID, packageNo)
		if err != nil {
			return err
		}

		packagingRepo := s.packagingRepo.WithTx(tx)
		allocations, err := packagingRepo.ListAllocationsByPackage(pkg.ID)
		if err != nil {
			return err
		}
		lineIDs := make([]uint, 0, len(allocations))
		for _, allocation := range allocations {
			lineIDs = append(lineIDs, allocation.PurchaseOrderLineID)
			if err := packagingRepo.DeleteAllocation(allocation.ID); err != nil {
				return err
			}
		}
		if err := packagingRepo.DeletePackage(pkg.ID); err != nil {
			return err
		}

		_, err = s.reconcile.recomputeTx(tx, lineIDs)
		return err
	})
}

// Allocate 将订单行的一部分数量分配到包裹
// 数量为 0 表示撤销分配；分配超出订购数量由重算阶段以
// ErrReconcileNegative 拒绝并整体回滚。
func (s *AllocationService) Allocate(consignmentID uint, packageNo string, lineID uint, qty int, actor Actor) (*models.PurchaseOrderLine, error) {
	if qty < 0 {
		return nil, ErrQuantityInvalid
	}

	var result *models.PurchaseOrderLine
	var allocBefore, allocAfter map[string]string
	var packageID uint
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		pkg, err := s.lockDraftPackage(tx, consignmentID, packageNo)
		if err != nil {
			return err
		}
		packageID = pkg.ID

		consignmentRepo := s.consignmentRepo.WithTx(tx)
		selected, err := consignmentRepo.GetLine(consignmentID, lineID)
		if err != nil {
			return err
		}
		if selected == nil {
			return ErrLineNotSelected
		}

		orderRepo := s.orderRepo.WithTx(tx)
		lines, err := orderRepo.GetLinesByIDsForUpdate([]uint{lineID})
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrLineNotFound
		}
		line := lines[0]
		if line.Status == constants.OrderStatusClosed || line.Status == constants.OrderStatusCancelled {
			return ErrPackageClosedLine
		}

		packagingRepo := s.packagingRepo.WithTx(tx)
		existing, err := packagingRepo.GetAllocation(pkg.ID, lineID)
		if err != nil {
			return err
		}
		allocBefore = map[string]string{}
		if existing != nil {
			allocBefore = allocationSnapshot(existing)
		}

		if qty == 0 {
			if existing != nil {
				if err := packagingRepo.DeleteAllocation(existing.ID); err != nil {
					return err
				}
				cleared := *existing
				cleared.AllocatedQty = 0
				allocAfter = allocationSnapshot(&cleared)
			}
		} else {
			if err := s.checkPackageHomogeneity(tx, pkg.ID, &line); err != nil {
				return err
			}
			allocation := &models.PackagingAllocation{
				PackagingID:         pkg.ID,
				PurchaseOrderLineID: lineID,
				ConsignmentID:       consignmentID,
				AllocatedQty:        qty,
				DangerousGoods:      line.DangerousGoods,
				FulfillmentType:     line.FulfillmentType,
			}
			if err := packagingRepo.SaveAllocation(allocation); err != nil {
				return err
			}
			allocAfter = allocationSnapshot(allocation)
		}

		recomputed, err := s.reconcile.recomputeTx(tx, []uint{lineID})
		if err != nil {
			return err
		}
		if len(recomputed) > 0 {
			result = &recomputed[0]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditService.Record(constants.AuditEntityPackaging, packageID, allocBefore, allocAfter, actor)
	return result, nil
}

// ReleaseAllocationsByLines 释放托运单下指定订单行的全部分配
// 订单行在步骤回退时被移出选择范围后调用，释放的数量回到未分配桶。
func (s *AllocationService) ReleaseAllocationsByLines(tx *gorm.DB, consignmentID uint, lineIDs []uint) error {
	deleted, err := s.packagingRepo.WithTx(tx).DeleteAllocationsByLines(consignmentID, lineIDs)
	if err != nil {
		return err
	}
	if len(deleted) == 0 {
		return nil
	}
	affected := make([]uint, 0, len(deleted))
	for _, allocation := range deleted {
		affected = append(affected, allocation.PurchaseOrderLineID)
	}
	_, err = s.reconcile.recomputeTx(tx, affected)
	return err
}

// FinalizeIds 将托运单下的草稿包裹编号替换为全局正式编号
// 托运单离开草稿态时调用：空包裹先清理，剩余包裹按 ID 顺序取号，
// 状态由 draft 置为 not_received。
func (s *AllocationService) FinalizeIds(consignmentID uint, actor Actor) error {
	var finalized []models.ConsignmentPackaging
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		consignment, err := s.consignmentRepo.WithTx(tx).GetByIDForUpdate(consignmentID)
		if err != nil {
			return err
		}
		if consignment == nil {
			return ErrConsignmentNotFound
		}
		finalized, err = s.finalizeIdsTx(tx, consignmentID)
		return err
	})
	if err != nil {
		return err
	}

	for i := range finalized {
		s.auditService.Record(constants.AuditEntityPackaging, finalized[i].ID, nil, SnapshotPackaging(&finalized[i]), actor)
	}
	return nil
}

// finalizeIdsTx 在既有事务内完成草稿号转正，返回被转正的包裹
// 清理空包裹后必须至少剩余一个包裹；正式号在同一事务内取号，
// 外层回滚时号段随之回收。
func (s *AllocationService) finalizeIdsTx(tx *gorm.DB, consignmentID uint) ([]models.ConsignmentPackaging, error) {
	packagingRepo := s.packagingRepo.WithTx(tx)

	if err := packagingRepo.DeleteEmptyPackages(consignmentID); err != nil {
		return nil, err
	}
	packages, err := packagingRepo.ListPackagesByConsignment(consignmentID)
	if err != nil {
		return nil, err
	}
	if len(packages) == 0 {
		return nil, ErrConsignmentNoPackages
	}

	drafts := make([]*models.ConsignmentPackaging, 0, len(packages))
	lineIDs := make([]uint, 0, len(packages))
	for i := range packages {
		pkg := &packages[i]
		for _, allocation := range pkg.Allocations {
			lineIDs = append(lineIDs, allocation.PurchaseOrderLineID)
		}
		if strings.HasPrefix(pkg.PackageNo, constants.PackagingDraftPrefix) {
			drafts = append(drafts, pkg)
		}
	}

	if len(drafts) > 0 {
		nos, err := s.sequenceService.WithTx(tx).NextPackagePermanentNos(len(drafts))
		if err != nil {
			return nil, err
		}
		for i, pkg := range drafts {
			if err := packagingRepo.UpdatePackage(pkg.ID, map[string]interface{}{
				"package_no": nos[i],
				"status":     constants.PackagingStatusNotReceived,
			}); err != nil {
				return nil, err
			}
			pkg.PackageNo = nos[i]
			pkg.Status = constants.PackagingStatusNotReceived
		}
	}

	// draft → not_received 同属已装箱桶，重算只是刷新行状态
	if _, err := s.reconcile.recomputeTx(tx, lineIDs); err != nil {
		return nil, err
	}

	finalized := make([]models.ConsignmentPackaging, 0, len(drafts))
	for _, pkg := range drafts {
		finalized = append(finalized, *pkg)
	}
	return finalized, nil
}

// lockDraftPackage 加锁托运单并定位其下处于可编辑状态的包裹
func (s *AllocationService) lockDraftPackage(tx *gorm.DB, consignmentID uint, packageNo string) (*models.ConsignmentPackaging, error) {
	consignment, err := s.consignmentRepo.WithTx(tx).GetByIDForUpdate(consignmentID)
	if err != nil {
		return nil, err
	}
	if consignment == nil {
		return nil, ErrConsignmentNotFound
	}
	if consignment.Status != constants.ConsignmentStatusDraft {
		return nil, ErrConsignmentNotEditable
	}

	pkg, err := s.packagingRepo.WithTx(tx).GetPackageByNo(consignmentID, packageNo)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}
	if pkg.Status != constants.PackagingStatusDraft {
		return nil, ErrConsignmentNotEditable
	}
	return pkg, nil
}

// checkPackageHomogeneity 校验订单行与包裹既有分配的同质性
// 危险品不与普通货物混装、履约类型一致、危险品类别唯一。
func (s *AllocationService) checkPackageHomogeneity(tx *gorm.DB, packagingID uint, line *models.PurchaseOrderLine) error {
	allocations, err := s.packagingRepo.WithTx(tx).ListAllocationsByPackage(packagingID)
	if err != nil {
		return err
	}

	otherLineIDs := make([]uint, 0, len(allocations))
	for _, allocation := range allocations {
		if allocation.PurchaseOrderLineID == line.ID {
			continue
		}
		if allocation.DangerousGoods != line.DangerousGoods {
			return fmt.Errorf("%w: 行 %d 危险品=%s，包裹既有分配危险品=%s",
				ErrPackageMixedDangerousGoods, line.ID,
				strconv.FormatBool(line.DangerousGoods), strconv.FormatBool(allocation.DangerousGoods))
		}
		if allocation.FulfillmentType != line.FulfillmentType {
			return fmt.Errorf("%w: 行 %d 履约类型=%s，包裹既有分配履约类型=%s",
				ErrPackageMixedFulfillment, line.ID, line.FulfillmentType, allocation.FulfillmentType)
		}
		otherLineIDs = append(otherLineIDs, allocation.PurchaseOrderLineID)
	}

	// 类别不冗余在分配上，危险品时回查既有行
	if line.DangerousGoods && len(otherLineIDs) > 0 {
		otherLines, err := s.orderRepo.WithTx(tx).GetLinesByIDs(otherLineIDs)
		if err != nil {
			return err
		}
		for _, other := range otherLines {
			if other.DangerousGoodsClass != line.DangerousGoodsClass {
				return fmt.Errorf("%w: 类别 %s 与 %s",
					ErrPackageMixedDGClass, line.DangerousGoodsClass, other.DangerousGoodsClass)
			}
		}
	}
	return nil
}

// allocationSnapshot 分配的审计快照
func allocationSnapshot(allocation *models.PackagingAllocation) map[string]string {
	if allocation == nil {
		return nil
	}
	return map[string]string{
		fmt.Sprintf("line_%d_allocated_qty", allocation.PurchaseOrderLineID): strconv.Itoa(allocation.AllocatedQty),
	}
}
