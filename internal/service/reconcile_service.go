package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/freightdesk-next/internal/constants"
	"github.com/freightdesk-next/internal/models"
	"github.com/freightdesk-next/internal/repository"

	"gorm.io/gorm"
)

// ReconcileService 数量重算服务
// 订单行 open/processed/fulfilled 三个数量的唯一事实来源：
// 从分配与包裹状态纯投影推导，可随时对任意行重放并得到相同结果。
type ReconcileService struct {
	orderRepo     repository.PurchaseOrderRepository
	packagingRepo repository.PackagingRepository
}

// NewReconcileService 创建数量重算服务
func NewReconcileService(orderRepo repository.PurchaseOrderRepository, packagingRepo repository.PackagingRepository) *ReconcileService {
	return &ReconcileService{
		orderRepo:     orderRepo,
		packagingRepo: packagingRepo,
	}
}

// Recompute 重算给定订单行的数量与状态
// 整批成功才落库；任何一行重算为负时整批回滚，不暴露部分更新的中间态。
func (s *ReconcileService) Recompute(lineIDs []uint) ([]models.PurchaseOrderLine, error) {
	var result []models.PurchaseOrderLine
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		lines, err := s.recomputeTx(tx, lineIDs)
		if err != nil {
			return err
		}
		result = lines
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// recomputeTx 在既有事务内重算，供分配与状态机复用
// 先对全部涉及行按 ID 升序加写锁，再读取分配汇总，防止并发分配与状态
// 流转交错后破坏数量守恒。
func (s *ReconcileService) recomputeTx(tx *gorm.DB, lineIDs []uint) ([]models.PurchaseOrderLine, error) {
	ids := dedupeIDs(lineIDs)
	if len(ids) == 0 {
		return []models.PurchaseOrderLine{}, nil
	}

	orderRepo := s.orderRepo.WithTx(tx)
	packagingRepo := s.packagingRepo.WithTx(tx)

	lines, err := orderRepo.GetLinesByIDsForUpdate(ids)
	if err != nil {
		return nil, err
	}

	sums, err := packagingRepo.SumAllocationsByLineIDs(ids)
	if err != nil {
		return nil, err
	}
	processed := make(map[uint]int, len(ids))
	fulfilled := make(map[uint]int, len(ids))
	for _, sum := range sums {
		switch sum.PackageStatus {
		case constants.PackagingStatusDraft, constants.PackagingStatusNotReceived:
			processed[sum.PurchaseOrderLineID] += sum.Total
		case constants.PackagingStatusReceived, constants.PackagingStatusDelivered:
			fulfilled[sum.PurchaseOrderLineID] += sum.Total
		}
		// 已取消包裹的分配不再占用任何数量
	}

	now := time.Now()
	for i := range lines {
		line := &lines[i]
		line.ProcessedQuantity = processed[line.ID]
		line.FulfilledQuantity = fulfilled[line.ID]
		line.OpenQuantity = line.Quantity - line.ProcessedQuantity - line.FulfilledQuantity
		if line.OpenQuantity < 0 || line.ProcessedQuantity < 0 || line.FulfilledQuantity > line.Quantity {
			return nil, fmt.Errorf("%w: 行 %d（订购 %d，装箱 %d，履约 %d）",
				ErrReconcileNegative, line.ID, line.Quantity, line.ProcessedQuantity, line.FulfilledQuantity)
		}
		line.Status = deriveLineStatus(*line)
		line.UpdatedAt = now
	}

	if err := orderRepo.SaveLineQuantities(lines); err != nil {
		return nil, err
	}

	if err := s.syncParentOrders(tx, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// syncParentOrders 重算受影响采购订单的推导状态与未分配数量
func (s *ReconcileService) syncParentOrders(tx *gorm.DB, lines []models.PurchaseOrderLine) error {
	orderRepo := s.orderRepo.WithTx(tx)
	orderIDs := make(map[uint]bool, len(lines))
	for _, line := range lines {
		orderIDs[line.PurchaseOrderID] = true
	}
	for orderID := range orderIDs {
		all, err := orderRepo.ListLinesByOrderID(orderID)
		if err != nil {
			return err
		}
		order, err := orderRepo.GetByID(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			continue
		}
		status := deriveOrderStatus(all, order.Status)
		if err := orderRepo.UpdateOrderDerived(orderID, status, orderOpenQuantity(all)); err != nil {
			return err
		}
	}
	return nil
}

// dedupeIDs 去重并按升序排列（稳定的加锁顺序）
func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
