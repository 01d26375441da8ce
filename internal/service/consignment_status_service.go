package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/freightdesk-next/internal/constants"
	"github.com/freightdesk-next/internal/logger"
	"github.com/freightdesk-next/internal/models"
	"github.com/freightdesk-next/internal/repository"

	"gorm.io/gorm"
)

// Notifier 状态事件分发接口
// 分发失败不影响已提交的状态变更，由调用方决定重试策略。
type Notifier interface {
	Dispatch(event StatusEvent) error
}

// TransitionRequest 批量状态流转请求
type TransitionRequest struct {
	ConsignmentIDs []uint
	ToStatus       string
	RejectionCode  string
}

// StatusService 托运单状态机服务
// 批量流转先全量校验再写入：任何一单不满足前置条件时整批拒绝，
// 事务提交后才对外分发状态事件。
type StatusService struct {
	consignmentRepo repository.ConsignmentRepository
	consoleRepo     repository.ConsoleRepository
	packagingRepo   repository.PackagingRepository
	sequenceService *SequenceService
	reconcile       *ReconcileService
	allocation      *AllocationService
	auditService    *AuditService
	notifier        Notifier
}

// NewStatusService 创建托运单状态机服务
func NewStatusService(
	consignmentRepo repository.ConsignmentRepository,
	consoleRepo repository.ConsoleRepository,
	packagingRepo repository.PackagingRepository,
	sequenceService *SequenceService,
	reconcile *ReconcileService,
	allocation *AllocationService,
	auditService *AuditService,
	notifier Notifier,
) *StatusService {
	return &StatusService{
		consignmentRepo: consignmentRepo,
		consoleRepo:     consoleRepo,
		packagingRepo:   packagingRepo,
		sequenceService: sequenceService,
		reconcile:       reconcile,
		allocation:      allocation,
		auditService:    auditService,
		notifier:        notifier,
	}
}

// Transition 批量流转托运单状态
// 全部校验通过才开始写入；写入阶段失败整批回滚。返回的事件列表
// 在提交后已交给通知分发。
func (s *StatusService) Transition(req TransitionRequest, actor Actor) ([]StatusEvent, error) {
	ids := dedupeIDs(req.ConsignmentIDs)
	if len(ids) == 0 {
		return nil, ErrConsignmentNotFound
	}
	if req.ToStatus == constants.ConsignmentStatusRejected && !validRejectionCodes[req.RejectionCode] {
		return nil, ErrRejectionCodeInvalid
	}

	var events []StatusEvent
	type auditPair struct {
		id            uint
		before, after map[string]string
	}
	var audits []auditPair

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		consignmentRepo := s.consignmentRepo.WithTx(tx)

		// 校验阶段：按 ID 升序逐单加锁，任何一单不满足即失败
		consignments := make([]*models.Consignment, 0, len(ids))
		for _, id := range ids {
			consignment, err := consignmentRepo.GetByIDForUpdate(id)
			if err != nil {
				return err
			}
			if consignment == nil {
				return fmt.Errorf("%w: %d", ErrConsignmentNotFound, id)
			}
			if !transitionAllowed(consignment.Status, req.ToStatus) {
				return fmt.Errorf("%w: %s 不允许 %s → %s",
					ErrStatusTransitionInvalid, consignment.ConsignmentNo, consignment.Status, req.ToStatus)
			}
			if len(ids) > 1 && !batchPredecessorAllowed(consignment.Status, req.ToStatus) {
				return fmt.Errorf("%w: %s 当前状态 %s 不满足批量流转前置条件",
					ErrStatusTransitionInvalid, consignment.ConsignmentNo, consignment.Status)
			}
			if req.ToStatus == constants.ConsignmentStatusPickupCompleted && consignment.ConsoleID == nil {
				return fmt.Errorf("%w: %s", ErrConsoleNotAssigned, consignment.ConsignmentNo)
			}
			// 离开草稿态必须满足全部提交条件，不论从哪个入口发起流转
			if req.ToStatus == constants.ConsignmentStatusPendingForApproval {
				if err := checkDraftSubmittableTx(tx, s.consignmentRepo, s.packagingRepo, consignment); err != nil {
					return fmt.Errorf("%s: %w", consignment.ConsignmentNo, err)
				}
			}
			consignments = append(consignments, consignment)
		}

		// 写入阶段
		now := time.Now()
		consoleIDs := make(map[uint]bool)
		var affectedLineIDs []uint
		for _, consignment := range consignments {
			before := SnapshotConsignment(consignment)
			if consignment.ConsoleID != nil {
				consoleIDs[*consignment.ConsoleID] = true
			}

			lineIDs, err := s.applyTransitionTx(tx, consignment, req, now)
			if err != nil {
				return err
			}
			affectedLineIDs = append(affectedLineIDs, lineIDs...)

			audits = append(audits, auditPair{id: consignment.ID, before: before, after: SnapshotConsignment(consignment)})
			events = append(events, StatusEvent{
				EntityKind: constants.AuditEntityConsignment,
				EntityID:   consignment.ID,
				NewStatus:  consignment.Status,
				ActorID:    actor.ID,
			})
			if consignment.ConsoleID != nil {
				consoleIDs[*consignment.ConsoleID] = true
			}
		}

		if len(affectedLineIDs) > 0 {
			if _, err := s.reconcile.recomputeTx(tx, affectedLineIDs); err != nil {
				return err
			}
		}

		consoleEvents, err := s.syncConsolesTx(tx, consoleIDs, actor)
		if err != nil {
			return err
		}
		events = append(events, consoleEvents...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, pair := range audits {
		s.auditService.Record(constants.AuditEntityConsignment, pair.id, pair.before, pair.after, actor)
	}
	s.dispatchEvents(events)
	return events, nil
}

// applyTransitionTx 对单个托运单落库状态变更及其级联效应
// 返回需要重算数量的订单行集合。
func (s *StatusService) applyTransitionTx(tx *gorm.DB, consignment *models.Consignment, req TransitionRequest, now time.Time) ([]uint, error) {
	consignmentRepo := s.consignmentRepo.WithTx(tx)
	updates := map[string]interface{}{}

	switch req.ToStatus {
	case constants.ConsignmentStatusPendingForApproval:
		// 离开草稿态：清理空包裹、草稿号转正、临时编号换正式编号
		if _, err := s.allocation.finalizeIdsTx(tx, consignment.ID); err != nil {
			return nil, err
		}
		if strings.HasPrefix(consignment.ConsignmentNo, constants.ConsignmentDraftPrefix) {
			permanentNo, err := s.sequenceService.WithTx(tx).NextConsignmentPermanentNo()
			if err != nil {
				return nil, err
			}
			updates["consignment_no"] = permanentNo
			consignment.ConsignmentNo = permanentNo
		}
		updates["submitted_at"] = now
		submittedAt := now
		consignment.SubmittedAt = &submittedAt

	case constants.ConsignmentStatusRejected:
		updates["rejection_code"] = req.RejectionCode
		consignment.RejectionCode = req.RejectionCode

	case constants.ConsignmentStatusPendingBid:
		// 回到竞价：脱离原批次
		if consignment.ConsoleID != nil {
			updates["console_id"] = nil
			consignment.ConsoleID = nil
		}
	}

	if err := consignmentRepo.UpdateStatus(consignment.ID, req.ToStatus, updates); err != nil {
		return nil, err
	}
	consignment.Status = req.ToStatus

	return s.cascadePackagesTx(tx, consignment.ID, req.ToStatus)
}

// cascadePackagesTx 状态流转对包裹的级联：
// 拒收/取消 → 包裹全部取消（分配不再占用数量）；
// 送达 → 在途包裹置为 delivered；整单签收 → 在途包裹置为 received。
func (s *StatusService) cascadePackagesTx(tx *gorm.DB, consignmentID uint, toStatus string) ([]uint, error) {
	var packageStatus string
	switch toStatus {
	case constants.ConsignmentStatusRejected, constants.ConsignmentStatusCancelled:
		packageStatus = constants.PackagingStatusCancelled
	case constants.ConsignmentStatusDelivered:
		packageStatus = constants.PackagingStatusDelivered
	case constants.ConsignmentStatusReceivedAtDestination:
		packageStatus = constants.PackagingStatusReceived
	default:
		return nil, nil
	}

	packagingRepo := s.packagingRepo.WithTx(tx)
	packages, err := packagingRepo.ListPackagesByConsignment(consignmentID)
	if err != nil {
		return nil, err
	}

	var lineIDs []uint
	for i := range packages {
		pkg := &packages[i]
		if pkg.Status == constants.PackagingStatusCancelled || pkg.Status == packageStatus {
			continue
		}
		if err := packagingRepo.UpdatePackage(pkg.ID, map[string]interface{}{"status": packageStatus}); err != nil {
			return nil, err
		}
		for _, allocation := range pkg.Allocations {
			lineIDs = append(lineIDs, allocation.PurchaseOrderLineID)
		}
	}
	return lineIDs, nil
}

// AssignToConsole 将托运单批量并入集运批次
// 仅允许待分配批次或竞价中的托运单加入，加入后转为已指派货代。
func (s *StatusService) AssignToConsole(consoleID uint, consignmentIDs []uint, actor Actor) ([]StatusEvent, error) {
	ids := dedupeIDs(consignmentIDs)
	if len(ids) == 0 {
		return nil, ErrConsignmentNotFound
	}

	var events []StatusEvent
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		console, err := s.consoleRepo.WithTx(tx).GetByID(consoleID)
		if err != nil {
			return err
		}
		if console == nil {
			return ErrConsoleNotFound
		}

		consignmentRepo := s.consignmentRepo.WithTx(tx)
		for _, id := range ids {
			consignment, err := consignmentRepo.GetByIDForUpdate(id)
			if err != nil {
				return err
			}
			if consignment == nil {
				return fmt.Errorf("%w: %d", ErrConsignmentNotFound, id)
			}
			if consignment.Status != constants.ConsignmentStatusPendingConsoleAssignment &&
				consignment.Status != constants.ConsignmentStatusPendingBid {
				return fmt.Errorf("%w: %s 当前状态 %s 不可并入批次",
					ErrStatusTransitionInvalid, consignment.ConsignmentNo, consignment.Status)
			}
			if err := consignmentRepo.UpdateStatus(id, constants.ConsignmentStatusFreightForwarderAssigned,
				map[string]interface{}{"console_id": consoleID}); err != nil {
				return err
			}
			events = append(events, StatusEvent{
				EntityKind: constants.AuditEntityConsignment,
				EntityID:   id,
				NewStatus:  constants.ConsignmentStatusFreightForwarderAssigned,
				ActorID:    actor.ID,
			})
		}

		consoleEvents, err := s.syncConsolesTx(tx, map[uint]bool{consoleID: true}, actor)
		if err != nil {
			return err
		}
		events = append(events, consoleEvents...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatchEvents(events)
	return events, nil
}

// MarkPackagesReceived 在目的地按包裹签收
// 部分签收使托运单转为 partially_received；全部在途包裹签收后
// 转为 received_at_destination。
func (s *StatusService) MarkPackagesReceived(consignmentID uint, packageNos []string, actor Actor) ([]StatusEvent, error) {
	if len(packageNos) == 0 {
		return nil, ErrPackageCountInvalid
	}

	var events []StatusEvent
	var before, after map[string]string
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
		if consignment.Status != constants.ConsignmentStatusOutForDelivery &&
			consignment.Status != constants.ConsignmentStatusPartiallyReceived {
			return fmt.Errorf("%w: %s 当前状态 %s 不可签收",
				ErrStatusTransitionInvalid, consignment.ConsignmentNo, consignment.Status)
		}
		before = SnapshotConsignment(consignment)

		packages, err := packagingRepo.ListPackagesByConsignment(consignmentID)
		if err != nil {
			return err
		}
		byNo := make(map[string]*models.ConsignmentPackaging, len(packages))
		for i := range packages {
			byNo[packages[i].PackageNo] = &packages[i]
		}

		var lineIDs []uint
		for _, no := range packageNos {
			pkg, ok := byNo[no]
			if !ok {
				return fmt.Errorf("%w: %s", ErrPackageNotFound, no)
			}
			if pkg.Status != constants.PackagingStatusNotReceived {
				continue
			}
			if err := packagingRepo.UpdatePackage(pkg.ID, map[string]interface{}{
				"status": constants.PackagingStatusReceived,
			}); err != nil {
				return err
			}
			pkg.Status = constants.PackagingStatusReceived
			for _, allocation := range pkg.Allocations {
				lineIDs = append(lineIDs, allocation.PurchaseOrderLineID)
			}
		}

		if len(lineIDs) > 0 {
			if _, err := s.reconcile.recomputeTx(tx, lineIDs); err != nil {
				return err
			}
		}

		// 推导托运单状态：在途包裹全部签收则整单签收
		outstanding := 0
		for i := range packages {
			if packages[i].Status == constants.PackagingStatusNotReceived {
				outstanding++
			}
		}
		nextStatus := constants.ConsignmentStatusPartiallyReceived
		if outstanding == 0 {
			nextStatus = constants.ConsignmentStatusReceivedAtDestination
		}
		if nextStatus != consignment.Status {
			if err := consignmentRepo.UpdateStatus(consignmentID, nextStatus, nil); err != nil {
				return err
			}
			consignment.Status = nextStatus
			events = append(events, StatusEvent{
				EntityKind: constants.AuditEntityConsignment,
				EntityID:   consignmentID,
				NewStatus:  nextStatus,
				ActorID:    actor.ID,
			})
		}
		after = SnapshotConsignment(consignment)

		if consignment.ConsoleID != nil {
			consoleEvents, err := s.syncConsolesTx(tx, map[uint]bool{*consignment.ConsoleID: true}, actor)
			if err != nil {
				return err
			}
			events = append(events, consoleEvents...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditService.Record(constants.AuditEntityConsignment, consignmentID, before, after, actor)
	s.dispatchEvents(events)
	return events, nil
}

// syncConsolesTx 按批次下托运单状态重算并落库批次状态
func (s *StatusService) syncConsolesTx(tx *gorm.DB, consoleIDs map[uint]bool, actor Actor) ([]StatusEvent, error) {
	if len(consoleIDs) == 0 {
		return nil, nil
	}
	consoleRepo := s.consoleRepo.WithTx(tx)
	consignmentRepo := s.consignmentRepo.WithTx(tx)

	var events []StatusEvent
	for consoleID := range consoleIDs {
		console, err := consoleRepo.GetByID(consoleID)
		if err != nil {
			return nil, err
		}
		if console == nil {
			continue
		}
		consignments, err := consignmentRepo.ListByConsole(consoleID)
		if err != nil {
			return nil, err
		}
		statuses := make([]string, 0, len(consignments))
		for _, consignment := range consignments {
			statuses = append(statuses, consignment.Status)
		}
		next := calcConsoleStatus(statuses, console.Status)
		if next == console.Status {
			continue
		}
		if err := consoleRepo.UpdateStatus(consoleID, next); err != nil {
			return nil, err
		}
		events = append(events, StatusEvent{
			EntityKind: constants.AuditEntityConsole,
			EntityID:   consoleID,
			NewStatus:  next,
			ActorID:    actor.ID,
		})
	}
	return events, nil
}

// dispatchEvents 提交后分发状态事件，失败只记日志
func (s *StatusService) dispatchEvents(events []StatusEvent) {
	if s.notifier == nil {
		return
	}
	for _, event := range events {
		if err := s.notifier.Dispatch(event); err != nil {
			logger.Warnw("status event dispatch failed",
				"entity_kind", event.EntityKind, "entity_id", event.EntityID,
				"new_status", event.NewStatus, "err", err)
		}
	}
}
