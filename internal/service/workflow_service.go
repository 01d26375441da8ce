package service

import (
	"fmt"
	"time"

	"github.com/freightdesk-next/internal/constants"
	"github.com/freightdesk-next/internal/models"
	"github.com/freightdesk-next/internal/repository"

	"gorm.io/gorm"
)

// CompliancePayload 托运单行合规信息
type CompliancePayload struct {
	PurchaseOrderLineID    uint   `json:"purchase_order_line_id"`
	HSCode                 string `json:"hs_code"`
	ExportControlClass     string `json:"export_control_class"`
	DangerousGoodsClass    string `json:"dangerous_goods_class"`
	DangerousGoodsCategory string `json:"dangerous_goods_category"`
	CountryOfOrigin        string `json:"country_of_origin"`
}

// StepPayload 步骤推进载荷（按步骤取用对应字段）
type StepPayload struct {
	OrderIDs             []uint     `json:"order_ids"`
	LineIDs              []uint     `json:"line_ids"`
	PickupAddress        string     `json:"pickup_address"`
	PickupScheduledAt    *time.Time `json:"pickup_scheduled_at"`
	HasCommercialInvoice bool       `json:"has_commercial_invoice"`
	HasPackingList       bool       `json:"has_packing_list"`
}

// StepView 步骤视图：重建某一步骤的已保存数据
type StepView struct {
	Step        int                           `json:"step"`
	CurrentStep int                           `json:"current_step"`
	Status      string                        `json:"status"`
	Orders      []models.PurchaseOrder        `json:"orders,omitempty"`
	Lines       []models.ConsignmentLine      `json:"lines,omitempty"`
	Packages    []models.ConsignmentPackaging `json:"packages,omitempty"`
	Consignment *models.Consignment           `json:"consignment,omitempty"`
}

// WorkflowService 托运单创建流程服务
// 五步向导：选订单 → 选订单行 → 装箱 → 地址与单证 → 复核提交。
// 步骤只能顺序推进，回到早前步骤重新保存会级联释放后续步骤的数据。
type WorkflowService struct {
	orderRepo       repository.PurchaseOrderRepository
	consignmentRepo repository.ConsignmentRepository
	packagingRepo   repository.PackagingRepository
	sequenceService *SequenceService
	allocation      *AllocationService
	status          *StatusService
	auditService    *AuditService
}

// NewWorkflowService 创建托运单创建流程服务
func NewWorkflowService(
	orderRepo repository.PurchaseOrderRepository,
	consignmentRepo repository.ConsignmentRepository,
	packagingRepo repository.PackagingRepository,
	sequenceService *SequenceService,
	allocation *AllocationService,
	status *StatusService,
	auditService *AuditService,
) *WorkflowService {
	return &WorkflowService{
		orderRepo:       orderRepo,
		consignmentRepo: consignmentRepo,
		packagingRepo:   packagingRepo,
		sequenceService: sequenceService,
		allocation:      allocation,
		status:          status,
		auditService:    auditService,
	}
}

// CreateDraft 创建草稿托运单（分配临时编号，从步骤 1 开始）
func (s *WorkflowService) CreateDraft(actor Actor) (*models.Consignment, error) {
	draftNo, err := s.sequenceService.NextConsignmentDraftNo()
	if err != nil {
		return nil, err
	}
	consignment := &models.Consignment{
		ConsignmentNo: draftNo,
		Status:        constants.ConsignmentStatusDraft,
		Step:          constants.ConsignmentStepSelectOrders,
		OwnerID:       actor.ID,
	}
	if err := s.consignmentRepo.Create(consignment); err != nil {
		return nil, err
	}
	s.auditService.Record(constants.AuditEntityConsignment, consignment.ID, nil, SnapshotConsignment(consignment), actor)
	return consignment, nil
}

// AdvanceStep 保存并推进指定步骤
// 只允许保存当前步骤或其之前的步骤；保存成功后当前步骤前进一格。
func (s *WorkflowService) AdvanceStep(consignmentID uint, step int, payload StepPayload, actor Actor) (*models.Consignment, error) {
	if step < constants.ConsignmentStepSelectOrders || step > constants.ConsignmentStepReview {
		return nil, ErrStepPayloadInvalid
	}

	var result *models.Consignment
	var before, after map[string]string
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		consignmentRepo := s.consignmentRepo.WithTx(tx)
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
		if step > consignment.Step {
			return fmt.Errorf("%w: 当前步骤 %d，请求步骤 %d", ErrStepOrderViolation, consignment.Step, step)
		}
		before = SnapshotConsignment(consignment)

		switch step {
		case constants.ConsignmentStepSelectOrders:
			err = s.saveSelectOrdersTx(tx, consignment, payload)
		case constants.ConsignmentStepSelectLines:
			err = s.saveSelectLinesTx(tx, consignment, payload)
		case constants.ConsignmentStepPacking:
			err = checkPackingCompleteTx(tx, s.consignmentRepo, s.packagingRepo, consignment.ID)
		case constants.ConsignmentStepAddress:
			err = s.saveAddressTx(tx, consignment, payload)
		case constants.ConsignmentStepReview:
			// 复核步骤无保存动作，提交走 Submit
		}
		if err != nil {
			return err
		}

		next := step + 1
		if next > constants.ConsignmentStepReview {
			next = constants.ConsignmentStepReview
		}
		if next > consignment.Step {
			if err := consignmentRepo.Update(consignment.ID, map[string]interface{}{"step": next}); err != nil {
				return err
			}
			consignment.Step = next
		}
		after = SnapshotConsignment(consignment)
		result = consignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditService.Record(constants.AuditEntityConsignment, consignmentID, before, after, actor)
	return result, nil
}

// saveSelectOrdersTx 步骤 1：选择采购订单
// 订单数量受上限约束，供应商/客户/仓储方必须一致，且订单不得已被
// 其他在途托运单占用。重新选择会剔除不再属于所选订单的关联行。
func (s *WorkflowService) saveSelectOrdersTx(tx *gorm.DB, consignment *models.Consignment, payload StepPayload) error {
	orderIDs := dedupeIDs(payload.OrderIDs)
	if len(orderIDs) == 0 {
		return ErrStepPayloadInvalid
	}
	if len(orderIDs) > constants.ConsignmentMaxOrders {
		return fmt.Errorf("%w: 已选 %d，上限 %d", ErrTooManyOrders, len(orderIDs), constants.ConsignmentMaxOrders)
	}

	orderRepo := s.orderRepo.WithTx(tx)
	consignmentRepo := s.consignmentRepo.WithTx(tx)

	var supplierCode, clientCode, storerKey string
	allowedLineIDs := make(map[uint]bool)
	for i, orderID := range orderIDs {
		order, err := orderRepo.GetByID(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
		}
		if i == 0 {
			supplierCode = order.SupplierCode
			clientCode = order.ClientCode
			storerKey = order.StorerKey
		} else if order.SupplierCode != supplierCode || order.ClientCode != clientCode {
			return fmt.Errorf("%w: %s", ErrSupplierClientMismatch, order.OrderNo)
		}

		occupied, err := consignmentRepo.FindActiveConsignmentByOrder(orderID, consignment.ID)
		if err != nil {
			return err
		}
		if occupied != nil {
			return fmt.Errorf("%w: %s 被 %s 占用", ErrOrderLocked, order.OrderNo, occupied.ConsignmentNo)
		}
		for _, line := range order.Lines {
			allowedLineIDs[line.ID] = true
		}
	}

	// 剔除不再属于所选订单的关联行，并释放其分配
	existing, err := consignmentRepo.ListLines(consignment.ID)
	if err != nil {
		return err
	}
	var removed []uint
	for _, line := range existing {
		if !allowedLineIDs[line.PurchaseOrderLineID] {
			removed = append(removed, line.PurchaseOrderLineID)
		}
	}
	if len(removed) > 0 {
		if err := s.allocation.ReleaseAllocationsByLines(tx, consignment.ID, removed); err != nil {
			return err
		}
		if err := consignmentRepo.DeleteLines(consignment.ID, removed); err != nil {
			return err
		}
	}

	if err := consignmentRepo.Update(consignment.ID, map[string]interface{}{
		"supplier_code": supplierCode,
		"client_code":   clientCode,
		"storer_key":    storerKey,
	}); err != nil {
		return err
	}
	consignment.SupplierCode = supplierCode
	consignment.ClientCode = clientCode
	consignment.StorerKey = storerKey
	return nil
}

// saveSelectLinesTx 步骤 2：选择采购订单行
// 行必须属于与托运单一致的供应商/客户，未被其他在途托运单占用，
// 且行状态仍可装箱。取消选择的行会释放其既有分配。
func (s *WorkflowService) saveSelectLinesTx(tx *gorm.DB, consignment *models.Consignment, payload StepPayload) error {
	lineIDs := dedupeIDs(payload.LineIDs)
	if len(lineIDs) == 0 {
		return ErrStepPayloadInvalid
	}

	orderRepo := s.orderRepo.WithTx(tx)
	consignmentRepo := s.consignmentRepo.WithTx(tx)

	lines, err := orderRepo.GetLinesByIDs(lineIDs)
	if err != nil {
		return err
	}
	if len(lines) != len(lineIDs) {
		return ErrLineNotFound
	}

	orderCache := make(map[uint]*models.PurchaseOrder)
	for _, line := range lines {
		if line.Status == constants.OrderStatusClosed || line.Status == constants.OrderStatusCancelled {
			return fmt.Errorf("%w: 行 %d 状态 %s", ErrOrderLineInvalid, line.ID, line.Status)
		}
		order, ok := orderCache[line.PurchaseOrderID]
		if !ok {
			order, err = orderRepo.GetByID(line.PurchaseOrderID)
			if err != nil {
				return err
			}
			if order == nil {
				return fmt.Errorf("%w: %d", ErrOrderNotFound, line.PurchaseOrderID)
			}
			orderCache[line.PurchaseOrderID] = order
		}
		if order.SupplierCode != consignment.SupplierCode || order.ClientCode != consignment.ClientCode {
			return fmt.Errorf("%w: %s", ErrSupplierClientMismatch, order.OrderNo)
		}

		occupied, err := consignmentRepo.FindActiveConsignmentByLine(line.ID, consignment.ID)
		if err != nil {
			return err
		}
		if occupied != nil {
			return fmt.Errorf("%w: 行 %d 被 %s 占用", ErrLineLocked, line.ID, occupied.ConsignmentNo)
		}
	}
	if len(orderCache) > constants.ConsignmentMaxOrders {
		return fmt.Errorf("%w: 涉及 %d 个订单，上限 %d", ErrTooManyOrders, len(orderCache), constants.ConsignmentMaxOrders)
	}

	// 与既有关联行做差集：新增缺失的，删除取消选择的并释放分配
	existing, err := consignmentRepo.ListLines(consignment.ID)
	if err != nil {
		return err
	}
	existingSet := make(map[uint]bool, len(existing))
	for _, line := range existing {
		existingSet[line.PurchaseOrderLineID] = true
	}
	selectedSet := make(map[uint]bool, len(lineIDs))
	for _, id := range lineIDs {
		selectedSet[id] = true
	}

	var added []models.ConsignmentLine
	for _, id := range lineIDs {
		if !existingSet[id] {
			added = append(added, models.ConsignmentLine{
				ConsignmentID:       consignment.ID,
				PurchaseOrderLineID: id,
			})
		}
	}
	var removed []uint
	for _, line := range existing {
		if !selectedSet[line.PurchaseOrderLineID] {
			removed = append(removed, line.PurchaseOrderLineID)
		}
	}

	if len(removed) > 0 {
		if err := s.allocation.ReleaseAllocationsByLines(tx, consignment.ID, removed); err != nil {
			return err
		}
		if err := consignmentRepo.DeleteLines(consignment.ID, removed); err != nil {
			return err
		}
	}
	return consignmentRepo.CreateLines(added)
}

// SetLineCompliance 填写托运单行的合规信息（装箱步骤前置条件）
func (s *WorkflowService) SetLineCompliance(consignmentID uint, payload CompliancePayload, actor Actor) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		consignmentRepo := s.consignmentRepo.WithTx(tx)
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

		line, err := consignmentRepo.GetLine(consignmentID, payload.PurchaseOrderLineID)
		if err != nil {
			return err
		}
		if line == nil {
			return ErrLineNotSelected
		}
		return consignmentRepo.UpdateLine(line.ID, map[string]interface{}{
			"hs_code":                  payload.HSCode,
			"export_control_class":     payload.ExportControlClass,
			"dangerous_goods_class":    payload.DangerousGoodsClass,
			"dangerous_goods_category": payload.DangerousGoodsCategory,
			"country_of_origin":        payload.CountryOfOrigin,
		})
	})
}

// checkPackingCompleteTx 步骤 3 完成条件：
// 全部关联行合规信息完整、至少一个包裹、每个关联行至少有一笔分配。
// 状态机在草稿离开时也复用该校验，独立于工作流入口。
func checkPackingCompleteTx(
	tx *gorm.DB,
	repo repository.ConsignmentRepository,
	pkgRepo repository.PackagingRepository,
	consignmentID uint,
) error {
	consignmentRepo := repo.WithTx(tx)
	packagingRepo := pkgRepo.WithTx(tx)

	lines, err := consignmentRepo.ListLines(consignmentID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if !line.ComplianceComplete() {
			return fmt.Errorf("%w: 行 %d", ErrComplianceIncomplete, line.PurchaseOrderLineID)
		}
	}

	count, err := packagingRepo.CountPackagesByConsignment(consignmentID)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrConsignmentNoPackages
	}

	allocations, err := packagingRepo.ListAllocationsByConsignment(consignmentID)
	if err != nil {
		return err
	}
	allocated := make(map[uint]bool, len(allocations))
	for _, allocation := range allocations {
		allocated[allocation.PurchaseOrderLineID] = true
	}
	for _, line := range lines {
		if !allocated[line.PurchaseOrderLineID] {
			return fmt.Errorf("%w: 行 %d", ErrAllocationMissing, line.PurchaseOrderLineID)
		}
	}
	return nil
}

// checkDraftSubmittableTx 草稿离开前的全部提交条件：
// 步骤已走到复核、商业发票与装箱单齐备、提货信息完整、装箱完整。
func checkDraftSubmittableTx(
	tx *gorm.DB,
	repo repository.ConsignmentRepository,
	pkgRepo repository.PackagingRepository,
	consignment *models.Consignment,
) error {
	if consignment.Step < constants.ConsignmentStepReview {
		return fmt.Errorf("%w: 当前步骤 %d", ErrStepIncomplete, consignment.Step)
	}
	if !consignment.HasCommercialInvoice || !consignment.HasPackingList {
		return ErrDocumentsMissing
	}
	if consignment.PickupAddress == "" || consignment.PickupScheduledAt == nil {
		return ErrPickupAddressRequired
	}
	return checkPackingCompleteTx(tx, repo, pkgRepo, consignment.ID)
}

// saveAddressTx 步骤 4：提货地址、预约时间与单证标记
func (s *WorkflowService) saveAddressTx(tx *gorm.DB, consignment *models.Consignment, payload StepPayload) error {
	if payload.PickupAddress == "" || payload.PickupScheduledAt == nil {
		return ErrPickupAddressRequired
	}
	if err := s.consignmentRepo.WithTx(tx).Update(consignment.ID, map[string]interface{}{
		"pickup_address":         payload.PickupAddress,
		"pickup_scheduled_at":    payload.PickupScheduledAt,
		"has_commercial_invoice": payload.HasCommercialInvoice,
		"has_packing_list":       payload.HasPackingList,
	}); err != nil {
		return err
	}
	consignment.PickupAddress = payload.PickupAddress
	consignment.PickupScheduledAt = payload.PickupScheduledAt
	consignment.HasCommercialInvoice = payload.HasCommercialInvoice
	consignment.HasPackingList = payload.HasPackingList
	return nil
}

// Submit 提交草稿托运单进入审批
// 复核全部步骤的完成条件后交给状态机流转；草稿号转正与正式编号
// 分配由流转的草稿离开级联完成。
func (s *WorkflowService) Submit(consignmentID uint, actor Actor) ([]StatusEvent, error) {
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		consignment, err := s.consignmentRepo.WithTx(tx).GetByIDForUpdate(consignmentID)
		if err != nil {
			return err
		}
		if consignment == nil {
			return ErrConsignmentNotFound
		}
		if consignment.Status != constants.ConsignmentStatusDraft {
			return ErrConsignmentNotEditable
		}
		return checkDraftSubmittableTx(tx, s.consignmentRepo, s.packagingRepo, consignment)
	})
	if err != nil {
		return nil, err
	}

	return s.status.Transition(TransitionRequest{
		ConsignmentIDs: []uint{consignmentID},
		ToStatus:       constants.ConsignmentStatusPendingForApproval,
	}, actor)
}

// GetStep 重建某一步骤的已保存数据视图
func (s *WorkflowService) GetStep(consignmentID uint, step int) (*StepView, error) {
	if step < constants.ConsignmentStepSelectOrders || step > constants.ConsignmentStepReview {
		return nil, ErrStepPayloadInvalid
	}
	consignment, err := s.consignmentRepo.GetByID(consignmentID)
	if err != nil {
		return nil, err
	}
	if consignment == nil {
		return nil, ErrConsignmentNotFound
	}

	view := &StepView{
		Step:        step,
		CurrentStep: consignment.Step,
		Status:      consignment.Status,
	}

	switch step {
	case constants.ConsignmentStepSelectOrders:
		orders, err := s.selectedOrders(consignment)
		if err != nil {
			return nil, err
		}
		view.Orders = orders
	case constants.ConsignmentStepSelectLines:
		view.Lines = consignment.Lines
	case constants.ConsignmentStepPacking:
		view.Lines = consignment.Lines
		view.Packages = consignment.Packages
	case constants.ConsignmentStepAddress, constants.ConsignmentStepReview:
		view.Consignment = consignment
		view.Packages = consignment.Packages
		view.Lines = consignment.Lines
	}
	return view, nil
}

// selectedOrders 由关联行反推步骤 1 选择的采购订单集合
func (s *WorkflowService) selectedOrders(consignment *models.Consignment) ([]models.PurchaseOrder, error) {
	lineIDs := make([]uint, 0, len(consignment.Lines))
	for _, line := range consignment.Lines {
		lineIDs = append(lineIDs, line.PurchaseOrderLineID)
	}
	if len(lineIDs) == 0 {
		return []models.PurchaseOrder{}, nil
	}
	lines, err := s.orderRepo.GetLinesByIDs(lineIDs)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]bool)
	var orders []models.PurchaseOrder
	for _, line := range lines {
		if seen[line.PurchaseOrderID] {
			continue
		}
		seen[line.PurchaseOrderID] = true
		order, err := s.orderRepo.GetByID(line.PurchaseOrderID)
		if err != nil {
			return nil, err
		}
		if order != nil {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}
