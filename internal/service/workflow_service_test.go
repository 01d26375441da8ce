package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/freightdesk-next/internal/constants"
)

func TestCreateDraftAssignsDraftNumber(t *testing.T) {
	env := setupServiceTest(t, "workflow_draft")
	consignment, err := env.workflow.CreateDraft(testActor())
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	if !strings.HasPrefix(consignment.ConsignmentNo, constants.ConsignmentDraftPrefix) {
		t.Fatalf("expected draft prefix, got %s", consignment.ConsignmentNo)
	}
	if consignment.Status != constants.ConsignmentStatusDraft || consignment.Step != constants.ConsignmentStepSelectOrders {
		t.Fatalf("unexpected initial state: %+v", consignment)
	}
	if consignment.OwnerID != testActor().ID {
		t.Fatalf("owner not recorded: %d", consignment.OwnerID)
	}
}

func TestAdvanceStepRejectsSkippingAhead(t *testing.T) {
	env := setupServiceTest(t, "workflow_skip")
	consignment, err := env.workflow.CreateDraft(testActor())
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	if _, err := env.workflow.AdvanceStep(consignment.ID, 2, StepPayload{LineIDs: []uint{1}}, testActor()); !errors.Is(err, ErrStepOrderViolation) {
		t.Fatalf("expected ErrStepOrderViolation, got: %v", err)
	}
	if _, err := env.workflow.AdvanceStep(consignment.ID, 0, StepPayload{}, testActor()); !errors.Is(err, ErrStepPayloadInvalid) {
		t.Fatalf("expected ErrStepPayloadInvalid, got: %v", err)
	}
}

func TestSelectOrdersEnforcesLimit(t *testing.T) {
	env := setupServiceTest(t, "workflow_limit")
	consignment, err := env.workflow.CreateDraft(testActor())
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	orderIDs := make([]uint, 0, constants.ConsignmentMaxOrders+1)
	for i := 0; i <= constants.ConsignmentMaxOrders; i++ {
		order := createTestOrder(t, env, "PO-W1-"+string(rune('A'+i)), simpleLine(5))
		orderIDs = append(orderIDs, order.ID)
	}
	if _, err := env.workflow.AdvanceStep(consignment.ID, 1, StepPayload{OrderIDs: orderIDs}, testActor()); !errors.Is(err, ErrTooManyOrders) {
		t.Fatalf("expected ErrTooManyOrders, got: %v", err)
	}
}

func TestSelectOrdersRejectsSupplierMismatch(t *testing.T) {
	env := setupServiceTest(t, "workflow_mismatch")
	consignment, err := env.workflow.CreateDraft(testActor())
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	first := createTestOrder(t, env, "PO-W2A", simpleLine(5))
	second, err := env.orders.CreatePurchaseOrder(OrderInput{
		OrderNo:      "SUP-PO-W2B",
		CustomerRef:  "PO-W2B",
		SupplierCode: "SUP999",
		ClientCode:   "ACME",
		StorerKey:    "WH-SHA",
		Lines:        []OrderLineInput{simpleLine(5)},
	}, testActor())
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := env.workflow.AdvanceStep(consignment.ID, 1, StepPayload{OrderIDs: []uint{first.ID, second.ID}}, testActor()); !errors.Is(err, ErrSupplierClientMismatch) {
		t.Fatalf("expected ErrSupplierClientMismatch, got: %v", err)
	}
}

func TestSelectOrdersRejectsOccupiedOrder(t *testing.T) {
	env := setupServiceTest(t, "workflow_occupied")
	order := createTestOrder(t, env, "PO-W3", simpleLine(5))
	line := order.Lines[0]

	// 另一张在途托运单已占用该订单的行
	occupant := createTestConsignment(t, env, line.ID)
	setConsignmentStatus(t, env, occupant.ID, constants.ConsignmentStatusPendingForApproval)

	consignment, err := env.workflow.CreateDraft(testActor())
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	if _, err := env.workflow.AdvanceStep(consignment.ID, 1, StepPayload{OrderIDs: []uint{order.ID}}, testActor()); !errors.Is(err, ErrOrderLocked) {
		t.Fatalf("expected ErrOrderLocked, got: %v", err)
	}
}

func TestSelectLinesRejectsOccupiedLine(t *testing.T) {
	env := setupServiceTest(t, "workflow_line_occupied")
	free := createTestOrder(t, env, "PO-W4A", simpleLine(5))
	other := createTestOrder(t, env, "PO-W4B", simpleLine(5))
	occupiedLine := other.Lines[0]

	occupant := createTestConsignment(t, env, occupiedLine.ID)
	setConsignmentStatus(t, env, occupant.ID, constants.ConsignmentStatusPendingForApproval)

	consignment, err := env.workflow.CreateDraft(testActor())
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	if _, err := env.workflow.AdvanceStep(consignment.ID, 1, StepPayload{OrderIDs: []uint{free.ID}}, testActor()); err != nil {
		t.Fatalf("step 1 failed: %v", err)
	}
	if _, err := env.workflow.AdvanceStep(consignment.ID, 2, StepPayload{
		LineIDs: []uint{free.Lines[0].ID, occupiedLine.ID},
	}, testActor()); !errors.Is(err, ErrLineLocked) {
		t.Fatalf("expected ErrLineLocked, got: %v", err)
	}
}

func TestWorkflowFullPathAndSubmit(t *testing.T) {
	env := setupServiceTest(t, "workflow_full")
	order := createTestOrder(t, env, "PO-W5", simpleLine(10))
	line := order.Lines[0]

	consignment, err := env.workflow.CreateDraft(testActor())
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}

	// 步骤 1：选订单
	if _, err := env.workflow.AdvanceStep(consignment.ID, 1, StepPayload{OrderIDs: []uint{order.ID}}, testActor()); err != nil {
		t.Fatalf("step 1 failed: %v", err)
	}
	// 步骤 2：选订单行
	if _, err := env.workflow.AdvanceStep(consignment.ID, 2, StepPayload{LineIDs: []uint{line.ID}}, testActor()); err != nil {
		t.Fatalf("step 2 failed: %v", err)
	}

	// 提前提交：步骤未完成
	if _, err := env.workflow.Submit(consignment.ID, testActor()); !errors.Is(err, ErrStepIncomplete) {
		t.Fatalf("expected ErrStepIncomplete, got: %v", err)
	}

	// 合规信息缺失时步骤 3 不能通过
	if _, err := env.workflow.AdvanceStep(consignment.ID, 3, StepPayload{}, testActor()); !errors.Is(err, ErrComplianceIncomplete) {
		t.Fatalf("expected ErrComplianceIncomplete, got: %v", err)
	}
	if err := env.workflow.SetLineCompliance(consignment.ID, CompliancePayload{
		PurchaseOrderLineID: line.ID,
		HSCode:              "8471.30",
		CountryOfOrigin:     "CN",
	}, testActor()); err != nil {
		t.Fatalf("set compliance failed: %v", err)
	}

	// 没有包裹时步骤 3 不能通过
	if _, err := env.workflow.AdvanceStep(consignment.ID, 3, StepPayload{}, testActor()); !errors.Is(err, ErrConsignmentNoPackages) {
		t.Fatalf("expected ErrConsignmentNoPackages, got: %v", err)
	}
	pkg := createTestPackage(t, env, consignment.ID)

	// 行未装箱时步骤 3 不能通过
	if _, err := env.workflow.AdvanceStep(consignment.ID, 3, StepPayload{}, testActor()); !errors.Is(err, ErrAllocationMissing) {
		t.Fatalf("expected ErrAllocationMissing, got: %v", err)
	}
	if _, err := env.allocation.Allocate(consignment.ID, pkg.PackageNo, line.ID, 10, testActor()); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if _, err := env.workflow.AdvanceStep(consignment.ID, 3, StepPayload{}, testActor()); err != nil {
		t.Fatalf("step 3 failed: %v", err)
	}

	// 步骤 4：地址与单证
	if _, err := env.workflow.AdvanceStep(consignment.ID, 4, StepPayload{}, testActor()); !errors.Is(err, ErrPickupAddressRequired) {
		t.Fatalf("expected ErrPickupAddressRequired, got: %v", err)
	}
	scheduledAt := time.Now().Add(48 * time.Hour)
	if _, err := env.workflow.AdvanceStep(consignment.ID, 4, StepPayload{
		PickupAddress:     "上海市浦东新区测试路 1 号",
		PickupScheduledAt: &scheduledAt,
	}, testActor()); err != nil {
		t.Fatalf("step 4 failed: %v", err)
	}

	// 单证缺失时不可提交
	if _, err := env.workflow.Submit(consignment.ID, testActor()); !errors.Is(err, ErrDocumentsMissing) {
		t.Fatalf("expected ErrDocumentsMissing, got: %v", err)
	}
	if _, err := env.workflow.AdvanceStep(consignment.ID, 4, StepPayload{
		PickupAddress:        "上海市浦东新区测试路 1 号",
		PickupScheduledAt:    &scheduledAt,
		HasCommercialInvoice: true,
		HasPackingList:       true,
	}, testActor()); err != nil {
		t.Fatalf("step 4 retry failed: %v", err)
	}

	events, err := env.workflow.Submit(consignment.ID, testActor())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(events) == 0 {
		t.Fatalf("expected status events from submit")
	}

	reloaded := reloadConsignment(t, env, consignment.ID)
	if reloaded.Status != constants.ConsignmentStatusPendingForApproval {
		t.Fatalf("unexpected status after submit: %s", reloaded.Status)
	}
	if !strings.HasPrefix(reloaded.ConsignmentNo, constants.ConsignmentPermanentPrefix) {
		t.Fatalf("consignment no not finalized: %s", reloaded.ConsignmentNo)
	}
}

func TestSetLineComplianceRequiresSelection(t *testing.T) {
	env := setupServiceTest(t, "workflow_compliance")
	order := createTestOrder(t, env, "PO-W6", simpleLine(5))
	consignment, err := env.workflow.CreateDraft(testActor())
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	if err := env.workflow.SetLineCompliance(consignment.ID, CompliancePayload{
		PurchaseOrderLineID: order.Lines[0].ID,
		HSCode:              "8471.30",
		CountryOfOrigin:     "CN",
	}, testActor()); !errors.Is(err, ErrLineNotSelected) {
		t.Fatalf("expected ErrLineNotSelected, got: %v", err)
	}
}

func TestSelectLinesReleasesDeselectedAllocations(t *testing.T) {
	env := setupServiceTest(t, "workflow_deselect")
	order := createTestOrder(t, env, "PO-W7",
		OrderLineInput{LineNo: 1, SKU: "SKU-A", Quantity: 10, FulfillmentType: constants.FulfillmentTypeBTS},
		OrderLineInput{LineNo: 2, SKU: "SKU-B", Quantity: 10, FulfillmentType: constants.FulfillmentTypeBTS},
	)
	lineA, lineB := order.Lines[0], order.Lines[1]

	consignment, err := env.workflow.CreateDraft(testActor())
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	if _, err := env.workflow.AdvanceStep(consignment.ID, 1, StepPayload{OrderIDs: []uint{order.ID}}, testActor()); err != nil {
		t.Fatalf("step 1 failed: %v", err)
	}
	if _, err := env.workflow.AdvanceStep(consignment.ID, 2, StepPayload{LineIDs: []uint{lineA.ID, lineB.ID}}, testActor()); err != nil {
		t.Fatalf("step 2 failed: %v", err)
	}
	pkg := createTestPackage(t, env, consignment.ID)
	if _, err := env.allocation.Allocate(consignment.ID, pkg.PackageNo, lineA.ID, 5, testActor()); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	// 回到步骤 2 只保留 lineB：lineA 的分配应被释放
	if _, err := env.workflow.AdvanceStep(consignment.ID, 2, StepPayload{LineIDs: []uint{lineB.ID}}, testActor()); err != nil {
		t.Fatalf("step 2 reselect failed: %v", err)
	}
	got := reloadLine(t, env, lineA.ID)
	if got.OpenQuantity != 10 || got.ProcessedQuantity != 0 {
		t.Fatalf("deselected line still allocated: %+v", got)
	}
	selected, err := env.consignmentRepo.GetLine(consignment.ID, lineA.ID)
	if err != nil {
		t.Fatalf("get line failed: %v", err)
	}
	if selected != nil {
		t.Fatalf("deselected line still attached")
	}
}
