package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/freightdesk-next/internal/constants"
	"github.com/freightdesk-next/internal/models"
)

// packedConsignment 准备一张已装箱且满足提交条件的草稿托运单
func packedConsignment(t *testing.T, env *serviceTestEnv, customerRef string, quantity, allocated int) (*models.Consignment, *models.PurchaseOrderLine) {
	t.Helper()

	order := createTestOrder(t, env, customerRef, simpleLine(quantity))
	line := order.Lines[0]
	consignment := createTestConsignment(t, env, line.ID)
	pkg := createTestPackage(t, env, consignment.ID)
	if _, err := env.allocation.Allocate(consignment.ID, pkg.PackageNo, line.ID, allocated, testActor()); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	markDraftSubmittable(t, env, consignment.ID)
	return consignment, &line
}

func TestTransitionSubmitAssignsPermanentNumbers(t *testing.T) {
	env := setupServiceTest(t, "status_submit")
	consignment, line := packedConsignment(t, env, "PO-S1", 10, 4)

	events, err := env.status.Transition(TransitionRequest{
		ConsignmentIDs: []uint{consignment.ID},
		ToStatus:       constants.ConsignmentStatusPendingForApproval,
	}, testActor())
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if len(events) == 0 {
		t.Fatalf("expected status events")
	}

	reloaded := reloadConsignment(t, env, consignment.ID)
	if reloaded.Status != constants.ConsignmentStatusPendingForApproval {
		t.Fatalf("unexpected status: %s", reloaded.Status)
	}
	if !strings.HasPrefix(reloaded.ConsignmentNo, constants.ConsignmentPermanentPrefix) {
		t.Fatalf("consignment still carries draft no: %s", reloaded.ConsignmentNo)
	}
	if reloaded.SubmittedAt == nil {
		t.Fatalf("submitted_at not set")
	}
	for _, pkg := range reloaded.Packages {
		if pkg.Status != constants.PackagingStatusNotReceived {
			t.Fatalf("package not finalized: %+v", pkg)
		}
	}
	got := reloadLine(t, env, line.ID)
	if got.ProcessedQuantity != 4 || got.OpenQuantity != 6 {
		t.Fatalf("quantities changed by submit: %+v", got)
	}
}

func TestTransitionSubmitRejectsIncompleteDraft(t *testing.T) {
	env := setupServiceTest(t, "status_submit_guard")
	order := createTestOrder(t, env, "PO-S12", simpleLine(10))
	consignment := createTestConsignment(t, env, order.Lines[0].ID)

	// 直接走状态机提交：未完成的草稿同样被拦截
	if _, err := env.status.Transition(TransitionRequest{
		ConsignmentIDs: []uint{consignment.ID},
		ToStatus:       constants.ConsignmentStatusPendingForApproval,
	}, testActor()); !errors.Is(err, ErrStepIncomplete) {
		t.Fatalf("expected ErrStepIncomplete, got: %v", err)
	}
	if got := reloadConsignment(t, env, consignment.ID); got.Status != constants.ConsignmentStatusDraft {
		t.Fatalf("incomplete draft left draft status: %s", got.Status)
	}
}

func TestTransitionBatchSubmitAssignsDistinctNumbers(t *testing.T) {
	env := setupServiceTest(t, "status_batch_submit")
	first, _ := packedConsignment(t, env, "PO-S13A", 10, 4)
	second, _ := packedConsignment(t, env, "PO-S13B", 10, 4)

	if _, err := env.status.Transition(TransitionRequest{
		ConsignmentIDs: []uint{first.ID, second.ID},
		ToStatus:       constants.ConsignmentStatusPendingForApproval,
	}, testActor()); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	a := reloadConsignment(t, env, first.ID)
	b := reloadConsignment(t, env, second.ID)
	for _, got := range []*models.Consignment{a, b} {
		if !strings.HasPrefix(got.ConsignmentNo, constants.ConsignmentPermanentPrefix) {
			t.Fatalf("consignment still carries draft no: %s", got.ConsignmentNo)
		}
	}
	if a.ConsignmentNo == b.ConsignmentNo {
		t.Fatalf("batch submit produced duplicate consignment no: %s", a.ConsignmentNo)
	}
}

func TestTransitionCancelReleasesQuantities(t *testing.T) {
	env := setupServiceTest(t, "status_cancel")
	consignment, line := packedConsignment(t, env, "PO-S2", 10, 7)

	if _, err := env.status.Transition(TransitionRequest{
		ConsignmentIDs: []uint{consignment.ID},
		ToStatus:       constants.ConsignmentStatusCancelled,
	}, testActor()); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	reloaded := reloadConsignment(t, env, consignment.ID)
	if reloaded.Status != constants.ConsignmentStatusCancelled {
		t.Fatalf("unexpected status: %s", reloaded.Status)
	}
	for _, pkg := range reloaded.Packages {
		if pkg.Status != constants.PackagingStatusCancelled {
			t.Fatalf("package not cancelled: %+v", pkg)
		}
	}
	got := reloadLine(t, env, line.ID)
	if got.OpenQuantity != 10 || got.ProcessedQuantity != 0 {
		t.Fatalf("cancelled consignment still occupies quantities: %+v", got)
	}
}

func TestTransitionRejectedRequiresValidCode(t *testing.T) {
	env := setupServiceTest(t, "status_reject_code")
	consignment, _ := packedConsignment(t, env, "PO-S3", 10, 4)
	setConsignmentStatus(t, env, consignment.ID, constants.ConsignmentStatusPendingForApproval)

	if _, err := env.status.Transition(TransitionRequest{
		ConsignmentIDs: []uint{consignment.ID},
		ToStatus:       constants.ConsignmentStatusRejected,
		RejectionCode:  "whatever",
	}, testActor()); !errors.Is(err, ErrRejectionCodeInvalid) {
		t.Fatalf("expected ErrRejectionCodeInvalid, got: %v", err)
	}

	if _, err := env.status.Transition(TransitionRequest{
		ConsignmentIDs: []uint{consignment.ID},
		ToStatus:       constants.ConsignmentStatusRejected,
		RejectionCode:  constants.RejectionCodeDamaged,
	}, testActor()); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	reloaded := reloadConsignment(t, env, consignment.ID)
	if reloaded.RejectionCode != constants.RejectionCodeDamaged {
		t.Fatalf("rejection code not recorded: %s", reloaded.RejectionCode)
	}
}

func TestTransitionBatchAllOrNothing(t *testing.T) {
	env := setupServiceTest(t, "status_batch")
	first, _ := packedConsignment(t, env, "PO-S4A", 10, 4)
	second, _ := packedConsignment(t, env, "PO-S4B", 10, 4)
	setConsignmentStatus(t, env, first.ID, constants.ConsignmentStatusPickupCompleted)
	setConsignmentStatus(t, env, second.ID, constants.ConsignmentStatusFreightForwarderAssigned)

	if _, err := env.status.Transition(TransitionRequest{
		ConsignmentIDs: []uint{first.ID, second.ID},
		ToStatus:       constants.ConsignmentStatusAtCustom,
	}, testActor()); !errors.Is(err, ErrStatusTransitionInvalid) {
		t.Fatalf("expected ErrStatusTransitionInvalid, got: %v", err)
	}

	// 整批拒绝：两单均保持原状
	if got := reloadConsignment(t, env, first.ID); got.Status != constants.ConsignmentStatusPickupCompleted {
		t.Fatalf("first consignment changed: %s", got.Status)
	}
	if got := reloadConsignment(t, env, second.ID); got.Status != constants.ConsignmentStatusFreightForwarderAssigned {
		t.Fatalf("second consignment changed: %s", got.Status)
	}
}

func TestTransitionDeliveredCascadesToPackages(t *testing.T) {
	env := setupServiceTest(t, "status_delivered")
	consignment, line := packedConsignment(t, env, "PO-S5", 10, 10)
	if _, err := env.status.Transition(TransitionRequest{
		ConsignmentIDs: []uint{consignment.ID},
		ToStatus:       constants.ConsignmentStatusPendingForApproval,
	}, testActor()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	setConsignmentStatus(t, env, consignment.ID, constants.ConsignmentStatusOutForDelivery)

	if _, err := env.status.Transition(TransitionRequest{
		ConsignmentIDs: []uint{consignment.ID},
		ToStatus:       constants.ConsignmentStatusDelivered,
	}, testActor()); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	reloaded := reloadConsignment(t, env, consignment.ID)
	for _, pkg := range reloaded.Packages {
		if pkg.Status != constants.PackagingStatusDelivered {
			t.Fatalf("package not delivered: %+v", pkg)
		}
	}
	got := reloadLine(t, env, line.ID)
	if got.FulfilledQuantity != 10 || got.Status != constants.OrderStatusClosed {
		t.Fatalf("line not fulfilled: %+v", got)
	}
}

func TestTransitionPickupRequiresConsole(t *testing.T) {
	env := setupServiceTest(t, "status_pickup_console")
	consignment, _ := packedConsignment(t, env, "PO-S6", 10, 4)
	setConsignmentStatus(t, env, consignment.ID, constants.ConsignmentStatusFreightForwarderAssigned)

	if _, err := env.status.Transition(TransitionRequest{
		ConsignmentIDs: []uint{consignment.ID},
		ToStatus:       constants.ConsignmentStatusPickupCompleted,
	}, testActor()); !errors.Is(err, ErrConsoleNotAssigned) {
		t.Fatalf("expected ErrConsoleNotAssigned, got: %v", err)
	}
}

func TestTransitionPendingBidVacatesConsole(t *testing.T) {
	env := setupServiceTest(t, "status_pending_bid")
	console, err := env.consoles.Create("CON-001", "MAEU", testActor())
	if err != nil {
		t.Fatalf("create console failed: %v", err)
	}
	consignment, _ := packedConsignment(t, env, "PO-S7", 10, 4)
	setConsignmentStatus(t, env, consignment.ID, constants.ConsignmentStatusFreightForwarderAssigned)
	if err := env.consignmentRepo.Update(consignment.ID, map[string]interface{}{"console_id": console.ID}); err != nil {
		t.Fatalf("assign console failed: %v", err)
	}

	if _, err := env.status.Transition(TransitionRequest{
		ConsignmentIDs: []uint{consignment.ID},
		ToStatus:       constants.ConsignmentStatusPendingBid,
	}, testActor()); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	reloaded := reloadConsignment(t, env, consignment.ID)
	if reloaded.ConsoleID != nil {
		t.Fatalf("console not vacated: %+v", reloaded.ConsoleID)
	}

	// 被清空的批次落为提货失败
	reloadedConsole, err := env.consoles.Get(console.ID)
	if err != nil {
		t.Fatalf("get console failed: %v", err)
	}
	if reloadedConsole.Status != constants.ConsoleStatusPickupRejected {
		t.Fatalf("vacated console status = %s, want %s", reloadedConsole.Status, constants.ConsoleStatusPickupRejected)
	}
}

func TestAssignToConsole(t *testing.T) {
	env := setupServiceTest(t, "status_assign")
	console, err := env.consoles.Create("CON-002", "CMDU", testActor())
	if err != nil {
		t.Fatalf("create console failed: %v", err)
	}
	consignment, _ := packedConsignment(t, env, "PO-S8", 10, 4)
	setConsignmentStatus(t, env, consignment.ID, constants.ConsignmentStatusPendingConsoleAssignment)

	if _, err := env.status.AssignToConsole(console.ID, []uint{consignment.ID}, testActor()); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	reloaded := reloadConsignment(t, env, consignment.ID)
	if reloaded.Status != constants.ConsignmentStatusFreightForwarderAssigned {
		t.Fatalf("unexpected status: %s", reloaded.Status)
	}
	if reloaded.ConsoleID == nil || *reloaded.ConsoleID != console.ID {
		t.Fatalf("console not recorded: %+v", reloaded.ConsoleID)
	}

	reloadedConsole, err := env.consoles.Get(console.ID)
	if err != nil {
		t.Fatalf("get console failed: %v", err)
	}
	if reloadedConsole.Status != constants.ConsoleStatusFFAssigned {
		t.Fatalf("console status not derived: %s", reloadedConsole.Status)
	}
}

func TestAssignToConsoleRejectsWrongStatus(t *testing.T) {
	env := setupServiceTest(t, "status_assign_wrong")
	console, err := env.consoles.Create("CON-003", "MAEU", testActor())
	if err != nil {
		t.Fatalf("create console failed: %v", err)
	}
	consignment, _ := packedConsignment(t, env, "PO-S9", 10, 4)

	if _, err := env.status.AssignToConsole(console.ID, []uint{consignment.ID}, testActor()); !errors.Is(err, ErrStatusTransitionInvalid) {
		t.Fatalf("expected ErrStatusTransitionInvalid, got: %v", err)
	}
}

func TestMarkPackagesReceivedPartialThenFull(t *testing.T) {
	env := setupServiceTest(t, "status_received")
	order := createTestOrder(t, env, "PO-S10", simpleLine(10))
	line := order.Lines[0]
	consignment := createTestConsignment(t, env, line.ID)
	packages, err := env.allocation.CreatePackages(consignment.ID, "carton", models.Weight{}, 2, testActor())
	if err != nil {
		t.Fatalf("create packages failed: %v", err)
	}
	if _, err := env.allocation.Allocate(consignment.ID, packages[0].PackageNo, line.ID, 4, testActor()); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if _, err := env.allocation.Allocate(consignment.ID, packages[1].PackageNo, line.ID, 6, testActor()); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	markDraftSubmittable(t, env, consignment.ID)
	if _, err := env.status.Transition(TransitionRequest{
		ConsignmentIDs: []uint{consignment.ID},
		ToStatus:       constants.ConsignmentStatusPendingForApproval,
	}, testActor()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	setConsignmentStatus(t, env, consignment.ID, constants.ConsignmentStatusOutForDelivery)

	finalized, err := env.packagingRepo.ListPackagesByConsignment(consignment.ID)
	if err != nil {
		t.Fatalf("list packages failed: %v", err)
	}
	if len(finalized) != 2 {
		t.Fatalf("expected 2 packages, got %d", len(finalized))
	}

	// 部分签收
	if _, err := env.status.MarkPackagesReceived(consignment.ID, []string{finalized[0].PackageNo}, testActor()); err != nil {
		t.Fatalf("mark received failed: %v", err)
	}
	if got := reloadConsignment(t, env, consignment.ID); got.Status != constants.ConsignmentStatusPartiallyReceived {
		t.Fatalf("expected partially_received, got %s", got.Status)
	}

	// 全部签收
	if _, err := env.status.MarkPackagesReceived(consignment.ID, []string{finalized[1].PackageNo}, testActor()); err != nil {
		t.Fatalf("mark received failed: %v", err)
	}
	if got := reloadConsignment(t, env, consignment.ID); got.Status != constants.ConsignmentStatusReceivedAtDestination {
		t.Fatalf("expected received_at_destination, got %s", got.Status)
	}
	gotLine := reloadLine(t, env, line.ID)
	if gotLine.FulfilledQuantity != 10 || gotLine.Status != constants.OrderStatusClosed {
		t.Fatalf("line not fully fulfilled: %+v", gotLine)
	}
}

func TestMarkPackagesReceivedUnknownPackage(t *testing.T) {
	env := setupServiceTest(t, "status_received_unknown")
	consignment, _ := packedConsignment(t, env, "PO-S11", 10, 4)
	setConsignmentStatus(t, env, consignment.ID, constants.ConsignmentStatusOutForDelivery)

	if _, err := env.status.MarkPackagesReceived(consignment.ID, []string{"AR399999"}, testActor()); !errors.Is(err, ErrPackageNotFound) {
		t.Fatalf("expected ErrPackageNotFound, got: %v", err)
	}
}
