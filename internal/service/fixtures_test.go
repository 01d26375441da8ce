package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/freightdesk-next/internal/constants"
	"github.com/freightdesk-next/internal/models"
	"github.com/freightdesk-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db *gorm.DB

	orderRepo       repository.PurchaseOrderRepository
	consignmentRepo repository.ConsignmentRepository
	packagingRepo   repository.PackagingRepository
	consoleRepo     repository.ConsoleRepository
	auditRepo       repository.AuditTrailRepository

	sequence   *SequenceService
	reconcile  *ReconcileService
	audit      *AuditService
	orders     *OrderService
	allocation *AllocationService
	status     *StatusService
	workflow   *WorkflowService
	consoles   *ConsoleService
}

func setupServiceTest(t *testing.T, name string) *serviceTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.PurchaseOrder{},
		&models.PurchaseOrderLine{},
		&models.Consignment{},
		&models.ConsignmentLine{},
		&models.ConsignmentPackaging{},
		&models.PackagingAllocation{},
		&models.Console{},
		&models.AuditTrail{},
		&models.AuditTrailField{},
		&models.Sequence{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	env := &serviceTestEnv{
		db:              db,
		orderRepo:       repository.NewPurchaseOrderRepository(db),
		consignmentRepo: repository.NewConsignmentRepository(db),
		packagingRepo:   repository.NewPackagingRepository(db),
		consoleRepo:     repository.NewConsoleRepository(db),
		auditRepo:       repository.NewAuditTrailRepository(db),
	}
	env.sequence = NewSequenceService(repository.NewSequenceRepository(db))
	env.reconcile = NewReconcileService(env.orderRepo, env.packagingRepo)
	env.audit = NewAuditService(env.auditRepo)
	env.orders = NewOrderService(env.orderRepo, env.reconcile, env.audit)
	env.allocation = NewAllocationService(env.orderRepo, env.consignmentRepo, env.packagingRepo, env.sequence, env.reconcile, env.audit)
	env.status = NewStatusService(env.consignmentRepo, env.consoleRepo, env.packagingRepo, env.sequence, env.reconcile, env.allocation, env.audit, nil)
	env.workflow = NewWorkflowService(env.orderRepo, env.consignmentRepo, env.packagingRepo, env.sequence, env.allocation, env.status, env.audit)
	env.consoles = NewConsoleService(env.consoleRepo, env.audit)
	return env
}

func testActor() Actor {
	return Actor{ID: 7, Name: "tester", Role: "ops"}
}

func createTestOrder(t *testing.T, env *serviceTestEnv, customerRef string, lines ...OrderLineInput) *models.PurchaseOrder {
	t.Helper()

	order, err := env.orders.CreatePurchaseOrder(OrderInput{
		OrderNo:      "SUP-" + customerRef,
		CustomerRef:  customerRef,
		SupplierCode: "SUP001",
		ClientCode:   "ACME",
		StorerKey:    "WH-SHA",
		Lines:        lines,
	}, testActor())
	if err != nil {
		t.Fatalf("create purchase order failed: %v", err)
	}
	return order
}

func simpleLine(quantity int) OrderLineInput {
	return OrderLineInput{
		LineNo:          1,
		SKU:             "SKU-TEST",
		Quantity:        quantity,
		FulfillmentType: constants.FulfillmentTypeBTS,
	}
}

// createTestConsignment 直接落一张草稿托运单并关联给定订单行
func createTestConsignment(t *testing.T, env *serviceTestEnv, lineIDs ...uint) *models.Consignment {
	t.Helper()

	consignment, err := env.workflow.CreateDraft(testActor())
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	lines := make([]models.ConsignmentLine, 0, len(lineIDs))
	for _, id := range lineIDs {
		lines = append(lines, models.ConsignmentLine{
			ConsignmentID:       consignment.ID,
			PurchaseOrderLineID: id,
		})
	}
	if err := env.consignmentRepo.CreateLines(lines); err != nil {
		t.Fatalf("create consignment lines failed: %v", err)
	}
	return consignment
}

// createTestPackage 在托运单下创建一个草稿包裹并返回
func createTestPackage(t *testing.T, env *serviceTestEnv, consignmentID uint) *models.ConsignmentPackaging {
	t.Helper()

	packages, err := env.allocation.CreatePackages(consignmentID, "carton", models.Weight{}, 1, testActor())
	if err != nil {
		t.Fatalf("create packages failed: %v", err)
	}
	if len(packages) != 1 {
		t.Fatalf("expected 1 package, got %d", len(packages))
	}
	return &packages[0]
}

// markDraftSubmittable 补齐草稿的提交条件：
// 行合规信息、单证标记、提货信息，并把步骤推进到复核。
func markDraftSubmittable(t *testing.T, env *serviceTestEnv, consignmentID uint) {
	t.Helper()

	lines, err := env.consignmentRepo.ListLines(consignmentID)
	if err != nil {
		t.Fatalf("list consignment lines failed: %v", err)
	}
	for _, line := range lines {
		if err := env.consignmentRepo.UpdateLine(line.ID, map[string]interface{}{
			"hs_code":           "8471.30",
			"country_of_origin": "CN",
		}); err != nil {
			t.Fatalf("update consignment line failed: %v", err)
		}
	}
	pickupAt := time.Now().Add(24 * time.Hour)
	if err := env.consignmentRepo.Update(consignmentID, map[string]interface{}{
		"step":                   constants.ConsignmentStepReview,
		"pickup_address":         "88 Harbour Rd, Shanghai",
		"pickup_scheduled_at":    pickupAt,
		"has_commercial_invoice": true,
		"has_packing_list":       true,
	}); err != nil {
		t.Fatalf("update consignment failed: %v", err)
	}
}

func setConsignmentStatus(t *testing.T, env *serviceTestEnv, consignmentID uint, status string) {
	t.Helper()

	if err := env.consignmentRepo.UpdateStatus(consignmentID, status, nil); err != nil {
		t.Fatalf("update consignment status failed: %v", err)
	}
}

func reloadLine(t *testing.T, env *serviceTestEnv, lineID uint) *models.PurchaseOrderLine {
	t.Helper()

	line, err := env.orderRepo.GetLineByID(lineID)
	if err != nil {
		t.Fatalf("get line failed: %v", err)
	}
	if line == nil {
		t.Fatalf("line %d not found", lineID)
	}
	return line
}

func reloadConsignment(t *testing.T, env *serviceTestEnv, id uint) *models.Consignment {
	t.Helper()

	consignment, err := env.consignmentRepo.GetByID(id)
	if err != nil {
		t.Fatalf("get consignment failed: %v", err)
	}
	if consignment == nil {
		t.Fatalf("consignment %d not found", id)
	}
	return consignment
}
