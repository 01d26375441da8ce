package service

import (
	"errors"
	"testing"

	"github.com/freightdesk-next/internal/constants"
)

func TestCreatePurchaseOrderValidation(t *testing.T) {
	env := setupServiceTest(t, "order_validation")

	cases := []struct {
		name  string
		input OrderInput
		want  error
	}{
		{
			name:  "missing customer ref",
			input: OrderInput{Lines: []OrderLineInput{simpleLine(5)}},
			want:  ErrCustomerRefRequired,
		},
		{
			name:  "no lines",
			input: OrderInput{CustomerRef: "PO-V1"},
			want:  ErrOrderLineInvalid,
		},
		{
			name: "missing sku",
			input: OrderInput{CustomerRef: "PO-V2", Lines: []OrderLineInput{
				{LineNo: 1, Quantity: 5, FulfillmentType: constants.FulfillmentTypeBTS},
			}},
			want: ErrOrderLineInvalid,
		},
		{
			name: "zero quantity",
			input: OrderInput{CustomerRef: "PO-V3", Lines: []OrderLineInput{
				{LineNo: 1, SKU: "SKU-A", Quantity: 0, FulfillmentType: constants.FulfillmentTypeBTS},
			}},
			want: ErrQuantityInvalid,
		},
		{
			name: "bad fulfillment type",
			input: OrderInput{CustomerRef: "PO-V4", Lines: []OrderLineInput{
				{LineNo: 1, SKU: "SKU-A", Quantity: 5, FulfillmentType: "rush"},
			}},
			want: ErrOrderLineInvalid,
		},
	}
	for _, c := range cases {
		if _, err := env.orders.CreatePurchaseOrder(c.input, testActor()); !errors.Is(err, c.want) {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, err)
		}
	}
}

func TestCreatePurchaseOrderInitialBuckets(t *testing.T) {
	env := setupServiceTest(t, "order_create")
	order := createTestOrder(t, env, "PO-O1",
		OrderLineInput{LineNo: 1, SKU: "SKU-A", Quantity: 3, FulfillmentType: constants.FulfillmentTypeBTS},
		OrderLineInput{LineNo: 2, SKU: "SKU-B", Quantity: 7, FulfillmentType: constants.FulfillmentTypeBTO},
	)
	if order.Status != constants.OrderStatusOpen || order.OpenQuantity != 10 {
		t.Fatalf("unexpected order header: %+v", order)
	}
	for _, line := range order.Lines {
		if line.OpenQuantity != line.Quantity || line.ProcessedQuantity != 0 || line.FulfilledQuantity != 0 {
			t.Fatalf("line buckets not initialized: %+v", line)
		}
	}
}

func TestCreatePurchaseOrderRejectsDuplicateCustomerRef(t *testing.T) {
	env := setupServiceTest(t, "order_duplicate")
	createTestOrder(t, env, "PO-O2", simpleLine(5))
	if _, err := env.orders.CreatePurchaseOrder(OrderInput{
		CustomerRef: "PO-O2",
		Lines:       []OrderLineInput{simpleLine(3)},
	}, testActor()); !errors.Is(err, ErrCustomerRefExists) {
		t.Fatalf("expected ErrCustomerRefExists, got: %v", err)
	}
}

func TestImportOrdersReportsPerRowErrors(t *testing.T) {
	env := setupServiceTest(t, "order_import")
	createTestOrder(t, env, "PO-O3", simpleLine(5))

	results := env.orders.ImportOrders([]OrderInput{
		{CustomerRef: "PO-O4", Lines: []OrderLineInput{simpleLine(5)}},
		{CustomerRef: "PO-O3", Lines: []OrderLineInput{simpleLine(5)}}, // 重复参考号
		{CustomerRef: "", Lines: []OrderLineInput{simpleLine(5)}},      // 缺参考号
	}, testActor())

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Error != "" || results[0].OrderID == 0 {
		t.Fatalf("row 1 should succeed: %+v", results[0])
	}
	if results[1].Error == "" || results[1].Row != 2 {
		t.Fatalf("row 2 should fail with duplicate ref: %+v", results[1])
	}
	if results[2].Error == "" {
		t.Fatalf("row 3 should fail: %+v", results[2])
	}

	// 失败行不影响成功行落库
	imported, err := env.orderRepo.GetByCustomerRef("PO-O4")
	if err != nil || imported == nil {
		t.Fatalf("imported order missing: %v", err)
	}
}

func TestUpdateLineQuantityRecomputesBuckets(t *testing.T) {
	env := setupServiceTest(t, "order_update_qty")
	order := createTestOrder(t, env, "PO-O5", simpleLine(10))
	line := order.Lines[0]
	consignment := createTestConsignment(t, env, line.ID)
	pkg := createTestPackage(t, env, consignment.ID)
	if _, err := env.allocation.Allocate(consignment.ID, pkg.PackageNo, line.ID, 4, testActor()); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	updated, err := env.orders.UpdateLineQuantity(line.ID, 6, testActor())
	if err != nil {
		t.Fatalf("update quantity failed: %v", err)
	}
	if updated.Quantity != 6 || updated.OpenQuantity != 2 || updated.ProcessedQuantity != 4 {
		t.Fatalf("unexpected buckets after shrink: %+v", updated)
	}
}

func TestUpdateLineQuantityGuards(t *testing.T) {
	env := setupServiceTest(t, "order_qty_guards")
	order := createTestOrder(t, env, "PO-O6", simpleLine(10))
	line := order.Lines[0]
	consignment := createTestConsignment(t, env, line.ID)
	pkg := createTestPackage(t, env, consignment.ID)
	if _, err := env.allocation.Allocate(consignment.ID, pkg.PackageNo, line.ID, 4, testActor()); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}

	if _, err := env.orders.UpdateLineQuantity(line.ID, 0, testActor()); !errors.Is(err, ErrQuantityInvalid) {
		t.Fatalf("expected ErrQuantityInvalid, got: %v", err)
	}
	// 低于已装箱数量不可改
	if _, err := env.orders.UpdateLineQuantity(line.ID, 3, testActor()); !errors.Is(err, ErrQuantityImmutable) {
		t.Fatalf("expected ErrQuantityImmutable, got: %v", err)
	}
	if _, err := env.orders.UpdateLineQuantity(line.ID+999, 5, testActor()); !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got: %v", err)
	}

	got := reloadLine(t, env, line.ID)
	if got.Quantity != 10 || got.OpenQuantity != 6 {
		t.Fatalf("failed updates must not change line: %+v", got)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	env := setupServiceTest(t, "order_get")
	if _, err := env.orders.Get(12345); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got: %v", err)
	}
}
