package main

import (
	"fmt"

	"github.com/freightdesk-next/internal/config"
	"github.com/freightdesk-next/internal/constants"
	"github.com/freightdesk-next/internal/logger"
	"github.com/freightdesk-next/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加采购订单
	orders := []models.PurchaseOrder{
		{
			OrderNo:      "SUP-2025-0001",
			CustomerRef:  "ACME-PO-1001",
			SupplierCode: "SUP001",
			ClientCode:   "ACME",
			StorerKey:    "WH-SHA",
			Status:       constants.OrderStatusOpen,
			Lines: []models.PurchaseOrderLine{
				{
					LineNo:          1,
					SKU:             "SKU-WIDGET-A",
					Description:     "标准零件 A",
					Quantity:        100,
					OpenQuantity:    100,
					Status:          constants.OrderStatusOpen,
					FulfillmentType: constants.FulfillmentTypeBTS,
				},
				{
					LineNo:          2,
					SKU:             "SKU-WIDGET-B",
					Description:     "标准零件 B",
					Quantity:        40,
					OpenQuantity:    40,
					Status:          constants.OrderStatusOpen,
					FulfillmentType: constants.FulfillmentTypeBTO,
				},
			},
		},
		{
			OrderNo:      "SUP-2025-0002",
			CustomerRef:  "ACME-PO-1002",
			SupplierCode: "SUP001",
			ClientCode:   "ACME",
			StorerKey:    "WH-SHA",
			Status:       constants.OrderStatusOpen,
			Lines: []models.PurchaseOrderLine{
				{
					LineNo:              1,
					SKU:                 "SKU-CHEM-X",
					Description:         "清洗剂（危险品）",
					Quantity:            24,
					OpenQuantity:        24,
					Status:              constants.OrderStatusOpen,
					FulfillmentType:     constants.FulfillmentTypeBTS,
					DangerousGoods:      true,
					DangerousGoodsClass: "3",
				},
			},
		},
		{
			OrderNo:      "SUP-2025-0003",
			CustomerRef:  "BOLT-PO-2001",
			SupplierCode: "SUP002",
			ClientCode:   "BOLT",
			StorerKey:    "WH-SZX",
			Status:       constants.OrderStatusOpen,
			Lines: []models.PurchaseOrderLine{
				{
					LineNo:          1,
					SKU:             "SKU-FRAME-01",
					Description:     "铝合金框架",
					Quantity:        60,
					OpenQuantity:    60,
					Status:          constants.OrderStatusOpen,
					FulfillmentType: constants.FulfillmentTypeBTS,
				},
			},
		},
	}
	for i := range orders {
		if err := models.DB.Create(&orders[i]).Error; err != nil {
			stdLog.Fatalf("Failed to seed purchase order %s: %v", orders[i].CustomerRef, err)
		}
		orders[i].OpenQuantity = 0
		for _, line := range orders[i].Lines {
			orders[i].OpenQuantity += line.OpenQuantity
		}
		if err := models.DB.Model(&orders[i]).Update("open_quantity", orders[i].OpenQuantity).Error; err != nil {
			stdLog.Fatalf("Failed to update open quantity: %v", err)
		}
	}

	// 添加拼箱柜
	consoles := []models.Console{
		{ConsoleNo: "CON-2025-001", CarrierCode: "MAEU", Status: constants.ConsoleStatusOpen},
		{ConsoleNo: "CON-2025-002", CarrierCode: "CMDU", Status: constants.ConsoleStatusOpen},
	}
	for i := range consoles {
		if err := models.DB.Create(&consoles[i]).Error; err != nil {
			stdLog.Fatalf("Failed to seed console %s: %v", consoles[i].ConsoleNo, err)
		}
	}

	fmt.Printf("Seed 完成: %d 个采购订单, %d 个拼箱柜\n", len(orders), len(consoles))
}
