package main

import (
	"log"
	"os"
	"time"

	"maintenance-qa-be/internal/model"
	"maintenance-qa-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	seedEquipment(db)
	seedDocuments(db)

	log.Println("Success: Seed completed.")
}

func seedEquipment(db *gorm.DB) {
	var count int64
	db.Model(&model.Equipment{}).Count(&count)
	if count > 0 {
		log.Println("Equipment already seeded, skipping")
		return
	}

	transformer := model.Equipment{
		Id:          uuid.New(),
		Code:        "TR-001",
		Name:        "Transformador Principal Subestação A",
		Type:        "transformer",
		Status:      "operational",
		Location:    "Subestação A",
		Criticality: "high",
	}
	pump := model.Equipment{
		Id:          uuid.New(),
		Code:        "BM-014",
		Name:        "Bomba de Resfriamento 14",
		Type:        "pump",
		Status:      "maintenance",
		Location:    "Casa de Máquinas",
		Criticality: "medium",
	}
	if err := db.Create([]*model.Equipment{&transformer, &pump}).Error; err != nil {
		log.Fatalf("Error: failed to seed equipment: %v", err)
	}

	workOrder := model.WorkOrder{
		Id:          uuid.New(),
		EquipmentId: pump.Id,
		Description: "Vibração anormal no mancal",
		Priority:    "high",
		Status:      "open",
		OpenedAt:    time.Now().AddDate(0, 0, -3),
		Cost:        1250.00,
	}
	if err := db.Create(&workOrder).Error; err != nil {
		log.Fatalf("Error: failed to seed work order: %v", err)
	}

	logEntry := model.MaintenanceLog{
		Id:          uuid.New(),
		WorkOrderId: workOrder.Id,
		Technician:  "C. Almeida",
		Action:      "inspection",
		DurationMin: 90,
		Notes:       "Folga detectada no mancal; peça encomendada",
		PerformedAt: time.Now().AddDate(0, 0, -2),
	}
	if err := db.Create(&logEntry).Error; err != nil {
		log.Fatalf("Error: failed to seed maintenance log: %v", err)
	}

	log.Println("Seeded equipment, work order and maintenance log samples")
}

func seedDocuments(db *gorm.DB) {
	var count int64
	db.Model(&model.DomainDocument{}).Count(&count)
	if count > 0 {
		log.Println("Domain documents already seeded, skipping")
		return
	}

	documents := []model.DomainDocument{
		{
			Id:         uuid.New(),
			Source:     "glossary:status",
			Content:    "Equipment status values: operational (em operação), maintenance (em manutenção), decommissioned (desativado). Questions about 'funcionando' or 'ativos' refer to operational.",
			SchemaFact: false,
			Metadata:   datatypes.JSON([]byte(`{"kind":"glossary"}`)),
		},
		{
			Id:         uuid.New(),
			Source:     "glossary:priority",
			Content:    "Work order priority scale: low, medium, high, emergency. 'Urgente' maps to emergency; 'crítica' usually means high or emergency.",
			SchemaFact: false,
			Metadata:   datatypes.JSON([]byte(`{"kind":"glossary"}`)),
		},
		{
			Id:         uuid.New(),
			Source:     "procedure:last-maintenance",
			Content:    "The last maintenance of an equipment is the maintenance_logs row with the greatest performed_at reachable through its work orders.",
			SchemaFact: false,
			Metadata:   datatypes.JSON([]byte(`{"kind":"procedure"}`)),
		},
	}

	if err := db.Create(&documents).Error; err != nil {
		log.Fatalf("Error: failed to seed domain documents: %v", err)
	}

	log.Println("Seeded domain documents")
}
