package schema

// MaintenanceTables is the default allow-list for the maintenance
// records store. It must stay in sync with internal/model.
func MaintenanceTables() []Table {
	return []Table{
		{
			Name:        "equipment",
			Description: "physical assets under maintenance",
			Columns: []Column{
				{Name: "id", Type: "uuid", Description: "primary key"},
				{Name: "code", Type: "varchar", Description: "unique equipment code, e.g. TR-0042"},
				{Name: "name", Type: "varchar", Description: "human readable name"},
				{Name: "type", Type: "varchar", Description: "equipment class: transformer, pump, motor, ..."},
				{Name: "status", Type: "varchar", Description: "operational, maintenance or decommissioned"},
				{Name: "location", Type: "varchar", Description: "site / plant area"},
				{Name: "criticality", Type: "varchar", Description: "low, medium or high"},
				{Name: "created_at", Type: "timestamp"},
				{Name: "updated_at", Type: "timestamp"},
			},
		},
		{
			Name:        "work_orders",
			Description: "maintenance work orders raised against equipment",
			Columns: []Column{
				{Name: "id", Type: "uuid", Description: "primary key"},
				{Name: "equipment_id", Type: "uuid", Description: "references equipment.id"},
				{Name: "description", Type: "text", Description: "what needs doing"},
				{Name: "priority", Type: "varchar", Description: "low, medium, high or emergency"},
				{Name: "status", Type: "varchar", Description: "open, in_progress, closed or cancelled"},
				{Name: "opened_at", Type: "timestamp", Description: "when the order was raised"},
				{Name: "closed_at", Type: "timestamp", Description: "null while the order is open"},
				{Name: "cost", Type: "numeric", Description: "total cost in local currency"},
				{Name: "created_at", Type: "timestamp"},
				{Name: "updated_at", Type: "timestamp"},
			},
		},
		{
			Name:        "maintenance_logs",
			Description: "individual interventions performed under a work order",
			Columns: []Column{
				{Name: "id", Type: "uuid", Description: "primary key"},
				{Name: "work_order_id", Type: "uuid", Description: "references work_orders.id"},
				{Name: "technician", Type: "varchar", Description: "who performed the work"},
				{Name: "action", Type: "varchar", Description: "inspection, repair, replacement or calibration"},
				{Name: "duration_min", Type: "integer", Description: "time spent in minutes"},
				{Name: "notes", Type: "text"},
				{Name: "performed_at", Type: "timestamp", Description: "when the work happened"},
				{Name: "created_at", Type: "timestamp"},
				{Name: "updated_at", Type: "timestamp"},
			},
		},
	}
}
