package models

type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "Individual"
	CustomerTypeBusiness   CustomerType = "Business"
)

type OdometerUnit string

const (
	OdometerUnitMiles      OdometerUnit = "mi"
	OdometerUnitKilometers OdometerUnit = "km"
)

type RepairOrderStatus string

const (
	RepairOrderStatusEstimate   RepairOrderStatus = "Estimate"
	RepairOrderStatusApproved   RepairOrderStatus = "Approved"
	RepairOrderStatusInProgress RepairOrderStatus = "InProgress"
	RepairOrderStatusCompleted  RepairOrderStatus = "Completed"
	RepairOrderStatusDelivered  RepairOrderStatus = "Delivered"
)

// BmsImportStatus is the lifecycle of one import attempt.
// A row is created as Processing and finalized exactly once to one of the
// three terminal states; Pending only exists for rows queued from the UI.
type BmsImportStatus string

const (
	BmsImportStatusPending    BmsImportStatus = "pending"
	BmsImportStatusProcessing BmsImportStatus = "processing"
	BmsImportStatusSuccess    BmsImportStatus = "success"
	BmsImportStatusPartial    BmsImportStatus = "partial"
	BmsImportStatusFailed     BmsImportStatus = "failed"
)
