package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/collisionworks/bodyshop_backend/config"
	"github.com/collisionworks/bodyshop_backend/models"
	"github.com/collisionworks/bodyshop_backend/utils"
)

// BmsImportRequest carries one uploaded estimate into the pipeline.
type BmsImportRequest struct {
	ShopId                string
	UserId                int
	FileName              string
	OriginalFileName      string
	FileSize              int64
	Format                string
	Data                  []byte
	AutoCreateRepairOrder bool
}

// WorkflowCreated is the best-effort human-readable summary of what one run
// resolved, created or reused, populated as far as the run progressed. Zero
// ids and empty strings mean the entity was neither found nor created.
type WorkflowCreated struct {
	CustomerIds   []int  `json:"customer_ids"`
	CustomerName  string `json:"customer_name"`
	VehicleId     int    `json:"vehicle_id"`
	Vehicle       string `json:"vehicle"`
	ClaimId       int    `json:"claim_id"`
	ClaimNumber   string `json:"claim_number"`
	RepairOrderId int    `json:"repair_order_id"`
	OrderNumber   string `json:"order_number"`
}

// BmsImportResult is what the caller gets back once the ledger row is final.
type BmsImportResult struct {
	ImportId         string                 `json:"import_id"`
	Status           models.BmsImportStatus `json:"status"`
	Dialect          string                 `json:"dialect"`
	DocumentCount    int                    `json:"document_count"`
	CustomerCount    int                    `json:"customer_count"`
	VehicleCount     int                    `json:"vehicle_count"`
	ClaimCount       int                    `json:"claim_count"`
	RepairOrderCount int                    `json:"repair_order_count"`
	PartLineCount    int                    `json:"part_line_count"`
	Errors           []string               `json:"errors"`
	Warnings         []string               `json:"warnings"`
	Summary          string                 `json:"summary"`
	ProcessingTimeMs int64                  `json:"processing_time_ms"`
	Created          WorkflowCreated        `json:"created"`
}

// BmsImporter runs the ingestion pipeline: parse, extract, validate, then
// dependency-ordered materialization under a durable ledger row.
type BmsImporter struct {
	store    ImportStore
	dialects *DialectRegistry
	tracer   trace.Tracer
	logger   *logrus.Logger
}

func NewBmsImporter(store ImportStore, dialects *DialectRegistry) *BmsImporter {
	return &BmsImporter{
		store:    store,
		dialects: dialects,
		tracer:   otel.Tracer("workflow"),
		logger:   config.GetLogger(),
	}
}

// importRun is the mutable state of one pipeline execution. Errors are
// per-record failures that keep the run going; warnings record dedup reuse
// and dependency-gap skips.
type importRun struct {
	req      *BmsImportRequest
	entry    *models.BmsImport
	estimate *ExtractedEstimate

	errs     []string
	warnings []string
	created  WorkflowCreated

	// resolved ids, whether created this run or found by natural key
	customerId int
	vehicleId  int
	claimId    int
}

func (run *importRun) recordError(stage string, err error) {
	run.errs = append(run.errs, fmt.Sprintf("%s: %s", stage, err.Error()))
}

func (run *importRun) warn(message string) {
	run.warnings = append(run.warnings, message)
}

// Run executes the pipeline for one uploaded document. Parse and validation
// failures are returned before any ledger row exists; once the ledger row is
// created the run always finalizes it, and per-record failures surface in the
// result rather than aborting the import.
func (i *BmsImporter) Run(ctx context.Context, req *BmsImportRequest) (*BmsImportResult, error) {
	if req.ShopId == "" || req.UserId == 0 {
		return nil, errors.New("shop and user identity are required")
	}

	ctx, span := i.tracer.Start(ctx, "BmsImport")
	defer span.End()
	span.SetAttributes(
		attribute.String("bms.shop_id", req.ShopId),
		attribute.String("bms.file_name", req.OriginalFileName),
		attribute.String("bms.format", req.Format),
	)

	started := time.Now()

	root, err := ParseDocument(req.Data, req.Format)
	if err != nil {
		return nil, err
	}

	estimate := ExtractEstimate(root, i.dialects)
	span.SetAttributes(attribute.String("bms.dialect", estimate.Dialect))

	if problems := ValidateEstimate(estimate); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	entry := &models.BmsImport{
		ShopId:           req.ShopId,
		UserId:           req.UserId,
		FileName:         req.FileName,
		OriginalFileName: req.OriginalFileName,
		FileSize:         req.FileSize,
		Format:           req.Format,
	}
	if err := i.store.CreateImport(ctx, entry); err != nil {
		config.LogError(i.logger, "Workflow", "Run", req.ShopId, req.OriginalFileName, err)
		return nil, err
	}

	run := &importRun{req: req, entry: entry, estimate: estimate}
	i.materialize(ctx, run)

	status := classifyRun(run)
	duration := time.Since(started)
	if err := i.store.FinalizeImport(ctx, entry, status, run.errs, run.warnings, duration); err != nil {
		// The entities are already in; losing the audit update is logged,
		// not propagated, so callers still see what was imported.
		config.LogError(i.logger, "Workflow", "Run", entry.ID, "finalize", err)
	}

	publishImportFinalized(ctx, &ImportFinalizedEvent{
		ImportId:     entry.ID,
		ShopId:       entry.ShopId,
		Status:       entry.Status,
		FileName:     entry.OriginalFileName,
		Dialect:      estimate.Dialect,
		ErrorCount:   len(run.errs),
		WarningCount: len(run.warnings),
		FinalizedAt:  time.Now().UTC(),
	})

	return &BmsImportResult{
		ImportId:         entry.ID,
		Status:           entry.Status,
		Dialect:          estimate.Dialect,
		DocumentCount:    entry.DocumentCount,
		CustomerCount:    entry.CustomerCount,
		VehicleCount:     entry.VehicleCount,
		ClaimCount:       entry.ClaimCount,
		RepairOrderCount: entry.RepairOrderCount,
		PartLineCount:    entry.PartLineCount,
		Errors:           run.errs,
		Warnings:         run.warnings,
		Summary:          entry.Summary,
		ProcessingTimeMs: entry.ProcessingTimeMs,
		Created:          run.created,
	}, nil
}

// materialize walks the dependency order: documents, customers, vehicle,
// claim, repair order, part lines. A panic in one stage downgrades to a run
// error so the ledger row still gets finalized.
func (i *BmsImporter) materialize(ctx context.Context, run *importRun) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("internal error: %v", r)
			config.LogError(i.logger, "Workflow", "materialize", run.entry.ID, nil, err)
			run.recordError("import", err)
		}
	}()

	i.materializeDocument(ctx, run)
	i.materializeCustomers(ctx, run)
	i.materializeVehicle(ctx, run)
	i.materializeClaim(ctx, run)
	i.materializeRepairOrder(ctx, run)
	i.materializePartLines(ctx, run)
}

func (i *BmsImporter) materializeDocument(ctx context.Context, run *importRun) {
	candidate := run.estimate.Document
	doc := &models.BmsDocument{
		ShopId:       run.req.ShopId,
		BmsImportId:  run.entry.ID,
		DocumentId:   candidate.DocumentId,
		DocumentType: candidate.DocumentType,
		Dialect:      run.estimate.Dialect,
		SourceSystem: candidate.SourceSystem,
		Version:      candidate.Version,
	}
	if err := i.store.CreateDocument(ctx, doc); err != nil {
		run.recordError("document", err)
		return
	}
	run.entry.DocumentCount++
}

func (i *BmsImporter) materializeCustomers(ctx context.Context, run *importRun) {
	for _, candidate := range run.estimate.Customers {
		name := candidate.DisplayName()
		if name == "" {
			continue
		}
		id, created, err := i.resolveCustomer(ctx, run, candidate, name)
		if err != nil {
			run.recordError("customer", fmt.Errorf("%q: %w", name, err))
			continue
		}
		if created {
			run.entry.CustomerCount++
		} else {
			run.warn(fmt.Sprintf("customer %q already exists, reusing record %d", name, id))
		}
		run.created.CustomerIds = append(run.created.CustomerIds, id)
		// The claim and repair order attach to the owner; the first
		// extracted customer is the owner in every dialect.
		if run.customerId == 0 {
			run.customerId = id
			run.created.CustomerName = name
		}
	}
}

func (i *BmsImporter) resolveCustomer(ctx context.Context, run *importRun, candidate *CustomerCandidate, name string) (int, bool, error) {
	lock, err := ObtainNaturalKeyLock(ctx, "customer", run.req.ShopId, strings.ToLower(name))
	if err != nil {
		config.LogWarn(i.logger, "Workflow", "resolveCustomer", name, "lock not obtained: "+err.Error())
	}
	if lock != nil {
		defer lock.Release(ctx)
	}

	existing, err := i.store.FindCustomerByName(ctx, run.req.ShopId, name)
	if err != nil {
		return 0, false, err
	}
	if existing != nil {
		return existing.ID, false, nil
	}

	customer := &models.Customer{
		ShopId:       run.req.ShopId,
		DisplayName:  name,
		FirstName:    candidate.FirstName,
		LastName:     candidate.LastName,
		CompanyName:  candidate.CompanyName,
		CustomerType: candidate.CustomerType,
		Phone:        candidate.Phone,
		Email:        candidate.Email,
		Address:      candidate.Address,
		City:         candidate.City,
		State:        candidate.State,
		Zip:          candidate.Zip,
	}
	err = i.store.CreateCustomer(ctx, customer)
	if errors.Is(err, utils.ErrorDuplicateKey) {
		// Lost the race; the row exists now.
		existing, findErr := i.store.FindCustomerByName(ctx, run.req.ShopId, name)
		if findErr != nil || existing == nil {
			return 0, false, err
		}
		return existing.ID, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return customer.ID, true, nil
}

func (i *BmsImporter) materializeVehicle(ctx context.Context, run *importRun) {
	candidate := run.estimate.Vehicle
	if candidate == nil {
		return
	}
	vin := strings.ToUpper(strings.TrimSpace(candidate.Vin))

	lock, err := ObtainNaturalKeyLock(ctx, "vehicle", run.req.ShopId, vin)
	if err != nil {
		config.LogWarn(i.logger, "Workflow", "materializeVehicle", vin, "lock not obtained: "+err.Error())
	}
	if lock != nil {
		defer lock.Release(ctx)
	}

	existing, err := i.store.FindVehicleByVin(ctx, vin)
	if err != nil {
		run.recordError("vehicle", fmt.Errorf("%s: %w", vin, err))
		return
	}
	if existing != nil {
		run.warn(fmt.Sprintf("vehicle %s (%s) already exists, reusing record %d", vin, existing.Description(), existing.ID))
		run.vehicleId = existing.ID
		run.created.VehicleId = existing.ID
		run.created.Vehicle = existing.Description()
		return
	}

	vehicle := &models.Vehicle{
		ShopId:       run.req.ShopId,
		CustomerId:   run.customerId,
		Vin:          vin,
		Year:         candidate.Year,
		Make:         candidate.Make,
		Model:        candidate.Model,
		Trim:         candidate.Trim,
		Color:        candidate.Color,
		PaintCode:    candidate.PaintCode,
		Plate:        candidate.Plate,
		Odometer:     candidate.Odometer,
		OdometerUnit: candidate.OdometerUnit,
	}
	err = i.store.CreateVehicle(ctx, vehicle)
	if errors.Is(err, utils.ErrorDuplicateKey) {
		existing, findErr := i.store.FindVehicleByVin(ctx, vin)
		if findErr != nil || existing == nil {
			run.recordError("vehicle", fmt.Errorf("%s: %w", vin, err))
			return
		}
		run.warn(fmt.Sprintf("vehicle %s already exists, reusing record %d", vin, existing.ID))
		run.vehicleId = existing.ID
		run.created.VehicleId = existing.ID
		run.created.Vehicle = existing.Description()
		return
	}
	if err != nil {
		run.recordError("vehicle", fmt.Errorf("%s: %w", vin, err))
		return
	}
	run.entry.VehicleCount++
	run.vehicleId = vehicle.ID
	run.created.VehicleId = vehicle.ID
	run.created.Vehicle = vehicle.Description()
}

func (i *BmsImporter) materializeClaim(ctx context.Context, run *importRun) {
	candidate := run.estimate.Claim
	if candidate == nil {
		return
	}
	if strings.TrimSpace(candidate.ClaimNumber) == "" {
		run.warn("claim skipped: document carries no claim number")
		return
	}
	if run.customerId == 0 || run.vehicleId == 0 {
		run.warn(fmt.Sprintf("claim %s skipped: customer or vehicle was not materialized", candidate.ClaimNumber))
		return
	}

	insurerId := 0
	if name := strings.TrimSpace(candidate.InsurerName); name != "" {
		insurer, err := i.store.FindInsurerByName(ctx, run.req.ShopId, name)
		if err != nil {
			run.recordError("claim", fmt.Errorf("insurer %q lookup: %w", name, err))
			return
		}
		if insurer == nil {
			run.recordError("claim", fmt.Errorf("insurer %q is not configured for this shop", name))
			return
		}
		insurerId = insurer.ID
	}

	claimNumber := strings.TrimSpace(candidate.ClaimNumber)
	lock, err := ObtainNaturalKeyLock(ctx, "claim", run.req.ShopId, claimNumber)
	if err != nil {
		config.LogWarn(i.logger, "Workflow", "materializeClaim", claimNumber, "lock not obtained: "+err.Error())
	}
	if lock != nil {
		defer lock.Release(ctx)
	}

	existing, err := i.store.FindClaimByNumber(ctx, run.req.ShopId, claimNumber)
	if err != nil {
		run.recordError("claim", fmt.Errorf("%s: %w", claimNumber, err))
		return
	}
	if existing != nil {
		run.warn(fmt.Sprintf("claim %s already exists, reusing record %d", claimNumber, existing.ID))
		run.claimId = existing.ID
		run.created.ClaimId = existing.ID
		run.created.ClaimNumber = claimNumber
		return
	}

	claim := &models.Claim{
		ShopId:          run.req.ShopId,
		ClaimNumber:     claimNumber,
		PolicyNumber:    candidate.PolicyNumber,
		InsurerId:       insurerId,
		CustomerId:      run.customerId,
		VehicleId:       run.vehicleId,
		Deductible:      candidate.Deductible,
		AdjusterName:    candidate.AdjusterName,
		AdjusterPhone:   candidate.AdjusterPhone,
		AdjusterEmail:   candidate.AdjusterEmail,
		LossDate:        candidate.LossDate,
		LossDescription: candidate.LossDescription,
	}
	err = i.store.CreateClaim(ctx, claim)
	if errors.Is(err, utils.ErrorDuplicateKey) {
		existing, findErr := i.store.FindClaimByNumber(ctx, run.req.ShopId, claimNumber)
		if findErr != nil || existing == nil {
			run.recordError("claim", fmt.Errorf("%s: %w", claimNumber, err))
			return
		}
		run.warn(fmt.Sprintf("claim %s already exists, reusing record %d", claimNumber, existing.ID))
		run.claimId = existing.ID
		run.created.ClaimId = existing.ID
		run.created.ClaimNumber = claimNumber
		return
	}
	if err != nil {
		run.recordError("claim", fmt.Errorf("%s: %w", claimNumber, err))
		return
	}
	run.entry.ClaimCount++
	run.claimId = claim.ID
	run.created.ClaimId = claim.ID
	run.created.ClaimNumber = claimNumber
}

func (i *BmsImporter) materializeRepairOrder(ctx context.Context, run *importRun) {
	if !run.req.AutoCreateRepairOrder {
		return
	}
	// A repair order needs the full chain: claim, customer and vehicle.
	if run.customerId == 0 || run.vehicleId == 0 || run.claimId == 0 {
		run.warn("repair order skipped: claim, customer or vehicle was not materialized")
		return
	}

	orderNumber, err := i.store.NextOrderNumber(ctx, run.req.ShopId)
	if err != nil {
		run.recordError("repair_order", fmt.Errorf("order number: %w", err))
		return
	}

	order := &models.RepairOrder{
		ShopId:      run.req.ShopId,
		OrderNumber: orderNumber,
		ClaimId:     run.claimId,
		CustomerId:  run.customerId,
		VehicleId:   run.vehicleId,
		Status:      models.RepairOrderStatusEstimate,
		CreatedBy:   run.req.UserId,
	}
	if claim := run.estimate.Claim; claim != nil {
		order.Deductible = claim.Deductible
		order.DamageDescription = claim.LossDescription
	}
	if err := i.store.CreateRepairOrder(ctx, order); err != nil {
		run.recordError("repair_order", fmt.Errorf("%s: %w", orderNumber, err))
		return
	}
	run.entry.RepairOrderCount++
	run.created.RepairOrderId = order.ID
	run.created.OrderNumber = orderNumber
}

// materializePartLines persists every part row. Lines are tagged with the
// import run and, when one exists, the repair order; toggling repair order
// creation on or off never changes how many lines land.
func (i *BmsImporter) materializePartLines(ctx context.Context, run *importRun) {
	var orderId *int
	if run.created.RepairOrderId != 0 {
		id := run.created.RepairOrderId
		orderId = &id
	}
	for _, candidate := range run.estimate.PartLines {
		if !candidate.IsPartRow() {
			continue
		}
		part := &models.RepairOrderPart{
			ShopId:        run.req.ShopId,
			RepairOrderId: orderId,
			BmsImportId:   run.entry.ID,
			LineNo:        candidate.LineNo,
			PartNumber:    candidate.PartNumber,
			Description:   candidate.Description,
			Quantity:      candidate.Quantity,
			UnitCost:      candidate.UnitCost,
			TotalCost:     candidate.TotalCost,
			VendorName:    candidate.VendorName,
			LaborHours:    candidate.LaborHours,
			OperationType: candidate.OperationType,
		}
		if err := i.store.CreatePartLine(ctx, part); err != nil {
			run.recordError("part_line", fmt.Errorf("line %d: %w", candidate.LineNo, err))
			continue
		}
		run.entry.PartLineCount++
	}
}

// classifyRun maps a finished run onto the terminal statuses: clean runs are
// success, runs with errors are partial when at least the customer or
// vehicle made it into the system, failed otherwise.
func classifyRun(run *importRun) models.BmsImportStatus {
	if len(run.errs) == 0 {
		return models.BmsImportStatusSuccess
	}
	if run.customerId != 0 || run.vehicleId != 0 {
		return models.BmsImportStatusPartial
	}
	return models.BmsImportStatusFailed
}
