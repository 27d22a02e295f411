package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/collisionworks/bodyshop_backend/models"
	"github.com/collisionworks/bodyshop_backend/utils"
)

// fakeImportStore keeps everything in memory so the pipeline semantics can be
// exercised without MySQL. Error injection fields simulate per-record
// persistence failures and duplicate-key races.
type fakeImportStore struct {
	nextId   int
	orderSeq int64

	imports   []*models.BmsImport
	documents []*models.BmsDocument
	customers []*models.Customer
	vehicles  []*models.Vehicle
	insurers  []*models.Insurer
	claims    []*models.Claim
	orders    []*models.RepairOrder
	parts     []*models.RepairOrderPart

	finalizeCalls map[string]int

	createVehicleErr  error
	createPartErr     error
	findInsurerErr    error
	raceCustomerName  string // FindCustomerByName misses once, create hits the unique index
	racedCustomerFind bool
}

func newFakeImportStore() *fakeImportStore {
	return &fakeImportStore{finalizeCalls: map[string]int{}}
}

func (s *fakeImportStore) id() int {
	s.nextId++
	return s.nextId
}

func (s *fakeImportStore) CreateImport(ctx context.Context, entry *models.BmsImport) error {
	entry.ID = fmt.Sprintf("import-%d", len(s.imports)+1)
	entry.Status = models.BmsImportStatusProcessing
	s.imports = append(s.imports, entry)
	return nil
}

func (s *fakeImportStore) FinalizeImport(ctx context.Context, entry *models.BmsImport, status models.BmsImportStatus, errs []string, warnings []string, duration time.Duration) error {
	entry.Status = status
	entry.ProcessingTimeMs = duration.Milliseconds()
	entry.Summary = entry.BuildSummary(len(errs), len(warnings))
	s.finalizeCalls[entry.ID]++
	return nil
}

func (s *fakeImportStore) CreateDocument(ctx context.Context, doc *models.BmsDocument) error {
	doc.ID = s.id()
	s.documents = append(s.documents, doc)
	return nil
}

func (s *fakeImportStore) FindCustomerByName(ctx context.Context, shopId string, displayName string) (*models.Customer, error) {
	if displayName == s.raceCustomerName && !s.racedCustomerFind {
		s.racedCustomerFind = true
		return nil, nil
	}
	for _, c := range s.customers {
		if c.ShopId == shopId && c.DisplayName == displayName {
			return c, nil
		}
	}
	return nil, nil
}

func (s *fakeImportStore) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	for _, c := range s.customers {
		if c.ShopId == customer.ShopId && c.DisplayName == customer.DisplayName {
			return utils.ErrorDuplicateKey
		}
	}
	customer.ID = s.id()
	s.customers = append(s.customers, customer)
	return nil
}

func (s *fakeImportStore) FindVehicleByVin(ctx context.Context, vin string) (*models.Vehicle, error) {
	for _, v := range s.vehicles {
		if v.Vin == vin {
			return v, nil
		}
	}
	return nil, nil
}

func (s *fakeImportStore) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	if s.createVehicleErr != nil {
		return s.createVehicleErr
	}
	vehicle.ID = s.id()
	s.vehicles = append(s.vehicles, vehicle)
	return nil
}

func (s *fakeImportStore) FindInsurerByName(ctx context.Context, shopId string, name string) (*models.Insurer, error) {
	if s.findInsurerErr != nil {
		return nil, s.findInsurerErr
	}
	for _, i := range s.insurers {
		if i.ShopId == shopId && strings.EqualFold(i.Name, name) {
			return i, nil
		}
	}
	return nil, nil
}

func (s *fakeImportStore) FindClaimByNumber(ctx context.Context, shopId string, claimNumber string) (*models.Claim, error) {
	for _, c := range s.claims {
		if c.ShopId == shopId && c.ClaimNumber == claimNumber {
			return c, nil
		}
	}
	return nil, nil
}

func (s *fakeImportStore) CreateClaim(ctx context.Context, claim *models.Claim) error {
	claim.ID = s.id()
	s.claims = append(s.claims, claim)
	return nil
}

func (s *fakeImportStore) NextOrderNumber(ctx context.Context, shopId string) (string, error) {
	s.orderSeq++
	return fmt.Sprintf("RO-%05d", s.orderSeq), nil
}

func (s *fakeImportStore) CreateRepairOrder(ctx context.Context, order *models.RepairOrder) error {
	order.ID = s.id()
	s.orders = append(s.orders, order)
	return nil
}

func (s *fakeImportStore) CreatePartLine(ctx context.Context, part *models.RepairOrderPart) error {
	if s.createPartErr != nil {
		return s.createPartErr
	}
	part.ID = s.id()
	s.parts = append(s.parts, part)
	return nil
}

const testShopId = "shop-1"

func newTestRequest(data string, format string) *BmsImportRequest {
	return &BmsImportRequest{
		ShopId:                testShopId,
		UserId:                7,
		OriginalFileName:      "estimate." + format,
		FileSize:              int64(len(data)),
		Format:                format,
		Data:                  []byte(data),
		AutoCreateRepairOrder: true,
	}
}

func seedInsurers(s *fakeImportStore, names ...string) {
	for _, name := range names {
		s.insurers = append(s.insurers, &models.Insurer{ID: s.id(), ShopId: testShopId, Name: name})
	}
}

func TestImport_HappyPath(t *testing.T) {
	store := newFakeImportStore()
	seedInsurers(store, "State Farm")
	importer := NewBmsImporter(store, DefaultDialects())

	result, err := importer.Run(context.Background(), newTestRequest(cccEstimateXML, FormatXML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != models.BmsImportStatusSuccess {
		t.Fatalf("expected success, got %s (errors: %v)", result.Status, result.Errors)
	}
	if result.Dialect != "ccc" {
		t.Errorf("expected ccc dialect, got %q", result.Dialect)
	}
	if result.DocumentCount != 1 || result.CustomerCount != 2 || result.VehicleCount != 1 ||
		result.ClaimCount != 1 || result.RepairOrderCount != 1 || result.PartLineCount != 2 {
		t.Errorf("unexpected counts: %+v", result)
	}
	if len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Errorf("expected clean run, got errors %v warnings %v", result.Errors, result.Warnings)
	}

	if result.Created.OrderNumber != "RO-00001" {
		t.Errorf("expected RO-00001, got %q", result.Created.OrderNumber)
	}
	if result.Created.CustomerName != "Maria Santos" {
		t.Errorf("expected owner name in created summary, got %q", result.Created.CustomerName)
	}
	if result.Created.Vehicle != "2019 Honda Civic" {
		t.Errorf("expected vehicle description in created summary, got %q", result.Created.Vehicle)
	}
	if result.Created.ClaimNumber != "CLM-2026-0091" {
		t.Errorf("expected claim number in created summary, got %q", result.Created.ClaimNumber)
	}
	if len(store.orders) != 1 {
		t.Fatalf("expected 1 repair order, got %d", len(store.orders))
	}
	order := store.orders[0]
	if order.CustomerId != result.Created.CustomerIds[0] || order.VehicleId != result.Created.VehicleId || order.ClaimId != result.Created.ClaimId {
		t.Errorf("repair order not wired to created entities: %+v", order)
	}
	if order.CreatedBy != 7 {
		t.Errorf("expected created_by 7, got %d", order.CreatedBy)
	}

	// The owner comes first, so the claim and vehicle attach to them.
	if len(store.claims) != 1 || store.claims[0].CustomerId != result.Created.CustomerIds[0] {
		t.Errorf("claim not attached to owner: %+v", store.claims)
	}
	if store.claims[0].InsurerId == 0 {
		t.Error("expected claim to resolve the insurer")
	}

	for _, part := range store.parts {
		if part.RepairOrderId == nil || *part.RepairOrderId != order.ID {
			t.Errorf("part line not linked to repair order: %+v", part)
		}
		if part.BmsImportId != result.ImportId {
			t.Errorf("part line missing import tag: %+v", part)
		}
	}

	if store.finalizeCalls[result.ImportId] != 1 {
		t.Errorf("expected exactly one finalize, got %d", store.finalizeCalls[result.ImportId])
	}
	if !strings.Contains(result.Summary, "success") {
		t.Errorf("expected summary to carry status, got %q", result.Summary)
	}
}

func TestImport_ParseFailureLeavesNoLedgerRow(t *testing.T) {
	store := newFakeImportStore()
	importer := NewBmsImporter(store, DefaultDialects())

	_, err := importer.Run(context.Background(), newTestRequest("not xml at all", FormatXML))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if len(store.imports) != 0 {
		t.Fatalf("expected no ledger row for unparseable input, got %d", len(store.imports))
	}
}

func TestImport_ValidationFailureLeavesNoLedgerRow(t *testing.T) {
	store := newFakeImportStore()
	importer := NewBmsImporter(store, DefaultDialects())

	data := `<VehicleDamageEstimateAddRq>
  <AdminInfo><Owner><Party><PersonInfo><PersonName>
    <FirstName>Maria</FirstName><LastName>Santos</LastName>
  </PersonName></PersonInfo></Party></Owner></AdminInfo>
  <VehicleInfo><VehicleDesc><ModelYear>2019</ModelYear><MakeDesc>Honda</MakeDesc><ModelName>Civic</ModelName></VehicleDesc></VehicleInfo>
</VehicleDamageEstimateAddRq>`

	_, err := importer.Run(context.Background(), newTestRequest(data, FormatXML))
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(validationErr.Problems) != 1 || !strings.Contains(validationErr.Problems[0], "VIN") {
		t.Errorf("expected a VIN problem, got %v", validationErr.Problems)
	}
	if len(store.imports) != 0 {
		t.Fatalf("expected no ledger row for invalid estimate, got %d", len(store.imports))
	}
}

func TestImport_ReimportDedupsOnNaturalKeys(t *testing.T) {
	store := newFakeImportStore()
	seedInsurers(store, "State Farm")
	importer := NewBmsImporter(store, DefaultDialects())

	first, err := importer.Run(context.Background(), newTestRequest(cccEstimateXML, FormatXML))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	req := newTestRequest(cccEstimateXML, FormatXML)
	req.AutoCreateRepairOrder = false
	second, err := importer.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if second.Status != models.BmsImportStatusSuccess {
		t.Fatalf("expected success, got %s (errors: %v)", second.Status, second.Errors)
	}
	if second.CustomerCount != 0 || second.VehicleCount != 0 || second.ClaimCount != 0 {
		t.Errorf("expected no new entities on re-import: %+v", second)
	}
	// owner, insured, vehicle, claim all reused
	if len(second.Warnings) != 4 {
		t.Errorf("expected 4 reuse warnings, got %v", second.Warnings)
	}
	if second.Created.VehicleId != first.Created.VehicleId || second.Created.ClaimId != first.Created.ClaimId {
		t.Errorf("expected re-import to resolve the same rows: first %+v second %+v", first.Created, second.Created)
	}
	if len(store.customers) != 2 || len(store.vehicles) != 1 || len(store.claims) != 1 {
		t.Errorf("duplicate rows created: %d customers %d vehicles %d claims",
			len(store.customers), len(store.vehicles), len(store.claims))
	}
	// Part lines are per-import facts, not dedup'd.
	if second.PartLineCount != 2 {
		t.Errorf("expected part lines on re-import, got %d", second.PartLineCount)
	}
}

func TestImport_DuplicateKeyRaceRecovers(t *testing.T) {
	store := newFakeImportStore()
	seedInsurers(store, "State Farm")
	// Another import inserts Maria Santos between our find and create.
	store.customers = append(store.customers, &models.Customer{
		ID: store.id(), ShopId: testShopId, DisplayName: "Maria Santos",
	})
	store.raceCustomerName = "Maria Santos"
	importer := NewBmsImporter(store, DefaultDialects())

	result, err := importer.Run(context.Background(), newTestRequest(cccEstimateXML, FormatXML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != models.BmsImportStatusSuccess {
		t.Fatalf("expected success after race recovery, got %s (errors: %v)", result.Status, result.Errors)
	}
	// Only the insured was actually new.
	if result.CustomerCount != 1 {
		t.Errorf("expected 1 created customer, got %d", result.CustomerCount)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "Maria Santos") && strings.Contains(w, "already exists") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a reuse warning for the raced customer, got %v", result.Warnings)
	}
}

func TestImport_UnknownInsurerFailsClaimOnly(t *testing.T) {
	store := newFakeImportStore() // no insurers configured
	importer := NewBmsImporter(store, DefaultDialects())

	result, err := importer.Run(context.Background(), newTestRequest(cccEstimateXML, FormatXML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != models.BmsImportStatusPartial {
		t.Fatalf("expected partial, got %s", result.Status)
	}
	if result.ClaimCount != 0 || len(store.claims) != 0 {
		t.Errorf("expected no claim for unknown insurer")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "insurer") {
		t.Errorf("expected an insurer error, got %v", result.Errors)
	}
	// Customers, vehicle and parts still land; the repair order needs the
	// claim, so it is skipped with a warning.
	if result.CustomerCount != 2 || result.VehicleCount != 1 || result.PartLineCount != 2 {
		t.Errorf("unexpected counts: %+v", result)
	}
	if result.RepairOrderCount != 0 || len(store.orders) != 0 {
		t.Errorf("expected no repair order without a claim, got %d", len(store.orders))
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "repair order skipped") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a repair order skip warning, got %v", result.Warnings)
	}
}

func TestImport_MissingClaimSkipsRepairOrder(t *testing.T) {
	store := newFakeImportStore()
	importer := NewBmsImporter(store, DefaultDialects())

	data := strings.Replace(cccEstimateXML, "<ClaimInfo>", "<RemovedInfo>", 1)
	data = strings.Replace(data, "</ClaimInfo>", "</RemovedInfo>", 1)
	if !strings.Contains(cccEstimateXML, "<ClaimInfo>") {
		t.Fatal("fixture no longer carries a claim block")
	}

	result, err := importer.Run(context.Background(), newTestRequest(data, FormatXML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No claim means no repair order attempt: a dependency gap, not a failure.
	if result.Status != models.BmsImportStatusSuccess {
		t.Fatalf("expected success, got %s (errors: %v)", result.Status, result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors for a claim-less estimate, got %v", result.Errors)
	}
	if result.ClaimCount != 0 || result.RepairOrderCount != 0 || len(store.orders) != 0 {
		t.Errorf("expected no claim and no repair order: %+v", result)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "repair order skipped") {
		t.Errorf("expected only a repair order skip warning, got %v", result.Warnings)
	}
	if result.CustomerCount != 2 || result.VehicleCount != 1 || result.PartLineCount != 2 {
		t.Errorf("unexpected counts: %+v", result)
	}
	for _, part := range store.parts {
		if part.RepairOrderId != nil {
			t.Errorf("expected unlinked part line, got %+v", part)
		}
	}
}

func TestImport_EmptyClaimNumberWarns(t *testing.T) {
	store := newFakeImportStore()
	importer := NewBmsImporter(store, DefaultDialects())

	data := strings.Replace(cccEstimateXML, "<ClaimNum>CLM-2026-0091</ClaimNum>", "<ClaimNum></ClaimNum>", 1)

	result, err := importer.Run(context.Background(), newTestRequest(data, FormatXML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ClaimCount != 0 || len(store.claims) != 0 {
		t.Errorf("expected no claim without a claim number")
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "no claim number") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning explaining the dropped claim, got %v", result.Warnings)
	}
	if len(result.Errors) != 0 {
		t.Errorf("a missing claim number is a gap, not an error: %v", result.Errors)
	}
}

func TestImport_VehicleFailureSkipsDependents(t *testing.T) {
	store := newFakeImportStore()
	seedInsurers(store, "State Farm")
	store.createVehicleErr = errors.New("connection reset")
	importer := NewBmsImporter(store, DefaultDialects())

	result, err := importer.Run(context.Background(), newTestRequest(cccEstimateXML, FormatXML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != models.BmsImportStatusPartial {
		t.Fatalf("expected partial (customers landed), got %s", result.Status)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "vehicle") {
		t.Errorf("expected one vehicle error, got %v", result.Errors)
	}
	// Claim and repair order are skipped as dependency gaps, not errors.
	if result.ClaimCount != 0 || result.RepairOrderCount != 0 {
		t.Errorf("expected dependents skipped: %+v", result)
	}
	skips := 0
	for _, w := range result.Warnings {
		if strings.Contains(w, "skipped") {
			skips++
		}
	}
	if skips != 2 {
		t.Errorf("expected claim and repair order skip warnings, got %v", result.Warnings)
	}
	// Part lines still land, unlinked.
	if result.PartLineCount != 2 {
		t.Errorf("expected part lines despite vehicle failure, got %d", result.PartLineCount)
	}
	for _, part := range store.parts {
		if part.RepairOrderId != nil {
			t.Errorf("expected unlinked part line, got %+v", part)
		}
	}
}

func TestImport_AutoCreateRepairOrderToggle(t *testing.T) {
	store := newFakeImportStore()
	seedInsurers(store, "State Farm")
	importer := NewBmsImporter(store, DefaultDialects())

	req := newTestRequest(cccEstimateXML, FormatXML)
	req.AutoCreateRepairOrder = false
	result, err := importer.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != models.BmsImportStatusSuccess {
		t.Fatalf("expected success, got %s (errors: %v)", result.Status, result.Errors)
	}
	if result.RepairOrderCount != 0 || len(store.orders) != 0 {
		t.Errorf("expected no repair order when disabled")
	}
	// Everything else is unchanged by the toggle.
	if result.CustomerCount != 2 || result.VehicleCount != 1 || result.ClaimCount != 1 || result.PartLineCount != 2 {
		t.Errorf("toggle changed unrelated counts: %+v", result)
	}
	for _, part := range store.parts {
		if part.RepairOrderId != nil {
			t.Errorf("expected part line without repair order, got %+v", part)
		}
	}
}

func TestImport_PartLineFailuresAreIsolated(t *testing.T) {
	store := newFakeImportStore()
	seedInsurers(store, "State Farm")
	store.createPartErr = errors.New("data too long for column")
	importer := NewBmsImporter(store, DefaultDialects())

	result, err := importer.Run(context.Background(), newTestRequest(cccEstimateXML, FormatXML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != models.BmsImportStatusPartial {
		t.Fatalf("expected partial, got %s", result.Status)
	}
	if len(result.Errors) != 2 {
		t.Errorf("expected one error per failed line, got %v", result.Errors)
	}
	if result.PartLineCount != 0 {
		t.Errorf("expected no part lines counted, got %d", result.PartLineCount)
	}
	// The run still finished and finalized.
	if store.finalizeCalls[result.ImportId] != 1 {
		t.Errorf("expected finalize despite line failures")
	}
}

func TestImport_RequiresIdentity(t *testing.T) {
	importer := NewBmsImporter(newFakeImportStore(), DefaultDialects())

	req := newTestRequest(cccEstimateXML, FormatXML)
	req.ShopId = ""
	if _, err := importer.Run(context.Background(), req); err == nil {
		t.Fatal("expected error without shop identity")
	}

	req = newTestRequest(cccEstimateXML, FormatXML)
	req.UserId = 0
	if _, err := importer.Run(context.Background(), req); err == nil {
		t.Fatal("expected error without user identity")
	}
}
