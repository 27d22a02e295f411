package workflow

import (
	"strings"
	"time"

	"github.com/collisionworks/bodyshop_backend/models"
	"github.com/collisionworks/bodyshop_backend/utils"
	"github.com/shopspring/decimal"
)

// Candidate entities are extracted-but-not-persisted. They are created fresh
// per ingestion run and discarded with it; only the materializer may turn one
// into a stored row.

type DocumentCandidate struct {
	DocumentId   string
	DocumentType string
	SourceSystem string
	Version      string
}

const (
	CustomerRoleOwner   = "owner"
	CustomerRoleInsured = "insured"
)

type CustomerCandidate struct {
	Role         string
	FirstName    string
	LastName     string
	CompanyName  string
	CustomerType models.CustomerType
	Phone        string
	Email        string
	Address      string
	City         string
	State        string
	Zip          string
}

// DisplayName is the natural key: "First Last" for individuals, the company
// name for businesses.
func (c *CustomerCandidate) DisplayName() string {
	if c.CompanyName != "" {
		return strings.TrimSpace(c.CompanyName)
	}
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

type VehicleCandidate struct {
	Vin          string
	Year         int
	Make         string
	Model        string
	Trim         string
	Color        string
	PaintCode    string
	Plate        string
	Odometer     int
	OdometerUnit models.OdometerUnit
}

type ClaimCandidate struct {
	ClaimNumber     string
	PolicyNumber    string
	Deductible      decimal.Decimal
	InsurerName     string
	AdjusterName    string
	AdjusterPhone   string
	AdjusterEmail   string
	LossDate        *time.Time
	LossDescription string
}

type PartLineCandidate struct {
	LineNo        int
	PartNumber    string
	Description   string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	VendorName    string
	LaborHours    decimal.Decimal
	OperationType string
}

// IsPartRow reports whether this line describes an actual part. Estimates
// carry labor-only and note rows too; those are not this pipeline's problem.
func (p *PartLineCandidate) IsPartRow() bool {
	return strings.TrimSpace(p.PartNumber) != "" || strings.TrimSpace(p.Description) != ""
}

// ExtractedEstimate is everything one document yielded, pre-validation.
type ExtractedEstimate struct {
	Dialect   string
	Document  *DocumentCandidate
	Customers []*CustomerCandidate
	Vehicle   *VehicleCandidate
	Claim     *ClaimCandidate
	PartLines []*PartLineCandidate
}

// ExtractEstimate selects a dialect for the tree and projects it into
// candidates. Extractors are total: missing optional fields are omitted, never
// an error, and no extractor touches storage.
func ExtractEstimate(root *Node, registry *DialectRegistry) *ExtractedEstimate {
	dialect := registry.Detect(root)

	out := &ExtractedEstimate{Dialect: dialect.Name}
	if dialect.ExtractDocument != nil {
		out.Document = dialect.ExtractDocument(root)
	}
	if out.Document == nil {
		out.Document = &DocumentCandidate{}
	}
	if dialect.ExtractCustomers != nil {
		out.Customers = dialect.ExtractCustomers(root)
	}
	if dialect.ExtractVehicle != nil {
		out.Vehicle = dialect.ExtractVehicle(root)
	}
	if dialect.ExtractClaim != nil {
		out.Claim = dialect.ExtractClaim(root)
	}
	if dialect.ExtractPartLines != nil {
		out.PartLines = dialect.ExtractPartLines(root)
	}

	// Estimate files routinely carry "N/A" or a phone number in the email
	// slot; drop anything that isn't an address.
	for _, c := range out.Customers {
		c.Email = validEmail(c.Email)
	}
	if out.Claim != nil {
		out.Claim.AdjusterEmail = validEmail(out.Claim.AdjusterEmail)
	}
	return out
}

func validEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" || !utils.IsValidEmail(email) {
		return ""
	}
	return email
}

/* shared extraction helpers */

// firstTextDeep probes each named node depth-first and returns the first
// non-empty trimmed text.
func firstTextDeep(root *Node, names ...string) string {
	for _, name := range names {
		if n := root.First(name); n != nil {
			if text := strings.TrimSpace(n.Text); text != "" {
				return text
			}
		}
	}
	return ""
}

var lossDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

func parseLossDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range lossDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func normalizeOdometerUnit(value string) models.OdometerUnit {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "km", "kilometers", "kilometres":
		return models.OdometerUnitKilometers
	case "mi", "miles", "":
		return models.OdometerUnitMiles
	default:
		return models.OdometerUnitMiles
	}
}

func customerTypeFor(companyName string) models.CustomerType {
	if strings.TrimSpace(companyName) != "" {
		return models.CustomerTypeBusiness
	}
	return models.CustomerTypeIndividual
}

func normalizedPhone(value string) string {
	return utils.NormalizePhone(value)
}
