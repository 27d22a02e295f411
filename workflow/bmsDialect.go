package workflow

import (
	"strings"

	"github.com/collisionworks/bodyshop_backend/utils"
	"github.com/shopspring/decimal"
)

// Dialect is one source system's document shape: a detection probe plus a
// typed extraction function per entity kind. Adding a vendor means adding a
// dialect here, not growing fallback chains inside the extractors.
type Dialect struct {
	Name             string
	Detect           func(root *Node) bool
	ExtractDocument  func(root *Node) *DocumentCandidate
	ExtractCustomers func(root *Node) []*CustomerCandidate
	ExtractVehicle   func(root *Node) *VehicleCandidate
	ExtractClaim     func(root *Node) *ClaimCandidate
	ExtractPartLines func(root *Node) []*PartLineCandidate
}

// DialectRegistry holds the ordered dialect list. It is passed into the
// importer explicitly so tests can register synthetic dialects without
// touching shared state.
type DialectRegistry struct {
	dialects []*Dialect
	fallback *Dialect
}

func NewDialectRegistry(fallback *Dialect, dialects ...*Dialect) *DialectRegistry {
	return &DialectRegistry{dialects: dialects, fallback: fallback}
}

// Register appends a dialect; it is probed after the built-ins but before
// the fallback.
func (r *DialectRegistry) Register(d *Dialect) {
	r.dialects = append(r.dialects, d)
}

// Detect probes dialects in order. No match falls back to the permissive
// rule set: estimates are heterogeneous by nature, and a best-effort
// extraction with gaps beats refusing the whole document.
func (r *DialectRegistry) Detect(root *Node) *Dialect {
	for _, d := range r.dialects {
		if d.Detect != nil && d.Detect(root) {
			return d
		}
	}
	return r.fallback
}

func DefaultDialects() *DialectRegistry {
	return NewDialectRegistry(
		genericDialect(),
		cccDialect(),
		mitchellDialect(),
		audatexDialect(),
	)
}

/* CCC (CIECA BMS wrapped in VehicleDamageEstimateAddRq) */

func cccDialect() *Dialect {
	return &Dialect{
		Name: "ccc",
		Detect: func(root *Node) bool {
			return root.First("VehicleDamageEstimateAddRq") != nil
		},
		ExtractDocument: func(root *Node) *DocumentCandidate {
			docType := firstTextDeep(root, "DocumentType")
			if docType == "" {
				docType = "Estimate"
			}
			source := firstTextDeep(root, "SourceSystem")
			if source == "" {
				source = "CCC ONE"
			}
			return &DocumentCandidate{
				DocumentId:   firstTextDeep(root, "DocumentID", "RqUID"),
				DocumentType: docType,
				SourceSystem: source,
				Version:      firstTextDeep(root, "BMSVer"),
			}
		},
		ExtractCustomers: func(root *Node) []*CustomerCandidate {
			var out []*CustomerCandidate
			if owner := cccParty(root.First("Owner"), CustomerRoleOwner); owner != nil {
				out = append(out, owner)
			}
			if insured := cccParty(root.First("InsuredParty"), CustomerRoleInsured); insured != nil {
				out = append(out, insured)
			}
			return out
		},
		ExtractVehicle: func(root *Node) *VehicleCandidate {
			v := root.First("VehicleInfo")
			if v == nil {
				return nil
			}
			return &VehicleCandidate{
				Vin:          strings.ToUpper(firstTextDeep(v, "VINNum")),
				Year:         utils.ParseIntOrZero(firstTextDeep(v, "ModelYear")),
				Make:         firstTextDeep(v, "MakeDesc"),
				Model:        firstTextDeep(v, "ModelName"),
				Trim:         firstTextDeep(v, "TrimCode"),
				Color:        firstTextDeep(v, "ExteriorColor"),
				PaintCode:    firstTextDeep(v, "PaintCode"),
				Plate:        firstTextDeep(v, "LicPlateNum"),
				Odometer:     utils.ParseIntOrZero(firstTextDeep(v, "OdometerReading")),
				OdometerUnit: normalizeOdometerUnit(firstTextDeep(v, "OdometerUOM")),
			}
		},
		ExtractClaim: func(root *Node) *ClaimCandidate {
			c := root.First("ClaimInfo")
			if c == nil {
				return nil
			}
			adjusterName := ""
			if adj := c.First("AdjusterParty"); adj != nil {
				adjusterName = strings.TrimSpace(firstTextDeep(adj, "FirstName") + " " + firstTextDeep(adj, "LastName"))
			}
			return &ClaimCandidate{
				ClaimNumber:     firstTextDeep(c, "ClaimNum"),
				PolicyNumber:    firstTextDeep(c, "PolicyNum"),
				Deductible:      utils.ParseDecimalOrZero(firstTextDeep(c, "DeductibleAmt")),
				InsurerName:     firstTextDeep(c.First("InsuranceCompany"), "CompanyName"),
				AdjusterName:    adjusterName,
				AdjusterPhone:   normalizedPhone(firstTextDeep(c.First("AdjusterParty"), "CommPhone")),
				AdjusterEmail:   firstTextDeep(c.First("AdjusterParty"), "CommEmail"),
				LossDate:        parseLossDate(firstTextDeep(c, "LossDateTime")),
				LossDescription: firstTextDeep(c, "LossDesc"),
			}
		},
		ExtractPartLines: func(root *Node) []*PartLineCandidate {
			var out []*PartLineCandidate
			for _, line := range root.All("DamageLineInfo") {
				qty := utils.ParseDecimalOrZero(firstTextDeep(line, "PartQty"))
				price := utils.ParseDecimalOrZero(firstTextDeep(line, "PartPrice"))
				total := price
				if qty.GreaterThan(decimal.Zero) {
					total = price.Mul(qty)
				}
				out = append(out, &PartLineCandidate{
					LineNo:        utils.ParseIntOrZero(firstTextDeep(line, "LineNum")),
					PartNumber:    firstTextDeep(line, "PartNum"),
					Description:   firstTextDeep(line, "LineDesc"),
					Quantity:      qty,
					UnitCost:      price,
					TotalCost:     total,
					VendorName:    firstTextDeep(line, "VendorName"),
					LaborHours:    utils.ParseDecimalOrZero(firstTextDeep(line, "LaborHours")),
					OperationType: firstTextDeep(line, "LaborType"),
				})
			}
			return out
		},
	}
}

func cccParty(party *Node, role string) *CustomerCandidate {
	if party == nil {
		return nil
	}
	candidate := &CustomerCandidate{
		Role:        role,
		FirstName:   firstTextDeep(party, "FirstName"),
		LastName:    firstTextDeep(party, "LastName"),
		CompanyName: firstTextDeep(party, "CompanyName"),
		Phone:       normalizedPhone(firstTextDeep(party, "CommPhone")),
		Email:       firstTextDeep(party, "CommEmail"),
		Address:     firstTextDeep(party, "Addr1"),
		City:        firstTextDeep(party, "City"),
		State:       firstTextDeep(party, "StateProv"),
		Zip:         firstTextDeep(party, "PostalCode"),
	}
	candidate.CustomerType = customerTypeFor(candidate.CompanyName)
	if candidate.DisplayName() == "" {
		return nil
	}
	return candidate
}

/* Mitchell */

func mitchellDialect() *Dialect {
	return &Dialect{
		Name: "mitchell",
		Detect: func(root *Node) bool {
			return root.First("MitchellEstimate") != nil
		},
		ExtractDocument: func(root *Node) *DocumentCandidate {
			return &DocumentCandidate{
				DocumentId:   firstTextDeep(root, "EstimateID"),
				DocumentType: "Estimate",
				SourceSystem: "Mitchell",
				Version:      firstTextDeep(root.First("EstimateHeader"), "Version"),
			}
		},
		ExtractCustomers: func(root *Node) []*CustomerCandidate {
			info := root.First("CustomerInfo")
			if info == nil {
				return nil
			}
			candidate := &CustomerCandidate{
				Role:        CustomerRoleOwner,
				FirstName:   firstTextDeep(info, "FirstName"),
				LastName:    firstTextDeep(info, "LastName"),
				CompanyName: firstTextDeep(info, "BusinessName"),
				Phone:       normalizedPhone(firstTextDeep(info, "PhoneNumber")),
				Email:       firstTextDeep(info, "EmailAddress"),
				Address:     firstTextDeep(info, "Address1"),
				City:        firstTextDeep(info, "City"),
				State:       firstTextDeep(info, "State"),
				Zip:         firstTextDeep(info, "ZipCode"),
			}
			candidate.CustomerType = customerTypeFor(candidate.CompanyName)
			if candidate.DisplayName() == "" {
				return nil
			}
			return []*CustomerCandidate{candidate}
		},
		ExtractVehicle: func(root *Node) *VehicleCandidate {
			v := root.First("VehicleInfo")
			if v == nil {
				return nil
			}
			return &VehicleCandidate{
				Vin:          strings.ToUpper(firstTextDeep(v, "VIN")),
				Year:         utils.ParseIntOrZero(firstTextDeep(v, "Year")),
				Make:         firstTextDeep(v, "Make"),
				Model:        firstTextDeep(v, "Model"),
				Trim:         firstTextDeep(v, "Trim"),
				Color:        firstTextDeep(v, "Color"),
				PaintCode:    firstTextDeep(v, "PaintCode"),
				Plate:        firstTextDeep(v, "LicensePlate"),
				Odometer:     utils.ParseIntOrZero(firstTextDeep(v, "Mileage")),
				OdometerUnit: normalizeOdometerUnit(firstTextDeep(v, "MileageUnit")),
			}
		},
		ExtractClaim: func(root *Node) *ClaimCandidate {
			c := root.First("InsuranceInfo")
			if c == nil {
				return nil
			}
			return &ClaimCandidate{
				ClaimNumber:     firstTextDeep(c, "ClaimNumber"),
				PolicyNumber:    firstTextDeep(c, "PolicyNumber"),
				Deductible:      utils.ParseDecimalOrZero(firstTextDeep(c, "Deductible")),
				InsurerName:     firstTextDeep(c, "CarrierName"),
				AdjusterName:    firstTextDeep(c, "AdjusterName"),
				AdjusterPhone:   normalizedPhone(firstTextDeep(c, "AdjusterPhone")),
				AdjusterEmail:   firstTextDeep(c, "AdjusterEmail"),
				LossDate:        parseLossDate(firstTextDeep(c, "DateOfLoss")),
				LossDescription: firstTextDeep(c, "LossDescription"),
			}
		},
		ExtractPartLines: func(root *Node) []*PartLineCandidate {
			lines := root.First("EstimateLines")
			if lines == nil {
				return nil
			}
			var out []*PartLineCandidate
			for _, line := range lines.All("Line") {
				out = append(out, &PartLineCandidate{
					LineNo:        utils.ParseIntOrZero(firstTextDeep(line, "LineNumber")),
					PartNumber:    firstTextDeep(line, "PartNumber"),
					Description:   firstTextDeep(line, "Description"),
					Quantity:      utils.ParseDecimalOrZero(firstTextDeep(line, "Quantity")),
					UnitCost:      utils.ParseDecimalOrZero(firstTextDeep(line, "UnitPrice")),
					TotalCost:     utils.ParseDecimalOrZero(firstTextDeep(line, "ExtendedPrice")),
					VendorName:    firstTextDeep(line, "Supplier"),
					LaborHours:    utils.ParseDecimalOrZero(firstTextDeep(line, "LaborHours")),
					OperationType: firstTextDeep(line, "Operation"),
				})
			}
			return out
		},
	}
}

/* Audatex (JSON-first shape) */

func audatexDialect() *Dialect {
	return &Dialect{
		Name: "audatex",
		Detect: func(root *Node) bool {
			return strings.Contains(strings.ToUpper(firstTextDeep(root, "documentType")), "AUDATEX")
		},
		ExtractDocument: func(root *Node) *DocumentCandidate {
			return &DocumentCandidate{
				DocumentId:   firstTextDeep(root, "documentId"),
				DocumentType: "Estimate",
				SourceSystem: "Audatex",
				Version:      firstTextDeep(root, "version"),
			}
		},
		ExtractCustomers: func(root *Node) []*CustomerCandidate {
			var out []*CustomerCandidate
			if owner := audatexContact(root.First("owner"), CustomerRoleOwner); owner != nil {
				out = append(out, owner)
			}
			if insured := audatexContact(root.First("insured"), CustomerRoleInsured); insured != nil {
				out = append(out, insured)
			}
			return out
		},
		ExtractVehicle: func(root *Node) *VehicleCandidate {
			v := root.First("vehicle")
			if v == nil {
				return nil
			}
			return &VehicleCandidate{
				Vin:          strings.ToUpper(v.TextAt("vin")),
				Year:         utils.ParseIntOrZero(v.TextAt("year")),
				Make:         v.TextAt("make"),
				Model:        v.TextAt("model"),
				Trim:         v.TextAt("trim"),
				Color:        v.TextAt("color"),
				PaintCode:    v.TextAt("paintCode"),
				Plate:        v.TextAt("plate"),
				Odometer:     utils.ParseIntOrZero(v.TextAt("odometer")),
				OdometerUnit: normalizeOdometerUnit(v.TextAt("odometerUnit")),
			}
		},
		ExtractClaim: func(root *Node) *ClaimCandidate {
			c := root.First("claim")
			if c == nil {
				return nil
			}
			return &ClaimCandidate{
				ClaimNumber:     c.TextAt("claimNumber"),
				PolicyNumber:    c.TextAt("policyNumber"),
				Deductible:      utils.ParseDecimalOrZero(c.TextAt("deductible")),
				InsurerName:     c.TextAt("insurer"),
				AdjusterName:    c.TextAt("adjuster", "name"),
				AdjusterPhone:   normalizedPhone(c.TextAt("adjuster", "phone")),
				AdjusterEmail:   c.TextAt("adjuster", "email"),
				LossDate:        parseLossDate(c.TextAt("lossDate")),
				LossDescription: c.TextAt("lossDescription"),
			}
		},
		ExtractPartLines: func(root *Node) []*PartLineCandidate {
			var out []*PartLineCandidate
			for _, line := range root.All("lines") {
				out = append(out, &PartLineCandidate{
					LineNo:        utils.ParseIntOrZero(line.TextAt("lineNo")),
					PartNumber:    line.TextAt("partNumber"),
					Description:   line.TextAt("description"),
					Quantity:      utils.ParseDecimalOrZero(line.TextAt("qty")),
					UnitCost:      utils.ParseDecimalOrZero(line.TextAt("unitCost")),
					TotalCost:     utils.ParseDecimalOrZero(line.TextAt("totalCost")),
					VendorName:    line.TextAt("vendor"),
					LaborHours:    utils.ParseDecimalOrZero(line.TextAt("laborHours")),
					OperationType: line.TextAt("operation"),
				})
			}
			return out
		},
	}
}

func audatexContact(contact *Node, role string) *CustomerCandidate {
	if contact == nil {
		return nil
	}
	candidate := &CustomerCandidate{
		Role:        role,
		FirstName:   contact.TextAt("firstName"),
		LastName:    contact.TextAt("lastName"),
		CompanyName: contact.TextAt("company"),
		Phone:       normalizedPhone(contact.TextAt("phone")),
		Email:       contact.TextAt("email"),
		Address:     contact.TextAt("address", "line1"),
		City:        contact.TextAt("address", "city"),
		State:       contact.TextAt("address", "state"),
		Zip:         contact.TextAt("address", "zip"),
	}
	candidate.CustomerType = customerTypeFor(candidate.CompanyName)
	if candidate.DisplayName() == "" {
		return nil
	}
	return candidate
}

/* generic fallback: union probes across the known shapes */

func genericDialect() *Dialect {
	return &Dialect{
		Name:   "generic",
		Detect: func(root *Node) bool { return true },
		ExtractDocument: func(root *Node) *DocumentCandidate {
			return &DocumentCandidate{
				DocumentId:   firstTextDeep(root, "DocumentID", "documentId", "EstimateID", "RqUID"),
				DocumentType: "Estimate",
				SourceSystem: firstTextDeep(root, "SourceSystem", "sourceSystem"),
				Version:      firstTextDeep(root, "BMSVer", "Version", "version"),
			}
		},
		ExtractCustomers: func(root *Node) []*CustomerCandidate {
			scope := root
			for _, name := range []string{"Owner", "owner", "CustomerInfo", "customer"} {
				if n := root.First(name); n != nil {
					scope = n
					break
				}
			}
			candidate := &CustomerCandidate{
				Role:        CustomerRoleOwner,
				FirstName:   firstTextDeep(scope, "FirstName", "firstName"),
				LastName:    firstTextDeep(scope, "LastName", "lastName"),
				CompanyName: firstTextDeep(scope, "CompanyName", "BusinessName", "company"),
				Phone:       normalizedPhone(firstTextDeep(scope, "CommPhone", "PhoneNumber", "phone")),
				Email:       firstTextDeep(scope, "CommEmail", "EmailAddress", "email"),
				Address:     firstTextDeep(scope, "Addr1", "Address1", "line1"),
				City:        firstTextDeep(scope, "City", "city"),
				State:       firstTextDeep(scope, "StateProv", "State", "state"),
				Zip:         firstTextDeep(scope, "PostalCode", "ZipCode", "zip"),
			}
			candidate.CustomerType = customerTypeFor(candidate.CompanyName)
			if candidate.DisplayName() == "" {
				return nil
			}
			return []*CustomerCandidate{candidate}
		},
		ExtractVehicle: func(root *Node) *VehicleCandidate {
			var scope *Node
			for _, name := range []string{"VehicleInfo", "vehicle", "VehicleDesc"} {
				if n := root.First(name); n != nil {
					scope = n
					break
				}
			}
			if scope == nil {
				return nil
			}
			return &VehicleCandidate{
				Vin:          strings.ToUpper(firstTextDeep(scope, "VINNum", "VIN", "vin")),
				Year:         utils.ParseIntOrZero(firstTextDeep(scope, "ModelYear", "Year", "year")),
				Make:         firstTextDeep(scope, "MakeDesc", "Make", "make"),
				Model:        firstTextDeep(scope, "ModelName", "Model", "model"),
				Trim:         firstTextDeep(scope, "TrimCode", "Trim", "trim"),
				Color:        firstTextDeep(scope, "ExteriorColor", "Color", "color"),
				PaintCode:    firstTextDeep(scope, "PaintCode", "paintCode"),
				Plate:        firstTextDeep(scope, "LicPlateNum", "LicensePlate", "plate"),
				Odometer:     utils.ParseIntOrZero(firstTextDeep(scope, "OdometerReading", "Mileage", "odometer")),
				OdometerUnit: normalizeOdometerUnit(firstTextDeep(scope, "OdometerUOM", "MileageUnit", "odometerUnit")),
			}
		},
		ExtractClaim: func(root *Node) *ClaimCandidate {
			var scope *Node
			for _, name := range []string{"ClaimInfo", "InsuranceInfo", "claim"} {
				if n := root.First(name); n != nil {
					scope = n
					break
				}
			}
			if scope == nil {
				return nil
			}
			return &ClaimCandidate{
				ClaimNumber:     firstTextDeep(scope, "ClaimNum", "ClaimNumber", "claimNumber"),
				PolicyNumber:    firstTextDeep(scope, "PolicyNum", "PolicyNumber", "policyNumber"),
				Deductible:      utils.ParseDecimalOrZero(firstTextDeep(scope, "DeductibleAmt", "Deductible", "deductible")),
				InsurerName:     firstTextDeep(scope, "CompanyName", "CarrierName", "insurer"),
				AdjusterName:    firstTextDeep(scope, "AdjusterName"),
				AdjusterPhone:   normalizedPhone(firstTextDeep(scope, "AdjusterPhone")),
				AdjusterEmail:   firstTextDeep(scope, "AdjusterEmail"),
				LossDate:        parseLossDate(firstTextDeep(scope, "LossDateTime", "DateOfLoss", "lossDate")),
				LossDescription: firstTextDeep(scope, "LossDesc", "LossDescription", "lossDescription"),
			}
		},
		ExtractPartLines: func(root *Node) []*PartLineCandidate {
			var out []*PartLineCandidate
			lineNames := []string{"DamageLineInfo", "Line", "lines"}
			for _, name := range lineNames {
				nodes := root.All(name)
				if len(nodes) == 0 {
					continue
				}
				for _, line := range nodes {
					out = append(out, &PartLineCandidate{
						LineNo:        utils.ParseIntOrZero(firstTextDeep(line, "LineNum", "LineNumber", "lineNo")),
						PartNumber:    firstTextDeep(line, "PartNum", "PartNumber", "partNumber"),
						Description:   firstTextDeep(line, "LineDesc", "Description", "description"),
						Quantity:      utils.ParseDecimalOrZero(firstTextDeep(line, "PartQty", "Quantity", "qty")),
						UnitCost:      utils.ParseDecimalOrZero(firstTextDeep(line, "PartPrice", "UnitPrice", "unitCost")),
						TotalCost:     utils.ParseDecimalOrZero(firstTextDeep(line, "ExtendedPrice", "totalCost")),
						VendorName:    firstTextDeep(line, "VendorName", "Supplier", "vendor"),
						LaborHours:    utils.ParseDecimalOrZero(firstTextDeep(line, "LaborHours", "laborHours")),
						OperationType: firstTextDeep(line, "LaborType", "Operation", "operation"),
					})
				}
				break
			}
			return out
		},
	}
}
