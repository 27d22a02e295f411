package workflow

import (
	"testing"
)

const cccEstimateXML = `<?xml version="1.0" encoding="UTF-8"?>
<VehicleDamageEstimateAddRq>
  <RqUID>7f3a</RqUID>
  <DocumentInfo>
    <BMSVer>2.01</BMSVer>
    <DocumentType>Estimate</DocumentType>
    <DocumentID>CCC-DOC-1001</DocumentID>
    <SourceSystem>CCC ONE</SourceSystem>
  </DocumentInfo>
  <AdminInfo>
    <Owner>
      <Party>
        <PersonInfo>
          <PersonName>
            <FirstName>Maria</FirstName>
            <LastName>Santos</LastName>
          </PersonName>
          <Communications>
            <CommPhone>5125550142</CommPhone>
            <CommEmail>maria.santos@example.com</CommEmail>
          </Communications>
          <Address>
            <Addr1>88 Oak Lane</Addr1>
            <City>Austin</City>
            <StateProv>TX</StateProv>
            <PostalCode>78701</PostalCode>
          </Address>
        </PersonInfo>
      </Party>
    </Owner>
    <InsuredParty>
      <Party>
        <OrgInfo>
          <CompanyName>Lone Star Fleet LLC</CompanyName>
        </OrgInfo>
      </Party>
    </InsuredParty>
  </AdminInfo>
  <ClaimInfo>
    <ClaimNum>CLM-2026-0091</ClaimNum>
    <PolicyInfo>
      <PolicyNum>POL-55821</PolicyNum>
      <DeductibleAmt>500.00</DeductibleAmt>
    </PolicyInfo>
    <InsuranceCompany>
      <CompanyName>State Farm</CompanyName>
    </InsuranceCompany>
    <LossInfo>
      <FactsOfLoss>
        <LossDateTime>2026-08-14T09:30:00</LossDateTime>
        <LossDesc>Rear-end collision at low speed</LossDesc>
      </FactsOfLoss>
    </LossInfo>
  </ClaimInfo>
  <VehicleInfo>
    <VINInfo>
      <VIN>
        <VINNum>1hgcm82633a004352</VINNum>
      </VIN>
    </VINInfo>
    <VehicleDesc>
      <ModelYear>2019</ModelYear>
      <MakeDesc>Honda</MakeDesc>
      <ModelName>Civic</ModelName>
      <TrimCode>EX</TrimCode>
      <ExteriorColor>Blue</ExteriorColor>
      <PaintCode>B-593M</PaintCode>
      <LicPlateNum>TX4821B</LicPlateNum>
      <OdometerReading>42110</OdometerReading>
      <OdometerUOM>mi</OdometerUOM>
    </VehicleDesc>
  </VehicleInfo>
  <DamageLineInfo>
    <LineNum>1</LineNum>
    <LineDesc>Rear bumper cover</LineDesc>
    <PartInfo>
      <PartNum>71501-TBA-A00</PartNum>
      <PartPrice>289.50</PartPrice>
      <PartQty>1</PartQty>
      <VendorName>Honda Parts Direct</VendorName>
    </PartInfo>
    <LaborInfo>
      <LaborHours>2.5</LaborHours>
      <LaborType>Body</LaborType>
    </LaborInfo>
  </DamageLineInfo>
  <DamageLineInfo>
    <LineNum>2</LineNum>
    <LineDesc>Blend rear quarter</LineDesc>
    <LaborInfo>
      <LaborHours>1.8</LaborHours>
      <LaborType>Refinish</LaborType>
    </LaborInfo>
  </DamageLineInfo>
</VehicleDamageEstimateAddRq>`

const mitchellEstimateXML = `<?xml version="1.0"?>
<MitchellEstimate>
  <EstimateHeader>
    <EstimateID>MIT-88412</EstimateID>
    <Version>7.1</Version>
  </EstimateHeader>
  <CustomerInfo>
    <FirstName>Dale</FirstName>
    <LastName>Brennan</LastName>
    <PhoneNumber>7375550180</PhoneNumber>
    <EmailAddress>dale.b@example.com</EmailAddress>
    <Address1>12 Pecan St</Address1>
    <City>Round Rock</City>
    <State>TX</State>
    <ZipCode>78664</ZipCode>
  </CustomerInfo>
  <InsuranceInfo>
    <ClaimNumber>CLM-7741</ClaimNumber>
    <PolicyNumber>MP-99-1220</PolicyNumber>
    <Deductible>1000</Deductible>
    <CarrierName>GEICO</CarrierName>
    <AdjusterName>R. Patel</AdjusterName>
    <AdjusterPhone>5125550111</AdjusterPhone>
    <DateOfLoss>2026-07-02</DateOfLoss>
    <LossDescription>Hail damage, hood and roof</LossDescription>
  </InsuranceInfo>
  <VehicleInfo>
    <VIN>2T1BURHE5JC014922</VIN>
    <Year>2018</Year>
    <Make>Toyota</Make>
    <Model>Corolla</Model>
    <Trim>LE</Trim>
    <Color>Silver</Color>
    <Mileage>61230</Mileage>
    <MileageUnit>mi</MileageUnit>
  </VehicleInfo>
  <EstimateLines>
    <Line>
      <LineNumber>1</LineNumber>
      <PartNumber>53301-02190</PartNumber>
      <Description>Hood panel</Description>
      <Quantity>1</Quantity>
      <UnitPrice>412.00</UnitPrice>
      <ExtendedPrice>412.00</ExtendedPrice>
      <Supplier>Toyota OEM</Supplier>
      <LaborHours>3.0</LaborHours>
      <Operation>Replace</Operation>
    </Line>
  </EstimateLines>
</MitchellEstimate>`

const audatexEstimateJSON = `{
  "documentType": "AUDATEX_ESTIMATE",
  "documentId": "ADX-55019",
  "version": "3.4",
  "owner": {
    "firstName": "Priya",
    "lastName": "Nair",
    "phone": "5125550177",
    "email": "priya.nair@example.com",
    "address": {"line1": "401 Cedar Ave", "city": "Austin", "state": "TX", "zip": "78745"}
  },
  "claim": {
    "claimNumber": "CLM-ADX-310",
    "policyNumber": "AX-2211",
    "deductible": "250.00",
    "insurer": "Progressive",
    "adjuster": {"name": "K. Wallace", "phone": "5125550122", "email": "kw@example.com"},
    "lossDate": "2026-06-20",
    "lossDescription": "Side impact, driver door"
  },
  "vehicle": {
    "vin": "3FA6P0H72HR248801",
    "year": "2017",
    "make": "Ford",
    "model": "Fusion",
    "trim": "SE",
    "color": "White",
    "odometer": "88410",
    "odometerUnit": "km"
  },
  "lines": [
    {"lineNo": 1, "partNumber": "DS7Z-5420124-A", "description": "Front door shell", "qty": 1, "unitCost": 610.25, "totalCost": 610.25, "vendor": "Ford Direct", "laborHours": 4.2, "operation": "Replace"},
    {"lineNo": 2, "description": "Refinish door", "laborHours": 2.0, "operation": "Refinish"}
  ]
}`

func mustParse(t *testing.T, data string, format string) *Node {
	t.Helper()
	root, err := ParseDocument([]byte(data), format)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return root
}

func TestDialectDetection(t *testing.T) {
	registry := DefaultDialects()

	cases := []struct {
		name   string
		root   *Node
		expect string
	}{
		{"ccc", mustParse(t, cccEstimateXML, FormatXML), "ccc"},
		{"mitchell", mustParse(t, mitchellEstimateXML, FormatXML), "mitchell"},
		{"audatex", mustParse(t, audatexEstimateJSON, FormatJSON), "audatex"},
		{"unknown falls back", mustParse(t, `<SomeEstimate><VIN>1</VIN></SomeEstimate>`, FormatXML), "generic"},
	}
	for _, tc := range cases {
		if got := registry.Detect(tc.root).Name; got != tc.expect {
			t.Errorf("%s: expected dialect %q, got %q", tc.name, tc.expect, got)
		}
	}
}

func TestRegisteredDialectWinsOverFallback(t *testing.T) {
	registry := DefaultDialects()
	registry.Register(&Dialect{
		Name:   "shoplink",
		Detect: func(root *Node) bool { return root.First("ShopLinkEstimate") != nil },
		ExtractVehicle: func(root *Node) *VehicleCandidate {
			return &VehicleCandidate{Vin: root.TextAt("ShopLinkEstimate", "Vin")}
		},
	})

	root := mustParse(t, `<Envelope><ShopLinkEstimate><Vin>JH4KA7561PC008941</Vin></ShopLinkEstimate></Envelope>`, FormatXML)
	dialect := registry.Detect(root)
	if dialect.Name != "shoplink" {
		t.Fatalf("expected registered dialect to match, got %q", dialect.Name)
	}
	vehicle := dialect.ExtractVehicle(root)
	if vehicle == nil || vehicle.Vin != "JH4KA7561PC008941" {
		t.Fatalf("expected registered extractor to run, got %+v", vehicle)
	}
	// Known dialects still match first.
	if got := registry.Detect(mustParse(t, cccEstimateXML, FormatXML)).Name; got != "ccc" {
		t.Fatalf("expected ccc, got %q", got)
	}
}
