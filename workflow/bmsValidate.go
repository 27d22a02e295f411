package workflow

import (
	"fmt"
	"strings"

	"github.com/collisionworks/bodyshop_backend/models"
)

// ValidateEstimate is the gate between extraction and materialization. It
// returns every problem found, not just the first, so one round trip tells
// the submitter everything wrong with the file. An empty slice means the
// estimate may touch storage.
func ValidateEstimate(estimate *ExtractedEstimate) []string {
	var problems []string

	named := 0
	for _, customer := range estimate.Customers {
		if customer.DisplayName() != "" {
			named++
		}
	}
	if named == 0 {
		problems = append(problems, "no customer with a usable name found in document")
	}

	vehicle := estimate.Vehicle
	if vehicle == nil {
		problems = append(problems, "no vehicle found in document")
		return problems
	}

	vin := strings.TrimSpace(vehicle.Vin)
	switch {
	case vin == "":
		problems = append(problems, "vehicle is missing a VIN")
	case len(vin) != models.VinLength:
		problems = append(problems, fmt.Sprintf("vehicle VIN %q must be %d characters, got %d", vin, models.VinLength, len(vin)))
	}
	if vehicle.Year == 0 {
		problems = append(problems, "vehicle is missing a model year")
	}
	if strings.TrimSpace(vehicle.Make) == "" {
		problems = append(problems, "vehicle is missing a make")
	}
	if strings.TrimSpace(vehicle.Model) == "" {
		problems = append(problems, "vehicle is missing a model")
	}

	return problems
}
