package config

import (
	"os"
	"strings"
)

// AutoCreateRepairOrderDefault controls whether a BMS import creates a repair
// order when the request does not say either way.
//
// Set via env:
// - BMS_AUTO_CREATE_RO=false
func AutoCreateRepairOrderDefault() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("BMS_AUTO_CREATE_RO")))
	if v == "" {
		return true
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// BmsEventsTopic names the Pub/Sub topic that receives import-finalized
// events. Empty means event publishing is disabled.
//
// Set via env:
// - BMS_EVENTS_TOPIC=bms-import-events
func BmsEventsTopic() string {
	return strings.TrimSpace(os.Getenv("BMS_EVENTS_TOPIC"))
}
