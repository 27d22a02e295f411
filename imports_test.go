package main

import (
	"testing"

	"github.com/collisionworks/bodyshop_backend/workflow"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name     string
		fileName string
		data     string
		want     string
	}{
		{"xml extension", "estimate.xml", "{}", workflow.FormatXML},
		{"bms extension", "estimate.BMS", "{}", workflow.FormatXML},
		{"json extension", "estimate.json", "<a/>", workflow.FormatJSON},
		{"sniff xml", "upload.dat", "  <VehicleDamageEstimateAddRq/>", workflow.FormatXML},
		{"sniff json", "upload.dat", "\n{\"documentType\": \"AUDATEX\"}", workflow.FormatJSON},
		{"empty defaults to xml", "upload.dat", "", workflow.FormatXML},
	}
	for _, tc := range cases {
		if got := detectFormat(tc.fileName, []byte(tc.data)); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}
