package workflow

import (
	"errors"
	"testing"
)

func TestParseDocument_XMLTree(t *testing.T) {
	data := []byte(`<?xml version="1.0"?>
<Estimate id="e-1">
  <Header>
    <DocumentID>DOC-42</DocumentID>
  </Header>
  <Lines>
    <Line><Num>1</Num></Line>
    <Line><Num>2</Num></Line>
  </Lines>
</Estimate>`)

	root, err := ParseDocument(data, FormatXML)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if root.Name != "Estimate" {
		t.Fatalf("expected root Estimate, got %q", root.Name)
	}
	if got := root.Attr("id"); got != "e-1" {
		t.Fatalf("expected attr id=e-1, got %q", got)
	}
	if got := root.TextAt("Header", "DocumentID"); got != "DOC-42" {
		t.Fatalf("expected DOC-42, got %q", got)
	}
	if got := len(root.All("Line")); got != 2 {
		t.Fatalf("expected 2 Line nodes, got %d", got)
	}
}

func TestParseDocument_XMLCaseInsensitiveLookup(t *testing.T) {
	root, err := ParseDocument([]byte(`<Doc><VINNum>abc</VINNum></Doc>`), FormatXML)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if root.First("vinnum") == nil {
		t.Fatal("expected case-insensitive node lookup to find VINNum")
	}
}

func TestParseDocument_MalformedXML(t *testing.T) {
	cases := map[string]string{
		"unbalanced":     `<Doc><Open></Doc>`,
		"empty":          ``,
		"multiple roots": `<A></A><B></B>`,
	}
	for name, data := range cases {
		if _, err := ParseDocument([]byte(data), FormatXML); err == nil {
			t.Errorf("%s: expected parse error, got nil", name)
		} else {
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("%s: expected *ParseError, got %T", name, err)
			}
		}
	}
}

func TestParseDocument_JSONTree(t *testing.T) {
	data := []byte(`{
  "documentType": "AUDATEX_ESTIMATE",
  "deductible": 500.25,
  "approved": true,
  "lines": [{"lineNo": 1}, {"lineNo": 2}]
}`)

	root, err := ParseDocument(data, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if got := root.TextAt("documentType"); got != "AUDATEX_ESTIMATE" {
		t.Fatalf("expected AUDATEX_ESTIMATE, got %q", got)
	}
	// Numbers stay in literal form so decimal parsing happens downstream.
	if got := root.TextAt("deductible"); got != "500.25" {
		t.Fatalf("expected 500.25, got %q", got)
	}
	if got := root.TextAt("approved"); got != "true" {
		t.Fatalf("expected true, got %q", got)
	}
	// Arrays become repeated children carrying the key name.
	if got := len(root.All("lines")); got != 2 {
		t.Fatalf("expected 2 lines nodes, got %d", got)
	}
}

func TestParseDocument_JSONTrailingData(t *testing.T) {
	if _, err := ParseDocument([]byte(`{"a": 1} {"b": 2}`), FormatJSON); err == nil {
		t.Fatal("expected trailing data to be rejected")
	}
}

func TestParseDocument_UnsupportedFormat(t *testing.T) {
	_, err := ParseDocument([]byte("a,b,c"), "csv")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError for unsupported format, got %v", err)
	}
}
