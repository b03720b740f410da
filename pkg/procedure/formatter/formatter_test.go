// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package formatter

import (
	"strings"
	"testing"

	"github.com/go-rotorsim/rotorsim/pkg/procedure/indicator"
)

func TestGroupTextGroupsAndWraps(t *testing.T) {
	got := GroupText("abcdefghij", true, 5, 1)
	want := "ABCDE\nFGHIJ"
	if got != want {
		t.Errorf("GroupText() = %q, want %q", got, want)
	}
}

func TestGenericFormatterRoundTrip(t *testing.T) {
	f := NewGenericFormatter([]string{"rand_indicator"}, 5)
	indicators := indicator.Result{"rand_indicator": "abcde"}

	body := f.FormatBody("thequickbrownfox", indicators)
	if body.NumChars != 16 {
		t.Errorf("NumChars = %d, want 16", body.NumChars)
	}
	header := f.FormatHeader(body, indicators, 1, 1)

	parsed, err := f.ParseCiphertextHeader(indicator.Result{}, header)
	if err != nil {
		t.Fatalf("ParseCiphertextHeader: %v", err)
	}
	if parsed["rand_indicator"] != "abcde" {
		t.Errorf("parsed rand_indicator = %q, want %q", parsed["rand_indicator"], "abcde")
	}

	parsedBody, err := f.ParseCiphertextBody(strings.ReplaceAll(body.Text, "\n", ""))
	if err != nil {
		t.Fatalf("ParseCiphertextBody: %v", err)
	}
	if parsedBody.Text != "thequickbrownfox" {
		t.Errorf("parsed body text = %q, want %q", parsedBody.Text, "thequickbrownfox")
	}
}

func TestEnigmaFormatterRoundTrip(t *testing.T) {
	f := NewEnigmaFormatter(3)
	indicators := indicator.Result{
		indicator.Kenngruppe:  "abcde",
		indicator.HeaderGrp1:  "xyz",
		indicator.HeaderGrp2:  "qrs",
	}

	body := f.FormatBody("hello", indicators)
	header := f.FormatHeader(body, indicators, 1, 1)

	parsedHeader, err := f.ParseCiphertextHeader(indicator.Result{}, header)
	if err != nil {
		t.Fatalf("ParseCiphertextHeader: %v", err)
	}
	if parsedHeader[indicator.HeaderGrp1] != "xyz" || parsedHeader[indicator.HeaderGrp2] != "qrs" {
		t.Errorf("parsed header groups = %+v", parsedHeader)
	}

	parsedBody, err := f.ParseCiphertextBody(strings.ReplaceAll(body.Text, "\n", ""))
	if err != nil {
		t.Fatalf("ParseCiphertextBody: %v", err)
	}
	if parsedBody.Indicators[indicator.Kenngruppe] != "abcde" {
		t.Errorf("parsed kenngruppe = %q, want %q", parsedBody.Indicators[indicator.Kenngruppe], "abcde")
	}
	if parsedBody.Text != "hello" {
		t.Errorf("parsed body text = %q, want %q", parsedBody.Text, "hello")
	}
}

func TestEnigmaFormatterRejectsShortBody(t *testing.T) {
	f := NewEnigmaFormatter(3)
	if _, err := f.ParseCiphertextBody("ab"); err == nil {
		t.Errorf("expected an error for a body shorter than one group")
	}
}

func TestSIGABAFormatterRoundTrip(t *testing.T) {
	f := NewSIGABAFormatter()
	indicators := indicator.Result{indicator.InternalIndicator: "wxyzp"}

	body := f.FormatBody("attackatdawn", indicators)
	if body.NumChars != len("attackatdawn") {
		t.Errorf("NumChars = %d, want %d", body.NumChars, len("attackatdawn"))
	}

	parsedBody, err := f.ParseCiphertextBody(body.Text)
	if err != nil {
		t.Fatalf("ParseCiphertextBody: %v", err)
	}
	if parsedBody.Indicators[indicator.InternalIndicator] != "wxyzp" {
		t.Errorf("parsed internal indicator = %q, want %q", parsedBody.Indicators[indicator.InternalIndicator], "wxyzp")
	}
	if parsedBody.Indicators[indicator.ExternalIndicator] != "aaaaa" {
		t.Errorf("parsed external indicator = %q, want %q", parsedBody.Indicators[indicator.ExternalIndicator], "aaaaa")
	}
	if !strings.HasPrefix(parsedBody.Text, "attackatdawn") {
		t.Errorf("parsed body text = %q, want prefix %q", parsedBody.Text, "attackatdawn")
	}

	header := f.FormatHeader(body, indicators, 2, 5)
	parsedHeader, err := f.ParseCiphertextHeader(indicator.Result{}, header)
	if err != nil {
		t.Fatalf("ParseCiphertextHeader: %v", err)
	}
	if parsedHeader[MessageLength] != "12" {
		t.Errorf("MessageLength = %q, want %q", parsedHeader[MessageLength], "12")
	}
}

func TestSIGABAFormatterRejectsInconsistentIndicators(t *testing.T) {
	f := NewSIGABAFormatter()
	_, err := f.ParseCiphertextBody("AAAAA WXYZP ATTAC KATDA WNXXX ZZZZZ BBBBB")
	if err == nil {
		t.Errorf("expected an error when the bracketing indicator groups disagree")
	}
}
