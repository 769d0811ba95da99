package ingest

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `Campaign Name,Content Title,Content Network Name,Impression,Quartile100
Summer Launch,The Matrix,Pluto TV,1000,400
Summer Launch,Breaking Bad,Tubi,500,100
`

	records, skipped, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	r := records[0]
	if r.CampaignNameSrc != "Summer Launch" {
		t.Errorf("campaign name = %q", r.CampaignNameSrc)
	}
	if r.ContentTitle != "The Matrix" {
		t.Errorf("content title = %q", r.ContentTitle)
	}
	if r.NetworkName != "Pluto TV" {
		t.Errorf("network name = %q", r.NetworkName)
	}
	if r.Impressions != 1000 || r.Quartile100 != 400 {
		t.Errorf("counts = %d/%d, want 1000/400", r.Impressions, r.Quartile100)
	}
}

func TestParse_HeaderNormalization(t *testing.T) {
	// Upper-cased, padded headers still match.
	input := ` CAMPAIGN NAME , CONTENT TITLE , CONTENT NETWORK NAME , IMPRESSION , QUARTILE100
c,t,n,10,5
`

	records, _, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Impressions != 10 || records[0].Quartile100 != 5 {
		t.Errorf("counts = %d/%d, want 10/5", records[0].Impressions, records[0].Quartile100)
	}
}

func TestParse_LenientCounts(t *testing.T) {
	input := `Campaign Name,Content Title,Content Network Name,Impression,Quartile100
c,t,n,not-a-number,400
c,t,n,-50,abc
c,t,n,,
`

	records, _, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Impressions != 0 || records[0].Quartile100 != 400 {
		t.Errorf("row 0 counts = %d/%d, want 0/400", records[0].Impressions, records[0].Quartile100)
	}
	if records[1].Impressions != 0 || records[1].Quartile100 != 0 {
		t.Errorf("row 1 counts = %d/%d, want 0/0", records[1].Impressions, records[1].Quartile100)
	}
	if records[2].Impressions != 0 || records[2].Quartile100 != 0 {
		t.Errorf("row 2 counts = %d/%d, want 0/0", records[2].Impressions, records[2].Quartile100)
	}
}

func TestParse_SkipsEmptyRows(t *testing.T) {
	input := `Campaign Name,Content Title,Content Network Name,Impression,Quartile100
c,t,n,10,5
,,,,
c,t2,n,20,10
`

	records, skipped, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestParse_ShortRowsPadded(t *testing.T) {
	input := `Campaign Name,Content Title,Content Network Name,Impression,Quartile100
c,t
`

	records, _, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.NetworkName != "" || r.Impressions != 0 || r.Quartile100 != 0 {
		t.Errorf("missing fields not defaulted: %+v", r)
	}
}

func TestParse_EmptyFile(t *testing.T) {
	if _, _, err := Parse(strings.NewReader("")); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"100", 100},
		{" 100 ", 100},
		{"0", 0},
		{"-5", 0},
		{"abc", 0},
		{"", 0},
		{"1.5", 0},
	}

	for _, tt := range tests {
		if got := ParseCount(tt.in); got != tt.want {
			t.Errorf("ParseCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCampaignName(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"summer_launch.csv", "summer launch"},
		{"q3-delivery-report.csv", "q3 delivery report"},
		{"plain.csv", "plain"},
		{"mixed_sep-name.csv", "mixed sep name"},
	}

	for _, tt := range tests {
		if got := CampaignName(tt.file); got != tt.want {
			t.Errorf("CampaignName(%q) = %q, want %q", tt.file, got, tt.want)
		}
	}
}
