package rollup

import (
	"testing"

	"github.com/reachreport/ctv-rollup/internal/normalize"
	"github.com/reachreport/ctv-rollup/internal/storage"
)

func row(campaignID, title, network string, impressions, completes int64) storage.ContentRow {
	return storage.ContentRow{
		CampaignID:   campaignID,
		ContentTitle: title,
		NetworkName:  network,
		Impressions:  impressions,
		Quartile100:  completes,
	}
}

func emptyTables() *normalize.Tables {
	return normalize.NewTables(nil, nil)
}

func TestApps_OtherBucket(t *testing.T) {
	rows := []storage.ContentRow{
		row("c1", "A", "Pluto TV", 1500, 600),
		row("c1", "B", "Tubi", 800, 200),
		row("c1", "C", "Plex", 200, 50),
	}

	apps := Apps(rows, "c1")

	if len(apps) != 2 {
		t.Fatalf("expected 2 rows (one significant, one Other), got %d", len(apps))
	}

	if apps[0].AppName != "Pluto TV" || apps[0].Impressions != 1500 {
		t.Errorf("first row = %q/%d, want Pluto TV/1500", apps[0].AppName, apps[0].Impressions)
	}

	other := apps[1]
	if other.AppName != OtherLabel {
		t.Fatalf("second row = %q, want %q", other.AppName, OtherLabel)
	}
	if other.Impressions != 1000 {
		t.Errorf("Other impressions = %d, want 1000", other.Impressions)
	}
	if other.Completes != 250 {
		t.Errorf("Other completes = %d, want 250", other.Completes)
	}
	if other.CampaignID != "c1" {
		t.Errorf("Other campaign id = %q, want c1", other.CampaignID)
	}
	if other.ContentCount != 2 {
		t.Errorf("Other content count = %d, want 2", other.ContentCount)
	}
}

func TestApps_OtherAbsentWhenEmpty(t *testing.T) {
	rows := []storage.ContentRow{
		row("c1", "A", "Pluto TV", 1500, 600),
		row("c1", "B", "Tubi", 2000, 200),
	}

	apps := Apps(rows, "c1")

	if len(apps) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(apps))
	}
	for _, a := range apps {
		if a.AppName == OtherLabel {
			t.Errorf("Other row emitted with nothing below the threshold")
		}
	}
}

func TestApps_OtherUnscopedCampaignID(t *testing.T) {
	rows := []storage.ContentRow{
		row("c1", "A", "Pluto TV", 100, 10),
		row("c2", "B", "Tubi", 200, 20),
	}

	apps := Apps(rows, "")

	if len(apps) != 1 {
		t.Fatalf("expected a single Other row, got %d rows", len(apps))
	}
	if apps[0].AppName != OtherLabel {
		t.Fatalf("row = %q, want %q", apps[0].AppName, OtherLabel)
	}
	if apps[0].CampaignID != "unknown" {
		t.Errorf("unscoped Other campaign id = %q, want unknown", apps[0].CampaignID)
	}
}

func TestApps_CaseInsensitiveGrouping(t *testing.T) {
	rows := []storage.ContentRow{
		row("c1", "A", "Pluto TV", 800, 100),
		row("c1", "B", "pluto tv ", 700, 200),
	}

	apps := Apps(rows, "c1")

	if len(apps) != 1 {
		t.Fatalf("expected variants grouped into 1 row, got %d", len(apps))
	}
	if apps[0].AppName != "Pluto TV" {
		t.Errorf("display name = %q, want first-seen spelling Pluto TV", apps[0].AppName)
	}
	if apps[0].Impressions != 1500 {
		t.Errorf("impressions = %d, want 1500", apps[0].Impressions)
	}
	if apps[0].ContentCount != 2 {
		t.Errorf("content count = %d, want 2", apps[0].ContentCount)
	}
}

func TestApps_EmptyNetworkGroupsAsUnknown(t *testing.T) {
	rows := []storage.ContentRow{
		row("c1", "A", "", 1200, 100),
		row("c1", "B", "  ", 800, 50),
	}

	apps := Apps(rows, "c1")

	if len(apps) != 1 {
		t.Fatalf("expected empty networks grouped into 1 row, got %d", len(apps))
	}
	if apps[0].AppName != normalize.UnknownLabel {
		t.Errorf("display name = %q, want %q", apps[0].AppName, normalize.UnknownLabel)
	}
	if apps[0].Impressions != 2000 {
		t.Errorf("impressions = %d, want 2000", apps[0].Impressions)
	}
}

func TestApps_SumConservation(t *testing.T) {
	rows := []storage.ContentRow{
		row("c1", "A", "Pluto TV", 1500, 600),
		row("c1", "B", "Tubi", 800, 200),
		row("c1", "C", "Plex", 200, 50),
		row("c1", "D", "", 90, 10),
	}

	var wantImpressions, wantCompletes int64
	for _, r := range rows {
		wantImpressions += r.Impressions
		wantCompletes += r.Quartile100
	}

	var gotImpressions, gotCompletes int64
	for _, a := range Apps(rows, "c1") {
		gotImpressions += a.Impressions
		gotCompletes += a.Completes
	}

	if gotImpressions != wantImpressions {
		t.Errorf("impressions sum = %d, want %d", gotImpressions, wantImpressions)
	}
	if gotCompletes != wantCompletes {
		t.Errorf("completes sum = %d, want %d", gotCompletes, wantCompletes)
	}
}

func TestApps_DescendingOrderStableTies(t *testing.T) {
	rows := []storage.ContentRow{
		row("c1", "A", "First", 2000, 1),
		row("c1", "B", "Second", 2000, 2),
		row("c1", "C", "Biggest", 5000, 3),
	}

	apps := Apps(rows, "c1")

	if len(apps) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(apps))
	}
	if apps[0].AppName != "Biggest" {
		t.Errorf("first row = %q, want Biggest", apps[0].AppName)
	}
	// Equal impressions keep first-seen input order.
	if apps[1].AppName != "First" || apps[2].AppName != "Second" {
		t.Errorf("tie order = %q, %q; want First, Second", apps[1].AppName, apps[2].AppName)
	}
}

func TestApps_Empty(t *testing.T) {
	if apps := Apps(nil, "c1"); len(apps) != 0 {
		t.Errorf("expected no rows for no input, got %d", len(apps))
	}
}

func TestApps_Deterministic(t *testing.T) {
	rows := []storage.ContentRow{
		row("c1", "A", "Pluto TV", 1500, 600),
		row("c1", "B", "Tubi", 1500, 200),
		row("c1", "C", "Plex", 200, 50),
		row("c1", "D", "Xumo", 300, 60),
	}

	first := Apps(rows, "c1")
	for i := 0; i < 10; i++ {
		again := Apps(rows, "c1")
		if len(again) != len(first) {
			t.Fatalf("run %d: length %d, want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d: row %d = %+v, want %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestGenres(t *testing.T) {
	tables := normalize.NewTables(nil, []normalize.GenreMapping{
		{RawGenre: "Pluto TV", GenreCanon: "Entertainment"},
		{RawGenre: "Tubi", GenreCanon: "Entertainment"},
	})

	rows := []storage.ContentRow{
		row("c1", "A", "Pluto TV", 1000, 400),
		row("c1", "B", "Tubi", 500, 100),
		row("c1", "C", "Plex", 300, 30),
	}

	genres := Genres(rows, tables)

	if len(genres) != 2 {
		t.Fatalf("expected 2 genre rows, got %d", len(genres))
	}
	if genres[0].GenreCanon != "Entertainment" || genres[0].Impressions != 1500 {
		t.Errorf("first row = %q/%d, want Entertainment/1500", genres[0].GenreCanon, genres[0].Impressions)
	}
	if genres[1].GenreCanon != normalize.UnknownLabel || genres[1].Impressions != 300 {
		t.Errorf("second row = %q/%d, want %s/300", genres[1].GenreCanon, genres[1].Impressions, normalize.UnknownLabel)
	}
	if genres[0].AvgVCR != VCR(500, 1500) {
		t.Errorf("AvgVCR = %v, want %v", genres[0].AvgVCR, VCR(500, 1500))
	}
}

func TestGenres_NoOtherBucket(t *testing.T) {
	// The low-volume policy applies only to the app rollup.
	rows := []storage.ContentRow{
		row("c1", "A", "Plex", 10, 1),
	}

	genres := Genres(rows, emptyTables())

	if len(genres) != 1 {
		t.Fatalf("expected 1 row, got %d", len(genres))
	}
	if genres[0].GenreCanon != normalize.UnknownLabel {
		t.Errorf("genre = %q, want %q", genres[0].GenreCanon, normalize.UnknownLabel)
	}
}

func TestContents_AliasCollapsesVariants(t *testing.T) {
	tables := normalize.NewTables([]normalize.Alias{
		{TitleCanon: "the matrix", ContentKey: "matrix_1999"},
		{TitleCanon: "matrix", ContentKey: "matrix_1999"},
	}, nil)

	rows := []storage.ContentRow{
		row("c1", "The Matrix", "Pluto TV", 500, 100),
		row("c1", "MATRIX", "pluto tv", 300, 60),
	}

	contents := Contents(rows, tables)

	if len(contents) != 1 {
		t.Fatalf("expected alias variants grouped into 1 row, got %d", len(contents))
	}
	c := contents[0]
	if c.ContentKey != "matrix_1999" {
		t.Errorf("content key = %q, want matrix_1999", c.ContentKey)
	}
	if c.Title != "The Matrix" {
		t.Errorf("title = %q, want first-seen The Matrix", c.Title)
	}
	if c.Impressions != 800 || c.Completes != 160 {
		t.Errorf("totals = %d/%d, want 800/160", c.Impressions, c.Completes)
	}
}

func TestContents_NetworkSplitsGroups(t *testing.T) {
	rows := []storage.ContentRow{
		row("c1", "The Matrix", "Pluto TV", 500, 100),
		row("c1", "The Matrix", "Tubi", 300, 60),
	}

	contents := Contents(rows, emptyTables())

	if len(contents) != 2 {
		t.Fatalf("same title on different networks must stay separate, got %d rows", len(contents))
	}
}

func TestContents_EmptyTitleFallback(t *testing.T) {
	rows := []storage.ContentRow{
		row("c1", "", "Pluto TV", 500, 100),
		row("c1", "", "Pluto TV", 300, 60),
	}

	contents := Contents(rows, emptyTables())

	if len(contents) != 1 {
		t.Fatalf("expected 1 row, got %d", len(contents))
	}
	if contents[0].Title != "Pluto TV - Unknown Content" {
		t.Errorf("title = %q, want Pluto TV - Unknown Content", contents[0].Title)
	}
	if contents[0].Impressions != 800 {
		t.Errorf("impressions = %d, want 800", contents[0].Impressions)
	}
}
