// Package rollup computes the derived aggregate views over raw content rows.
// Rollups are never stored: every query recomputes from scratch so the
// latest rows and reference tables are always reflected. Grouping keys are
// tracked in first-seen order, which makes tie ordering after the descending
// sort deterministic.
package rollup

import (
	"sort"

	"github.com/reachreport/ctv-rollup/internal/normalize"
	"github.com/reachreport/ctv-rollup/internal/storage"
)

// OtherThreshold is the minimum impression count for a network to appear as
// its own app rollup row. Groups below it are folded into one "Other" row so
// long-tail low-volume networks stay out of the ranked report.
const OtherThreshold = 1000

// OtherLabel names the synthetic low-volume app rollup row.
const OtherLabel = "Other"

type appKey struct {
	campaignID string
	network    string
}

// Apps groups rows by (campaign, normalized network name), applies the
// low-volume "Other" policy, and orders by impressions descending.
// campaignID names the synthetic Other row for a scoped query; pass "" for
// the unscoped query.
func Apps(rows []storage.ContentRow, campaignID string) []App {
	groups := make(map[appKey]*App)
	var order []appKey

	for _, row := range rows {
		key := appKey{row.CampaignID, normalize.NetworkKey(row.NetworkName)}
		g, ok := groups[key]
		if !ok {
			g = &App{
				CampaignID: row.CampaignID,
				AppName:    normalize.NetworkDisplay(row.NetworkName),
			}
			groups[key] = g
			order = append(order, key)
		}
		g.Impressions += row.Impressions
		g.Completes += row.Quartile100
		g.ContentCount++
	}

	var significant []App
	var other App
	hasOther := false

	for _, key := range order {
		g := groups[key]
		g.AvgVCR = VCR(g.Completes, g.Impressions)
		if g.Impressions >= OtherThreshold {
			significant = append(significant, *g)
		} else {
			other.Impressions += g.Impressions
			other.Completes += g.Completes
			other.ContentCount += g.ContentCount
			hasOther = true
		}
	}

	if hasOther {
		other.AppName = OtherLabel
		other.CampaignID = campaignID
		if other.CampaignID == "" {
			other.CampaignID = "unknown"
		}
		other.AvgVCR = VCR(other.Completes, other.Impressions)
		significant = append(significant, other)
	}

	sort.SliceStable(significant, func(i, j int) bool {
		return significant[i].Impressions > significant[j].Impressions
	})
	return significant
}

type genreKey struct {
	campaignID string
	genre      string
}

// Genres groups rows by (campaign, canonical genre) and orders by
// impressions descending. The genre is resolved from the raw network name
// through the mapping snapshot.
func Genres(rows []storage.ContentRow, tables *normalize.Tables) []Genre {
	groups := make(map[genreKey]*Genre)
	var order []genreKey

	for _, row := range rows {
		key := genreKey{row.CampaignID, tables.Genre(row.NetworkName)}
		g, ok := groups[key]
		if !ok {
			g = &Genre{
				CampaignID: row.CampaignID,
				GenreCanon: key.genre,
			}
			groups[key] = g
			order = append(order, key)
		}
		g.Impressions += row.Impressions
		g.Completes += row.Quartile100
		g.ContentCount++
	}

	out := make([]Genre, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.AvgVCR = VCR(g.Completes, g.Impressions)
		out = append(out, *g)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Impressions > out[j].Impressions
	})
	return out
}

type contentKey struct {
	campaignID string
	content    string
	network    string
}

// Contents groups rows by (campaign, content key, normalized network name)
// and orders by impressions descending. Empty titles get a network-derived
// placeholder before key derivation so keys are never empty.
func Contents(rows []storage.ContentRow, tables *normalize.Tables) []Content {
	groups := make(map[contentKey]*Content)
	var order []contentKey

	for _, row := range rows {
		title := normalize.FallbackTitle(row.ContentTitle, row.NetworkName)
		key := contentKey{
			campaignID: row.CampaignID,
			content:    tables.ContentKey(title),
			network:    normalize.NetworkKey(row.NetworkName),
		}
		g, ok := groups[key]
		if !ok {
			g = &Content{
				CampaignID:  row.CampaignID,
				ContentKey:  key.content,
				Title:       title,
				NetworkName: normalize.NetworkDisplay(row.NetworkName),
			}
			groups[key] = g
			order = append(order, key)
		}
		g.Impressions += row.Impressions
		g.Completes += row.Quartile100
	}

	out := make([]Content, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.AvgVCR = VCR(g.Completes, g.Impressions)
		out = append(out, *g)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Impressions > out[j].Impressions
	})
	return out
}
