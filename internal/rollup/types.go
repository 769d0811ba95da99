package rollup

// App is one row of the app/network rollup, including the synthetic "Other"
// row. AppName is the first-seen original spelling for the grouping key.
type App struct {
	CampaignID   string  `json:"campaignID"`
	AppName      string  `json:"appName"`
	Impressions  int64   `json:"impressions"`
	Completes    int64   `json:"completes"`
	AvgVCR       float64 `json:"avgVCR"`
	ContentCount int     `json:"contentCount"`
}

// Genre is one row of the genre rollup.
type Genre struct {
	CampaignID   string  `json:"campaignID"`
	GenreCanon   string  `json:"genreCanon"`
	Impressions  int64   `json:"impressions"`
	Completes    int64   `json:"completes"`
	AvgVCR       float64 `json:"avgVCR"`
	ContentCount int     `json:"contentCount"`
}

// Content is one row of the content rollup: one entry per
// (campaign, content key, normalized network).
type Content struct {
	CampaignID  string  `json:"campaignID"`
	ContentKey  string  `json:"contentKey"`
	Title       string  `json:"contentTitle"`
	NetworkName string  `json:"networkName"`
	Impressions int64   `json:"impressions"`
	Completes   int64   `json:"completes"`
	AvgVCR      float64 `json:"avgVCR"`
}
