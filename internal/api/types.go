package api

import (
	"github.com/reachreport/ctv-rollup/internal/rollup"
	"github.com/reachreport/ctv-rollup/internal/storage"
)

// CampaignListResponse lists all campaigns, newest first.
type CampaignListResponse struct {
	Campaigns []storage.Campaign `json:"campaigns"`
	Total     int                `json:"total"`
}

// CampaignResponse wraps a single campaign.
type CampaignResponse struct {
	Campaign storage.Campaign `json:"campaign"`
}

// UploadListResponse lists the ingested files for a campaign.
type UploadListResponse struct {
	Uploads []storage.Upload `json:"uploads"`
	Total   int              `json:"total"`
}

// IngestResponse summarizes one accepted file ingestion.
type IngestResponse struct {
	Campaign IngestCampaign `json:"campaign"`
	Upload   IngestUpload   `json:"upload"`
	Content  IngestContent  `json:"content"`
}

// IngestCampaign identifies the campaign created for an ingestion.
type IngestCampaign struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IngestUpload identifies the recorded upload.
type IngestUpload struct {
	FileName   string `json:"fileName"`
	StoredPath string `json:"storedPath"`
}

// IngestContent reports row counts for an ingestion.
type IngestContent struct {
	RowsProcessed int `json:"rowsProcessed"`
	RowsInserted  int `json:"rowsInserted"`
	RowsSkipped   int `json:"rowsSkipped"`
}

// AppRollupResponse carries the app/network rollup.
type AppRollupResponse struct {
	Rows  []rollup.App `json:"rows"`
	Total int          `json:"total"`
}

// GenreRollupResponse carries the genre rollup.
type GenreRollupResponse struct {
	Rows  []rollup.Genre `json:"rows"`
	Total int            `json:"total"`
}

// ContentRollupResponse carries the content rollup.
type ContentRollupResponse struct {
	Rows  []rollup.Content `json:"rows"`
	Total int              `json:"total"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents readiness check response
type ReadyResponse struct {
	Ready   bool     `json:"ready"`
	Reasons []string `json:"reasons,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
