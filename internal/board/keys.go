package board

// Store keys. The _v1 suffix is bumped whenever a value's encoding changes.
const (
	KeyPostings   = "hiring_intel_jobs_v1"
	KeyLastScan   = "hiring_intel_last_scan_v1"
	KeyLastSync   = "hiring_intel_last_sync_v1"
	KeyWebhookURL = "hiring_intel_sheet_url_v1"
	KeySheetID    = "hiring_intel_sheet_id_v1"
)
