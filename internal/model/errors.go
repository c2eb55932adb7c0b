package model

import "errors"

var (
	ErrKeyNotFound       = errors.New("key not found")
	ErrPostingNotFound   = errors.New("posting not found")
	ErrScanInFlight      = errors.New("scan already in flight")
	ErrSyncNotConfigured = errors.New("sheet sync is not configured")
	ErrInvalidWebhookURL = errors.New("invalid webhook url")
	ErrInvalidSheetID    = errors.New("invalid sheet id")
	ErrMissingCredential = errors.New("api key not found")
	ErrNothingToSync     = errors.New("no postings to sync")
	ErrNothingToExport   = errors.New("no postings to export")
)
