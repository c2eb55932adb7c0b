package sheets

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/amishk599/hiringintel/internal/model"
)

var sheetIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{20,}$`)

// ValidateWebhookURL trims raw and checks that it looks like an Apps Script
// deployment URL rather than the editor URL.
func ValidateWebhookURL(raw string) (string, error) {
	u := strings.TrimSpace(raw)
	if !strings.Contains(u, "script.google.com") {
		return "", fmt.Errorf("%w: that doesn't look like a Google Script URL", model.ErrInvalidWebhookURL)
	}
	if !strings.HasSuffix(u, "/exec") {
		return "", fmt.Errorf("%w: must end in /exec (copy the deployment URL, not the browser URL)", model.ErrInvalidWebhookURL)
	}
	return u, nil
}

// ValidateSheetID trims raw and checks it has the shape of a spreadsheet ID.
func ValidateSheetID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", fmt.Errorf("%w: sheet id is empty", model.ErrInvalidSheetID)
	}
	if !sheetIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q is not a spreadsheet id", model.ErrInvalidSheetID, id)
	}
	return id, nil
}
