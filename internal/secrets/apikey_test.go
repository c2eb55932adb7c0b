package secrets

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/amishk599/hiringintel/internal/model"
)

func TestAPIKey_RoundTrip(t *testing.T) {
	keyring.MockInit()

	if _, err := GetAPIKey(); !errors.Is(err, model.ErrMissingCredential) {
		t.Fatalf("GetAPIKey on empty keychain err = %v, want ErrMissingCredential", err)
	}

	if err := SetAPIKey("  sk-test  "); err != nil {
		t.Fatalf("SetAPIKey: %v", err)
	}
	got, err := GetAPIKey()
	if err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if got != "sk-test" {
		t.Errorf("GetAPIKey = %q, want sk-test", got)
	}

	if err := DeleteAPIKey(); err != nil {
		t.Fatalf("DeleteAPIKey: %v", err)
	}
	if _, err := GetAPIKey(); !errors.Is(err, model.ErrMissingCredential) {
		t.Errorf("after delete err = %v, want ErrMissingCredential", err)
	}
	// Deleting twice is fine.
	if err := DeleteAPIKey(); err != nil {
		t.Errorf("second DeleteAPIKey: %v", err)
	}
}

func TestSetAPIKey_RejectsEmpty(t *testing.T) {
	keyring.MockInit()
	if err := SetAPIKey("   "); err == nil {
		t.Fatal("expected error for blank key")
	}
}

func TestResolveAPIKey_Precedence(t *testing.T) {
	keyring.MockInit()
	t.Setenv(APIKeyEnv, "sk-env")

	if got := ResolveAPIKey(""); got != "sk-env" {
		t.Errorf("env fallback = %q, want sk-env", got)
	}

	if err := SetAPIKey("sk-keychain"); err != nil {
		t.Fatal(err)
	}
	if got := ResolveAPIKey(""); got != "sk-keychain" {
		t.Errorf("keychain = %q, want sk-keychain", got)
	}
	if got := ResolveAPIKey("sk-config"); got != "sk-config" {
		t.Errorf("config = %q, want sk-config", got)
	}
}

func TestGetAPIKey_KeychainError(t *testing.T) {
	keyring.MockInitWithError(errors.New("locked"))
	_, err := GetAPIKey()
	if err == nil || errors.Is(err, model.ErrMissingCredential) {
		t.Errorf("err = %v, want wrapped keychain error", err)
	}
}
