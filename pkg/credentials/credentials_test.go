package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/William2207/uteshop/cli/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "credentials"), time.Hour)
}

func sampleCredentials() *Credentials {
	return &Credentials{
		AccessToken:  "T1",
		RefreshToken: "R1",
		User:         &models.User{ID: "u1", Name: "An", Email: "a@b.com"},
	}
}

// TestCredentialsIsExpired validates session expiration check
func TestCredentialsIsExpired(t *testing.T) {
	testCases := []struct {
		expiresAt time.Time
		expect    bool
		name      string
	}{
		{time.Now().Add(-1 * time.Hour), true, "past expiration"},
		{time.Now().Add(1 * time.Hour), false, "future expiration"},
		{time.Now().Add(-1 * time.Minute), true, "recently expired"},
		{time.Time{}, true, "zero value"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			creds := &Credentials{AccessToken: "token", ExpiresAt: tc.expiresAt}
			if got := creds.IsExpired(); got != tc.expect {
				t.Errorf("Expected IsExpired=%v, got %v", tc.expect, got)
			}
		})
	}
}

// TestCredentialsIsValid requires a token, a user and a live session
func TestCredentialsIsValid(t *testing.T) {
	user := &models.User{ID: "u1"}
	future := time.Now().Add(time.Hour)

	testCases := []struct {
		creds  Credentials
		expect bool
		name   string
	}{
		{Credentials{AccessToken: "T1", User: user, ExpiresAt: future}, true, "complete"},
		{Credentials{AccessToken: "", User: user, ExpiresAt: future}, false, "no token"},
		{Credentials{AccessToken: "T1", ExpiresAt: future}, false, "token without user"},
		{Credentials{AccessToken: "T1", User: user, ExpiresAt: time.Now().Add(-time.Hour)}, false, "expired"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.creds.IsValid(); got != tc.expect {
				t.Errorf("Expected IsValid=%v, got %v", tc.expect, got)
			}
		})
	}
}

func TestAccessTokenExpired(t *testing.T) {
	creds := &Credentials{}
	if creds.AccessTokenExpired() {
		t.Error("Unknown access expiry should be treated as live")
	}

	creds.AccessExpiresAt = time.Now().Add(-time.Second)
	if !creds.AccessTokenExpired() {
		t.Error("Past access expiry should be expired")
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := newTestStore(t)

	creds, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if creds != nil {
		t.Errorf("Expected nil credentials, got %+v", creds)
	}
}

func TestSaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(sampleCredentials()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected mode 0600, got %o", perm)
	}

	creds, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if creds == nil {
		t.Fatal("Expected credentials after save")
	}
	if creds.AccessToken != "T1" || creds.RefreshToken != "R1" {
		t.Errorf("Unexpected tokens %q/%q", creds.AccessToken, creds.RefreshToken)
	}
	if creds.User == nil || creds.User.Email != "a@b.com" {
		t.Errorf("Expected cached user, got %+v", creds.User)
	}
	if !creds.IsValid() {
		t.Error("Freshly saved credentials should be valid")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		if err := store.Save(sampleCredentials()); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the credentials file, found %d entries", len(entries))
	}
}

func TestLoadRemovesExpiredSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials")
	expired := NewStore(path, time.Nanosecond)
	if err := expired.Save(sampleCredentials()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	time.Sleep(time.Millisecond)

	creds, err := expired.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if creds != nil {
		t.Error("Expired session should not load")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expired credentials file should be removed")
	}
}

func TestUpdateTokens(t *testing.T) {
	testCases := []struct {
		name        string
		refresh     string
		wantRefresh string
	}{
		{"rotated refresh token", "R2", "R2"},
		{"refresh token omitted", "", "R1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newTestStore(t)
			if err := store.Save(sampleCredentials()); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			if err := store.UpdateTokens("T2", tc.refresh, time.Time{}); err != nil {
				t.Fatalf("UpdateTokens failed: %v", err)
			}

			creds, err := store.Load()
			if err != nil || creds == nil {
				t.Fatalf("Load failed: %v", err)
			}
			if creds.AccessToken != "T2" {
				t.Errorf("Expected access token T2, got %q", creds.AccessToken)
			}
			if creds.RefreshToken != tc.wantRefresh {
				t.Errorf("Expected refresh token %q, got %q", tc.wantRefresh, creds.RefreshToken)
			}
			if creds.User == nil {
				t.Error("UpdateTokens should keep the cached user")
			}
		})
	}
}

func TestUpdateTokensWithoutSession(t *testing.T) {
	store := newTestStore(t)

	if err := store.UpdateTokens("T2", "R2", time.Time{}); err != nil {
		t.Fatalf("UpdateTokens failed: %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("UpdateTokens should not create a session from nothing")
	}
}

func TestUpdateUser(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(sampleCredentials()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.UpdateUser(&models.User{ID: "u1", Name: "An Nguyen"}); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	creds, err := store.Load()
	if err != nil || creds == nil {
		t.Fatalf("Load failed: %v", err)
	}
	if creds.User == nil || creds.User.Name != "An Nguyen" {
		t.Errorf("Expected updated user, got %+v", creds.User)
	}
	if creds.AccessToken != "T1" || creds.RefreshToken != "R1" {
		t.Errorf("UpdateUser should keep the tokens, got %q/%q", creds.AccessToken, creds.RefreshToken)
	}
}

func TestUpdateUserAfterDelete(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(sampleCredentials()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if err := store.UpdateUser(&models.User{ID: "u1"}); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("UpdateUser should not bring back a deleted session")
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(sampleCredentials()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(); err != nil {
		t.Errorf("Deleting a missing file should succeed, got %v", err)
	}

	creds, _ := store.Load()
	if creds != nil {
		t.Error("Expected nil credentials after delete")
	}
}
