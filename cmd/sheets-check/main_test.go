package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseServiceAccount(t *testing.T) {
	sa, err := parseServiceAccount([]byte(`{"type":"service_account","project_id":"p","client_email":"bot@p.iam.gserviceaccount.com"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sa.ClientEmail != "bot@p.iam.gserviceaccount.com" || sa.ProjectID != "p" {
		t.Fatalf("unexpected account: %+v", sa)
	}

	for _, bad := range []string{`{`, `{"installed":{}}`, `{"type":"service_account"}`} {
		if _, err := parseServiceAccount([]byte(bad)); err == nil {
			t.Fatalf("expected error for %s", bad)
		}
	}
}

func TestLoadCredentials(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(p, []byte(`{"a":1}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("GOOGLE_CREDENTIALS", "")
	t.Setenv("GOOGLE_CREDENTIALS_FILE", "")

	if got, err := loadCredentials([]string{p}); err != nil || string(got) != `{"a":1}` {
		t.Fatalf("from arg: %q %v", got, err)
	}
	if _, err := loadCredentials(nil); err == nil {
		t.Fatalf("expected error without credentials")
	}
	t.Setenv("GOOGLE_CREDENTIALS_FILE", p)
	if got, err := loadCredentials(nil); err != nil || string(got) != `{"a":1}` {
		t.Fatalf("from file env: %q %v", got, err)
	}
	t.Setenv("GOOGLE_CREDENTIALS", `{"b":2}`)
	if got, _ := loadCredentials(nil); string(got) != `{"b":2}` {
		t.Fatalf("inline must win: %q", got)
	}
}
