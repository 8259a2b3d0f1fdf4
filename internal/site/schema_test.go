package site

import "testing"

func TestValidateRawAcceptsFullConfig(t *testing.T) {
	raw := []byte(`{
		"title": "Field Notes",
		"author": "Jordan Mercer",
		"avatar_mode": "square",
		"links": [{"title": "GitHub", "url": "https://github.com/example"}],
		"storage": {"driver": "sqlite3", "dsn": "file:blog.db"}
	}`)
	if err := ValidateRaw(raw); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRawRejectsBadStorageSection(t *testing.T) {
	raw := []byte(`{
		"title": "Field Notes",
		"author": "Jordan Mercer",
		"storage": {"driver": "sqlite3"}
	}`)
	if err := ValidateRaw(raw); err == nil {
		t.Fatal("expected storage section without dsn to fail")
	}
}

func TestValidateRawRejectsBadAvatarMode(t *testing.T) {
	raw := []byte(`{
		"title": "Field Notes",
		"author": "Jordan Mercer",
		"avatar_mode": "circle"
	}`)
	if err := ValidateRaw(raw); err == nil {
		t.Fatal("expected unknown avatar mode to fail")
	}
}
