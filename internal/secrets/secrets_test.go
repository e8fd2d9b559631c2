package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrCreate_CreatesKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".age-key")

	kr, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions = %o, want 0600", info.Mode().Perm())
	}

	again, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("second LoadOrCreate: %v", err)
	}
	if again.Recipient() != kr.Recipient() {
		t.Error("second call generated a new identity")
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), ".age-key"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestSealUnseal(t *testing.T) {
	kr, err := LoadOrCreate(filepath.Join(t.TempDir(), ".age-key"))
	if err != nil {
		t.Fatal(err)
	}

	for _, plaintext := range []string{"AIza-secret-key", ""} {
		sealed, err := kr.Seal(plaintext)
		if err != nil {
			t.Fatalf("Seal(%q): %v", plaintext, err)
		}
		if !IsSealed(sealed) {
			t.Errorf("IsSealed(%q) = false", sealed)
		}

		got, err := kr.Unseal(sealed)
		if err != nil {
			t.Fatalf("Unseal: %v", err)
		}
		if got != plaintext {
			t.Errorf("Unseal = %q, want %q", got, plaintext)
		}
	}
}

func TestUnseal_WrongKey(t *testing.T) {
	dir := t.TempDir()
	a, _ := LoadOrCreate(filepath.Join(dir, "a"))
	b, _ := LoadOrCreate(filepath.Join(dir, "b"))

	sealed, err := a.Seal("secret")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Unseal(sealed); err == nil {
		t.Error("expected error unsealing with another identity")
	}
	if _, err := a.Unseal("plain"); !errors.Is(err, ErrNotSealed) {
		t.Errorf("err = %v, want ErrNotSealed", err)
	}
}

func TestIsSealed(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"ENC[age:abc123]", true},
		{"ENC[age:]", true},
		{"plaintext", false},
		{"ENC[age:abc123", false},
		{"age:abc123]", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSealed(tt.input); got != tt.want {
			t.Errorf("IsSealed(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestUnsealEnv(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), ".age-key")
	kr, err := LoadOrCreate(keyPath)
	if err != nil {
		t.Fatal(err)
	}
	sealed, err := kr.Seal("real-key")
	if err != nil {
		t.Fatal(err)
	}

	t.Setenv("PAL_TEST_SEALED", sealed)
	t.Setenv("PAL_TEST_PLAIN", "untouched")

	if err := UnsealEnv(keyPath, "PAL_TEST_SEALED", "PAL_TEST_PLAIN", "PAL_TEST_UNSET"); err != nil {
		t.Fatalf("UnsealEnv: %v", err)
	}
	if got := os.Getenv("PAL_TEST_SEALED"); got != "real-key" {
		t.Errorf("PAL_TEST_SEALED = %q", got)
	}
	if got := os.Getenv("PAL_TEST_PLAIN"); got != "untouched" {
		t.Errorf("PAL_TEST_PLAIN = %q", got)
	}
}

func TestUnsealEnv_MissingKey(t *testing.T) {
	t.Setenv("PAL_TEST_SEALED", "ENC[age:AAAA]")

	err := UnsealEnv(filepath.Join(t.TempDir(), ".age-key"), "PAL_TEST_SEALED")
	if err == nil {
		t.Fatal("expected error without a key file")
	}
}
