package utils

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestParseMoney(t *testing.T) {
	cases := map[string]string{
		"R$ 1.234,50": "1234.5",
		"1,234.50":    "1234.5",
		"-20":         "-20",
		"1.000":       "1000",
		"US$ 99.9":    "99.9",
		" 7,5 ":       "7.5",
	}
	for in, want := range cases {
		got, err := ParseMoney(in)
		if err != nil {
			t.Fatalf("ParseMoney(%q) unexpected error: %v", in, err)
		}
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("ParseMoney(%q) expected %s, got %s", in, want, got)
		}
	}
	if _, err := ParseMoney("abc"); err == nil {
		t.Fatalf("ParseMoney(%q) expected error", "abc")
	}
}

func TestNormalizePhoneE164(t *testing.T) {
	t.Setenv("PHONE_DEFAULT_REGION", "BR")
	got, ok := NormalizePhoneE164("(11) 98765-4321")
	if !ok || got != "+5511987654321" {
		t.Fatalf("NormalizePhoneE164 expected +5511987654321, got %q ok=%v", got, ok)
	}
	if _, ok := NormalizePhoneE164("123"); ok {
		t.Fatalf("NormalizePhoneE164(%q) expected invalid", "123")
	}
}

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]string{"a", "b", "a", "c", "b"})
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("UniqueSlice mismatch (-want +got):\n%s", diff)
	}
}

func TestViewOwnerIds(t *testing.T) {
	ctx := SetUserIdInContext(context.Background(), "me")
	ctx = SetViewOwnerIdsInContext(ctx, []string{"other", "me"})
	if diff := cmp.Diff([]string{"me"}, ViewOwnerIds(ctx)); diff != "" {
		t.Fatalf("regular user mismatch (-want +got):\n%s", diff)
	}
	ctx = SetIsAdminInContext(ctx, true)
	if diff := cmp.Diff([]string{"me", "other"}, ViewOwnerIds(ctx)); diff != "" {
		t.Fatalf("privileged user mismatch (-want +got):\n%s", diff)
	}
}

func TestExportObjectKey(t *testing.T) {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	key := ExportObjectKey("u1", "../merged-data.csv", now)
	prefix := "exports/u1/2024-03-04/"
	if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
		t.Fatalf("ExportObjectKey expected prefix %s, got %s", prefix, key)
	}
	if key[len(key)-len("-merged-data.csv"):] != "-merged-data.csv" {
		t.Fatalf("ExportObjectKey expected file name suffix, got %s", key)
	}
}

func TestOwnerLockWithoutRedis(t *testing.T) {
	release, err := OwnerLock(context.Background(), "u1", "Campaign", "Utils", "Test")
	if err != nil {
		t.Fatalf("OwnerLock error: %v", err)
	}
	release()
}
