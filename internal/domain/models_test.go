package domain

import (
	"reflect"
	"strings"
	"testing"
)

func TestUserModelTagContracts(t *testing.T) {
	typ := reflect.TypeOf(User{})

	login, ok := typ.FieldByName("LoginName")
	if !ok {
		t.Fatal("missing User.LoginName field")
	}
	if got := login.Tag.Get("json"); got != "loginName" {
		t.Fatalf("User.LoginName json tag mismatch: %q", got)
	}
	if !strings.Contains(login.Tag.Get("gorm"), "uniqueIndex") {
		t.Fatalf("User.LoginName gorm tag missing uniqueIndex: %q", login.Tag.Get("gorm"))
	}

	hash, ok := typ.FieldByName("PasswordHash")
	if !ok {
		t.Fatal("missing User.PasswordHash field")
	}
	if got := hash.Tag.Get("json"); got != "-" {
		t.Fatalf("User.PasswordHash must never serialize, json tag: %q", got)
	}
}

func TestRefreshTokenModelTagContracts(t *testing.T) {
	typ := reflect.TypeOf(RefreshToken{})

	token, ok := typ.FieldByName("Token")
	if !ok {
		t.Fatal("missing RefreshToken.Token field")
	}
	if got := token.Tag.Get("json"); got != "-" {
		t.Fatalf("RefreshToken.Token must never serialize, json tag: %q", got)
	}
	if !strings.Contains(token.Tag.Get("gorm"), "uniqueIndex") {
		t.Fatalf("RefreshToken.Token gorm tag missing uniqueIndex: %q", token.Tag.Get("gorm"))
	}

	for _, name := range []string{"UserID", "FamilyID", "ExpiresAt", "Revoked"} {
		f, ok := typ.FieldByName(name)
		if !ok {
			t.Fatalf("missing RefreshToken.%s field", name)
		}
		if !strings.Contains(f.Tag.Get("gorm"), "index") {
			t.Fatalf("RefreshToken.%s gorm tag missing index: %q", name, f.Tag.Get("gorm"))
		}
	}

	last, ok := typ.FieldByName("LastSeenAt")
	if !ok {
		t.Fatal("missing RefreshToken.LastSeenAt field")
	}
	if !strings.Contains(last.Tag.Get("gorm"), "not null") {
		t.Fatalf("RefreshToken.LastSeenAt gorm tag missing not null: %q", last.Tag.Get("gorm"))
	}
}
