package auth

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		raw     string
		want    Role
		wantErr bool
	}{
		{raw: "user", want: RoleUser},
		{raw: "ADMIN", want: RoleAdmin},
		{raw: "  superadmin  ", want: RoleSuperadmin},
		{raw: "Pending", want: RolePending},
		{raw: "", wantErr: true},
		{raw: "owner", wantErr: true},
		{raw: "users", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseRole(%q): expected error", tc.raw)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("ParseRole(%q): expected ErrInvalidInput, got %v", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRole(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RolePending, RoleUser, RoleAdmin, RoleSuperadmin} {
		if !r.Valid() {
			t.Fatalf("expected %q valid", r)
		}
	}
	if Role("root").Valid() {
		t.Fatal("expected root invalid")
	}
	if Role("").Valid() {
		t.Fatal("expected empty role invalid")
	}
}

func TestAllowSetContains(t *testing.T) {
	set := AllowSet{RoleAdmin, RoleSuperadmin}
	if !set.Contains(RoleAdmin) {
		t.Fatal("expected admin in set")
	}
	if set.Contains(RoleUser) {
		t.Fatal("did not expect user in set")
	}
	if (AllowSet{}).Contains(RoleAdmin) {
		t.Fatal("empty set contains nothing")
	}
}
