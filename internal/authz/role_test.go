package authz

import "testing"

func TestParseRole(t *testing.T) {
	for _, role := range Roles() {
		parsed, ok := ParseRole(string(role))
		if !ok || parsed != role {
			t.Fatalf("ParseRole(%q) = %q, %v", role, parsed, ok)
		}
	}
	for _, raw := range []string{"", "director", "Admin", " Director"} {
		if _, ok := ParseRole(raw); ok {
			t.Fatalf("ParseRole(%q) unexpectedly succeeded", raw)
		}
	}
}

func TestRoleSatisfies(t *testing.T) {
	cases := []struct {
		role, required Role
		want           bool
	}{
		{RoleDirector, RoleDirector, true},
		{RoleDirector, RoleFinance, true},
		{RoleFinance, RoleDirector, false},
		{RoleFinance, RoleFinance, true},
		{RolePlatformStaff, RoleDirector, false},
		{RolePlatformStaff, RoleFinance, false},
		{RoleDirector, RolePlatformStaff, false},
	}
	for _, tc := range cases {
		if got := tc.role.Satisfies(tc.required); got != tc.want {
			t.Fatalf("%s.Satisfies(%s) = %v, want %v", tc.role, tc.required, got, tc.want)
		}
	}
}

func TestRoleDescription(t *testing.T) {
	if RoleDirector.Description() == "" {
		t.Fatal("expected description for Director")
	}
	if got := Role("Ghost").Description(); got != "Ghost" {
		t.Fatalf("unknown role description = %q", got)
	}
}
