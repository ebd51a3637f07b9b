package authz

import "testing"

func TestIsOwnerOrAdmin(t *testing.T) {
	const owner = "user-1"
	const other = "user-2"

	cases := []struct {
		name  string
		p     Principal
		owner string
		want  bool
	}{
		{"owner with user role", Principal{UserID: owner, Role: RoleUser}, owner, true},
		{"owner with admin role", Principal{UserID: owner, Role: RoleAdmin}, owner, true},
		{"non-owner with user role", Principal{UserID: other, Role: RoleUser}, owner, false},
		{"non-owner with admin role", Principal{UserID: other, Role: RoleAdmin}, owner, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsOwnerOrAdmin(tc.p, tc.owner); got != tc.want {
				t.Fatalf("IsOwnerOrAdmin(%+v, %q) = %v, want %v", tc.p, tc.owner, got, tc.want)
			}
		})
	}
}

func TestHasRole(t *testing.T) {
	user := Principal{UserID: "u", Role: RoleUser}
	admin := Principal{UserID: "a", Role: RoleAdmin}

	if !HasRole(admin, RoleAdmin) {
		t.Fatal("admin should satisfy admin role check")
	}
	if HasRole(user, RoleAdmin) {
		t.Fatal("user should not satisfy admin role check")
	}
	if !HasRole(user, RoleUser, RoleAdmin) {
		t.Fatal("user should satisfy a check allowing both roles")
	}
}
