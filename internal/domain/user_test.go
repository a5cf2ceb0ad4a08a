package domain

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	cases := map[string]struct {
		want    Role
		wantErr bool
	}{
		"ADMIN":   {want: RoleAdmin},
		"USER":    {want: RoleUser},
		" user ":  {want: RoleUser},
		"ROOT":    {wantErr: true},
		"":        {wantErr: true},
		"ADMINX":  {wantErr: true},
		"useradm": {wantErr: true},
	}

	for in, tc := range cases {
		got, err := ParseRole(in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidRole) {
				t.Errorf("ParseRole(%q): expected ErrInvalidRole, got %v", in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRole(%q): unexpected error %v", in, err)
		}
		if got != tc.want {
			t.Errorf("ParseRole(%q) = %q, want %q", in, got, tc.want)
		}
	}
}

func TestUserValidate(t *testing.T) {
	validUser := User{
		Username:     "admin",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Roles:        []Role{RoleAdmin},
	}

	if err := validUser.Validate(); err != nil {
		t.Errorf("Expected valid user to pass validation, got error: %v", err)
	}

	noName := validUser
	noName.Username = "  "
	if err := noName.Validate(); err != ErrEmptyUsername {
		t.Errorf("Expected error %v, got %v", ErrEmptyUsername, err)
	}

	noHash := validUser
	noHash.PasswordHash = ""
	if err := noHash.Validate(); err != ErrEmptyHashedPassword {
		t.Errorf("Expected error %v, got %v", ErrEmptyHashedPassword, err)
	}

	noRoles := validUser
	noRoles.Roles = nil
	if err := noRoles.Validate(); err != ErrNoRoles {
		t.Errorf("Expected error %v, got %v", ErrNoRoles, err)
	}

	badRole := validUser
	badRole.Roles = []Role{"SUPERUSER"}
	if err := badRole.Validate(); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("Expected ErrInvalidRole, got %v", err)
	}
}

func TestPrincipalHasAnyRole(t *testing.T) {
	admin := Principal{Username: "admin", Roles: []Role{RoleAdmin}}
	user := Principal{Username: "user", Roles: []Role{RoleUser}}
	nobody := Principal{Username: "ghost"}

	if !admin.HasAnyRole(RoleUser, RoleAdmin) {
		t.Error("admin should satisfy {USER, ADMIN}")
	}
	if !user.HasAnyRole(RoleUser, RoleAdmin) {
		t.Error("user should satisfy {USER, ADMIN}")
	}
	if user.HasAnyRole(RoleAdmin) {
		t.Error("user should not satisfy {ADMIN}")
	}
	if nobody.HasAnyRole(RoleUser, RoleAdmin) {
		t.Error("principal without roles should satisfy nothing")
	}
	if admin.HasAnyRole() {
		t.Error("empty requirement should never be satisfied")
	}
}
