package user

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{in: "student", want: RoleStudent},
		{in: " Student ", want: RoleStudent},
		{in: "INSTRUCTOR", want: RoleInstructor},
		{in: "admin", want: RoleAdmin},
		{in: "teacher", want: RoleUnknown},
		{in: "", want: RoleUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseRole(tt.in); got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoleHomePath(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{role: RoleStudent, want: "/student"},
		{role: RoleInstructor, want: "/instructor"},
		{role: RoleAdmin, want: "/admin"},
		{role: RoleUnknown, want: "/"},
		{role: Role("teacher"), want: "/"},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.HomePath(); got != tt.want {
				t.Errorf("HomePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginValidate(t *testing.T) {
	tests := []struct {
		name    string
		form    Login
		wantErr bool
	}{
		{name: "valid", form: Login{Email: "s@mail.test", Password: "hunter2hunter2"}},
		{name: "email normalized", form: Login{Email: " S@Mail.Test ", Password: "x"}},
		{name: "missing email", form: Login{Password: "x"}, wantErr: true},
		{name: "bad email", form: Login{Email: "nope", Password: "x"}, wantErr: true},
		{name: "missing password", form: Login{Email: "s@mail.test"}, wantErr: true},
		{name: "valid otp", form: Login{Email: "s@mail.test", Password: "x", OTP: "123456"}},
		{name: "short otp", form: Login{Email: "s@mail.test", Password: "x", OTP: "123"}, wantErr: true},
		{name: "non numeric otp", form: Login{Email: "s@mail.test", Password: "x", OTP: "12a456"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	form := Login{Email: " S@Mail.Test ", Password: "x"}
	if err := form.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if form.Email != "s@mail.test" {
		t.Errorf("Validate() email = %q, want %q", form.Email, "s@mail.test")
	}
}
