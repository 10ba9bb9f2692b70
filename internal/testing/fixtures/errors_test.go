package fixtures

import (
	"errors"
	"testing"
)

func TestUniqueViolation_ParsesDriverMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		msg  string
		want string
	}{
		{
			name: "bare sqlite message",
			msg:  "UNIQUE constraint failed: users.email",
			want: "email",
		},
		{
			name: "driver appends error code",
			msg:  "constraint failed: UNIQUE constraint failed: users.email (2067)",
			want: "email",
		},
		{
			name: "coupon code with error code",
			msg:  "constraint failed: UNIQUE constraint failed: coupons.code (2067)",
			want: "code",
		},
		{
			name: "unrecognized message leaves field empty",
			msg:  "something else entirely",
			want: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := uniqueViolation("users", errors.New(tc.msg))

			var cerr *ConstraintError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected ConstraintError, got %T", err)
			}
			if cerr.Entity != "users" {
				t.Errorf("expected entity users, got %q", cerr.Entity)
			}
			if cerr.Field != tc.want {
				t.Errorf("expected field %q, got %q", tc.want, cerr.Field)
			}
		})
	}
}
