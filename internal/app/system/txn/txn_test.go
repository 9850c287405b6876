package txn

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotSupported_CommandErrors(t *testing.T) {
	cases := []struct {
		code int32
		want bool
	}{
		{20, true},   // IllegalOperation on standalone
		{51, true},   // transactional command rejected
		{263, true},  // OperationNotSupportedInTransaction
		{11000, false},
		{112, false}, // WriteConflict is a real txn failure, not lack of support
	}

	for _, c := range cases {
		err := mongo.CommandError{Code: c.code, Message: "server response"}
		if got := IsNotSupported(err); got != c.want {
			t.Errorf("code %d: IsNotSupported = %v, want %v", c.code, got, c.want)
		}
	}
}

func TestIsNotSupported_MessageSniffing(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unrelated", errors.New("connection reset by peer"), false},
		{"standalone refuses transaction", errors.New("Transaction numbers are only allowed on a replica set member"), true},
		{"sessions unsupported", errors.New("session operations are not supported on this server"), true},
		{"transaction plus session wording", errors.New("cannot start transaction in current session state"), true},
		{"illegal operation wording", errors.New("illegal operation during transaction"), true},
		{"transaction alone is not enough", errors.New("transaction aborted"), false},
		{"case insensitive", errors.New("TRANSACTION rejected: not a REPLICA SET member"), true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsNotSupported(c.err); got != c.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", c.err, got, c.want)
			}
		})
	}
}
