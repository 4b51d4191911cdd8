package www

import (
	"testing"

	"shopcore/shopfloor"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := hashPassword("floor-boss")
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	if !checkPassword(hash, "floor-boss") {
		t.Error("correct password rejected")
	}
	if checkPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestComponentPartType(t *testing.T) {
	cases := []struct {
		unit string
		want shopfloor.PartType
	}{
		{"lb", shopfloor.PartManufactured},
		{"ft", shopfloor.PartManufactured},
		{"ea", shopfloor.PartPurchased},
		{"pc", shopfloor.PartPurchased},
		{"hr", shopfloor.PartPurchased},
	}
	for _, c := range cases {
		if got := componentPartType(c.unit); got != c.want {
			t.Errorf("componentPartType(%q) = %v, want %v", c.unit, got, c.want)
		}
	}
}
