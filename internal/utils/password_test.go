package utils

import "testing"

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("correct horse", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !VerifyPassword(hash, "correct horse") {
		t.Error("valid password rejected")
	}
	if VerifyPassword(hash, "battery staple") {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordClampsInvalidCost(t *testing.T) {
	for _, cost := range []int{-1, 0, 99} {
		hash, err := HashPassword("correct horse", cost)
		if err != nil {
			t.Fatalf("cost %d: %v", cost, err)
		}
		if !VerifyPassword(hash, "correct horse") {
			t.Errorf("cost %d: hash does not verify", cost)
		}
	}
}
