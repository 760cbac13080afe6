package service

import "testing"

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher()

	hash, err := hasher.Hash("s3cret-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatal("Expected hash to differ from plaintext")
	}

	if !hasher.Verify("s3cret-password", hash) {
		t.Error("Expected correct password to verify")
	}
	if hasher.Verify("wrong-password", hash) {
		t.Error("Expected wrong password to fail verification")
	}
}

func TestPasswordHasher_HashesAreSalted(t *testing.T) {
	hasher := NewPasswordHasher()

	first, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	if first == second {
		t.Error("Expected two hashes of the same password to differ")
	}
	if !hasher.Verify("same-password", first) || !hasher.Verify("same-password", second) {
		t.Error("Expected both hashes to verify")
	}
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	hasher := NewPasswordHasher()

	if hasher.Verify("anything", "not-a-bcrypt-hash") {
		t.Error("Expected malformed hash to fail verification")
	}
	if hasher.Verify("anything", "") {
		t.Error("Expected empty hash to fail verification")
	}
}
