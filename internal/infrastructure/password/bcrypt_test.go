package password

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "pw123" {
		t.Fatal("expected hash to differ from the password")
	}
	if !h.Compare(hash, "pw123") {
		t.Fatal("expected matching password to compare true")
	}
	if h.Compare(hash, "pw124") {
		t.Fatal("expected wrong password to compare false")
	}
}

func TestHasher_SaltsEachHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Fatal("expected two hashes of the same password to differ")
	}
}

func TestHasher_CompareMalformedHash(t *testing.T) {
	if (Hasher{}).Compare("not-a-bcrypt-hash", "pw") {
		t.Fatal("expected malformed hash to compare false")
	}
}
