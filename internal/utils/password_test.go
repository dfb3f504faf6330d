package utils

import (
    "testing"

    "golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
    // MinCost keeps the test fast; production cost comes from config.
    hash, err := HashPassword("pr0ctor-pass", bcrypt.MinCost)
    if err != nil {
        t.Fatalf("hash: %v", err)
    }
    if hash == "pr0ctor-pass" {
        t.Fatal("hash equals the plain password")
    }
    if !VerifyPassword(hash, "pr0ctor-pass") {
        t.Fatal("correct password rejected")
    }
    if VerifyPassword(hash, "wrong-pass") {
        t.Fatal("wrong password accepted")
    }
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
    if VerifyPassword("not-a-bcrypt-hash", "anything") {
        t.Fatal("malformed hash accepted")
    }
}
