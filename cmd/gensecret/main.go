// Command gensecret prints a random hex key suitable for the SECRET_KEY
// setting that signs the service's JWTs.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

// 32 bytes of entropy for HS256 signing
const secretKeyBytesLen = 32

func generateSecret() (string, error) {
	b := make([]byte, secretKeyBytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func main() {
	secret, err := generateSecret()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(secret)
}
