// ABOUTME: Generates signed JWT tokens shaped like the upstream registry's
// ABOUTME: Used to exercise session expiry handling against a stub registry

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <signing-secret> <token-type>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Token types: valid, expired, short\n")
		os.Exit(1)
	}

	secret := []byte(os.Args[1])
	tokenType := os.Args[2]

	var claims jwt.MapClaims
	switch tokenType {
	case "valid":
		claims = jwt.MapClaims{
			"sub":      "demo-user-123",
			"email":    "demo@iuea.ac.ug",
			"userType": "admin",
			"exp":      time.Now().Add(24 * time.Hour).Unix(),
			"iat":      time.Now().Unix(),
		}
	case "expired":
		claims = jwt.MapClaims{
			"sub":      "expired-user",
			"email":    "expired@iuea.ac.ug",
			"userType": "student",
			"exp":      time.Now().Add(-time.Hour).Unix(),
			"iat":      time.Now().Add(-2 * time.Hour).Unix(),
		}
	case "short":
		// Expires inside the session store's five-minute lookahead window, so
		// the portal treats it as already expired.
		claims = jwt.MapClaims{
			"sub":      "short-user",
			"email":    "short@iuea.ac.ug",
			"userType": "student",
			"exp":      time.Now().Add(2 * time.Minute).Unix(),
			"iat":      time.Now().Unix(),
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown token type: %s\n", tokenType)
		os.Exit(1)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(signed)
}
