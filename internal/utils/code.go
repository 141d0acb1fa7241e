package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// NewVerificationCode returns a random six digit code in [100000, 999999].
func NewVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// CodesMatch compares two verification codes after trimming whitespace on
// both sides. An empty stored code never matches.
func CodesMatch(stored, provided string) bool {
	s := strings.TrimSpace(stored)
	return s != "" && s == strings.TrimSpace(provided)
}

// NormalizeEmail trims and lower-cases an email address. Accounts are keyed
// by the normalised form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
