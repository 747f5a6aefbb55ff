package utils

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
)

// StripWrappingQuotes trims s and removes a single leading and a single
// trailing quote character that models tend to wrap their answer in.
func StripWrappingQuotes(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && isQuote(s[0]) {
		s = s[1:]
	}
	if s != "" && isQuote(s[len(s)-1]) {
		s = s[:len(s)-1]
	}
	return s
}

func isQuote(b byte) bool {
	return b == '"' || b == '\''
}

// CountWords counts whitespace separated words.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

func ToJSONString(v interface{}) string {
	jsonData, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(jsonData)
}

// Hash returns the hex sha256 of input, used to key caches without holding secrets.
func Hash(input string) string {
	hash := sha256.New()
	hash.Write([]byte(input))
	return fmt.Sprintf("%x", hash.Sum(nil))
}
