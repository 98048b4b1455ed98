package main

import (
	"errors"
	"strconv"
	"strings"
)

var errNotAnInteger = errors.New("NOT_AN_INTEGER")

// parsePositiveInt parses a form field that must be a strictly positive
// integer (gemme amounts, shop prices). A value that is not an integer
// at all is reported separately from one that is zero or negative.
func parsePositiveInt(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errNotAnInteger
	}
	if n <= 0 {
		return 0, errInvalidAmount
	}
	return n, nil
}

// truncateContent shortens an article body for the news feed. Hard cut
// at max runes with an ellipsis, matching the accueil display.
func truncateContent(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
