package validate

import (
	"strconv"
	"unicode/utf8"
)

const (
	FileField  = "file"
	TitleField = "title"

	MaxTitleLen int = 200

	MinListLimit int = 1
	MaxListLimit int = 100
)

// ListLimit parses the limit query value. Empty means the use-case default.
func ListLimit(s string) (int, bool) {
	if s == "" {
		return 0, true
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < MinListLimit || n > MaxListLimit {
		return 0, false
	}

	return n, true
}

func Title(s string) bool {
	return utf8.ValidString(s) && utf8.RuneCountInString(s) <= MaxTitleLen
}
