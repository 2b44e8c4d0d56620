package service

import (
	"unicode/utf8"

	"Social_Hub/internal/errs"
)

// Field limits follow the column sizes in internal/model. Sized columns
// count characters; TEXT columns count bytes.
const (
	maxNameLen     = 64
	maxEmailLen    = 128
	maxTitleLen    = 200
	maxURLLen      = 512
	maxTextBytes   = 65535
	maxPasswordLen = 72 // bcrypt ignores the rest
)

func checkRunes(field, v string, max int) error {
	if utf8.RuneCountInString(v) > max {
		return errs.Invalidf("%s must be at most %d characters", field, max)
	}
	return nil
}

func checkBytes(field, v string, max int) error {
	if len(v) > max {
		return errs.Invalidf("%s must be at most %d bytes", field, max)
	}
	return nil
}

func checkPassword(pw string) error {
	if len(pw) < minPasswordLen {
		return errs.Invalidf("password must be at least %d characters", minPasswordLen)
	}
	return checkBytes("password", pw, maxPasswordLen)
}

// clip shortens v to at most max characters.
func clip(v string, max int) string {
	if utf8.RuneCountInString(v) <= max {
		return v
	}
	return string([]rune(v)[:max])
}
