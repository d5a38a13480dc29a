package handlers

import (
	"errors"
	"strconv"

	"github.com/chemtalent/jobchain/internal/utils"
)

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func errorCode(err error) string {
	var ae *utils.AppError
	if errors.As(err, &ae) {
		return string(ae.Code)
	}
	return string(utils.CodeInternal)
}

// queryInt parses an optional integer query value, returning def when it is
// missing or malformed.
func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
