package handler

import (
	"errors"
	"time"
)

func testTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func errDuplicate() error {
	return errors.New("Error 1062 (23000): Duplicate entry")
}
