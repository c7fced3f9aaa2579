package handlers_test

import (
	"testing"
	"time"
)

func timePast(t *testing.T) time.Time {
	t.Helper()
	return time.Now().AddDate(0, 0, -3)
}

func timeFuture(t *testing.T) time.Time {
	t.Helper()
	return time.Now().AddDate(0, 0, 30)
}
