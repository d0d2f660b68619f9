package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatAccountEvent(t *testing.T) {
	msg := FormatAccountEvent(AccountEvent{
		Type:   "status_changed",
		Name:   "Jane_Doe",
		Email:  "jane@example.com",
		Detail: "active -> banned",
		At:     time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
	})

	assert.Contains(t, msg, "*Account status changed*")
	assert.Contains(t, msg, "Jane\\_Doe")
	assert.Contains(t, msg, "active -> banned")
	assert.Contains(t, msg, "2024-05-01 10:30 UTC")
}
