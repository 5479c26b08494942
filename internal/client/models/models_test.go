package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLetterCondition(t *testing.T) {
	one, thirty := 1, 30
	when := time.Date(2031, 1, 2, 3, 4, 0, 0, time.Local)

	assert.Equal(t, "after 1 day of inactivity", Letter{TriggerType: "inactivity", InactivityDays: &one}.Condition())
	assert.Equal(t, "after 30 days of inactivity", Letter{TriggerType: "inactivity", InactivityDays: &thirty}.Condition())
	assert.Equal(t, "on 2031-01-02 03:04", Letter{TriggerType: "date", ScheduledDate: &when}.Condition())
	assert.Equal(t, "date", Letter{TriggerType: "date"}.Condition())
}

func TestTokensEmpty(t *testing.T) {
	assert.True(t, Tokens{}.Empty())
	assert.False(t, Tokens{RefreshToken: "r"}.Empty())
}
