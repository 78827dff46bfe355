package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("user@example.com"))
	assert.True(t, ValidateEmail("first.last+tag@sub.example.co"))
	assert.False(t, ValidateEmail(""))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@tld"))
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("secret123"))
	assert.False(t, ValidatePassword("short1"))
	assert.False(t, ValidatePassword("onlyletters"))
	assert.False(t, ValidatePassword("12345678"))
}

func TestValidatePlan(t *testing.T) {
	assert.True(t, ValidatePlan("solo"))
	assert.True(t, ValidatePlan("Team"))
	assert.True(t, ValidatePlan("elite"))
	assert.False(t, ValidatePlan("enterprise"))
	assert.False(t, ValidatePlan(""))
}

func TestValidateRole(t *testing.T) {
	assert.True(t, ValidateRole("Owner"))
	assert.True(t, ValidateRole("Sales Rep"))
	assert.False(t, ValidateRole("owner"))
	assert.False(t, ValidateRole("Superuser"))
}

func TestValidateBillingType(t *testing.T) {
	assert.True(t, ValidateBillingType("stripe"))
	assert.True(t, ValidateBillingType("GHL"))
	assert.False(t, ValidateBillingType("paypal"))
}

func TestValidateAPIKey(t *testing.T) {
	assert.True(t, ValidateAPIKey("abcdefghij0123456789xyz"))
	assert.False(t, ValidateAPIKey("short"))
	assert.False(t, ValidateAPIKey("has spaces in the middle!"))
}
