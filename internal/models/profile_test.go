package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skout-hq/skout/internal/models"
)

func TestProfile_TableName(t *testing.T) {
	profile := &models.Profile{ID: "u1"}
	assert.Equal(t, "users", profile.TableName())
}

func TestNewProfile(t *testing.T) {
	profile := models.NewProfile("u1", " ada@example.com ", " Ada", "Lovelace ")

	assert.Equal(t, "u1", profile.ID)
	assert.Equal(t, "ada@example.com", profile.Email)
	assert.Equal(t, "Ada", profile.FirstName)
	assert.Equal(t, "Lovelace", profile.LastName)
	assert.Nil(t, profile.CreatedAt, "timestamps are set by the database")
	assert.Equal(t, "Ada Lovelace", profile.FullName())
}

func TestProfile_FullName(t *testing.T) {
	testCases := []struct {
		first, last, expected string
	}{
		{"Ada", "Lovelace", "Ada Lovelace"},
		{"Ada", "", "Ada"},
		{"", "Lovelace", "Lovelace"},
		{"", "", ""},
	}

	for _, tc := range testCases {
		p := &models.Profile{FirstName: tc.first, LastName: tc.last}
		assert.Equal(t, tc.expected, p.FullName())
	}
}

func TestProfileUpdate(t *testing.T) {
	t.Run("Empty update", func(t *testing.T) {
		update := &models.ProfileUpdate{}
		assert.True(t, update.IsEmpty())
		assert.Empty(t, update.Fields())
	})

	t.Run("Only first name", func(t *testing.T) {
		first := "  Grace "
		update := &models.ProfileUpdate{FirstName: &first}

		assert.False(t, update.IsEmpty())
		assert.Equal(t, map[string]interface{}{"first_name": "Grace"}, update.Fields())
	})

	t.Run("Both names", func(t *testing.T) {
		first, last := "Grace", "Hopper"
		update := &models.ProfileUpdate{FirstName: &first, LastName: &last}

		fields := update.Fields()
		assert.Len(t, fields, 2)
		assert.Equal(t, "Hopper", fields["last_name"])
	})
}
