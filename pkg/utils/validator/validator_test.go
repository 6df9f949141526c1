package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerForm struct {
	Username   string `json:"username" validate:"required,username"`
	Password   string `json:"password" validate:"required,password"`
	Experience string `json:"experience" validate:"required,experience"`
}

func TestValidateUsername(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		username string
		valid    bool
	}{
		{"valid simple", "alice", true},
		{"valid with underscore", "alice_wang", true},
		{"valid with digits", "user42", true},
		{"too short", "ab", false},
		{"starts with digit", "1alice", false},
		{"contains dash", "alice-w", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateVar(tt.username, "username")
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"valid", "abcdef12", true},
		{"too short", "ab12", false},
		{"letters only", "abcdefgh", false},
		{"digits only", "12345678", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateVar(tt.password, "password")
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateExperience(t *testing.T) {
	v := New()

	for _, level := range ExperienceLevels() {
		assert.NoError(t, v.ValidateVar(level, "experience"), level)
	}
	assert.Error(t, v.ValidateVar("10yr", "experience"))
	assert.Error(t, v.ValidateVar("junior", "experience"))
}

func TestIsExperienced(t *testing.T) {
	assert.False(t, IsExperienced(ExperienceJunior))
	assert.True(t, IsExperienced(ExperienceMid))
	assert.True(t, IsExperienced(ExperienceSenior))
	assert.False(t, IsExperienced(""))
}

func TestValidateWithLang(t *testing.T) {
	v := New()

	form := registerForm{
		Username:   "1bad",
		Password:   "short",
		Experience: "none",
	}

	verr := v.ValidateWithLang(form, LangEN)
	require.NotNil(t, verr)
	assert.Equal(t, 3, verr.Count())

	// Field names come from JSON tags
	fields := make(map[string]bool)
	for _, fe := range verr.Errors {
		fields[fe.Field] = true
	}
	assert.True(t, fields["username"])
	assert.True(t, fields["password"])
	assert.True(t, fields["experience"])

	// Chinese translations available as well
	zhErr := v.ValidateWithLang(form, LangZH)
	require.NotNil(t, zhErr)
	assert.Equal(t, 3, zhErr.Count())
}

func TestValidateStructOK(t *testing.T) {
	form := registerForm{
		Username:   "alice",
		Password:   "abcdef12",
		Experience: ExperienceSenior,
	}
	assert.NoError(t, Struct(form))
}
