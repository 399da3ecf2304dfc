package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("HR_TEST_STRING", "  redis:6379 ")
	assert.Equal(t, "redis:6379", GetEnvString("HR_TEST_STRING", "x"))
	assert.Equal(t, "x", GetEnvString("HR_TEST_STRING_UNSET", "x"))
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"valid", "42", 42},
		{"negative", "-3", -3},
		{"invalid", "forty", 7},
		{"trailing garbage", "12abc", 7},
		{"empty", "", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HR_TEST_INT", tt.value)
			assert.Equal(t, tt.want, GetEnvInt("HR_TEST_INT", 7))
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"TRUE", false, true},
		{"1", false, true},
		{"false", true, false},
		{"0", true, false},
		{"yes", true, true},
		{"yes", false, false},
		{"", true, true},
	}
	for _, tt := range tests {
		t.Setenv("HR_TEST_BOOL", tt.value)
		assert.Equal(t, tt.want, GetEnvBool("HR_TEST_BOOL", tt.def), "value %q", tt.value)
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("HR_TEST_DURATION", "90s")
	assert.Equal(t, 90*time.Second, GetEnvDuration("HR_TEST_DURATION", time.Second))

	t.Setenv("HR_TEST_DURATION", "soon")
	assert.Equal(t, time.Second, GetEnvDuration("HR_TEST_DURATION", time.Second))
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("HR_TEST_FLOAT", "0.5")
	assert.Equal(t, 0.5, GetEnvFloat("HR_TEST_FLOAT", 1))

	t.Setenv("HR_TEST_FLOAT", "half")
	assert.Equal(t, 1.0, GetEnvFloat("HR_TEST_FLOAT", 1))
}

func TestGetEnvStringList(t *testing.T) {
	t.Setenv("HR_TEST_LIST", " Ekonomi, ,Spor ,")
	assert.Equal(t, []string{"Ekonomi", "Spor"}, GetEnvStringList("HR_TEST_LIST", nil))

	t.Setenv("HR_TEST_LIST", " , ")
	assert.Equal(t, []string{"d"}, GetEnvStringList("HR_TEST_LIST", []string{"d"}))
}
