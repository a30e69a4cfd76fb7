package httpx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,password_strength"`
	ISBN     string `json:"isbn" validate:"omitempty,isbn"`
	Rating   int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
}

func TestValidateStruct_Valid(t *testing.T) {
	errs := ValidateStruct(signupInput{
		Username: "reader",
		Password: "Test123!@#",
		ISBN:     "978-0-380-79527-2",
		Rating:   4,
	})
	assert.Nil(t, errs)
}

func TestValidateStruct_UsesJSONFieldNames(t *testing.T) {
	errs := ValidateStruct(signupInput{})
	require.Len(t, errs, 2)

	fields := []string{errs[0].Field, errs[1].Field}
	assert.ElementsMatch(t, []string{"username", "password"}, fields)
	assert.Contains(t, errs[0].Message, "is required")
}

func TestValidateStruct_Messages(t *testing.T) {
	errs := ValidateStruct(signupInput{Username: "ab", Password: "weak", ISBN: "12345", Rating: 9})

	byField := map[string]string{}
	for _, e := range errs {
		byField[e.Field] = e.Message
	}
	assert.Equal(t, "username must be at least 3 characters", byField["username"])
	assert.Contains(t, byField["password"], "uppercase")
	assert.Contains(t, byField["isbn"], "valid ISBN")
	assert.Equal(t, "rating must be at most 5", byField["rating"])
}

func TestValidISBN(t *testing.T) {
	cases := map[string]bool{
		"0380795272":        true,
		"080442957X":        true,
		"080442957x":        true,
		"9780380795277":     true,
		"978-0-380-79527-7": true,
		"038079527":         false,
		"03807952XX":        false,
		"97803807952":       false,
		"":                  false,
	}
	for in, want := range cases {
		assert.Equal(t, want, ValidISBN(in), "isbn %q", in)
	}
}
