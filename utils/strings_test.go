package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripWrappingQuotes(t *testing.T) {
	cases := map[string]string{
		`"quoted"`:         "quoted",
		"  'single'  \n":   "single",
		`"only leading`:    "only leading",
		`only trailing'`:   "only trailing",
		`""double""`:       `"double"`,
		"no quotes":        "no quotes",
		`"`:                "",
		"":                 "",
		`say "hi" to them`: `say "hi" to them`,
	}
	for in, want := range cases {
		assert.Equal(t, want, StripWrappingQuotes(in), in)
	}
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords("   "))
	assert.Equal(t, 3, CountWords(" one\ttwo\nthree "))
}

func TestHashIsStableHex(t *testing.T) {
	assert.Equal(t, Hash("token"), Hash("token"))
	assert.NotEqual(t, Hash("token"), Hash("other"))
	assert.Len(t, Hash("token"), 64)
}

func TestToJSONString(t *testing.T) {
	assert.Equal(t, `{"refined":"x"}`, ToJSONString(map[string]string{"refined": "x"}))
	assert.Equal(t, "", ToJSONString(make(chan int)))
}
