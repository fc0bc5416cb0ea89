package repetition_test

import (
	"strings"
	"testing"

	"github.com/habiliai/spoar/repetition"
	"github.com/stretchr/testify/assert"
)

func TestDetectorIdenticalOutputs(t *testing.T) {
	d := repetition.New()

	assert.False(t, d.RecordAndCheck("I don't know"))
	assert.True(t, d.RecordAndCheck("I don't know"))
	assert.True(t, d.RecordAndCheck("I don't know"))
}

func TestDetectorDistinctOutputs(t *testing.T) {
	d := repetition.New()

	for _, out := range []string{
		"What is your primary business?",
		"Tell me about your weekly workflows.",
		"Which tasks take the most time?",
	} {
		assert.False(t, d.RecordAndCheck(out))
	}
}

func TestDetectorNormalizes(t *testing.T) {
	d := repetition.New()

	assert.False(t, d.RecordAndCheck("  Hello World "))
	assert.True(t, d.RecordAndCheck("hello world"))
}

func TestDetectorWindowAndReset(t *testing.T) {
	d := repetition.New(repetition.WithThreshold(2))

	for i := 0; i < 5; i++ {
		d.RecordAndCheck("same")
	}
	assert.Equal(t, 3, d.Len())

	d.Reset()
	assert.Equal(t, 0, d.Len())
	assert.False(t, d.RecordAndCheck("same"))
	assert.True(t, d.RecordAndCheck("same"))
}

func TestDetectorThreshold3(t *testing.T) {
	d := repetition.New(repetition.WithThreshold(3))

	assert.False(t, d.RecordAndCheck("a"))
	assert.False(t, d.RecordAndCheck("a"))
	assert.True(t, d.RecordAndCheck("a"))
}

func TestDetectorEmptyOutputs(t *testing.T) {
	d := repetition.New()

	assert.False(t, d.RecordAndCheck(""))
	assert.False(t, d.RecordAndCheck("   "))
}

func TestWordOverlap(t *testing.T) {
	assert.Equal(t, 1.0, repetition.WordOverlap("a b c", "c b a"))
	assert.Equal(t, 0.5, repetition.WordOverlap("a b", "a c"))
	assert.Equal(t, 0.0, repetition.WordOverlap("", "a"))
	assert.InDelta(t, 2.0/3.0, repetition.WordOverlap("a b", "a b c"), 1e-9)
}

func TestSignatureMatch(t *testing.T) {
	base := strings.Repeat("x", 120)

	assert.True(t, repetition.SignatureMatch(base, base+"tail"))
	assert.False(t, repetition.SignatureMatch(base, base+strings.Repeat("y", 40)))
	assert.False(t, repetition.SignatureMatch("y"+base, base+"y"))
	assert.False(t, repetition.SignatureMatch("", ""))
}

func TestSimilarWordOverlapOnLongStrings(t *testing.T) {
	a := "the quick brown fox jumps over the lazy dog near the river bank today again"
	b := "again today the quick brown fox jumps over the lazy dog near the river bank"

	assert.True(t, repetition.Similar(a, b, repetition.DefaultOverlapThreshold))

	// short strings only match exactly or by signature
	assert.False(t, repetition.Similar("b a", "a b", repetition.DefaultOverlapThreshold))
}
