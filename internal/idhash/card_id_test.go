package idhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardID(t *testing.T) {
	tests := []struct {
		name  string
		title string
	}{
		{name: "ascii title", title: "Will BTC hit 100k?"},
		{name: "empty title", title: ""},
		{name: "unicode title", title: "Станет ли SOL топ-3?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CardID(tt.title)

			assert.Len(t, got, 10)
			for _, r := range got {
				assert.Contains(t, "0123456789abcdef", string(r))
			}

			// Same title, same id.
			assert.Equal(t, got, CardID(tt.title))
		})
	}
}

func TestCardID_DifferentTitles(t *testing.T) {
	assert.NotEqual(t, CardID("Will BTC hit 100k?"), CardID("Will ETH flip BTC?"))
}

func TestCardID_KnownDigest(t *testing.T) {
	// Pinned digests so the id scheme stays compatible with existing
	// documents.
	assert.Equal(t, "900150983c", CardID("abc"))
	assert.Equal(t, "1553803167", CardID("Will BTC hit 100k?"))
}
