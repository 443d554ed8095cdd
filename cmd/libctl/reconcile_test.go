package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitFileName(t *testing.T) {
	tests := []struct {
		path   string
		artist string
		title  string
	}{
		{"/music/The Band - Great Song.mp3", "The Band", "Great Song"},
		{"/music/NoSeparator.mp3", "", "NoSeparator"},
		{"/music/A - B - C.flac", "A", "B - C"},
		{"/music/- Leading.mp3", "", "- Leading"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			artist, title := splitFileName(tt.path)
			assert.Equal(t, tt.artist, artist)
			assert.Equal(t, tt.title, title)
		})
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "greatsong", normalizeName("Great Song!"))
	assert.Equal(t, "acdc", normalizeName("AC/DC"))
	assert.Equal(t, "track01", normalizeName("Track 01"))
	assert.Equal(t, "", normalizeName("---"))
}

func TestMatchByName(t *testing.T) {
	files := []string{
		"/music/The Band - Great Song.mp3",
		"/music/The Band - Other Song.mp3",
		"/music/Someone Else - Great Song (Cover).mp3",
	}

	t.Run("artist disambiguates", func(t *testing.T) {
		got := matchByName("The Band", "Great Song", files)
		assert.Equal(t, "/music/The Band - Great Song.mp3", got)
	})

	t.Run("ambiguous without artist", func(t *testing.T) {
		got := matchByName("", "Great Song", files)
		assert.Empty(t, got)
	})

	t.Run("no match", func(t *testing.T) {
		got := matchByName("The Band", "Unknown Tune", files)
		assert.Empty(t, got)
	})

	t.Run("empty title never matches", func(t *testing.T) {
		got := matchByName("The Band", "", files)
		assert.Empty(t, got)
	})
}
