package mdstream_test

import (
	"testing"

	"github.com/fwojciec/mdstream"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTheme(t *testing.T) {
	t.Parallel()

	theme := mdstream.DefaultTheme()

	assert.Equal(t, -1, theme.Text)
	assert.Equal(t, 5, theme.Accent)
	assert.Equal(t, 4, theme.Link)
	assert.Equal(t, 2, theme.Code)
	assert.Equal(t, 8, theme.Muted)
	assert.Equal(t, 3, theme.Loading)
	assert.Equal(t, 1, theme.Error)
}

func TestDefaultAnimation(t *testing.T) {
	t.Parallel()

	a := mdstream.DefaultAnimation()
	assert.True(t, a.Enabled)
	assert.Equal(t, "200ms", a.FadeDuration.String())
	assert.Equal(t, "ease-in-out", a.Easing)
}
