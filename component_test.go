package mdstream_test

import (
	"testing"

	"github.com/fwojciec/mdstream"
	"github.com/stretchr/testify/assert"
)

func TestComponents(t *testing.T) {
	t.Parallel()

	components := mdstream.Components{
		"think":           mdstream.Element("think"),
		"Incomplete-Link": mdstream.Element("placeholder"),
	}

	t.Run("lookup ignores case", func(t *testing.T) {
		t.Parallel()
		assert.True(t, components.Has("THINK"))
		assert.True(t, components.Has("incomplete-link"))
		assert.False(t, components.Has("tool"))
	})

	t.Run("names are lower-cased and sorted", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{"incomplete-link", "think"}, components.Names())
	})

	t.Run("element builds component node", func(t *testing.T) {
		t.Parallel()
		comp, ok := components.Lookup("think")
		assert.True(t, ok)
		props := mdstream.ComponentProps{
			Tag:          "think",
			Attrs:        []mdstream.Attr{{Key: "data-id", Val: "1"}},
			StreamStatus: mdstream.StatusLoading,
		}
		n := comp.Build(props)
		assert.Equal(t, &mdstream.ComponentNode{Name: "think", ComponentProps: props}, n)
		v, ok := n.(*mdstream.ComponentNode).Attr("data-id")
		assert.True(t, ok)
		assert.Equal(t, "1", v)
	})

	t.Run("component func", func(t *testing.T) {
		t.Parallel()
		f := mdstream.ComponentFunc(func(props mdstream.ComponentProps) mdstream.Node {
			return &mdstream.TextNode{Text: props.ClassName}
		})
		assert.Equal(t, &mdstream.TextNode{Text: "x"}, f.Build(mdstream.ComponentProps{ClassName: "x"}))
	})
}
