package html

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSimpleTags(t *testing.T) {
	src := []byte("<a>1</a><a>2</a>")
	nodes, _, err := Parse(src, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, nodes, 4) // a,text,a,text

	require.Equal(t, "a", string(src[nodes[0].AllOffset+nodes[0].TagOffset:][:nodes[0].TagLen]))
	require.Equal(t, "1", string(src[nodes[1].AllOffset:nodes[1].AllOffset+nodes[1].AllLen]))
	require.Equal(t, 1, nodes[0].TagCount+nodes[0].TextCount+nodes[0].CommentCount)
}

func TestParseAutoclose(t *testing.T) {
	src := []byte("<ul><li>x<li>y</ul>")
	nodes, _, err := Parse(src, DefaultOptions())
	require.NoError(t, err)

	var liCount int
	for _, n := range nodes {
		if n.TagLen == 2 && string(src[n.AllOffset+n.TagOffset:n.AllOffset+n.TagOffset+n.TagLen]) == "li" {
			liCount++
		}
	}
	require.Equal(t, 2, liCount)
}

func TestParseVoidTag(t *testing.T) {
	src := []byte("<div><br>after</div>")
	nodes, _, err := Parse(src, DefaultOptions())
	require.NoError(t, err)
	require.True(t, len(nodes) >= 3)
	// br should have zero insides
	for _, n := range nodes {
		if n.TagLen == 2 && string(src[n.AllOffset+n.TagOffset:n.AllOffset+n.TagOffset+n.TagLen]) == "br" {
			require.Equal(t, 0, n.InsidesLen)
		}
	}
}

func TestParseAttributes(t *testing.T) {
	src := []byte(`<p class="a b">t</p>`)
	nodes, attrs, err := Parse(src, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	require.Len(t, attrs, 1)
	key := src[attrs[0].KeyOffset : attrs[0].KeyOffset+attrs[0].KeyLen]
	require.Equal(t, "class", string(key))
}

func TestParseComment(t *testing.T) {
	src := []byte("<!-- hi --><p>x</p>")
	nodes, _, err := Parse(src, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 0, nodes[0].TagLen)
	inside := src[nodes[0].AllOffset+nodes[0].InsidesOffset:][:nodes[0].InsidesLen]
	require.Equal(t, " hi ", string(inside))
}

func TestParseDepthOverflow(t *testing.T) {
	src := make([]byte, 0, 300*4)
	for i := 0; i < 300; i++ {
		src = append(src, []byte("<a>")...)
	}
	_, _, err := Parse(src, Options{Autoclose: true, SmallStack: true})
	require.Error(t, err)
	var de *ErrDepthExceeded
	require.ErrorAs(t, err, &de)
}
