package tags_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmglover/Deep/pkg/core"
	"github.com/alexmglover/Deep/pkg/tags"
)

func TestBuild_SingleTag(t *testing.T) {
	cat := tags.Build("{field_one}", []string{"field_one"}, nil, "")

	require.Len(t, cat.Singles, 1)
	assert.Equal(t, "field_one", cat.Singles[0].Name)
	assert.Equal(t, "field_one", cat.Singles[0].Key)
	assert.Equal(t, tags.Single, cat.Singles[0].Kind)
	assert.Empty(t, cat.Pairs)
}

func TestBuild_PairBody(t *testing.T) {
	tpl := "{related}A{inner}B{/inner}C{/related}"
	cat := tags.Build(tpl, nil, []tags.PairDecl{{Text: "related"}}, "")

	require.Len(t, cat.Pairs, 1)
	assert.Equal(t, "related", cat.Pairs[0].Name)
	assert.Equal(t, "A{inner}B{/inner}C", cat.Pairs[0].Body)
}

func TestBuild_PairWithParameters(t *testing.T) {
	tpl := `<ul>{categories show_group="2" backspace="2"}<li>{category_name}</li>, {/categories}</ul>`
	singles, pairs := tags.Scan(tpl)
	cat := tags.Build(tpl, singles, pairs, "")

	require.Len(t, cat.Pairs, 1)
	pair := cat.Pairs[0]
	assert.Equal(t, "categories", pair.Name)
	assert.Equal(t, `categories show_group="2" backspace="2"`, pair.Key)
	assert.Equal(t, "2", pair.Param("show_group"))
	assert.Equal(t, "<li>{category_name}</li>, ", pair.Body)
}

func TestBuild_PreDeclaredParamsWin(t *testing.T) {
	params := core.NewParams()
	params.Set("limit", "3")

	cat := tags.Build(`{gallery limit="9"}x{/gallery}`, nil,
		[]tags.PairDecl{{Text: `gallery limit="9"`, Params: params}}, "")

	require.Len(t, cat.Pairs, 1)
	assert.Equal(t, "3", cat.Pairs[0].Param("limit"))
}

func TestBuild_RepeatedPairOccurrences(t *testing.T) {
	tpl := "{gallery}one{/gallery} and {gallery}two{/gallery}"
	cat := tags.Build(tpl, nil, []tags.PairDecl{{Text: "gallery"}}, "")

	require.Len(t, cat.Pairs, 2)
	assert.Equal(t, "one", cat.Pairs[0].Body)
	assert.Equal(t, 0, cat.Pairs[0].Occurrence)
	assert.Equal(t, "two", cat.Pairs[1].Body)
	assert.Equal(t, 1, cat.Pairs[1].Occurrence)
	assert.Equal(t, 2, cat.Occurrences("gallery"))
}

func TestBuild_FirstCloseWins(t *testing.T) {
	// Same-named pairs are not balanced: the body stops at the first close.
	tpl := "{a}x{a}y{/a}z{/a}"
	cat := tags.Build(tpl, nil, []tags.PairDecl{{Text: "a"}}, "")

	require.Len(t, cat.Pairs, 1)
	assert.Equal(t, "x{a}y", cat.Pairs[0].Body)
}

func TestBuild_UnclosedPairIsSkipped(t *testing.T) {
	cat := tags.Build("{related}never closed", nil, []tags.PairDecl{{Text: "related"}}, "")
	assert.Empty(t, cat.Pairs)
}

func TestBuild_Prefix(t *testing.T) {
	tpl := "{title}{side:title}{side:gallery}x{/side:gallery}{gallery}y{/gallery}"
	singles := []string{"title", "side:title"}
	pairs := []tags.PairDecl{{Text: "side:gallery"}, {Text: "gallery"}}

	for _, prefix := range []core.Prefix{"side", "side:"} {
		cat := tags.Build(tpl, singles, pairs, prefix)

		require.Len(t, cat.Singles, 1, prefix)
		assert.Equal(t, "title", cat.Singles[0].Name)
		assert.Equal(t, "side:title", cat.Singles[0].Key)

		require.Len(t, cat.Pairs, 1)
		assert.Equal(t, "gallery", cat.Pairs[0].Name)
		assert.Equal(t, "side:gallery", cat.Pairs[0].Key)
		assert.Equal(t, "x", cat.Pairs[0].Body)
	}
}

func TestBuild_DropsMalformedAndDuplicates(t *testing.T) {
	cat := tags.Build("", []string{"title", "", `bad format="x`, "title"}, nil, "")

	require.Len(t, cat.Singles, 1)
	assert.Equal(t, "title", cat.Singles[0].Key)
}

func TestBuild_DeclarationOrder(t *testing.T) {
	tpl := "{b}{a}{two}2{/two}{one}1{/one}"
	cat := tags.Build(tpl, []string{"b", "a"}, []tags.PairDecl{{Text: "one"}, {Text: "two"}}, "")

	assert.Equal(t, "b", cat.Singles[0].Name)
	assert.Equal(t, "a", cat.Singles[1].Name)
	assert.Equal(t, "one", cat.Pairs[0].Name)
	assert.Equal(t, "two", cat.Pairs[1].Name)
}
