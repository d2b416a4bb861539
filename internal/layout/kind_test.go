package layout

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	testCases := []struct {
		name string
		want Kind
	}{
		{"text", Text}, {"TextField", Text}, {"TEXT", Text},
		{"rich_text", RichText}, {"RichTextField", RichText}, {"rich-text", RichText},
		{"link", Hyperlink}, {"HyperLinkField", Hyperlink}, {"general_link", Hyperlink},
		{"date", Date}, {"DateField", Date}, {"datetime", Date},
		{"checkbox", Checkbox}, {"CheckboxField", Checkbox},
		{"image", Image}, {"ImageField", Image},
	}
	for _, tc := range testCases {
		got, err := ParseKind(tc.name)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}

	_, err := ParseKind("multilist")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestKinds_Names(t *testing.T) {
	var names []string
	for _, k := range Kinds() {
		names = append(names, k.Name())
		back, err := ParseKind(k.Name())
		require.NoError(t, err)
		assert.Equal(t, k, back)
	}
	assert.Equal(t, []string{"text", "rich_text", "hyperlink", "date", "checkbox", "image"}, names)
}

func TestKind_Normalize(t *testing.T) {
	t.Run("Text", func(t *testing.T) {
		v, err := Text.Normalize("hi")
		assert.NoError(t, err)
		assert.Equal(t, "hi", v)
		_, err = Text.Normalize(1)
		assert.Error(t, err)
	})

	t.Run("RichText", func(t *testing.T) {
		v, err := RichText.Normalize(map[string]any{"value": "<p>x</p>"})
		assert.NoError(t, err)
		assert.Equal(t, "<p>x</p>", v)
		_, err = RichText.Normalize(map[string]any{"text": "x"})
		assert.Error(t, err)
	})

	t.Run("Hyperlink", func(t *testing.T) {
		v, err := Hyperlink.Normalize("/about")
		assert.NoError(t, err)
		assert.Equal(t, map[string]any{"href": "/about"}, v)
		v, err = Hyperlink.Normalize(map[string]any{"href": "/x", "text": "X"})
		assert.NoError(t, err)
		assert.Equal(t, map[string]any{"href": "/x", "text": "X"}, v)
		_, err = Hyperlink.Normalize(true)
		assert.Error(t, err)
	})

	t.Run("Date", func(t *testing.T) {
		ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("CEST", 2*3600))
		v, err := Date.Normalize(ts)
		assert.NoError(t, err)
		assert.Equal(t, "2024-05-01T08:00:00Z", v)
		_, err = Date.Normalize(3)
		assert.Error(t, err)
	})

	t.Run("Checkbox", func(t *testing.T) {
		v, err := Checkbox.Normalize("true")
		assert.NoError(t, err)
		assert.Equal(t, true, v)
		_, err = Checkbox.Normalize("maybe")
		assert.Error(t, err)
	})

	t.Run("Image", func(t *testing.T) {
		v, err := Image.Normalize("/-/media/hero.png")
		assert.NoError(t, err)
		assert.Equal(t, map[string]any{"src": "/-/media/hero.png"}, v)
	})
}

func TestKind_Read(t *testing.T) {
	field := func(s string) Field { return NewField(json.RawMessage(s)) }

	v, ok := Text.read(field(`"plain"`))
	assert.True(t, ok)
	assert.Equal(t, "plain", v)

	v, ok = Text.read(field(`{"value": "wrapped", "editable": "<span>wrapped</span>"}`))
	assert.True(t, ok)
	assert.Equal(t, "wrapped", v)

	v, ok = Text.read(field(`""`))
	assert.True(t, ok, "empty text is still a value")
	assert.Equal(t, "", v)

	_, ok = Text.read(field(`null`))
	assert.False(t, ok)

	_, ok = Checkbox.read(field(`{"value": "yes"}`))
	assert.False(t, ok)

	v, ok = Checkbox.read(field(`{"value": false}`))
	assert.True(t, ok)
	assert.Equal(t, false, v)

	v, ok = Image.read(field(`{"value": {"src": "/a.png", "alt": "A"}}`))
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"src": "/a.png", "alt": "A"}, v)

	_, ok = Hyperlink.read(field(`{"value": "not-an-object"}`))
	assert.False(t, ok)
}

func TestKind_MergeText(t *testing.T) {
	testCases := []struct {
		name     string
		existing string
		update   string
		want     string
	}{
		{"leading space in update", "Welcome", " updated", "Welcome updated"},
		{"no spaces", "Welcome", "updated", "Welcome updated"},
		{"trailing space kept", "Hello ", "x", "Hello  x"},
		{"empty existing", "", "New", " New"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Text.merge(tc.existing, tc.update))
			assert.Equal(t, tc.want, RichText.merge(tc.existing, tc.update))
		})
	}
}

func TestUpdateSpec_Validate(t *testing.T) {
	valid := UpdateSpec{"Hero": {"Text": {Value: "x", Kind: Text}}}
	assert.NoError(t, valid.Validate())

	for name, spec := range map[string]UpdateSpec{
		"missing kind":    {"Hero": {"Text": {Value: "x"}}},
		"missing value":   {"Hero": {"Text": {Kind: Text}}},
		"wrong type":      {"Hero": {"Flag": {Value: "perhaps", Kind: Checkbox}}},
		"empty field":     {"Hero": {"": {Value: "x", Kind: Text}}},
		"empty component": {"": {"Text": {Value: "x", Kind: Text}}},
	} {
		err := spec.Validate()
		assert.ErrorIs(t, err, ErrInvalidUpdate, name)
	}
}
