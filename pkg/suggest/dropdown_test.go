package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDropdownSelection(t *testing.T) {
	c := NewCompleter()
	c.AddKeywords([]string{"Inflation", "Interest rates", "Investment"})
	d := NewDropdown(c, 0)

	items := d.Type("In")
	assert.Len(t, items, 3)

	word, ok := d.Choose(1)
	assert.True(t, ok)
	assert.Equal(t, "interest rates", word)
	assert.Equal(t, "interest rates", d.Input())
	assert.Empty(t, d.Items())

	_, ok = d.Choose(0)
	assert.False(t, ok)
}

func TestDropdownClearsOnEmptyInputAndSubmit(t *testing.T) {
	c := NewCompleter()
	c.AddKeywords([]string{"trade"})
	d := NewDropdown(c, 5)

	assert.Len(t, d.Type("t"), 1)
	assert.Empty(t, d.Type(""))

	d.Type("tr")
	assert.Equal(t, "tr", d.Submit())
	assert.Empty(t, d.Items())
}
