package suggest

// Dropdown is the state of the topic input: the typed text and the
// suggestions currently shown under it.
type Dropdown struct {
	completer ICompleter
	limit     int
	input     string
	items     []Suggestion
}

// NewDropdown binds a dropdown to a completer. limit <= 0 uses DefaultLimit.
func NewDropdown(completer ICompleter, limit int) *Dropdown {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Dropdown{completer: completer, limit: limit, items: []Suggestion{}}
}

// Type replaces the input text and refreshes the suggestions.
func (d *Dropdown) Type(input string) []Suggestion {
	d.input = input
	if input == "" {
		d.items = []Suggestion{}
		return d.items
	}
	d.items = d.completer.Complete(input, d.limit)
	return d.items
}

// Choose copies the i-th suggestion into the input and closes the dropdown.
// It reports false when i is out of range.
func (d *Dropdown) Choose(i int) (string, bool) {
	if i < 0 || i >= len(d.items) {
		return d.input, false
	}
	d.input = d.items[i].Word
	d.items = []Suggestion{}
	return d.input, true
}

// Submit returns the text to search for and closes the dropdown.
func (d *Dropdown) Submit() string {
	d.items = []Suggestion{}
	return d.input
}

func (d *Dropdown) Input() string {
	return d.input
}

func (d *Dropdown) Items() []Suggestion {
	return d.items
}
