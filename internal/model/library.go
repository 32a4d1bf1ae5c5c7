package model

// Library is an in-memory snapshot of the content store.
// It satisfies the scheduler's content interface.
type Library struct {
	Order      []string
	Categories map[string][]string
	Weights    map[string]float64
	Active     []string
	Current    string
}

// Messages returns the messages of a category in insertion order.
func (l Library) Messages(category string) []string {
	return l.Categories[category]
}

// Weight returns the sampling weight of a category, 1 when unset.
func (l Library) Weight(category string) float64 {
	w, ok := l.Weights[category]
	if !ok {
		return 1
	}
	if w < 0 {
		return 0
	}
	return w
}

// ActiveCategories returns the active set in library order.
func (l Library) ActiveCategories() []string {
	return l.Active
}

// CurrentCategory returns the selected category.
func (l Library) CurrentCategory() string {
	return l.Current
}

// Has reports whether the category exists.
func (l Library) Has(category string) bool {
	_, ok := l.Categories[category]
	return ok
}
