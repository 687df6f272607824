package itemset

// Dictionary binds external labels to dense internal ids in [0, Len()).
//
// The dictionary is append-only while a database is loading and must not be
// mutated afterwards. Equal labels always resolve to the same id.
type Dictionary struct {
	kind   Kind
	ids    map[string]int
	labels []Label
}

// NewDictionary creates an empty dictionary for the given item kind.
func NewDictionary(kind Kind) *Dictionary {
	return &Dictionary{
		kind: kind,
		ids:  make(map[string]int),
	}
}

// Kind returns the item kind the dictionary parses.
func (d *Dictionary) Kind() Kind {
	return d.kind
}

// Intern parses raw and returns its internal id, assigning the next free id
// on first occurrence.
func (d *Dictionary) Intern(raw string) (int, error) {
	label, err := ParseLabel(raw, d.kind)
	if err != nil {
		return 0, err
	}
	return d.InternLabel(label), nil
}

// InternLabel returns the internal id of an already parsed label.
func (d *Dictionary) InternLabel(label Label) int {
	if id, ok := d.ids[label.text]; ok {
		return id
	}
	id := len(d.labels)
	d.ids[label.text] = id
	d.labels = append(d.labels, label)
	return id
}

// Lookup returns the id of label, if present.
func (d *Dictionary) Lookup(label Label) (int, bool) {
	id, ok := d.ids[label.text]
	return id, ok
}

// Label returns the external label of internal id.
// Panics if id is out of range.
func (d *Dictionary) Label(id int) Label {
	return d.labels[id]
}

// Labels maps a slice of internal ids to their labels.
func (d *Dictionary) Labels(ids []int) []Label {
	out := make([]Label, len(ids))
	for i, id := range ids {
		out[i] = d.labels[id]
	}
	return out
}

// Len returns the number of distinct items.
func (d *Dictionary) Len() int {
	return len(d.labels)
}
