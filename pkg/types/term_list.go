package types

// TermList holds governance term statements (permissions, prohibitions
// or obligations) stored as a jsonb array.
type TermList []string

// IsEmpty reports whether no terms are defined.
func (t TermList) IsEmpty() bool {
	return len(t) == 0
}
