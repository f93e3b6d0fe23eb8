package entities

// DefaultPriority is assigned to categories missing from the priority table
const DefaultPriority = 999

// PriorityEntry assigns a priority to a product category; lower is more important
type PriorityEntry struct {
	Category string
	Priority int
}

// Priorities maps categories to priorities with a fallback for unlisted categories
type Priorities struct {
	byCategory map[string]int
	fallback   int
}

// NewPriorities creates a priority lookup. Later entries override earlier ones.
func NewPriorities(entries []PriorityEntry, fallback int) *Priorities {
	p := &Priorities{
		byCategory: make(map[string]int, len(entries)),
		fallback:   fallback,
	}
	for _, e := range entries {
		p.byCategory[e.Category] = e.Priority
	}
	return p
}

// Of returns the priority for a category
func (p *Priorities) Of(category string) int {
	if p == nil {
		return DefaultPriority
	}
	if priority, ok := p.byCategory[category]; ok {
		return priority
	}
	return p.fallback
}

// Len returns the number of explicitly listed categories
func (p *Priorities) Len() int {
	if p == nil {
		return 0
	}
	return len(p.byCategory)
}
