package domain

// Category is a known suggestion category label.
type Category string

const (
	CategoryEnvironment Category = "Environment"
	CategoryLighting    Category = "Lighting"
	CategoryStyleAngle  Category = "Style & Angle"
	CategoryVisuals     Category = "Visuals"
)

// InitialCategories are requested for scene ideas, in display order.
var InitialCategories = []Category{CategoryEnvironment, CategoryLighting, CategoryStyleAngle}

// RefinementCategories are requested for refinement ideas, in display order.
var RefinementCategories = []Category{CategoryVisuals, CategoryEnvironment}

// SuggestionGroup holds the phrases for one category.
type SuggestionGroup struct {
	Category Category `json:"category"`
	Phrases  []string `json:"phrases"`
}

// SuggestionSet is an ordered, categorized list of short phrases.
type SuggestionSet struct {
	Groups []SuggestionGroup `json:"groups"`
}

// Empty reports whether the set has no phrases at all.
func (s SuggestionSet) Empty() bool {
	for _, g := range s.Groups {
		if len(g.Phrases) > 0 {
			return false
		}
	}
	return true
}

// Phrases returns the phrases for a category, or nil.
func (s SuggestionSet) Phrases(c Category) []string {
	for _, g := range s.Groups {
		if g.Category == c {
			return g.Phrases
		}
	}
	return nil
}

// Clone returns a deep copy so snapshots cannot alias live state.
func (s SuggestionSet) Clone() SuggestionSet {
	if len(s.Groups) == 0 {
		return SuggestionSet{}
	}
	out := SuggestionSet{Groups: make([]SuggestionGroup, len(s.Groups))}
	for i, g := range s.Groups {
		out.Groups[i] = SuggestionGroup{Category: g.Category, Phrases: append([]string(nil), g.Phrases...)}
	}
	return out
}

// InitialFallback is used whenever scene ideas cannot be fetched.
func InitialFallback() SuggestionSet {
	return SuggestionSet{Groups: []SuggestionGroup{
		{Category: CategoryEnvironment, Phrases: []string{"On a rustic wooden table", "Minimalist studio background"}},
		{Category: CategoryLighting, Phrases: []string{"Soft, natural window light", "Dramatic, single spotlight"}},
		{Category: CategoryStyleAngle, Phrases: []string{"Top-down flat lay", "Eye-level cinematic shot"}},
	}}
}

// RefinementFallback is used whenever refinement ideas cannot be fetched.
func RefinementFallback() SuggestionSet {
	return SuggestionSet{Groups: []SuggestionGroup{
		{Category: CategoryVisuals, Phrases: []string{"Make the lighting warmer", "Try a different angle"}},
		{Category: CategoryEnvironment, Phrases: []string{"Add more relevant props", "Change the background color"}},
	}}
}
