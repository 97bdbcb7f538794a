// Package semantic maps free text onto a fixed set of topical domains. The
// classifier backs two callers: intent classification (normalizing an
// ambiguous category name) and relevance scoring (crediting candidates whose
// recorded domain matches the query's).
package semantic

// Domain is a named topic: root terms, subtype vocabularies, edge-case
// terms, a target vault folder with an ordered fallback chain, and a
// specificity weight used to break score ties (narrow domains outrank broad
// ones at equal score).
type Domain struct {
	Name        string
	Terms       []string
	Subtypes    map[string][]string
	EdgeCases   []string
	Folder      string
	Fallbacks   []string
	Specificity int
}

// domains is the built-in topic table. Folder assignments may be overridden
// per-domain through configuration.
var domains = []Domain{
	{
		Name:  "wellness",
		Terms: []string{"wellness", "health", "wellbeing", "vitality", "lifestyle"},
		Subtypes: map[string][]string{
			"physical":  {"fitness", "exercise", "workout", "training", "sports", "movement"},
			"mental":    {"mindfulness", "meditation", "therapy", "psychology", "emotional"},
			"medical":   {"symptoms", "diagnosis", "treatment", "medicine", "conditions"},
			"nutrition": {"diet", "food", "recipes", "meal planning", "supplements"},
		},
		EdgeCases:   []string{"rare-conditions", "telemedicine", "health-insurance"},
		Folder:      "medical",
		Specificity: 2,
	},
	{
		Name:  "relationships",
		Terms: []string{"relationships", "social", "connections", "people", "community"},
		Subtypes: map[string][]string{
			"intimate":     {"partner", "dating", "marriage", "romance", "love"},
			"family":       {"family", "parents", "children", "siblings", "relatives"},
			"social":       {"friends", "networking", "social life", "groups"},
			"professional": {"colleagues", "mentors", "contacts", "collaborators"},
		},
		Folder:      "contacts",
		Specificity: 3,
	},
	{
		Name:  "personal",
		Terms: []string{"personal", "self", "individual", "private", "inner"},
		Subtypes: map[string][]string{
			"journal":  {"diary", "journal", "reflection", "thoughts", "feelings"},
			"growth":   {"goals", "habits", "improvement", "development", "learning"},
			"identity": {"values", "beliefs", "personality", "self-image", "purpose"},
			"memories": {"past", "history", "experiences", "stories", "nostalgia"},
		},
		EdgeCases:   []string{"burnout-prevention", "habit-formation", "digital-detox"},
		Folder:      "personal_development",
		Fallbacks:   []string{"personal_development", "medical"},
		Specificity: 2,
	},
	{
		Name:  "career",
		Terms: []string{"career", "professional", "work", "job", "occupation"},
		Subtypes: map[string][]string{
			"development": {"skills", "advancement", "promotion"},
			"workplace":   {"office", "team", "culture", "environment", "remote"},
			"leadership":  {"management", "leadership", "delegation", "vision"},
			"transition":  {"job search", "interview", "resume", "career change", "retirement"},
		},
		Specificity: 5,
	},
	{
		Name:  "business",
		Terms: []string{"business", "enterprise", "company", "startup", "commercial"},
		Subtypes: map[string][]string{
			"operations": {"processes", "workflow", "efficiency", "logistics", "supply chain"},
			"sales":      {"sales", "leads", "conversion", "pipeline", "customers"},
			"marketing":  {"marketing", "branding", "advertising", "social media"},
			"strategy":   {"planning", "analysis", "competition", "market"},
		},
		EdgeCases:   []string{"non-profit", "freelance", "remote-work", "crisis-management"},
		Folder:      "clients",
		Specificity: 6,
	},
	{
		Name:  "finance",
		Terms: []string{"finance", "money", "economic", "financial", "wealth"},
		Subtypes: map[string][]string{
			"personal":   {"budget", "savings", "expenses", "debt", "credit"},
			"investment": {"stocks", "bonds", "crypto", "portfolio", "returns"},
			"business":   {"revenue", "profit", "cash flow", "accounting", "taxes"},
			"planning":   {"retirement", "insurance", "estate", "security"},
		},
		Specificity: 7,
	},
	{
		Name:  "creative",
		Terms: []string{"creative", "artistic", "art", "creativity", "expression"},
		Subtypes: map[string][]string{
			"visual":     {"drawing", "painting", "design", "photography", "sculpture"},
			"writing":    {"stories", "poetry", "fiction", "journalism", "blogging"},
			"performing": {"music", "dance", "theater", "acting", "performance"},
			"crafts":     {"handmade", "diy", "crafting", "making"},
		},
		EdgeCases:   []string{"digital-art", "art-therapy", "arts-funding"},
		Folder:      "arts",
		Fallbacks:   []string{"arts"},
		Specificity: 6,
	},
	{
		Name:  "media",
		Terms: []string{"media", "entertainment", "content", "multimedia"},
		Subtypes: map[string][]string{
			"consumption": {"movies", "shows", "books", "podcasts", "videos"},
			"creation":    {"filming", "editing", "production", "streaming", "publishing"},
			"gaming":      {"games", "gaming", "esports", "virtual"},
			"social":      {"platforms", "posts", "followers", "engagement", "viral"},
		},
		Specificity: 3,
	},
	{
		Name:  "academic",
		Terms: []string{"academic", "scholarly", "research", "study", "education"},
		Subtypes: map[string][]string{
			"sciences":   {"physics", "chemistry", "biology", "mathematics"},
			"humanities": {"history", "philosophy", "literature", "languages", "culture"},
			"social":     {"sociology", "anthropology", "politics", "economics", "geography"},
			"applied":    {"engineering", "medicine", "law", "architecture"},
		},
		EdgeCases:   []string{"homeschooling", "adult-education", "standardized-testing"},
		Folder:      "education",
		Fallbacks:   []string{"education"},
		Specificity: 8,
	},
	{
		Name:  "technical",
		Terms: []string{"technical", "technology", "digital", "computing", "systems"},
		Subtypes: map[string][]string{
			"development":    {"programming", "coding", "software", "apps", "debugging"},
			"infrastructure": {"networks", "servers", "cloud", "devops", "security"},
			"data":           {"database", "analytics", "ai", "machine learning", "visualization"},
			"hardware":       {"devices", "components", "iot", "robotics", "electronics"},
		},
		EdgeCases:   []string{"ethical-hacking", "disaster-recovery", "legacy-systems"},
		Folder:      "technology",
		Fallbacks:   []string{"technology"},
		Specificity: 8,
	},
	{
		Name:  "domestic",
		Terms: []string{"domestic", "home", "household", "living", "daily"},
		Subtypes: map[string][]string{
			"home":    {"decoration", "organization", "cleaning", "maintenance", "improvement"},
			"cooking": {"recipes", "baking", "kitchen", "ingredients", "techniques"},
			"garden":  {"plants", "gardening", "landscaping", "outdoor", "growing"},
			"pets":    {"animals", "pet care", "veterinary", "adoption"},
		},
		EdgeCases:   []string{"food-preservation", "sustainable-eating", "food-allergies"},
		Folder:      "Foods",
		Specificity: 4,
	},
	{
		Name:  "travel",
		Terms: []string{"travel", "journey", "trip", "adventure", "exploration"},
		Subtypes: map[string][]string{
			"planning":     {"itinerary", "booking", "preparation"},
			"destinations": {"places", "countries", "cities", "attractions", "local"},
			"experiences":  {"tours", "activities"},
			"logistics":    {"transport", "accommodation", "documents", "packing"},
		},
		Specificity: 5,
	},
	{
		Name:  "spiritual",
		Terms: []string{"spiritual", "religious", "faith", "sacred", "divine"},
		Subtypes: map[string][]string{
			"practice":  {"prayer", "worship", "ritual", "ceremony", "devotion"},
			"study":     {"scripture", "theology", "doctrine", "teachings", "wisdom"},
			"mystical":  {"enlightenment", "consciousness", "transcendence", "awakening"},
			"community": {"congregation", "fellowship", "mission", "charity"},
		},
		EdgeCases:   []string{"secularism", "interfaith-dialogue", "religious-freedom"},
		Folder:      "religion",
		Fallbacks:   []string{"religion", "contacts"},
		Specificity: 7,
	},
	{
		Name:  "esoteric",
		Terms: []string{"esoteric", "occult", "mystical", "metaphysical", "arcane"},
		Subtypes: map[string][]string{
			"divination": {"tarot", "astrology", "numerology", "oracle", "readings"},
			"magick":     {"spells", "energy", "manifestation", "alchemy"},
			"systems":    {"kabbalah", "hermeticism", "gnosticism", "thelema", "chaos"},
			"phenomena":  {"psychic", "paranormal", "supernatural", "ufo", "cryptids"},
		},
		Specificity: 9,
	},
	{
		Name:  "nature",
		Terms: []string{"nature", "environment", "natural", "outdoor", "ecological"},
		Subtypes: map[string][]string{
			"exploration":  {"hiking", "camping", "wilderness", "survival"},
			"conservation": {"ecology", "sustainability", "climate", "protection", "green"},
			"observation":  {"wildlife", "birds", "weather", "seasons"},
			"activities":   {"fishing", "hunting", "foraging", "bushcraft"},
		},
		Specificity: 5,
	},
	{
		Name:  "civic",
		Terms: []string{"civic", "public", "society", "collective"},
		Subtypes: map[string][]string{
			"politics": {"government", "policy", "elections", "activism", "rights"},
			"service":  {"volunteer", "charity", "nonprofit", "causes", "impact"},
			"local":    {"neighborhood", "city", "council", "events", "issues"},
			"global":   {"international", "humanitarian", "peace", "justice"},
		},
		Specificity: 4,
	},
}

// Domains returns the built-in topic table.
func Domains() []Domain {
	return domains
}

// Lookup returns the domain with the given name, or nil.
func Lookup(name string) *Domain {
	for i := range domains {
		if domains[i].Name == name {
			return &domains[i]
		}
	}
	return nil
}
