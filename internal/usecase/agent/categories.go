package agent

import (
	"strings"
	"unicode"
)

type newsCategory struct {
	name     string
	keywords []string
}

// newsCategories are checked in order; the first match wins. Keywords match
// whole words or phrases, so "ai" does not match "said".
var newsCategories = []newsCategory{
	{"Sports", []string{
		"sports", "sport", "match", "tournament", "player", "team", "championship",
		"league", "cup", "trophy", "coach", "athlete", "stadium", "olympics", "medal",
		"cricket", "ipl", "odi", "t20", "wicket", "batting", "bowling",
		"football", "soccer", "fifa", "premier league", "champions league", "uefa", "striker", "goalkeeper",
		"basketball", "nba", "playoff", "tennis", "wimbledon", "grand slam",
		"baseball", "mlb", "hockey", "nhl", "golf", "formula 1", "f1",
		"boxing", "ufc", "rugby", "marathon", "swimming",
	}},
	{"Politics", []string{
		"government", "minister", "prime minister", "president", "cabinet", "governor", "mayor",
		"election", "vote", "voting", "ballot", "campaign", "candidate", "poll",
		"democracy", "democrat", "republican", "congress", "senate",
		"parliament", "legislation", "bill", "law", "amendment", "constitution", "policy", "regulation",
		"party", "political", "coalition", "opposition",
		"diplomatic", "diplomacy", "treaty", "summit", "united nations", "nato", "g7", "g20",
		"supreme court", "high court", "judiciary",
	}},
	{"Business", []string{
		"business", "economy", "economic", "market", "stock", "shares", "trading", "investor",
		"investment", "finance", "financial", "bank", "banking", "nasdaq", "dow jones", "wall street",
		"company", "corporate", "industry", "ceo", "revenue", "profit", "earnings", "quarterly",
		"merger", "acquisition", "ipo", "valuation", "startup", "venture capital", "funding",
		"gdp", "inflation", "recession", "unemployment", "interest rate", "budget", "deficit",
		"trade", "export", "import", "tariff", "retail", "consumer", "sales",
	}},
	{"Technology", []string{
		"technology", "tech", "digital", "ai", "artificial intelligence", "machine learning",
		"chatgpt", "llm", "generative ai", "software", "hardware", "chip", "semiconductor",
		"cloud", "data center", "internet", "website", "social media",
		"smartphone", "iphone", "android", "gadget", "blockchain", "cryptocurrency", "crypto",
		"bitcoin", "virtual reality", "5g", "quantum computing", "google", "apple", "microsoft",
		"amazon", "meta", "nvidia", "samsung", "app", "cybersecurity", "hack", "data breach", "privacy",
	}},
	{"Entertainment", []string{
		"movie", "film", "cinema", "hollywood", "bollywood", "actor", "actress", "celebrity",
		"box office", "premiere", "trailer", "netflix", "streaming", "series", "episode", "tv", "television",
		"music", "song", "album", "singer", "band", "concert", "tour", "spotify", "grammy",
		"award", "oscar", "emmy", "festival", "red carpet", "video game", "esports", "playstation",
		"xbox", "nintendo", "entertainment", "fashion",
	}},
	{"Health", []string{
		"health", "healthcare", "medical", "medicine", "doctor", "nurse", "hospital", "clinic",
		"disease", "illness", "cancer", "diabetes", "heart", "stroke", "alzheimer",
		"covid", "covid-19", "coronavirus", "pandemic", "epidemic", "outbreak", "vaccine", "vaccination",
		"treatment", "therapy", "medication", "drug", "surgery", "diagnosis", "patient", "symptom",
		"infection", "virus", "quarantine", "who", "cdc", "fda", "mental health", "nutrition",
		"pharmaceutical", "clinical trial",
	}},
	{"Science", []string{
		"science", "scientific", "research", "study", "experiment", "laboratory", "scientist",
		"researcher", "discovery", "breakthrough", "space", "nasa", "isro", "rocket", "satellite",
		"mars", "moon", "planet", "galaxy", "astronomy", "astronaut", "telescope",
		"physics", "particle", "nuclear", "black hole", "chemistry", "molecule", "biology", "dna",
		"gene", "genetic", "evolution", "species", "ecosystem", "climate", "climate change",
		"global warming", "environment", "conservation", "carbon", "emission", "renewable",
	}},
}

// categorize groups pins by the first category with a matching keyword in
// title or description. Empty categories are omitted.
func categorize(pins []NewsPin) map[string][]NewsPin {
	out := make(map[string][]NewsPin)
	for _, p := range pins {
		name := categoryOf(p.Title + " " + p.Description)
		out[name] = append(out[name], p)
	}
	return out
}

func categoryOf(text string) string {
	padded := " " + normalizeWords(text) + " "
	for _, c := range newsCategories {
		for _, kw := range c.keywords {
			if strings.Contains(padded, " "+kw+" ") {
				return c.name
			}
		}
	}
	return categoryOther
}

// normalizeWords lowercases s and turns every rune that cannot be part of a
// keyword into a single space.
func normalizeWords(s string) string {
	var b strings.Builder
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}
