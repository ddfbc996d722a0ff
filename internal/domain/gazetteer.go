package domain

import (
	"strings"
	"unicode/utf8"
)

// Place types, from most to least specific.
const (
	PlaceSlum         = "slum"
	PlaceNeighborhood = "neighborhood"
	PlaceCommune      = "commune"
	PlaceCity         = "city"
)

// TypeRank orders place types by specificity; unknown types rank 0.
func TypeRank(placeType string) int {
	switch placeType {
	case PlaceSlum:
		return 4
	case PlaceNeighborhood:
		return 3
	case PlaceCommune:
		return 2
	case PlaceCity:
		return 1
	default:
		return 0
	}
}

// Place is one gazetteer entry. Canonical is the spelling stored in
// location_text and used as the location_hierarchy key.
type Place struct {
	Canonical string
	Variants  []string
	Type      string
	Parent    string
}

// Gazetteer lists the Haitian places recognised in free text.
var Gazetteer = []Place{
	{"Cité Soleil", []string{"Cité Soleil", "Cite Soleil", "Soleil"}, PlaceSlum, "Port-au-Prince"},
	{"La Saline", []string{"La Saline", "Lasaline"}, PlaceSlum, "Port-au-Prince"},
	{"Village de Dieu", []string{"Village de Dieu"}, PlaceSlum, "Port-au-Prince"},
	{"Martissant", []string{"Martissant"}, PlaceNeighborhood, "Port-au-Prince"},
	{"Bel Air", []string{"Bel Air", "Bel-Air", "Belair"}, PlaceNeighborhood, "Port-au-Prince"},
	{"Delmas", []string{"Delmas"}, PlaceNeighborhood, "Port-au-Prince"},
	{"Pétion-Ville", []string{"Pétion-Ville", "Petion-Ville", "Petionville"}, PlaceNeighborhood, "Port-au-Prince"},
	{"Boston", []string{"Boston"}, PlaceNeighborhood, "Port-au-Prince"},
	{"Tokyo", []string{"Tokyo"}, PlaceNeighborhood, "Port-au-Prince"},
	{"Wharf Jérémie", []string{"Wharf Jérémie", "Wharf Jeremie"}, PlaceNeighborhood, "Port-au-Prince"},
	{"Carrefour", []string{"Carrefour"}, PlaceCommune, "Port-au-Prince"},
	{"Tabarre", []string{"Tabarre"}, PlaceCommune, "Port-au-Prince"},
	{"Croix-des-Bouquets", []string{"Croix-des-Bouquets", "Croix des Bouquets"}, PlaceCommune, "Ouest"},
	{"Kenscoff", []string{"Kenscoff", "Kenskoff"}, PlaceCommune, "Ouest"},
	{"Gressier", []string{"Gressier"}, PlaceCommune, "Ouest"},
	{"Grand-Goâve", []string{"Grand-Goâve", "Grand Goave", "Grand-Goave"}, PlaceCommune, "Ouest"},
	{"Léogâne", []string{"Léogâne", "Leogane"}, PlaceCommune, "Ouest"},
	{"Dessalines", []string{"Dessalines"}, PlaceCommune, "Artibonite"},
	{"Ponte-Sondé", []string{"Ponte-Sondé", "Ponte Sonde", "Pont-Sondé"}, PlaceCommune, "Artibonite"},
	{"Fort-Dauphin", []string{"Fort-Dauphin", "Fort Dauphin"}, PlaceCommune, "Nord"},
	{"Ouanaminthe", []string{"Ouanaminthe"}, PlaceCommune, "Nord"},
	{"Fort-Liberté", []string{"Fort-Liberté", "Fort Liberte"}, PlaceCommune, "Nord-Est"},
	{"Mirebalais", []string{"Mirebalais"}, PlaceCommune, "Centre"},
	{"Gonaïves", []string{"Gonaïves", "Gonaives"}, PlaceCity, "Artibonite"},
	{"Saint-Marc", []string{"Saint-Marc", "Saint Marc"}, PlaceCity, "Artibonite"},
	{"Cap-Haïtien", []string{"Cap-Haïtien", "Cap-Haitien", "Cap Haitien", "Le Cap"}, PlaceCity, "Nord"},
	{"Les Cayes", []string{"Les Cayes", "Cayes"}, PlaceCity, "Sud"},
	{"Jérémie", []string{"Jérémie", "Jeremie"}, PlaceCity, "Grande-Anse"},
	{"Hinche", []string{"Hinche"}, PlaceCity, "Centre"},
	{"Miragoâne", []string{"Miragoâne", "Miragoane"}, PlaceCity, "Nippes"},
	{"Jacmel", []string{"Jacmel"}, PlaceCity, "Sud-Est"},
	{"Port-au-Prince", []string{"Port-au-Prince", "Port au Prince"}, PlaceCity, "Ouest"},
}

// PlaceMatch is a gazetteer hit in a text.
type PlaceMatch struct {
	Place   Place
	Variant string
	Offset  int
}

// FindPlace returns the most specific gazetteer place mentioned in text.
// Variants match whole words, case-insensitively. Ties on type go to the
// longer variant, then to the earlier mention.
func FindPlace(text string) (PlaceMatch, bool) {
	lower := strings.ToLower(text)
	var best PlaceMatch
	found := false
	for _, p := range Gazetteer {
		for _, v := range p.Variants {
			i := indexWord(lower, strings.ToLower(v), true)
			if i < 0 {
				continue
			}
			m := PlaceMatch{Place: p, Variant: v, Offset: i}
			if !found || betterMatch(m, best) {
				best = m
				found = true
			}
		}
	}
	return best, found
}

func betterMatch(a, b PlaceMatch) bool {
	ra, rb := TypeRank(a.Place.Type), TypeRank(b.Place.Type)
	if ra != rb {
		return ra > rb
	}
	la, lb := utf8.RuneCountInString(a.Variant), utf8.RuneCountInString(b.Variant)
	if la != lb {
		return la > lb
	}
	return a.Offset < b.Offset
}

// LookupPlace finds the gazetteer entry whose canonical name or one of its
// variants equals name, ignoring case and surrounding space.
func LookupPlace(name string) (Place, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Place{}, false
	}
	for _, p := range Gazetteer {
		for _, v := range p.Variants {
			if strings.EqualFold(v, name) {
				return p, true
			}
		}
	}
	return Place{}, false
}

// ResolveLocation picks the final location for a report. A guess naming a
// gazetteer entry is rewritten to its canonical spelling. The gazetteer's
// place found in text replaces the guess when the guess is empty or just
// "Haiti", when it is shorter, or when it names a less specific place.
// The returned place is nil when the final location is not in the gazetteer.
func ResolveLocation(text, guess string) (string, *Place) {
	guess = strings.TrimSpace(guess)
	if p, ok := LookupPlace(guess); ok {
		guess = p.Canonical
	}
	guessPlace, guessKnown := FindPlace(guess)

	m, ok := FindPlace(text)
	if !ok {
		if guessKnown {
			return guess, &guessPlace.Place
		}
		return guess, nil
	}

	upgrade := guess == "" ||
		strings.EqualFold(guess, "Haiti") ||
		utf8.RuneCountInString(m.Place.Canonical) > utf8.RuneCountInString(guess) ||
		(guessKnown && TypeRank(guessPlace.Place.Type) < TypeRank(m.Place.Type))
	if upgrade {
		return m.Place.Canonical, &m.Place
	}
	if guessKnown {
		return guess, &guessPlace.Place
	}
	return guess, nil
}
