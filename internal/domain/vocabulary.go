package domain

import "strings"

// Canonical event types.
const (
	EventViolence          = "violence"
	EventKidnapping        = "kidnapping"
	EventSexualViolence    = "sexual_violence"
	EventDisplacement      = "displacement"
	EventProtest           = "protest"
	EventLooting           = "looting"
	EventRoadblock         = "roadblock"
	EventSchoolClosure     = "school_closure"
	EventSchoolDestruction = "school_destruction"
	EventAidNeeded         = "aid_needed"
	EventHealthCrisis      = "health_crisis"
	EventFoodInsecurity    = "food_insecurity"
	EventChildRecruitment  = "child_recruitment"
	EventNaturalDisaster   = "natural_disaster"
	EventOther             = "other"
)

// EventTypes lists the vocabulary in prompt order, with the description the
// classifier is given for each entry.
var EventTypes = []struct {
	Name        string
	Description string
}{
	{EventViolence, "gang violence, shootings, armed attacks, killings"},
	{EventKidnapping, "kidnappings and abductions"},
	{EventSexualViolence, "rape and other sexual or gender-based violence"},
	{EventDisplacement, "people forced from their homes"},
	{EventProtest, "demonstrations and civil unrest"},
	{EventLooting, "looting and theft of goods or aid"},
	{EventRoadblock, "roadblocks, blockades, checkpoints"},
	{EventSchoolClosure, "schools closed because of insecurity"},
	{EventSchoolDestruction, "schools attacked, burned or occupied"},
	{EventAidNeeded, "urgent humanitarian assistance needs"},
	{EventHealthCrisis, "disease outbreaks, cholera, hospital closures"},
	{EventFoodInsecurity, "hunger, famine, food shortages"},
	{EventChildRecruitment, "children recruited or used by armed groups"},
	{EventNaturalDisaster, "earthquakes, hurricanes, floods and other natural hazards"},
	{EventOther, "anything that fits none of the above"},
}

// conflictEvents is the dashboard's "conflict only" allow-list.
var conflictEvents = map[string]bool{
	EventViolence:       true,
	EventKidnapping:     true,
	EventSexualViolence: true,
	EventDisplacement:   true,
	EventProtest:        true,
	EventLooting:        true,
	EventRoadblock:      true,
}

// IsConflictEvent reports whether eventType is on the conflict allow-list.
func IsConflictEvent(eventType string) bool {
	return conflictEvents[eventType]
}

// ConflictEventTypes returns the allow-list in vocabulary order.
func ConflictEventTypes() []string {
	out := make([]string, 0, len(conflictEvents))
	for _, et := range EventTypes {
		if conflictEvents[et.Name] {
			out = append(out, et.Name)
		}
	}
	return out
}

// IsKnownEventType reports whether s is in the canonical vocabulary.
func IsKnownEventType(s string) bool {
	for _, et := range EventTypes {
		if et.Name == s {
			return true
		}
	}
	return false
}

// ConflictKeywords indicate human conflict in free text.
var ConflictKeywords = []string{
	"gang", "shooting", "kidnap", "abduction", "armed", "conflict", "clash",
	"gunfire", "assassination", "homicide", "extortion", "looting", "blockade",
	"roadblock", "insecurity", "violence", "attack", "crossfire", "rape",
	"sexual violence",
}

// DisasterKeywords indicate a natural hazard in free text.
var DisasterKeywords = []string{
	"earthquake", "tremor", "flood", "hurricane", "storm", "cyclone",
	"tropical storm", "landslide", "mudslide", "rainstorm", "drought",
	"wildfire", "tsunami", "aftershock",
}

// disasterCues are matched against the classifier's own label.
var disasterCues = []string{
	"earthquake", "flood", "hurricane", "storm", "cyclone", "landslide", "drought", "tsunami",
}

// eventAliases maps variant labels onto the vocabulary. Order matters:
// "sexual_violence" must be tried before "violence".
var eventAliases = []struct{ fragment, canonical string }{
	{"sexual", EventSexualViolence},
	{"rape", EventSexualViolence},
	{"kidnap", EventKidnapping},
	{"abduct", EventKidnapping},
	{"hostage", EventKidnapping},
	{"displace", EventDisplacement},
	{"protest", EventProtest},
	{"demonstrat", EventProtest},
	{"riot", EventProtest},
	{"loot", EventLooting},
	{"roadblock", EventRoadblock},
	{"blockade", EventRoadblock},
	{"violence", EventViolence},
	{"attack", EventViolence},
	{"shoot", EventViolence},
	{"armed", EventViolence},
	{"killing", EventViolence},
	{"murder", EventViolence},
}

// NormalizeEventType maps a classifier label onto the vocabulary, using the
// report text as a tie-breaker for generic labels. Unmappable labels are
// returned lower-cased rather than discarded.
func NormalizeEventType(eventType, text string) string {
	e := strings.ToLower(strings.TrimSpace(eventType))
	if e == "" {
		return EventOther
	}
	for _, cue := range disasterCues {
		if strings.Contains(e, cue) {
			return EventNaturalDisaster
		}
	}
	if e != EventOther && IsKnownEventType(e) {
		return e
	}
	for _, alias := range eventAliases {
		if strings.Contains(e, alias.fragment) {
			return alias.canonical
		}
	}
	// For generic labels disaster terms in text win over conflict terms, so
	// text mentioning both normalizes to natural_disaster. Fallback checks
	// conflict terms first; the two orders are intentional.
	if ContainsKeyword(text, DisasterKeywords) {
		return EventNaturalDisaster
	}
	if ContainsKeyword(text, ConflictKeywords) {
		return EventViolence
	}
	return e
}

// IsConflictRelated reports whether a normalized report belongs to the
// conflict-monitoring domain: an allow-listed type, or conflict keywords in
// text for anything but natural disasters.
func IsConflictRelated(eventType, text string) bool {
	if eventType == EventNaturalDisaster {
		return false
	}
	if IsConflictEvent(eventType) {
		return true
	}
	return ContainsKeyword(text, ConflictKeywords)
}
