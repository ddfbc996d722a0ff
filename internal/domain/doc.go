// Package domain models humanitarian reports about Haiti and the rules that
// turn a raw ReliefWeb document (or manually entered text) into a stored,
// classified report.
//
// # Data Source
//
// Documents come from the ReliefWeb v1 API (https://api.reliefweb.int/v1).
// Each content type ("reports", "blog", "references") is fetched separately
// and flattened into a [RawDocument]: title, body, source label, content
// type, canonical URL and publication date. Disaster entries are never
// ingested.
//
// # Event Vocabulary
//
// A single closed vocabulary is used for event_type:
//
//	violence, kidnapping, sexual_violence, displacement, protest, looting,
//	roadblock, school_closure, school_destruction, aid_needed, health_crisis,
//	food_insecurity, child_recruitment, natural_disaster, other
//
// The first seven form the conflict allow-list used by the dashboard's
// "conflict only" toggle. Classifier output outside the vocabulary is mapped
// by [NormalizeEventType]; strings that cannot be mapped are kept as-is.
//
// # Locations
//
// The [Gazetteer] is a hand-curated list of Haitian places with spelling
// variants and a type (slum, neighborhood, commune, city). When several
// places match a text the most specific type wins. The 18-row
// [SeedHierarchy] backs the location_hierarchy table and supplies
// coordinates before any external geocoder is consulted.
//
// # Severity
//
// Severity is an integer from 1 (minor) to 5 (mass casualty). Anything the
// classifier returns outside that range is replaced by [DefaultSeverity].
package domain
