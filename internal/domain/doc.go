// Package domain defines the records exchanged with the booking backend.
//
// # Overview
//
// Every record is an opaque server-defined entity keyed by a stable,
// server-assigned id. The id is used as the list key and as the target of
// update and delete calls. Fields the console does not render are ignored on
// decode.
//
// # Localized Names
//
// Several resources (countries, provinces, cities, routes, stations, pages,
// expense categories) carry names as an object with one value per locale:
//
//	{"en": "Kabul", "ps": "کابل", "fa": "کابل"}
//
// LocalizedName decodes that object and also accepts a bare string, which
// older endpoints still return. Display picks the requested locale and falls
// back to English, then to any non-empty value.
//
// # Pagination
//
// PageInfo mirrors the pagination block of list envelopes. Its values are
// trusted as returned; the console never clamps them.
//
// # Timestamps
//
// Timestamps stay strings on the wire. Parse helpers accept RFC3339 and the
// backend's "2006-01-02 15:04:05" layout and return the zero time otherwise.
package domain
