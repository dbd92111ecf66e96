package normalizer

import "github.com/tidwall/gjson"

// listKeys are the top-level keys a recommendations payload may wrap its list
// in, checked in this order.
var listKeys = []string{"recommendations", "parks", "spots", "places", "hiking_spots"}

type field int

const (
	fieldName field = iota
	fieldType
	fieldDistance
	fieldWhy
	fieldBestTime
	fieldDuration
	fieldDifficulty
	fieldWeather
	fieldTransport
	fieldWhatToCarry
	fieldSafetyNotes
	fieldMapsURL
	fieldPhotoURL
	fieldAddress
	fieldRating
)

// aliases lists, for every canonical recommendation field, the source keys
// accepted for it in priority order. Different prompt runs name the same data
// differently; new spellings go here.
var aliases = map[field][]string{
	fieldName:        {"name"},
	fieldType:        {"type"},
	fieldDistance:    {"distance", "location"},
	fieldWhy:         {"why", "accessibility"},
	fieldBestTime:    {"best_time", "bestTime"},
	fieldDuration:    {"duration"},
	fieldDifficulty:  {"difficulty"},
	fieldWeather:     {"weather"},
	fieldTransport:   {"transport"},
	fieldWhatToCarry: {"what_to_carry", "whatToCarry", "facilities"},
	fieldSafetyNotes: {"safety_notes", "safetyNotes", "safety"},
	fieldMapsURL:     {"mapsUrl", "maps_url"},
	fieldPhotoURL:    {"photoUrl", "photo_url"},
	fieldAddress:     {"address"},
	fieldRating:      {"rating"},
}

// lookup returns the first truthy value among the aliases of f. A missing,
// null, false, zero or empty-string value falls through to the next alias.
func lookup(obj gjson.Result, f field) gjson.Result {
	for _, key := range aliases[f] {
		if v := obj.Get(key); truthy(v) {
			return v
		}
	}
	return gjson.Result{}
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	default:
		return true
	}
}

func stringOf(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.Str
	default:
		return v.String()
	}
}

// stringsOf converts an array to a string slice, dropping null elements.
// A truthy scalar becomes a one-element slice. The result is never nil.
func stringsOf(v gjson.Result) []string {
	if v.IsArray() {
		items := v.Array()
		out := make([]string, 0, len(items))
		for _, item := range items {
			if item.Type == gjson.Null {
				continue
			}
			out = append(out, stringOf(item))
		}
		return out
	}
	if truthy(v) && !v.IsObject() {
		return []string{stringOf(v)}
	}
	return []string{}
}
