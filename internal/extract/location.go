package extract

import (
	"regexp"
	"strings"

	"aujobs-engine/internal/domain"
)

// Australian city-to-state mapping, major cities and regional centres.
var cityToState = map[string]string{
	// New South Wales
	"sydney": "NSW", "newcastle": "NSW", "wollongong": "NSW", "central coast": "NSW",
	"maitland": "NSW", "wagga wagga": "NSW", "albury": "NSW", "port macquarie": "NSW",
	"tamworth": "NSW", "orange": "NSW", "dubbo": "NSW", "bathurst": "NSW",
	"lismore": "NSW", "nowra": "NSW", "north sydney": "NSW", "parramatta": "NSW",

	// Victoria
	"melbourne": "VIC", "geelong": "VIC", "ballarat": "VIC", "bendigo": "VIC",
	"shepparton": "VIC", "mildura": "VIC", "warrnambool": "VIC", "wodonga": "VIC",
	"traralgon": "VIC", "horsham": "VIC",

	// Queensland
	"brisbane": "QLD", "gold coast": "QLD", "sunshine coast": "QLD", "townsville": "QLD",
	"cairns": "QLD", "toowoomba": "QLD", "mackay": "QLD", "rockhampton": "QLD",
	"bundaberg": "QLD", "hervey bay": "QLD", "gladstone": "QLD", "ipswich": "QLD",

	// South Australia
	"adelaide": "SA", "mount gambier": "SA", "whyalla": "SA", "port lincoln": "SA",
	"port augusta": "SA", "murray bridge": "SA",

	// Western Australia
	"perth": "WA", "mandurah": "WA", "bunbury": "WA", "geraldton": "WA",
	"albany": "WA", "kalgoorlie": "WA", "busselton": "WA", "rockingham": "WA",

	// Tasmania
	"hobart": "TAS", "launceston": "TAS", "devonport": "TAS", "burnie": "TAS",

	// Northern Territory
	"darwin": "NT", "alice springs": "NT", "palmerston": "NT",

	// Australian Capital Territory
	"canberra": "ACT",
}

// State and territory names on their own are not locations we keep.
var stateNames = map[string]bool{
	"new south wales": true, "nsw": true, "victoria": true, "vic": true,
	"queensland": true, "qld": true, "south australia": true, "sa": true,
	"western australia": true, "wa": true, "tasmania": true, "tas": true,
	"northern territory": true, "nt": true,
	"australian capital territory": true, "act": true,
}

var nonCityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`cbd and inner suburbs`),
	regexp.MustCompile(`inner suburbs`),
	regexp.MustCompile(`western suburbs`),
	regexp.MustCompile(`eastern suburbs`),
	regexp.MustCompile(`northern suburbs`),
	regexp.MustCompile(`southern suburbs`),
	regexp.MustCompile(`metro`),
	regexp.MustCompile(`metropolitan`),
	regexp.MustCompile(`region`),
	regexp.MustCompile(`area`),
	regexp.MustCompile(`greater\s+\w+`),
}

var stateAbbrevRe = regexp.MustCompile(`(?i)\b(NSW|VIC|QLD|SA|WA|TAS|NT|ACT)\b`)

// NormalizeLocations turns raw location strings into city/state pairs.
// Suburbs collapse to their main city ("Fortitude Valley, Brisbane QLD" ->
// Brisbane QLD), bare state names are dropped, and "Australia" is preserved
// as a country-level fallback. The result is deduped in input order.
func NormalizeLocations(raw []string) []domain.Location {
	var out []domain.Location
	seen := map[domain.Location]bool{}

	add := func(loc domain.Location) {
		if loc.City == "" || seen[loc] {
			return
		}
		seen[loc] = true
		out = append(out, loc)
	}

	for _, location := range raw {
		location = strings.TrimSpace(location)
		if location == "" {
			continue
		}
		lower := strings.ToLower(location)

		if lower == "australia" || lower == "au" {
			add(domain.Location{City: "Australia"})
			continue
		}
		if stateNames[lower] {
			continue
		}
		if matchesNonCity(lower) {
			continue
		}

		if m := stateAbbrevRe.FindStringIndex(location); m != nil {
			state := strings.ToUpper(location[m[0]:m[1]])
			before := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(location[:m[0]]), ","))

			// "Suburb, City STATE": the main city is the last comma part.
			city := before
			if i := strings.LastIndex(before, ","); i >= 0 {
				city = strings.TrimSpace(before[i+1:])
			}
			if _, known := cityToState[strings.ToLower(city)]; known {
				add(domain.Location{City: title(city), State: state})
			}
			continue
		}

		// No state abbreviation: look the parts up in the known-city table.
		if strings.Contains(location, ",") {
			parts := strings.Split(location, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				part := strings.TrimSpace(parts[i])
				if state, ok := cityToState[strings.ToLower(part)]; ok {
					add(domain.Location{City: title(part), State: state})
					break
				}
			}
			continue
		}
		if state, ok := cityToState[lower]; ok {
			add(domain.Location{City: title(location), State: state})
		}
	}

	return out
}

func matchesNonCity(lower string) bool {
	for _, re := range nonCityPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

func title(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
