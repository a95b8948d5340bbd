package enrich

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Location is the precomputed country/city pair attached to a login event.
type Location struct {
	Country string
	City    string
}

// GeoResolver resolves a source IP into a location. Production deployments
// plug in the external lookup service; the audit engine never geolocates
// itself.
type GeoResolver interface {
	Lookup(ctx context.Context, ip string) (Location, error)
}

// StaticGeoResolver answers from a fixed prefix table. Suitable for
// development and tests; longest matching prefix wins.
type StaticGeoResolver struct {
	entries map[string]Location
}

var titler = cases.Title(language.Und)

// NewStaticGeoResolver builds a resolver from an IP-prefix table. Country
// codes are upper-cased and city names title-cased on the way in.
func NewStaticGeoResolver(entries map[string]Location) *StaticGeoResolver {
	normalized := make(map[string]Location, len(entries))
	for prefix, loc := range entries {
		normalized[prefix] = Location{
			Country: strings.ToUpper(strings.TrimSpace(loc.Country)),
			City:    titler.String(strings.TrimSpace(loc.City)),
		}
	}
	return &StaticGeoResolver{entries: normalized}
}

// Lookup returns the location for the longest matching prefix, or an empty
// location when nothing matches. It never fails.
func (r *StaticGeoResolver) Lookup(_ context.Context, ip string) (Location, error) {
	if r == nil {
		return Location{}, nil
	}
	var best string
	var found Location
	for prefix, loc := range r.entries {
		if strings.HasPrefix(ip, prefix) && len(prefix) > len(best) {
			best = prefix
			found = loc
		}
	}
	return found, nil
}

var _ GeoResolver = (*StaticGeoResolver)(nil)
