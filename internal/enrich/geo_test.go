package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticGeoResolverLongestPrefixWins(t *testing.T) {
	resolver := NewStaticGeoResolver(map[string]Location{
		"10.":    {Country: "mx", City: "mexico city"},
		"10.20.": {Country: "mx", City: "monterrey"},
		"192.":   {Country: "us", City: "austin"},
	})

	loc, err := resolver.Lookup(context.Background(), "10.20.30.40")
	require.NoError(t, err)
	require.Equal(t, Location{Country: "MX", City: "Monterrey"}, loc)

	loc, err = resolver.Lookup(context.Background(), "10.99.1.1")
	require.NoError(t, err)
	require.Equal(t, Location{Country: "MX", City: "Mexico City"}, loc)
}

func TestStaticGeoResolverNoMatch(t *testing.T) {
	resolver := NewStaticGeoResolver(map[string]Location{
		"10.": {Country: "mx", City: "monterrey"},
	})

	loc, err := resolver.Lookup(context.Background(), "203.0.113.9")
	require.NoError(t, err)
	require.Equal(t, Location{}, loc)
}

func TestStaticGeoResolverNilSafe(t *testing.T) {
	var resolver *StaticGeoResolver
	loc, err := resolver.Lookup(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, Location{}, loc)
}
