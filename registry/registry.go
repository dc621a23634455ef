// Package registry supplies a Parallel Proxy's endpoint list from
// somewhere other than a static slice of URL strings.
package registry

// EndpointSource produces the list of endpoint URLs a Parallel Proxy
// should fan a call out to.
type EndpointSource interface {
	Endpoints() ([]string, error)
}

// StaticEndpoints is a fixed, constructor-supplied list of endpoint
// URLs.
type StaticEndpoints []string

// Endpoints returns the list unchanged.
func (s StaticEndpoints) Endpoints() ([]string, error) {
	return []string(s), nil
}
