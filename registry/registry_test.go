package registry

import (
	"reflect"
	"testing"
)

func TestStaticEndpointsReturnsItself(t *testing.T) {
	s := StaticEndpoints{"http://a", "http://b"}
	urls, err := s.Endpoints()
	if err != nil {
		t.Fatalf("Endpoints failed: %v", err)
	}
	if !reflect.DeepEqual(urls, []string{"http://a", "http://b"}) {
		t.Fatalf("unexpected urls: %v", urls)
	}
}

func TestStaticEndpointsSatisfiesEndpointSource(t *testing.T) {
	var _ EndpointSource = StaticEndpoints{}
}
