package registry

import (
	"context"
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdEndpointSource discovers endpoint URLs stored as plain string
// values under an etcd key prefix:
//
//	Key:   {prefix}{anything}
//	Value: the endpoint URL, e.g. "http://10.0.0.12:9990/"
type EtcdEndpointSource struct {
	client *clientv3.Client
	prefix string
}

// NewEtcdEndpointSource connects to the given etcd endpoints and builds
// a source that discovers URLs under prefix.
func NewEtcdEndpointSource(etcdEndpoints []string, prefix string) (*EtcdEndpointSource, error) {
	c, err := clientv3.New(clientv3.Config{Endpoints: etcdEndpoints})
	if err != nil {
		return nil, fmt.Errorf("registry: connect to etcd: %w", err)
	}
	return &EtcdEndpointSource{client: c, prefix: prefix}, nil
}

// Endpoints queries etcd for every key under the configured prefix and
// returns their values as endpoint URLs.
func (s *EtcdEndpointSource) Endpoints() ([]string, error) {
	resp, err := s.client.Get(context.Background(), s.prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("registry: discover %s: %w", s.prefix, err)
	}

	urls := make([]string, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		urls = append(urls, string(kv.Value))
	}
	return urls, nil
}

// Watch streams a fresh endpoint list every time etcd reports a change
// under the prefix (new registration, removal, or lease expiry on the
// server side). The channel is closed when ctx is canceled.
func (s *EtcdEndpointSource) Watch(ctx context.Context) <-chan []string {
	out := make(chan []string, 1)
	go func() {
		defer close(out)
		watchChan := s.client.Watch(ctx, s.prefix, clientv3.WithPrefix())
		for range watchChan {
			urls, err := s.Endpoints()
			if err != nil {
				continue
			}
			select {
			case out <- urls:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Close releases the underlying etcd client connection.
func (s *EtcdEndpointSource) Close() error {
	return s.client.Close()
}
