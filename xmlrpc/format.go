package xmlrpc

// Format is the (encoding, allow-none) key that determines the byte-level
// shape of an encoded request. It is comparable, so it can be used
// directly as a map key by the Two-Stage dispatcher's shared-encoding
// optimization: two proxies with an equal Format produce byte-identical
// bodies for equal Calls.
type Format struct {
	// Encoding names the XML declaration's encoding attribute, e.g.
	// "UTF-8" or "ISO-8859-1". An empty string means the declaration
	// omits the attribute (UTF-8 is assumed).
	Encoding string
	// AllowNone permits marshalling Go nil/untyped-nil as an XML-RPC
	// <nil/> extension value. When false, Marshal rejects nil params.
	AllowNone bool
}
