package xmlrpc

import "fmt"

// Fault is a well-formed XML-RPC application-level error: a <fault>
// response carrying an integer faultCode and a string faultString. It
// satisfies the error interface so it can be returned and inspected with
// errors.As like any other error.
type Fault struct {
	Code    int
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("xmlrpc fault %d: %s", f.Code, f.Message)
}
