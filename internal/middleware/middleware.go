package middleware

// Header is the subset of header operations middlewares rely on. It is
// satisfied by embedded request headers and by the response writer adapter.
type Header interface {
	Value(key string) string
	Set(key string, value string)
	Remove(key string)
}

type RequestMiddleware interface {
	HandleRequest(header Header) error
}

type ResponseMiddleware interface {
	HandleResponse(header Header, body []byte) error
}
