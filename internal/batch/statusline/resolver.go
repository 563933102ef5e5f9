package statusline

import (
	"net/url"
	"strings"

	"odata_batch/internal/batch/batcherr"
)

// Target is a request target resolved against the service root. All parts
// stay exactly as they appeared on the wire.
type Target struct {
	BaseURI      string
	ResourcePath string
	Query        string
	RequestURI   string
}

// Resolver maps embedded request targets onto the service root.
type Resolver struct {
	scheme    string
	authority string
	rootPath  string
	base      string
}

// NewResolver builds the service root from an absolute base URI and an
// optional path prefix appended as further segments.
func NewResolver(baseURI, prefix string) (*Resolver, error) {
	u, err := url.Parse(strings.TrimSpace(baseURI))
	if err != nil {
		return nil, batcherr.New(batcherr.InvalidBaseURI, 0, "parse base uri: %v", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, batcherr.New(batcherr.InvalidBaseURI, 0, "base uri %q is not absolute", baseURI)
	}

	rootPath := strings.TrimRight(u.EscapedPath(), "/")
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		rootPath += "/" + prefix
	}

	scheme := strings.ToLower(u.Scheme)
	return &Resolver{
		scheme:    scheme,
		authority: u.Host,
		rootPath:  rootPath,
		base:      scheme + "://" + u.Host + rootPath,
	}, nil
}

func (r *Resolver) BaseURI() string {
	return r.base
}

func splitScheme(target string) (scheme, rest string, ok bool) {
	idx := strings.Index(target, "://")
	if idx <= 0 {
		return "", "", false
	}
	scheme = target[:idx]
	for i := 0; i < len(scheme); i++ {
		c := scheme[i]
		letter := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
		if !letter && (i == 0 || !(c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.')) {
			return "", "", false
		}
	}
	return scheme, target[idx+3:], true
}

// trimRoot removes the service root path from the front of an
// origin-relative target, matching whole segments only.
func (r *Resolver) trimRoot(path string) (string, bool) {
	if !strings.HasPrefix(path, r.rootPath) {
		return "", false
	}
	rest := path[len(r.rootPath):]
	if rest != "" && rest[0] != '/' && rest[0] != '?' {
		return "", false
	}
	return rest, true
}

func hasInvalidChars(target string) bool {
	for i := 0; i < len(target); i++ {
		if c := target[i]; c <= ' ' || c == 0x7f {
			return true
		}
	}
	return false
}

// Resolve interprets target as an absolute URI, an origin-relative path
// (which must come with a Host matching the service authority) or a path
// relative to the service root.
func (r *Resolver) Resolve(target, host string, lineNumber int) (Target, error) {
	if target == "" || hasInvalidChars(target) {
		return Target{}, batcherr.New(batcherr.InvalidURI, lineNumber, "invalid request target %q", target)
	}

	var rest string
	if scheme, remainder, ok := splitScheme(target); ok {
		if _, err := url.Parse(target); err != nil {
			return Target{}, batcherr.New(batcherr.InvalidURI, lineNumber, "parse request target: %v", err)
		}
		end := strings.IndexAny(remainder, "/?")
		if end < 0 {
			end = len(remainder)
		}
		authority, path := remainder[:end], remainder[end:]
		if !strings.EqualFold(scheme, r.scheme) || !strings.EqualFold(authority, r.authority) {
			return Target{}, batcherr.New(batcherr.InvalidBaseURI, lineNumber,
				"request target %q is not below service root %q", target, r.base)
		}
		trimmed, ok := r.trimRoot(path)
		if !ok {
			return Target{}, batcherr.New(batcherr.InvalidBaseURI, lineNumber,
				"request target %q is not below service root %q", target, r.base)
		}
		rest = trimmed
	} else if strings.HasPrefix(target, "/") {
		if _, err := url.ParseRequestURI(target); err != nil {
			return Target{}, batcherr.New(batcherr.InvalidURI, lineNumber, "parse request target: %v", err)
		}
		if host == "" {
			return Target{}, batcherr.New(batcherr.InvalidURI, lineNumber,
				"origin-relative target %q requires a Host header", target)
		}
		if !strings.EqualFold(host, r.authority) {
			return Target{}, batcherr.New(batcherr.InvalidURI, lineNumber,
				"host %q does not match service authority %q", host, r.authority)
		}
		trimmed, ok := r.trimRoot(target)
		if !ok {
			return Target{}, batcherr.New(batcherr.InvalidURI, lineNumber,
				"request target %q is not below service root %q", target, r.base)
		}
		rest = trimmed
	} else {
		rest = "/" + target
		if _, err := url.ParseRequestURI(rest); err != nil {
			return Target{}, batcherr.New(batcherr.InvalidURI, lineNumber, "parse request target: %v", err)
		}
	}

	return r.build(rest), nil
}

func (r *Resolver) build(rest string) Target {
	path, query := rest, ""
	if idx := strings.IndexByte(rest, '?'); idx >= 0 {
		path, query = rest[:idx], rest[idx+1:]
	}
	if path == "" {
		path = "/"
	}
	return r.Target(path, query)
}

// Target assembles the facets for an already resolved resource path.
func (r *Resolver) Target(path, query string) Target {
	requestURI := r.base + path
	if query != "" {
		requestURI += "?" + query
	}
	return Target{
		BaseURI:      r.base,
		ResourcePath: path,
		Query:        query,
		RequestURI:   requestURI,
	}
}
