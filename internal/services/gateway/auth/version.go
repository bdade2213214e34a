package auth

import (
	"net/url"
	"strings"
)

// VersionUnknown is the sentinel a missing, empty, or undecodable client
// version normalizes to. Requests carrying it are denied without version
// detail in the response.
const VersionUnknown = "-1"

// Headers carries the request headers the version gate inspects.
type Headers struct {
	// Version is the raw x-rpc-mdk_version header value.
	Version string
	// OS is the raw x-rpc-sys_version header value, URL-encoded.
	OS string
	// UserAgent is the client's User-Agent header value.
	UserAgent string
}

// VersionDecision is the gate's verdict on one request.
type VersionDecision struct {
	// Version is the normalized client version, VersionUnknown when the
	// input could not be trusted.
	Version string
	// OS is the decoded client OS string, for audit logging only.
	OS string
	// Match reports whether the version contains the accepted SDK version.
	Match bool
	// Unknown reports whether the version normalized to the sentinel.
	Unknown bool
}

// VersionGate validates the inbound client version against the accepted SDK
// version. Matching is substring containment, not a structured comparison:
// observed client behavior depends on build-suffixed version strings passing.
type VersionGate struct {
	// Accepted is the SDK version substring the server accepts.
	Accepted string
}

// Check normalizes the request headers and decides whether the client
// version is acceptable. When requireKnownAgent is set (password logins),
// user agents other than the game runtime or its HTTP stack are treated as
// an unknown version.
func (g VersionGate) Check(h Headers, requireKnownAgent bool) VersionDecision {
	version := h.Version
	if version == "" {
		version = VersionUnknown
	} else if requireKnownAgent && !knownAgent(h.UserAgent) {
		version = VersionUnknown
	}

	osName, err := url.QueryUnescape(h.OS)
	if err != nil {
		// Undecodable headers normalize to the sentinel, they never fail
		// the request.
		osName = ""
		version = VersionUnknown
	}

	unknown := version == VersionUnknown
	return VersionDecision{
		Version: version,
		OS:      osName,
		Match:   !unknown && strings.Contains(version, g.Accepted),
		Unknown: unknown,
	}
}

func knownAgent(agent string) bool {
	return strings.Contains(agent, "UnityPlayer") || strings.Contains(agent, "okhttp")
}
