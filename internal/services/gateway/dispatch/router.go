package dispatch

import (
	"encoding/base64"
	"log/slog"
	"strings"

	apperrors "github.com/lunargate/lunargate/internal/platform/errors"
	"github.com/lunargate/lunargate/internal/platform/i18n"
	"github.com/lunargate/lunargate/internal/services/gateway/dispatch/wire"
)

// LegacySoftVersion is the one historical client build that receives a bare
// "0" instead of the update prompt on a version mismatch.
const LegacySoftVersion = "2.7.50"

// PayloadHook lets deployments rewrite an outgoing payload, e.g. to splice
// in event banners. The identity function when nil.
type PayloadHook func(payload string) string

// Query carries one region resolution request.
type Query struct {
	Region       string
	Version      string
	DispatchSeed string
	RemoteAddr   string
}

// Router answers region queries from the registry, enforcing the client
// game version on per-region lookups.
type Router struct {
	registry *Registry
	version  string
	hook     PayloadHook
	log      *slog.Logger
}

// NewRouter wires a router over a built registry. version is the gameplay
// version clients must run, e.g. "2.8.0"; matching is substring containment
// against the raw version query value.
func NewRouter(registry *Registry, version string, hook PayloadHook, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{registry: registry, version: version, hook: hook, log: log}
}

// RegionList returns the cached region-list payload.
func (r *Router) RegionList(remoteAddr string) string {
	r.log.Info("client requested region list", "addr", remoteAddr)
	return r.apply(r.registry.ListPayload())
}

// CurrentRegion resolves one region for a client. Any version that does
// not contain the configured one, the empty string included, gets an
// update prompt instead of the payload; the one legacy build gets a bare
// "0" so it fails over quietly.
func (r *Router) CurrentRegion(q Query) string {
	if r.version != "" && !strings.Contains(q.Version, r.version) {
		r.log.Info("client version rejected",
			"addr", q.RemoteAddr,
			"region", q.Region,
			"version", q.Version,
			"seed", q.DispatchSeed,
		)
		if strings.Contains(q.Version, LegacySoftVersion) {
			return "0"
		}
		prompt := wire.QueryCurrRegionHttpRsp{
			Msg: i18n.T("dispatch.region.update_needed", r.version, q.Version),
		}
		return base64.StdEncoding.EncodeToString(prompt.Marshal())
	}

	payload := r.registry.Resolve(q.Region)
	if payload == r.registry.NotFoundPayload() {
		r.log.Info("region not found",
			"addr", q.RemoteAddr,
			"region", q.Region,
			"seed", q.DispatchSeed,
			"code", apperrors.CodeRegionNotFound,
		)
		return r.apply(payload)
	}

	r.log.Info("client requested region",
		"addr", q.RemoteAddr,
		"region", q.Region,
		"version", q.Version,
		"seed", q.DispatchSeed,
	)
	return r.apply(payload)
}

func (r *Router) apply(payload string) string {
	if r.hook == nil {
		return payload
	}
	return r.hook(payload)
}
