// Package rest exposes the gateway over HTTP: the credential endpoints the
// client posts to and the region query endpoints it polls.
package rest

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lunargate/lunargate/internal/services/gateway/auth"
	"github.com/lunargate/lunargate/internal/services/gateway/dispatch"
)

// OnlineCounter reports the current session count for the status endpoint.
type OnlineCounter interface {
	Online() int
}

// Handler routes gateway HTTP traffic to the authenticators and the region
// router.
type Handler struct {
	password *auth.PasswordAuthenticator
	token    *auth.TokenAuthenticator
	combo    *auth.ComboKeyAuthenticator
	regions  *dispatch.Router
	counter  OnlineCounter
	version  string
	log      *slog.Logger
}

// Deps are the collaborators the handler serves.
type Deps struct {
	Password *auth.PasswordAuthenticator
	Token    *auth.TokenAuthenticator
	Combo    *auth.ComboKeyAuthenticator
	Regions  *dispatch.Router
	Counter  OnlineCounter
	// Version is reported on the status endpoint.
	Version string
	Log     *slog.Logger
}

// New builds the handler.
func New(deps Deps) *Handler {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		password: deps.Password,
		token:    deps.Token,
		combo:    deps.Combo,
		regions:  deps.Regions,
		counter:  deps.Counter,
		version:  deps.Version,
		log:      log,
	}
}

// Routes mounts every gateway endpoint on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/hk4e_global/mdk/shield/api/login", h.shieldLogin)
	r.Post("/hk4e_global/mdk/shield/api/verify", h.shieldVerify)
	r.Post("/hk4e_global/combo/granter/login/v2/login", h.comboLogin)

	r.Get("/query_region_list", h.queryRegionList)
	r.Get("/query_cur_region/{region}", h.queryCurrentRegion)

	r.Get("/status/server", h.status)

	return r
}

func (h *Handler) shieldLogin(w http.ResponseWriter, r *http.Request) {
	var body auth.PasswordRequest
	req := auth.Request{Headers: requestHeaders(r), RemoteAddr: remoteAddr(r)}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.log.Info("malformed login body", "addr", req.RemoteAddr, "error", err)
	} else {
		req.Password = &body
	}
	h.writeJSON(w, h.password.Authenticate(r.Context(), req))
}

func (h *Handler) shieldVerify(w http.ResponseWriter, r *http.Request) {
	var body auth.TokenRequest
	req := auth.Request{Headers: requestHeaders(r), RemoteAddr: remoteAddr(r)}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.log.Info("malformed verify body", "addr", req.RemoteAddr, "error", err)
	} else {
		req.Token = &body
	}
	h.writeJSON(w, h.token.Authenticate(r.Context(), req))
}

// comboEnvelope is the outer combo exchange body. Data is a JSON document
// encoded as a string, matching the client's double-encoded form.
type comboEnvelope struct {
	AppID     string `json:"app_id"`
	ChannelID string `json:"channel_id"`
	Data      string `json:"data"`
	Sign      string `json:"sign"`
}

func (h *Handler) comboLogin(w http.ResponseWriter, r *http.Request) {
	req := auth.Request{Headers: requestHeaders(r), RemoteAddr: remoteAddr(r)}

	var envelope comboEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		h.log.Info("malformed combo body", "addr", req.RemoteAddr, "error", err)
	} else {
		var login auth.ComboLogin
		if err := json.Unmarshal([]byte(envelope.Data), &login); err != nil {
			h.log.Info("malformed combo data", "addr", req.RemoteAddr, "error", err)
		} else {
			req.Combo = &login
		}
	}
	h.writeJSON(w, h.combo.Authenticate(r.Context(), req))
}

func (h *Handler) queryRegionList(w http.ResponseWriter, r *http.Request) {
	h.writeText(w, h.regions.RegionList(remoteAddr(r)))
}

func (h *Handler) queryCurrentRegion(w http.ResponseWriter, r *http.Request) {
	h.writeText(w, h.regions.CurrentRegion(dispatch.Query{
		Region:       chi.URLParam(r, "region"),
		Version:      r.URL.Query().Get("version"),
		DispatchSeed: r.URL.Query().Get("dispatchSeed"),
		RemoteAddr:   remoteAddr(r),
	}))
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	online := 0
	if h.counter != nil {
		online = h.counter.Online()
	}
	h.writeJSON(w, map[string]any{
		"retcode": 0,
		"status": map[string]any{
			"playerNum": online,
			"version":   h.version,
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("write response", "error", err)
	}
}

func (h *Handler) writeText(w http.ResponseWriter, payload string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(payload)); err != nil {
		h.log.Error("write response", "error", err)
	}
}

// requestHeaders lifts the client identification headers the version gate
// inspects.
func requestHeaders(r *http.Request) auth.Headers {
	return auth.Headers{
		Version:   r.Header.Get("x-rpc-mdk_version"),
		OS:        r.Header.Get("x-rpc-sys_version"),
		UserAgent: r.UserAgent(),
	}
}

func remoteAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
