// Package dispatch builds and serves the regional routing table.
//
// The registry is constructed exactly once at startup, before it becomes
// reachable, and is immutable afterward: reads are plain map lookups with no
// synchronization.
package dispatch

import (
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/lunargate/lunargate/internal/services/gateway/dispatch/wire"
)

// RegionType is the public type tag every region list entry carries.
const RegionType = "DEV_PUBLIC"

// DefaultRegionName names the implicit region synthesized in hybrid mode.
const DefaultRegionName = "os_usa"

// DefaultClientCustomConfig is the client config blob shipped in the region
// list when none is configured.
const DefaultClientCustomConfig = `{"sdkenv":"2","checkdevice":"false","loadPatch":"false","showexception":"false","regionConfig":"pm|fk|add","downloadMode":"0"}`

// Region is one configured gameplay endpoint.
type Region struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	IP    string `json:"ip"`
	Port  uint32 `json:"port"`
}

// Config describes how to build the registry.
type Config struct {
	// Regions, in configuration order. May be empty only in hybrid mode.
	Regions []Region
	// Hybrid marks deployments that co-host the gameplay server and may
	// synthesize a single implicit region from GameHost/GamePort.
	Hybrid bool
	// DefaultRegionTitle titles the synthesized hybrid region.
	DefaultRegionTitle string
	// GameHost and GamePort locate the co-hosted gameplay endpoint.
	GameHost string
	GamePort uint32
	// DispatchDomain prefixes per-region dispatch URLs, e.g. "http://gate:8080".
	DispatchDomain string
	// SecretKey is the shared secret material embedded verbatim in region
	// payloads and the region list.
	SecretKey []byte
	// ObfuscationKey XOR-obfuscates the client custom config blob.
	ObfuscationKey []byte
	// ClientCustomConfig overrides DefaultClientCustomConfig when set.
	ClientCustomConfig string
}

// Registry holds the precomputed dispatch payloads.
type Registry struct {
	entries     map[string]string
	listPayload string
	notFound    string
}

// NewRegistry builds the routing table. It is the single fatal path of the
// gateway: a non-hybrid deployment without regions cannot serve anyone.
func NewRegistry(cfg Config, log *slog.Logger) (*Registry, error) {
	if log == nil {
		log = slog.Default()
	}

	regions := cfg.Regions
	if len(regions) == 0 {
		if !cfg.Hybrid {
			return nil, fmt.Errorf("no game server regions configured")
		}
		regions = []Region{{
			Name:  DefaultRegionName,
			Title: cfg.DefaultRegionTitle,
			IP:    cfg.GameHost,
			Port:  cfg.GamePort,
		}}
	}

	registry := &Registry{entries: make(map[string]string, len(regions))}

	var list []wire.RegionSimpleInfo
	for _, region := range regions {
		if _, exists := registry.entries[region.Name]; exists {
			log.Error("region name already in use", "name", region.Name)
			continue
		}

		list = append(list, wire.RegionSimpleInfo{
			Name:        region.Name,
			Title:       region.Title,
			Type:        RegionType,
			DispatchURL: cfg.DispatchDomain + "/query_cur_region/" + region.Name,
		})

		payload := wire.QueryCurrRegionHttpRsp{
			RegionInfo: &wire.RegionInfo{
				GateserverIP:   region.IP,
				GateserverPort: region.Port,
				SecretKey:      cfg.SecretKey,
			},
		}
		registry.entries[region.Name] = base64.StdEncoding.EncodeToString(payload.Marshal())
	}

	customConfig := cfg.ClientCustomConfig
	if customConfig == "" {
		customConfig = DefaultClientCustomConfig
	}
	obfuscated := []byte(customConfig)
	Obfuscate(obfuscated, cfg.ObfuscationKey)

	listMessage := wire.QueryRegionListHttpRsp{
		RegionList:                  list,
		ClientSecretKey:             cfg.SecretKey,
		ClientCustomConfigEncrypted: obfuscated,
		EnableLoginPC:               true,
	}
	registry.listPayload = base64.StdEncoding.EncodeToString(listMessage.Marshal())

	notFound := wire.QueryCurrRegionHttpRsp{Retcode: 1, Msg: "Not Found version config"}
	registry.notFound = base64.StdEncoding.EncodeToString(notFound.Marshal())

	return registry, nil
}

// ListPayload returns the cached region-list payload.
func (r *Registry) ListPayload() string {
	return r.listPayload
}

// Resolve returns the cached payload for a region name, or the fixed
// not-found sentinel for unknown names. It never fails.
func (r *Registry) Resolve(name string) string {
	if payload, ok := r.entries[name]; ok {
		return payload
	}
	return r.notFound
}

// NotFoundPayload returns the fixed sentinel unknown names resolve to.
func (r *Registry) NotFoundPayload() string {
	return r.notFound
}

// Len reports how many regions were registered.
func (r *Registry) Len() int {
	return len(r.entries)
}
