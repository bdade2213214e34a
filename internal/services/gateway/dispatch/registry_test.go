package dispatch

import (
	"bytes"
	"encoding/base64"
	"log/slog"
	"testing"

	"github.com/lunargate/lunargate/internal/services/gateway/dispatch/wire"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func singleRegionConfig() Config {
	return Config{
		Regions:        []Region{{Name: "os_usa", Title: "America", IP: "1.2.3.4", Port: 22101}},
		DispatchDomain: "http://gate:8080",
		SecretKey:      []byte("dispatch-seed"),
		ObfuscationKey: []byte{0xAB, 0xCD},
	}
}

func TestRegistry_ResolveDecodesEndpoint(t *testing.T) {
	registry, err := NewRegistry(singleRegionConfig(), testLogger())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(registry.Resolve("os_usa"))
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	rsp, err := wire.UnmarshalQueryCurrRegionHttpRsp(raw)
	if err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if rsp.Retcode != 0 {
		t.Fatalf("expected retcode 0, got %d", rsp.Retcode)
	}
	if rsp.RegionInfo == nil {
		t.Fatal("expected region info")
	}
	if rsp.RegionInfo.GateserverIP != "1.2.3.4" || rsp.RegionInfo.GateserverPort != 22101 {
		t.Fatalf("endpoint mismatch: %+v", rsp.RegionInfo)
	}
	if !bytes.Equal(rsp.RegionInfo.SecretKey, []byte("dispatch-seed")) {
		t.Fatal("secret key not embedded")
	}
}

func TestRegistry_ResolveIsStable(t *testing.T) {
	registry, err := NewRegistry(singleRegionConfig(), testLogger())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	if registry.Resolve("os_usa") != registry.Resolve("os_usa") {
		t.Fatal("expected byte-identical payloads for repeated lookups")
	}
	if registry.ListPayload() != registry.ListPayload() {
		t.Fatal("expected byte-identical list payloads")
	}
}

func TestRegistry_UnknownRegionSentinel(t *testing.T) {
	registry, err := NewRegistry(singleRegionConfig(), testLogger())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	payload := registry.Resolve("os_atlantis")
	if payload != registry.NotFoundPayload() {
		t.Fatal("expected the fixed not-found payload")
	}
	if payload != "CAESGE5vdCBGb3VuZCB2ZXJzaW9uIGNvbmZpZw==" {
		t.Fatalf("sentinel drifted: %q", payload)
	}
}

func TestRegistry_ListPayload(t *testing.T) {
	cfg := singleRegionConfig()
	cfg.Regions = append(cfg.Regions, Region{Name: "os_euro", Title: "Europe", IP: "5.6.7.8", Port: 22102})
	registry, err := NewRegistry(cfg, testLogger())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(registry.ListPayload())
	if err != nil {
		t.Fatalf("decode list: %v", err)
	}
	list, err := wire.UnmarshalQueryRegionListHttpRsp(raw)
	if err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(list.RegionList) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(list.RegionList))
	}
	if list.RegionList[0].Name != "os_usa" || list.RegionList[1].Name != "os_euro" {
		t.Fatalf("configuration order not preserved: %+v", list.RegionList)
	}
	if list.RegionList[0].Type != RegionType {
		t.Fatalf("expected %q type, got %q", RegionType, list.RegionList[0].Type)
	}
	if list.RegionList[1].DispatchURL != "http://gate:8080/query_cur_region/os_euro" {
		t.Fatalf("dispatch url mismatch: %q", list.RegionList[1].DispatchURL)
	}
	if !list.EnableLoginPC {
		t.Fatal("expected enable_login_pc set")
	}

	custom := append([]byte(nil), list.ClientCustomConfigEncrypted...)
	Obfuscate(custom, cfg.ObfuscationKey)
	if string(custom) != DefaultClientCustomConfig {
		t.Fatalf("custom config did not survive obfuscation: %q", custom)
	}
}

func TestRegistry_DuplicateNamesFirstWins(t *testing.T) {
	cfg := singleRegionConfig()
	cfg.Regions = append(cfg.Regions, Region{Name: "os_usa", Title: "Shadow", IP: "9.9.9.9", Port: 1})
	registry, err := NewRegistry(cfg, testLogger())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	if registry.Len() != 1 {
		t.Fatalf("expected duplicate skipped, got %d entries", registry.Len())
	}
	raw, _ := base64.StdEncoding.DecodeString(registry.Resolve("os_usa"))
	rsp, err := wire.UnmarshalQueryCurrRegionHttpRsp(raw)
	if err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if rsp.RegionInfo.GateserverIP != "1.2.3.4" {
		t.Fatal("expected the first definition to win")
	}
}

func TestRegistry_EmptyNonHybridFails(t *testing.T) {
	if _, err := NewRegistry(Config{}, testLogger()); err == nil {
		t.Fatal("expected error for empty region table")
	}
}

func TestRegistry_HybridSynthesizesDefault(t *testing.T) {
	registry, err := NewRegistry(Config{
		Hybrid:             true,
		DefaultRegionTitle: "Local",
		GameHost:           "127.0.0.1",
		GamePort:           22101,
		DispatchDomain:     "http://localhost:8080",
		SecretKey:          []byte("seed"),
	}, testLogger())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(registry.Resolve(DefaultRegionName))
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	rsp, err := wire.UnmarshalQueryCurrRegionHttpRsp(raw)
	if err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if rsp.RegionInfo == nil || rsp.RegionInfo.GateserverIP != "127.0.0.1" {
		t.Fatalf("expected synthesized default region, got %+v", rsp.RegionInfo)
	}
}

func TestObfuscate_RoundTrip(t *testing.T) {
	data := []byte("regionConfig=pm|fk|add")
	original := append([]byte(nil), data...)
	key := []byte{0x01, 0x02, 0x03}

	Obfuscate(data, key)
	if bytes.Equal(data, original) {
		t.Fatal("expected data to change")
	}
	Obfuscate(data, key)
	if !bytes.Equal(data, original) {
		t.Fatal("expected second pass to restore the input")
	}
}

func TestObfuscate_EmptyKey(t *testing.T) {
	data := []byte("untouched")
	Obfuscate(data, nil)
	if string(data) != "untouched" {
		t.Fatal("expected no-op for empty key")
	}
}
