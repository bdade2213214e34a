// Package wire encodes the dispatch protocol's protobuf messages.
//
// The client decodes base64 payloads into these messages; field numbers are
// fixed by the protocol and must not change. Encoding is done directly with
// protowire so the gateway carries no generated code for four small
// messages.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// RegionSimpleInfo is one public entry of the region list.
type RegionSimpleInfo struct {
	Name        string // field 1
	Title       string // field 2
	Type        string // field 3
	DispatchURL string // field 4
}

// RegionInfo is the private payload a client receives after selecting a
// region.
type RegionInfo struct {
	GateserverIP   string // field 1
	GateserverPort uint32 // field 2
	SecretKey      []byte // field 11
}

// QueryRegionListHttpRsp is the aggregate region-list message.
type QueryRegionListHttpRsp struct {
	Retcode                     int32              // field 1
	RegionList                  []RegionSimpleInfo // field 2
	ClientSecretKey             []byte             // field 5
	ClientCustomConfigEncrypted []byte             // field 6
	EnableLoginPC               bool               // field 7
}

// QueryCurrRegionHttpRsp is the single-region response message.
type QueryCurrRegionHttpRsp struct {
	Retcode    int32       // field 1
	Msg        string      // field 2
	RegionInfo *RegionInfo // field 3
}

// Marshal serializes a RegionSimpleInfo.
func (m RegionSimpleInfo) Marshal() []byte {
	var buf []byte
	buf = appendStringField(buf, 1, m.Name)
	buf = appendStringField(buf, 2, m.Title)
	buf = appendStringField(buf, 3, m.Type)
	buf = appendStringField(buf, 4, m.DispatchURL)
	return buf
}

// Marshal serializes a RegionInfo.
func (m RegionInfo) Marshal() []byte {
	var buf []byte
	buf = appendStringField(buf, 1, m.GateserverIP)
	if m.GateserverPort != 0 {
		buf = protowire.AppendTag(buf, 2, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(m.GateserverPort))
	}
	buf = appendBytesField(buf, 11, m.SecretKey)
	return buf
}

// Marshal serializes a QueryRegionListHttpRsp.
func (m QueryRegionListHttpRsp) Marshal() []byte {
	var buf []byte
	if m.Retcode != 0 {
		buf = protowire.AppendTag(buf, 1, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(uint32(m.Retcode)))
	}
	for _, region := range m.RegionList {
		buf = appendBytesField(buf, 2, region.Marshal())
	}
	buf = appendBytesField(buf, 5, m.ClientSecretKey)
	buf = appendBytesField(buf, 6, m.ClientCustomConfigEncrypted)
	if m.EnableLoginPC {
		buf = protowire.AppendTag(buf, 7, protowire.VarintType)
		buf = protowire.AppendVarint(buf, 1)
	}
	return buf
}

// Marshal serializes a QueryCurrRegionHttpRsp.
func (m QueryCurrRegionHttpRsp) Marshal() []byte {
	var buf []byte
	if m.Retcode != 0 {
		buf = protowire.AppendTag(buf, 1, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(uint32(m.Retcode)))
	}
	buf = appendStringField(buf, 2, m.Msg)
	if m.RegionInfo != nil {
		buf = appendBytesField(buf, 3, m.RegionInfo.Marshal())
	}
	return buf
}

// UnmarshalRegionSimpleInfo parses a RegionSimpleInfo, skipping unknown fields.
func UnmarshalRegionSimpleInfo(data []byte) (RegionSimpleInfo, error) {
	var m RegionSimpleInfo
	err := walkFieldsWithVarints(data, func(num protowire.Number, value []byte) {
		switch num {
		case 1:
			m.Name = string(value)
		case 2:
			m.Title = string(value)
		case 3:
			m.Type = string(value)
		case 4:
			m.DispatchURL = string(value)
		}
	}, nil)
	return m, err
}

// UnmarshalRegionInfo parses a RegionInfo, skipping unknown fields.
func UnmarshalRegionInfo(data []byte) (RegionInfo, error) {
	var m RegionInfo
	err := walkFieldsWithVarints(data,
		func(num protowire.Number, value []byte) {
			switch num {
			case 1:
				m.GateserverIP = string(value)
			case 11:
				m.SecretKey = append([]byte(nil), value...)
			}
		},
		func(num protowire.Number, value uint64) {
			if num == 2 {
				m.GateserverPort = uint32(value)
			}
		})
	return m, err
}

// UnmarshalQueryRegionListHttpRsp parses the region-list message.
func UnmarshalQueryRegionListHttpRsp(data []byte) (QueryRegionListHttpRsp, error) {
	var m QueryRegionListHttpRsp
	var regionErr error
	err := walkFieldsWithVarints(data,
		func(num protowire.Number, value []byte) {
			switch num {
			case 2:
				region, err := UnmarshalRegionSimpleInfo(value)
				if err != nil {
					regionErr = err
					return
				}
				m.RegionList = append(m.RegionList, region)
			case 5:
				m.ClientSecretKey = append([]byte(nil), value...)
			case 6:
				m.ClientCustomConfigEncrypted = append([]byte(nil), value...)
			}
		},
		func(num protowire.Number, value uint64) {
			switch num {
			case 1:
				m.Retcode = int32(value)
			case 7:
				m.EnableLoginPC = value != 0
			}
		})
	if err != nil {
		return m, err
	}
	return m, regionErr
}

// UnmarshalQueryCurrRegionHttpRsp parses the single-region message.
func UnmarshalQueryCurrRegionHttpRsp(data []byte) (QueryCurrRegionHttpRsp, error) {
	var m QueryCurrRegionHttpRsp
	var infoErr error
	err := walkFieldsWithVarints(data,
		func(num protowire.Number, value []byte) {
			switch num {
			case 2:
				m.Msg = string(value)
			case 3:
				info, err := UnmarshalRegionInfo(value)
				if err != nil {
					infoErr = err
					return
				}
				m.RegionInfo = &info
			}
		},
		func(num protowire.Number, value uint64) {
			if num == 1 {
				m.Retcode = int32(value)
			}
		})
	if err != nil {
		return m, err
	}
	return m, infoErr
}

func appendStringField(buf []byte, num protowire.Number, value string) []byte {
	if value == "" {
		return buf
	}
	buf = protowire.AppendTag(buf, num, protowire.BytesType)
	buf = protowire.AppendString(buf, value)
	return buf
}

func appendBytesField(buf []byte, num protowire.Number, value []byte) []byte {
	if len(value) == 0 {
		return buf
	}
	buf = protowire.AppendTag(buf, num, protowire.BytesType)
	buf = protowire.AppendBytes(buf, value)
	return buf
}

// walkFieldsWithVarints visits length-delimited and varint fields in data,
// skipping any other wire type.
func walkFieldsWithVarints(data []byte, onBytes func(protowire.Number, []byte), onVarint func(protowire.Number, uint64)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("consume tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch typ {
		case protowire.BytesType:
			value, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("consume field %d: %w", num, protowire.ParseError(n))
			}
			if onBytes != nil {
				onBytes(num, value)
			}
			data = data[n:]
		case protowire.VarintType:
			value, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("consume field %d: %w", num, protowire.ParseError(n))
			}
			if onVarint != nil {
				onVarint(num, value)
			}
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("skip field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return nil
}
