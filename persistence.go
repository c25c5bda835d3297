package clmm

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/holiman/uint256"
)

// GormDataType tells GORM to store a uint128 as opaque text, the same
// convention the teacher's TokenPositionManager uses for its own
// JSON-backed map fields.
func (u uint128) GormDataType() string { return "LONGTEXT" }

func (u *uint128) Scan(value interface{}) error {
	if u.v == nil {
		u.v = new(uint256.Int)
	}
	switch v := value.(type) {
	case []byte:
		return u.v.UnmarshalText(v)
	case string:
		return u.v.UnmarshalText([]byte(v))
	case nil:
		u.v = new(uint256.Int)
		return nil
	default:
		return fmt.Errorf("failed to scan uint128 value: %v", value)
	}
}

func (u uint128) Value() (driver.Value, error) {
	if u.v == nil {
		return "0", nil
	}
	return u.v.Dec(), nil
}

func (v int128) GormDataType() string { return "LONGTEXT" }

func (v *int128) Scan(value interface{}) error {
	var s string
	switch t := value.(type) {
	case []byte:
		s = string(t)
	case string:
		s = t
	case nil:
		*v = int128{mag: new(uint256.Int)}
		return nil
	default:
		return fmt.Errorf("failed to scan int128 value: %v", value)
	}
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	mag := new(uint256.Int)
	if err := mag.UnmarshalText([]byte(s)); err != nil {
		return err
	}
	*v = newInt128(mag, neg)
	return nil
}

func (v int128) Value() (driver.Value, error) {
	if v.mag == nil || v.mag.IsZero() {
		return "0", nil
	}
	sign := ""
	if v.neg {
		sign = "-"
	}
	return sign + v.mag.Dec(), nil
}

// GormDataType and Scan/Value for the buffer/position manager style
// aggregate types that are persisted as a single JSON blob rather than
// normalized columns, exactly like the teacher's TokenPositionManager.
func (t *TickInfo) GormDataType() string { return "LONGTEXT" }

func (t *TickInfo) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	case nil:
		return nil
	default:
		return errors.New(fmt.Sprint("failed to unmarshal TickInfo value:", value))
	}
}

func (t TickInfo) Value() (driver.Value, error) {
	bs, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(bs), nil
}

func (p *PositionInfo) GormDataType() string { return "LONGTEXT" }

func (p *PositionInfo) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		return nil
	default:
		return errors.New(fmt.Sprint("failed to unmarshal PositionInfo value:", value))
	}
}

func (p PositionInfo) Value() (driver.Value, error) {
	bs, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(bs), nil
}

// MarshalJSON/UnmarshalJSON for uint128 and int128 back the Scan/Value
// JSON blobs above with a decimal string representation, matching how
// the rest of the ecosystem (e.g. shopspring/decimal) round-trips
// arbitrary-precision values through JSON.
func (u uint128) MarshalJSON() ([]byte, error) {
	if u.v == nil {
		return []byte(`"0"`), nil
	}
	return json.Marshal(u.v.Dec())
}

func (u *uint128) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	mag := new(uint256.Int)
	if err := mag.UnmarshalText([]byte(s)); err != nil {
		return err
	}
	u.v = mag
	return nil
}

func (v int128) MarshalJSON() ([]byte, error) {
	val, err := v.Value()
	if err != nil {
		return nil, err
	}
	return json.Marshal(val)
}

func (v *int128) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return v.Scan(s)
}

// CBOR wire format.
//
// Every persisted entity round-trips through CBOR using numeric field
// tags (cbor:"N,keyasint") rather than string keys, matching the
// self-describing-but-compact wire contract the historical Rust
// canister used for its stable storage, and tolerating unknown trailing
// fields so a newer writer's schema additions don't break an older
// reader.
var cborEncMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

var cborDecMode = func() cbor.DecMode {
	opts := cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	mode, err := opts.DecMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// EncodeCBOR serializes any persisted entity (PoolState, TickInfo,
// PositionInfo, BitmapWord, HistoryBucket, Event, ...) to its wire
// format.
func EncodeCBOR(v interface{}) ([]byte, error) {
	return cborEncMode.Marshal(v)
}

// DecodeCBOR deserializes a wire-format blob into v, tolerating fields
// the current schema no longer recognizes.
func DecodeCBOR(data []byte, v interface{}) error {
	return cborDecMode.Unmarshal(data, v)
}

// MarshalCBOR and UnmarshalCBOR let uint128 and int128 participate
// directly in a parent struct's CBOR encoding as plain decimal strings,
// since a uint256.Int has no native CBOR bignum representation in this
// stack.
func (u uint128) MarshalCBOR() ([]byte, error) {
	if u.v == nil {
		return cbor.Marshal("0")
	}
	return cbor.Marshal(u.v.Dec())
}

func (u *uint128) UnmarshalCBOR(data []byte) error {
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return err
	}
	mag := new(uint256.Int)
	if err := mag.UnmarshalText([]byte(s)); err != nil {
		return err
	}
	u.v = mag
	return nil
}

func (v int128) MarshalCBOR() ([]byte, error) {
	val, err := v.Value()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(val)
}

func (v *int128) UnmarshalCBOR(data []byte) error {
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return err
	}
	return v.Scan(s)
}
