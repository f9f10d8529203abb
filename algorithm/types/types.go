// Package types 定义了定价算法共享的基础类型。
package types

import (
	"strings"

	"github.com/wyfcoding/optionpricing/xerrors"
)

// OptionType 定义期权类型。
// 零值不代表任何期权，文本形式只在 API 边界解析一次。
type OptionType uint8

const (
	// OptionTypeCall 看涨期权。
	OptionTypeCall OptionType = iota + 1
	// OptionTypePut 看跌期权。
	OptionTypePut
)

// ParseOptionType 大小写不敏感地解析 "call"/"put"（以及缩写 "c"/"p"）。
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return OptionTypeCall, nil
	case "put", "p":
		return OptionTypePut, nil
	default:
		return 0, xerrors.Detailed(xerrors.ErrInvalidOptionType, "unsupported option type %q", s)
	}
}

// Valid 判断是否为已定义的期权类型。
func (t OptionType) Valid() bool {
	return t == OptionTypeCall || t == OptionTypePut
}

func (t OptionType) String() string {
	switch t {
	case OptionTypeCall:
		return "call"
	case OptionTypePut:
		return "put"
	default:
		return "unknown"
	}
}

// Title 返回首字母大写的名称，用于图表标题与图例。
func (t OptionType) Title() string {
	switch t {
	case OptionTypeCall:
		return "Call"
	case OptionTypePut:
		return "Put"
	default:
		return "Unknown"
	}
}

// MarshalText 实现 encoding.TextMarshaler，JSON 中以 "call"/"put" 表示。
func (t OptionType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, xerrors.Detailed(xerrors.ErrInvalidOptionType, "cannot marshal option type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler。
func (t *OptionType) UnmarshalText(text []byte) error {
	parsed, err := ParseOptionType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
