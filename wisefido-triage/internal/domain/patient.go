package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// UnknownName 名称缺失时使用的占位名（仅 JSON 输出格式）
const UnknownName = "Unknown"

// Int 来自外部程序的整数字段。
// 非数字 token 解码为 NaN（Valid=false），JSON 中输出为 null，不会被当作 0。
type Int struct {
	Value int
	Valid bool
}

// IntOf 构造有效整数
func IntOf(v int) Int { return Int{Value: v, Valid: true} }

// NaN 非数字
func NaN() Int { return Int{} }

// MaxSafeInt 数值字段的绝对值上限（2^53-1，前端 JSON 可精确表示的最大整数）
const MaxSafeInt = 1<<53 - 1

// ParseInt 解析十进制整数 token，失败或超出 MaxSafeInt 返回 NaN
func ParseInt(s string) Int {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v > MaxSafeInt || v < -MaxSafeInt {
		return NaN()
	}
	return IntOf(int(v))
}

// FromFloat 整数值的浮点数转为 Int；非整数或超出 MaxSafeInt 返回 NaN
func FromFloat(f float64) Int {
	if f != math.Trunc(f) || math.Abs(f) > MaxSafeInt {
		return NaN()
	}
	return IntOf(int(f))
}

func (i Int) String() string {
	if !i.Valid {
		return "NaN"
	}
	return strconv.Itoa(i.Value)
}

func (i Int) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(i.Value)), nil
}

func (i *Int) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*i = NaN()
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*i = IntOf(v)
	return nil
}

// PatientRecord 规范化的患者分诊记录
type PatientRecord struct {
	ID       Int    `json:"id"`
	Name     string `json:"name"`
	Age      Int    `json:"age"`
	Severity Int    `json:"severity"`
}

// HasNaN 任一数值字段不是数字（外部程序输出损坏）
func (p PatientRecord) HasNaN() bool {
	return !p.ID.Valid || !p.Age.Valid || !p.Severity.Valid
}
