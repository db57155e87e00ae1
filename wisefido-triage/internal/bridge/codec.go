package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"owlback/wisefido-triage/internal/domain"
)

// Format list 输出的线格式
type Format int

const (
	FormatInvalid Format = iota
	FormatJSON
	FormatLines
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatLines:
		return "lines"
	default:
		return "invalid"
	}
}

// Decoded 解码结果（按 Format 区分的联合类型）
type Decoded struct {
	Format  Format
	Records []domain.PatientRecord
}

// minLineTokens 纯文本行至少需要的 token 数：id name age severity
const minLineTokens = 4

// Decode 解析外部程序 list 的 stdout。
//
// 格式检测顺序固定：
//  1. stdout 中第一个 '[' 及其匹配的 ']' 之间的内容按 JSON 数组解析；
//  2. 否则按行解析 "id name age severity"，不足 4 个 token 的行直接跳过。
//
// 空输出视为空列表。非空输出若两种格式都无法识别，返回 *DecodeError。
func Decode(raw string) (Decoded, error) {
	if span, ok := findJSONArray(raw); ok {
		records, err := decodeJSONArray(span)
		if err != nil {
			return Decoded{Format: FormatInvalid}, &DecodeError{Raw: raw, Reason: "invalid JSON array", Err: err}
		}
		return Decoded{Format: FormatJSON, Records: records}, nil
	}

	if strings.TrimSpace(raw) == "" {
		return Decoded{Format: FormatLines, Records: []domain.PatientRecord{}}, nil
	}

	records := decodeLines(raw)
	if !anyNumeric(records) {
		return Decoded{Format: FormatInvalid}, &DecodeError{Raw: raw, Reason: "output matches neither JSON array nor delimited lines"}
	}
	return Decoded{Format: FormatLines, Records: records}, nil
}

// findJSONArray 找到第一个 '[' 及与之配对的 ']'（跳过 JSON 字符串内的括号）
func findJSONArray(raw string) (string, bool) {
	start := strings.IndexByte(raw, '[')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

func decodeJSONArray(span string) ([]domain.PatientRecord, error) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(span), &items); err != nil {
		return nil, err
	}
	records := make([]domain.PatientRecord, 0, len(items))
	for i, item := range items {
		if item == nil {
			return nil, fmt.Errorf("element %d is not an object", i)
		}
		var rec domain.PatientRecord
		var err error
		if rec.ID, err = jsonIntField(item, "id"); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if rec.Age, err = jsonIntField(item, "age"); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if rec.Severity, err = jsonIntField(item, "severity"); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		rec.Name = jsonNameField(item["name"])
		records = append(records, rec)
	}
	return records, nil
}

// jsonIntField 数字或数字字符串转为整数，其它值为 NaN；缺失或 null 是错误
func jsonIntField(item map[string]json.RawMessage, key string) (domain.Int, error) {
	raw, ok := item[key]
	if !ok || isJSONNull(raw) {
		return domain.Int{}, fmt.Errorf("missing field %q", key)
	}
	raw = bytes.TrimSpace(raw)
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return domain.Int{}, err
		}
		return domain.ParseInt(strings.TrimSpace(s)), nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if v := domain.ParseInt(string(raw)); v.Valid {
			return v, nil
		}
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return domain.NaN(), nil
		}
		return domain.FromFloat(f), nil
	default:
		return domain.NaN(), nil
	}
}

// jsonNameField 缺失、null、""、false、0 都回退为 "Unknown"
func jsonNameField(raw json.RawMessage) string {
	if raw == nil || isJSONNull(raw) {
		return domain.UnknownName
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return domain.UnknownName
		}
		return s
	}
	text := string(bytes.TrimSpace(raw))
	if text == "false" {
		return domain.UnknownName
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && f == 0 {
		return domain.UnknownName
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err == nil {
		return compact.String()
	}
	return text
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeLines 纯文本格式：按单个空格切分，取前 4 个 token，多余的忽略
func decodeLines(raw string) []domain.PatientRecord {
	records := []domain.PatientRecord{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, " ")
		if len(parts) < minLineTokens {
			continue
		}
		records = append(records, domain.PatientRecord{
			ID:       domain.ParseInt(parts[0]),
			Name:     parts[1],
			Age:      domain.ParseInt(parts[2]),
			Severity: domain.ParseInt(parts[3]),
		})
	}
	return records
}

// anyNumeric 至少一条记录有一个数值字段可解析，才认为输出是纯文本格式
func anyNumeric(records []domain.PatientRecord) bool {
	for _, r := range records {
		if r.ID.Valid || r.Age.Valid || r.Severity.Valid {
			return true
		}
	}
	return false
}

// EncodeLines 生成纯文本格式输出（每行 "id name age severity"），用于测试构造外部程序输出
func EncodeLines(records []domain.PatientRecord) string {
	var b strings.Builder
	for _, r := range records {
		fmt.Fprintf(&b, "%s %s %s %s\n", r.ID, r.Name, r.Age, r.Severity)
	}
	return b.String()
}

// EncodeJSON 生成 JSON 数组格式输出，用于测试构造外部程序输出
func EncodeJSON(records []domain.PatientRecord) (string, error) {
	if records == nil {
		records = []domain.PatientRecord{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
