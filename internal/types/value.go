package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind is the JSON type of a Value
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Member is one key of an object Value
type Member struct {
	Key   string
	Value *Value
}

// Value is a JSON value that keeps object keys in the order they were received.
// Numbers keep their literal text so nothing is lost to float conversion.
type Value struct {
	Kind    Kind
	Bool    bool
	Literal string // string contents or number text
	Items   []*Value
	Members []Member
}

// String builds a string Value
func String(s string) *Value {
	return &Value{Kind: KindString, Literal: s}
}

// Number builds a number Value from its literal text
func Number(literal string) *Value {
	return &Value{Kind: KindNumber, Literal: literal}
}

// Bool builds a bool Value
func Bool(b bool) *Value {
	return &Value{Kind: KindBool, Bool: b}
}

// Null builds a null Value
func Null() *Value {
	return &Value{Kind: KindNull}
}

// Array builds an array Value
func Array(items ...*Value) *Value {
	if items == nil {
		items = []*Value{}
	}
	return &Value{Kind: KindArray, Items: items}
}

// Object builds an object Value, keeping members in the given order
func Object(members ...Member) *Value {
	if members == nil {
		members = []Member{}
	}
	return &Value{Kind: KindObject, Members: members}
}

// IsNull reports whether v is absent or JSON null
func (v *Value) IsNull() bool {
	return v == nil || v.Kind == KindNull
}

// IsFalsy reports whether v counts as "nothing there": absent, null, false,
// an empty string or a zero number. Arrays and objects are never falsy.
func (v *Value) IsFalsy() bool {
	if v.IsNull() {
		return true
	}
	switch v.Kind {
	case KindBool:
		return !v.Bool
	case KindString:
		return v.Literal == ""
	case KindNumber:
		f, err := strconv.ParseFloat(v.Literal, 64)
		return err == nil && f == 0
	}
	return false
}

// Get returns the member with the given key of an object Value
func (v *Value) Get(key string) (*Value, bool) {
	if v == nil || v.Kind != KindObject {
		return nil, false
	}
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Keys returns object keys in received order
func (v *Value) Keys() []string {
	if v == nil || v.Kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.Members))
	for _, m := range v.Members {
		keys = append(keys, m.Key)
	}
	return keys
}

// Interface converts v to plain Go values (map[string]interface{}, []interface{}, ...).
// Key order is lost; used for query evaluation only.
func (v *Value) Interface() interface{} {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		if f, err := strconv.ParseFloat(v.Literal, 64); err == nil {
			return f
		}
		return v.Literal
	case KindString:
		return v.Literal
	case KindArray:
		out := make([]interface{}, 0, len(v.Items))
		for _, item := range v.Items {
			out = append(out, item.Interface())
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, len(v.Members))
		for _, m := range v.Members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// UnmarshalJSON decodes any JSON value, preserving object key order
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	decoded, err := decodeValue(dec)
	if err != nil {
		return fmt.Errorf("failed to decode value: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("failed to decode value: trailing data")
	}

	*v = *decoded
	return nil
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := Object()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Members = append(obj.Members, Member{Key: key, Value: child})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := Array()
			for dec.More() {
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr.Items = append(arr.Items, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String()), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

// MarshalJSON encodes v compactly with object keys in received order
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) encode(buf *bytes.Buffer) error {
	if v == nil {
		buf.WriteString("null")
		return nil
	}

	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		buf.WriteString(v.Literal)
	case KindString:
		return encodeString(buf, v.Literal)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown value kind %d", v.Kind)
	}
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// Indent returns the JSON text of v indented with two spaces
func (v *Value) Indent() (string, error) {
	compact, err := v.MarshalJSON()
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return "", fmt.Errorf("failed to indent value: %w", err)
	}
	return out.String(), nil
}

// MarshalYAML builds an order-preserving YAML node tree
func (v *Value) MarshalYAML() (interface{}, error) {
	return v.YAMLNode(), nil
}

// YAMLNode converts v to a yaml.v3 node
func (v *Value) YAMLNode() *yaml.Node {
	if v == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}

	switch v.Kind {
	case KindBool:
		value := "false"
		if v.Bool {
			value = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: value}
	case KindNumber:
		tag := "!!int"
		if strings.ContainsAny(v.Literal, ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.Literal}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Literal}
	case KindArray:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Items {
			node.Content = append(node.Content, item.YAMLNode())
		}
		return node
	case KindObject:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range v.Members {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Key},
				m.Value.YAMLNode(),
			)
		}
		return node
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
