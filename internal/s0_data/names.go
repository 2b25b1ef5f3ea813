package s0_data

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/wonny/dipscan/internal/contracts"
)

// ErrUndecodable means no supported encoding could decode the name list
var ErrUndecodable = errors.New("name list: no supported encoding")

// NameMap maps instrument code to display name
type NameMap map[string]string

// Name returns the display name, or contracts.UnknownName
func (m NameMap) Name(code string) string {
	if n := m[code]; n != "" {
		return n
	}
	return contracts.UnknownName
}

// Has reports whether the code is listed (with or without a name)
func (m NameMap) Has(code string) bool {
	_, ok := m[code]
	return ok
}

// LoadNames reads and decodes the name list. It returns the encoding
// that succeeded. On ErrUndecodable the map is empty, never nil.
func LoadNames(path string) (NameMap, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return NameMap{}, "", fmt.Errorf("read name list: %w", err)
	}

	text, enc, err := DecodeText(data)
	if err != nil {
		return NameMap{}, "", err
	}
	return ParseNames(text), enc, nil
}

type textDecoder struct {
	name    string
	decoder func() *encoding.Decoder
}

// 순서 중요: utf-8 → gbk → utf-16
var decoders = []textDecoder{
	{"gbk", simplifiedchinese.GBK.NewDecoder},
	{"utf-16", unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder},
}

// DecodeText tries UTF-8 (BOM stripped), then GBK, then UTF-16 (BOM aware).
// A result containing NUL is rejected: GBK passes UTF-16 bytes through as
// ASCII NULs, so BOM-less UTF-16 must fall through to the UTF-16 decoder.
func DecodeText(data []byte) (string, string, error) {
	if utf8.Valid(data) && bytes.IndexByte(data, 0) < 0 {
		return string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))), "utf-8", nil
	}

	for _, d := range decoders {
		out, err := d.decoder().Bytes(data)
		if err != nil || bytes.ContainsRune(out, utf8.RuneError) || bytes.IndexByte(out, 0) >= 0 {
			continue
		}
		return string(out), d.name, nil
	}

	return "", "", ErrUndecodable
}

// ParseNames parses "code name" lines. Fields may be separated by
// whitespace or a comma; a bare code line is accepted; ".csv" is stripped.
func ParseNames(text string) NameMap {
	m := make(NameMap)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == '\t' || r == ' ' || r == '\u3000'
		})
		if len(fields) == 0 {
			continue
		}

		token := strings.TrimSuffix(fields[0], ".csv")
		code, ok := ExtractCode(token)
		if !ok {
			// 헤더 행 등
			continue
		}

		name := strings.Join(fields[1:], " ")
		if existing := m[code]; existing != "" && name == "" {
			continue
		}
		m[code] = name
	}
	return m
}
