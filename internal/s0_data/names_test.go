package s0_data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/wonny/dipscan/internal/contracts"
)

const nameList = "510300 沪深300ETF\n159915.csv 创业板ETF\n\n512880\n"

func TestDecodeText(t *testing.T) {
	gbk, err := simplifiedchinese.GBK.NewEncoder().String(nameList)
	require.NoError(t, err)
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(nameList)
	require.NoError(t, err)
	utf16NoBOM, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().String(nameList)
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    []byte
		wantEnc string
	}{
		{"utf-8", []byte(nameList), "utf-8"},
		{"utf-8 with bom", append([]byte("\xef\xbb\xbf"), nameList...), "utf-8"},
		{"gbk", []byte(gbk), "gbk"},
		{"utf-16 with bom", []byte(utf16), "utf-16"},
		{"utf-16le without bom", []byte(utf16NoBOM), "utf-16"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, enc, err := DecodeText(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEnc, enc)
			assert.Equal(t, nameList, text)
		})
	}
}

func TestLoadNames_UTF16WithoutBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.txt")
	data, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().String("510300 沪深300ETF\n159915 创业板ETF\n")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	m, enc, err := LoadNames(path)
	require.NoError(t, err)
	assert.Equal(t, "utf-16", enc)
	assert.Equal(t, "沪深300ETF", m.Name("510300"))
	assert.Equal(t, "创业板ETF", m.Name("159915"))
}

func TestDecodeText_Undecodable(t *testing.T) {
	_, _, err := DecodeText([]byte{0xff, 0xd8, 0x00})
	assert.ErrorIs(t, err, ErrUndecodable)
}

func TestParseNames(t *testing.T) {
	m := ParseNames("代码,名称\n510300 沪深300ETF\n159915.csv\t创业板 ETF\n512880\n588000,科创50ETF\n")

	assert.Equal(t, "沪深300ETF", m.Name("510300"))
	assert.Equal(t, "创业板 ETF", m.Name("159915"))
	assert.Equal(t, "科创50ETF", m.Name("588000"))
	assert.True(t, m.Has("512880"))
	assert.Equal(t, contracts.UnknownName, m.Name("512880"))
	assert.Equal(t, contracts.UnknownName, m.Name("000001"))
	assert.Len(t, m, 4)
}

func TestLoadNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "names.txt")

	gbk, err := simplifiedchinese.GBK.NewEncoder().String(nameList)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(gbk), 0o644))

	m, enc, err := LoadNames(path)
	require.NoError(t, err)
	assert.Equal(t, "gbk", enc)
	assert.Equal(t, "沪深300ETF", m.Name("510300"))

	m, _, err = LoadNames(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
	assert.NotNil(t, m)
	assert.Empty(t, m)
}
