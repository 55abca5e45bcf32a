package util

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `xml:"NAME"`
}

func TestEachElement_Latin1(t *testing.T) {
	// "Weiß" and "Böttiger" encoded as ISO-8859-1
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<DATA><ITEM><NAME>Wei\xdf</NAME></ITEM><OTHER/><ITEM><NAME>B\xf6ttiger</NAME></ITEM></DATA>")

	var names []string
	err := EachElement(context.Background(), bytes.NewReader(doc), "ITEM", func(dec *xml.Decoder, start xml.StartElement) error {
		var it item
		if err := dec.DecodeElement(&it, &start); err != nil {
			return err
		}
		names = append(names, it.Name)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Weiß", "Böttiger"}, names)
}

func TestEachElement_Malformed(t *testing.T) {
	err := EachElement(context.Background(), strings.NewReader("<DATA><ITEM>"), "ITEM", func(dec *xml.Decoder, start xml.StartElement) error {
		return dec.Skip()
	})
	assert.Error(t, err)
}

func TestEachElement_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := EachElement(ctx, strings.NewReader("<DATA><ITEM/></DATA>"), "ITEM", func(dec *xml.Decoder, start xml.StartElement) error {
		t.Fatal("callback must not run after cancellation")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "persons.json")

	n, err := WriteFileAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, `{"ok":true}`)
		return err
	})
	require.NoError(t, err)
	assert.EqualValues(t, 11, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))
}

func TestWriteFileAtomic_FailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persons.json")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	boom := errors.New("boom")
	_, err := WriteFileAtomic(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be removed")
}

func TestProgress_LogsEveryN(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(zerolog.New(&buf), "letters", 10)

	for range 35 {
		p.Tick()
	}

	lines := strings.Count(buf.String(), "\n")
	assert.Equal(t, 4, lines, "expected logs at 1, 11, 21 and 31")
	assert.Contains(t, buf.String(), `"processed":1,`)
	assert.Contains(t, buf.String(), `"processed":31,`)
	assert.NotContains(t, buf.String(), `"processed":10,`)
}
