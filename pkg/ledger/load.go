package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	lerrors "github.com/otherjamesbrown/tmsledger/pkg/errors"
)

// Encoding names a ledger file character set.
type Encoding string

const (
	EncodingLatin1 Encoding = "latin1"
	EncodingUTF8   Encoding = "utf8"
)

// DefaultEncoding is the character set of the historical ledger files.
const DefaultEncoding = EncodingLatin1

// ParseEncoding normalises a character set name.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "latin1", "iso-8859-1", "iso_8859-1", "iso8859-1":
		return EncodingLatin1, nil
	case "utf8", "utf-8":
		return EncodingUTF8, nil
	default:
		return "", fmt.Errorf("%w: unknown encoding %q (want latin1 or utf8)", lerrors.ErrValidation, name)
	}
}

func (e Encoding) charset() encoding.Encoding {
	if e == EncodingUTF8 {
		return unicode.UTF8
	}
	return charmap.ISO8859_1
}

// NewReader decodes r from the encoding to UTF-8.
func (e Encoding) NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, e.charset().NewDecoder())
}

// NewWriter encodes UTF-8 text written to the result into w. Characters the
// encoding cannot represent make Write fail. Close flushes; it does not
// close w.
func (e Encoding) NewWriter(w io.Writer) io.WriteCloser {
	return transform.NewWriter(w, e.charset().NewEncoder())
}

// Load reads and parses the ledger at path. The file is closed before Load
// returns.
func Load(ctx context.Context, path string, enc Encoding, opts ...Option) ([]Meeting, error) {
	f, err := os.Open(path)
	if err != nil {
		code := lerrors.CodeProcessing
		if errors.Is(err, fs.ErrNotExist) {
			code = lerrors.CodeNotFound
		}
		return nil, &lerrors.LedgerError{Code: code, Message: "open ledger", Cause: err}
	}
	defer f.Close()

	return Parse(ctx, enc.NewReader(f), opts...)
}
