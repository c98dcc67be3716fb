package scan

import (
	"fmt"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// EncodingAuto selects per-file charset detection instead of a fixed decoder.
const EncodingAuto = "auto"

// ResolveEncoding maps a configured encoding name to a decoder.
// An empty name or a UTF-8 alias selects plain byte reading (nil decoder);
// EncodingAuto turns on per-file detection. Unknown names are an error so a
// typo fails the run before any file is opened.
func ResolveEncoding(name string) (enc encoding.Encoding, detect bool, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return nil, false, nil
	case EncodingAuto:
		return nil, true, nil
	case "utf-8", "utf8":
		return nil, false, nil
	}

	enc, err = ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, false, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		// The IANA index recognizes some names it has no decoder for.
		return nil, false, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, false, nil
}

// detectCharset sniffs a decoder from the first bytes of a file.
// UTF-8 and plain ASCII need no decoding, so they map to nil, as does any
// charset the IANA index cannot supply a decoder for.
func detectCharset(prefix []byte) encoding.Encoding {
	if len(prefix) == 0 {
		return nil
	}

	best, err := chardet.NewTextDetector().DetectBest(prefix)
	if err != nil {
		return nil
	}

	switch strings.ToLower(best.Charset) {
	case "utf-8", "ascii", "us-ascii":
		return nil
	}

	enc, err := ianaindex.IANA.Encoding(best.Charset)
	if err != nil || enc == nil {
		return nil
	}
	return enc
}
