package dicom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// labelByTerm maps Specific Character Set defined terms (PS3.3 C.12.1.1.2)
// to charset labels.
var labelByTerm = map[string]string{
	"ISO_IR 100": "iso-ir-100",
	"ISO_IR 101": "iso-ir-101",
	"ISO_IR 109": "iso-ir-109",
	"ISO_IR 110": "iso-ir-110",
	"ISO_IR 144": "iso-ir-144",
	"ISO_IR 127": "iso-ir-127",
	"ISO_IR 126": "iso-ir-126",
	"ISO_IR 138": "iso-ir-138",
	"ISO_IR 148": "iso-ir-148",
	"ISO_IR 13":  "shift_jis",
	"ISO_IR 166": "tis-620",
	"GB18030":    "gb18030",
	"GBK":        "gbk",

	"ISO 2022 IR 100": "iso-ir-100",
	"ISO 2022 IR 101": "iso-ir-101",
	"ISO 2022 IR 109": "iso-ir-109",
	"ISO 2022 IR 110": "iso-ir-110",
	"ISO 2022 IR 144": "iso-ir-144",
	"ISO 2022 IR 127": "iso-ir-127",
	"ISO 2022 IR 126": "iso-ir-126",
	"ISO 2022 IR 138": "iso-ir-138",
	"ISO 2022 IR 148": "iso-ir-148",
	"ISO 2022 IR 13":  "shift_jis",
	"ISO 2022 IR 166": "tis-620",
	"ISO 2022 IR 87":  "iso-2022-jp",
	"ISO 2022 IR 159": "iso-2022-jp",
	"ISO 2022 IR 149": "euc-kr",
}

// lookupEncoding resolves the values of (0008,0005). A nil encoding means
// the default repertoire or UTF-8, where bytes are used as-is.
func lookupEncoding(terms []string) (encoding.Encoding, error) {
	term := ""
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			term = t
			break
		}
	}

	switch term {
	case "", "ISO_IR 6", "ISO 2022 IR 6", "ISO_IR 192":
		return nil, nil
	case "ISO_IR 100":
		// most common case, skip the label lookup
		return charmap.ISO8859_1, nil
	}

	label, ok := labelByTerm[term]
	if !ok {
		return nil, fmt.Errorf("unknown specific character set %q", term)
	}
	enc, _ := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("no encoding for character set %q (label %q)", term, label)
	}
	if enc == unicode.UTF8 {
		return nil, nil
	}
	return enc, nil
}

func decodeString(enc encoding.Encoding, raw []byte) string {
	if enc == nil {
		return string(raw)
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

func encodeString(enc encoding.Encoding, s string) []byte {
	if enc == nil {
		return []byte(s)
	}
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}
