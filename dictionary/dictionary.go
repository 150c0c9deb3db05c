// Package dictionary maps DICOM tags to their keyword and default value
// representation. The standard table is embedded; callers may merge their
// own (usually private) entries over it when constructing a Dictionary.
package dictionary

import (
	"cmp"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/caio-sobreiro/dicomfile/types"
)

//go:embed standard.tsv
var standardTSV string

// Entry describes one dictionary row.
type Entry struct {
	Tag types.Tag
	// VR is the default value representation used under implicit VR.
	VR types.VR
	// AltVR is set for tags the standard lists as "US or SS", "OB or OW" etc.
	AltVR   types.VR
	Name    string
	VM      string
	Retired bool
}

// Dictionary is an immutable tag lookup table. It is safe for concurrent use.
type Dictionary struct {
	byTag  map[uint32]Entry
	byName map[string]Entry
}

// Repeating groups 50xx (curves) and 60xx (overlays) are stored under their
// xx=00 tag and found by masking the low byte of the group.
const repeatingGroupMask = 0xFF00FFFF

var standard = sync.OnceValue(func() *Dictionary {
	entries, err := LoadTSV(strings.NewReader(standardTSV))
	if err != nil {
		panic(fmt.Sprintf("dictionary: embedded table: %v", err))
	}
	return build(entries)
})

// Default returns the process-wide standard dictionary.
func Default() *Dictionary {
	return standard()
}

// New returns the standard dictionary with overrides merged over it.
// Caller entries take precedence over standard entries for the same tag.
func New(overrides map[types.Tag]Entry) *Dictionary {
	if len(overrides) == 0 {
		return Default()
	}
	base := Default()
	d := &Dictionary{
		byTag:  make(map[uint32]Entry, len(base.byTag)+len(overrides)),
		byName: make(map[string]Entry, len(base.byName)+len(overrides)),
	}
	for k, v := range base.byTag {
		d.byTag[k] = v
	}
	for k, v := range base.byName {
		d.byName[k] = v
	}
	for tag, e := range overrides {
		e.Tag = tag
		d.add(e)
	}
	return d
}

// build indexes entries. A keyword listed under more than one tag resolves
// to the lowest tag.
func build(entries map[types.Tag]Entry) *Dictionary {
	d := &Dictionary{
		byTag:  make(map[uint32]Entry, len(entries)),
		byName: make(map[string]Entry, len(entries)),
	}
	sorted := make([]Entry, 0, len(entries))
	for _, e := range entries {
		sorted = append(sorted, e)
	}
	slices.SortFunc(sorted, func(a, b Entry) int {
		return cmp.Compare(b.Tag.Uint32(), a.Tag.Uint32())
	})
	for _, e := range sorted {
		d.add(e)
	}
	return d
}

func (d *Dictionary) add(e Entry) {
	if prev, ok := d.byTag[e.Tag.Uint32()]; ok && prev.Name != e.Name {
		delete(d.byName, prev.Name)
	}
	d.byTag[e.Tag.Uint32()] = e
	if e.Name != "" {
		d.byName[e.Name] = e
	}
}

// Len returns the number of explicit entries.
func (d *Dictionary) Len() int {
	return len(d.byTag)
}

// Lookup finds the entry for tag. Group lengths, repeating groups and
// private creator elements resolve to generic entries; any other tag
// missing from the table reports false.
func (d *Dictionary) Lookup(tag types.Tag) (Entry, bool) {
	key := tag.Uint32()
	if e, ok := d.byTag[key]; ok {
		return e, true
	}

	if isRepeatingGroup(tag.Group) {
		if e, ok := d.byTag[key&repeatingGroupMask]; ok {
			e.Tag = tag
			return e, true
		}
	}

	// (gggg,0000)	UL	GenericGroupLength
	if tag.Element == 0x0000 {
		return Entry{Tag: tag, VR: types.VR_UL, Name: "GenericGroupLength", VM: "1"}, true
	}

	if tag.IsPrivate() && tag.Element >= 0x0010 && tag.Element <= 0x00FF {
		return Entry{Tag: tag, VR: types.VR_LO, Name: "PrivateCreator", VM: "1"}, true
	}

	return Entry{}, false
}

// LookupName finds an entry by its keyword, e.g. "PatientName".
func (d *Dictionary) LookupName(name string) (Entry, bool) {
	e, ok := d.byName[name]
	return e, ok
}

func isRepeatingGroup(group uint16) bool {
	hi := group & 0xFF00
	return (hi == 0x5000 || hi == 0x6000) && group%2 == 0
}

// LoadTSV reads dictionary rows of the form
//
//	(gggg,eeee)<TAB>VR<TAB>Keyword<TAB>VM[<TAB>version]
//
// Lines starting with '#' are comments. A VR column such as "US/SS" sets
// AltVR; "NONE" leaves VR empty. Group digits written as "xx" are read as 00.
func LoadTSV(r io.Reader) (map[types.Tag]Entry, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	entries := make(map[types.Tag]Entry)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dictionary row: %w", err)
		}
		if len(row) < 3 {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("dictionary line %d: want at least 3 columns, got %d", line, len(row))
		}

		tag, err := types.ParseTag(strings.ReplaceAll(strings.ToLower(row[0]), "xx", "00"))
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("dictionary line %d: %w", line, err)
		}

		vr, alt, err := parseVRColumn(row[1])
		if err != nil {
			line, _ := reader.FieldPos(1)
			return nil, fmt.Errorf("dictionary line %d: %w", line, err)
		}

		e := Entry{Tag: tag, VR: vr, AltVR: alt, Name: strings.TrimSpace(row[2])}
		if len(row) > 3 {
			e.VM = strings.TrimSpace(row[3])
		}
		if len(row) > 4 {
			e.Retired = strings.TrimSpace(row[4]) == "RET"
		}
		entries[tag] = e
	}
	return entries, nil
}

func parseVRColumn(col string) (types.VR, types.VR, error) {
	col = strings.ToUpper(strings.TrimSpace(col))
	if col == "NONE" || col == "" {
		return "", "", nil
	}
	first, second, _ := strings.Cut(col, "/")
	vr, ok := types.ParseVR(first)
	if !ok {
		return "", "", fmt.Errorf("unknown VR %q", first)
	}
	if second == "" {
		return vr, "", nil
	}
	alt, ok := types.ParseVR(second)
	if !ok {
		return "", "", fmt.Errorf("unknown VR %q", second)
	}
	return vr, alt, nil
}
