// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/essay-engine/pkg/types"
)

func TestEncodeRISBookScenario(t *testing.T) {
	refs := []types.Reference{{Type: types.KindBook, Author: "A", Year: "2020", Title: "Ti", Publication: "Pub"}}
	assert.Equal(t, "TY  - BOOK\nAU  - A\nPY  - 2020\nTI  - Ti\nPB  - Pub\nER  - \n\n", string(EncodeRIS(refs)))
}

func TestEncodeRIS(t *testing.T) {
	tests := []struct {
		name string
		refs []types.Reference
		want string
	}{
		{
			name: "empty",
			want: "",
		},
		{
			name: "journal uses T2 and keeps optional order",
			refs: []types.Reference{{
				Type: types.KindJournal, Author: "Keller, K.L.", Year: "1993", Title: "Brand equity",
				Publication: "Journal of Marketing", Volume: "57", Issue: "1", Pages: "1-22",
				DOI: "10.2307/1252054", URL: "https://doi.org/10.2307/1252054",
			}},
			want: "TY  - JOUR\nAU  - Keller, K.L.\nPY  - 1993\nTI  - Brand equity\nT2  - Journal of Marketing\n" +
				"VL  - 57\nIS  - 1\nSP  - 1-22\nDO  - 10.2307/1252054\nUR  - https://doi.org/10.2307/1252054\nER  - \n\n",
		},
		{
			name: "website uses PB and skips blank optionals",
			refs: []types.Reference{{
				Type: types.KindWebsite, Author: "BPS", Year: "2024", Title: "Retail index",
				Publication: "Badan Pusat Statistik", Volume: "  ", URL: "https://bps.go.id",
			}},
			want: "TY  - WEB\nAU  - BPS\nPY  - 2024\nTI  - Retail index\nPB  - Badan Pusat Statistik\n" +
				"UR  - https://bps.go.id\nER  - \n\n",
		},
		{
			name: "line breaks folded",
			refs: []types.Reference{{
				Type: types.KindBook, Author: "A", Year: "2020", Title: "Two\nlines", Publication: "P\r\nQ",
			}},
			want: "TY  - BOOK\nAU  - A\nPY  - 2020\nTI  - Two lines\nPB  - P Q\nER  - \n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(EncodeRIS(tt.refs)))
		})
	}
}

func TestEncodeRISRecordSeparation(t *testing.T) {
	refs := []types.Reference{
		{Type: types.KindBook, Author: "A", Year: "2020", Title: "One", Publication: "P"},
		{Type: types.KindJournal, Author: "B", Year: "2021", Title: "Two", Publication: "J"},
		{Type: types.KindWebsite, Author: "C", Year: "2022", Title: "Three", Publication: "W"},
	}
	out := string(EncodeRIS(refs))

	records := strings.Split(strings.TrimSuffix(out, "\n\n"), "\n\n")
	require.Len(t, records, 3)
	for _, r := range records {
		assert.True(t, strings.HasPrefix(r, "TY  - "))
		assert.True(t, strings.HasSuffix(r, "ER  - "))
		assert.NotContains(t, r, "\n\n")
	}
	assert.NotContains(t, out, "VL  -")
	assert.NotContains(t, out, "DO  -")
}

func TestEncodeRISRoundTrip(t *testing.T) {
	refs := []types.Reference{
		{Type: types.KindJournal, Author: "Kotler, P. & Keller, K.L.", Year: "2016", Title: "Marketing: a review",
			Publication: "Jurnal Manajemen", Volume: "3", DOI: "10.1/x"},
		{Type: types.KindBook, Author: "Tjiptono, F.", Year: "2019", Title: "Strategi Pemasaran", Publication: "Andi"},
		{Type: types.KindWebsite, Author: "Kemendag", Year: "2023", Title: "Ekspor", Publication: "kemendag.go.id"},
	}

	got := parseRIS(t, EncodeRIS(refs))
	require.Len(t, got, len(refs))
	for i, r := range refs {
		assert.Equal(t, r.Type, got[i].Type)
		assert.Equal(t, r.Author, got[i].Author)
		assert.Equal(t, r.Year, got[i].Year)
		assert.Equal(t, r.Title, got[i].Title)
		assert.Equal(t, r.Publication, got[i].Publication)
		assert.Equal(t, r.Volume, got[i].Volume)
		assert.Equal(t, r.DOI, got[i].DOI)
	}
}

func TestEncodeRISDeterministic(t *testing.T) {
	refs := []types.Reference{{Type: types.KindBook, Author: "A", Year: "2020", Title: "Ti", Publication: "Pub"}}
	assert.Equal(t, EncodeRIS(refs), EncodeRIS(refs))
}

// parseRIS reads the tag lines EncodeRIS emits back into references.
func parseRIS(t *testing.T, data []byte) []types.Reference {
	t.Helper()
	var out []types.Reference
	var cur *types.Reference
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		require.GreaterOrEqual(t, len(line), 6, "short tag line %q", line)
		require.Equal(t, "  - ", line[2:6], "malformed tag line %q", line)
		tag, val := line[:2], line[6:]
		if tag == "TY" {
			out = append(out, types.Reference{Type: types.ReferenceKind(val)})
			cur = &out[len(out)-1]
			continue
		}
		require.NotNil(t, cur, "tag %s outside a record", tag)
		switch tag {
		case "AU":
			cur.Author = val
		case "PY":
			cur.Year = val
		case "TI":
			cur.Title = val
		case "T2", "PB":
			cur.Publication = val
		case "VL":
			cur.Volume = val
		case "IS":
			cur.Issue = val
		case "SP":
			cur.Pages = val
		case "DO":
			cur.DOI = val
		case "UR":
			cur.URL = val
		case "ER":
			cur = nil
		default:
			t.Fatalf("unexpected tag %q", tag)
		}
	}
	require.NoError(t, sc.Err())
	return out
}
