package dxfload

import (
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"

	"github.com/chazu/cadmesh/pkg/render"
)

// decoder turns raw names and text into UTF-8. Drawings carry one code
// page, so detection runs once over every string.
type decoder struct {
	enc encoding.Encoding
}

func newDecoder(samples []string) *decoder {
	var sample strings.Builder
	legacy := false
	for _, n := range samples {
		if !utf8.ValidString(n) {
			legacy = true
		}
		sample.WriteString(n)
		sample.WriteByte('\n')
	}
	if !legacy {
		return &decoder{}
	}
	charset := ""
	if res, err := chardet.NewTextDetector().DetectBest([]byte(sample.String())); err == nil && res != nil {
		charset = res.Charset
	}
	render.Logger().Debug("dxfload: legacy code page", "charset", charset)
	return &decoder{enc: encodingFor(charset)}
}

// encodingFor maps a detected charset to its decoder. Anything unknown is
// read as GBK, the code page most legacy drawings in the wild use.
func encodingFor(charset string) encoding.Encoding {
	switch charset {
	case "Big5":
		return traditionalchinese.Big5
	case "Shift_JIS":
		return japanese.ShiftJIS
	case "EUC-JP":
		return japanese.EUCJP
	case "GB-18030":
		return simplifiedchinese.GB18030
	}
	return simplifiedchinese.GBK
}

func (d *decoder) decode(s string) string {
	if d == nil || d.enc == nil || utf8.ValidString(s) {
		return s
	}
	out, _, err := transform.String(d.enc.NewDecoder(), s)
	if err != nil {
		return s
	}
	return out
}
