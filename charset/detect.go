package charset

import "github.com/saintfish/chardet"

// Detection is chardet's best-guess charset/language for a buffer of
// unlabeled text, kept as a secondary signal alongside BestCharset's
// bitset inference: the bitset is authoritative (it proves a charset
// can round-trip the observed code points), chardet only adds a
// cross-check a caller can surface in diagnostics when the two disagree.
type Detection struct {
	Charset    string
	Language   string
	Confidence int
}

// Detect runs chardet's statistical detector over p and reports its
// best guess. Unlike BestCharset, this can fail: when chardet finds no
// candidate it returns chardet's error and an empty Detection.
func Detect(p []byte) (Detection, error) {
	r, err := chardet.NewTextDetector().DetectBest(p)
	if err != nil {
		return Detection{}, err
	}
	return Detection{Charset: r.Charset, Language: r.Language, Confidence: r.Confidence}, nil
}
