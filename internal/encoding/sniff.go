package encoding

import "github.com/gabriel-vasile/mimetype"

// SniffEncoding guesses the charset of data from its content. It is used
// for targets whose name does not determine an encoding. Binary content
// and charsets Decode does not support yield false
func SniffEncoding(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	mt := mimetype.Detect(data)
	if !isText(mt) {
		return "", false
	}

	_, params, err := parseMediaType(mt.String())
	if err != nil {
		return "", false
	}
	charset, ok := params["charset"]
	if !ok {
		return UTF8, true
	}
	return charsetLabel(charset)
}

// SniffMediaType returns the detected media type of data, including
// parameters
func SniffMediaType(data []byte) string {
	return mimetype.Detect(data).String()
}

func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
