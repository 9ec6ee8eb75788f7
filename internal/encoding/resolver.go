package encoding

import (
	"mime"
	"strings"
)

// X11 selection targets with a fixed encoding. ICCCM defines STRING, and
// by convention TEXT, as Latin-1
const (
	TargetUTF8String = "utf8_string"
	TargetString     = "string"
	TargetText       = "text"
)

// ResolveTargetEncoding returns the charset label for a clipboard target
// name. Names other than the X11 ones are read as MIME types: a charset
// parameter is used when recognised, text/* without a charset is UTF-8,
// and a name that is not a MIME type at all is assumed to be UTF-8. The
// second result is false when the encoding cannot be determined
func ResolveTargetEncoding(target string) (string, bool) {
	target = strings.ToLower(strings.TrimSpace(target))

	switch target {
	case TargetUTF8String:
		return UTF8, true
	case TargetString, TargetText:
		return ISO8859_1, true
	}

	mediaType, params, err := parseMediaType(target)
	if err != nil {
		return UTF8, true
	}

	if charset, ok := params["charset"]; ok {
		return charsetLabel(charset)
	}

	if topLevel, _, _ := strings.Cut(mediaType, "/"); topLevel == "text" {
		return UTF8, true
	}
	return "", false
}

func charsetLabel(charset string) (string, bool) {
	switch charset = strings.ToLower(charset); charset {
	case UTF8, UTF16LE, UTF16BE, ISO8859_1, ISO885915, USASCII:
		return charset, true
	case UTF16, aliasUnicode:
		return UTF16, true
	}
	return "", false
}

type errNotMediaType string

func (e errNotMediaType) Error() string {
	return "not a media type: " + string(e)
}

// parseMediaType wraps mime.ParseMediaType, which also accepts a bare
// token. A media type needs both a type and a subtype
func parseMediaType(s string) (string, map[string]string, error) {
	mediaType, params, err := mime.ParseMediaType(s)
	if err != nil {
		return "", nil, err
	}
	topLevel, subtype, ok := strings.Cut(mediaType, "/")
	if !ok || topLevel == "" || subtype == "" {
		return "", nil, errNotMediaType(s)
	}
	return mediaType, params, nil
}
