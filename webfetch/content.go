package webfetch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/gabriel-vasile/mimetype"
	"github.com/yosssi/gohtml"
)

// Kind is the detected format of a response body.
type Kind int

const (
	KindUnknown Kind = iota
	KindJSON
	KindHTML
	KindXML
)

func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindHTML:
		return "html"
	case KindXML:
		return "xml"
	default:
		return "unknown"
	}
}

// Detect sniffs the body with mimetype and classifies it.
func Detect(body []byte) Kind {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return KindUnknown
	}

	mtype := mimetype.Detect(trimmed)
	switch {
	case mtype.Is("application/json"):
		return KindJSON
	case mtype.Is("text/html"):
		return KindHTML
	case mtype.Is("text/xml"), mtype.Is("application/xml"):
		return KindXML
	}

	if json.Valid(trimmed) {
		return KindJSON
	}
	if bytes.HasPrefix(trimmed, []byte("<")) && !bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return KindHTML
	}
	return KindUnknown
}

// Prettify indents JSON, XML and HTML bodies. It returns an empty slice when the
// body is none of those.
func Prettify(body []byte) ([]byte, error) {
	if len(body) == 0 {
		return []byte{}, nil
	}

	trimmed := bytes.TrimSpace(body)

	var jsonData any
	if err := json.Unmarshal(trimmed, &jsonData); err == nil {
		output, err := json.MarshalIndent(jsonData, "", "  ")
		if err != nil {
			return []byte{}, fmt.Errorf("remarshalling JSON: %w", err)
		}
		return output, nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(trimmed); err == nil && doc.Root() != nil && !strings.EqualFold(doc.Root().Tag, "html") {
		doc.Indent(1)
		var output bytes.Buffer
		if _, err := doc.WriteTo(&output); err != nil {
			return []byte{}, fmt.Errorf("writing indented XML: %w", err)
		}
		return output.Bytes(), nil
	}

	if Detect(trimmed) == KindHTML {
		output := gohtml.FormatBytes(trimmed)
		if len(output) > 0 {
			return output, nil
		}
	}

	return []byte{}, nil
}
