package erp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/chatventas/commerce-service/internal/domain"
)

// Tag names of the legacy ERP document dialect. The host system speaks
// uppercase Spanish tags; product names and promotion texts arrive inside
// CDATA sections because they may contain arbitrary characters.
const (
	requestRoot  = "SOLICITUD"
	responseRoot = "RESPUESTA"

	tagSystem       = "SISTEMA"
	tagService      = "SERVICIO"
	tagProgram      = "PROGRAMA"
	tagTransmitDate = "FECHATX"
	tagTransmitTime = "HORATX"
	tagSearchText   = "TEXTO"

	tagArticle      = "ARTICULO"
	tagName         = "NOMBRE"
	tagPrice        = "PRECIO"
	tagStock        = "STOCK"
	tagUnitsPerCase = "BULTO"
	tagPromotion    = "OFERTA"
	tagErrorCode    = "CODERROR"
	tagErrorMessage = "MSGERROR"
)

// Query is the immutable request value sent to the ERP. Built fresh per call.
type Query struct {
	SearchTerm   string
	TransmitDate string
	TransmitTime string
	System       string
	Service      string
	Program      string
}

// Response is the structured form of one complete ERP response document.
type Response struct {
	Products     []domain.ProductFact
	ErrorCode    int
	ErrorMessage string
}

// OK reports whether the ERP accepted the request. An absent error code
// decodes as zero, which counts as success.
func (r *Response) OK() bool {
	return r.ErrorCode == 0
}

// Encode renders the query as one wire document. The search term travels
// verbatim: the ERP does no unescaping on its side, so terms carrying raw
// markup characters are rejected here instead of escaped.
func (q Query) Encode() ([]byte, error) {
	term := strings.TrimSpace(q.SearchTerm)
	if term == "" {
		return nil, ErrEmptySearchTerm
	}
	if strings.ContainsAny(term, "<>") {
		return nil, ErrUnsafeSearchTerm
	}

	var buf bytes.Buffer
	buf.WriteString("<" + requestRoot + ">")
	writeField(&buf, tagSystem, q.System)
	writeField(&buf, tagService, q.Service)
	writeField(&buf, tagProgram, q.Program)
	writeField(&buf, tagTransmitDate, q.TransmitDate)
	writeField(&buf, tagTransmitTime, q.TransmitTime)
	writeField(&buf, tagSearchText, term)
	buf.WriteString("</" + requestRoot + ">")
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, tag, value string) {
	buf.WriteString("<" + tag + ">")
	buf.WriteString(value)
	buf.WriteString("</" + tag + ">")
}

// Decode parses one complete response document. Decoding is tolerant: product
// fields that are missing or unparseable stay absent. It fails only when the
// outer document boundary cannot be located.
func Decode(raw []byte) (*Response, error) {
	doc := string(raw)
	open := strings.Index(doc, "<"+responseRoot+">")
	if open < 0 {
		return nil, fmt.Errorf("%w: missing <%s>", ErrMalformedResponse, responseRoot)
	}
	end := strings.LastIndex(doc, "</"+responseRoot+">")
	if end < 0 || end < open {
		return nil, fmt.Errorf("%w: missing </%s>", ErrMalformedResponse, responseRoot)
	}
	body := doc[open+len(responseRoot)+2 : end]

	resp := &Response{}
	rest := body
	for {
		block, remainder, found := cutSection(rest, tagArticle)
		if !found {
			rest = remainder
			break
		}
		if fact, ok := decodeArticle(block); ok {
			resp.Products = append(resp.Products, fact)
		}
		rest = remainder
	}

	// Error fields live at the top level, outside the article blocks.
	if code, ok := fieldValue(rest, tagErrorCode); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(code)); err == nil {
			resp.ErrorCode = n
		}
	}
	if msg, ok := fieldValue(rest, tagErrorMessage); ok {
		resp.ErrorMessage = strings.TrimSpace(msg)
	}
	return resp, nil
}

// decodeArticle maps one ARTICULO block onto a ProductFact. Blocks without a
// literal-content name are skipped entirely.
func decodeArticle(block string) (domain.ProductFact, bool) {
	name, ok := literalValue(block, tagName)
	if !ok || strings.TrimSpace(name) == "" {
		return domain.ProductFact{}, false
	}
	fact := domain.ProductFact{Name: strings.TrimSpace(name)}

	if v, ok := fieldValue(block, tagPrice); ok {
		if price, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			fact.Price = &price
		}
	}
	if v, ok := fieldValue(block, tagStock); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			fact.StockQuantity = &n
		}
	}
	if v, ok := fieldValue(block, tagUnitsPerCase); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			fact.UnitsPerCase = &n
		}
	}
	if v, ok := literalValue(block, tagPromotion); ok {
		promo := strings.TrimSpace(v)
		if promo != "" {
			fact.PromotionText = &promo
		}
	}
	return fact, true
}

// cutSection extracts the content of the first <tag>...</tag> section and
// returns the document with that section removed.
func cutSection(doc, tag string) (content, remainder string, found bool) {
	openTag := "<" + tag + ">"
	closeTag := "</" + tag + ">"
	start := strings.Index(doc, openTag)
	if start < 0 {
		return "", doc, false
	}
	end := strings.Index(doc[start:], closeTag)
	if end < 0 {
		// Unterminated section: drop the tail so scanning terminates.
		return "", doc[:start], false
	}
	end += start
	content = doc[start+len(openTag) : end]
	remainder = doc[:start] + doc[end+len(closeTag):]
	return content, remainder, true
}

// fieldValue returns the raw text between <tag> and </tag>, unwrapping a
// CDATA section when present.
func fieldValue(doc, tag string) (string, bool) {
	content, _, found := cutSection(doc, tag)
	if !found {
		return "", false
	}
	return unwrapCDATA(content), true
}

// literalValue is like fieldValue but only accepts values carried inside a
// literal-content (CDATA) marker.
func literalValue(doc, tag string) (string, bool) {
	content, _, found := cutSection(doc, tag)
	if !found {
		return "", false
	}
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "<![CDATA[") {
		return "", false
	}
	return unwrapCDATA(trimmed), true
}

func unwrapCDATA(s string) string {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "<![CDATA[") && strings.HasSuffix(trimmed, "]]>") {
		return trimmed[len("<![CDATA[") : len(trimmed)-len("]]>")]
	}
	return s
}
