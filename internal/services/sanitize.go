// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package services

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"github.com/LerianStudio/pagehost/pkg"
	"github.com/LerianStudio/pagehost/pkg/constant"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"golang.org/x/net/html"
)

// allowedTags is the fixed tag allow-list. Anything else is dropped while its
// children are kept, except script and style whose subtrees are dropped whole.
var allowedTags = map[string]bool{
	"html": true, "head": true, "title": true, "body": true, "meta": true,
	"div": true, "span": true, "p": true, "br": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"a": true, "img": true, "strong": true, "em": true, "b": true, "i": true,
	"u": true, "s": true, "small": true, "sub": true, "sup": true, "pre": true,
	"code": true, "blockquote": true, "ul": true, "ol": true, "li": true,
	"dl": true, "dt": true, "dd": true, "table": true, "thead": true,
	"tbody": true, "tfoot": true, "tr": true, "th": true, "td": true,
	"caption": true, "figure": true, "figcaption": true, "section": true,
	"article": true, "header": true, "footer": true, "nav": true,
	"main": true, "aside": true,
}

// allowedAttributes is the per-tag attribute allow-list; "*" applies to every
// allowed tag.
var allowedAttributes = map[string]map[string]bool{
	"*":    {"class": true, "id": true, "title": true, "lang": true, "dir": true},
	"a":    {"href": true, "target": true, "rel": true},
	"img":  {"src": true, "alt": true, "width": true, "height": true},
	"meta": {"charset": true, "name": true, "content": true},
	"th":   {"colspan": true, "rowspan": true, "scope": true},
	"td":   {"colspan": true, "rowspan": true},
	"ol":   {"start": true, "type": true},
}

// droppedSubtrees are tags whose entire content is discarded.
var droppedSubtrees = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true, "embed": true,
}

// sanitize rewrites the document against the allow-list. Malformed but
// parseable markup passes through best-effort; only content that is not valid
// UTF-8 text is rejected.
func (uc *UseCase) sanitize(ctx context.Context, data []byte) ([]byte, error) {
	logger := libCommons.NewLoggerFromContext(ctx)

	if !utf8.Valid(data) {
		logger.Warnf("Rejecting upload that does not decode as UTF-8 text")

		return nil, pkg.ValidateBusinessError(constant.ErrSanitizationFailed, "Artifact")
	}

	tokenizer := html.NewTokenizer(bytes.NewReader(data))

	var out bytes.Buffer

	skipDepth := 0

	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			// io.EOF and malformed-tail errors both end the rewrite.
			return out.Bytes(), nil
		}

		token := tokenizer.Token()

		switch tokenType {
		case html.StartTagToken, html.SelfClosingTagToken:
			name := strings.ToLower(token.Data)

			if droppedSubtrees[name] {
				if tokenType == html.StartTagToken {
					skipDepth++
				}

				continue
			}

			if skipDepth > 0 || !allowedTags[name] {
				continue
			}

			writeTag(&out, name, token.Attr, tokenType == html.SelfClosingTagToken)
		case html.EndTagToken:
			name := strings.ToLower(token.Data)

			if droppedSubtrees[name] {
				if skipDepth > 0 {
					skipDepth--
				}

				continue
			}

			if skipDepth > 0 || !allowedTags[name] {
				continue
			}

			out.WriteString("</" + name + ">")
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}

			out.WriteString(html.EscapeString(token.Data))
		case html.DoctypeToken:
			out.WriteString("<!DOCTYPE " + token.Data + ">")
		case html.CommentToken:
			// Comments are dropped.
		}
	}
}

func writeTag(out *bytes.Buffer, name string, attrs []html.Attribute, selfClosing bool) {
	out.WriteString("<" + name)

	for _, attr := range attrs {
		key := strings.ToLower(attr.Key)

		if !attributeAllowed(name, key) {
			continue
		}

		if isScriptURL(key, attr.Val) {
			continue
		}

		out.WriteString(" " + key + `="` + html.EscapeString(attr.Val) + `"`)
	}

	if selfClosing {
		out.WriteString("/>")

		return
	}

	out.WriteString(">")
}

func attributeAllowed(tag, key string) bool {
	if strings.HasPrefix(key, "on") {
		return false
	}

	if allowedAttributes["*"][key] {
		return true
	}

	perTag, ok := allowedAttributes[tag]

	return ok && perTag[key]
}

func isScriptURL(key, value string) bool {
	if key != "href" && key != "src" {
		return false
	}

	trimmed := strings.ToLower(strings.TrimSpace(value))

	return strings.HasPrefix(trimmed, "javascript:") || strings.HasPrefix(trimmed, "data:")
}
