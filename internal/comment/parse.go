package comment

import (
	"fmt"
	"strings"
)

// Draft is the content decoded from a generator response, before identity
// and element metadata are attached.
type Draft struct {
	Name        string
	Kind        string
	Description string
	Parameters  []Param
	Returns     *Returns
	IsAsync     bool
}

// ResponseError reports a generator response that could not be decoded into
// a usable draft.
type ResponseError struct {
	Reason string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("unusable generator response: %s", e.Reason)
}

type section int

const (
	sectionNone section = iota
	sectionName
	sectionDescription
	sectionParameters
	sectionReturns
	sectionOther
)

var sectionKeys = map[string]section{
	"name":        sectionName,
	"description": sectionDescription,
	"parameters":  sectionParameters,
	"params":      sectionParameters,
	"arguments":   sectionParameters,
	"returns":     sectionReturns,
	"return":      sectionReturns,
	"async":       sectionOther,
	"kind":        sectionOther,
}

// ParseResponse decodes the line-prefixed response convention requested by
// the comment prompt:
//
//	Name: <name>
//	Description: <text>
//	Parameters:
//	- <name> {<type>}: <text> [default: <value>]
//	Returns: {<type>} <text>
//	Async: true|false
//
// Keys are case-insensitive and may carry markdown bullets or bold markers.
// Lines that do not open a field continue the last opened one. A response
// without a description is reported as a *ResponseError.
func ParseResponse(raw string) (Draft, error) {
	if strings.TrimSpace(raw) == "" {
		return Draft{}, &ResponseError{Reason: "empty response"}
	}

	var d Draft
	current := sectionNone

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "```") {
			continue
		}

		bullet := isBullet(trimmed)
		if key, value, ok := splitKey(trimmed); ok {
			sec := sectionKeys[key]
			// Inside a parameter list a bullet is a parameter unless it names
			// a field that cannot plausibly be a parameter.
			if !(current == sectionParameters && bullet && (sec == sectionName || sec == sectionDescription || sec == sectionParameters)) {
				current = sec
				switch key {
				case "name":
					d.Name = value
				case "description":
					d.Description = value
				case "returns", "return":
					d.Returns = parseReturns(value)
				case "async":
					d.IsAsync = parseBool(value)
				case "kind":
					d.Kind = strings.ToLower(value)
				}
				continue
			}
		}

		switch current {
		case sectionParameters:
			if bullet {
				if p, ok := parseParam(stripBullet(trimmed)); ok {
					d.Parameters = append(d.Parameters, p)
				}
				continue
			}
			if n := len(d.Parameters); n > 0 {
				d.Parameters[n-1].Description = appendSpaced(d.Parameters[n-1].Description, trimmed)
			}
		case sectionDescription:
			d.Description = appendSpaced(d.Description, trimmed)
		case sectionReturns:
			if d.Returns == nil {
				d.Returns = parseReturns(trimmed)
				continue
			}
			d.Returns.Description = appendSpaced(d.Returns.Description, trimmed)
		}
	}

	d.Description = strings.TrimSpace(d.Description)
	if d.Description == "" {
		return Draft{}, &ResponseError{Reason: "missing description"}
	}
	return d, nil
}

// splitKey recognises "Key: value" lines with optional bullet and bold
// decoration around the key.
func splitKey(line string) (string, string, bool) {
	s := strings.TrimLeft(stripBullet(line), "*_# ")
	idx := strings.Index(s, ":")
	if idx <= 0 {
		return "", "", false
	}
	key := strings.ToLower(strings.Trim(s[:idx], "*_ "))
	if _, ok := sectionKeys[key]; !ok {
		return "", "", false
	}
	value := strings.TrimSpace(strings.TrimLeft(s[idx+1:], "*_ "))
	return key, value, true
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "• ")
}

func stripBullet(line string) string {
	if isBullet(line) {
		_, rest, _ := strings.Cut(line, " ")
		return strings.TrimSpace(rest)
	}
	return line
}

func parseParam(text string) (Param, bool) {
	head, desc, _ := strings.Cut(text, ":")
	head = strings.TrimSpace(head)

	var p Param
	if open := strings.Index(head, "{"); open >= 0 {
		if end := strings.LastIndex(head, "}"); end > open {
			p.Type = strings.TrimSpace(head[open+1 : end])
			head = head[:open] + head[end+1:]
		}
	}
	p.Name = strings.Trim(strings.TrimSpace(head), "`*_")
	if p.Name == "" {
		return Param{}, false
	}

	desc = strings.TrimSpace(desc)
	if start := strings.Index(desc, "[default:"); start >= 0 {
		value := desc[start+len("[default:"):]
		value, _, _ = strings.Cut(value, "]")
		p.Default = strings.TrimSpace(value)
		desc = strings.TrimSpace(desc[:start])
	}
	p.Description = desc
	return p, true
}

func parseReturns(value string) *Returns {
	r := &Returns{}
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "{") {
		if end := strings.Index(value, "}"); end > 0 {
			r.Type = strings.TrimSpace(value[1:end])
			value = strings.TrimSpace(value[end+1:])
		}
	}
	r.Description = value
	return r
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.Trim(strings.TrimSpace(value), ".")) {
	case "true", "yes", "y", "1":
		return true
	default:
		return false
	}
}

func appendSpaced(existing, next string) string {
	if existing == "" {
		return next
	}
	return existing + " " + next
}
