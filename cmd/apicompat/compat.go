package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var httpMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

// endpoint is what a client can rely on for one method+path.
type endpoint struct {
	responses      map[string]struct{}
	requiredParams map[string]struct{}
}

// contract maps "METHOD path" to its endpoint.
type contract map[string]endpoint

// issueKind classifies a breaking change.
type issueKind string

const (
	removedOperation issueKind = "removed operation"
	removedResponse  issueKind = "removed response code"
	newRequiredParam issueKind = "new required parameter"
)

type issue struct {
	kind   issueKind
	op     string
	detail string
}

func (i issue) String() string {
	if i.detail == "" {
		return fmt.Sprintf("%s: %s", i.kind, i.op)
	}
	return fmt.Sprintf("%s: %s -> %s", i.kind, i.op, i.detail)
}

func parseContract(raw []byte) (contract, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	pathsRaw, ok := doc["paths"]
	if !ok {
		return nil, errors.New("missing top-level paths field")
	}
	paths, ok := toMap(pathsRaw)
	if !ok {
		return nil, errors.New("paths is not an object")
	}

	out := make(contract)
	for path, entry := range paths {
		ops, ok := toMap(entry)
		if !ok {
			continue
		}
		for method, opRaw := range ops {
			method = strings.ToLower(strings.TrimSpace(method))
			if _, ok := httpMethods[method]; !ok {
				continue
			}
			op, ok := toMap(opRaw)
			if !ok {
				continue
			}
			out[strings.ToUpper(method)+" "+path] = endpoint{
				responses:      responseCodes(op),
				requiredParams: requiredParams(op),
			}
		}
	}
	return out, nil
}

func responseCodes(op map[string]interface{}) map[string]struct{} {
	set := make(map[string]struct{})
	responses, ok := toMap(op["responses"])
	if !ok {
		return set
	}
	for code := range responses {
		if code = strings.ToLower(strings.TrimSpace(code)); code != "" {
			set[code] = struct{}{}
		}
	}
	return set
}

// requiredParams keys parameters as "in:name", so a header and a query
// parameter with the same name stay distinct.
func requiredParams(op map[string]interface{}) map[string]struct{} {
	set := make(map[string]struct{})
	params, ok := op["parameters"].([]interface{})
	if !ok {
		return set
	}
	for _, p := range params {
		pm, ok := toMap(p)
		if !ok {
			continue
		}
		if required, _ := pm["required"].(bool); !required {
			continue
		}
		name, _ := pm["name"].(string)
		in, _ := pm["in"].(string)
		set[in+":"+name] = struct{}{}
	}
	return set
}

func toMap(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// compare lists every change in revision that can break a client of base.
func compare(base, revision contract) []issue {
	var issues []issue

	for op, b := range base {
		r, ok := revision[op]
		if !ok {
			issues = append(issues, issue{kind: removedOperation, op: op})
			continue
		}
		for code := range b.responses {
			if _, ok := r.responses[code]; !ok {
				issues = append(issues, issue{kind: removedResponse, op: op, detail: strings.ToUpper(code)})
			}
		}
		for param := range r.requiredParams {
			if _, ok := b.requiredParams[param]; !ok {
				issues = append(issues, issue{kind: newRequiredParam, op: op, detail: param})
			}
		}
	}

	sort.Slice(issues, func(i, j int) bool {
		return issues[i].String() < issues[j].String()
	})
	return issues
}
