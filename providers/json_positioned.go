package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	gojson "github.com/coreos/go-json"
	jp "github.com/reclaimprotocol/jsonpathplus-go"
	"go.uber.org/zap"
)

// ValueRange is a half-open byte range [Start, End) of one JSON value inside a document.
type ValueRange struct {
	Start int
	End   int
}

// Document is a decrypted response body parsed once for repeated JSONPath queries.
type Document struct {
	raw  []byte
	root gojson.Node
}

// ParseDocument parses doc into a Node tree with byte offsets (coreos/go-json).
func ParseDocument(doc []byte) (*Document, error) {
	var root gojson.Node
	if err := gojson.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("failed to parse JSON for offsets: %v", err)
	}
	return &Document{raw: doc, root: root}, nil
}

// ValueRanges returns the byte ranges of every match of jsonPathExpr, in the
// order reported by the JSONPath engine:
// 1) Evaluate JSONPath using jsonpathplus-go
// 2) Resolve each result path against the offset tree
// 3) Measure the exact extent of the value starting at the node offset
func (d *Document) ValueRanges(jsonPathExpr string) ([]ValueRange, error) {
	expr := normalizeJSONPath(jsonPathExpr)
	results, err := jp.Query(expr, string(d.raw))
	if err != nil {
		return nil, fmt.Errorf("JSONPath query failed: %v", err)
	}
	if len(results) == 0 {
		logger.Debug("JSONPath matched nothing", zap.String("path", expr))
		return nil, nil
	}

	ranges := make([]ValueRange, 0, len(results))
	for _, r := range results {
		segments := jsonPathToSegments(r.Path)
		n, err := findNodeBySegments(&d.root, segments)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %q: %v", r.Path, err)
		}
		vr, err := d.measureValue(n)
		if err != nil {
			return nil, fmt.Errorf("failed to measure value at path %q: %v", r.Path, err)
		}
		ranges = append(ranges, vr)
	}
	return ranges, nil
}

// measureValue decodes exactly one JSON value at the node offset and returns
// its range with surrounding whitespace excluded. String nodes may report the
// offset of their first content byte rather than the opening quote, so the
// byte before is tried too and the decoded text must match the node.
func (d *Document) measureValue(n *gojson.Node) (ValueRange, error) {
	var lastErr error
	for _, start := range []int{n.Start, n.Start - 1} {
		vr, raw, err := d.decodeAt(start)
		if err != nil {
			lastErr = err
			continue
		}
		if want, ok := n.Value.(string); ok {
			var got string
			if err := json.Unmarshal(raw, &got); err != nil || got != want {
				lastErr = fmt.Errorf("value at offset %d does not match node", start)
				continue
			}
		}
		return vr, nil
	}
	return ValueRange{}, lastErr
}

func (d *Document) decodeAt(start int) (ValueRange, json.RawMessage, error) {
	if start < 0 || start >= len(d.raw) {
		return ValueRange{}, nil, fmt.Errorf("offset %d outside document of length %d", start, len(d.raw))
	}
	dec := json.NewDecoder(bytes.NewReader(d.raw[start:]))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return ValueRange{}, nil, err
	}
	end := start + int(dec.InputOffset())
	return ValueRange{Start: end - len(raw), End: end}, raw, nil
}

// normalizeJSONPath rewrites the "$.[" spelling some clients emit into "$[".
func normalizeJSONPath(expr string) string {
	if strings.HasPrefix(expr, "$.[") {
		return "$" + expr[2:]
	}
	return expr
}

// jsonPathToSegments converts a JSONPath like $.a[1].b to segments ["a","1","b"].
func jsonPathToSegments(path string) []string {
	p := strings.TrimPrefix(path, "$")
	p = strings.TrimPrefix(p, ".")
	if p == "" {
		return nil
	}
	segments := make([]string, 0)
	cur := strings.Builder{}
	inBracket := false
	for _, r := range p {
		switch r {
		case '.':
			if !inBracket {
				if cur.Len() > 0 {
					segments = append(segments, cur.String())
					cur.Reset()
				}
				continue
			}
		case '[':
			if !inBracket {
				if cur.Len() > 0 {
					segments = append(segments, cur.String())
					cur.Reset()
				}
				inBracket = true
				continue
			}
		case ']':
			if inBracket {
				seg := cur.String()
				cur.Reset()
				inBracket = false
				seg = strings.Trim(seg, "'\"")
				segments = append(segments, seg)
				continue
			}
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		segments = append(segments, cur.String())
	}
	return segments
}

// findNodeBySegments walks a coreos/go-json Node tree following the provided segments.
func findNodeBySegments(node *gojson.Node, segments []string) (*gojson.Node, error) {
	cur := node
	for i, seg := range segments {
		switch v := cur.Value.(type) {
		case map[string]gojson.Node:
			next, ok := v[seg]
			if !ok {
				return nil, fmt.Errorf("object key %q not found at segment %d", seg, i)
			}
			cur = &next
		case []gojson.Node:
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return nil, fmt.Errorf("invalid array index %q at segment %d", seg, i)
			}
			if idx < 0 || idx >= len(v) {
				return nil, fmt.Errorf("array index %d out of bounds at segment %d", idx, i)
			}
			cur = &v[idx]
		default:
			return nil, fmt.Errorf("cannot traverse into %T at segment %d", v, i)
		}
	}
	return cur, nil
}
