package engine

import (
	"encoding/json"
	"strconv"
	"strings"
)

// subresourceCache accumulates resource identifiers discovered in list
// responses during one run, keyed by the path template that produced them.
// Append-only: identifiers keep their encounter order and duplicates are
// preserved, so later checks see the deployment exactly as it listed itself.
type subresourceCache struct {
	entities map[string][]string
}

func newSubresourceCache() *subresourceCache {
	return &subresourceCache{entities: make(map[string][]string)}
}

// Harvest extracts identifiers from a list-shaped JSON body and appends them
// under pathTemplate. Non-JSON and non-list bodies harvest nothing. List
// elements contribute an identifier in two shapes: an object carrying an
// "id" field, or a string ending in a path separator.
func (c *subresourceCache) Harvest(pathTemplate string, body []byte) {
	var parsed interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return
	}
	list, ok := parsed.([]interface{})
	if !ok {
		return
	}

	var ids []string
	for _, entry := range list {
		switch v := entry.(type) {
		case map[string]interface{}:
			if id, ok := v["id"]; ok {
				if s, ok := identifierString(id); ok {
					ids = append(ids, s)
				}
			}
		case string:
			if strings.HasSuffix(v, "/") {
				ids = append(ids, strings.TrimRight(v, "/"))
			}
		}
	}

	if len(ids) > 0 {
		c.entities[pathTemplate] = append(c.entities[pathTemplate], ids...)
	}
}

// First returns the earliest identifier harvested for a parent path. The
// selection is deterministic so repeated runs probe the same resource.
func (c *subresourceCache) First(parentPath string) (string, bool) {
	ids := c.entities[parentPath]
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// IDs returns a copy of the identifiers harvested for a parent path.
func (c *subresourceCache) IDs(parentPath string) []string {
	ids := c.entities[parentPath]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// identifierString renders an "id" value. String ids pass through verbatim;
// JSON numbers render in minimal decimal form. Other shapes are unusable in
// a URL segment and are dropped.
func identifierString(id interface{}) (string, bool) {
	switch v := id.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}
