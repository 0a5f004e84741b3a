package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// paramID parses a uint path parameter. The second return is false when
// the value is missing or not a number.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// queryID parses an optional uint query parameter; nil when absent.
func queryID(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, false
	}
	v := uint(id)
	return &v, true
}

// queryIDList parses a comma-separated list of uints (e.g. tagIds=1,2,3).
func queryIDList(c *gin.Context, name string) []uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if id, err := strconv.ParseUint(p, 10, 32); err == nil {
			ids = append(ids, uint(id))
		}
	}
	return ids
}
