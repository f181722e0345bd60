package loaders

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

func parseFloats(s string) ([]float64, error) {
	fields := strings.Fields(s)
	values := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", field)
		}
		values[i] = v
	}
	return values, nil
}

func parseFixed(s string, n int) ([]float64, error) {
	values, err := parseFloats(s)
	if err != nil {
		return nil, err
	}
	if len(values) != n {
		return nil, fmt.Errorf("expected %d values, got %d in %q", n, len(values), strings.TrimSpace(s))
	}
	return values, nil
}

func parseFloat(s string) (float64, error) {
	values, err := parseFixed(s, 1)
	if err != nil {
		return 0, err
	}
	return values[0], nil
}

func parseVec3(s string) (core.Vec3, error) {
	values, err := parseFixed(s, 3)
	if err != nil {
		return core.Vec3{}, err
	}
	return core.NewVec3(values[0], values[1], values[2]), nil
}

func parseInts(s string) ([]int, error) {
	fields := strings.Fields(s)
	values := make([]int, len(fields))
	for i, field := range fields {
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", field)
		}
		values[i] = v
	}
	return values, nil
}

func parseInt(s string) (int, error) {
	values, err := parseInts(s)
	if err != nil {
		return 0, err
	}
	if len(values) != 1 {
		return 0, fmt.Errorf("expected one integer, got %q", strings.TrimSpace(s))
	}
	return values[0], nil
}

// parseBool reads an attribute flag, def when the attribute is absent
func parseBool(s string, def bool) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", s)
	}
	return v, nil
}

func optionalFloat(p *string, def float64) (float64, error) {
	if p == nil {
		return def, nil
	}
	return parseFloat(*p)
}

func optionalVec3(p *string, def core.Vec3) (core.Vec3, error) {
	if p == nil {
		return def, nil
	}
	return parseVec3(*p)
}

func optionalInt(p *string, def int) (int, error) {
	if p == nil {
		return def, nil
	}
	return parseInt(*p)
}

// index converts a 1-based scene-file id into a checked 0-based index
func index(id, size int, table string) (int, error) {
	if id < 1 || id > size {
		return 0, fmt.Errorf("%s id %d out of range [1,%d]", table, id, size)
	}
	return id - 1, nil
}
