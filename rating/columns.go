package rating

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// resolve returns the 0-based index of a column. A header name takes precedence over
// a column letter, so a column titled "AB" is found by name.
func resolve(column Column, headers []string) (int, error) {
	if column.indexed {
		return column.Index, nil
	}

	return resolveSpec(column.Spec, headers)
}

func resolveSpec(spec string, headers []string) (int, error) {
	for i, header := range headers {
		if header != "" && header == spec {
			return i, nil
		}
	}

	if index, err := strconv.Atoi(spec); err == nil && index >= 0 {
		return index, nil
	}

	if n := utf8.RuneCountInString(spec); n > 0 && n < 3 {
		if index, ok := letters(spec); ok {
			return index, nil
		}
	}

	return 0, fmt.Errorf("column '%v' not found in %q", spec, headers)
}

// resolveRange expands a range "start:end" (inclusive) or a single column.
func resolveRange(spec string, headers []string) ([]int, error) {
	start, end, ok := strings.Cut(spec, ":")
	if !ok {
		index, err := resolveSpec(strings.TrimSpace(spec), headers)
		if err != nil {
			return nil, err
		}

		return []int{index}, nil
	}

	from, err := resolveSpec(strings.TrimSpace(start), headers)
	if err != nil {
		return nil, err
	}

	to, err := resolveSpec(strings.TrimSpace(end), headers)
	if err != nil {
		return nil, err
	}

	list := []int{}
	for i := from; i <= to; i++ {
		list = append(list, i)
	}

	return list, nil
}

// published resolves every range and returns the sorted, distinct column indices.
func published(columns Columns, headers []string) ([]int, error) {
	set := map[int]bool{}
	for _, spec := range columns {
		list, err := resolveRange(spec, headers)
		if err != nil {
			return nil, err
		}

		for _, i := range list {
			set[i] = true
		}
	}

	indices := make([]int, 0, len(set))
	for i := range set {
		indices = append(indices, i)
	}

	sort.Ints(indices)

	return indices, nil
}

// letters converts a column letter to an index: A=0, Z=25, AA=26.
func letters(spec string) (int, bool) {
	index := 0
	for _, ch := range strings.ToUpper(spec) {
		if ch < 'A' || ch > 'Z' {
			return 0, false
		}

		index = index*26 + int(ch-'A'+1)
	}

	return index - 1, true
}
