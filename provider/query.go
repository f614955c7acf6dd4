package provider

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/movelink/movekit/errors"
)

// officesPerPage is the page size used for the offices full-list fetch.
// Offices are assumed small and cacheable, so the ids of a getMany are
// ignored and the whole collection is requested instead.
const officesPerPage = 10000

// listQuery encodes the canonical list query string:
// sort={snake_case(field)}&order={true|false}&page={page}&perPage={perPage}&filter={json}
func listQuery(sort Sort, pagination Pagination, filter map[string]any) (string, error) {
	encodedFilter, err := encodeFilter(filter)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("sort", snakeCase(sort.Field))
	q.Set("order", strconv.FormatBool(sort.Order == SortAscending))
	q.Set("page", strconv.Itoa(pagination.Page))
	q.Set("perPage", strconv.Itoa(pagination.PerPage))
	q.Set("filter", encodedFilter)
	return q.Encode(), nil
}

// encodeFilter renders the filter map as the JSON the backend parses.
// A nil filter still encodes as an empty object.
func encodeFilter(filter map[string]any) (string, error) {
	if filter == nil {
		filter = map[string]any{}
	}
	encoded, err := json.Marshal(filter)
	if err != nil {
		return "", errors.WrapContract(err, "Provider", "encodeFilter", "encode filter")
	}
	return string(encoded), nil
}

// parseContentRange extracts the total count from a Content-Range header
// of the form "<unit> <range>/<total>". The header is required on
// paginated reads; its absence is a contract violation, never total 0.
func parseContentRange(header string) (int, error) {
	if header == "" {
		return 0, errors.WrapContract(errors.ErrMissingContentRange,
			"Provider", "parseContentRange", "read total count")
	}

	slash := strings.LastIndex(header, "/")
	if slash < 0 || slash == len(header)-1 {
		return 0, errors.WrapContract(
			fmt.Errorf("malformed Content-Range header %q", header),
			"Provider", "parseContentRange", "read total count")
	}

	total, err := strconv.Atoi(strings.TrimSpace(header[slash+1:]))
	if err != nil {
		return 0, errors.WrapContract(
			fmt.Errorf("malformed Content-Range total in %q", header),
			"Provider", "parseContentRange", "read total count")
	}

	return total, nil
}

// snakeCase converts a camelCase field name to the snake_case the backend
// sorts by. Acronym runs collapse into one word: "dodID" becomes "dod_id".
func snakeCase(field string) string {
	var b strings.Builder
	runes := []rune(field)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || (unicode.IsUpper(runes[i-1]) && nextLower)) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

// resourcePath joins the resource collection path with an id. Paths are
// relative so the client's base URL prefix survives resolution.
func resourcePath(resource string, id any) string {
	return fmt.Sprintf("%s/%v", resource, id)
}
