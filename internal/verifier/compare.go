package verifier

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/mrz1836/clarifyflow/internal/domain"
)

// compare reports whether got matches expected under mode. Both sides are
// normalized through JSON first so int and float64, or []string and
// []any, compare by value.
func compare(expected, got any, mode domain.CompareMode) (bool, error) {
	want, err := normalize(expected)
	if err != nil {
		return false, fmt.Errorf("normalize expected: %w", err)
	}
	have, err := normalize(got)
	if err != nil {
		return false, fmt.Errorf("normalize result: %w", err)
	}

	if mode == domain.CompareUnordered {
		ws, wok := want.([]any)
		hs, hok := have.([]any)
		if wok && hok {
			return sameMultiset(ws, hs), nil
		}
	}
	return reflect.DeepEqual(want, have), nil
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func sameMultiset(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	keys := func(xs []any) []string {
		out := make([]string, len(xs))
		for i, x := range xs {
			out[i] = encode(x)
		}
		sort.Strings(out)
		return out
	}
	return reflect.DeepEqual(keys(a), keys(b))
}
