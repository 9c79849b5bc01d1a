/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"reflect"
	"regexp"
	"strings"
	"sync"
)

// IndexMapRegistry is a registry for Go types and their key templates.

var (
	indexMapRegistry = make(map[reflect.Type]map[string]string)
	mu               sync.RWMutex
)

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// RegisterIndexMap associates a Go type T with a given index map (pk, sk, etc.).
func RegisterIndexMap[T any](idxMap map[string]string) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.Lock()
	defer mu.Unlock()
	indexMapRegistry[t] = idxMap
}

// GetIndexMap retrieves the indexMap for type T, if any.
func GetIndexMap[T any]() (map[string]string, bool) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.RLock()
	defer mu.RUnlock()
	m, ok := indexMapRegistry[t]
	return m, ok
}

// ExpandKeys replaces the {name} macros of every template in indexMap with
// values[name]. Unknown macros expand to the empty string.
func ExpandKeys(indexMap map[string]string, values map[string]string) map[string]string {
	res := make(map[string]string, len(indexMap))
	for field, template := range indexMap {
		res[field] = macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			return values[strings.Trim(macro, "{}")]
		})
	}
	return res
}
