package util

import "strings"

// Sub returns a slice with the elements from arr1 that are absent from arr2.
func Sub(arr1, arr2 []string) []string {
	result := make([]string, 0)
	for _, s := range arr1 {
		if !Contains(arr2, s) {
			result = append(result, s)
		}
	}
	return result
}

// Contains returns true if s is an element of arr.
func Contains(arr []string, s string) bool {
	for _, e := range arr {
		if e == s {
			return true
		}
	}
	return false
}

// ElementsMatchString returns true if arr1 and arr2 have the same elements without regard for order.
func ElementsMatchString(arr1, arr2 []string) bool {
	if len(arr1) != len(arr2) {
		return false
	}
	for _, s := range arr1 {
		if !Contains(arr2, s) {
			return false
		}
	}
	return true
}

// SplitList splits a comma separated list, trimming blanks and dropping empty items.
func SplitList(s string) []string {
	result := make([]string, 0)
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
