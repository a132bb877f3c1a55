package utils

import (
	"sort"
	"time"
)

// SortByDate orders items by the date dateOf returns. Items sharing a date keep
// their relative order.
func SortByDate[T any](items []T, dateOf func(T) time.Time, asc bool) []T {
	sort.SliceStable(items, func(i, j int) bool {
		if asc {
			return dateOf(items[i]).Before(dateOf(items[j]))
		}
		return dateOf(items[i]).After(dateOf(items[j]))
	})
	return items
}
