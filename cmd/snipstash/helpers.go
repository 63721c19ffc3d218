package main

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// defaultSource returns a human-readable identifier for this host.
func defaultSource() string {
	if v := os.Getenv("SNIPSTASH_SOURCE"); v != "" {
		return v
	}
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	if age < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	}
	return t.Format("2006-01-02")
}

// preview flattens content to a single line of at most n runes for listings.
func preview(content string, n int) string {
	flat := strings.Join(strings.Fields(content), " ")
	runes := []rune(flat)
	if len(runes) <= n {
		return flat
	}
	return string(runes[:n-1]) + "…"
}
