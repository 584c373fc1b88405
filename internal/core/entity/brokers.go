package entity

import "strings"

// SplitBrokers splits a comma separated broker connection into host:port
// entries, dropping blanks.
func SplitBrokers(conn string) []string {
	var out []string
	for _, b := range strings.Split(conn, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
