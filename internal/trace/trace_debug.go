//go:build debug

package trace

import "log"

func Printf(msg string, args ...any) {
	log.Printf(msg, args...)
}

const On = true
