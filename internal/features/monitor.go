package features

import (
	"log"
	"time"
)

// Monitor runs fn and logs its start, duration and failure
func Monitor(name string, fn func() error) error {
	log.Printf("[MONITOR]: starting %s", name)
	start := time.Now()
	err := fn()
	if err != nil {
		log.Printf("[MONITOR]: error during %s: %v", name, err)
	}
	log.Printf("[MONITOR]: %s finished in %s", name, time.Since(start))
	return err
}
