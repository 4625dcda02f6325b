package search

import (
	"fmt"
	"os"
	"sync"
	"time"
)

const defaultDebugFile = "rfind-debug.log"

var (
	scanDebugEnabled = os.Getenv("RFIND_DEBUG_SCAN") == "1"
	scanDebugFile    = os.Getenv("RFIND_DEBUG_FILE")
	scanDebugMu      sync.Mutex
)

func scanDebugf(format string, args ...interface{}) {
	if !scanDebugEnabled {
		return
	}
	scanDebugMu.Lock()
	defer scanDebugMu.Unlock()

	path := scanDebugFile
	if path == "" {
		path = defaultDebugFile
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	timestamp := time.Now().Format(time.RFC3339Nano)
	_, _ = fmt.Fprintf(f, "%s "+format+"\n", append([]interface{}{timestamp}, args...)...)
	_ = f.Close()
}
