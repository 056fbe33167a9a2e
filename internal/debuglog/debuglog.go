package debuglog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Topics that can be enabled independently through RCHAT_DEBUG_TOPICS
// (comma separated). An empty list enables every topic.
const (
	TopicSearch = "search"
	TopicWindow = "window"
	TopicWatch  = "watch"
	TopicLoad   = "load"
)

const defaultFile = "rchat-debug.log"

var (
	enabled = os.Getenv("RCHAT_DEBUG") == "1"
	file    = os.Getenv("RCHAT_DEBUG_FILE")
	topics  = parseTopics(os.Getenv("RCHAT_DEBUG_TOPICS"))
	mu      sync.Mutex
)

func parseTopics(raw string) map[string]bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			out[part] = true
		}
	}
	return out
}

// Enabled reports whether lines for topic would be written.
func Enabled(topic string) bool {
	if !enabled {
		return false
	}
	return topics == nil || topics[topic]
}

// Logf appends a timestamped line to the debug file. The terminal is owned by
// tcell while the viewer runs, so nothing is ever printed to stdout here.
func Logf(topic, format string, args ...any) {
	if !Enabled(topic) {
		return
	}
	mu.Lock()
	defer mu.Unlock()

	path := file
	if path == "" {
		path = defaultFile
	}
	if !filepath.IsAbs(path) {
		if cwd, err := os.Getwd(); err == nil {
			path = filepath.Join(cwd, path)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	timestamp := time.Now().Format(time.RFC3339Nano)
	_, _ = fmt.Fprintf(f, "%s [%s] "+format+"\n", append([]any{timestamp, topic}, args...)...)
	_ = f.Close()
}

// setForTest flips logging on for a test and returns a restore func.
func setForTest(on bool, path string, topicList string) func() {
	mu.Lock()
	prevEnabled, prevFile, prevTopics := enabled, file, topics
	enabled, file, topics = on, path, parseTopics(topicList)
	mu.Unlock()
	return func() {
		mu.Lock()
		enabled, file, topics = prevEnabled, prevFile, prevTopics
		mu.Unlock()
	}
}
