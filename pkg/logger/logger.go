package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	cDbg  = color.New(color.FgHiBlack, color.Bold).SprintFunc()
	cInf  = color.New(color.FgCyan, color.Bold).SprintFunc()
	cWarn = color.New(color.FgYellow, color.Bold).SprintFunc()
	cErr  = color.New(color.FgRed, color.Bold).SprintFunc()
	cSucc = color.New(color.FgGreen, color.Bold).SprintFunc()
	cFatl = color.New(color.BgRed, color.FgWhite, color.Bold).SprintFunc()
	cTime = color.New(color.FgHiBlack).SprintFunc()
)

var (
	mu       sync.Mutex
	minLevel = LevelInfo
	out      io.Writer = os.Stdout
	errOut   io.Writer = os.Stderr
)

func init() {
	log.SetFlags(0)
}

// SetLevel accepts "debug", "info", "warn" or "error". Unknown values keep info.
func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		minLevel = LevelDebug
	case "warn", "warning":
		minLevel = LevelWarn
	case "error":
		minLevel = LevelError
	default:
		minLevel = LevelInfo
	}
}

// SetOutput redirects both streams. Tests use it to capture warnings.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	errOut = w
}

func timeStamp() string {
	return cTime(time.Now().Format("2006-01-02 15:04:05"))
}

func write(level Level, tag string, w func() io.Writer, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if level < minLevel {
		return
	}
	fmt.Fprintf(w(), "%s %s %s\n", timeStamp(), tag, fmt.Sprintf(format, v...))
}

func stdout() io.Writer { return out }
func stderr() io.Writer { return errOut }

func LogDebug(format string, v ...interface{}) {
	write(LevelDebug, cDbg("[DBG]"), stdout, format, v...)
}

func LogInfo(format string, v ...interface{}) {
	write(LevelInfo, cInf("[INFO]"), stdout, format, v...)
}

func LogSuccess(format string, v ...interface{}) {
	write(LevelInfo, cSucc("[OK]"), stdout, format, v...)
}

func LogWarn(format string, v ...interface{}) {
	write(LevelWarn, cWarn("[WARN]"), stdout, format, v...)
}

func LogError(format string, v ...interface{}) {
	write(LevelError, cErr("[ERR]"), stderr, format, v...)
}

func LogFatal(format string, v ...interface{}) {
	write(LevelError, cFatl("[FATAL]"), stderr, format, v...)
	os.Exit(1)
}

func LogServerStart(port int, baseURL string) {
	fmt.Println()
	fmt.Printf("   %s  %s\n", cSucc("⚡ Clinic API is up"), cTime("waiting for requests..."))
	fmt.Printf("   %s  %s\n", cInf("➜ Local:"), fmt.Sprintf("http://localhost:%d", port))
	fmt.Printf("   %s  %s\n", cInf("➜ Public:"), color.New(color.FgHiBlue, color.Underline).Sprint(baseURL))
	fmt.Println()
}
