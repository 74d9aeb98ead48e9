package forbiddencalls

import (
	"log"
	"net/http"
	"os"
	"time"
)

func SomePanicFunction() {
	panic("this is forbidden") // want "panic is forbidden"
}

func SomeLogFatalFunction() {
	log.Fatal("this is forbidden")  // want "log.Fatal is forbidden outside main function"
	log.Fatalf("also %s", "banned") // want "log.Fatalf is forbidden outside main function"
}

func SomeOsExitFunction() {
	os.Exit(1) // want "os.Exit is forbidden outside main function"
}

func main() {
	os.Exit(0) // want "os.Exit is forbidden outside main function"
}

func HTTPHelpers() {
	http.Get("https://example.com")           // want "http.Get uses a client without timeout"
	http.Post("https://example.com", "", nil) // want "http.Post uses a client without timeout"
	http.Head("https://example.com")          // want "http.Head uses a client without timeout"
	http.PostForm("https://example.com", nil) // want "http.PostForm uses a client without timeout"
	_ = http.DefaultClient                    // want "http.DefaultClient uses a client without timeout"
}

func ConfiguredClient() {
	client := &http.Client{Timeout: time.Second}
	client.Get("https://example.com")
	http.NewRequest(http.MethodGet, "https://example.com", nil)
}

type shadow struct{}

func (shadow) Exit(int) {}

func ShadowedNames() {
	var os shadow
	os.Exit(1)
}
